// Package config provides configuration helpers for deepface-facs commands.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Default server configuration.
const (
	DefaultPort     = "8700"
	DefaultLogLevel = "info"
)

// LoadDotenv loads a .env file if one exists in the working directory.
// Missing files are not an error; real env vars always win.
func LoadDotenv() {
	_ = godotenv.Load()
}

// Port returns the HTTP port from FACS_PORT env var.
// Falls back to DefaultPort if not set.
func Port() string {
	if p := os.Getenv("FACS_PORT"); p != "" {
		return p
	}
	return DefaultPort
}

// LogLevel returns the log level from FACS_LOG_LEVEL env var.
func LogLevel() string {
	if l := os.Getenv("FACS_LOG_LEVEL"); l != "" {
		return l
	}
	return DefaultLogLevel
}

// FeedURL returns the perception front-end websocket URL from FACS_FEED_URL.
// Falls back to the provided default if not set.
func FeedURL(defaultURL string) string {
	if u := os.Getenv("FACS_FEED_URL"); u != "" {
		return u
	}
	return defaultURL
}

// FloatEnv returns a float64 env var or the default when unset or malformed.
func FloatEnv(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
