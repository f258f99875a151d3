// Package feed subscribes to an external perception front end over
// websocket and delivers per-frame landmark packets to a handler.
// The connection is re-established automatically with a fixed delay.
package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Yukkurisiteikitai/deepface-facs/internal/httpc"
	"github.com/Yukkurisiteikitai/deepface-facs/internal/log"
	"github.com/Yukkurisiteikitai/deepface-facs/pkg/face"
)

// Config holds feed client settings.
type Config struct {
	// URL is the websocket endpoint streaming face.Frame JSON.
	URL string

	// HealthURL, when set, is probed with a GET before each dial so a
	// down front end fails fast instead of hanging in the handshake.
	HealthURL string

	// ReconnectDelay is the wait between connection attempts.
	ReconnectDelay time.Duration

	// HandshakeTimeout bounds the websocket upgrade.
	HandshakeTimeout time.Duration
}

// DefaultConfig returns the recommended feed settings for the given
// endpoint.
func DefaultConfig(url string) Config {
	return Config{
		URL:              url,
		ReconnectDelay:   3 * time.Second,
		HandshakeTimeout: 10 * time.Second,
	}
}

// Handler consumes one decoded frame.
type Handler func(*face.Frame)

// Client is a reconnecting frame-stream subscriber.
type Client struct {
	cfg     Config
	handler Handler
}

// New creates a feed client delivering frames to handler.
func New(cfg Config, handler Handler) *Client {
	return &Client{cfg: cfg, handler: handler}
}

// Run connects and consumes frames until ctx is cancelled. Connection
// failures are retried; decode failures drop the frame and keep the
// connection.
func (c *Client) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := c.healthCheck(); err != nil {
			log.Warn("front end unavailable", "error", err)
			if !c.sleep(ctx) {
				return ctx.Err()
			}
			continue
		}

		if err := c.consume(ctx); err != nil {
			log.Warn("feed connection lost", "error", err)
		}
		if !c.sleep(ctx) {
			return ctx.Err()
		}
	}
}

func (c *Client) healthCheck() error {
	if c.cfg.HealthURL == "" {
		return nil
	}
	resp, err := httpc.Get(c.cfg.HealthURL)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("health probe returned %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) consume(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: c.cfg.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Info("feed connected", "url", c.cfg.URL)

	// Close the socket when the context ends so ReadJSON unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var frame face.Frame
		if err := conn.ReadJSON(&frame); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		c.handler(&frame)
	}
}

// sleep waits the reconnect delay; returns false when ctx ended first.
func (c *Client) sleep(ctx context.Context) bool {
	select {
	case <-time.After(c.cfg.ReconnectDelay):
		return true
	case <-ctx.Done():
		return false
	}
}
