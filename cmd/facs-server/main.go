// facs-server serves the facial psychophysiology pipeline over HTTP:
// frame ingest and result broadcast over websocket, calibration and
// session recording over REST.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/Yukkurisiteikitai/deepface-facs/internal/config"
	"github.com/Yukkurisiteikitai/deepface-facs/internal/log"
	"github.com/Yukkurisiteikitai/deepface-facs/pkg/pipeline"
	"github.com/Yukkurisiteikitai/deepface-facs/pkg/session"
	"github.com/Yukkurisiteikitai/deepface-facs/pkg/web"
)

func main() {
	config.LoadDotenv()
	log.Init(config.LogLevel())

	cfg := pipeline.DefaultConfig()
	cfg.Gaze.Sensitivity = config.FloatEnv("FACS_GAZE_SENSITIVITY", cfg.Gaze.Sensitivity)
	cfg.HeatmapDecay = config.FloatEnv("FACS_HEATMAP_DECAY", cfg.HeatmapDecay)

	pipe := pipeline.New(cfg)
	recorder := session.NewRecorder()
	server := web.NewServer(config.Port(), pipe, recorder)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	server.StartAsync()
	log.Info("facs-server started", "port", config.Port())

	<-sigChan
	log.Info("shutting down")
	if err := server.Shutdown(); err != nil {
		log.Error("shutdown", "error", err)
		os.Exit(1)
	}
}
