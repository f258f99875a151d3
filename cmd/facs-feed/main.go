// facs-feed connects to a perception front-end websocket stream, runs
// every frame through the analysis pipeline, and prints combined
// records as JSON lines.
package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/Yukkurisiteikitai/deepface-facs/internal/config"
	"github.com/Yukkurisiteikitai/deepface-facs/internal/log"
	"github.com/Yukkurisiteikitai/deepface-facs/pkg/face"
	"github.com/Yukkurisiteikitai/deepface-facs/pkg/feed"
	"github.com/Yukkurisiteikitai/deepface-facs/pkg/pipeline"
)

const defaultFeedURL = "ws://localhost:8701/ws/frames"

func main() {
	config.LoadDotenv()
	log.Init(config.LogLevel())

	pipe := pipeline.New(pipeline.DefaultConfig())
	out := json.NewEncoder(os.Stdout)

	client := feed.New(feed.DefaultConfig(config.FeedURL(defaultFeedURL)), func(f *face.Frame) {
		rec := pipe.Process(f)
		if err := out.Encode(rec); err != nil {
			log.Error("encode record", "error", err)
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutting down")
		cancel()
	}()

	if err := client.Run(ctx); err != nil && err != context.Canceled {
		log.Error("feed", "error", err)
		os.Exit(1)
	}
}
