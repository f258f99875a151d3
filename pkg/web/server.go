// Package web serves the analysis pipeline over HTTP: REST endpoints
// for calibration and session control, a websocket ingest for per-frame
// landmark packets, and a websocket broadcast of combined results.
package web

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/Yukkurisiteikitai/deepface-facs/internal/log"
	"github.com/Yukkurisiteikitai/deepface-facs/pkg/hub"
	"github.com/Yukkurisiteikitai/deepface-facs/pkg/lighting"
	"github.com/Yukkurisiteikitai/deepface-facs/pkg/pipeline"
	"github.com/Yukkurisiteikitai/deepface-facs/pkg/session"
)

// lightingSmoothing weights new brightness measurements; stills arrive
// far less often than frames, so the level tracks quickly.
const lightingSmoothing = 0.3

// Status is the /api/status response.
type Status struct {
	FramesProcessed int64 `json:"frames_processed"`
	ResultClients   int   `json:"result_clients"`
	GazeCalibrated  bool  `json:"gaze_calibrated"`
	Recording       bool  `json:"recording"`
}

// Server exposes one pipeline instance over fiber. Frame processing is
// serialized with a mutex; the pipeline itself is single-threaded.
type Server struct {
	app  *fiber.App
	port string

	pipe   *pipeline.Pipeline
	pipeMu sync.Mutex

	recorder *session.Recorder
	probe    *lighting.Probe

	frames int64

	// Results broadcast to subscribed clients
	resultsHub *hub.Hub
}

// NewServer creates the API server around a pipeline and a recorder.
func NewServer(port string, pipe *pipeline.Pipeline, rec *session.Recorder) *Server {
	s := &Server{
		port:       port,
		pipe:       pipe,
		recorder:   rec,
		probe:      lighting.NewProbe(lightingSmoothing),
		resultsHub: hub.New("results"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "deepface-facs",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(logger.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/heatmap", s.handleHeatmap)
	api.Post("/lighting", s.handleLighting)

	cal := api.Group("/calibration")
	cal.Post("/gaze/start", s.handleGazeCalStart)
	cal.Post("/gaze/cancel", s.handleGazeCalCancel)
	cal.Get("/gaze/progress", s.handleGazeCalProgress)
	cal.Post("/reset", s.handleCalReset)

	ses := api.Group("/sessions")
	ses.Get("/", s.handleListSessions)
	ses.Post("/:label/start", s.handleSessionStart)
	ses.Post("/stop", s.handleSessionStop)
	ses.Get("/:id/export", s.handleSessionExport)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/frames", websocket.New(s.handleFramesWS))
	app.Get("/ws/results", websocket.New(s.handleResultsWS))

	s.app = app
	return s
}

// Start runs the hub and listens. Blocks until shutdown.
func (s *Server) Start() error {
	log.Info("api server listening", "port", s.port)
	go s.resultsHub.Run()
	return s.app.Listen(":" + s.port)
}

// StartAsync starts the server in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			log.Error("api server", "error", err)
		}
	}()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
