package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/Yukkurisiteikitai/deepface-facs/internal/log"
	"github.com/Yukkurisiteikitai/deepface-facs/pkg/face"
	"github.com/Yukkurisiteikitai/deepface-facs/pkg/gaze"
	"github.com/Yukkurisiteikitai/deepface-facs/pkg/hub"
	"github.com/Yukkurisiteikitai/deepface-facs/pkg/session"
)

// handleStatus returns server and calibration state.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	s.pipeMu.Lock()
	status := Status{
		FramesProcessed: s.frames,
		GazeCalibrated:  s.pipe.Gaze().IsCalibrated(),
		Recording:       s.recorder.Recording(),
	}
	s.pipeMu.Unlock()
	status.ResultClients = s.resultsHub.ClientCount()
	return c.JSON(status)
}

// handleHeatmap returns the current gaze density grid.
func (s *Server) handleHeatmap(c *fiber.Ctx) error {
	s.pipeMu.Lock()
	h := s.pipe.Heatmap()
	resp := fiber.Map{
		"width":  h.W,
		"height": h.H,
		"cells":  h.Snapshot(),
		"max":    h.Max(),
	}
	s.pipeMu.Unlock()
	return c.JSON(resp)
}

// handleLighting takes a JPEG still of the scene, folds it into the
// smoothed brightness level, and hands the level to the pipeline so
// pupillometry can compensate the light reflex.
func (s *Server) handleLighting(c *fiber.Ctx) error {
	raw, err := s.probe.Measure(c.Body())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	level := s.probe.Level()

	s.pipeMu.Lock()
	s.pipe.SetBrightness(level)
	s.pipeMu.Unlock()

	return c.JSON(fiber.Map{"brightness": raw, "level": level})
}

func (s *Server) handleGazeCalStart(c *fiber.Ctx) error {
	s.pipeMu.Lock()
	err := s.pipe.Gaze().StartCalibration()
	targets := s.pipe.Gaze().Targets()
	s.pipeMu.Unlock()

	if errors.Is(err, gaze.ErrCalibrationActive) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"targets": targets})
}

func (s *Server) handleGazeCalCancel(c *fiber.Ctx) error {
	s.pipeMu.Lock()
	err := s.pipe.Gaze().CancelCalibration()
	s.pipeMu.Unlock()

	if errors.Is(err, gaze.ErrCalibrationNotActive) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"cancelled": true})
}

func (s *Server) handleGazeCalProgress(c *fiber.Ctx) error {
	s.pipeMu.Lock()
	p := s.pipe.Gaze().Progress()
	s.pipeMu.Unlock()
	return c.JSON(p)
}

// handleCalReset clears every analyzer's personal baseline.
func (s *Server) handleCalReset(c *fiber.Ctx) error {
	s.pipeMu.Lock()
	s.pipe.ResetCalibration()
	s.pipeMu.Unlock()
	return c.JSON(fiber.Map{"reset": true})
}

func (s *Server) handleListSessions(c *fiber.Ctx) error {
	s.pipeMu.Lock()
	defer s.pipeMu.Unlock()

	type summary struct {
		ID     string `json:"id"`
		Label  string `json:"label"`
		Frames int    `json:"frames"`
	}
	out := make([]summary, 0)
	for _, ses := range s.recorder.Sessions() {
		out = append(out, summary{ID: ses.ID, Label: ses.Label, Frames: len(ses.Frames)})
	}
	return c.JSON(out)
}

func (s *Server) handleSessionStart(c *fiber.Ctx) error {
	label := c.Params("label")

	s.pipeMu.Lock()
	ses, err := s.recorder.Start(label)
	s.pipeMu.Unlock()

	switch {
	case errors.Is(err, session.ErrUnknownEmotion):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, session.ErrAlreadyRecording):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"id": ses.ID, "label": ses.Label})
}

func (s *Server) handleSessionStop(c *fiber.Ctx) error {
	s.pipeMu.Lock()
	ses, err := s.recorder.Stop()
	s.pipeMu.Unlock()

	if errors.Is(err, session.ErrNotRecording) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"id": ses.ID, "frames": len(ses.Frames)})
}

func (s *Server) handleSessionExport(c *fiber.Ctx) error {
	id := c.Params("id")

	s.pipeMu.Lock()
	ses, ok := s.recorder.Find(id)
	s.pipeMu.Unlock()

	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "session not found"})
	}
	data, err := ses.Export()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	c.Set("Content-Type", "application/json")
	return c.Send(data)
}

// handleFramesWS ingests per-frame landmark+blendshape packets, runs the
// pipeline, and broadcasts the combined record to result subscribers.
func (s *Server) handleFramesWS(c *websocket.Conn) {
	log.Info("frame source connected")
	defer log.Info("frame source disconnected")

	for {
		var frame face.Frame
		if err := c.ReadJSON(&frame); err != nil {
			return
		}

		s.pipeMu.Lock()
		rec := s.pipe.Process(&frame)
		s.frames++
		if s.recorder.Recording() {
			s.recorder.Append(rec)
		}
		s.pipeMu.Unlock()

		if err := s.resultsHub.BroadcastJSON(rec); err != nil {
			log.Warn("result broadcast", "error", err)
		}
	}
}

// handleResultsWS subscribes a client to the combined result stream.
func (s *Server) handleResultsWS(c *websocket.Conn) {
	client := hub.NewClient(s.resultsHub, c)
	client.Run()
}
