// Package session records per-frame pipeline output under a named
// emotion label, for building labeled capture sets. Sessions are
// bounded and in-memory only.
package session

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Yukkurisiteikitai/deepface-facs/pkg/facs"
	"github.com/Yukkurisiteikitai/deepface-facs/pkg/pipeline"
)

var (
	// ErrUnknownEmotion is returned when a session is started with a
	// label outside the known emotion vocabulary.
	ErrUnknownEmotion = errors.New("session: unknown emotion label")

	// ErrAlreadyRecording is returned by Start while a session is open.
	ErrAlreadyRecording = errors.New("session: already recording")

	// ErrNotRecording is returned by Stop and Append without an open
	// session.
	ErrNotRecording = errors.New("session: not recording")
)

// MaxFrames bounds a single session; Append drops the oldest frame once
// the bound is reached.
const MaxFrames = 18_000 // ~10 minutes at 30fps

// Session is one labeled recording.
type Session struct {
	ID      string             `json:"id"`
	Label   string             `json:"label"`
	Started time.Time          `json:"started"`
	Stopped time.Time          `json:"stopped,omitempty"`
	Frames  []*pipeline.Record `json:"frames"`
}

// Recorder manages the start/stop lifecycle of labeled sessions.
// Not safe for concurrent use.
type Recorder struct {
	current  *Session
	finished []*Session
}

// NewRecorder creates an idle recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Recording reports whether a session is open.
func (r *Recorder) Recording() bool { return r.current != nil }

// Start opens a session under the given emotion label. The label must
// be one of the known emotion names or "neutral".
func (r *Recorder) Start(label string) (*Session, error) {
	if r.current != nil {
		return nil, ErrAlreadyRecording
	}
	if !knownLabel(label) {
		return nil, ErrUnknownEmotion
	}
	r.current = &Session{
		ID:      uuid.NewString(),
		Label:   label,
		Started: time.Now(),
	}
	return r.current, nil
}

// Append adds one frame record to the open session.
func (r *Recorder) Append(rec *pipeline.Record) error {
	if r.current == nil {
		return ErrNotRecording
	}
	if len(r.current.Frames) >= MaxFrames {
		r.current.Frames = r.current.Frames[1:]
	}
	r.current.Frames = append(r.current.Frames, rec)
	return nil
}

// Stop closes the open session and returns it.
func (r *Recorder) Stop() (*Session, error) {
	if r.current == nil {
		return nil, ErrNotRecording
	}
	s := r.current
	s.Stopped = time.Now()
	r.current = nil
	r.finished = append(r.finished, s)
	return s, nil
}

// Sessions returns all finished sessions, oldest first.
func (r *Recorder) Sessions() []*Session {
	return r.finished
}

// Find returns the finished session with the given ID.
func (r *Recorder) Find(id string) (*Session, bool) {
	for _, s := range r.finished {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

// Export serializes a finished session as indented JSON.
func (s *Session) Export() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

func knownLabel(label string) bool {
	for _, name := range facs.KnownEmotions() {
		if name == label {
			return true
		}
	}
	return false
}
