// Package pipeline fans each incoming frame out to every analyzer in
// dependency order and assembles one combined record. No analyzer
// failure blocks the others; a section that could not be computed is
// simply nil in the record.
package pipeline

import (
	"github.com/Yukkurisiteikitai/deepface-facs/pkg/blink"
	"github.com/Yukkurisiteikitai/deepface-facs/pkg/eyegeom"
	"github.com/Yukkurisiteikitai/deepface-facs/pkg/face"
	"github.com/Yukkurisiteikitai/deepface-facs/pkg/facs"
	"github.com/Yukkurisiteikitai/deepface-facs/pkg/gaze"
	"github.com/Yukkurisiteikitai/deepface-facs/pkg/gazealloc"
	"github.com/Yukkurisiteikitai/deepface-facs/pkg/microsaccade"
	"github.com/Yukkurisiteikitai/deepface-facs/pkg/pupil"
)

// Config bundles every analyzer's configuration plus the heatmap grid.
type Config struct {
	Eyes         eyegeom.Config
	Blink        blink.Config
	Gaze         gaze.Config
	Allocation   gazealloc.Config
	Microsaccade microsaccade.Config
	Pupil        pupil.Config

	HeatmapWidth  int
	HeatmapHeight int
	HeatmapDecay  float64
}

// DefaultConfig returns every analyzer's recommended configuration.
func DefaultConfig() Config {
	return Config{
		Eyes:         eyegeom.DefaultConfig(),
		Blink:        blink.DefaultConfig(),
		Gaze:         gaze.DefaultConfig(),
		Allocation:   gazealloc.DefaultConfig(),
		Microsaccade: microsaccade.DefaultConfig(),
		Pupil:        pupil.DefaultConfig(),

		HeatmapWidth:  32,
		HeatmapHeight: 32,
		HeatmapDecay:  0.98,
	}
}

// Record is the combined per-frame output. Sections are nil when their
// analyzer could not produce a result for this frame.
type Record struct {
	Timestamp    float64              `json:"timestamp"`
	FACS         *facs.Result         `json:"facs,omitempty"`
	Eyes         *eyegeom.Result      `json:"eyes,omitempty"`
	Blink        *blink.Result        `json:"blink,omitempty"`
	Gaze         *gaze.Result         `json:"gaze,omitempty"`
	Allocation   *gazealloc.Result    `json:"allocation,omitempty"`
	Microsaccade *microsaccade.Result `json:"microsaccade,omitempty"`
	Pupil        *pupil.Result        `json:"pupil,omitempty"`
}

// Pipeline owns one instance of each analyzer. Not safe for concurrent
// use; the frame driver calls Process once per frame in timestamp order.
type Pipeline struct {
	facs    *facs.Estimator
	eyes    *eyegeom.Analyzer
	blink   *blink.Detector
	gaze    *gaze.Estimator
	alloc   *gazealloc.Analyzer
	micro   *microsaccade.Detector
	pupil   *pupil.Analyzer
	heatmap *gazealloc.Heatmap

	// brightness is the latest ambient light level in [0,1], or -1
	// when no probe has reported yet.
	brightness float64
}

// New creates a pipeline with fresh analyzer state.
func New(cfg Config) *Pipeline {
	return &Pipeline{
		facs:       facs.NewEstimator(),
		eyes:       eyegeom.New(cfg.Eyes),
		blink:      blink.New(cfg.Blink),
		gaze:       gaze.New(cfg.Gaze),
		alloc:      gazealloc.New(cfg.Allocation),
		micro:      microsaccade.New(cfg.Microsaccade),
		pupil:      pupil.New(cfg.Pupil),
		heatmap:    gazealloc.NewHeatmap(cfg.HeatmapWidth, cfg.HeatmapHeight, cfg.HeatmapDecay),
		brightness: -1,
	}
}

// Gaze exposes the gaze estimator for calibration control.
func (p *Pipeline) Gaze() *gaze.Estimator { return p.gaze }

// Heatmap exposes the gaze density grid.
func (p *Pipeline) Heatmap() *gazealloc.Heatmap { return p.heatmap }

// SetBrightness records the latest ambient light level for pupillometry
// light compensation.
func (p *Pipeline) SetBrightness(b float64) { p.brightness = b }

// Process runs one frame through every analyzer. Leaf analyzers run
// first; downstream ones consume their output and are skipped when the
// input they need is missing.
func (p *Pipeline) Process(frame *face.Frame) *Record {
	rec := &Record{}
	if frame == nil {
		return rec
	}
	rec.Timestamp = frame.Timestamp
	lm := frame.Landmarks
	bs := frame.Blendshapes

	if bs != nil {
		r := p.facs.Analyze(bs)
		rec.FACS = &r
	}

	eyes, ok := p.eyes.Analyze(lm, bs)
	if ok {
		rec.Eyes = eyes

		openness := (eyes.Left.Openness + eyes.Right.Openness) / 2
		b := p.blink.Update(openness, frame.Timestamp)
		rec.Blink = &b
	}

	g, ok := p.gaze.Update(lm, bs)
	if !ok {
		rec.Pupil = p.runPupil(lm, frame.Timestamp)
		return rec
	}
	rec.Gaze = g

	m := p.micro.Update(g.Raw.GX, g.Raw.GY, frame.Timestamp)
	rec.Microsaccade = &m

	// Blink frames carry a held gaze position; keep them out of the
	// fixation stream and the heatmap.
	if !g.BlinkSkipped {
		a := p.alloc.Update(g.X, g.Y, frame.Timestamp)
		rec.Allocation = &a

		p.heatmap.Decay()
		p.heatmap.AddPoint(g.X, g.Y, g.Confidence)
	}

	rec.Pupil = p.runPupil(lm, frame.Timestamp)
	return rec
}

func (p *Pipeline) runPupil(lm *face.LandmarkFrame, t float64) *pupil.Result {
	res, ok := p.pupil.Update(lm, p.brightness, t)
	if !ok {
		return nil
	}
	return res
}

// ResetCalibration clears every analyzer's personal baseline.
func (p *Pipeline) ResetCalibration() {
	p.eyes.ResetCalibration()
	p.blink.ResetCalibration()
	p.gaze.ResetCalibration()
	p.micro.ResetCalibration()
	p.pupil.Reset()
}
