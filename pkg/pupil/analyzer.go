// Package pupil estimates pupil diameter from the iris-refined mesh,
// compensates for scene brightness, and derives response class, temporal
// dynamics, an emotion lean, and a cognitive-load index. The emotion
// table is an illustrative heuristic, not a validated classifier.
package pupil

import (
	"math"

	"github.com/Yukkurisiteikitai/deepface-facs/pkg/face"
	"github.com/Yukkurisiteikitai/deepface-facs/pkg/history"
)

// Response buckets the diameter change relative to baseline.
type Response string

const (
	ResponseDilation     Response = "dilation"
	ResponseConstriction Response = "constriction"
	ResponseStable       Response = "stable"
)

// Trend buckets the recent diameter trajectory.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// Load buckets the cognitive-load index.
type Load string

const (
	LoadLow    Load = "low"
	LoadMedium Load = "medium"
	LoadHigh   Load = "high"
)

// Dynamics describes the temporal behavior of the diameter signal.
type Dynamics struct {
	Trend     Trend   `json:"trend"`
	Velocity  float64 `json:"velocity"` // mean relative sample-to-sample change
	Delayed   bool    `json:"delayed"`
	Prolonged bool    `json:"prolonged"`
}

// EmotionLean is the heuristic pupil-based emotion estimate.
type EmotionLean struct {
	Emotion    string  `json:"emotion"`
	Confidence float64 `json:"confidence"`
}

// Calibration reports baseline state.
type Calibration struct {
	Calibrated bool    `json:"calibrated"`
	Baseline   float64 `json:"baseline"` // mean compensated diameter
	Samples    int     `json:"samples"`
}

// CognitiveLoad combines deviation and variability terms.
type CognitiveLoad struct {
	Index float64 `json:"index"` // [0,1]
	Level Load    `json:"level"`
}

// Result is the per-frame pupillometry record.
type Result struct {
	Diameter       float64       `json:"diameter"`        // compensated mean of both eyes
	RawDiameter    float64       `json:"raw_diameter"`    // before light compensation
	LightFactor    float64       `json:"light_factor"`
	RelativeChange float64       `json:"relative_change"` // vs baseline, 0 until calibrated
	Response       Response      `json:"response"`
	Dynamics       Dynamics      `json:"dynamics"`
	Emotion        EmotionLean   `json:"emotion"`
	Load           CognitiveLoad `json:"load"`
	Calibration    Calibration   `json:"calibration"`
}

// Analyzer tracks pupil diameter over time. Not safe for concurrent use.
type Analyzer struct {
	cfg Config

	calibrated bool
	baseline   float64
	calSum     float64
	calCount   int

	diameters *history.Rolling[float64]
}

// New creates a pupillometry analyzer.
func New(cfg Config) *Analyzer {
	return &Analyzer{
		cfg:       cfg,
		diameters: history.NewRolling[float64](cfg.HistorySize, 0),
	}
}

// Reset clears history and calibration.
func (a *Analyzer) Reset() {
	a.calibrated = false
	a.baseline = 0
	a.calSum = 0
	a.calCount = 0
	a.diameters.Clear()
}

// IsCalibrated reports whether the baseline is frozen.
func (a *Analyzer) IsCalibrated() bool { return a.calibrated }

// Update consumes one frame. brightness is the scene luminance in [0,1],
// or negative when no lighting probe is available (no compensation).
// Returns (nil, false) when the frame lacks usable iris landmarks.
func (a *Analyzer) Update(frame *face.LandmarkFrame, brightness, t float64) (*Result, bool) {
	if !frame.Valid() {
		return nil, false
	}

	raw := a.meanIrisDiameter(frame)
	if raw <= 0 {
		return nil, false
	}

	factor := a.lightFactor(brightness)
	d := raw * factor

	a.diameters.Push(t, d)
	a.maybeCalibrate(d)

	rel := 0.0
	if a.calibrated && a.baseline > 0 {
		rel = (d - a.baseline) / a.baseline
	}

	dyn := a.dynamics()
	return &Result{
		Diameter:       d,
		RawDiameter:    raw,
		LightFactor:    factor,
		RelativeChange: rel,
		Response:       a.response(rel),
		Dynamics:       dyn,
		Emotion:        a.emotion(rel, dyn),
		Load:           a.load(rel),
		Calibration: Calibration{
			Calibrated: a.calibrated,
			Baseline:   a.baseline,
			Samples:    a.calCount,
		},
	}, true
}

// meanIrisDiameter averages the horizontal and vertical iris spans of
// both eyes. An eye with degenerate (zero) span is skipped.
func (a *Analyzer) meanIrisDiameter(frame *face.LandmarkFrame) float64 {
	right := irisDiameter(frame, face.RightIrisLeft, face.RightIrisRight, face.RightIrisTop, face.RightIrisBottom)
	left := irisDiameter(frame, face.LeftIrisLeft, face.LeftIrisRight, face.LeftIrisTop, face.LeftIrisBottom)

	switch {
	case right > 0 && left > 0:
		return (right + left) / 2
	case right > 0:
		return right
	default:
		return left
	}
}

func irisDiameter(frame *face.LandmarkFrame, l, r, top, bottom int) float64 {
	pl, pr := frame.At(l), frame.At(r)
	pt, pb := frame.At(top), frame.At(bottom)
	h := math.Hypot(pr.X-pl.X, pr.Y-pl.Y)
	v := math.Hypot(pb.X-pt.X, pb.Y-pt.Y)
	return (h + v) / 2
}

// lightFactor compensates the pupil light reflex: brighter scenes
// constrict the pupil, so the factor scales the apparent diameter back
// up. Negative brightness means no probe; the factor is 1.
func (a *Analyzer) lightFactor(brightness float64) float64 {
	if brightness < 0 {
		return 1
	}
	f := 1 + a.cfg.LightGain*(brightness-a.cfg.LightReference)
	return clamp(f, a.cfg.LightFactorMin, a.cfg.LightFactorMax)
}

func (a *Analyzer) maybeCalibrate(d float64) {
	if a.calibrated {
		return
	}
	a.calSum += d
	a.calCount++
	if a.calCount >= a.cfg.BaselineSamples {
		a.baseline = a.calSum / float64(a.calCount)
		a.calibrated = true
	}
}

func (a *Analyzer) response(rel float64) Response {
	if !a.calibrated {
		return ResponseStable
	}
	switch {
	case rel >= a.cfg.DilationThreshold:
		return ResponseDilation
	case rel <= a.cfg.ConstrictionThreshold:
		return ResponseConstriction
	default:
		return ResponseStable
	}
}

// dynamics compares the mean of the last TrendWindow samples against the
// prior TrendWindow, measures sample-to-sample velocity, and checks for
// a sustained deviation across the full window.
func (a *Analyzer) dynamics() Dynamics {
	n := a.diameters.Len()
	w := a.cfg.TrendWindow
	if n < 2*w || a.baseline <= 0 {
		return Dynamics{Trend: TrendStable}
	}

	recent, prior := 0.0, 0.0
	for i := 0; i < w; i++ {
		recent += a.diameters.At(n - 1 - i).Value
		prior += a.diameters.At(n - 1 - w - i).Value
	}
	recent /= float64(w)
	prior /= float64(w)

	diff := (recent - prior) / a.baseline
	trend := TrendStable
	switch {
	case diff >= a.cfg.TrendThreshold:
		trend = TrendIncreasing
	case diff <= -a.cfg.TrendThreshold:
		trend = TrendDecreasing
	}

	velocity := 0.0
	for i := n - w; i < n-1; i++ {
		velocity += math.Abs(a.diameters.At(i+1).Value - a.diameters.At(i).Value)
	}
	velocity /= float64(w-1) * a.baseline

	sustained := 0
	window := 2 * w
	for i := n - window; i < n; i++ {
		dev := math.Abs(a.diameters.At(i).Value-a.baseline) / a.baseline
		if dev >= a.cfg.ProlongedMagnitude {
			sustained++
		}
	}

	return Dynamics{
		Trend:     trend,
		Velocity:  velocity,
		Delayed:   trend != TrendStable && velocity < a.cfg.DelayedVelocity,
		Prolonged: float64(sustained) >= a.cfg.ProlongedFraction*float64(window),
	}
}

// emotion applies the pupil decision table. Constriction leans disgust;
// dilation leans fear when delayed, sadness when prolonged, interest
// when immediate.
func (a *Analyzer) emotion(rel float64, dyn Dynamics) EmotionLean {
	if !a.calibrated {
		return EmotionLean{Emotion: "neutral"}
	}

	name := "neutral"
	switch a.response(rel) {
	case ResponseConstriction:
		name = "disgust"
	case ResponseDilation:
		switch {
		case dyn.Delayed:
			name = "fear"
		case dyn.Prolonged:
			name = "sadness"
		default:
			name = "interest"
		}
	}
	if name == "neutral" {
		return EmotionLean{Emotion: name}
	}
	return EmotionLean{
		Emotion:    name,
		Confidence: math.Min(1, a.cfg.ConfidenceGain*math.Abs(rel)),
	}
}

// load combines baseline deviation and short-term variability into one
// [0,1] index.
func (a *Analyzer) load(rel float64) CognitiveLoad {
	if !a.calibrated {
		return CognitiveLoad{Level: LoadLow}
	}

	deviation := math.Min(1, math.Abs(rel)/a.cfg.LoadDeviationScale)
	variability := math.Min(1, a.variability()/a.cfg.LoadVariabilityScale)
	index := a.cfg.LoadDeviationWeight*deviation + a.cfg.LoadVariabilityWeight*variability

	level := LoadLow
	switch {
	case index >= a.cfg.LoadHighThreshold:
		level = LoadHigh
	case index >= a.cfg.LoadMediumThreshold:
		level = LoadMedium
	}
	return CognitiveLoad{Index: index, Level: level}
}

// variability is the coefficient of variation over the trend window.
func (a *Analyzer) variability() float64 {
	n := a.diameters.Len()
	w := a.cfg.TrendWindow
	if n < w || w < 2 {
		return 0
	}

	mean := 0.0
	for i := n - w; i < n; i++ {
		mean += a.diameters.At(i).Value
	}
	mean /= float64(w)
	if mean <= 0 {
		return 0
	}

	variance := 0.0
	for i := n - w; i < n; i++ {
		d := a.diameters.At(i).Value - mean
		variance += d * d
	}
	return math.Sqrt(variance/float64(w)) / mean
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
