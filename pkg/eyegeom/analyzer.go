// Package eyegeom derives per-eye openness from landmark geometry,
// calibrates it to the person's own eye-aspect-ratio range, and estimates
// eye-region Action Units by blending geometry with blendshape scores.
package eyegeom

import (
	"math"

	"github.com/Yukkurisiteikitai/deepface-facs/pkg/face"
)

// EyeState is the per-eye output for one frame.
type EyeState struct {
	// EAR is the smoothed eye aspect ratio.
	EAR float64 `json:"ear"`

	// Openness is EAR normalized to [0,1] using the calibrated (or
	// estimated) personal range.
	Openness float64 `json:"openness"`
}

// GazeDirection is the iris offset from the eye center, averaged over
// both eyes and normalized by eye width.
type GazeDirection struct {
	DX    float64 `json:"dx"`
	DY    float64 `json:"dy"`
	Label string  `json:"label"` // center, left, right, up, down
}

// BrowState holds brow raise/lower features blended from geometry and
// blendshapes.
type BrowState struct {
	InnerRaise float64 `json:"inner_raise"`
	OuterRaise float64 `json:"outer_raise"`
	Lower      float64 `json:"lower"`
}

// Calibration reports the analyzer's baseline state.
type Calibration struct {
	Calibrated bool `json:"calibrated"`
	Samples    int  `json:"samples"`
	Required   int  `json:"required"`
}

// Result is the per-frame output record.
type Result struct {
	Left        EyeState        `json:"left"`
	Right       EyeState        `json:"right"`
	Gaze        GazeDirection   `json:"gaze"`
	Brows       BrowState       `json:"brows"`
	ActionUnits map[int]float64 `json:"action_units"`
	Calibration Calibration     `json:"calibration"`
}

// eyeCalib accumulates per-eye EAR samples and freezes min/max/baseline
// once enough have been seen. It never silently re-enters the
// uncalibrated state.
type eyeCalib struct {
	min, max, sum float64
	samples       int
	frozen        bool
	baseline      float64
}

func (c *eyeCalib) feed(ear float64, required int) {
	if c.frozen {
		return
	}
	if c.samples == 0 {
		c.min, c.max = ear, ear
	} else {
		c.min = math.Min(c.min, ear)
		c.max = math.Max(c.max, ear)
	}
	c.sum += ear
	c.samples++
	if c.samples >= required {
		c.baseline = c.sum / float64(c.samples)
		c.frozen = true
	}
}

func (c *eyeCalib) reset() {
	*c = eyeCalib{}
}

// Analyzer computes calibrated eye geometry per frame. Not safe for
// concurrent use; the frame driver calls Analyze once per frame.
type Analyzer struct {
	cfg Config

	leftEARs  []float64
	rightEARs []float64

	left  eyeCalib
	right eyeCalib
}

// New creates an eye geometry analyzer.
func New(cfg Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// IsCalibrated reports whether both eyes have a frozen personal range.
func (a *Analyzer) IsCalibrated() bool {
	return a.left.frozen && a.right.frozen
}

// ResetCalibration discards both frozen baselines and restarts sample
// accumulation.
func (a *Analyzer) ResetCalibration() {
	a.left.reset()
	a.right.reset()
}

// Analyze processes one frame. Returns (nil, false) when the frame lacks
// the required landmarks; internal state is left untouched in that case.
func (a *Analyzer) Analyze(frame *face.LandmarkFrame, bs face.Blendshapes) (*Result, bool) {
	if !frame.Valid() {
		return nil, false
	}

	leftRaw := EAR(frame, face.LeftEyeEAR)
	rightRaw := EAR(frame, face.RightEyeEAR)

	leftEAR := pushSmoothed(&a.leftEARs, leftRaw, a.cfg.SmoothingWindow)
	rightEAR := pushSmoothed(&a.rightEARs, rightRaw, a.cfg.SmoothingWindow)

	a.left.feed(leftEAR, a.cfg.CalibrationSamples)
	a.right.feed(rightEAR, a.cfg.CalibrationSamples)

	res := &Result{
		Left:  EyeState{EAR: leftEAR, Openness: a.openness(leftEAR, &a.left)},
		Right: EyeState{EAR: rightEAR, Openness: a.openness(rightEAR, &a.right)},
		Gaze:  a.gazeDirection(frame),
		Brows: a.brows(frame, bs),
		Calibration: Calibration{
			Calibrated: a.IsCalibrated(),
			Samples:    min(a.left.samples, a.right.samples),
			Required:   a.cfg.CalibrationSamples,
		},
	}
	res.ActionUnits = a.actionUnits(frame, bs, res)
	return res, true
}

// EAR computes the eye aspect ratio from the six landmark points ordered
// P1..P6: (|P2-P6| + |P3-P5|) / (2 |P1-P4|). Distances are 2D, so a
// horizontally mirrored mesh yields the same value.
func EAR(frame *face.LandmarkFrame, idx [6]int) float64 {
	p := [6]face.Point{}
	for i, j := range idx {
		p[i] = frame.At(j)
	}
	horizontal := dist2(p[0], p[3])
	if horizontal == 0 {
		return 0
	}
	return (dist2(p[1], p[5]) + dist2(p[2], p[4])) / (2 * horizontal)
}

func dist2(a, b face.Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Hypot(dx, dy)
}

// pushSmoothed appends a raw value to a fixed-size window and returns the
// weighted moving average with linearly increasing weights (most recent
// sample weighted highest).
func pushSmoothed(win *[]float64, v float64, size int) float64 {
	*win = append(*win, v)
	if len(*win) > size {
		*win = (*win)[len(*win)-size:]
	}
	sum, wsum := 0.0, 0.0
	for i, s := range *win {
		w := float64(i + 1)
		sum += s * w
		wsum += w
	}
	return sum / wsum
}

// openness normalizes an EAR into [0,1]. Before calibration a
// conservative estimated range is used; after calibration the personal
// range applies, with gamma correction for naturally narrow eyes.
func (a *Analyzer) openness(ear float64, c *eyeCalib) float64 {
	lo, hi := a.cfg.EstimatedEARMin, a.cfg.EstimatedEARMax
	if c.frozen && c.max > c.min {
		lo, hi = c.min, c.max
	}
	open := clamp((ear-lo)/(hi-lo), 0, 1)
	if c.frozen && c.baseline < a.cfg.NarrowEyeBaseline {
		open = math.Pow(open, a.cfg.NarrowEyeGamma)
	}
	return open
}

// lidCurvature measures how far the upper mid-lid point deviates from the
// chord between its neighbors, normalized by eye width. Flat lids (low
// curvature) are an auxiliary narrow-eye cue; this is not an output
// feature.
func lidCurvature(frame *face.LandmarkFrame, topOuter, topMid, topInner, outer, inner int) float64 {
	width := dist2(frame.At(outer), frame.At(inner))
	if width == 0 {
		return 0
	}
	a := frame.At(topOuter)
	b := frame.At(topInner)
	m := frame.At(topMid)
	chordY := (a.Y + b.Y) / 2
	return (chordY - m.Y) / width // positive = lid arches upward
}

// gazeDirection averages the iris offset of both eyes, normalized by each
// eye's width.
func (a *Analyzer) gazeDirection(frame *face.LandmarkFrame) GazeDirection {
	ldx, ldy := irisOffset(frame, face.LeftIrisCenter, face.LeftEyeOuter, face.LeftEyeInner, face.LeftEyeTopMid, face.LeftEyeBottomMid)
	rdx, rdy := irisOffset(frame, face.RightIrisCenter, face.RightEyeOuter, face.RightEyeInner, face.RightEyeTopMid, face.RightEyeBottomMid)

	dx := (ldx + rdx) / 2
	dy := (ldy + rdy) / 2

	label := "center"
	switch {
	case dx < -0.08:
		label = "left"
	case dx > 0.08:
		label = "right"
	case dy < -0.08:
		label = "up"
	case dy > 0.08:
		label = "down"
	}
	return GazeDirection{DX: dx, DY: dy, Label: label}
}

func irisOffset(frame *face.LandmarkFrame, iris, outer, inner, top, bottom int) (dx, dy float64) {
	cx := (frame.At(outer).X + frame.At(inner).X) / 2
	cy := (frame.At(top).Y + frame.At(bottom).Y) / 2
	width := dist2(frame.At(outer), frame.At(inner))
	if width == 0 {
		return 0, 0
	}
	return (frame.At(iris).X - cx) / width, (frame.At(iris).Y - cy) / width
}

// brows derives raise/lower features from brow-to-eye distance and blends
// them with blendshape channels, taking the max per feature.
func (a *Analyzer) brows(frame *face.LandmarkFrame, bs face.Blendshapes) BrowState {
	leftRaise := a.browRaise(frame, face.LeftBrowInner, face.LeftEyeTopMid, face.LeftEyeOuter, face.LeftEyeInner)
	rightRaise := a.browRaise(frame, face.RightBrowInner, face.RightEyeTopMid, face.RightEyeOuter, face.RightEyeInner)
	innerGeo := (leftRaise + rightRaise) / 2

	leftOuter := a.browRaise(frame, face.LeftBrowOuter, face.LeftEyeTopMid, face.LeftEyeOuter, face.LeftEyeInner)
	rightOuter := a.browRaise(frame, face.RightBrowOuter, face.RightEyeTopMid, face.RightEyeOuter, face.RightEyeInner)
	outerGeo := (leftOuter + rightOuter) / 2

	return BrowState{
		InnerRaise: math.Max(innerGeo, bs.Get("browInnerUp")),
		OuterRaise: math.Max(outerGeo, bs.Mean("browOuterUpLeft", "browOuterUpRight")),
		Lower:      bs.Mean("browDownLeft", "browDownRight"),
	}
}

// browRaise maps the vertical brow-to-lid distance (as a fraction of eye
// width) onto [0,1] around the configured neutral height.
func (a *Analyzer) browRaise(frame *face.LandmarkFrame, brow, lid, outer, inner int) float64 {
	width := dist2(frame.At(outer), frame.At(inner))
	if width == 0 {
		return 0
	}
	h := (frame.At(lid).Y - frame.At(brow).Y) / width // image Y grows downward
	return clamp((h-a.cfg.BrowNeutralHeight)/a.cfg.BrowRaiseSpan, 0, 1)
}

// actionUnits estimates eye-region AUs, taking the max of the blendshape
// signal and a geometric fallback per AU. Squint thresholds shift for
// narrow-eye calibrations so lid tightening is still detectable.
func (a *Analyzer) actionUnits(frame *face.LandmarkFrame, bs face.Blendshapes, res *Result) map[int]float64 {
	openMean := (res.Left.Openness + res.Right.Openness) / 2

	narrow := a.IsCalibrated() &&
		(a.left.baseline < a.cfg.NarrowEyeBaseline || a.right.baseline < a.cfg.NarrowEyeBaseline)

	// Flat upper lids reinforce the narrow-eye signal.
	if !narrow {
		lc := lidCurvature(frame, face.LeftEyeTopOuter, face.LeftEyeTopMid, face.LeftEyeTopInner, face.LeftEyeOuter, face.LeftEyeInner)
		rc := lidCurvature(frame, face.RightEyeTopOuter, face.RightEyeTopMid, face.RightEyeTopInner, face.RightEyeOuter, face.RightEyeInner)
		narrow = (lc+rc)/2 < 0.02
	}

	squintAt := a.cfg.SquintOpenness
	if narrow {
		squintAt *= 0.7 // narrower resting eyes squint at lower openness
	}

	aus := map[int]float64{}

	// AU5 upper lid raiser: wide-open eyes
	geo5 := clamp((openMean-a.cfg.WideOpenness)/(1-a.cfg.WideOpenness), 0, 1)
	put(aus, 5, math.Max(geo5, bs.Mean("eyeWideLeft", "eyeWideRight")))

	// AU7 lid tightener: partially closed but not blinking
	geo7 := 0.0
	if openMean < squintAt && openMean > a.cfg.ClosedOpenness {
		geo7 = clamp((squintAt-openMean)/squintAt, 0, 1)
	}
	put(aus, 7, math.Max(geo7, bs.Mean("eyeSquintLeft", "eyeSquintRight")))

	// AU43 eyes closed
	geo43 := 0.0
	if openMean <= a.cfg.ClosedOpenness {
		geo43 = 1 - openMean/a.cfg.ClosedOpenness
	}
	put(aus, 43, math.Max(geo43, bs.Mean("eyeBlinkLeft", "eyeBlinkRight")))

	// Brow AUs from the blended brow features
	put(aus, 1, res.Brows.InnerRaise)
	put(aus, 2, res.Brows.OuterRaise)
	put(aus, 4, res.Brows.Lower)

	return aus
}

func put(aus map[int]float64, au int, score float64) {
	if score > 0.05 {
		aus[au] = score
	}
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
