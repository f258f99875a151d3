// Package gaze estimates where on screen the subject is looking from the
// iris offset within each eye, corrected for head pose, calibrated
// against a 9-point target grid, and smoothed for output stability.
package gaze

import (
	"math"

	"github.com/Yukkurisiteikitai/deepface-facs/pkg/face"
)

// Vector is the head-pose-corrected eye-in-head gaze vector, averaged
// over both eyes and normalized by eye width.
type Vector struct {
	GX float64 `json:"gx"`
	GY float64 `json:"gy"`
}

// Result is the per-frame gaze output in normalized screen coordinates.
type Result struct {
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Raw        Vector   `json:"raw"`
	HeadPose   HeadPose `json:"head_pose"`
	Confidence float64  `json:"confidence"`
	Calibrated bool     `json:"calibrated"`

	// BlinkSkipped marks frames where the eyes were closing and the
	// previous gaze was carried over unchanged.
	BlinkSkipped bool `json:"blink_skipped"`
}

// CalibrationProgress describes the active calibration sequence for UI
// feedback.
type CalibrationProgress struct {
	Active       bool   `json:"active"`
	PointIndex   int    `json:"point_index"`
	PointCount   int    `json:"point_count"`
	Target       Target `json:"target"`
	SamplesTaken int    `json:"samples_taken"`
	SamplesPer   int    `json:"samples_per_point"`
}

// Estimator computes screen gaze per frame. Not safe for concurrent use;
// the frame driver calls Update once per frame.
type Estimator struct {
	cfg     Config
	targets []Target

	// Output smoothing state
	raws       []Vector
	outX, outY float64
	hasOut     bool

	// Confidence stability window
	recentX []float64
	recentY []float64

	// Calibration state
	calibrating bool
	calibrated  bool
	pointIndex  int
	accGX       float64
	accGY       float64
	accN        int
	obs         []observation
	mapping     Mapping

	last Result
}

// New creates a gaze estimator with the 3x3 default target grid.
func New(cfg Config) *Estimator {
	return &Estimator{cfg: cfg, targets: DefaultTargets()}
}

// IsCalibrated reports whether the 9-point mapping has been fitted.
func (e *Estimator) IsCalibrated() bool { return e.calibrated }

// Targets returns the calibration target sequence.
func (e *Estimator) Targets() []Target { return e.targets }

// StartCalibration begins the 9-point sequence. The caller should
// display Targets()[Progress().PointIndex] and keep feeding frames.
func (e *Estimator) StartCalibration() error {
	if e.calibrating {
		return ErrCalibrationActive
	}
	e.calibrating = true
	e.pointIndex = 0
	e.accGX, e.accGY, e.accN = 0, 0, 0
	e.obs = e.obs[:0]
	return nil
}

// CancelCalibration abandons a running sequence, keeping any previously
// fitted mapping.
func (e *Estimator) CancelCalibration() error {
	if !e.calibrating {
		return ErrCalibrationNotActive
	}
	e.calibrating = false
	return nil
}

// ResetCalibration discards the fitted mapping and any running sequence.
func (e *Estimator) ResetCalibration() {
	e.calibrating = false
	e.calibrated = false
	e.mapping = Mapping{}
}

// Progress reports the state of the active calibration sequence.
func (e *Estimator) Progress() CalibrationProgress {
	p := CalibrationProgress{
		Active:     e.calibrating,
		PointIndex: e.pointIndex,
		PointCount: len(e.targets),
		SamplesPer: e.cfg.SamplesPerPoint,
	}
	if e.calibrating && e.pointIndex < len(e.targets) {
		p.Target = e.targets[e.pointIndex]
		p.SamplesTaken = e.accN
	}
	return p
}

// Update consumes one frame and returns the gaze estimate. Returns
// (nil, false) when the frame lacks landmarks. Blink frames return the
// previous estimate unchanged with BlinkSkipped set.
func (e *Estimator) Update(frame *face.LandmarkFrame, bs face.Blendshapes) (*Result, bool) {
	if !frame.Valid() {
		return nil, false
	}

	if bs.Mean("eyeBlinkLeft", "eyeBlinkRight") > e.cfg.BlinkSkipThreshold {
		res := e.last
		res.BlinkSkipped = true
		return &res, true
	}

	pose := EstimatePose(frame)
	vec := e.gazeVector(frame, pose)

	if e.calibrating {
		e.collect(vec)
	}

	sx, sy := e.mapToScreen(vec)
	sx, sy = e.smooth(sx, sy)

	res := Result{
		X:          clamp(sx, 0, 1),
		Y:          clamp(sy, 0, 1),
		Raw:        vec,
		HeadPose:   pose,
		Confidence: e.confidence(vec, sx, sy),
		Calibrated: e.calibrated,
	}
	e.last = res
	return &res, true
}

// gazeVector averages both eyes' iris offsets from the eye centers and
// subtracts the scaled head-pose term.
func (e *Estimator) gazeVector(frame *face.LandmarkFrame, pose HeadPose) Vector {
	lx, ly := irisOffset(frame,
		face.LeftIrisCenter, face.LeftEyeOuter, face.LeftEyeInner,
		face.LeftEyeTopMid, face.LeftEyeBottomMid)
	rx, ry := irisOffset(frame,
		face.RightIrisCenter, face.RightEyeOuter, face.RightEyeInner,
		face.RightEyeTopMid, face.RightEyeBottomMid)

	return Vector{
		GX: (lx+rx)/2 - pose.Yaw*e.cfg.HeadPoseCoeff,
		GY: (ly+ry)/2 - pose.Pitch*e.cfg.HeadPoseCoeff,
	}
}

// irisOffset is the iris center's displacement from the eye center (mean
// of the corner landmarks horizontally, lid midpoints vertically),
// normalized by eye width.
func irisOffset(frame *face.LandmarkFrame, iris, outer, inner, top, bottom int) (dx, dy float64) {
	o := frame.At(outer)
	i := frame.At(inner)
	width := math.Hypot(o.X-i.X, o.Y-i.Y)
	if width == 0 {
		return 0, 0
	}
	cx := (o.X + i.X) / 2
	cy := (frame.At(top).Y + frame.At(bottom).Y) / 2
	p := frame.At(iris)
	return (p.X - cx) / width, (p.Y - cy) / width
}

// collect accumulates calibration samples for the current target and
// advances the sequence; after the last target the mapping is fitted and
// the estimator becomes calibrated.
func (e *Estimator) collect(vec Vector) {
	e.accGX += vec.GX
	e.accGY += vec.GY
	e.accN++
	if e.accN < e.cfg.SamplesPerPoint {
		return
	}

	e.obs = append(e.obs, observation{
		gx:     e.accGX / float64(e.accN),
		gy:     e.accGY / float64(e.accN),
		target: e.targets[e.pointIndex],
	})
	e.accGX, e.accGY, e.accN = 0, 0, 0
	e.pointIndex++

	if e.pointIndex < len(e.targets) {
		return
	}
	e.calibrating = false
	mapping, err := solveMapping(e.obs)
	if err != nil {
		// Degenerate samples (e.g. frozen gaze): stay uncalibrated
		return
	}
	e.mapping = mapping
	e.calibrated = true
}

// mapToScreen applies the fitted mapping, or the fixed pre-calibration
// sensitivity centered on the screen.
func (e *Estimator) mapToScreen(vec Vector) (x, y float64) {
	if e.calibrated {
		return e.mapping.Predict(vec.GX, vec.GY)
	}
	return 0.5 + e.cfg.Sensitivity*vec.GX, 0.5 + e.cfg.Sensitivity*vec.GY
}

// smooth applies a recency-weighted moving average over the last k raw
// positions, then an exponential blend with the previous output.
func (e *Estimator) smooth(x, y float64) (float64, float64) {
	e.raws = append(e.raws, Vector{GX: x, GY: y})
	if len(e.raws) > e.cfg.SmoothWindow {
		e.raws = e.raws[len(e.raws)-e.cfg.SmoothWindow:]
	}
	var sx, sy, wsum float64
	for i, r := range e.raws {
		w := float64(i + 1)
		sx += r.GX * w
		sy += r.GY * w
		wsum += w
	}
	sx /= wsum
	sy /= wsum

	if !e.hasOut {
		e.outX, e.outY = sx, sy
		e.hasOut = true
	} else {
		f := e.cfg.SmoothFactor
		e.outX = f*sx + (1-f)*e.outX
		e.outY = f*sy + (1-f)*e.outY
	}
	return e.outX, e.outY
}

// confidence combines a position-plausibility term (extreme gaze vectors
// lower it) with a short-window stability term (low recent variance
// raises it).
func (e *Estimator) confidence(vec Vector, x, y float64) float64 {
	plaus := clamp(1-math.Hypot(vec.GX, vec.GY)/e.cfg.PlausibleGazeSpan, 0, 1)

	e.recentX = append(e.recentX, x)
	e.recentY = append(e.recentY, y)
	if len(e.recentX) > e.cfg.StabilityWindow {
		e.recentX = e.recentX[len(e.recentX)-e.cfg.StabilityWindow:]
		e.recentY = e.recentY[len(e.recentY)-e.cfg.StabilityWindow:]
	}
	stability := 1.0
	if len(e.recentX) >= 3 {
		sd := math.Sqrt(variance(e.recentX) + variance(e.recentY))
		stability = clamp(1-sd*e.cfg.StabilityGain, 0, 1)
	}
	return 0.5*plaus + 0.5*stability
}

func variance(xs []float64) float64 {
	mean := 0.0
	for _, v := range xs {
		mean += v
	}
	mean /= float64(len(xs))
	out := 0.0
	for _, v := range xs {
		out += (v - mean) * (v - mean)
	}
	return out / float64(len(xs))
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
