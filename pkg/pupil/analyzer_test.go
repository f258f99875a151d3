package pupil

import (
	"math"
	"testing"

	"github.com/Yukkurisiteikitai/deepface-facs/pkg/face"
)

const floatTolerance = 1e-9

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

// setIris places an iris ring so both its horizontal and vertical spans
// equal exactly d.
func setIris(f *face.LandmarkFrame, center, left, right, top, bottom int, cx, cy, d float64) {
	f.Landmarks[center] = face.Point{X: cx, Y: cy}
	f.Landmarks[left] = face.Point{X: cx - d/2, Y: cy}
	f.Landmarks[right] = face.Point{X: cx + d/2, Y: cy}
	f.Landmarks[top] = face.Point{X: cx, Y: cy - d/2}
	f.Landmarks[bottom] = face.Point{X: cx, Y: cy + d/2}
}

// pupilFrame builds a frame whose mean iris diameter is exactly d.
func pupilFrame(d float64) *face.LandmarkFrame {
	f := &face.LandmarkFrame{Landmarks: make([]face.Point, face.MinLandmarks)}
	setIris(f, face.RightIrisCenter, face.RightIrisLeft, face.RightIrisRight,
		face.RightIrisTop, face.RightIrisBottom, 0.40, 0.50, d)
	setIris(f, face.LeftIrisCenter, face.LeftIrisLeft, face.LeftIrisRight,
		face.LeftIrisTop, face.LeftIrisBottom, 0.60, 0.50, d)
	return f
}

// calibrate feeds n identical baseline frames starting at t=0 and
// returns the next timestamp.
func calibrate(a *Analyzer, d float64, n int) float64 {
	t := 0.0
	for i := 0; i < n; i++ {
		a.Update(pupilFrame(d), -1, t)
		t += 33
	}
	return t
}

func TestUpdate_RawDiameter(t *testing.T) {
	a := New(DefaultConfig())
	res, ok := a.Update(pupilFrame(0.02), -1, 0)
	if !ok {
		t.Fatal("Update failed on valid frame")
	}
	if !floatEquals(res.RawDiameter, 0.02) || !floatEquals(res.Diameter, 0.02) {
		t.Errorf("Diameter: got raw=%v compensated=%v, want 0.02", res.RawDiameter, res.Diameter)
	}
	if !floatEquals(res.LightFactor, 1) {
		t.Errorf("No-probe light factor: got %v, want 1", res.LightFactor)
	}
}

func TestUpdate_SoftFail(t *testing.T) {
	a := New(DefaultConfig())
	if res, ok := a.Update(nil, -1, 0); ok || res != nil {
		t.Errorf("Nil frame should soft-fail, got %+v ok=%v", res, ok)
	}

	// Valid landmark count but a degenerate iris
	empty := &face.LandmarkFrame{Landmarks: make([]face.Point, face.MinLandmarks)}
	if _, ok := a.Update(empty, -1, 0); ok {
		t.Error("Zero-span iris should soft-fail")
	}
}

func TestUpdate_SingleEyeFallback(t *testing.T) {
	a := New(DefaultConfig())
	f := &face.LandmarkFrame{Landmarks: make([]face.Point, face.MinLandmarks)}
	setIris(f, face.RightIrisCenter, face.RightIrisLeft, face.RightIrisRight,
		face.RightIrisTop, face.RightIrisBottom, 0.40, 0.50, 0.025)

	res, ok := a.Update(f, -1, 0)
	if !ok {
		t.Fatal("One usable eye should still produce a result")
	}
	if !floatEquals(res.RawDiameter, 0.025) {
		t.Errorf("Single-eye diameter: got %v, want 0.025", res.RawDiameter)
	}
}

func TestLightCompensation(t *testing.T) {
	a := New(DefaultConfig())

	// Bright scene scales the apparent diameter up
	res, _ := a.Update(pupilFrame(0.02), 0.9, 0)
	want := 1 + 0.5*(0.9-0.5)
	if !floatEquals(res.LightFactor, want) {
		t.Errorf("Bright factor: got %v, want %v", res.LightFactor, want)
	}
	if !floatEquals(res.Diameter, 0.02*want) {
		t.Errorf("Compensated diameter: got %v, want %v", res.Diameter, 0.02*want)
	}

	// Dark scene scales down, bounded by the clamp
	cfg := DefaultConfig()
	cfg.LightGain = 2
	b := New(cfg)
	res, _ = b.Update(pupilFrame(0.02), 1.0, 0)
	if !floatEquals(res.LightFactor, cfg.LightFactorMax) {
		t.Errorf("Factor should clamp at %v, got %v", cfg.LightFactorMax, res.LightFactor)
	}
}

func TestCalibration_FreezesBaseline(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaselineSamples = 10
	a := New(cfg)

	tNext := calibrate(a, 0.02, cfg.BaselineSamples)
	if !a.IsCalibrated() {
		t.Fatal("Expected calibrated after baseline samples")
	}

	// Larger diameters afterwards must not move the baseline
	res, _ := a.Update(pupilFrame(0.03), -1, tNext)
	if !floatEquals(res.Calibration.Baseline, 0.02) {
		t.Errorf("Baseline moved after freeze: %v", res.Calibration.Baseline)
	}
	if !floatEquals(res.RelativeChange, 0.5) {
		t.Errorf("Relative change: got %v, want 0.5", res.RelativeChange)
	}
}

func TestResponse_Buckets(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaselineSamples = 10
	a := New(cfg)
	tNext := calibrate(a, 0.02, cfg.BaselineSamples)

	cases := []struct {
		d    float64
		want Response
	}{
		{0.0212, ResponseDilation},     // +6%
		{0.0193, ResponseConstriction}, // -3.5%
		{0.0204, ResponseStable},       // +2%
	}
	for _, c := range cases {
		res, _ := a.Update(pupilFrame(c.d), -1, tNext)
		tNext += 33
		if res.Response != c.want {
			t.Errorf("Response at d=%v: got %q, want %q", c.d, res.Response, c.want)
		}
	}
}

func TestDynamics_DelayedDilationLeansFear(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaselineSamples = 10
	cfg.TrendWindow = 5
	a := New(cfg)
	tNext := calibrate(a, 0.02, cfg.BaselineSamples)

	// Prior window flat at baseline, recent window flat at +10%: an
	// increasing trend with near-zero velocity
	for i := 0; i < 5; i++ {
		a.Update(pupilFrame(0.02), -1, tNext)
		tNext += 33
	}
	var res *Result
	for i := 0; i < 5; i++ {
		res, _ = a.Update(pupilFrame(0.022), -1, tNext)
		tNext += 33
	}

	if res.Dynamics.Trend != TrendIncreasing {
		t.Fatalf("Trend: got %q, want %q", res.Dynamics.Trend, TrendIncreasing)
	}
	if !res.Dynamics.Delayed {
		t.Error("Flat elevated window should read as delayed")
	}
	if res.Emotion.Emotion != "fear" {
		t.Errorf("Delayed dilation: got %q, want fear", res.Emotion.Emotion)
	}
}

func TestDynamics_ProlongedDilationLeansSadness(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaselineSamples = 10
	cfg.TrendWindow = 5
	a := New(cfg)
	tNext := calibrate(a, 0.02, cfg.BaselineSamples)

	// Entire 2x window elevated with enough jitter to avoid "delayed"
	var res *Result
	for i := 0; i < 10; i++ {
		d := 0.022
		if i%2 == 1 {
			d = 0.0225
		}
		res, _ = a.Update(pupilFrame(d), -1, tNext)
		tNext += 33
	}

	if !res.Dynamics.Prolonged {
		t.Fatal("Sustained elevated window should read as prolonged")
	}
	if res.Dynamics.Delayed {
		t.Fatal("Jittery signal should not read as delayed")
	}
	if res.Emotion.Emotion != "sadness" {
		t.Errorf("Prolonged dilation: got %q, want sadness", res.Emotion.Emotion)
	}
}

func TestEmotion_ConstrictionLeansDisgust(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaselineSamples = 10
	a := New(cfg)
	tNext := calibrate(a, 0.02, cfg.BaselineSamples)

	res, _ := a.Update(pupilFrame(0.019), -1, tNext)
	if res.Emotion.Emotion != "disgust" {
		t.Fatalf("Constriction: got %q, want disgust", res.Emotion.Emotion)
	}
	if !floatEquals(res.Emotion.Confidence, 0.4) { // 8 * 0.05
		t.Errorf("Confidence: got %v, want 0.4", res.Emotion.Confidence)
	}
}

func TestEmotion_ImmediateDilationLeansInterest(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaselineSamples = 10
	cfg.TrendWindow = 5
	a := New(cfg)
	tNext := calibrate(a, 0.02, cfg.BaselineSamples)

	// Prior window at baseline, recent window elevated and jittery:
	// dilation with real velocity, not sustained across the full window
	for i := 0; i < 5; i++ {
		a.Update(pupilFrame(0.02), -1, tNext)
		tNext += 33
	}
	var res *Result
	for i := 0; i < 5; i++ {
		d := 0.022
		if i%2 == 1 {
			d = 0.0225
		}
		res, _ = a.Update(pupilFrame(d), -1, tNext)
		tNext += 33
	}

	if res.Dynamics.Delayed || res.Dynamics.Prolonged {
		t.Fatalf("Dynamics misread: %+v", res.Dynamics)
	}
	if res.Emotion.Emotion != "interest" {
		t.Errorf("Immediate dilation: got %q, want interest", res.Emotion.Emotion)
	}
}

func TestLoad_StableBaselineIsLow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaselineSamples = 10
	a := New(cfg)
	tNext := calibrate(a, 0.02, cfg.BaselineSamples)

	res, _ := a.Update(pupilFrame(0.02), -1, tNext)
	if res.Load.Level != LoadLow || res.Load.Index > 0.01 {
		t.Errorf("Stable pupil load: got %+v, want low", res.Load)
	}
}

func TestLoad_WildSignalIsHigh(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaselineSamples = 10
	cfg.TrendWindow = 5
	a := New(cfg)
	tNext := calibrate(a, 0.02, cfg.BaselineSamples)

	diameters := []float64{0.025, 0.015, 0.025, 0.015, 0.025}
	var res *Result
	for _, d := range diameters {
		res, _ = a.Update(pupilFrame(d), -1, tNext)
		tNext += 33
	}
	if res.Load.Level != LoadHigh {
		t.Errorf("Wild pupil load: got %+v, want high", res.Load)
	}
}

func TestReset(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaselineSamples = 5
	a := New(cfg)
	calibrate(a, 0.02, cfg.BaselineSamples)
	if !a.IsCalibrated() {
		t.Fatal("Expected calibrated")
	}

	a.Reset()
	if a.IsCalibrated() {
		t.Error("Reset should clear calibration")
	}
}
