package gazealloc

import (
	"math"
	"testing"

	"github.com/Yukkurisiteikitai/deepface-facs/pkg/face"
)

// dwell feeds samples at (x, y) every 60ms for the given duration,
// starting at t. Returns the last result and the timestamp after the
// dwell.
func dwell(a *Analyzer, x, y, start, duration float64) (Result, float64) {
	var res Result
	t := start
	for ; t <= start+duration; t += 60 {
		res = a.Update(x, y, t)
	}
	return res, t
}

func TestAOI_InclusiveBoundaries(t *testing.T) {
	aoi := AOI{Name: RegionEyes, MinX: 0.22, MinY: 0.32, MaxX: 0.78, MaxY: 0.45}

	corners := [][2]float64{
		{0.22, 0.32}, {0.78, 0.32}, {0.22, 0.45}, {0.78, 0.45},
	}
	for _, c := range corners {
		if !aoi.Contains(c[0], c[1]) {
			t.Errorf("Boundary point (%v,%v) should be inside", c[0], c[1])
		}
		// Repeated classification of a boundary point never flips
		for i := 0; i < 3; i++ {
			if !aoi.Contains(c[0], c[1]) {
				t.Fatalf("Boundary point (%v,%v) classified inconsistently", c[0], c[1])
			}
		}
	}

	if aoi.Contains(0.219, 0.32) || aoi.Contains(0.22, 0.451) {
		t.Error("Points just outside the rectangle should be excluded")
	}
}

func TestClassify_FallbackRegion(t *testing.T) {
	aois := DefaultAOIs()
	if got := Classify(aois, 0.5, 0.5); got != RegionNose {
		t.Errorf("Center point: got %q, want %q", got, RegionNose)
	}
	if got := Classify(aois, 0.02, 0.02); got != RegionOther {
		t.Errorf("Corner point: got %q, want %q", got, RegionOther)
	}
}

func TestUpdate_FixationAccepted(t *testing.T) {
	a := New(DefaultConfig())

	// Dwell in the eyes region for 150ms, then jump to the mouth
	for _, ts := range []float64{0, 50, 100, 150} {
		if res := a.Update(0.5, 0.38, ts); res.Fixation != nil {
			t.Fatal("Fixation closed before any saccade")
		}
	}
	res := a.Update(0.5, 0.70, 200)

	if res.Fixation == nil {
		t.Fatal("Expected a closed fixation after the saccade")
	}
	f := res.Fixation
	if f.AOI != RegionEyes {
		t.Errorf("Fixation AOI: got %q, want %q", f.AOI, RegionEyes)
	}
	if f.Duration != 150 {
		t.Errorf("Fixation duration: got %v, want 150", f.Duration)
	}
	if math.Abs(f.X-0.5) > 1e-9 || math.Abs(f.Y-0.38) > 1e-9 {
		t.Errorf("Fixation centroid: got (%v,%v), want (0.5,0.38)", f.X, f.Y)
	}
	if res.CurrentAOI != RegionMouth {
		t.Errorf("CurrentAOI after saccade: got %q, want %q", res.CurrentAOI, RegionMouth)
	}
}

func TestUpdate_ShortDwellDiscarded(t *testing.T) {
	a := New(DefaultConfig())

	a.Update(0.5, 0.38, 0)
	a.Update(0.5, 0.38, 50) // 50ms < MinFixationDuration
	res := a.Update(0.5, 0.70, 100)

	if res.Fixation != nil {
		t.Errorf("50ms dwell should be discarded, got %+v", res.Fixation)
	}
	if len(res.AOIStats) != 0 {
		t.Errorf("No accepted fixations yet, stats = %+v", res.AOIStats)
	}
}

func TestUpdate_CentroidFollowsDrift(t *testing.T) {
	a := New(DefaultConfig())

	a.Update(0.50, 0.38, 0)
	a.Update(0.52, 0.38, 60) // within radius, pulls the centroid right
	a.Update(0.52, 0.38, 120)
	res := a.Update(0.80, 0.80, 200)

	if res.Fixation == nil {
		t.Fatal("Expected a closed fixation")
	}
	if res.Fixation.X <= 0.50 || res.Fixation.X >= 0.52 {
		t.Errorf("Centroid X: got %v, want between 0.50 and 0.52", res.Fixation.X)
	}
}

func TestUpdate_AOIStatsFractions(t *testing.T) {
	a := New(DefaultConfig())

	// 120ms eyes, 120ms nose, 120ms eyes
	_, t1 := dwell(a, 0.5, 0.38, 0, 120)
	_, t2 := dwell(a, 0.5, 0.50, t1+100, 120)
	_, t3 := dwell(a, 0.5, 0.38, t2+100, 120)
	res := a.Update(0.9, 0.9, t3+100)

	eyes := res.AOIStats[RegionEyes]
	nose := res.AOIStats[RegionNose]
	if eyes.Visits != 2 || nose.Visits != 1 {
		t.Fatalf("Visits: eyes=%d nose=%d, want 2 and 1", eyes.Visits, nose.Visits)
	}
	if math.Abs(eyes.Fraction-2.0/3.0) > 1e-9 {
		t.Errorf("Eyes dwell fraction: got %v, want 2/3", eyes.Fraction)
	}
	if math.Abs(eyes.Fraction+nose.Fraction-1) > 1e-9 {
		t.Errorf("Fractions should sum to 1, got %v", eyes.Fraction+nose.Fraction)
	}
}

func TestPattern_InsufficientData(t *testing.T) {
	a := New(DefaultConfig())

	_, t1 := dwell(a, 0.5, 0.38, 0, 120)
	res := a.Update(0.9, 0.9, t1+100)

	if res.Pattern.Name != PatternInsufficient {
		t.Errorf("One fixation: got pattern %q, want %q", res.Pattern.Name, PatternInsufficient)
	}
}

func TestPattern_MatchedWithEnoughFixations(t *testing.T) {
	a := New(DefaultConfig())

	// Five fixations: eyes, nose, mouth, nose, eyes
	points := [][2]float64{
		{0.5, 0.38}, {0.5, 0.50}, {0.5, 0.70}, {0.5, 0.50}, {0.5, 0.38},
	}
	t0 := 0.0
	for _, p := range points {
		_, t0 = dwell(a, p[0], p[1], t0, 120)
		t0 += 100
	}
	res := a.Update(0.9, 0.9, t0)

	if res.Pattern.Name == PatternInsufficient {
		t.Fatal("Five fixations should produce a pattern match")
	}
	if res.Pattern.Similarity <= 0 || res.Pattern.Similarity > 1 {
		t.Errorf("Similarity out of range: %v", res.Pattern.Similarity)
	}
}

func TestScanPath_Fixated(t *testing.T) {
	a := New(DefaultConfig())

	// One long dwell on the eyes: low coverage, long mean fixation
	_, t1 := dwell(a, 0.5, 0.38, 0, 500)
	res := a.Update(0.9, 0.9, t1+100)

	if res.ScanPath.Class != ScanFixated {
		t.Errorf("Scan path: got %q, want %q (coverage=%v mean=%v)",
			res.ScanPath.Class, ScanFixated, res.ScanPath.Coverage, res.ScanPath.MeanFixation)
	}
}

func TestScanPath_Focused(t *testing.T) {
	a := New(DefaultConfig())

	// Two regions at medium dwell: coverage 1/3, mean 300ms
	_, t1 := dwell(a, 0.5, 0.38, 0, 300)
	_, t2 := dwell(a, 0.5, 0.50, t1+100, 300)
	res := a.Update(0.9, 0.9, t2+100)

	if res.ScanPath.Class != ScanFocused {
		t.Errorf("Scan path: got %q, want %q (coverage=%v mean=%v)",
			res.ScanPath.Class, ScanFocused, res.ScanPath.Coverage, res.ScanPath.MeanFixation)
	}
}

func TestScanPath_Exploratory(t *testing.T) {
	a := New(DefaultConfig())

	// Five distinct regions: coverage 5/6
	points := [][2]float64{
		{0.5, 0.38}, {0.5, 0.50}, {0.5, 0.70}, {0.5, 0.27}, {0.5, 0.15},
	}
	t0 := 0.0
	for _, p := range points {
		_, t0 = dwell(a, p[0], p[1], t0, 120)
		t0 += 100
	}
	res := a.Update(0.9, 0.9, t0)

	if res.ScanPath.Class != ScanExploratory {
		t.Errorf("Scan path: got %q, want %q (coverage=%v)",
			res.ScanPath.Class, ScanExploratory, res.ScanPath.Coverage)
	}
}

func TestNoseAnchor_TransitViaNose(t *testing.T) {
	a := New(DefaultConfig())

	// eyes -> nose -> mouth -> nose -> eyes: both eye<->mouth transits
	// pass through the nose
	points := [][2]float64{
		{0.5, 0.38}, {0.5, 0.50}, {0.5, 0.70}, {0.5, 0.50}, {0.5, 0.38},
	}
	t0 := 0.0
	for _, p := range points {
		_, t0 = dwell(a, p[0], p[1], t0, 120)
		t0 += 100
	}
	res := a.Update(0.9, 0.9, t0)

	na := res.NoseAnchor
	if na.Transitions != 2 {
		t.Fatalf("Transitions: got %d, want 2", na.Transitions)
	}
	if !na.Anchored || math.Abs(na.Ratio-1) > 1e-9 {
		t.Errorf("Nose anchor: got ratio=%v anchored=%v, want 1 true", na.Ratio, na.Anchored)
	}
}

func TestNoseAnchor_DirectTransitions(t *testing.T) {
	a := New(DefaultConfig())

	// eyes -> mouth -> eyes: direct transitions only
	points := [][2]float64{
		{0.5, 0.38}, {0.5, 0.70}, {0.5, 0.38},
	}
	t0 := 0.0
	for _, p := range points {
		_, t0 = dwell(a, p[0], p[1], t0, 120)
		t0 += 100
	}
	res := a.Update(0.9, 0.9, t0)

	na := res.NoseAnchor
	if na.Transitions != 2 || na.Anchored || na.Ratio != 0 {
		t.Errorf("Direct transits: got %+v, want 2 transitions, not anchored", na)
	}
}

func TestReanchor_FollowsLandmarks(t *testing.T) {
	f := &face.LandmarkFrame{Landmarks: make([]face.Point, face.MinLandmarks)}
	set := func(i int, x, y float64) { f.Landmarks[i] = face.Point{X: x, Y: y} }

	// Face shifted toward the upper-left of the frame
	set(face.RightEyeOuter, 0.20, 0.30)
	set(face.LeftEyeOuter, 0.40, 0.30)
	set(face.NoseTip, 0.30, 0.40)
	set(face.MouthRight, 0.24, 0.48)
	set(face.MouthLeft, 0.36, 0.48)
	set(face.Chin, 0.30, 0.58)
	set(face.Forehead, 0.30, 0.12)

	aois := Reanchor(DefaultAOIs(), f)

	if got := Classify(aois, 0.30, 0.30); got != RegionEyes {
		t.Errorf("Eye midpoint: got %q, want %q", got, RegionEyes)
	}
	if got := Classify(aois, 0.30, 0.48); got != RegionMouth {
		t.Errorf("Mouth midpoint: got %q, want %q", got, RegionMouth)
	}
	if got := Classify(aois, 0.30, 0.40); got != RegionNose {
		t.Errorf("Nose tip: got %q, want %q", got, RegionNose)
	}
}

func TestReanchor_InvalidFrameKeepsLayout(t *testing.T) {
	orig := DefaultAOIs()
	out := Reanchor(orig, nil)
	if len(out) != len(orig) || out[0] != orig[0] {
		t.Error("Invalid frame should leave the layout unchanged")
	}
}

func TestHeatmap_DecayMonotone(t *testing.T) {
	h := NewHeatmap(8, 8, 0.9)
	h.AddPoint(0.5, 0.5, 1.0)

	prev := h.Snapshot()
	for pass := 0; pass < 20; pass++ {
		h.Decay()
		cur := h.Snapshot()
		for i := range cur {
			if cur[i] > prev[i] {
				t.Fatalf("Pass %d cell %d grew: %v -> %v", pass, i, prev[i], cur[i])
			}
			if prev[i] > 0 && cur[i] >= prev[i] {
				t.Fatalf("Pass %d cell %d did not decrease: %v -> %v", pass, i, prev[i], cur[i])
			}
		}
		prev = cur
	}
}

func TestHeatmap_AddPointClampsToGrid(t *testing.T) {
	h := NewHeatmap(8, 8, 0.9)
	h.AddPoint(1.5, -0.2, 1.0)
	if h.Max() <= 0 {
		t.Error("Out-of-range point should still deposit at the clamped edge")
	}
	if h.Cell(7, 0) <= 0 {
		t.Error("Deposit should land at the clamped corner cell")
	}
}

func TestHeatmap_Reset(t *testing.T) {
	h := NewHeatmap(4, 4, 0.9)
	h.AddPoint(0.5, 0.5, 2.0)
	h.Reset()
	if h.Max() != 0 {
		t.Errorf("Reset should zero the grid, max=%v", h.Max())
	}
}
