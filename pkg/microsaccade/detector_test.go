package microsaccade

import (
	"math"
	"testing"
)

const floatTolerance = 1e-9

// drive feeds x-axis displacements at 10ms intervals starting from
// (0.5, 0.5) and returns every emitted event.
func drive(d *Detector, dxs []float64) []Event {
	var events []Event
	x, y, t := 0.5, 0.5, 0.0
	d.Update(x, y, t)
	for _, dx := range dxs {
		t += 10
		x += dx
		res := d.Update(x, y, t)
		if res.Event != nil {
			events = append(events, *res.Event)
		}
	}
	return events
}

func TestDetector_AcceptsMicrosaccade(t *testing.T) {
	d := New(DefaultConfig())

	// Velocity bump: speeds 0.4, 0.6, 0.2 units/s with a strict peak,
	// net displacement 0.012 inside the amplitude band
	events := drive(d, []float64{0, 0.004, 0.006, 0.002, 0, 0, 0})

	if len(events) != 1 {
		t.Fatalf("Events: got %d, want 1", len(events))
	}
	ev := events[0]
	if math.Abs(ev.Amplitude-0.012) > 1e-9 {
		t.Errorf("Amplitude: got %v, want 0.012", ev.Amplitude)
	}
	if ev.Direction != "E" {
		t.Errorf("Direction: got %q, want E", ev.Direction)
	}
	if ev.Amplitude < DefaultConfig().AmplitudeMin || ev.Amplitude > DefaultConfig().AmplitudeMax {
		t.Errorf("Amplitude outside configured band: %v", ev.Amplitude)
	}
}

func TestDetector_RejectsSaccadeAboveAmplitudeMax(t *testing.T) {
	d := New(DefaultConfig()) // AmplitudeMax = 0.03

	// Net displacement 0.05: a voluntary saccade, not a microsaccade
	events := drive(d, []float64{0, 0.015, 0.02, 0.015, 0, 0, 0})

	if len(events) != 0 {
		t.Fatalf("Amplitude 0.05 spike must not be recorded, got %d events", len(events))
	}
}

func TestDetector_RejectsBelowAmplitudeMin(t *testing.T) {
	cfg := DefaultConfig()
	cfg.VelocityThreshold = 0.01 // let tiny drift produce velocity peaks
	d := New(cfg)

	// Net displacement 0.0012 < AmplitudeMin 0.002
	events := drive(d, []float64{0, 0.0004, 0.0006, 0.0002, 0, 0, 0})

	if len(events) != 0 {
		t.Fatalf("Sub-minimum amplitude recorded %d events, want 0", len(events))
	}
}

func TestDetector_DuplicateSuppression(t *testing.T) {
	d := New(DefaultConfig()) // DuplicateWindow = 100ms

	// Two velocity bumps 40ms apart: second is a duplicate
	events := drive(d, []float64{
		0, 0.004, 0.006, 0.002, // peak ~t30
		0, 0.004, 0.006, 0.002, // peak ~t70, suppressed
		0, 0, 0,
	})

	if len(events) != 1 {
		t.Fatalf("Events: got %d, want 1 (duplicate suppressed)", len(events))
	}
}

func TestDetector_SecondEventAfterSuppressionWindow(t *testing.T) {
	d := New(DefaultConfig())

	dxs := []float64{0, 0.004, 0.006, 0.002}
	// 200ms of stillness, then a second bump well past the window
	for i := 0; i < 20; i++ {
		dxs = append(dxs, 0)
	}
	dxs = append(dxs, 0.004, 0.006, 0.002, 0, 0)

	events := drive(d, dxs)
	if len(events) != 2 {
		t.Fatalf("Events: got %d, want 2", len(events))
	}
}

func TestDetector_DirectionBuckets(t *testing.T) {
	cases := []struct {
		angle float64
		want  string
	}{
		{0, "E"},
		{math.Pi / 4, "NE"},
		{math.Pi / 2, "N"},
		{3 * math.Pi / 4, "NW"},
		{math.Pi, "W"},
		{-math.Pi / 2, "S"},
		{-math.Pi / 4, "SE"},
		{-3 * math.Pi / 4, "SW"},
	}
	for _, c := range cases {
		if got := compass(c.angle); got != c.want {
			t.Errorf("compass(%v): got %q, want %q", c.angle, got, c.want)
		}
	}
}

func TestDetector_InhibitionOnQuietGaze(t *testing.T) {
	d := New(DefaultConfig())

	// Perfectly still gaze: no events, rate 0, below 50% of the
	// fallback baseline from the start
	var last Result
	for t2 := 0.0; t2 <= 3000; t2 += 100 {
		last = d.Update(0.5, 0.5, t2)
	}

	if !last.Inhibition.Active {
		t.Fatal("Expected inhibition with zero microsaccade rate")
	}
	if math.Abs(last.Inhibition.Depth-1) > floatTolerance {
		t.Errorf("Depth: got %v, want 1 (rate is zero)", last.Inhibition.Depth)
	}
	if last.Inhibition.Duration <= 0 {
		t.Errorf("Duration should grow, got %v", last.Inhibition.Duration)
	}
}

func TestDetector_BiasEastward(t *testing.T) {
	d := New(DefaultConfig())

	// Several eastward microsaccades: bias vector points east and is
	// significant (unit-vector mean of identical directions has norm 1)
	dxs := []float64{}
	for i := 0; i < 4; i++ {
		dxs = append(dxs, 0, 0.004, 0.006, 0.002)
		for j := 0; j < 15; j++ { // clear the duplicate window
			dxs = append(dxs, 0)
		}
	}
	var last Result
	x, t2 := 0.5, 0.0
	d.Update(x, 0.5, t2)
	for _, dx := range dxs {
		t2 += 10
		x += dx
		last = d.Update(x, 0.5, t2)
	}

	if last.Bias.DX <= 0 {
		t.Errorf("Bias DX should be positive (eastward), got %v", last.Bias.DX)
	}
	if !last.Bias.Significant {
		t.Errorf("Consistent direction should be significant, magnitude %v", last.Bias.Magnitude)
	}
}
