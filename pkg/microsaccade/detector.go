// Package microsaccade detects small involuntary eye movements in a gaze
// position stream via velocity-peak detection, with amplitude filtering
// to exclude voluntary saccades, directional bias tracking, and an
// inhibition ("freezing") state when the microsaccade rate collapses
// below the personal baseline.
package microsaccade

import (
	"math"

	"github.com/Yukkurisiteikitai/deepface-facs/pkg/history"
)

// Direction labels for the 8 compass buckets, counterclockwise from
// screen-right. North is screen-up (negative Y in image coordinates).
var directionLabels = [8]string{"E", "NE", "N", "NW", "W", "SW", "S", "SE"}

// Event is one accepted microsaccade. Immutable once emitted.
type Event struct {
	Time         float64 `json:"time"`          // ms, at the velocity peak
	Amplitude    float64 `json:"amplitude"`     // net displacement magnitude
	PeakVelocity float64 `json:"peak_velocity"` // units/s
	Angle        float64 `json:"angle"`         // radians, atan2 convention
	Direction    string  `json:"direction"`     // compass bucket
}

// Bias is the amplitude-weighted vector mean of recent events.
type Bias struct {
	DX          float64 `json:"dx"`
	DY          float64 `json:"dy"`
	Magnitude   float64 `json:"magnitude"`
	Significant bool    `json:"significant"`
}

// Inhibition describes the freezing state.
type Inhibition struct {
	Active   bool    `json:"active"`
	Depth    float64 `json:"depth"`    // 0..1, how far below baseline
	Duration float64 `json:"duration"` // ms in the current episode
}

// Calibration reports the baseline rate state.
type Calibration struct {
	Calibrated   bool    `json:"calibrated"`
	BaselineRate float64 `json:"baseline_rate"` // events/s
}

// Result is the per-frame output record.
type Result struct {
	Event       *Event      `json:"event,omitempty"`
	Rate        float64     `json:"rate"` // events/s over the rate window
	Bias        Bias        `json:"bias"`
	Inhibition  Inhibition  `json:"inhibition"`
	Calibration Calibration `json:"calibration"`
}

// velSample is one entry in the velocity history.
type velSample struct {
	speed  float64 // units/s
	dx, dy float64 // displacement since previous gaze sample
}

// Detector consumes gaze positions and emits microsaccade events. Not
// safe for concurrent use.
type Detector struct {
	cfg Config

	lastX, lastY, lastT float64
	hasLast             bool

	velocities *history.Rolling[velSample]
	events     *history.Rolling[Event]

	lastEventTime float64
	hasEvent      bool

	// Inhibition episode
	inhibited      bool
	inhibitedSince float64

	// Calibration
	started     bool
	startTime   float64
	calibrated  bool
	baseRate    float64
	warmupCount int
}

// New creates a microsaccade detector.
func New(cfg Config) *Detector {
	return &Detector{
		cfg:        cfg,
		velocities: history.NewRolling[velSample](cfg.VelocityHistorySize, 0),
		events:     history.NewRolling[Event](0, cfg.EventHistoryAge),
	}
}

// IsCalibrated reports whether the baseline rate has been frozen.
func (d *Detector) IsCalibrated() bool { return d.calibrated }

// ResetCalibration restarts baseline accumulation at the next sample.
func (d *Detector) ResetCalibration() {
	d.calibrated = false
	d.started = false
	d.warmupCount = 0
}

// Update consumes one gaze position (normalized screen units) at
// timestamp t (ms). The first sample only primes the velocity history.
func (d *Detector) Update(x, y, t float64) Result {
	if !d.started {
		d.started = true
		d.startTime = t
	}

	if d.hasLast && t > d.lastT {
		dt := (t - d.lastT) / 1000 // seconds
		dx := x - d.lastX
		dy := y - d.lastY
		d.velocities.Push(t, velSample{
			speed: math.Hypot(dx, dy) / dt,
			dx:    dx,
			dy:    dy,
		})
	}
	d.lastX, d.lastY, d.lastT = x, y, t
	d.hasLast = true

	emitted := d.detectPeak(t)
	d.maybeFreeze(t)

	rate := d.recentRate(t)
	return Result{
		Event:       emitted,
		Rate:        rate,
		Bias:        d.bias(t),
		Inhibition:  d.inhibition(rate, t),
		Calibration: Calibration{Calibrated: d.calibrated, BaselineRate: d.baselineRate()},
	}
}

// detectPeak scans the trailing peak window for a local velocity maximum
// above threshold, integrates displacement over ±2 samples around it,
// applies the amplitude band, and suppresses duplicates within the
// configured window of the previous accepted event.
func (d *Detector) detectPeak(now float64) *Event {
	samples := d.velocities.Samples()
	n := len(samples)
	if n < 3 {
		return nil
	}
	start := n - d.cfg.PeakWindow
	if start < 1 {
		start = 1
	}

	for i := start; i < n-1; i++ {
		s := samples[i]
		if s.Value.speed <= samples[i-1].Value.speed || s.Value.speed <= samples[i+1].Value.speed {
			continue
		}
		if s.Value.speed < d.cfg.VelocityThreshold {
			continue
		}
		if d.hasEvent && s.Time-d.lastEventTime < d.cfg.DuplicateWindow {
			continue
		}

		// Net displacement over a ±2-sample window around the peak
		dx, dy := 0.0, 0.0
		for j := i - 2; j <= i+2; j++ {
			if j < 0 || j >= n {
				continue
			}
			dx += samples[j].Value.dx
			dy += samples[j].Value.dy
		}
		amplitude := math.Hypot(dx, dy)
		if amplitude < d.cfg.AmplitudeMin || amplitude > d.cfg.AmplitudeMax {
			continue
		}

		angle := math.Atan2(-dy, dx) // screen Y grows downward
		ev := Event{
			Time:         s.Time,
			Amplitude:    amplitude,
			PeakVelocity: s.Value.speed,
			Angle:        angle,
			Direction:    compass(angle),
		}
		d.events.Push(now, ev)
		d.lastEventTime = s.Time
		d.hasEvent = true
		if !d.calibrated {
			d.warmupCount++
		}
		return &ev
	}
	return nil
}

// compass buckets an angle into one of 8 direction labels.
func compass(angle float64) string {
	sector := int(math.Round(angle/(math.Pi/4))) % 8
	if sector < 0 {
		sector += 8
	}
	return directionLabels[sector]
}

func (d *Detector) maybeFreeze(t float64) {
	if d.calibrated || t-d.startTime < d.cfg.CalibrationDuration {
		return
	}
	elapsedS := (t - d.startTime) / 1000
	if d.warmupCount > 0 && elapsedS > 0 {
		d.baseRate = float64(d.warmupCount) / elapsedS
	} else {
		d.baseRate = d.cfg.FallbackRate
	}
	d.calibrated = true
}

func (d *Detector) baselineRate() float64 {
	if d.calibrated {
		return d.baseRate
	}
	return d.cfg.FallbackRate
}

// recentRate is events per second over the rate window.
func (d *Detector) recentRate(t float64) float64 {
	count := 0
	for _, s := range d.events.Samples() {
		if s.Value.Time >= t-d.cfg.RateWindow {
			count++
		}
	}
	return float64(count) / (d.cfg.RateWindow / 1000)
}

// bias is the amplitude-weighted vector mean of events in the bias
// window. Significant when its magnitude clears the configured floor.
func (d *Detector) bias(t float64) Bias {
	var sx, sy, wsum float64
	for _, s := range d.events.Samples() {
		ev := s.Value
		if ev.Time < t-d.cfg.BiasWindow {
			continue
		}
		sx += ev.Amplitude * math.Cos(ev.Angle)
		sy += ev.Amplitude * math.Sin(ev.Angle)
		wsum += ev.Amplitude
	}
	if wsum == 0 {
		return Bias{}
	}
	dx, dy := sx/wsum, sy/wsum
	mag := math.Hypot(dx, dy)
	return Bias{
		DX:          dx,
		DY:          dy,
		Magnitude:   mag,
		Significant: mag > d.cfg.BiasSignificance,
	}
}

// inhibition enters when the recent rate drops below the configured
// fraction of baseline and exits when it recovers.
func (d *Detector) inhibition(rate, t float64) Inhibition {
	threshold := d.cfg.InhibitionRatio * d.baselineRate()

	if rate < threshold {
		if !d.inhibited {
			d.inhibited = true
			d.inhibitedSince = t
		}
	} else {
		d.inhibited = false
	}

	if !d.inhibited {
		return Inhibition{}
	}
	depth := 0.0
	if base := d.baselineRate(); base > 0 {
		depth = clamp(1-rate/base, 0, 1)
	}
	return Inhibition{
		Active:   true,
		Depth:    depth,
		Duration: t - d.inhibitedSince,
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
