// Package blink segments a continuous eye-openness signal into discrete
// blink events and derives rate, amplitude and rhythm statistics over a
// sliding window, plus heuristic anxiety/focus/dopamine-activity indices
// relative to a personal baseline.
package blink

import (
	"math"

	"github.com/Yukkurisiteikitai/deepface-facs/pkg/history"
)

// Level is an ordinal bucket for the derived indices.
type Level string

const (
	LevelLow      Level = "low"
	LevelModerate Level = "moderate"
	LevelHigh     Level = "high"
)

// Event is one completed blink. Immutable once emitted.
type Event struct {
	Start     float64 `json:"start"`     // ms
	End       float64 `json:"end"`       // ms
	Duration  float64 `json:"duration"`  // ms
	Amplitude float64 `json:"amplitude"` // openness drop from pre-onset level
}

// Stats summarize the sliding window.
type Stats struct {
	// Rate is blinks per minute over the stats window.
	Rate          float64 `json:"rate"`
	MeanAmplitude float64 `json:"mean_amplitude"`
	MeanDuration  float64 `json:"mean_duration"`

	// RhythmRegularity = 1 - min(1, CV of inter-blink intervals).
	// 1 means metronomic blinking, 0 means highly irregular.
	RhythmRegularity float64 `json:"rhythm_regularity"`
}

// Indices are heuristic psychophysiological interpretations of blink
// behavior relative to baseline. Labels, not diagnoses.
type Indices struct {
	Anxiety          Level `json:"anxiety"`
	Focus            Level `json:"focus"`
	DopamineActivity Level `json:"dopamine_activity"`
}

// Calibration reports the frozen baseline state.
type Calibration struct {
	Calibrated        bool    `json:"calibrated"`
	BaselineRate      float64 `json:"baseline_rate"`
	BaselineAmplitude float64 `json:"baseline_amplitude"`
}

// Result is the per-frame output record.
type Result struct {
	Blinking    bool        `json:"blinking"`
	Event       *Event      `json:"event,omitempty"` // set on the frame a blink completes
	Stats       Stats       `json:"stats"`
	Indices     Indices     `json:"indices"`
	Calibration Calibration `json:"calibration"`
}

type phase int

const (
	phaseOpen phase = iota
	phaseClosed
)

// Detector is a state machine over openness samples. Not safe for
// concurrent use.
type Detector struct {
	cfg Config

	state            phase
	onsetTime        float64
	preOnsetOpenness float64
	minOpenness      float64
	lastOpenness     float64
	hasLast          bool

	events *history.Rolling[Event]

	// Calibration
	startTime    float64
	started      bool
	calibrated   bool
	baseRate     float64
	baseAmp      float64
	warmupBlinks []Event
}

// New creates a blink detector.
func New(cfg Config) *Detector {
	return &Detector{
		cfg:    cfg,
		events: history.NewRolling[Event](cfg.EventHistorySize, cfg.StatsWindow),
	}
}

// IsCalibrated reports whether the baseline has been frozen.
func (d *Detector) IsCalibrated() bool { return d.calibrated }

// ResetCalibration discards the frozen baseline and restarts warm-up at
// the next sample.
func (d *Detector) ResetCalibration() {
	d.calibrated = false
	d.started = false
	d.warmupBlinks = nil
}

// Update consumes one openness sample (0..1) at timestamp t (ms) and
// returns the per-frame result. A completed blink appears in
// Result.Event exactly once, on the closing frame.
func (d *Detector) Update(openness, t float64) Result {
	if !d.started {
		d.started = true
		d.startTime = t
	}

	var emitted *Event

	switch d.state {
	case phaseOpen:
		if openness < d.cfg.BlinkThreshold {
			d.state = phaseClosed
			d.onsetTime = t
			d.minOpenness = openness
			if d.hasLast {
				d.preOnsetOpenness = d.lastOpenness
			} else {
				d.preOnsetOpenness = 1
			}
		}
	case phaseClosed:
		if openness < d.minOpenness {
			d.minOpenness = openness
		}
		if openness >= d.cfg.BlinkThreshold {
			d.state = phaseOpen
			duration := t - d.onsetTime
			if duration >= d.cfg.MinBlinkDuration && duration <= d.cfg.MaxBlinkDuration {
				ev := Event{
					Start:     d.onsetTime,
					End:       t,
					Duration:  duration,
					Amplitude: math.Max(0, d.preOnsetOpenness-d.minOpenness),
				}
				d.events.Push(t, ev)
				emitted = &ev
				if !d.calibrated {
					d.warmupBlinks = append(d.warmupBlinks, ev)
				}
			}
		}
	}

	d.lastOpenness = openness
	d.hasLast = true

	d.maybeFreeze(t)

	stats := d.stats(t)
	return Result{
		Blinking: d.state == phaseClosed,
		Event:    emitted,
		Stats:    stats,
		Indices:  d.indices(stats),
		Calibration: Calibration{
			Calibrated:        d.calibrated,
			BaselineRate:      d.baselineRate(),
			BaselineAmplitude: d.baselineAmplitude(),
		},
	}
}

// maybeFreeze transitions to the calibrated state exactly once, after the
// warm-up duration has elapsed.
func (d *Detector) maybeFreeze(t float64) {
	if d.calibrated || t-d.startTime < d.cfg.CalibrationDuration {
		return
	}
	elapsedMin := (t - d.startTime) / 60_000
	if len(d.warmupBlinks) > 0 && elapsedMin > 0 {
		d.baseRate = float64(len(d.warmupBlinks)) / elapsedMin
		sum := 0.0
		for _, ev := range d.warmupBlinks {
			sum += ev.Amplitude
		}
		d.baseAmp = sum / float64(len(d.warmupBlinks))
	} else {
		d.baseRate = d.cfg.FallbackRate
		d.baseAmp = d.cfg.FallbackAmplitude
	}
	d.calibrated = true
	d.warmupBlinks = nil
}

func (d *Detector) baselineRate() float64 {
	if d.calibrated {
		return d.baseRate
	}
	return d.cfg.FallbackRate
}

func (d *Detector) baselineAmplitude() float64 {
	if d.calibrated {
		return d.baseAmp
	}
	return d.cfg.FallbackAmplitude
}

// stats computes the sliding-window summary. With no blinks in the
// window the result is all zeros except regularity, which reads 1
// (no intervals means nothing irregular yet); callers should treat a
// zero-rate window as "not yet meaningful".
func (d *Detector) stats(t float64) Stats {
	d.events.EvictBefore(t - d.cfg.StatsWindow)
	samples := d.events.Samples()
	n := len(samples)
	if n == 0 {
		return Stats{RhythmRegularity: 1}
	}

	windowMin := d.cfg.StatsWindow / 60_000
	ampSum, durSum := 0.0, 0.0
	for _, s := range samples {
		ampSum += s.Value.Amplitude
		durSum += s.Value.Duration
	}

	return Stats{
		Rate:             float64(n) / windowMin,
		MeanAmplitude:    ampSum / float64(n),
		MeanDuration:     durSum / float64(n),
		RhythmRegularity: d.regularity(samples),
	}
}

// regularity = 1 - min(1, coefficient of variation of inter-blink
// intervals). Needs at least two intervals; below that it reads 1.
func (d *Detector) regularity(samples []history.Sample[Event]) float64 {
	if len(samples) < 3 {
		return 1
	}
	intervals := make([]float64, 0, len(samples)-1)
	for i := 1; i < len(samples); i++ {
		intervals = append(intervals, samples[i].Value.Start-samples[i-1].Value.Start)
	}
	mean := 0.0
	for _, iv := range intervals {
		mean += iv
	}
	mean /= float64(len(intervals))
	if mean == 0 {
		return 0
	}
	variance := 0.0
	for _, iv := range intervals {
		variance += (iv - mean) * (iv - mean)
	}
	variance /= float64(len(intervals))
	cv := math.Sqrt(variance) / mean
	return 1 - math.Min(1, cv)
}

// indices buckets rate/amplitude change from baseline into ordinal
// levels. Deterministic given the config breakpoints.
func (d *Detector) indices(s Stats) Indices {
	baseRate := d.baselineRate()
	baseAmp := d.baselineAmplitude()

	rateChange := 0.0
	if baseRate > 0 {
		rateChange = (s.Rate - baseRate) / baseRate
	}
	ampChange := 0.0
	if baseAmp > 0 && s.MeanAmplitude > 0 {
		ampChange = (s.MeanAmplitude - baseAmp) / baseAmp
	}

	anxiety := LevelLow
	switch {
	case rateChange > d.cfg.AnxietyRateHigh && s.RhythmRegularity < d.cfg.AnxietyRegularity:
		anxiety = LevelHigh
	case rateChange > d.cfg.AnxietyRateModerate:
		anxiety = LevelModerate
	}

	focus := LevelLow
	switch {
	case rateChange < d.cfg.FocusRateHigh:
		focus = LevelHigh
	case rateChange < d.cfg.FocusRateModerate:
		focus = LevelModerate
	}

	dopamine := LevelLow
	switch {
	case rateChange > d.cfg.DopamineRateHigh && ampChange > d.cfg.DopamineAmpHigh:
		dopamine = LevelHigh
	case rateChange > d.cfg.DopamineRateModerate:
		dopamine = LevelModerate
	}

	return Indices{Anxiety: anxiety, Focus: focus, DopamineActivity: dopamine}
}

// RecentEvents returns the blink events currently inside the stats
// window, oldest first.
func (d *Detector) RecentEvents() []Event {
	samples := d.events.Samples()
	out := make([]Event, len(samples))
	for i, s := range samples {
		out[i] = s.Value
	}
	return out
}
