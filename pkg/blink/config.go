package blink

// Config holds all tunable parameters for blink detection. The index
// breakpoints are fixed heuristics; scenario tests pin them, but they are
// interpretive labels, not diagnostic claims.
type Config struct {
	// Detection
	BlinkThreshold   float64 // Openness below this counts as closed
	MinBlinkDuration float64 // ms; shorter dips are noise, not blinks
	MaxBlinkDuration float64 // ms; longer closures are eye closure, not blinks

	// Statistics
	StatsWindow      float64 // ms; sliding window for rate/amplitude stats
	EventHistorySize int     // Max retained blink events

	// Calibration
	CalibrationDuration float64 // ms of warm-up before the baseline freezes

	// Population fallbacks used until calibration freezes
	FallbackRate      float64 // blinks per minute
	FallbackAmplitude float64

	// Index breakpoints (rate/amplitude change are relative to baseline)
	AnxietyRateHigh     float64 // rate increase for "high" anxiety
	AnxietyRateModerate float64
	AnxietyRegularity   float64 // irregular rhythm gate for "high"
	FocusRateHigh       float64 // rate decrease (negative) for "high" focus
	FocusRateModerate   float64
	DopamineRateHigh    float64
	DopamineAmpHigh     float64
	DopamineRateModerate float64
}

// DefaultConfig returns the recommended blink detection configuration.
func DefaultConfig() Config {
	return Config{
		BlinkThreshold:   0.3,
		MinBlinkDuration: 50,
		MaxBlinkDuration: 500,

		StatsWindow:      60_000,
		EventHistorySize: 120,

		CalibrationDuration: 30_000,

		FallbackRate:      15,
		FallbackAmplitude: 0.7,

		AnxietyRateHigh:     0.5,
		AnxietyRateModerate: 0.25,
		AnxietyRegularity:   0.5,
		FocusRateHigh:       -0.3,
		FocusRateModerate:   -0.1,
		DopamineRateHigh:    0.3,
		DopamineAmpHigh:     0.1,
		DopamineRateModerate: 0.1,
	}
}
