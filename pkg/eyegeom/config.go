package eyegeom

// Config holds all tunable parameters for eye geometry analysis.
type Config struct {
	// Smoothing
	SmoothingWindow int // Weighted moving average window over raw EAR

	// Calibration
	CalibrationSamples int // EAR samples per eye before freezing the range

	// Conservative EAR range assumed before calibration completes
	EstimatedEARMin float64
	EstimatedEARMax float64

	// Narrow-eye handling: a frozen baseline below NarrowEyeBaseline gets
	// gamma-corrected openness (gamma < 1) to preserve sensitivity for
	// naturally narrow eyes.
	NarrowEyeBaseline float64
	NarrowEyeGamma    float64

	// Geometric AU fallbacks
	SquintOpenness float64 // Openness below this suggests AU7
	WideOpenness   float64 // Openness above this suggests AU5
	ClosedOpenness float64 // Openness below this suggests AU43

	// Brow geometry: neutral brow height and raise span, both as a
	// fraction of eye width.
	BrowNeutralHeight float64
	BrowRaiseSpan     float64
}

// DefaultConfig returns the recommended eye geometry configuration.
func DefaultConfig() Config {
	return Config{
		SmoothingWindow:    5,
		CalibrationSamples: 30,

		// Typical human EAR range; used only until calibration freezes
		EstimatedEARMin: 0.10,
		EstimatedEARMax: 0.40,

		NarrowEyeBaseline: 0.22,
		NarrowEyeGamma:    0.7,

		SquintOpenness: 0.35,
		WideOpenness:   0.85,
		ClosedOpenness: 0.15,

		BrowNeutralHeight: 0.55,
		BrowRaiseSpan:     0.25,
	}
}
