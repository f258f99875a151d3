package pupil

// Config holds all tunable parameters for pupillometry.
type Config struct {
	// Baseline calibration
	BaselineSamples int // samples averaged per eye, then frozen

	// Response classification, relative to baseline
	DilationThreshold     float64 // at or above = "dilation"
	ConstrictionThreshold float64 // at or below = "constriction" (negative)

	// Light compensation
	LightGain      float64 // compensation strength per unit brightness
	LightReference float64 // brightness with a factor of exactly 1
	LightFactorMin float64
	LightFactorMax float64

	// Temporal dynamics
	TrendWindow        int     // samples per half when comparing recent vs prior
	TrendThreshold     float64 // relative mean difference for a trend call
	DelayedVelocity    float64 // mean |delta|/baseline below this = "delayed"
	ProlongedMagnitude float64 // relative deviation that counts as sustained
	ProlongedFraction  float64 // share of window that must sustain it

	// History
	HistorySize int

	// Emotion heuristic
	ConfidenceGain float64 // confidence = min(1, gain * |relative change|)

	// Cognitive load
	LoadDeviationWeight   float64
	LoadVariabilityWeight float64
	LoadDeviationScale    float64 // |relative change| mapping to a full deviation term
	LoadVariabilityScale  float64 // coefficient of variation mapping to a full term
	LoadMediumThreshold   float64
	LoadHighThreshold     float64
}

// DefaultConfig returns the recommended pupillometry configuration.
func DefaultConfig() Config {
	return Config{
		BaselineSamples: 60,

		DilationThreshold:     0.05,
		ConstrictionThreshold: -0.03,

		LightGain:      0.5,
		LightReference: 0.5,
		LightFactorMin: 0.7,
		LightFactorMax: 1.3,

		TrendWindow:        30,
		TrendThreshold:     0.01,
		DelayedVelocity:    0.002,
		ProlongedMagnitude: 0.04,
		ProlongedFraction:  0.9,

		HistorySize: 120,

		ConfidenceGain: 8,

		LoadDeviationWeight:   0.6,
		LoadVariabilityWeight: 0.4,
		LoadDeviationScale:    0.15,
		LoadVariabilityScale:  0.05,
		LoadMediumThreshold:   0.33,
		LoadHighThreshold:     0.66,
	}
}
