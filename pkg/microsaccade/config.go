package microsaccade

// Config holds all tunable parameters for microsaccade detection.
// Positions are in normalized screen units; speeds are units per second.
type Config struct {
	// Peak detection
	VelocityThreshold float64 // Min peak speed (units/s)
	PeakWindow        int     // Velocity samples scanned for peaks

	// Amplitude acceptance band. Displacements above AmplitudeMax are
	// voluntary saccades and are excluded on purpose.
	AmplitudeMin float64
	AmplitudeMax float64

	// DuplicateWindow suppresses a candidate when an accepted event
	// already exists within this many ms.
	DuplicateWindow float64

	// Histories
	VelocityHistorySize int
	EventHistoryAge     float64 // ms

	// Directional bias
	BiasWindow       float64 // ms of events feeding the bias vector
	BiasSignificance float64 // bias magnitude above this is significant

	// Rate / inhibition
	RateWindow          float64 // ms window for the recent event rate
	InhibitionRatio     float64 // enter inhibition below ratio × baseline
	FallbackRate        float64 // events/s assumed before calibration
	CalibrationDuration float64 // ms before the baseline rate freezes
}

// DefaultConfig returns the recommended microsaccade configuration.
func DefaultConfig() Config {
	return Config{
		VelocityThreshold: 0.06,
		PeakWindow:        10,

		AmplitudeMin: 0.002,
		AmplitudeMax: 0.03,

		DuplicateWindow: 100,

		VelocityHistorySize: 64,
		EventHistoryAge:     30_000,

		BiasWindow:       10_000,
		BiasSignificance: 0.3,

		RateWindow:          4_000,
		InhibitionRatio:     0.5,
		FallbackRate:        1.2,
		CalibrationDuration: 20_000,
	}
}
