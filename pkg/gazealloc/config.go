package gazealloc

// Config holds all tunable parameters for gaze allocation analysis.
type Config struct {
	// Fixation segmentation
	FixationRadius      float64 // max displacement from centroid (normalized units)
	MinFixationDuration float64 // ms; shorter dwells are discarded
	CentroidSmoothing   float64 // EW weight of a new sample in the centroid

	// History
	FixationWindow float64 // ms of accepted fixations retained

	// Pattern matching
	MinPatternFixations int // below this, pattern = "insufficient_data"

	// Scan-path classification breakpoints
	FixatedCoverage     float64 // coverage at or below + long fixations = "fixated"
	FocusedCoverage     float64 // coverage at or below + medium fixations = "focused"
	ExploratoryCoverage float64 // coverage at or above = "exploratory"
	LongFixation        float64 // ms
	MediumFixation      float64 // ms
	HighPathLength      float64 // normalized units; at or above = "exploratory"

	// Nose anchor
	NoseAnchorThreshold float64 // via-nose transition ratio flagging the anchor
}

// DefaultConfig returns the recommended gaze allocation configuration.
func DefaultConfig() Config {
	return Config{
		FixationRadius:      0.05,
		MinFixationDuration: 100,
		CentroidSmoothing:   0.2,

		FixationWindow: 30_000,

		MinPatternFixations: 5,

		FixatedCoverage:     0.2,
		FocusedCoverage:     0.4,
		ExploratoryCoverage: 0.6,
		LongFixation:        400,
		MediumFixation:      250,
		HighPathLength:      1.5,

		NoseAnchorThreshold: 0.5,
	}
}
