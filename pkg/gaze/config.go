package gaze

// Config holds all tunable parameters for screen gaze estimation.
type Config struct {
	// Sensitivity maps the raw gaze vector to screen offsets before
	// calibration (screen = 0.5 + Sensitivity*g).
	Sensitivity float64

	// HeadPoseCoeff scales the yaw/pitch correction subtracted from the
	// eye-in-head gaze vector.
	HeadPoseCoeff float64

	// BlinkSkipThreshold: frames whose mean blink blendshape exceeds
	// this are skipped entirely (last known gaze is returned).
	BlinkSkipThreshold float64

	// Smoothing
	SmoothWindow int     // weighted moving average over last k raw positions
	SmoothFactor float64 // exponential blend weight of the new WMA

	// Calibration
	SamplesPerPoint int // gaze samples averaged per target

	// Confidence
	PlausibleGazeSpan float64 // gaze vector magnitude considered extreme
	StabilityWindow   int     // recent outputs feeding the variance term
	StabilityGain     float64 // stddev scale in the stability term
}

// DefaultConfig returns the recommended gaze estimation configuration.
func DefaultConfig() Config {
	return Config{
		Sensitivity:        2.0,
		HeadPoseCoeff:      0.3,
		BlinkSkipThreshold: 0.5,

		SmoothWindow: 5,
		SmoothFactor: 0.4,

		SamplesPerPoint: 20,

		PlausibleGazeSpan: 0.5,
		StabilityWindow:   10,
		StabilityGain:     20,
	}
}
