package gaze

import "errors"

var (
	// ErrCalibrationActive is returned when starting a calibration that
	// is already running.
	ErrCalibrationActive = errors.New("gaze calibration already active")

	// ErrCalibrationNotActive is returned when cancelling without a
	// running calibration.
	ErrCalibrationNotActive = errors.New("gaze calibration not active")

	// ErrInsufficientPoints is returned when solving a calibration with
	// fewer target points than the model has coefficients.
	ErrInsufficientPoints = errors.New("not enough calibration points")
)
