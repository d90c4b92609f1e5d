package calibration

import "errors"

var (
	ErrLoadCalibration    = errors.New("load calibration")
	ErrInvalidCalibration = errors.New("invalid calibration")
)
