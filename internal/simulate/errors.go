package simulate

import "errors"

// Sentinel kinds for simulation errors.
var (
	ErrLayout   = errors.New("calibration cannot host a synthetic putt")
	ErrStatus   = errors.New("unexpected response status")
	ErrMismatch = errors.New("report does not match the script")
)
