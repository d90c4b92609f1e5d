package classifier

import "errors"

var (
	// ErrOutOfOrder is returned when a frame is older than the last one
	// processed. The classifier state is left untouched.
	ErrOutOfOrder = errors.New("frame out of order")
	// ErrInvalidFrameTime is returned for NaN, infinite or negative times.
	ErrInvalidFrameTime = errors.New("invalid frame time")
)
