package zone

import "errors"

var (
	// ErrInvalidZone is returned when a polygon has fewer than three points
	// or is otherwise unusable.
	ErrInvalidZone = errors.New("invalid zone")
	// ErrMissingZone is returned when inference needs a zone that is absent.
	ErrMissingZone = errors.New("missing zone")
)
