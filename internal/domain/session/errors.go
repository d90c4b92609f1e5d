package session

import "errors"

var (
	// ErrOutOfOrder is returned when event times decrease.
	ErrOutOfOrder = errors.New("events out of order")
)
