package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted      = errors.New("service not started")
	ErrNoZones         = errors.New("no zone map configured")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session closed")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrBackpressure    = errors.New("frame queue full")
	ErrInvalidFrame    = errors.New("invalid frame")
	ErrInvalidPlayer   = errors.New("invalid player")
	ErrPuttLog         = errors.New("append putt log")
)
