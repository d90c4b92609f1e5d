package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicate     = errors.New("session already archived")
	ErrInvalidRecord = errors.New("invalid session record")
	ErrMigrate       = errors.New("schema migration failed")
)
