package putlog

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedRow  = errors.New("malformed log row")
	ErrOutOfOrder    = errors.New("log row out of order")
	ErrMissingColumn = errors.New("missing log column")
)

// RowError describes a rejected row. Line counts from 1 and includes the
// header.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }
