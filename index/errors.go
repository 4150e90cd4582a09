package index

import "errors"

// Sentinel errors for index operations.
var (
	ErrIndexNotFound = errors.New("index: index not found")
	ErrUnavailable   = errors.New("index: unavailable")
)

// Op names used for error context.
const (
	OpSearch = "SEARCH"
	OpPing   = "PING"
	OpGroup  = "GROUP"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
