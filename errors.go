package rigel

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument signals a caller precondition violation, such as a
	// blank identifier. Returned before any index call.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrMissingValue signals a Field read on a document without that attribute.
	ErrMissingValue = errors.New("missing value")
	// ErrTypeMismatch signals a stored value incompatible with the Field's type.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrQueryConsumed signals a second Get on a single-use query builder.
	ErrQueryConsumed = errors.New("query already executed")
	// ErrResultTooLarge signals a join whose origin matched more documents
	// than the client's row cap. Raise WithMaxRows or narrow the origin.
	ErrResultTooLarge = errors.New("result too large")
)

// TypeMismatchError wraps ErrTypeMismatch with the offending field and value type.
type TypeMismatchError struct {
	Field string
	Want  ValueType
	Got   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: field %q wants %s, stored value is %s", ErrTypeMismatch.Error(), e.Field, e.Want, e.Got)
}

func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }
