package scoring

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel error kinds. FieldError unwraps to one of the field kinds so
// callers can use errors.Is.
var (
	ErrMissingField = errors.New("missing field")
	ErrTypeMismatch = errors.New("type mismatch")
	ErrNilTable     = errors.New("nil table")
)

// Error kind labels used for metrics and API error codes.
const (
	KindMissingField = "missing_field"
	KindTypeMismatch = "type_mismatch"
	KindCanceled     = "canceled"
	KindInternal     = "internal"
)

// FieldError reports a malformed input cell.
type FieldError struct {
	Row   int
	Field string
	Value any
	Kind  error
}

func (e *FieldError) Error() string {
	if errors.Is(e.Kind, ErrTypeMismatch) {
		return fmt.Sprintf("row %d: field %q: %v (got %T %v)", e.Row, e.Field, e.Kind, e.Value, e.Value)
	}
	return fmt.Sprintf("row %d: field %q: %v", e.Row, e.Field, e.Kind)
}

func (e *FieldError) Unwrap() error { return e.Kind }

// ErrorKind classifies err into one of the Kind* labels.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrMissingField):
		return KindMissingField
	case errors.Is(err, ErrTypeMismatch):
		return KindTypeMismatch
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindInternal
	}
}
