package table

import "errors"

// Sentinel errors for table operations.
var (
	ErrUnknownColumn  = errors.New("unknown column")
	ErrLengthMismatch = errors.New("column length mismatch")
)
