package smoketest

import "errors"

// Sentinel errors reported by Run.
var (
	ErrInvalidConfig = errors.New("invalid smoke config")
	ErrUnhealthy     = errors.New("service unhealthy")
	ErrBadStatus     = errors.New("unexpected status")
	ErrShortBatch    = errors.New("short batch")
	ErrMismatch      = errors.New("score mismatch")
	ErrFailures      = errors.New("batches failed")
)
