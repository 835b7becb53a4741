package config

import "errors"

// Sentinel errors. Validate wraps ErrInvalidConfig; Load wraps
// ErrLoadConfig for file, env and decode failures.
var (
	ErrInvalidConfig = errors.New("invalid tpi configuration")
	ErrLoadConfig    = errors.New("failed to load tpi configuration")
)
