package cache

import "errors"

var (
	// Validation errors
	ErrInvalidTTL     = errors.New("ttl must be a positive whole number of milliseconds or Forever")
	ErrTTLRequired    = errors.New("ttl is required")
	ErrInvalidMax     = errors.New("max must be a positive entry count")
	ErrInvalidDispose = errors.New("dispose must be a non-nil func(value, key, reason) matching the cache types")
	ErrInvalidEqual   = errors.New("equal must be a non-nil func(a, b) matching the cache value type")
)
