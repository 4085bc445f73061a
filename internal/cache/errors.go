package cache

import "codeberg.org/mutker/producflow/internal/errors"

const (
	ErrInvalidConfig = errors.ErrInvalidConfig
	ErrInvalidTTL    = errors.ErrorCode("cache_invalid_ttl")
	ErrConnect       = errors.ErrorCode("cache_connect_failed")
	ErrMiss          = errors.ErrorCode("cache_miss")
	ErrBackend       = errors.ErrorCode("cache_backend_failed")
)
