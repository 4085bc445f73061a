package httpapi

import "codeberg.org/mutker/producflow/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig  = errors.ErrorCode("httpapi_invalid_config")
	ErrInvalidTimeout = errors.ErrorCode("httpapi_invalid_timeout")

	// Request Errors
	ErrInvalidRequest = errors.ErrInvalidArgument

	// Server Errors
	ErrServe    = errors.ErrServeHTTP
	ErrShutdown = errors.ErrShutdownFailed
	ErrExport   = errors.ErrorCode("httpapi_export_failed")
)
