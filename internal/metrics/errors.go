package metrics

import "codeberg.org/mutker/producflow/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig           = errors.ErrInvalidConfig
	ErrInvalidWindow           = errors.ErrorCode("metrics_invalid_window")
	ErrInvalidEfficiencySource = errors.ErrorCode("metrics_invalid_efficiency_source")
)
