package pid

import "codeberg.org/mutker/producflow/internal/errors"

const (
	ErrAlreadyRunning = errors.ErrAlreadyRunning
	ErrPIDFile        = errors.ErrorCode("pid_file_failed")
)
