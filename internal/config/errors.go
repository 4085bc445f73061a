package config

import "codeberg.org/mutker/producflow/internal/errors"

const (
	ErrInvalidConfig    = errors.ErrInvalidConfig
	ErrReadConfig       = errors.ErrReadConfig
	ErrBindFlags        = errors.ErrBindFlags
	ErrParseFlags       = errors.ErrorCode("config_parse_flags_failed")
	ErrLoadDotenv       = errors.ErrorCode("config_load_dotenv_failed")
	ErrInvalidLogLevel  = errors.ErrInvalidLogLevel
	ErrInvalidLogFormat = errors.ErrorCode("invalid_log_format")
)
