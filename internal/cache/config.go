package cache

import (
	"time"

	"codeberg.org/mutker/producflow/internal/errors"
)

const defaultTTL = 30 * time.Second

type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

func DefaultConfig() Config {
	return Config{
		TTL: defaultTTL,
	}
}

// Enabled reports whether a Redis server is configured.
func (c Config) Enabled() bool {
	return c.RedisAddr != ""
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if !c.Enabled() {
		return nil
	}
	if c.TTL <= 0 {
		return errFactory.WithData(ErrInvalidTTL, c.TTL.String())
	}
	if c.RedisDB < 0 {
		return errFactory.WithData(ErrInvalidConfig, c.RedisDB)
	}
	return nil
}
