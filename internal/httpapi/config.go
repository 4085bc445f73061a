package httpapi

import (
	"time"

	"codeberg.org/mutker/producflow/internal/errors"
)

const (
	defaultAddr            = ":8000"
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultShutdownTimeout = 10 * time.Second
)

type Config struct {
	Addr            string
	CORSOrigins     []string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Addr:            defaultAddr,
		CORSOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		ReadTimeout:     defaultReadTimeout,
		WriteTimeout:    defaultWriteTimeout,
		ShutdownTimeout: defaultShutdownTimeout,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if c.Addr == "" {
		return errFactory.WithMessage(ErrInvalidConfig, "server address must not be empty")
	}
	if c.ReadTimeout <= 0 || c.WriteTimeout <= 0 || c.ShutdownTimeout <= 0 {
		return errFactory.WithData(ErrInvalidTimeout, struct {
			Read     string
			Write    string
			Shutdown string
		}{
			Read:     c.ReadTimeout.String(),
			Write:    c.WriteTimeout.String(),
			Shutdown: c.ShutdownTimeout.String(),
		})
	}
	return nil
}
