package store

import (
	"codeberg.org/mutker/producflow/internal/errors"
)

const (
	// File system permissions and paths
	defaultDirPerm   = 0o755
	defaultDSN       = "/var/lib/producflow/producflow.db"
	defaultBackupDir = "/var/lib/producflow/backups"

	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

type Config struct {
	Driver       string
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	BackupDir    string
	Seed         bool
}

func DefaultConfig() Config {
	return Config{
		Driver:       DriverSQLite,
		DSN:          defaultDSN,
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		BackupDir:    defaultBackupDir,
		Seed:         false,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if c.Driver != DriverSQLite && c.Driver != DriverPostgres {
		return errFactory.WithData(ErrInvalidDriver, c.Driver)
	}
	if c.DSN == "" {
		return errFactory.New(ErrInvalidDSN)
	}
	if c.MaxOpenConns < 0 || c.MaxIdleConns < 0 {
		return errFactory.WithMessage(ErrInvalidConfig, "connection pool sizes must not be negative")
	}
	return nil
}
