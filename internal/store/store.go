package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/mutker/producflow/internal/errors"
	"codeberg.org/mutker/producflow/internal/logger"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Store is the relational record store. All timestamps are persisted as
// unix seconds and read back in UTC.
type Store struct {
	db      *sql.DB
	dialect dialect
	logger  logger.Logger
	cfg     Config
	now     func() time.Time
}

// Open connects to the configured database and migrates its schema.
func Open(ctx context.Context, cfg Config, log logger.Logger) (*Store, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	dsn := cfg.DSN
	if cfg.Driver == DriverSQLite && !strings.HasPrefix(dsn, ":memory:") && !strings.HasPrefix(dsn, "file:") {
		// Ensure the directory exists
		if err := os.MkdirAll(filepath.Dir(dsn), defaultDirPerm); err != nil {
			return nil, errFactory.WithData(ErrStorageInit, struct {
				Phase string
				Path  string
				Error string
			}{
				Phase: "create_directory",
				Path:  dsn,
				Error: err.Error(),
			})
		}
		// Open database with specific pragmas for better performance and safety
		dsn += "?_journal=WAL&_auto_vacuum=2&_busy_timeout=5000&_foreign_keys=1"
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Error string
		}{
			Phase: "open_database",
			Error: err.Error(),
		})
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Error string
		}{
			Phase: "ping_database",
			Error: err.Error(),
		})
	}

	s := newStore(db, cfg, log)

	if err := migrate(ctx, db, s.dialect, cfg.BackupDir, log); err != nil {
		db.Close()
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Error string
		}{
			Phase: "schema_version",
			Error: err.Error(),
		})
	}

	log.Info().
		Str("driver", cfg.Driver).
		Int("schema_version", SchemaVersion).
		Msg("Record store initialized")

	return s, nil
}

// NewWithDB wraps an already opened handle without touching its schema.
func NewWithDB(db *sql.DB, driver string, log logger.Logger) *Store {
	cfg := DefaultConfig()
	cfg.Driver = driver
	return newStore(db, cfg, log)
}

func newStore(db *sql.DB, cfg Config, log logger.Logger) *Store {
	d, ok := dialects[cfg.Driver]
	if !ok {
		d = dialects[DriverSQLite]
	}
	return &Store{
		db:      db,
		dialect: d,
		logger:  log,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return errors.New().Wrap(ErrStorageAccess, err)
	}
	return nil
}

func (s *Store) Close() error {
	errFactory := errors.New()

	// Checkpoint WAL and cleanup on close
	if s.dialect.supportsWAL {
		if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
			s.logger.Debug().Err(err).Msg("Failed to checkpoint WAL")
		}
	}

	if err := s.db.Close(); err != nil {
		return errFactory.WithData(ErrStorageClose, struct {
			Phase string
			Error string
		}{
			Phase: "close_database",
			Error: err.Error(),
		})
	}

	s.logger.Info().Msg("Record store closed gracefully")

	return nil
}

// withTx runs fn inside a transaction, committing when fn returns nil.
func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	errFactory := errors.New()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errFactory.Wrap(ErrTransactionFailed, err)
	}

	// Track transaction state
	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
				s.logger.Debug().Err(err).Msg("Failed to rollback transaction")
			}
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrTransactionFailed, err)
	}
	committed = true

	return nil
}

func (s *Store) access(err error) error {
	return errors.New().Wrap(ErrStorageAccess, err)
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func nullUnix(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func fromUnix(n int64) time.Time {
	return time.Unix(n, 0).UTC()
}

func fromNullUnix(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := fromUnix(n.Int64)
	return &t
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func fromNullFloat(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	f := n.Float64
	return &f
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	s := n.String
	return &s
}

// page appends LIMIT/OFFSET clauses. A zero limit means no limit.
func (d dialect) page(query string, args []any, skip, limit int) (string, []any) {
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	} else if skip > 0 {
		query += " LIMIT " + d.unbounded
	}
	if skip > 0 {
		query += " OFFSET ?"
		args = append(args, skip)
	}
	return query, args
}
