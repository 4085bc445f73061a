package store

import (
	"context"
	"database/sql"
	"time"

	"codeberg.org/mutker/producflow/internal/errors"
	"codeberg.org/mutker/producflow/internal/logger"
)

// SchemaVersion is the version a freshly opened store is migrated to.
const SchemaVersion = 2

const createVersionsSQL = `
	CREATE TABLE IF NOT EXISTS schema_versions (
		version     INTEGER PRIMARY KEY,
		applied_at  {{time}} NOT NULL
	)`

// migrations[v-1] upgrades a database from version v-1 to v. Statements are
// DDL templates expanded per dialect.
var migrations = [][]string{
	{
		`CREATE TABLE IF NOT EXISTS equipment (
			id                {{id}},
			name              TEXT NOT NULL,
			type              TEXT NOT NULL,
			status            TEXT NOT NULL DEFAULT 'operational',
			location          TEXT NOT NULL,
			capacity          {{real}},
			health_score      {{real}} NOT NULL DEFAULT 100,
			installation_date {{time}},
			last_maintenance  {{time}},
			created_at        {{time}} NOT NULL,
			updated_at        {{time}}
		)`,
		`CREATE TABLE IF NOT EXISTS sensor_readings (
			id           {{id}},
			equipment_id BIGINT NOT NULL REFERENCES equipment(id),
			sensor_type  TEXT NOT NULL,
			value        {{real}} NOT NULL,
			unit         TEXT NOT NULL,
			status       TEXT NOT NULL,
			recorded_at  {{time}} NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS maintenance_alerts (
			id             {{id}},
			equipment_id   BIGINT NOT NULL REFERENCES equipment(id),
			type           TEXT NOT NULL,
			priority       TEXT NOT NULL,
			title          TEXT NOT NULL,
			description    TEXT NOT NULL,
			predicted_date {{time}},
			confidence     {{real}},
			status         TEXT NOT NULL DEFAULT 'active',
			created_at     {{time}} NOT NULL,
			resolved_at    {{time}}
		)`,
		`CREATE TABLE IF NOT EXISTS production_records (
			id                    {{id}},
			equipment_id          BIGINT NOT NULL REFERENCES equipment(id),
			shift                 TEXT NOT NULL,
			output_quantity       INTEGER NOT NULL CHECK (output_quantity >= 0),
			defect_quantity       INTEGER NOT NULL CHECK (defect_quantity >= 0),
			downtime_minutes      INTEGER NOT NULL,
			efficiency_percentage {{real}} NOT NULL,
			date                  {{time}} NOT NULL,
			created_at            {{time}} NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS maintenance_logs (
			id               {{id}},
			equipment_id     BIGINT NOT NULL REFERENCES equipment(id),
			technician_id    BIGINT NOT NULL,
			maintenance_type TEXT NOT NULL,
			description      TEXT NOT NULL,
			cost             {{real}},
			duration_hours   {{real}},
			parts_replaced   TEXT,
			status           TEXT NOT NULL DEFAULT 'completed',
			scheduled_date   {{time}},
			completed_date   {{time}},
			created_at       {{time}} NOT NULL
		)`,
	},
	{
		`CREATE INDEX IF NOT EXISTS idx_production_records_date ON production_records (date)`,
		`CREATE INDEX IF NOT EXISTS idx_sensor_readings_equipment ON sensor_readings (equipment_id, recorded_at)`,
		`CREATE INDEX IF NOT EXISTS idx_maintenance_alerts_status ON maintenance_alerts (status)`,
	},
}

// applyMigration runs one migration step and records its version in the
// same transaction.
func applyMigration(ctx context.Context, db *sql.DB, d dialect, version int, log logger.Logger) error {
	errFactory := errors.New()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	// Track transaction state
	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil {
				if !errors.Is(err, sql.ErrTxDone) {
					log.Debug().Err(err).Msg("Failed to rollback migration")
				}
			}
		}
	}()

	statements := append([]string{createVersionsSQL}, migrations[version-1]...)
	for _, stmt := range statements {
		ddl := d.expand(stmt)
		log.Debug().Str("sql", ddl).Int("version", version).Msg("Executing SQL statement")
		if _, err := tx.ExecContext(ctx, ddl); err != nil {
			return errFactory.WithData(ErrSchemaInitFailed, struct {
				Version int
				Error   string
				SQL     string
			}{
				Version: version,
				Error:   err.Error(),
				SQL:     ddl,
			})
		}
	}

	if _, err := tx.ExecContext(ctx,
		d.rebind(`INSERT INTO schema_versions (version, applied_at) VALUES (?, ?)`),
		version, time.Now().Unix(),
	); err != nil {
		return errFactory.WithData(ErrSchemaInitFailed, struct {
			Error string
			Phase string
		}{
			Error: err.Error(),
			Phase: "record_version",
		})
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}
	committed = true

	log.Info().
		Int("version", version).
		Msg("Schema migration applied")

	return nil
}

// schemaVersion returns the highest applied version, 0 for an empty database.
func schemaVersion(ctx context.Context, db *sql.DB, d dialect) (int, error) {
	errFactory := errors.New()

	exists, err := tableExists(ctx, db, d, "schema_versions")
	if err != nil {
		return 0, errFactory.Wrap(ErrSchemaValidationFailed, err)
	}
	if !exists {
		return 0, nil
	}

	var version int
	err = db.QueryRowContext(ctx, `
        SELECT version
        FROM schema_versions
        ORDER BY version DESC
        LIMIT 1
    `).Scan(&version)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, errFactory.WithData(ErrSchemaValidationFailed, struct {
			Phase string
			Error string
		}{
			Phase: "get_version",
			Error: err.Error(),
		})
	}

	return version, nil
}

func tableExists(ctx context.Context, db *sql.DB, d dialect, tableName string) (bool, error) {
	errFactory := errors.New()

	var exists bool
	if err := db.QueryRowContext(ctx, d.rebind(d.tableExists), tableName).Scan(&exists); err != nil {
		return false, errFactory.WithData(ErrSchemaValidationFailed, struct {
			Phase string
			Table string
			Error string
		}{
			Phase: "check_table_exists",
			Table: tableName,
			Error: err.Error(),
		})
	}
	return exists, nil
}
