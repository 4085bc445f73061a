package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"codeberg.org/mutker/producflow/internal/domain"
	"codeberg.org/mutker/producflow/internal/errors"
)

const alertColumns = `id, equipment_id, type, priority, title, description,
	predicted_date, confidence, status, created_at, resolved_at`

func scanAlert(row rowScanner) (domain.MaintenanceAlert, error) {
	var (
		a                   domain.MaintenanceAlert
		predicted, resolved sql.NullInt64
		confidence          sql.NullFloat64
		created             int64
	)
	if err := row.Scan(&a.ID, &a.EquipmentID, &a.Type, &a.Priority, &a.Title, &a.Description,
		&predicted, &confidence, &a.Status, &created, &resolved); err != nil {
		return domain.MaintenanceAlert{}, err
	}
	a.PredictedDate = fromNullUnix(predicted)
	a.Confidence = fromNullFloat(confidence)
	a.CreatedAt = fromUnix(created)
	a.ResolvedAt = fromNullUnix(resolved)
	return a, nil
}

// Alerts returns alerts in a status, oldest first. An empty filter status
// selects active alerts.
func (s *Store) Alerts(ctx context.Context, filter domain.AlertFilter) ([]domain.MaintenanceAlert, error) {
	status := filter.Status
	if status == "" {
		status = domain.AlertActive
	}

	query := `SELECT ` + alertColumns + ` FROM maintenance_alerts WHERE status = ?`
	args := []any{string(status)}
	if filter.Priority != nil {
		query += ` AND priority = ?`
		args = append(args, string(*filter.Priority))
	}
	query += ` ORDER BY id`
	query, args = s.dialect.page(query, args, filter.Skip, filter.Limit)

	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(query), args...)
	if err != nil {
		return nil, s.access(err)
	}
	defer rows.Close()

	alerts := make([]domain.MaintenanceAlert, 0)
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, s.access(err)
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, s.access(err)
	}
	return alerts, nil
}

func (s *Store) CreateAlert(ctx context.Context, a domain.MaintenanceAlert) (domain.MaintenanceAlert, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.requireEquipment(ctx, tx, a.EquipmentID); err != nil {
			return err
		}
		var err error
		a, err = s.insertAlert(ctx, tx, a)
		return err
	})
	if err != nil {
		return domain.MaintenanceAlert{}, err
	}
	return a, nil
}

func (s *Store) insertAlert(ctx context.Context, q querier, a domain.MaintenanceAlert) (domain.MaintenanceAlert, error) {
	err := q.QueryRowContext(ctx, s.dialect.rebind(`
		INSERT INTO maintenance_alerts (
			equipment_id, type, priority, title, description,
			predicted_date, confidence, status, created_at, resolved_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`),
		a.EquipmentID, string(a.Type), string(a.Priority), a.Title, a.Description,
		nullUnix(a.PredictedDate), nullFloat(a.Confidence), string(a.Status), a.CreatedAt.Unix(), nullUnix(a.ResolvedAt),
	).Scan(&a.ID)
	if err != nil {
		return domain.MaintenanceAlert{}, s.access(err)
	}
	return a, nil
}

func (s *Store) ActiveAlertCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		s.dialect.rebind(`SELECT COUNT(*) FROM maintenance_alerts WHERE status = ?`),
		string(domain.AlertActive),
	).Scan(&n)
	if err != nil {
		return 0, s.access(err)
	}
	return n, nil
}

const logColumns = `id, equipment_id, technician_id, maintenance_type, description, cost,
	duration_hours, parts_replaced, status, scheduled_date, completed_date, created_at`

func scanLog(row rowScanner) (domain.MaintenanceLog, error) {
	var (
		l                    domain.MaintenanceLog
		cost, duration       sql.NullFloat64
		parts                sql.NullString
		scheduled, completed sql.NullInt64
		created              int64
	)
	if err := row.Scan(&l.ID, &l.EquipmentID, &l.TechnicianID, &l.MaintenanceType, &l.Description, &cost,
		&duration, &parts, &l.Status, &scheduled, &completed, &created); err != nil {
		return domain.MaintenanceLog{}, err
	}
	l.Cost = fromNullFloat(cost)
	l.DurationHours = fromNullFloat(duration)
	l.PartsReplaced = fromNullString(parts)
	l.ScheduledDate = fromNullUnix(scheduled)
	l.CompletedDate = fromNullUnix(completed)
	l.CreatedAt = fromUnix(created)
	return l, nil
}

// MaintenanceLogs returns logs newest first.
func (s *Store) MaintenanceLogs(ctx context.Context, filter domain.LogFilter) ([]domain.MaintenanceLog, error) {
	var (
		where []string
		args  []any
	)
	if filter.EquipmentID != nil {
		where = append(where, "equipment_id = ?")
		args = append(args, *filter.EquipmentID)
	}
	if filter.Status != nil {
		where = append(where, "status = ?")
		args = append(args, string(*filter.Status))
	}

	query := `SELECT ` + logColumns + ` FROM maintenance_logs`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`
	query, args = s.dialect.page(query, args, filter.Skip, filter.Limit)

	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(query), args...)
	if err != nil {
		return nil, s.access(err)
	}
	defer rows.Close()

	logs := make([]domain.MaintenanceLog, 0)
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, s.access(err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, s.access(err)
	}
	return logs, nil
}

func (s *Store) GetMaintenanceLog(ctx context.Context, id int64) (domain.MaintenanceLog, error) {
	return s.getMaintenanceLog(ctx, s.db, id)
}

func (s *Store) getMaintenanceLog(ctx context.Context, q querier, id int64) (domain.MaintenanceLog, error) {
	row := q.QueryRowContext(ctx,
		s.dialect.rebind(`SELECT `+logColumns+` FROM maintenance_logs WHERE id = ?`), id)

	l, err := scanLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.MaintenanceLog{}, domain.NotFound("maintenance log", id)
	}
	if err != nil {
		return domain.MaintenanceLog{}, s.access(err)
	}
	return l, nil
}

func (s *Store) CreateMaintenanceLog(ctx context.Context, l domain.MaintenanceLog) (domain.MaintenanceLog, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.requireEquipment(ctx, tx, l.EquipmentID); err != nil {
			return err
		}
		var err error
		l, err = s.insertMaintenanceLog(ctx, tx, l)
		return err
	})
	if err != nil {
		return domain.MaintenanceLog{}, err
	}
	return l, nil
}

func (s *Store) insertMaintenanceLog(ctx context.Context, q querier, l domain.MaintenanceLog) (domain.MaintenanceLog, error) {
	err := q.QueryRowContext(ctx, s.dialect.rebind(`
		INSERT INTO maintenance_logs (
			equipment_id, technician_id, maintenance_type, description, cost,
			duration_hours, parts_replaced, status, scheduled_date, completed_date, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`),
		l.EquipmentID, l.TechnicianID, string(l.MaintenanceType), l.Description, nullFloat(l.Cost),
		nullFloat(l.DurationHours), nullString(l.PartsReplaced), string(l.Status),
		nullUnix(l.ScheduledDate), nullUnix(l.CompletedDate), l.CreatedAt.Unix(),
	).Scan(&l.ID)
	if err != nil {
		return domain.MaintenanceLog{}, s.access(err)
	}
	return l, nil
}

// UpdateMaintenanceLogStatus moves a log to upd.Status. Completing a log
// without an explicit date stamps the current time.
func (s *Store) UpdateMaintenanceLogStatus(ctx context.Context, id int64, upd domain.LogStatusUpdate) (domain.MaintenanceLog, error) {
	if err := upd.Validate(); err != nil {
		return domain.MaintenanceLog{}, err
	}

	var updated domain.MaintenanceLog
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		l, err := s.getMaintenanceLog(ctx, tx, id)
		if err != nil {
			return err
		}

		l.Status = upd.Status
		if completed := upd.CompletionDate(s.now().UTC().Truncate(time.Second)); completed != nil {
			l.CompletedDate = completed
		}

		if _, err := tx.ExecContext(ctx, s.dialect.rebind(`
			UPDATE maintenance_logs SET status = ?, completed_date = ? WHERE id = ?`),
			string(l.Status), nullUnix(l.CompletedDate), id,
		); err != nil {
			return s.access(err)
		}
		updated = l
		return nil
	})
	if err != nil {
		return domain.MaintenanceLog{}, err
	}

	s.logger.Debug().Int64("id", id).Str("status", string(updated.Status)).Msg("Maintenance log status updated")
	return updated, nil
}
