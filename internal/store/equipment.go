package store

import (
	"context"
	"database/sql"

	"codeberg.org/mutker/producflow/internal/domain"
	"codeberg.org/mutker/producflow/internal/errors"
)

const equipmentColumns = `id, name, type, status, location, capacity, health_score,
	installation_date, last_maintenance, created_at, updated_at`

func scanEquipment(row rowScanner) (domain.Equipment, error) {
	var (
		e                              domain.Equipment
		capacity                       sql.NullFloat64
		installed, maintained, updated sql.NullInt64
		created                        int64
	)
	if err := row.Scan(&e.ID, &e.Name, &e.Type, &e.Status, &e.Location, &capacity, &e.HealthScore,
		&installed, &maintained, &created, &updated); err != nil {
		return domain.Equipment{}, err
	}
	e.Capacity = fromNullFloat(capacity)
	e.InstallationDate = fromNullUnix(installed)
	e.LastMaintenance = fromNullUnix(maintained)
	e.CreatedAt = fromUnix(created)
	e.UpdatedAt = fromNullUnix(updated)
	return e, nil
}

// ListEquipment returns equipment ordered by id.
func (s *Store) ListEquipment(ctx context.Context, filter domain.EquipmentFilter) ([]domain.Equipment, error) {
	query := `SELECT ` + equipmentColumns + ` FROM equipment`
	var args []any
	if filter.Status != nil {
		query += ` WHERE status = ?`
		args = append(args, string(*filter.Status))
	}
	query += ` ORDER BY id`
	query, args = s.dialect.page(query, args, filter.Skip, filter.Limit)

	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(query), args...)
	if err != nil {
		return nil, s.access(err)
	}
	defer rows.Close()

	items := make([]domain.Equipment, 0)
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, s.access(err)
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, s.access(err)
	}
	return items, nil
}

func (s *Store) GetEquipment(ctx context.Context, id int64) (domain.Equipment, error) {
	row := s.db.QueryRowContext(ctx,
		s.dialect.rebind(`SELECT `+equipmentColumns+` FROM equipment WHERE id = ?`), id)

	e, err := scanEquipment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Equipment{}, domain.NotFound("equipment", id)
	}
	if err != nil {
		return domain.Equipment{}, s.access(err)
	}
	return e, nil
}

func (s *Store) CreateEquipment(ctx context.Context, e domain.Equipment) (domain.Equipment, error) {
	e, err := s.insertEquipment(ctx, s.db, e)
	if err != nil {
		return domain.Equipment{}, err
	}

	s.logger.Debug().Int64("id", e.ID).Str("name", e.Name).Msg("Equipment created")
	return e, nil
}

func (s *Store) insertEquipment(ctx context.Context, q querier, e domain.Equipment) (domain.Equipment, error) {
	err := q.QueryRowContext(ctx, s.dialect.rebind(`
		INSERT INTO equipment (
			name, type, status, location, capacity, health_score,
			installation_date, last_maintenance, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`),
		e.Name, e.Type, string(e.Status), e.Location, nullFloat(e.Capacity), e.HealthScore,
		nullUnix(e.InstallationDate), nullUnix(e.LastMaintenance), e.CreatedAt.Unix(), nullUnix(e.UpdatedAt),
	).Scan(&e.ID)
	if err != nil {
		return domain.Equipment{}, s.access(err)
	}
	return e, nil
}

// requireEquipment returns a not-found error unless machine id exists.
func (s *Store) requireEquipment(ctx context.Context, q querier, id int64) error {
	var one int
	err := q.QueryRowContext(ctx, s.dialect.rebind(`SELECT 1 FROM equipment WHERE id = ?`), id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFound("equipment", id)
	}
	if err != nil {
		return s.access(err)
	}
	return nil
}

// EquipmentIDs returns every equipment id in ascending order.
func (s *Store) EquipmentIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM equipment ORDER BY id`)
	if err != nil {
		return nil, s.access(err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, s.access(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, s.access(err)
	}
	return ids, nil
}

func (s *Store) EquipmentCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM equipment`).Scan(&n); err != nil {
		return 0, s.access(err)
	}
	return n, nil
}

// EquipmentStatusCounts returns how many machines are in each status.
// Statuses with no machines are absent from the map.
func (s *Store) EquipmentStatusCounts(ctx context.Context) (map[domain.EquipmentStatus]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(id) FROM equipment GROUP BY status`)
	if err != nil {
		return nil, s.access(err)
	}
	defer rows.Close()

	counts := make(map[domain.EquipmentStatus]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, s.access(err)
		}
		counts[domain.EquipmentStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, s.access(err)
	}
	return counts, nil
}
