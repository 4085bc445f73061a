package store

import (
	"context"
	"database/sql"

	"codeberg.org/mutker/producflow/internal/domain"
)

func scanSensorReading(row rowScanner) (domain.SensorReading, error) {
	var (
		r        domain.SensorReading
		recorded int64
	)
	if err := row.Scan(&r.ID, &r.EquipmentID, &r.SensorType, &r.Value, &r.Unit, &r.Status, &recorded); err != nil {
		return domain.SensorReading{}, err
	}
	r.Timestamp = fromUnix(recorded)
	return r, nil
}

// SensorReadings returns the newest readings of one machine first.
func (s *Store) SensorReadings(ctx context.Context, equipmentID int64, limit int) ([]domain.SensorReading, error) {
	query, args := s.dialect.page(`
		SELECT id, equipment_id, sensor_type, value, unit, status, recorded_at
		FROM sensor_readings
		WHERE equipment_id = ?
		ORDER BY recorded_at DESC, id DESC`,
		[]any{equipmentID}, 0, limit)

	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(query), args...)
	if err != nil {
		return nil, s.access(err)
	}
	defer rows.Close()

	readings := make([]domain.SensorReading, 0)
	for rows.Next() {
		r, err := scanSensorReading(rows)
		if err != nil {
			return nil, s.access(err)
		}
		readings = append(readings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, s.access(err)
	}
	return readings, nil
}

// CreateSensorReading stores a reading for an existing machine.
func (s *Store) CreateSensorReading(ctx context.Context, r domain.SensorReading) (domain.SensorReading, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.requireEquipment(ctx, tx, r.EquipmentID); err != nil {
			return err
		}
		var err error
		r, err = s.insertSensorReading(ctx, tx, r)
		return err
	})
	if err != nil {
		return domain.SensorReading{}, err
	}
	return r, nil
}

func (s *Store) insertSensorReading(ctx context.Context, q querier, r domain.SensorReading) (domain.SensorReading, error) {
	err := q.QueryRowContext(ctx, s.dialect.rebind(`
		INSERT INTO sensor_readings (equipment_id, sensor_type, value, unit, status, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`),
		r.EquipmentID, string(r.SensorType), r.Value, r.Unit, string(r.Status), r.Timestamp.Unix(),
	).Scan(&r.ID)
	if err != nil {
		return domain.SensorReading{}, s.access(err)
	}
	return r, nil
}
