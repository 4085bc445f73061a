package store

import (
	"context"
	"database/sql"
	"strings"

	"codeberg.org/mutker/producflow/internal/domain"
	"codeberg.org/mutker/producflow/internal/errors"
)

const productionColumns = `id, equipment_id, shift, output_quantity, defect_quantity,
	downtime_minutes, efficiency_percentage, date, created_at`

func scanProductionRecord(row rowScanner) (domain.ProductionRecord, error) {
	var (
		r             domain.ProductionRecord
		date, created int64
	)
	if err := row.Scan(&r.ID, &r.EquipmentID, &r.Shift, &r.OutputQuantity, &r.DefectQuantity,
		&r.DowntimeMinutes, &r.EfficiencyPercentage, &date, &created); err != nil {
		return domain.ProductionRecord{}, err
	}
	r.Date = fromUnix(date)
	r.CreatedAt = fromUnix(created)
	return r, nil
}

// ProductionRecords returns the records matching filter. Records come back
// in insertion order unless NewestFirst is set.
func (s *Store) ProductionRecords(ctx context.Context, filter domain.ProductionFilter) ([]domain.ProductionRecord, error) {
	var (
		where []string
		args  []any
	)
	if !filter.From.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, filter.From.Unix())
	}
	if !filter.To.IsZero() {
		where = append(where, "date < ?")
		args = append(args, filter.To.Unix())
	}
	if filter.EquipmentID != nil {
		where = append(where, "equipment_id = ?")
		args = append(args, *filter.EquipmentID)
	}
	if filter.Shift != nil {
		where = append(where, "shift = ?")
		args = append(args, string(*filter.Shift))
	}

	query := `SELECT ` + productionColumns + ` FROM production_records`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	if filter.NewestFirst {
		query += ` ORDER BY date DESC, id DESC`
	} else {
		query += ` ORDER BY id`
	}
	query, args = s.dialect.page(query, args, filter.Skip, filter.Limit)

	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(query), args...)
	if err != nil {
		return nil, s.access(err)
	}
	defer rows.Close()

	records := make([]domain.ProductionRecord, 0)
	for rows.Next() {
		r, err := scanProductionRecord(rows)
		if err != nil {
			return nil, s.access(err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, s.access(err)
	}
	return records, nil
}

func (s *Store) GetProductionRecord(ctx context.Context, id int64) (domain.ProductionRecord, error) {
	return s.getProductionRecord(ctx, s.db, id)
}

func (s *Store) getProductionRecord(ctx context.Context, q querier, id int64) (domain.ProductionRecord, error) {
	row := q.QueryRowContext(ctx,
		s.dialect.rebind(`SELECT `+productionColumns+` FROM production_records WHERE id = ?`), id)

	r, err := scanProductionRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ProductionRecord{}, domain.NotFound("production record", id)
	}
	if err != nil {
		return domain.ProductionRecord{}, s.access(err)
	}
	return r, nil
}

// CreateProductionRecord stores a record for an existing machine.
func (s *Store) CreateProductionRecord(ctx context.Context, r domain.ProductionRecord) (domain.ProductionRecord, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.requireEquipment(ctx, tx, r.EquipmentID); err != nil {
			return err
		}
		var err error
		r, err = s.insertProductionRecord(ctx, tx, r)
		return err
	})
	if err != nil {
		return domain.ProductionRecord{}, err
	}
	return r, nil
}

func (s *Store) insertProductionRecord(ctx context.Context, q querier, r domain.ProductionRecord) (domain.ProductionRecord, error) {
	err := q.QueryRowContext(ctx, s.dialect.rebind(`
		INSERT INTO production_records (
			equipment_id, shift, output_quantity, defect_quantity,
			downtime_minutes, efficiency_percentage, date, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`),
		r.EquipmentID, string(r.Shift), r.OutputQuantity, r.DefectQuantity,
		r.DowntimeMinutes, r.EfficiencyPercentage, r.Date.Unix(), r.CreatedAt.Unix(),
	).Scan(&r.ID)
	if err != nil {
		return domain.ProductionRecord{}, s.access(err)
	}
	return r, nil
}

// UpdateProductionRecord applies upd to the stored record and returns the
// result. Efficiency is only changed when upd supplies it.
func (s *Store) UpdateProductionRecord(ctx context.Context, id int64, upd domain.ProductionRecordUpdate) (domain.ProductionRecord, error) {
	if err := upd.Validate(); err != nil {
		return domain.ProductionRecord{}, err
	}

	var updated domain.ProductionRecord
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		r, err := s.getProductionRecord(ctx, tx, id)
		if err != nil {
			return err
		}
		if upd.EquipmentID != nil && *upd.EquipmentID != r.EquipmentID {
			if err := s.requireEquipment(ctx, tx, *upd.EquipmentID); err != nil {
				return err
			}
		}
		upd.Apply(&r)

		if _, err := tx.ExecContext(ctx, s.dialect.rebind(`
			UPDATE production_records SET
				equipment_id = ?, shift = ?, output_quantity = ?, defect_quantity = ?,
				downtime_minutes = ?, efficiency_percentage = ?, date = ?
			WHERE id = ?`),
			r.EquipmentID, string(r.Shift), r.OutputQuantity, r.DefectQuantity,
			r.DowntimeMinutes, r.EfficiencyPercentage, r.Date.Unix(), id,
		); err != nil {
			return s.access(err)
		}
		updated = r
		return nil
	})
	if err != nil {
		return domain.ProductionRecord{}, err
	}
	return updated, nil
}
