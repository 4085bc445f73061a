package store

import (
	"context"
	"database/sql"
	"time"

	"codeberg.org/mutker/producflow/internal/domain"
	"codeberg.org/mutker/producflow/internal/errors"
)

const (
	seedReadingsPerSensor = 10
	seedReadingSpacing    = 5 * time.Minute
	seedTechnicianID      = 3
)

// ReadingSource draws classified synthetic sensor values.
type ReadingSource interface {
	Reading(sensorType domain.SensorType) (float64, string, domain.SensorStatus)
}

func date(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func ptr[T any](v T) *T { return &v }

// Seed fills an empty store with a sample plant in one transaction. It
// reports false without writing anything when equipment already exists.
func (s *Store) Seed(ctx context.Context, gen ReadingSource, now time.Time) (bool, error) {
	errFactory := errors.New()

	n, err := s.EquipmentCount(ctx)
	if err != nil {
		return false, errFactory.Wrap(ErrSeedFailed, err)
	}
	if n > 0 {
		s.logger.Debug().Int("equipment", n).Msg("Store already populated, skipping seed")
		return false, nil
	}

	machines := []domain.Equipment{
		{Name: "Injection Molding Machine #1", Type: "Molding", Status: domain.EquipmentOperational, Location: "Production Floor A",
			Capacity: ptr(500.0), HealthScore: 95.2, InstallationDate: date(2021, 5, 20), LastMaintenance: date(2023, 10, 15)},
		{Name: "CNC Milling Machine #2", Type: "Milling", Status: domain.EquipmentWarning, Location: "Production Floor B",
			Capacity: ptr(300.0), HealthScore: 78.5, InstallationDate: date(2020, 8, 10), LastMaintenance: date(2023, 9, 20)},
		{Name: "Conveyor System #1", Type: "Transport", Status: domain.EquipmentOperational, Location: "Assembly Line",
			Capacity: ptr(1000.0), HealthScore: 88.9, InstallationDate: date(2022, 1, 15), LastMaintenance: date(2023, 10, 1)},
		{Name: "Robotic Arm #3", Type: "Assembly", Status: domain.EquipmentCritical, Location: "Assembly Station 3",
			Capacity: ptr(200.0), HealthScore: 45.3, InstallationDate: date(2021, 11, 5), LastMaintenance: date(2023, 8, 15)},
		{Name: "Quality Control Scanner", Type: "Inspection", Status: domain.EquipmentOperational, Location: "QC Department",
			Capacity: ptr(800.0), HealthScore: 92.7, InstallationDate: date(2022, 6, 1), LastMaintenance: date(2023, 10, 10)},
	}

	ids := make([]int64, len(machines))
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		for i, m := range machines {
			m.CreatedAt = now
			created, err := s.insertEquipment(ctx, tx, m)
			if err != nil {
				return err
			}
			ids[i] = created.ID
		}

		for _, id := range ids {
			for _, st := range domain.SensorTypes {
				for i := 0; i < seedReadingsPerSensor; i++ {
					value, unit, status := gen.Reading(st)
					if _, err := s.insertSensorReading(ctx, tx, domain.SensorReading{
						EquipmentID: id,
						SensorType:  st,
						Value:       value,
						Unit:        unit,
						Status:      status,
						Timestamp:   now.Add(-time.Duration(i) * seedReadingSpacing),
					}); err != nil {
						return err
					}
				}
			}
		}

		alerts := []domain.MaintenanceAlert{
			{EquipmentID: ids[1], Type: domain.AlertPredictive, Priority: domain.PriorityHigh,
				Title:         "Bearing Replacement Required",
				Description:   "Vibration levels indicate bearing wear. Replacement recommended within 2 weeks.",
				PredictedDate: ptr(now.AddDate(0, 0, 14)), Confidence: ptr(0.85)},
			{EquipmentID: ids[3], Type: domain.AlertEmergency, Priority: domain.PriorityCritical,
				Title:         "Hydraulic System Failure",
				Description:   "Hydraulic pressure below critical threshold. Immediate attention required.",
				PredictedDate: ptr(now), Confidence: ptr(0.95)},
		}
		for _, a := range alerts {
			a.Status = domain.AlertActive
			a.CreatedAt = now
			if _, err := s.insertAlert(ctx, tx, a); err != nil {
				return err
			}
		}

		yesterday := now.AddDate(0, 0, -1)
		records := []domain.ProductionRecord{
			{EquipmentID: ids[0], Shift: domain.ShiftMorning, OutputQuantity: 450, DefectQuantity: 8, DowntimeMinutes: 15, EfficiencyPercentage: 96.9},
			{EquipmentID: ids[0], Shift: domain.ShiftAfternoon, OutputQuantity: 420, DefectQuantity: 12, DowntimeMinutes: 30, EfficiencyPercentage: 93.8},
			{EquipmentID: ids[1], Shift: domain.ShiftMorning, OutputQuantity: 280, DefectQuantity: 5, DowntimeMinutes: 45, EfficiencyPercentage: 90.6},
			{EquipmentID: ids[2], Shift: domain.ShiftMorning, OutputQuantity: 950, DefectQuantity: 15, DowntimeMinutes: 10, EfficiencyPercentage: 97.9},
		}
		for _, r := range records {
			r.Date = yesterday
			r.CreatedAt = now
			if _, err := s.insertProductionRecord(ctx, tx, r); err != nil {
				return err
			}
		}

		logs := []domain.MaintenanceLog{
			{EquipmentID: ids[0], MaintenanceType: domain.MaintenancePreventive,
				Description: "Regular lubrication and filter replacement",
				Cost:        ptr(250.0), DurationHours: ptr(2.5), PartsReplaced: ptr("Oil filter, hydraulic fluid"),
				Status: domain.LogCompleted, ScheduledDate: ptr(now.AddDate(0, 0, -7)),
				CompletedDate: ptr(now.AddDate(0, 0, -7).Add(-2 * time.Hour))},
			{EquipmentID: ids[1], MaintenanceType: domain.MaintenanceCorrective,
				Description: "Replace worn bearing in spindle assembly",
				Cost:        ptr(850.0), DurationHours: ptr(4.0), PartsReplaced: ptr("Spindle bearing assembly"),
				Status: domain.LogCompleted, ScheduledDate: ptr(now.AddDate(0, 0, -3)),
				CompletedDate: ptr(now.AddDate(0, 0, -3).Add(-4 * time.Hour))},
			{EquipmentID: ids[3], MaintenanceType: domain.MaintenanceEmergency,
				Description: "Hydraulic system repair - critical failure",
				Cost:        ptr(1200.0), DurationHours: ptr(6.0), PartsReplaced: ptr("Hydraulic pump, pressure valve"),
				Status: domain.LogInProgress, ScheduledDate: ptr(now)},
		}
		for _, l := range logs {
			l.TechnicianID = seedTechnicianID
			l.CreatedAt = now
			if _, err := s.insertMaintenanceLog(ctx, tx, l); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, errFactory.Wrap(ErrSeedFailed, err)
	}

	s.logger.Info().
		Int("equipment", len(ids)).
		Int("readings", len(ids)*len(domain.SensorTypes)*seedReadingsPerSensor).
		Msg("Sample data seeded")

	return true, nil
}
