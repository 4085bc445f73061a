package domain_test

import (
	"math"
	"testing"
	"time"

	"codeberg.org/mutker/producflow/internal/domain"
	"codeberg.org/mutker/producflow/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestDeriveEfficiency(t *testing.T) {
	assert.InDelta(t, 96.875, domain.DeriveEfficiency(15), 1e-9)
	assert.InDelta(t, 96.88, math.Round(domain.DeriveEfficiency(15)*100)/100, 1e-9)
	assert.InDelta(t, 100.0, domain.DeriveEfficiency(0), 1e-9)
	assert.InDelta(t, 0.0, domain.DeriveEfficiency(480), 1e-9)
	assert.InDelta(t, -25.0, domain.DeriveEfficiency(600), 1e-9, "no clamping above a full shift")
	assert.InDelta(t, 112.5, domain.DeriveEfficiency(-60), 1e-9, "no clamping for negative downtime")
}

func TestProductionRecordCreateBuild(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	in := domain.ProductionRecordCreate{
		EquipmentID:     1,
		Shift:           domain.ShiftMorning,
		OutputQuantity:  450,
		DefectQuantity:  8,
		DowntimeMinutes: 15,
		Date:            now.AddDate(0, 0, -1),
	}
	require.NoError(t, in.Validate())

	rec := in.Build(now)
	assert.InDelta(t, 96.875, rec.EfficiencyPercentage, 1e-9)
	assert.Equal(t, now, rec.CreatedAt)

	in.EfficiencyPercentage = ptr(50.0)
	assert.InDelta(t, 50.0, in.Build(now).EfficiencyPercentage, 1e-9)
}

func TestProductionRecordCreateValidate(t *testing.T) {
	valid := domain.ProductionRecordCreate{
		EquipmentID: 1,
		Shift:       domain.ShiftNight,
		Date:        time.Now(),
	}

	tests := []struct {
		name   string
		mutate func(*domain.ProductionRecordCreate)
	}{
		{"missing equipment", func(c *domain.ProductionRecordCreate) { c.EquipmentID = 0 }},
		{"unknown shift", func(c *domain.ProductionRecordCreate) { c.Shift = "evening" }},
		{"negative output", func(c *domain.ProductionRecordCreate) { c.OutputQuantity = -1 }},
		{"negative defects", func(c *domain.ProductionRecordCreate) { c.DefectQuantity = -1 }},
		{"missing date", func(c *domain.ProductionRecordCreate) { c.Date = time.Time{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			err := in.Validate()
			require.Error(t, err)
			assert.Equal(t, errors.ErrInvalidArgument, errors.CodeOf(err))
		})
	}

	neg := valid
	neg.DowntimeMinutes = -30
	assert.NoError(t, neg.Validate(), "downtime is not range-checked")
}

func TestProductionRecordUpdate(t *testing.T) {
	rec := domain.ProductionRecord{
		ID:                   3,
		EquipmentID:          1,
		Shift:                domain.ShiftMorning,
		OutputQuantity:       450,
		DowntimeMinutes:      15,
		EfficiencyPercentage: 96.875,
	}

	upd := domain.ProductionRecordUpdate{
		OutputQuantity:  ptr(500),
		DowntimeMinutes: ptr(60),
	}
	require.NoError(t, upd.Validate())
	upd.Apply(&rec)

	assert.Equal(t, 500, rec.OutputQuantity)
	assert.Equal(t, 60, rec.DowntimeMinutes)
	assert.InDelta(t, 96.875, rec.EfficiencyPercentage, 1e-9, "efficiency is not re-derived")
	assert.Equal(t, domain.ShiftMorning, rec.Shift)

	bad := domain.ProductionRecordUpdate{Shift: ptr(domain.Shift("lunch"))}
	assert.Error(t, bad.Validate())
	assert.Error(t, domain.ProductionRecordUpdate{DefectQuantity: ptr(-2)}.Validate())
}

func TestParseShift(t *testing.T) {
	s, err := domain.ParseShift("afternoon")
	require.NoError(t, err)
	assert.Equal(t, domain.ShiftAfternoon, s)

	_, err = domain.ParseShift("Afternoon")
	assert.Error(t, err)
}

func TestDayRange(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	from, to := domain.DayRange(time.Date(2024, 5, 1, 23, 30, 0, 0, loc))
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, loc), from)
	assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 0, 0, loc), to)
}

func TestEquipmentCreateBuild(t *testing.T) {
	now := time.Now()
	in := domain.EquipmentCreate{Name: "Press #1", Type: "Press", Location: "Floor A"}
	require.NoError(t, in.Validate())

	e := in.Build(now)
	assert.Equal(t, domain.EquipmentOperational, e.Status)
	assert.InDelta(t, domain.DefaultHealthScore, e.HealthScore, 1e-9)

	in.Status = "broken"
	assert.Error(t, in.Validate())
	assert.Error(t, domain.EquipmentCreate{Type: "Press", Location: "A"}.Validate())
}

func TestSensorReadingCreateValidate(t *testing.T) {
	assert.NoError(t, domain.SensorReadingCreate{SensorType: domain.SensorSpeed, Value: ptr(1500.0)}.Validate())
	assert.Error(t, domain.SensorReadingCreate{SensorType: domain.SensorSpeed}.Validate())
	assert.Error(t, domain.SensorReadingCreate{SensorType: "humidity", Value: ptr(1.0)}.Validate())
	assert.Error(t, domain.SensorReadingCreate{SensorType: domain.SensorSpeed, Value: ptr(math.NaN())}.Validate())
}

func TestMaintenanceAlertCreate(t *testing.T) {
	in := domain.MaintenanceAlertCreate{
		EquipmentID: 2,
		Type:        domain.AlertPredictive,
		Priority:    domain.PriorityHigh,
		Title:       "Bearing Replacement Required",
		Confidence:  ptr(0.85),
	}
	require.NoError(t, in.Validate())
	assert.Equal(t, domain.AlertActive, in.Build(time.Now()).Status)

	in.Confidence = ptr(1.5)
	assert.Error(t, in.Validate())
}

func TestMaintenanceLogCreate(t *testing.T) {
	in := domain.MaintenanceLogCreate{
		EquipmentID:     1,
		TechnicianID:    3,
		MaintenanceType: domain.MaintenancePreventive,
		Description:     "Regular lubrication",
	}
	require.NoError(t, in.Validate())
	assert.Equal(t, domain.LogCompleted, in.Build(time.Now()).Status)

	in.Status = "cancelled"
	assert.Error(t, in.Validate())
}

func TestLogStatusUpdateCompletionDate(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	explicit := now.Add(-time.Hour)

	got := domain.LogStatusUpdate{Status: domain.LogCompleted}.CompletionDate(now)
	require.NotNil(t, got)
	assert.Equal(t, now, *got)

	got = domain.LogStatusUpdate{Status: domain.LogCompleted, CompletedDate: &explicit}.CompletionDate(now)
	require.NotNil(t, got)
	assert.Equal(t, explicit, *got)

	assert.Nil(t, domain.LogStatusUpdate{Status: domain.LogInProgress}.CompletionDate(now))
	assert.Error(t, domain.LogStatusUpdate{Status: "done"}.Validate())
}

func TestNotFound(t *testing.T) {
	err := domain.NotFound("equipment", 9)
	assert.Equal(t, errors.ErrResourceNotFound, errors.CodeOf(err))
	assert.Contains(t, err.Error(), "equipment 9 not found")
}
