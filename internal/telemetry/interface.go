package telemetry

import (
	"context"

	"codeberg.org/mutker/producflow/internal/domain"
)

// Collector validates, classifies and persists sensor readings.
type Collector interface {
	Record(ctx context.Context, equipmentID int64, in domain.SensorReadingCreate) (domain.SensorReading, error)
}

// Runner is a background ingestion loop that stops when ctx is cancelled.
type Runner interface {
	Run(ctx context.Context) error
}

// ReadingStore is the part of the record store telemetry writes through.
type ReadingStore interface {
	GetEquipment(ctx context.Context, id int64) (domain.Equipment, error)
	EquipmentIDs(ctx context.Context) ([]int64, error)
	CreateSensorReading(ctx context.Context, r domain.SensorReading) (domain.SensorReading, error)
}

// ReadingSource draws classified synthetic sensor values.
type ReadingSource interface {
	Reading(sensorType domain.SensorType) (float64, string, domain.SensorStatus)
}
