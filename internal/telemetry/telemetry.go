package telemetry

import (
	"context"
	"time"

	"codeberg.org/mutker/producflow/internal/domain"
	"codeberg.org/mutker/producflow/internal/errors"
	"codeberg.org/mutker/producflow/internal/logger"
	"codeberg.org/mutker/producflow/internal/sensor"
)

type service struct {
	store  ReadingStore
	logger logger.Logger
	now    func() time.Time
}

func NewService(store ReadingStore, log logger.Logger) Collector {
	return &service{
		store:  store,
		logger: log,
		now:    time.Now,
	}
}

// Record stores one reading for equipmentID. The unit defaults to the sensor
// type's unit and the status is always derived from the value.
func (s *service) Record(ctx context.Context, equipmentID int64, in domain.SensorReadingCreate) (domain.SensorReading, error) {
	errFactory := errors.New()

	if err := in.Validate(); err != nil {
		return domain.SensorReading{}, err
	}

	select {
	case <-ctx.Done():
		return domain.SensorReading{}, errFactory.Wrap(ErrOperationTimeout, ctx.Err())
	default:
	}

	if _, err := s.store.GetEquipment(ctx, equipmentID); err != nil {
		return domain.SensorReading{}, err
	}

	r := domain.SensorReading{
		EquipmentID: equipmentID,
		SensorType:  in.SensorType,
		Value:       *in.Value,
		Unit:        in.Unit,
		Status:      sensor.Classify(in.SensorType, *in.Value),
		Timestamp:   s.now(),
	}
	if r.Unit == "" {
		r.Unit = sensor.Unit(in.SensorType)
	}
	if in.Timestamp != nil {
		r.Timestamp = *in.Timestamp
	}

	stored, err := s.store.CreateSensorReading(ctx, r)
	if err != nil {
		return domain.SensorReading{}, err
	}

	if stored.Status != domain.SensorNormal {
		s.logger.Warn().
			Int64("equipment_id", equipmentID).
			Str("sensor_type", string(stored.SensorType)).
			Float64("value", stored.Value).
			Str("status", string(stored.Status)).
			Msg("Sensor reading outside normal band")
	}

	return stored, nil
}
