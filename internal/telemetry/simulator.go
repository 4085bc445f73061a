package telemetry

import (
	"context"
	"time"

	"codeberg.org/mutker/producflow/internal/domain"
	"codeberg.org/mutker/producflow/internal/errors"
	"codeberg.org/mutker/producflow/internal/logger"
)

type simulator struct {
	store     ReadingStore
	collector Collector
	gen       ReadingSource
	interval  time.Duration
	logger    logger.Logger
}

// No-op implementation
type noopRunner struct{}

// NewSimulator returns a Runner that records one synthetic reading per
// sensor type for every machine on each tick. It is a no-op unless
// cfg.Simulate is set.
func NewSimulator(cfg Config, store ReadingStore, collector Collector, gen ReadingSource, log logger.Logger) (Runner, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	if !cfg.Simulate {
		log.Debug().Msg("Sensor simulation disabled, using no-op runner")
		return noopRunner{}, nil
	}

	return &simulator{
		store:     store,
		collector: collector,
		gen:       gen,
		interval:  cfg.Interval,
		logger:    log,
	}, nil
}

func (s *simulator) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.interval).Msg("Sensor simulation started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Sensor simulation stopped")
			return nil
		case <-ticker.C:
			if err := s.tick(ctx); err != nil {
				var appErr errors.Error
				if errors.As(err, &appErr) {
					s.logger.ErrorWithContext(appErr, "telemetry", "simulate").Send()
				} else {
					s.logger.Error().Err(err).Msg("Sensor simulation tick failed")
				}
			}
		}
	}
}

// tick records one reading per sensor type per machine. It stops at the
// first failure; the next tick starts over.
func (s *simulator) tick(ctx context.Context) error {
	ids, err := s.store.EquipmentIDs(ctx)
	if err != nil {
		return err
	}

	count := 0
	for _, id := range ids {
		for _, st := range domain.SensorTypes {
			value, unit, _ := s.gen.Reading(st)
			if _, err := s.collector.Record(ctx, id, domain.SensorReadingCreate{
				SensorType: st,
				Value:      &value,
				Unit:       unit,
			}); err != nil {
				return err
			}
			count++
		}
	}

	s.logger.Debug().Int("readings", count).Msg("Simulated sensor readings recorded")
	return nil
}

func (noopRunner) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}
