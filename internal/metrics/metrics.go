package metrics

import (
	"context"
	"time"

	"codeberg.org/mutker/producflow/internal/domain"
	"codeberg.org/mutker/producflow/internal/errors"
	"codeberg.org/mutker/producflow/internal/logger"
)

type service struct {
	store RecordStore
	cfg   Config
	now   func() time.Time
}

type Option func(*service)

// WithClock overrides the time source used for "today".
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// NewService returns a Reporter aggregating over store. Store errors are
// returned unchanged; the aggregator neither retries nor returns partial
// results.
func NewService(store RecordStore, cfg Config, opts ...Option) (Reporter, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	s := &service{
		store: store,
		cfg:   cfg,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	logger.Debug().
		Int("window_days", cfg.WindowDays).
		Str("efficiency_source", string(cfg.EfficiencySource)).
		Msg("Metrics service initialized")

	return s, nil
}

func (s *service) ProductionMetrics(ctx context.Context, asOf time.Time) (ProductionMetrics, error) {
	from, to := Window(asOf, s.cfg.WindowDays)

	records, err := s.store.ProductionRecords(ctx, domain.ProductionFilter{From: from, To: to})
	if err != nil {
		return ProductionMetrics{}, err
	}

	total, err := s.store.EquipmentCount(ctx)
	if err != nil {
		return ProductionMetrics{}, err
	}

	return Aggregate(records, total), nil
}

func (s *service) DashboardSummary(ctx context.Context) (DashboardSummary, error) {
	counts, err := s.store.EquipmentStatusCounts(ctx)
	if err != nil {
		return DashboardSummary{}, err
	}

	alerts, err := s.store.ActiveAlertCount(ctx)
	if err != nil {
		return DashboardSummary{}, err
	}

	efficiency := s.cfg.ProductionEfficiency
	if s.cfg.EfficiencySource == EfficiencyMetrics {
		m, err := s.ProductionMetrics(ctx, s.now())
		if err != nil {
			return DashboardSummary{}, err
		}
		efficiency = m.EfficiencyPercentage
	}

	return Dashboard(counts, alerts, efficiency, s.cfg.CostSavings), nil
}

func (s *service) ShiftSummaries(ctx context.Context, date time.Time, shift *domain.Shift) ([]ShiftSummary, error) {
	from, to := domain.DayRange(date)

	records, err := s.store.ProductionRecords(ctx, domain.ProductionFilter{From: from, To: to, Shift: shift})
	if err != nil {
		return nil, err
	}

	summaries := make([]ShiftSummary, 0)
	if len(records) == 0 {
		return summaries, nil
	}

	if shift != nil {
		return append(summaries, Summarize(*shift, date, records)), nil
	}

	order, groups := GroupByShift(records)
	for _, sh := range order {
		summaries = append(summaries, Summarize(sh, date, groups[sh]))
	}
	return summaries, nil
}
