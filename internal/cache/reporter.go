package cache

import (
	"context"
	"encoding/json"
	"time"

	"codeberg.org/mutker/producflow/internal/domain"
	"codeberg.org/mutker/producflow/internal/errors"
	"codeberg.org/mutker/producflow/internal/logger"
	"codeberg.org/mutker/producflow/internal/metrics"
)

// KeyPrefix namespaces every cached report.
const KeyPrefix = "producflow:report:"

// Reporter serves reports from the KV store and falls through to the
// wrapped Reporter on a miss or any cache failure.
type Reporter struct {
	inner  metrics.Reporter
	kv     KV
	ttl    time.Duration
	logger logger.Logger
}

func NewReporter(inner metrics.Reporter, kv KV, ttl time.Duration, log logger.Logger) *Reporter {
	return &Reporter{
		inner:  inner,
		kv:     kv,
		ttl:    ttl,
		logger: log,
	}
}

func metricsKey(asOf time.Time) string {
	return KeyPrefix + "metrics:" + asOf.Format("2006-01-02Z07:00")
}

func dashboardKey() string {
	return KeyPrefix + "dashboard"
}

func shiftsKey(date time.Time, shift *domain.Shift) string {
	name := "all"
	if shift != nil {
		name = string(*shift)
	}
	return KeyPrefix + "shifts:" + date.Format("2006-01-02Z07:00") + ":" + name
}

func (r *Reporter) ProductionMetrics(ctx context.Context, asOf time.Time) (metrics.ProductionMetrics, error) {
	return cached(ctx, r, metricsKey(asOf), func() (metrics.ProductionMetrics, error) {
		return r.inner.ProductionMetrics(ctx, asOf)
	})
}

func (r *Reporter) DashboardSummary(ctx context.Context) (metrics.DashboardSummary, error) {
	return cached(ctx, r, dashboardKey(), func() (metrics.DashboardSummary, error) {
		return r.inner.DashboardSummary(ctx)
	})
}

func (r *Reporter) ShiftSummaries(ctx context.Context, date time.Time, shift *domain.Shift) ([]metrics.ShiftSummary, error) {
	return cached(ctx, r, shiftsKey(date, shift), func() ([]metrics.ShiftSummary, error) {
		return r.inner.ShiftSummaries(ctx, date, shift)
	})
}

// Invalidate drops every cached report. Callers use it after writes that
// change production or equipment data.
func (r *Reporter) Invalidate(ctx context.Context) error {
	return r.kv.DeletePrefix(ctx, KeyPrefix)
}

func cached[T any](ctx context.Context, r *Reporter, key string, load func() (T, error)) (T, error) {
	raw, err := r.kv.Get(ctx, key)
	if err == nil {
		var v T
		if err := json.Unmarshal([]byte(raw), &v); err == nil {
			return v, nil
		}
		r.logger.Warn().Str("key", key).Msg("Discarding undecodable cached report")
	} else if !errors.HasCode(err, ErrMiss) {
		r.logger.Warn().Err(err).Str("key", key).Msg("Report cache read failed")
	}

	v, err := load()
	if err != nil {
		return v, err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return v, nil
	}
	if err := r.kv.Set(ctx, key, string(data), r.ttl); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("Report cache write failed")
	}
	return v, nil
}
