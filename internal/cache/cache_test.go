package cache_test

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"codeberg.org/mutker/producflow/internal/cache"
	"codeberg.org/mutker/producflow/internal/domain"
	"codeberg.org/mutker/producflow/internal/errors"
	"codeberg.org/mutker/producflow/internal/logger"
	"codeberg.org/mutker/producflow/internal/metrics"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingReporter struct {
	metricsCalls   int
	dashboardCalls int
	shiftCalls     int
	err            error
}

func (c *countingReporter) ProductionMetrics(context.Context, time.Time) (metrics.ProductionMetrics, error) {
	c.metricsCalls++
	if c.err != nil {
		return metrics.ProductionMetrics{}, c.err
	}
	return metrics.ProductionMetrics{TotalOutput: 2100, DefectRate: 1.9, TotalEquipment: 5}, nil
}

func (c *countingReporter) DashboardSummary(context.Context) (metrics.DashboardSummary, error) {
	c.dashboardCalls++
	if c.err != nil {
		return metrics.DashboardSummary{}, c.err
	}
	return metrics.DashboardSummary{EquipmentOperational: 3, ProductionEfficiency: 92.3, CostSavings: 45300}, nil
}

func (c *countingReporter) ShiftSummaries(_ context.Context, date time.Time, shift *domain.Shift) ([]metrics.ShiftSummary, error) {
	c.shiftCalls++
	if c.err != nil {
		return nil, c.err
	}
	s := domain.ShiftMorning
	if shift != nil {
		s = *shift
	}
	return []metrics.ShiftSummary{{Shift: s, Date: date, TotalOutput: 1680, EquipmentCount: 3}}, nil
}

type brokenKV struct{}

func (brokenKV) Get(context.Context, string) (string, error) {
	return "", errors.New().New(cache.ErrBackend)
}

func (brokenKV) Set(context.Context, string, string, time.Duration) error {
	return errors.New().New(cache.ErrBackend)
}

func (brokenKV) DeletePrefix(context.Context, string) error {
	return errors.New().New(cache.ErrBackend)
}

func newKV(t *testing.T) (*cache.RedisKV, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	kv := cache.NewRedisKV(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { kv.Close() })
	return kv, mr
}

func TestRedisKVMiss(t *testing.T) {
	kv, _ := newKV(t)

	_, err := kv.Get(context.Background(), "producflow:report:none")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, cache.ErrMiss))
}

func TestRedisKVSetGetDelete(t *testing.T) {
	kv, mr := newKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "producflow:report:a", "1", time.Minute))
	require.NoError(t, kv.Set(ctx, "other:b", "2", time.Minute))

	val, err := kv.Get(ctx, "producflow:report:a")
	require.NoError(t, err)
	assert.Equal(t, "1", val)
	assert.Equal(t, time.Minute, mr.TTL("producflow:report:a"))

	require.NoError(t, kv.DeletePrefix(ctx, "producflow:report:"))
	assert.False(t, mr.Exists("producflow:report:a"))
	assert.True(t, mr.Exists("other:b"))
}

func TestDialUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := cache.Dial(ctx, cache.Config{RedisAddr: addr, TTL: time.Second})
	require.Error(t, err)
	assert.Equal(t, cache.ErrConnect, errors.CodeOf(err))
}

func TestReporterCachesMetrics(t *testing.T) {
	kv, mr := newKV(t)
	inner := &countingReporter{}
	r := cache.NewReporter(inner, kv, time.Minute, logger.Get())
	ctx := context.Background()
	asOf := time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC)

	first, err := r.ProductionMetrics(ctx, asOf)
	require.NoError(t, err)
	second, err := r.ProductionMetrics(ctx, asOf.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.metricsCalls)
	assert.True(t, mr.Exists("producflow:report:metrics:2024-06-15Z"))

	_, err = r.ProductionMetrics(ctx, asOf.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 2, inner.metricsCalls)
}

func TestReporterCachesDashboardAndShifts(t *testing.T) {
	kv, _ := newKV(t)
	inner := &countingReporter{}
	r := cache.NewReporter(inner, kv, time.Minute, logger.Get())
	ctx := context.Background()
	date := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)
	night := domain.ShiftNight

	for i := 0; i < 3; i++ {
		summary, err := r.DashboardSummary(ctx)
		require.NoError(t, err)
		assert.Equal(t, 92.3, summary.ProductionEfficiency)

		all, err := r.ShiftSummaries(ctx, date, nil)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.True(t, date.Equal(all[0].Date))

		filtered, err := r.ShiftSummaries(ctx, date, &night)
		require.NoError(t, err)
		require.Len(t, filtered, 1)
		assert.Equal(t, domain.ShiftNight, filtered[0].Shift)
	}

	assert.Equal(t, 1, inner.dashboardCalls)
	assert.Equal(t, 2, inner.shiftCalls)
}

func TestReporterInvalidate(t *testing.T) {
	kv, _ := newKV(t)
	inner := &countingReporter{}
	r := cache.NewReporter(inner, kv, time.Minute, logger.Get())
	ctx := context.Background()

	_, err := r.DashboardSummary(ctx)
	require.NoError(t, err)
	require.NoError(t, r.Invalidate(ctx))
	_, err = r.DashboardSummary(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.dashboardCalls)
}

func TestReporterExpiry(t *testing.T) {
	kv, mr := newKV(t)
	inner := &countingReporter{}
	r := cache.NewReporter(inner, kv, time.Minute, logger.Get())
	ctx := context.Background()

	_, err := r.DashboardSummary(ctx)
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)
	_, err = r.DashboardSummary(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.dashboardCalls)
}

func TestReporterFallsThroughOnCacheFailure(t *testing.T) {
	inner := &countingReporter{}
	r := cache.NewReporter(inner, brokenKV{}, time.Minute, logger.Get())

	summary, err := r.DashboardSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.EquipmentOperational)
	assert.Equal(t, 1, inner.dashboardCalls)
}

func TestReporterDoesNotCacheErrors(t *testing.T) {
	kv, mr := newKV(t)
	boom := stderrors.New("boom")
	inner := &countingReporter{err: boom}
	r := cache.NewReporter(inner, kv, time.Minute, logger.Get())

	_, err := r.DashboardSummary(context.Background())
	assert.Same(t, boom, err)
	assert.False(t, mr.Exists("producflow:report:dashboard"))
}

func TestReporterDiscardsCorruptEntry(t *testing.T) {
	kv, mr := newKV(t)
	require.NoError(t, mr.Set("producflow:report:dashboard", "{not json"))
	inner := &countingReporter{}
	r := cache.NewReporter(inner, kv, time.Minute, logger.Get())

	summary, err := r.DashboardSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 45300.0, summary.CostSavings)
	assert.Equal(t, 1, inner.dashboardCalls)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, cache.DefaultConfig().Validate())
	assert.False(t, cache.DefaultConfig().Enabled())

	cfg := cache.DefaultConfig()
	cfg.RedisAddr = "localhost:6379"
	assert.NoError(t, cfg.Validate())

	cfg.TTL = 0
	assert.True(t, errors.HasCode(cfg.Validate(), cache.ErrInvalidTTL))
}
