package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"codeberg.org/mutker/producflow/internal/domain"
	"codeberg.org/mutker/producflow/internal/httpapi"
	"codeberg.org/mutker/producflow/internal/logger"
	"codeberg.org/mutker/producflow/internal/metrics"
	"codeberg.org/mutker/producflow/internal/monitoring"
	"codeberg.org/mutker/producflow/internal/sensor"
	"codeberg.org/mutker/producflow/internal/store"
	"codeberg.org/mutker/producflow/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.calls++
	return nil
}

type fixture struct {
	handler     http.Handler
	invalidator *countingInvalidator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	dir := t.TempDir()
	cfg := store.DefaultConfig()
	cfg.DSN = filepath.Join(dir, "producflow.db")
	cfg.BackupDir = filepath.Join(dir, "backups")

	st, err := store.Open(ctx, cfg, logger.Get())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	seeded, err := st.Seed(ctx, sensor.NewGenerator(rand.NewSource(7)), now)
	require.NoError(t, err)
	require.True(t, seeded)

	reporter, err := metrics.NewService(st, metrics.DefaultConfig(), metrics.WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	inv := &countingInvalidator{}
	srv, err := httpapi.New(httpapi.DefaultConfig(), st, reporter, telemetry.NewService(st, logger.Get()), logger.Get(),
		httpapi.WithMetrics(monitoring.New()),
		httpapi.WithInvalidator(inv),
		httpapi.WithClock(func() time.Time { return now }),
	)
	require.NoError(t, err)

	return &fixture{handler: srv.Handler(), invalidator: inv}
}

func (f *fixture) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["detail"]
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode[map[string]any](t, rec)["status"])
}

func TestRequestID(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/health", nil)
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodOptions, "/equipment", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestUnknownRoute(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", detail(t, rec))
}

func TestEquipmentEndpoints(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/equipment", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Equipment](t, rec), 5)

	rec = f.do(t, http.MethodGet, "/equipment?status=critical", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	critical := decode[[]domain.Equipment](t, rec)
	require.Len(t, critical, 1)
	assert.Equal(t, "Robotic Arm #3", critical[0].Name)

	rec = f.do(t, http.MethodGet, "/equipment?skip=1&limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[[]domain.Equipment](t, rec)
	require.Len(t, page, 2)
	assert.Equal(t, "CNC Milling Machine #2", page[0].Name)

	rec = f.do(t, http.MethodGet, "/equipment?status=broken", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, detail(t, rec), "broken")

	rec = f.do(t, http.MethodGet, "/equipment?skip=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/equipment?limit=5000", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/equipment/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Injection Molding Machine #1", decode[domain.Equipment](t, rec).Name)

	rec = f.do(t, http.MethodGet, "/equipment/99", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, detail(t, rec), "not found")
}

func TestCreateEquipment(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/equipment", domain.EquipmentCreate{
		Name: "Laser Cutter", Type: "Cutting", Location: "Floor C",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	e := decode[domain.Equipment](t, rec)
	assert.Equal(t, int64(6), e.ID)
	assert.Equal(t, domain.EquipmentOperational, e.Status)
	assert.Equal(t, domain.DefaultHealthScore, e.HealthScore)
	assert.Equal(t, 1, f.invalidator.calls)

	rec = f.do(t, http.MethodPost, "/equipment", domain.EquipmentCreate{Type: "Cutting", Location: "Floor C"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/equipment", "not an object")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSensorEndpoints(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/equipment/1/sensors?limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.SensorReading](t, rec), 5)

	rec = f.do(t, http.MethodGet, "/equipment/1/sensors", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.SensorReading](t, rec), 40)

	value := 90.0
	rec = f.do(t, http.MethodPost, "/equipment/2/sensors", domain.SensorReadingCreate{
		SensorType: domain.SensorTemperature, Value: &value,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	reading := decode[domain.SensorReading](t, rec)
	assert.Equal(t, int64(2), reading.EquipmentID)
	assert.Equal(t, "°C", reading.Unit)
	assert.Equal(t, domain.SensorCritical, reading.Status)

	rec = f.do(t, http.MethodPost, "/equipment/99/sensors", domain.SensorReadingCreate{
		SensorType: domain.SensorTemperature, Value: &value,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPost, "/equipment/2/sensors", domain.SensorReadingCreate{SensorType: "humidity", Value: &value})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAlertEndpoints(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/maintenance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.MaintenanceAlert](t, rec), 2)

	rec = f.do(t, http.MethodGet, "/maintenance?priority=critical", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	alerts := decode[[]domain.MaintenanceAlert](t, rec)
	require.Len(t, alerts, 1)
	assert.Equal(t, "Hydraulic System Failure", alerts[0].Title)

	rec = f.do(t, http.MethodGet, "/maintenance?priority=urgent", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	confidence := 0.7
	rec = f.do(t, http.MethodPost, "/maintenance", domain.MaintenanceAlertCreate{
		EquipmentID: 3, Type: domain.AlertScheduled, Priority: domain.PriorityLow,
		Title: "Belt inspection", Confidence: &confidence,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.AlertActive, decode[domain.MaintenanceAlert](t, rec).Status)

	rec = f.do(t, http.MethodGet, "/dashboard/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, decode[metrics.DashboardSummary](t, rec).ActiveAlerts)
}

func TestProductionMetrics(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/production/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	m := decode[metrics.ProductionMetrics](t, rec)
	assert.Equal(t, 2100, m.TotalOutput)
	assert.Equal(t, 1.9, m.DefectRate)
	assert.Equal(t, 3, m.ActiveEquipment)
	assert.Equal(t, 5, m.TotalEquipment)

	rec = f.do(t, http.MethodGet, "/production/metrics?as_of=2024-07-30", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	m = decode[metrics.ProductionMetrics](t, rec)
	assert.Zero(t, m.TotalOutput)
	assert.Equal(t, 5, m.TotalEquipment)

	rec = f.do(t, http.MethodGet, "/production/metrics?as_of=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardUpdatesGauges(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/dashboard/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[metrics.DashboardSummary](t, rec)
	assert.Equal(t, 3, summary.EquipmentOperational)
	assert.Equal(t, 1, summary.EquipmentWarning)
	assert.Equal(t, 1, summary.EquipmentCritical)
	assert.Equal(t, 2, summary.ActiveAlerts)
	assert.Equal(t, 92.3, summary.ProductionEfficiency)

	rec = f.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `equipment_status{status="operational"} 3`)
	assert.Contains(t, body, `http_requests_total{endpoint="/dashboard/summary",method="GET",status_code="200"} 1`)
}

func TestProductionRecordEndpoints(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/production/records", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.ProductionRecord](t, rec), 4)

	rec = f.do(t, http.MethodGet, "/production/records?shift=morning&equipment_id=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	morning := decode[[]domain.ProductionRecord](t, rec)
	require.Len(t, morning, 1)
	assert.Equal(t, 450, morning[0].OutputQuantity)

	rec = f.do(t, http.MethodGet, "/production/records?shift=graveyard", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/production/records?equipment_id=x", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/production/records/42", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPost, "/production/records", domain.ProductionRecordCreate{
		EquipmentID: 5, Shift: domain.ShiftNight, OutputQuantity: 600, DefectQuantity: 6,
		DowntimeMinutes: 15, Date: now,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	created := decode[domain.ProductionRecord](t, rec)
	assert.Equal(t, 96.875, created.EfficiencyPercentage)

	rec = f.do(t, http.MethodGet, "/production/records/5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 600, decode[domain.ProductionRecord](t, rec).OutputQuantity)

	output, downtime := 640, 60
	rec = f.do(t, http.MethodPut, "/production/records/5", domain.ProductionRecordUpdate{
		OutputQuantity: &output, DowntimeMinutes: &downtime,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[domain.ProductionRecord](t, rec)
	assert.Equal(t, 640, updated.OutputQuantity)
	assert.Equal(t, 60, updated.DowntimeMinutes)
	assert.Equal(t, 96.875, updated.EfficiencyPercentage)
	assert.Equal(t, domain.ShiftNight, updated.Shift)

	negative := -1
	rec = f.do(t, http.MethodPut, "/production/records/5", domain.ProductionRecordUpdate{DefectQuantity: &negative})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPut, "/production/records/42", domain.ProductionRecordUpdate{OutputQuantity: &output})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, 2, f.invalidator.calls)
}

func TestUnknownEquipmentReferences(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/production/records", domain.ProductionRecordCreate{
		EquipmentID: 999, Shift: domain.ShiftMorning, OutputQuantity: 500, DowntimeMinutes: 10, Date: now,
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "equipment 999 not found", detail(t, rec))

	rec = f.do(t, http.MethodPost, "/maintenance", domain.MaintenanceAlertCreate{
		EquipmentID: 999, Type: domain.AlertScheduled, Priority: domain.PriorityLow, Title: "Belt inspection",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPost, "/maintenance/logs", domain.MaintenanceLogCreate{
		EquipmentID: 999, TechnicianID: 3, MaintenanceType: domain.MaintenancePreventive, Description: "Lubrication",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	missing := int64(999)
	rec = f.do(t, http.MethodPut, "/production/records/1", domain.ProductionRecordUpdate{EquipmentID: &missing})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/production/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	m := decode[metrics.ProductionMetrics](t, rec)
	assert.Equal(t, 2100, m.TotalOutput)
	assert.Equal(t, 3, m.ActiveEquipment)
	assert.Equal(t, 5, m.TotalEquipment)

	rec = f.do(t, http.MethodGet, "/maintenance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.MaintenanceAlert](t, rec), 2)

	assert.Zero(t, f.invalidator.calls)
}

func TestShiftSummaries(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/production/shifts/summary?date=2024-06-14", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summaries := decode[[]metrics.ShiftSummary](t, rec)
	require.Len(t, summaries, 2)
	assert.Equal(t, domain.ShiftMorning, summaries[0].Shift)
	assert.Equal(t, 1680, summaries[0].TotalOutput)
	assert.Equal(t, 3, summaries[0].EquipmentCount)
	assert.Equal(t, domain.ShiftAfternoon, summaries[1].Shift)

	rec = f.do(t, http.MethodGet, "/production/shifts/summary?date=2024-06-14T00:00:00Z&shift=night", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestExportProduction(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/production/export?date=2024-06-14", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "production-2024-06-14.xlsx")

	wb, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer wb.Close()

	assert.Equal(t, []string{"Production Records", "Shift Summary"}, wb.GetSheetList())

	records, err := wb.GetRows("Production Records")
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, "Equipment ID", records[0][1])
	assert.Equal(t, "450", records[1][3])

	shifts, err := wb.GetRows("Shift Summary")
	require.NoError(t, err)
	require.Len(t, shifts, 3)
	assert.Equal(t, "morning", shifts[1][0])
	assert.Equal(t, "1680", shifts[1][2])
}

func TestMaintenanceLogEndpoints(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/maintenance/logs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.MaintenanceLog](t, rec), 3)

	rec = f.do(t, http.MethodGet, "/maintenance/logs?status=in_progress", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	inProgress := decode[[]domain.MaintenanceLog](t, rec)
	require.Len(t, inProgress, 1)
	assert.Nil(t, inProgress[0].CompletedDate)

	rec = f.do(t, http.MethodGet, "/maintenance/logs?equipment_id=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.MaintenanceLog](t, rec), 1)

	rec = f.do(t, http.MethodGet, "/maintenance/logs/3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.MaintenanceEmergency, decode[domain.MaintenanceLog](t, rec).MaintenanceType)

	rec = f.do(t, http.MethodGet, "/maintenance/logs/30", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPatch, "/maintenance/logs/3/status?status=completed", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "Status updated successfully", body["message"])
	assert.Equal(t, "completed", body["status"])
	assert.NotNil(t, body["completed_date"])

	rec = f.do(t, http.MethodPatch, "/maintenance/logs/3/status?status=completed&completed_date=2024-06-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-06-01T00:00:00Z", decode[map[string]any](t, rec)["completed_date"])

	rec = f.do(t, http.MethodPatch, "/maintenance/logs/3/status?status=done", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPatch, "/maintenance/logs/30/status?status=completed", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPost, "/maintenance/logs", domain.MaintenanceLogCreate{
		EquipmentID: 5, TechnicianID: 2, MaintenanceType: domain.MaintenancePreventive,
		Description: "Lens calibration",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.LogCompleted, decode[domain.MaintenanceLog](t, rec).Status)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, httpapi.DefaultConfig().Validate())

	cfg := httpapi.DefaultConfig()
	cfg.Addr = ""
	assert.Error(t, cfg.Validate())

	cfg = httpapi.DefaultConfig()
	cfg.ShutdownTimeout = 0
	assert.Error(t, cfg.Validate())
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := httpapi.DefaultConfig()
	cfg.Addr = "127.0.0.1:0"

	srv, err := httpapi.New(cfg, nil, nil, nil, logger.Get())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
