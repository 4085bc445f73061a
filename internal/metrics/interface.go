package metrics

import (
	"context"
	"time"

	"codeberg.org/mutker/producflow/internal/domain"
)

// RecordStore is the read side of the record store the aggregator consumes.
type RecordStore interface {
	ProductionRecords(ctx context.Context, filter domain.ProductionFilter) ([]domain.ProductionRecord, error)
	EquipmentCount(ctx context.Context) (int, error)
	EquipmentStatusCounts(ctx context.Context) (map[domain.EquipmentStatus]int, error)
	ActiveAlertCount(ctx context.Context) (int, error)
}

// Reporter produces the production reports served to the dashboard.
type Reporter interface {
	ProductionMetrics(ctx context.Context, asOf time.Time) (ProductionMetrics, error)
	DashboardSummary(ctx context.Context) (DashboardSummary, error)
	ShiftSummaries(ctx context.Context, date time.Time, shift *domain.Shift) ([]ShiftSummary, error)
}

// ProductionMetrics aggregates production over the rolling window.
type ProductionMetrics struct {
	TotalOutput          int     `json:"total_output"`
	EfficiencyPercentage float64 `json:"efficiency_percentage"`
	DefectRate           float64 `json:"defect_rate"`
	DowntimeHours        float64 `json:"downtime_hours"`
	ActiveEquipment      int     `json:"active_equipment"`
	TotalEquipment       int     `json:"total_equipment"`
}

type DashboardSummary struct {
	EquipmentOperational int     `json:"equipment_operational"`
	EquipmentWarning     int     `json:"equipment_warning"`
	EquipmentCritical    int     `json:"equipment_critical"`
	EquipmentMaintenance int     `json:"equipment_maintenance"`
	ProductionEfficiency float64 `json:"production_efficiency"`
	ActiveAlerts         int     `json:"active_alerts"`
	CostSavings          float64 `json:"cost_savings"`
}

type ShiftSummary struct {
	Shift             domain.Shift `json:"shift"`
	Date              time.Time    `json:"date"`
	TotalOutput       int          `json:"total_output"`
	TotalDefects      int          `json:"total_defects"`
	TotalDowntime     int          `json:"total_downtime"`
	AverageEfficiency float64      `json:"average_efficiency"`
	EquipmentCount    int          `json:"equipment_count"`
}
