package httpapi

import (
	"context"

	"codeberg.org/mutker/producflow/internal/domain"
)

// Store is the record store surface the HTTP handlers read and write.
type Store interface {
	Ping(ctx context.Context) error

	ListEquipment(ctx context.Context, filter domain.EquipmentFilter) ([]domain.Equipment, error)
	GetEquipment(ctx context.Context, id int64) (domain.Equipment, error)
	CreateEquipment(ctx context.Context, e domain.Equipment) (domain.Equipment, error)
	SensorReadings(ctx context.Context, equipmentID int64, limit int) ([]domain.SensorReading, error)

	Alerts(ctx context.Context, filter domain.AlertFilter) ([]domain.MaintenanceAlert, error)
	CreateAlert(ctx context.Context, a domain.MaintenanceAlert) (domain.MaintenanceAlert, error)

	ProductionRecords(ctx context.Context, filter domain.ProductionFilter) ([]domain.ProductionRecord, error)
	GetProductionRecord(ctx context.Context, id int64) (domain.ProductionRecord, error)
	CreateProductionRecord(ctx context.Context, r domain.ProductionRecord) (domain.ProductionRecord, error)
	UpdateProductionRecord(ctx context.Context, id int64, upd domain.ProductionRecordUpdate) (domain.ProductionRecord, error)

	MaintenanceLogs(ctx context.Context, filter domain.LogFilter) ([]domain.MaintenanceLog, error)
	GetMaintenanceLog(ctx context.Context, id int64) (domain.MaintenanceLog, error)
	CreateMaintenanceLog(ctx context.Context, l domain.MaintenanceLog) (domain.MaintenanceLog, error)
	UpdateMaintenanceLogStatus(ctx context.Context, id int64, upd domain.LogStatusUpdate) (domain.MaintenanceLog, error)
}

// Invalidator drops cached reports after writes that change them.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}
