package domain

import (
	"strings"
	"time"
)

type EquipmentStatus string

const (
	EquipmentOperational EquipmentStatus = "operational"
	EquipmentWarning     EquipmentStatus = "warning"
	EquipmentCritical    EquipmentStatus = "critical"
	EquipmentMaintenance EquipmentStatus = "maintenance"
)

// EquipmentStatuses lists every status in dashboard order.
var EquipmentStatuses = []EquipmentStatus{
	EquipmentOperational,
	EquipmentWarning,
	EquipmentCritical,
	EquipmentMaintenance,
}

func (s EquipmentStatus) IsValid() bool {
	switch s {
	case EquipmentOperational, EquipmentWarning, EquipmentCritical, EquipmentMaintenance:
		return true
	default:
		return false
	}
}

const DefaultHealthScore = 100.0

type Equipment struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	Type             string          `json:"type"`
	Status           EquipmentStatus `json:"status"`
	Location         string          `json:"location"`
	Capacity         *float64        `json:"capacity"`
	HealthScore      float64         `json:"health_score"`
	InstallationDate *time.Time      `json:"installation_date"`
	LastMaintenance  *time.Time      `json:"last_maintenance"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        *time.Time      `json:"updated_at"`
}

// EquipmentCreate is the operator input for registering a machine.
type EquipmentCreate struct {
	Name             string          `json:"name"`
	Type             string          `json:"type"`
	Location         string          `json:"location"`
	Status           EquipmentStatus `json:"status,omitempty"`
	Capacity         *float64        `json:"capacity,omitempty"`
	HealthScore      *float64        `json:"health_score,omitempty"`
	InstallationDate *time.Time      `json:"installation_date,omitempty"`
	LastMaintenance  *time.Time      `json:"last_maintenance,omitempty"`
}

func (c EquipmentCreate) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return invalid("name", "must not be empty")
	}
	if strings.TrimSpace(c.Type) == "" {
		return invalid("type", "must not be empty")
	}
	if strings.TrimSpace(c.Location) == "" {
		return invalid("location", "must not be empty")
	}
	if c.Status != "" && !c.Status.IsValid() {
		return invalid("status", string(c.Status))
	}
	if c.Capacity != nil && *c.Capacity < 0 {
		return invalid("capacity", "must not be negative")
	}
	return nil
}

// Build applies defaults and returns the entity to persist.
func (c EquipmentCreate) Build(now time.Time) Equipment {
	e := Equipment{
		Name:             c.Name,
		Type:             c.Type,
		Status:           c.Status,
		Location:         c.Location,
		Capacity:         c.Capacity,
		HealthScore:      DefaultHealthScore,
		InstallationDate: c.InstallationDate,
		LastMaintenance:  c.LastMaintenance,
		CreatedAt:        now,
	}
	if e.Status == "" {
		e.Status = EquipmentOperational
	}
	if c.HealthScore != nil {
		e.HealthScore = *c.HealthScore
	}
	return e
}

type EquipmentFilter struct {
	Status *EquipmentStatus
	Skip   int
	Limit  int
}
