package domain

import (
	"strings"
	"time"
)

type AlertType string

const (
	AlertPredictive AlertType = "predictive"
	AlertScheduled  AlertType = "scheduled"
	AlertEmergency  AlertType = "emergency"
)

func (t AlertType) IsValid() bool {
	return t == AlertPredictive || t == AlertScheduled || t == AlertEmergency
}

type AlertPriority string

const (
	PriorityLow      AlertPriority = "low"
	PriorityMedium   AlertPriority = "medium"
	PriorityHigh     AlertPriority = "high"
	PriorityCritical AlertPriority = "critical"
)

func (p AlertPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	default:
		return false
	}
}

type AlertStatus string

const (
	AlertActive       AlertStatus = "active"
	AlertAcknowledged AlertStatus = "acknowledged"
	AlertResolved     AlertStatus = "resolved"
)

type MaintenanceAlert struct {
	ID            int64         `json:"id"`
	EquipmentID   int64         `json:"equipment_id"`
	Type          AlertType     `json:"type"`
	Priority      AlertPriority `json:"priority"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	PredictedDate *time.Time    `json:"predicted_date"`
	Confidence    *float64      `json:"confidence"`
	Status        AlertStatus   `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	ResolvedAt    *time.Time    `json:"resolved_at"`
}

type MaintenanceAlertCreate struct {
	EquipmentID   int64         `json:"equipment_id"`
	Type          AlertType     `json:"type"`
	Priority      AlertPriority `json:"priority"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	PredictedDate *time.Time    `json:"predicted_date,omitempty"`
	Confidence    *float64      `json:"confidence,omitempty"`
}

func (c MaintenanceAlertCreate) Validate() error {
	if c.EquipmentID <= 0 {
		return invalid("equipment_id", "must be positive")
	}
	if !c.Type.IsValid() {
		return invalid("type", string(c.Type))
	}
	if !c.Priority.IsValid() {
		return invalid("priority", string(c.Priority))
	}
	if strings.TrimSpace(c.Title) == "" {
		return invalid("title", "must not be empty")
	}
	if c.Confidence != nil && (*c.Confidence < 0 || *c.Confidence > 1) {
		return invalid("confidence", "must be within [0, 1]")
	}
	return nil
}

func (c MaintenanceAlertCreate) Build(now time.Time) MaintenanceAlert {
	return MaintenanceAlert{
		EquipmentID:   c.EquipmentID,
		Type:          c.Type,
		Priority:      c.Priority,
		Title:         c.Title,
		Description:   c.Description,
		PredictedDate: c.PredictedDate,
		Confidence:    c.Confidence,
		Status:        AlertActive,
		CreatedAt:     now,
	}
}

type AlertFilter struct {
	Status   AlertStatus
	Priority *AlertPriority
	Skip     int
	Limit    int
}

type MaintenanceType string

const (
	MaintenancePreventive MaintenanceType = "preventive"
	MaintenanceCorrective MaintenanceType = "corrective"
	MaintenanceEmergency  MaintenanceType = "emergency"
)

func (t MaintenanceType) IsValid() bool {
	return t == MaintenancePreventive || t == MaintenanceCorrective || t == MaintenanceEmergency
}

type LogStatus string

const (
	LogScheduled  LogStatus = "scheduled"
	LogInProgress LogStatus = "in_progress"
	LogCompleted  LogStatus = "completed"
)

func (s LogStatus) IsValid() bool {
	return s == LogScheduled || s == LogInProgress || s == LogCompleted
}

type MaintenanceLog struct {
	ID              int64           `json:"id"`
	EquipmentID     int64           `json:"equipment_id"`
	TechnicianID    int64           `json:"technician_id"`
	MaintenanceType MaintenanceType `json:"maintenance_type"`
	Description     string          `json:"description"`
	Cost            *float64        `json:"cost"`
	DurationHours   *float64        `json:"duration_hours"`
	PartsReplaced   *string         `json:"parts_replaced"`
	Status          LogStatus       `json:"status"`
	ScheduledDate   *time.Time      `json:"scheduled_date"`
	CompletedDate   *time.Time      `json:"completed_date"`
	CreatedAt       time.Time       `json:"created_at"`
}

type MaintenanceLogCreate struct {
	EquipmentID     int64           `json:"equipment_id"`
	TechnicianID    int64           `json:"technician_id"`
	MaintenanceType MaintenanceType `json:"maintenance_type"`
	Description     string          `json:"description"`
	Cost            *float64        `json:"cost,omitempty"`
	DurationHours   *float64        `json:"duration_hours,omitempty"`
	PartsReplaced   *string         `json:"parts_replaced,omitempty"`
	Status          LogStatus       `json:"status,omitempty"`
	ScheduledDate   *time.Time      `json:"scheduled_date,omitempty"`
	CompletedDate   *time.Time      `json:"completed_date,omitempty"`
}

func (c MaintenanceLogCreate) Validate() error {
	if c.EquipmentID <= 0 {
		return invalid("equipment_id", "must be positive")
	}
	if c.TechnicianID <= 0 {
		return invalid("technician_id", "must be positive")
	}
	if !c.MaintenanceType.IsValid() {
		return invalid("maintenance_type", string(c.MaintenanceType))
	}
	if strings.TrimSpace(c.Description) == "" {
		return invalid("description", "must not be empty")
	}
	if c.Status != "" && !c.Status.IsValid() {
		return invalid("status", string(c.Status))
	}
	if c.Cost != nil && *c.Cost < 0 {
		return invalid("cost", "must not be negative")
	}
	if c.DurationHours != nil && *c.DurationHours < 0 {
		return invalid("duration_hours", "must not be negative")
	}
	return nil
}

func (c MaintenanceLogCreate) Build(now time.Time) MaintenanceLog {
	l := MaintenanceLog{
		EquipmentID:     c.EquipmentID,
		TechnicianID:    c.TechnicianID,
		MaintenanceType: c.MaintenanceType,
		Description:     c.Description,
		Cost:            c.Cost,
		DurationHours:   c.DurationHours,
		PartsReplaced:   c.PartsReplaced,
		Status:          c.Status,
		ScheduledDate:   c.ScheduledDate,
		CompletedDate:   c.CompletedDate,
		CreatedAt:       now,
	}
	if l.Status == "" {
		l.Status = LogCompleted
	}
	return l
}

type LogFilter struct {
	EquipmentID *int64
	Status      *LogStatus
	Skip        int
	Limit       int
}

// LogStatusUpdate moves a maintenance log to a new status.
type LogStatusUpdate struct {
	Status        LogStatus
	CompletedDate *time.Time
}

func (u LogStatusUpdate) Validate() error {
	if !u.Status.IsValid() {
		return invalid("status", string(u.Status))
	}
	return nil
}

// CompletionDate returns the completed_date to store, or nil to keep the
// current one. Completing without an explicit date stamps now.
func (u LogStatusUpdate) CompletionDate(now time.Time) *time.Time {
	if u.CompletedDate != nil {
		return u.CompletedDate
	}
	if u.Status == LogCompleted {
		return &now
	}
	return nil
}
