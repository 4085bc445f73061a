package domain

import (
	"time"
)

type Shift string

const (
	ShiftMorning   Shift = "morning"
	ShiftAfternoon Shift = "afternoon"
	ShiftNight     Shift = "night"
)

func (s Shift) IsValid() bool {
	switch s {
	case ShiftMorning, ShiftAfternoon, ShiftNight:
		return true
	default:
		return false
	}
}

// ParseShift validates a shift name supplied by a caller.
func ParseShift(s string) (Shift, error) {
	shift := Shift(s)
	if !shift.IsValid() {
		return "", invalid("shift", s)
	}
	return shift, nil
}

// ShiftMinutes is the length of the reference shift used to derive efficiency.
const ShiftMinutes = 8 * 60

// DeriveEfficiency returns the productive-time percentage of a reference
// shift. It is not clamped: downtime outside [0, ShiftMinutes] yields values
// above 100 or below 0.
func DeriveEfficiency(downtimeMinutes int) float64 {
	productive := ShiftMinutes - downtimeMinutes
	return float64(productive) / float64(ShiftMinutes) * 100
}

type ProductionRecord struct {
	ID                   int64     `json:"id"`
	EquipmentID          int64     `json:"equipment_id"`
	Shift                Shift     `json:"shift"`
	OutputQuantity       int       `json:"output_quantity"`
	DefectQuantity       int       `json:"defect_quantity"`
	DowntimeMinutes      int       `json:"downtime_minutes"`
	EfficiencyPercentage float64   `json:"efficiency_percentage"`
	Date                 time.Time `json:"date"`
	CreatedAt            time.Time `json:"created_at"`
}

type ProductionRecordCreate struct {
	EquipmentID          int64     `json:"equipment_id"`
	Shift                Shift     `json:"shift"`
	OutputQuantity       int       `json:"output_quantity"`
	DefectQuantity       int       `json:"defect_quantity"`
	DowntimeMinutes      int       `json:"downtime_minutes"`
	EfficiencyPercentage *float64  `json:"efficiency_percentage,omitempty"`
	Date                 time.Time `json:"date"`
}

func (c ProductionRecordCreate) Validate() error {
	if c.EquipmentID <= 0 {
		return invalid("equipment_id", "must be positive")
	}
	if !c.Shift.IsValid() {
		return invalid("shift", string(c.Shift))
	}
	if c.OutputQuantity < 0 {
		return invalid("output_quantity", "must not be negative")
	}
	if c.DefectQuantity < 0 {
		return invalid("defect_quantity", "must not be negative")
	}
	if c.Date.IsZero() {
		return invalid("date", "is required")
	}
	return nil
}

// Build returns the record to persist, deriving efficiency from downtime
// when the caller did not supply one.
func (c ProductionRecordCreate) Build(now time.Time) ProductionRecord {
	efficiency := DeriveEfficiency(c.DowntimeMinutes)
	if c.EfficiencyPercentage != nil {
		efficiency = *c.EfficiencyPercentage
	}
	return ProductionRecord{
		EquipmentID:          c.EquipmentID,
		Shift:                c.Shift,
		OutputQuantity:       c.OutputQuantity,
		DefectQuantity:       c.DefectQuantity,
		DowntimeMinutes:      c.DowntimeMinutes,
		EfficiencyPercentage: efficiency,
		Date:                 c.Date,
		CreatedAt:            now,
	}
}

// ProductionRecordUpdate lists the fields a caller may replace. Nil fields
// are left untouched; efficiency is not re-derived when only downtime changes.
type ProductionRecordUpdate struct {
	EquipmentID          *int64     `json:"equipment_id,omitempty"`
	Shift                *Shift     `json:"shift,omitempty"`
	OutputQuantity       *int       `json:"output_quantity,omitempty"`
	DefectQuantity       *int       `json:"defect_quantity,omitempty"`
	DowntimeMinutes      *int       `json:"downtime_minutes,omitempty"`
	EfficiencyPercentage *float64   `json:"efficiency_percentage,omitempty"`
	Date                 *time.Time `json:"date,omitempty"`
}

func (u ProductionRecordUpdate) Validate() error {
	if u.EquipmentID != nil && *u.EquipmentID <= 0 {
		return invalid("equipment_id", "must be positive")
	}
	if u.Shift != nil && !u.Shift.IsValid() {
		return invalid("shift", string(*u.Shift))
	}
	if u.OutputQuantity != nil && *u.OutputQuantity < 0 {
		return invalid("output_quantity", "must not be negative")
	}
	if u.DefectQuantity != nil && *u.DefectQuantity < 0 {
		return invalid("defect_quantity", "must not be negative")
	}
	if u.Date != nil && u.Date.IsZero() {
		return invalid("date", "must not be zero")
	}
	return nil
}

// Apply copies every supplied field onto r. Call Validate first.
func (u ProductionRecordUpdate) Apply(r *ProductionRecord) {
	if u.EquipmentID != nil {
		r.EquipmentID = *u.EquipmentID
	}
	if u.Shift != nil {
		r.Shift = *u.Shift
	}
	if u.OutputQuantity != nil {
		r.OutputQuantity = *u.OutputQuantity
	}
	if u.DefectQuantity != nil {
		r.DefectQuantity = *u.DefectQuantity
	}
	if u.DowntimeMinutes != nil {
		r.DowntimeMinutes = *u.DowntimeMinutes
	}
	if u.EfficiencyPercentage != nil {
		r.EfficiencyPercentage = *u.EfficiencyPercentage
	}
	if u.Date != nil {
		r.Date = *u.Date
	}
}

// ProductionFilter selects production records. Zero From/To leave that side
// of the [From, To) range open; Limit 0 means no limit.
type ProductionFilter struct {
	From        time.Time
	To          time.Time
	EquipmentID *int64
	Shift       *Shift
	Skip        int
	Limit       int
	NewestFirst bool
}

// DayRange returns the half-open range covering t's calendar day in t's location.
func DayRange(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
