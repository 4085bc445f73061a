package domain

import (
	"math"
	"time"
)

type SensorType string

const (
	SensorTemperature SensorType = "temperature"
	SensorPressure    SensorType = "pressure"
	SensorVibration   SensorType = "vibration"
	SensorSpeed       SensorType = "speed"
)

var SensorTypes = []SensorType{
	SensorTemperature,
	SensorPressure,
	SensorVibration,
	SensorSpeed,
}

func (t SensorType) IsValid() bool {
	switch t {
	case SensorTemperature, SensorPressure, SensorVibration, SensorSpeed:
		return true
	default:
		return false
	}
}

type SensorStatus string

const (
	SensorNormal   SensorStatus = "normal"
	SensorWarning  SensorStatus = "warning"
	SensorCritical SensorStatus = "critical"
)

func (s SensorStatus) IsValid() bool {
	return s == SensorNormal || s == SensorWarning || s == SensorCritical
}

type SensorReading struct {
	ID          int64        `json:"id"`
	EquipmentID int64        `json:"equipment_id"`
	SensorType  SensorType   `json:"sensor_type"`
	Value       float64      `json:"value"`
	Unit        string       `json:"unit"`
	Status      SensorStatus `json:"status"`
	Timestamp   time.Time    `json:"timestamp"`
}

// SensorReadingCreate carries a raw measurement. Unit and status are
// derived from the sensor type and value by the telemetry collector.
type SensorReadingCreate struct {
	SensorType SensorType `json:"sensor_type"`
	Value      *float64   `json:"value"`
	Unit       string     `json:"unit,omitempty"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`
}

func (c SensorReadingCreate) Validate() error {
	if !c.SensorType.IsValid() {
		return invalid("sensor_type", string(c.SensorType))
	}
	if c.Value == nil {
		return invalid("value", "is required")
	}
	if math.IsNaN(*c.Value) || math.IsInf(*c.Value, 0) {
		return invalid("value", "must be a finite number")
	}
	return nil
}
