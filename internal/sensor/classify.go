package sensor

import (
	"math"

	"codeberg.org/mutker/producflow/internal/domain"
)

var negInf = math.Inf(-1)

// band is an inclusive interval; a value outside it trips the band.
type band struct {
	low  float64
	high float64
}

func (b band) contains(v float64) bool {
	return v >= b.low && v <= b.high
}

type thresholds struct {
	critical band
	warning  band
}

// Upper-only limits use -Inf as the low end.
var limits = map[domain.SensorType]thresholds{
	domain.SensorTemperature: {critical: band{negInf, 85}, warning: band{negInf, 80}},
	domain.SensorPressure:    {critical: band{45, 65}, warning: band{50, 60}},
	domain.SensorVibration:   {critical: band{negInf, 2.5}, warning: band{negInf, 2.0}},
	domain.SensorSpeed:       {critical: band{1200, 1800}, warning: band{1300, 1700}},
}

// Classify maps a reading to its status. Critical limits are checked before
// warning limits; unknown sensor types are always normal.
func Classify(sensorType domain.SensorType, value float64) domain.SensorStatus {
	t, ok := limits[sensorType]
	if !ok {
		return domain.SensorNormal
	}
	switch {
	case !t.critical.contains(value):
		return domain.SensorCritical
	case !t.warning.contains(value):
		return domain.SensorWarning
	default:
		return domain.SensorNormal
	}
}
