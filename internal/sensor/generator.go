package sensor

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"codeberg.org/mutker/producflow/internal/domain"
)

// valueRange is the uniform range a synthetic reading is drawn from.
type valueRange struct {
	min      float64
	max      float64
	decimals int
}

var ranges = map[domain.SensorType]valueRange{
	domain.SensorTemperature: {min: 65, max: 85, decimals: 1},
	domain.SensorPressure:    {min: 45, max: 65, decimals: 1},
	domain.SensorVibration:   {min: 0.1, max: 2.5, decimals: 2},
	domain.SensorSpeed:       {min: 1200, max: 1800, decimals: 0},
}

var units = map[domain.SensorType]string{
	domain.SensorTemperature: "°C",
	domain.SensorPressure:    "PSI",
	domain.SensorVibration:   "mm/s",
	domain.SensorSpeed:       "RPM",
}

// Generator produces synthetic sensor values. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewGenerator returns a Generator drawing from src. A nil src seeds from
// the current time.
func NewGenerator(src rand.Source) *Generator {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Generator{rnd: rand.New(src)}
}

// Value draws a reading for sensorType. Unknown types yield 0.
func (g *Generator) Value(sensorType domain.SensorType) float64 {
	r, ok := ranges[sensorType]
	if !ok {
		return 0
	}

	g.mu.Lock()
	f := g.rnd.Float64()
	g.mu.Unlock()

	return round(r.min+f*(r.max-r.min), r.decimals)
}

// Reading draws a value for sensorType and returns it unit-tagged and classified.
func (g *Generator) Reading(sensorType domain.SensorType) (float64, string, domain.SensorStatus) {
	v := g.Value(sensorType)
	return v, Unit(sensorType), Classify(sensorType, v)
}

// Unit returns the measurement unit for sensorType, or "" when unknown.
func Unit(sensorType domain.SensorType) string {
	return units[sensorType]
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
