package metrics

import "codeberg.org/mutker/producflow/internal/errors"

// EfficiencySource selects where the dashboard efficiency figure comes from.
type EfficiencySource string

const (
	EfficiencyStatic  EfficiencySource = "static"
	EfficiencyMetrics EfficiencySource = "metrics"
)

func (s EfficiencySource) IsValid() bool {
	return s == EfficiencyStatic || s == EfficiencyMetrics
}

const (
	defaultWindowDays           = 7
	defaultProductionEfficiency = 92.3
	defaultCostSavings          = 45300.0
)

type Config struct {
	WindowDays           int
	EfficiencySource     EfficiencySource
	ProductionEfficiency float64
	CostSavings          float64
}

func DefaultConfig() Config {
	return Config{
		WindowDays:           defaultWindowDays,
		EfficiencySource:     EfficiencyStatic,
		ProductionEfficiency: defaultProductionEfficiency,
		CostSavings:          defaultCostSavings,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if c.WindowDays <= 0 {
		return errFactory.WithData(ErrInvalidWindow, c.WindowDays)
	}
	if !c.EfficiencySource.IsValid() {
		return errFactory.WithData(ErrInvalidEfficiencySource, c.EfficiencySource)
	}
	return nil
}
