package metrics

import (
	"math"
	"time"

	"codeberg.org/mutker/producflow/internal/domain"
)

// Round2 rounds to two decimals, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Window returns the half-open range [from, to) covering windowDays whole
// days before asOf's day plus asOf's day itself.
func Window(asOf time.Time, windowDays int) (time.Time, time.Time) {
	start, end := domain.DayRange(asOf)
	return start.AddDate(0, 0, -windowDays), end
}

// Aggregate computes window metrics over records. totalEquipment is passed
// through untouched.
func Aggregate(records []domain.ProductionRecord, totalEquipment int) ProductionMetrics {
	m := ProductionMetrics{TotalEquipment: totalEquipment}
	if len(records) == 0 {
		return m
	}

	var (
		defects    int
		downtime   int
		efficiency float64
		equipment  = make(map[int64]struct{})
	)
	for _, r := range records {
		m.TotalOutput += r.OutputQuantity
		defects += r.DefectQuantity
		downtime += r.DowntimeMinutes
		efficiency += r.EfficiencyPercentage
		equipment[r.EquipmentID] = struct{}{}
	}

	m.EfficiencyPercentage = Round2(efficiency / float64(len(records)))
	if m.TotalOutput > 0 {
		m.DefectRate = Round2(float64(defects) / float64(m.TotalOutput) * 100)
	}
	m.DowntimeHours = Round2(float64(downtime) / 60)
	m.ActiveEquipment = len(equipment)

	return m
}

// Summarize builds one shift summary over records, stamped with date.
func Summarize(shift domain.Shift, date time.Time, records []domain.ProductionRecord) ShiftSummary {
	s := ShiftSummary{Shift: shift, Date: date}
	if len(records) == 0 {
		return s
	}

	var efficiency float64
	equipment := make(map[int64]struct{})
	for _, r := range records {
		s.TotalOutput += r.OutputQuantity
		s.TotalDefects += r.DefectQuantity
		s.TotalDowntime += r.DowntimeMinutes
		efficiency += r.EfficiencyPercentage
		equipment[r.EquipmentID] = struct{}{}
	}
	s.AverageEfficiency = Round2(efficiency / float64(len(records)))
	s.EquipmentCount = len(equipment)

	return s
}

// GroupByShift splits records by shift. Shifts appear in first-encounter
// order and each group keeps the input order.
func GroupByShift(records []domain.ProductionRecord) ([]domain.Shift, map[domain.Shift][]domain.ProductionRecord) {
	var order []domain.Shift
	groups := make(map[domain.Shift][]domain.ProductionRecord)
	for _, r := range records {
		if _, seen := groups[r.Shift]; !seen {
			order = append(order, r.Shift)
		}
		groups[r.Shift] = append(groups[r.Shift], r)
	}
	return order, groups
}

// Dashboard assembles a summary from status counts. Statuses absent from
// counts report zero.
func Dashboard(counts map[domain.EquipmentStatus]int, activeAlerts int, efficiency, costSavings float64) DashboardSummary {
	return DashboardSummary{
		EquipmentOperational: counts[domain.EquipmentOperational],
		EquipmentWarning:     counts[domain.EquipmentWarning],
		EquipmentCritical:    counts[domain.EquipmentCritical],
		EquipmentMaintenance: counts[domain.EquipmentMaintenance],
		ProductionEfficiency: efficiency,
		ActiveAlerts:         activeAlerts,
		CostSavings:          costSavings,
	}
}
