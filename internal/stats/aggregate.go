// Package stats contains aggregation and reporting for traffic runs.
package stats

import (
	"strings"

	"trafficlens/internal/model"
)

// Aggregate computes a Summary over records in file order. It is a pure
// function: the same input always produces the same Summary.
func Aggregate(records []model.Record) model.Summary {
	summary := model.Summary{
		JunctionHourly: map[string][24]int{},
	}
	var rainSeen [24]bool
	for _, rec := range records {
		summary.TotalVehicles++
		if rec.Class == model.ClassTruck {
			summary.TotalTrucks++
		}
		if rec.Electric {
			summary.TotalElectric++
		}
		if rec.Class.TwoWheeled() {
			summary.TotalTwoWheeled++
		}
		if strings.EqualFold(rec.DirectionIn, rec.DirectionOut) {
			summary.NoTurn++
		}
		if rec.Speed > rec.SpeedLimit {
			summary.OverLimit++
		}
		if strings.Contains(rec.Weather, "rain") {
			rainSeen[rec.Hour] = true
		}
		summary.HourlyCounts[rec.Hour]++
		buckets := summary.JunctionHourly[rec.Junction]
		buckets[rec.Hour]++
		summary.JunctionHourly[rec.Junction] = buckets
	}
	summary.BusiestHour = busiestHour(summary.HourlyCounts, summary.TotalVehicles)
	for hour, raining := range rainSeen {
		if raining {
			summary.RainHours = append(summary.RainHours, hour)
		}
	}
	return summary
}

// busiestHour picks the hour with the highest count. Ties resolve to the
// earliest hour.
func busiestHour(counts [24]int, total int) *int {
	if total == 0 {
		return nil
	}
	best := 0
	for hour := 1; hour < 24; hour++ {
		if counts[hour] > counts[best] {
			best = hour
		}
	}
	return &best
}

// SummaryFromRun rebuilds a Summary from a stored run and its hour counts.
func SummaryFromRun(run model.RunAggregate, counts []model.HourCount) model.Summary {
	summary := model.Summary{
		TotalVehicles:   run.TotalVehicles,
		TotalTrucks:     run.TotalTrucks,
		TotalElectric:   run.TotalElectric,
		TotalTwoWheeled: run.TotalTwoWheeled,
		NoTurn:          run.NoTurn,
		OverLimit:       run.OverLimit,
		BusiestHour:     run.BusiestHour,
		RainHours:       append([]int(nil), run.RainHours...),
		JunctionHourly:  map[string][24]int{},
		Skipped:         run.Skipped,
	}
	for _, hc := range counts {
		if hc.Hour < 0 || hc.Hour > 23 {
			continue
		}
		summary.HourlyCounts[hc.Hour] += hc.Count
		buckets := summary.JunctionHourly[hc.Junction]
		buckets[hc.Hour] += hc.Count
		summary.JunctionHourly[hc.Junction] = buckets
	}
	return summary
}
