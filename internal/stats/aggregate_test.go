package stats

import (
	"reflect"
	"testing"

	"trafficlens/internal/model"
)

func carAt(hour int) model.Record {
	return model.Record{
		Junction:     "Elm Avenue/Rabbit Road",
		Class:        model.ClassCar,
		DirectionIn:  "n",
		DirectionOut: "s",
		Speed:        25,
		SpeedLimit:   30,
		Weather:      "clear",
		Hour:         hour,
	}
}

func TestAggregateCounts(t *testing.T) {
	records := []model.Record{
		carAt(9),
		{Junction: "A", Class: model.ClassTruck, DirectionIn: "n", DirectionOut: "n", Speed: 45, SpeedLimit: 30, Weather: "clear", Hour: 9},
		{Junction: "A", Class: model.ClassBicycle, DirectionIn: "e", DirectionOut: "w", Speed: 12, SpeedLimit: 30, Electric: true, Weather: "light rain", Hour: 10},
		{Junction: "B", Class: model.ClassMotorcycle, DirectionIn: "s", DirectionOut: "s", Speed: 31, SpeedLimit: 30, Weather: "cloudy", Hour: 17},
	}
	summary := Aggregate(records)

	if summary.TotalVehicles != len(records) {
		t.Fatalf("expected %d vehicles, got %d", len(records), summary.TotalVehicles)
	}
	if summary.TotalTrucks != 1 {
		t.Fatalf("expected 1 truck, got %d", summary.TotalTrucks)
	}
	if summary.TotalElectric != 1 {
		t.Fatalf("expected 1 electric, got %d", summary.TotalElectric)
	}
	if summary.TotalTwoWheeled != 2 {
		t.Fatalf("expected 2 two-wheeled, got %d", summary.TotalTwoWheeled)
	}
	if summary.NoTurn != 2 {
		t.Fatalf("expected 2 no-turn, got %d", summary.NoTurn)
	}
	if summary.OverLimit != 2 {
		t.Fatalf("expected 2 over limit, got %d", summary.OverLimit)
	}
	for name, count := range map[string]int{
		"trucks":      summary.TotalTrucks,
		"electric":    summary.TotalElectric,
		"two-wheeled": summary.TotalTwoWheeled,
		"no-turn":     summary.NoTurn,
		"over-limit":  summary.OverLimit,
	} {
		if count > summary.TotalVehicles {
			t.Fatalf("%s count %d exceeds total %d", name, count, summary.TotalVehicles)
		}
	}
}

func TestAggregateBusiestHour(t *testing.T) {
	records := []model.Record{carAt(9), carAt(9), carAt(9), carAt(10), carAt(10)}
	summary := Aggregate(records)
	if summary.BusiestHour == nil || *summary.BusiestHour != 9 {
		t.Fatalf("expected busiest hour 9, got %v", summary.BusiestHour)
	}
}

func TestAggregateBusiestHourTieEarliestWins(t *testing.T) {
	records := []model.Record{carAt(10), carAt(10), carAt(9), carAt(9)}
	summary := Aggregate(records)
	if summary.BusiestHour == nil || *summary.BusiestHour != 9 {
		t.Fatalf("expected busiest hour 9 on tie, got %v", summary.BusiestHour)
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	summary := Aggregate(nil)
	if summary.TotalVehicles != 0 || summary.TotalTrucks != 0 || summary.OverLimit != 0 {
		t.Fatalf("expected zero counts, got %+v", summary)
	}
	if summary.BusiestHour != nil {
		t.Fatalf("expected nil busiest hour, got %d", *summary.BusiestHour)
	}
	if len(summary.RainHours) != 0 {
		t.Fatalf("expected no rain hours, got %v", summary.RainHours)
	}
}

func TestAggregateRainHours(t *testing.T) {
	rainy := func(hour int) model.Record {
		rec := carAt(hour)
		rec.Weather = "heavy rain"
		return rec
	}
	summary := Aggregate([]model.Record{rainy(8), rainy(8), rainy(14)})
	if !reflect.DeepEqual(summary.RainHours, []int{8, 14}) {
		t.Fatalf("expected rain hours [8 14], got %v", summary.RainHours)
	}
}

func TestAggregateIdempotent(t *testing.T) {
	records := []model.Record{carAt(9), carAt(10), carAt(10)}
	first := Aggregate(records)
	second := Aggregate(records)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical summaries:\n%+v\n%+v", first, second)
	}
}

func TestSummaryFromRunRebuildsBuckets(t *testing.T) {
	hour := 9
	run := model.RunAggregate{
		TotalVehicles: 3,
		BusiestHour:   &hour,
		RainHours:     []int{8},
	}
	counts := []model.HourCount{
		{Junction: "A", Hour: 9, Count: 2},
		{Junction: "B", Hour: 10, Count: 1},
	}
	summary := SummaryFromRun(run, counts)
	if summary.HourlyCounts[9] != 2 || summary.HourlyCounts[10] != 1 {
		t.Fatalf("unexpected hourly counts: %v", summary.HourlyCounts)
	}
	if buckets := summary.JunctionHourly["A"]; buckets[9] != 2 {
		t.Fatalf("unexpected junction buckets: %v", buckets)
	}
	if summary.BusiestHour == nil || *summary.BusiestHour != 9 {
		t.Fatalf("expected busiest hour 9, got %v", summary.BusiestHour)
	}
}
