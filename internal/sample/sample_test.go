package sample

import (
	"bytes"
	"reflect"
	"testing"

	"trafficlens/internal/csvio"
)

func TestGenerateSeededDeterminism(t *testing.T) {
	first := NewSeeded(42).Generate(nil, 50)
	second := NewSeeded(42).Generate(nil, 50)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same seed produced different rows")
	}
}

func TestGenerateRowShape(t *testing.T) {
	rows := NewSeeded(7).Generate(nil, 100)
	if len(rows) != 100 {
		t.Fatalf("expected 100 rows, got %d", len(rows))
	}
	limits := make(map[string]int)
	for _, row := range rows {
		if row.Junction != DefaultJunctions[0] && row.Junction != DefaultJunctions[1] {
			t.Fatalf("unexpected junction %q", row.Junction)
		}
		if row.Speed < 5 {
			t.Fatalf("speed below floor: %d", row.Speed)
		}
		if row.SpeedLimit != 30 && row.SpeedLimit != 40 && row.SpeedLimit != 50 {
			t.Fatalf("unexpected speed limit %d", row.SpeedLimit)
		}
		if prev, ok := limits[row.Junction]; ok && prev != row.SpeedLimit {
			t.Fatalf("junction %q changed speed limit: %d then %d", row.Junction, prev, row.SpeedLimit)
		}
		limits[row.Junction] = row.SpeedLimit
		if len(row.TimeOfDay) != 8 {
			t.Fatalf("unexpected time of day %q", row.TimeOfDay)
		}
	}
}

func TestGenerateCustomJunctions(t *testing.T) {
	junctions := []string{"High Street/Mill Lane"}
	rows := NewSeeded(1).Generate(junctions, 20)
	for _, row := range rows {
		if row.Junction != junctions[0] {
			t.Fatalf("unexpected junction %q", row.Junction)
		}
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	rows := NewSeeded(99).Generate(nil, 100)
	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	records, skipped, err := csvio.Load(&buf)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if skipped != 0 {
		t.Fatalf("expected no skipped rows, got %d", skipped)
	}
	if len(records) != 100 {
		t.Fatalf("expected 100 records, got %d", len(records))
	}
}
