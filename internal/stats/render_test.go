package stats

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"trafficlens/internal/model"
)

func TestRenderSummary(t *testing.T) {
	hour := 9
	summary := model.Summary{
		TotalVehicles:   120,
		TotalTrucks:     14,
		TotalElectric:   9,
		TotalTwoWheeled: 22,
		NoTurn:          31,
		OverLimit:       7,
		BusiestHour:     &hour,
		RainHours:       []int{8, 14},
		Skipped:         2,
	}
	var buf bytes.Buffer
	if err := RenderSummary(&buf, summary, "15062024"); err != nil {
		t.Fatalf("RenderSummary failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Summary of Results: 15062024",
		"Total Vehicles: 120",
		"Total Trucks: 14",
		"Total Electric Vehicles: 9",
		"Total Two-Wheeled Vehicles: 22",
		"Vehicles Passing Without Turning: 31",
		"Vehicles Over Speed Limit: 7",
		"Busiest Hour: between 09:00 and 10:00",
		"Hours of Rain: 2",
		"Rain Hours: 08:00, 14:00",
		"Rows Skipped: 2",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, model.Summary{}, ""); err != nil {
		t.Fatalf("RenderSummary failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Busiest Hour: n/a") {
		t.Fatalf("expected n/a busiest hour:\n%s", out)
	}
	if !strings.Contains(out, "Rain Hours: none") {
		t.Fatalf("expected no rain hours:\n%s", out)
	}
}

func TestRenderHourTable(t *testing.T) {
	summary := Aggregate([]model.Record{carAt(9), carAt(9), carAt(21)})
	summary.RainHours = []int{21}
	var buf bytes.Buffer
	if err := RenderHourTable(&buf, summary); err != nil {
		t.Fatalf("RenderHourTable failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Hourly Traffic") {
		t.Fatalf("expected table title:\n%s", out)
	}
	if !strings.Contains(out, "Elm Avenue/Rabbit Road") {
		t.Fatalf("expected junction column:\n%s", out)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// Title, header, 24 hour rows.
	if len(lines) < 26 {
		t.Fatalf("expected at least 26 lines, got %d", len(lines))
	}
}

func TestAppendResultsAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.txt")
	summary := Aggregate([]model.Record{carAt(9)})
	if err := AppendResults(path, summary, "a"); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := AppendResults(path, summary, "b"); err != nil {
		t.Fatalf("second append: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read results: %v", err)
	}
	if strings.Count(string(data), "Summary of Results") != 2 {
		t.Fatalf("expected two summary blocks:\n%s", data)
	}
}
