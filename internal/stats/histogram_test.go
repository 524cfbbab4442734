package stats

import (
	"bytes"
	"strings"
	"testing"

	"trafficlens/internal/model"
)

func TestRenderHistogram(t *testing.T) {
	var elm, hanley [24]int
	elm[8] = 12
	elm[9] = 20
	hanley[17] = 15
	series := []HistogramSeries{
		{Name: "Elm Avenue/Rabbit Road", Buckets: elm},
		{Name: "Hanley Highway/Westway", Buckets: hanley},
	}
	var buf bytes.Buffer
	if err := RenderHistogram(&buf, "Traffic Volume by Hour", series, 120, 8, false); err != nil {
		t.Fatalf("RenderHistogram failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Traffic Volume by Hour") {
		t.Fatalf("expected title in output:\n%s", out)
	}
	if !strings.Contains(out, "Legend:") {
		t.Fatalf("expected legend in output:\n%s", out)
	}
	if !strings.Contains(out, "20") {
		t.Fatalf("expected max count axis label:\n%s", out)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// Title, 8 bar rows, rule, hour axis, legend.
	if len(lines) != 12 {
		t.Fatalf("expected 12 lines, got %d:\n%s", len(lines), out)
	}
}

func TestRenderHistogramNoData(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderHistogram(&buf, "Traffic Volume by Hour", nil, 80, 8, false); err != nil {
		t.Fatalf("RenderHistogram failed: %v", err)
	}
	if !strings.Contains(buf.String(), "No records found.") {
		t.Fatalf("expected no-data message, got:\n%s", buf.String())
	}
}

func TestHistogramFromSummary(t *testing.T) {
	summary := Aggregate([]model.Record{carAt(9), carAt(10)})
	series := HistogramFromSummary(summary)
	if len(series) != 1 {
		t.Fatalf("expected 1 series, got %d", len(series))
	}
	if series[0].Name != "Elm Avenue/Rabbit Road" {
		t.Fatalf("unexpected series name: %q", series[0].Name)
	}
	if series[0].Buckets[9] != 1 || series[0].Buckets[10] != 1 {
		t.Fatalf("unexpected buckets: %v", series[0].Buckets)
	}
}

func TestHistogramFromSummaryEmpty(t *testing.T) {
	if series := HistogramFromSummary(Aggregate(nil)); series != nil {
		t.Fatalf("expected nil series for empty summary, got %v", series)
	}
}
