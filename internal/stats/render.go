// Package stats contains aggregation and reporting for traffic runs.
package stats

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"trafficlens/internal/model"
)

const ruleWidth = 50

// FormatHour renders an hour bucket as a wall-clock label.
func FormatHour(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}

// FormatHourRange renders an hour bucket as its covered interval.
func FormatHourRange(hour int) string {
	next := (hour + 1) % 24
	return fmt.Sprintf("between %02d:00 and %02d:00", hour, next)
}

// RenderSummary prints the human-readable summary block for one run.
func RenderSummary(w io.Writer, summary model.Summary, label string) error {
	title := "Summary of Results"
	if label != "" {
		title = fmt.Sprintf("Summary of Results: %s", label)
	}
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("-", ruleWidth)); err != nil {
		return err
	}
	lines := []struct {
		name  string
		value string
	}{
		{"Total Vehicles", fmt.Sprintf("%d", summary.TotalVehicles)},
		{"Total Trucks", fmt.Sprintf("%d", summary.TotalTrucks)},
		{"Total Electric Vehicles", fmt.Sprintf("%d", summary.TotalElectric)},
		{"Total Two-Wheeled Vehicles", fmt.Sprintf("%d", summary.TotalTwoWheeled)},
		{"Vehicles Passing Without Turning", fmt.Sprintf("%d", summary.NoTurn)},
		{"Vehicles Over Speed Limit", fmt.Sprintf("%d", summary.OverLimit)},
		{"Busiest Hour", formatBusiestHour(summary.BusiestHour)},
		{"Hours of Rain", fmt.Sprintf("%d", len(summary.RainHours))},
		{"Rain Hours", formatRainHours(summary.RainHours)},
		{"Rows Skipped", fmt.Sprintf("%d", summary.Skipped)},
	}
	for _, line := range lines {
		if _, err := fmt.Fprintf(w, "%s: %s\n", line.name, line.value); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("-", ruleWidth)); err != nil {
		return err
	}
	return nil
}

func formatBusiestHour(hour *int) string {
	if hour == nil {
		return "n/a"
	}
	return FormatHourRange(*hour)
}

func formatRainHours(hours []int) string {
	if len(hours) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(hours))
	for _, h := range hours {
		parts = append(parts, FormatHour(h))
	}
	return strings.Join(parts, ", ")
}

// AppendResults appends the summary block to the results file, creating it if
// needed. The file is never truncated.
func AppendResults(path string, summary model.Summary, label string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open results file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close after write error.
			_ = cerr
		}
	}()
	if _, err := fmt.Fprintln(file, ""); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	if err := RenderSummary(file, summary, label); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close results file: %w", err)
	}
	return nil
}

// RenderHourTable prints per-hour counts with one column per junction.
func RenderHourTable(w io.Writer, summary model.Summary) error {
	if summary.TotalVehicles == 0 {
		_, err := fmt.Fprintln(w, "No records found.")
		return err
	}
	junctions := SortedJunctions(summary.JunctionHourly)
	headers := append([]string{"Hour"}, junctions...)
	headers = append(headers, "Total", "Rain")

	rainSet := make(map[int]struct{}, len(summary.RainHours))
	for _, h := range summary.RainHours {
		rainSet[h] = struct{}{}
	}

	rows := make([][]string, 0, 24)
	for hour := 0; hour < 24; hour++ {
		row := make([]string, 0, len(headers))
		row = append(row, FormatHour(hour))
		for _, junction := range junctions {
			buckets := summary.JunctionHourly[junction]
			row = append(row, fmt.Sprintf("%d", buckets[hour]))
		}
		row = append(row, fmt.Sprintf("%d", summary.HourlyCounts[hour]))
		marker := ""
		if _, ok := rainSet[hour]; ok {
			marker = "*"
		}
		row = append(row, marker)
		rows = append(rows, row)
	}

	rightAlign := map[int]bool{}
	for i := 1; i < len(headers)-1; i++ {
		rightAlign[i] = true
	}

	if _, err := fmt.Fprintln(w, "Hourly Traffic"); err != nil {
		return err
	}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// SortedJunctions returns the junction names in stable alphabetical order.
func SortedJunctions(hourly map[string][24]int) []string {
	junctions := make([]string, 0, len(hourly))
	for name := range hourly {
		junctions = append(junctions, name)
	}
	sort.Strings(junctions)
	return junctions
}
