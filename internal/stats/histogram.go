// Package stats contains aggregation and reporting for traffic runs.
package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"

	"trafficlens/internal/model"
)

// HistogramSeries is one junction's hourly buckets.
type HistogramSeries struct {
	Name    string
	Buckets [24]int
}

const (
	defaultHistHeight   = 10
	minGroupWidth       = 2
	hoursPerDay         = 24
	axisSeparator       = " │ "
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
)

// partialBlocks holds vertical eighth blocks for the topmost bar cell.
var partialBlocks = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇'}

// barFills distinguishes series when color is unavailable.
var barFills = []rune{'█', '▓', '▒', '░'}

type ansiColor struct {
	name string
	code string
}

var colorPalette = []ansiColor{
	{name: "cyan", code: "\x1b[36m"},
	{name: "magenta", code: "\x1b[35m"},
	{name: "yellow", code: "\x1b[33m"},
	{name: "green", code: "\x1b[32m"},
	{name: "blue", code: "\x1b[34m"},
}

// HistogramFromSummary builds one series per junction, sorted by name.
func HistogramFromSummary(summary model.Summary) []HistogramSeries {
	junctions := SortedJunctions(summary.JunctionHourly)
	if len(junctions) == 0 {
		if summary.TotalVehicles == 0 {
			return nil
		}
		return []HistogramSeries{{Name: "All", Buckets: summary.HourlyCounts}}
	}
	series := make([]HistogramSeries, 0, len(junctions))
	for _, name := range junctions {
		series = append(series, HistogramSeries{Name: name, Buckets: summary.JunctionHourly[name]})
	}
	return series
}

// RenderHistogram draws a grouped hour-by-hour bar chart. A non-positive
// width autosizes to the terminal; a non-positive height uses the default.
func RenderHistogram(w io.Writer, title string, series []HistogramSeries, width, height int, forceColor bool) error {
	maxCount := 0
	for _, s := range series {
		for _, count := range s.Buckets {
			if count > maxCount {
				maxCount = count
			}
		}
	}
	if len(series) == 0 || maxCount == 0 {
		_, err := fmt.Fprintln(w, "No records found.")
		return err
	}

	if height <= 0 {
		height = defaultHistHeight
	}
	if width <= 0 {
		width = terminalWidth()
	}

	axisLabels := makeAxisLabels(maxCount, height)
	axisWidth := 0
	for _, label := range axisLabels {
		if len(label) > axisWidth {
			axisWidth = len(label)
		}
	}
	barWidth, groupWidth := barLayout(width, axisWidth, len(series))
	useColor := shouldUseColor(w, forceColor)

	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	for y := height; y >= 1; y-- {
		var row strings.Builder
		row.WriteString(fmt.Sprintf("%*s%s", axisWidth, axisLabels[y-1], axisSeparator))
		for hour := 0; hour < hoursPerDay; hour++ {
			for si, s := range series {
				cell := barCell(s.Buckets[hour], maxCount, height, y, si)
				if useColor && cell != ' ' {
					row.WriteString(colorPalette[si%len(colorPalette)].code)
					row.WriteString(strings.Repeat(string(cell), barWidth))
					row.WriteString(colorReset)
				} else {
					row.WriteString(strings.Repeat(string(cell), barWidth))
				}
			}
			row.WriteByte(' ')
		}
		if _, err := fmt.Fprintln(w, row.String()); err != nil {
			return err
		}
	}

	rule := strings.Repeat("─", groupWidth*hoursPerDay)
	if _, err := fmt.Fprintf(w, "%*s%s%s\n", axisWidth, "", axisSeparator, rule); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%*s%s%s\n", axisWidth, "", axisSeparator, hourAxis(groupWidth)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, renderLegend(series, useColor)); err != nil {
		return err
	}
	return nil
}

// barCell selects the rune for one bar cell in row y (1 = bottom).
func barCell(count, maxCount, height, y, seriesIdx int) rune {
	level := float64(count) / float64(maxCount) * float64(height)
	fill := barFills[seriesIdx%len(barFills)]
	if level >= float64(y) {
		return fill
	}
	if level <= float64(y-1) {
		return ' '
	}
	if fill != '█' {
		// Coarse fills have no partial blocks; round the top cell.
		if level-float64(y-1) >= 0.5 {
			return fill
		}
		return ' '
	}
	eighths := int(math.Round((level - float64(y-1)) * 8))
	if eighths <= 0 {
		return ' '
	}
	if eighths >= 8 {
		return fill
	}
	return partialBlocks[eighths]
}

// barLayout fits the bar and group widths into the total width.
func barLayout(width, axisWidth, seriesCount int) (barWidth, groupWidth int) {
	usable := width - axisWidth - len([]rune(axisSeparator))
	perGroup := usable / hoursPerDay
	if perGroup < minGroupWidth {
		perGroup = minGroupWidth
	}
	barWidth = (perGroup - 1) / seriesCount
	if barWidth < 1 {
		barWidth = 1
	}
	return barWidth, barWidth*seriesCount + 1
}

// hourAxis renders the hour labels under the bar groups.
func hourAxis(groupWidth int) string {
	var b strings.Builder
	if groupWidth >= 3 {
		for hour := 0; hour < hoursPerDay; hour++ {
			b.WriteString(padRight(fmt.Sprintf("%02d", hour), groupWidth))
		}
		return strings.TrimRight(b.String(), " ")
	}
	// Narrow groups: label every other hour across two group widths.
	for hour := 0; hour < hoursPerDay; hour += 2 {
		b.WriteString(padRight(fmt.Sprintf("%02d", hour), groupWidth*2))
	}
	return strings.TrimRight(b.String(), " ")
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func makeAxisLabels(maxCount, height int) []string {
	labels := make([]string, height)
	if height <= 0 {
		return labels
	}
	labels[0] = "0"
	labels[height-1] = fmt.Sprintf("%d", maxCount)
	if height > 2 {
		labels[height/2] = fmt.Sprintf("%d", (maxCount+1)/2)
	}
	return labels
}

func renderLegend(series []HistogramSeries, useColor bool) string {
	parts := make([]string, 0, len(series))
	for i, s := range series {
		fill := barFills[i%len(barFills)]
		label := fmt.Sprintf("%c %s", fill, s.Name)
		if useColor {
			label = colorPalette[i%len(colorPalette)].code + label + colorReset
		}
		parts = append(parts, label)
	}
	return "Legend: " + strings.Join(parts, "  ")
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
