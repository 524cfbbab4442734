package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Hour", "Count", "Rain"}
	rows := [][]string{
		{"09:00", "120", "*"},
		{"10:00", "7", ""},
	}
	rightAlign := map[int]bool{1: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Hour  Count Rain" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "09:00   120 *   " {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "10:00     7     " {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}
