// Package csvio loads traffic records from sensor CSV files.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"trafficlens/internal/model"
)

// Required columns, in the sensor export's canonical spelling. Headers are
// matched after normalization, so variants like "vehicle_speed" also resolve.
var requiredColumns = []string{
	"JunctionName",
	"vehicleType",
	"travel_Direction_in",
	"travel_Direction_out",
	"VehicleSpeed",
	"JunctionSpeedLimit",
	"elctricHybrid",
	"Weather_Conditions",
	"timeOfDay",
}

// Header returns the canonical CSV header row.
func Header() []string {
	return append([]string(nil), requiredColumns...)
}

// Load reads a traffic CSV from r and returns the valid records in file order
// plus the number of skipped rows. Malformed rows are skipped, never fatal.
// An empty input yields an empty slice and no error.
func Load(r io.Reader) ([]model.Record, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("failed to read header: %w", err)
	}
	cols, err := mapColumns(headers)
	if err != nil {
		return nil, 0, err
	}

	var records []model.Record
	skipped := 0
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				skipped++
				continue
			}
			return nil, 0, fmt.Errorf("failed to read row: %w", err)
		}
		rec, ok := parseRow(row, cols)
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	return records, skipped, nil
}

// LoadFile opens path and loads its records.
func LoadFile(path string) ([]model.Record, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only data file.
			_ = cerr
		}
	}()
	return Load(file)
}

// mapColumns resolves required column names to header indexes. The match is
// tolerant: case, underscores, and spaces in headers are ignored.
func mapColumns(headers []string) (map[string]int, error) {
	normalized := make(map[string]int, len(headers))
	for i, h := range headers {
		key := normalizeHeader(h)
		if _, ok := normalized[key]; !ok {
			normalized[key] = i
		}
	}
	cols := make(map[string]int, len(requiredColumns))
	var missing []string
	for _, name := range requiredColumns {
		idx, ok := normalized[normalizeHeader(name)]
		if !ok {
			missing = append(missing, name)
			continue
		}
		cols[name] = idx
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, "_", "")
	return strings.ReplaceAll(h, " ", "")
}

func parseRow(row []string, cols map[string]int) (model.Record, bool) {
	field := func(name string) (string, bool) {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return "", false
		}
		return strings.TrimSpace(row[idx]), true
	}

	junction, ok := field("JunctionName")
	if !ok || junction == "" {
		return model.Record{}, false
	}
	class, ok := field("vehicleType")
	if !ok || class == "" {
		return model.Record{}, false
	}
	dirIn, ok := field("travel_Direction_in")
	if !ok {
		return model.Record{}, false
	}
	dirOut, ok := field("travel_Direction_out")
	if !ok {
		return model.Record{}, false
	}
	speedRaw, ok := field("VehicleSpeed")
	if !ok {
		return model.Record{}, false
	}
	limitRaw, ok := field("JunctionSpeedLimit")
	if !ok {
		return model.Record{}, false
	}
	electricRaw, ok := field("elctricHybrid")
	if !ok {
		return model.Record{}, false
	}
	weather, ok := field("Weather_Conditions")
	if !ok {
		return model.Record{}, false
	}
	timeRaw, ok := field("timeOfDay")
	if !ok {
		return model.Record{}, false
	}

	speed, err := strconv.Atoi(speedRaw)
	if err != nil || speed < 0 {
		return model.Record{}, false
	}
	limit, err := strconv.Atoi(limitRaw)
	if err != nil || limit < 0 {
		return model.Record{}, false
	}
	electric, err := strconv.ParseBool(strings.ToLower(electricRaw))
	if err != nil {
		return model.Record{}, false
	}
	hour, ok := parseHour(timeRaw)
	if !ok {
		return model.Record{}, false
	}

	return model.Record{
		Junction:     junction,
		Class:        model.ParseVehicleClass(class),
		DirectionIn:  strings.ToLower(dirIn),
		DirectionOut: strings.ToLower(dirOut),
		Speed:        speed,
		SpeedLimit:   limit,
		Electric:     electric,
		Weather:      strings.ToLower(weather),
		Hour:         hour,
	}, true
}

// parseHour extracts the hour from a HH:MM or HH:MM:SS time of day.
func parseHour(raw string) (int, bool) {
	parts := strings.Split(raw, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	for _, part := range parts[1:] {
		v, err := strconv.Atoi(part)
		if err != nil || v < 0 || v > 59 {
			return 0, false
		}
	}
	return hour, true
}
