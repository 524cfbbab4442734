// Package sample generates synthetic traffic datasets.
package sample

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"time"

	"trafficlens/internal/csvio"
)

// DefaultJunctions are used when none are configured.
var DefaultJunctions = []string{
	"Elm Avenue/Rabbit Road",
	"Hanley Highway/Westway",
}

// Row is one generated CSV row in the sensor export layout.
type Row struct {
	Junction     string
	VehicleType  string
	DirectionIn  string
	DirectionOut string
	Speed        int
	SpeedLimit   int
	Electric     bool
	Weather      string
	TimeOfDay    string
}

// Generator produces randomized traffic rows.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed for reproducible output.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

type weighted struct {
	value  string
	weight float64
}

var vehicleWeights = []weighted{
	{"car", 48},
	{"truck", 12},
	{"van", 10},
	{"bus", 6},
	{"bicycle", 9},
	{"motorcycle", 7},
	{"scooter", 5},
	{"carriage", 3},
}

var weatherWeights = []weighted{
	{"Clear", 50},
	{"Cloudy", 20},
	{"Light Rain", 14},
	{"Heavy Rain", 8},
	{"Fog", 8},
}

var directions = []string{"N", "E", "S", "W"}

var speedLimits = []int{30, 40, 50}

// hourWeights bias generated times toward the morning and evening rush.
var hourWeights = [24]float64{
	1, 1, 1, 1, 2, 3, 6, 10, 12, 8, 6, 5,
	6, 6, 5, 6, 8, 12, 10, 7, 5, 4, 2, 1,
}

// Generate produces count rows spread across the given junctions. Each
// junction gets a fixed speed limit for the whole dataset.
func (g *Generator) Generate(junctions []string, count int) []Row {
	if len(junctions) == 0 {
		junctions = DefaultJunctions
	}
	limits := make(map[string]int, len(junctions))
	for _, junction := range junctions {
		limits[junction] = speedLimits[g.rnd.Intn(len(speedLimits))]
	}

	rows := make([]Row, 0, count)
	for i := 0; i < count; i++ {
		junction := junctions[g.rnd.Intn(len(junctions))]
		limit := limits[junction]
		rows = append(rows, Row{
			Junction:     junction,
			VehicleType:  g.pickWeighted(vehicleWeights),
			DirectionIn:  directions[g.rnd.Intn(len(directions))],
			DirectionOut: directions[g.rnd.Intn(len(directions))],
			Speed:        g.speedAround(limit),
			SpeedLimit:   limit,
			Electric:     g.rnd.Float64() < 0.15,
			Weather:      g.pickWeighted(weatherWeights),
			TimeOfDay:    g.timeOfDay(),
		})
	}
	return rows
}

func (g *Generator) pickWeighted(items []weighted) string {
	total := 0.0
	for _, item := range items {
		total += item.weight
	}
	r := g.rnd.Float64() * total
	acc := 0.0
	for _, item := range items {
		acc += item.weight
		if r <= acc {
			return item.value
		}
	}
	return items[len(items)-1].value
}

// speedAround draws a speed near the limit with a tail of offenders.
func (g *Generator) speedAround(limit int) int {
	speed := limit + int(g.rnd.NormFloat64()*6) - 2
	if speed < 5 {
		speed = 5
	}
	return speed
}

func (g *Generator) timeOfDay() string {
	total := 0.0
	for _, w := range hourWeights {
		total += w
	}
	r := g.rnd.Float64() * total
	acc := 0.0
	hour := 0
	for h, w := range hourWeights {
		acc += w
		if r <= acc {
			hour = h
			break
		}
	}
	return fmt.Sprintf("%02d:%02d:%02d", hour, g.rnd.Intn(60), g.rnd.Intn(60))
}

// WriteCSV emits the canonical header followed by the rows.
func WriteCSV(w io.Writer, rows []Row) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvio.Header()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.Junction,
			row.VehicleType,
			row.DirectionIn,
			row.DirectionOut,
			strconv.Itoa(row.Speed),
			strconv.Itoa(row.SpeedLimit),
			strconv.FormatBool(row.Electric),
			row.Weather,
			row.TimeOfDay,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}
