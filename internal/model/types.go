// Package model defines shared data structures.
package model

import (
	"strings"
	"time"
)

// VehicleClass identifies the category of a counted vehicle.
type VehicleClass string

// Known vehicle classes. Unrecognized CSV values map to ClassOther.
const (
	ClassCar        VehicleClass = "car"
	ClassTruck      VehicleClass = "truck"
	ClassBus        VehicleClass = "bus"
	ClassVan        VehicleClass = "van"
	ClassBicycle    VehicleClass = "bicycle"
	ClassScooter    VehicleClass = "scooter"
	ClassMotorcycle VehicleClass = "motorcycle"
	ClassOther      VehicleClass = "other"
)

// ParseVehicleClass normalizes a raw CSV value to a VehicleClass.
func ParseVehicleClass(raw string) VehicleClass {
	switch VehicleClass(strings.ToLower(strings.TrimSpace(raw))) {
	case ClassCar:
		return ClassCar
	case ClassTruck:
		return ClassTruck
	case ClassBus:
		return ClassBus
	case ClassVan:
		return ClassVan
	case ClassBicycle:
		return ClassBicycle
	case ClassScooter:
		return ClassScooter
	case ClassMotorcycle:
		return ClassMotorcycle
	default:
		return ClassOther
	}
}

// TwoWheeled reports whether the class counts as a two-wheeled vehicle.
func (c VehicleClass) TwoWheeled() bool {
	switch c {
	case ClassBicycle, ClassScooter, ClassMotorcycle:
		return true
	default:
		return false
	}
}

// Record is one validated traffic observation.
type Record struct {
	Junction     string
	Class        VehicleClass
	DirectionIn  string
	DirectionOut string
	Speed        int
	SpeedLimit   int
	Electric     bool
	Weather      string
	Hour         int
}

// Summary aggregates all valid records of one analysis run.
type Summary struct {
	TotalVehicles   int
	TotalTrucks     int
	TotalElectric   int
	TotalTwoWheeled int
	NoTurn          int
	OverLimit       int
	BusiestHour     *int
	RainHours       []int
	HourlyCounts    [24]int
	JunctionHourly  map[string][24]int
	Skipped         int
}

// Run captures a completed analysis run for persistence.
type Run struct {
	AnalyzedAt time.Time
	SourcePath string
	Label      string
	Summary    Summary
}

// RunAggregate summarizes a stored run for listing and reporting.
type RunAggregate struct {
	RunID           int64
	AnalyzedAt      time.Time
	SourcePath      string
	Label           string
	TotalVehicles   int
	TotalTrucks     int
	TotalElectric   int
	TotalTwoWheeled int
	NoTurn          int
	OverLimit       int
	BusiestHour     *int
	RainHours       []int
	Skipped         int
}

// HourCount is one persisted histogram bucket of a stored run.
type HourCount struct {
	Junction string
	Hour     int
	Count    int
}

// HistoryFilter filters stored runs.
type HistoryFilter struct {
	Label string
	Since *time.Time
	Last  int
}
