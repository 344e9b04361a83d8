package datastructure

import "errors"

// ErrRoadElementNotFound is returned when a road element id does not
// exist in the traffic model.
var ErrRoadElementNotFound = errors.New("road element not found")

// TrafficCount is one yearly measurement on a road element
// (bd_verkeerstellingen).
type TrafficCount struct {
	Direction1         string
	Direction2         string
	KnownInterruptions string
	SlowTraffic        bool
	FastTraffic        bool
	LinkToFile         string
	LocationName       string
	MeasuresBetween    string
	Method             string
	Remarks            string
	TrafficType        string
	Year               int
}

// RoadElementDetail is the undirected view of one road element with its
// measurements and current obstructions.
type RoadElementDetail struct {
	ID                   int64
	LengthInM            int
	MaxSpeedKmH          int
	StreetName           string
	HeavyGoodsZoneDetail string // zone_zwaar_verkeer_detail
	Geometry             []Coordinate
	TrafficCounts        []TrafficCount
	Obstructions         []Obstruction
}

// LoadUnloadWindow is one load/unload window on a road section.
type LoadUnloadWindow struct {
	Category string
	Days     []Weekday
	From     ClockTime
	To       ClockTime
}

// LoadUnloadSection groups the load/unload windows of one road section.
type LoadUnloadSection struct {
	RoadElement int64
	StreetName  string
	Geometry    []Coordinate
	Windows     []LoadUnloadWindow
}
