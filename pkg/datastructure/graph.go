package datastructure

// Coordinate is a WGS84 lat/lon pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// RoadEdge is one directed edge of the traffic model network
// (out_vma_directed). Every physical road element appears twice, as +id
// and -id, one entry per driving direction.
type RoadEdge struct {
	ID     int64 // signed, abs(ID) = road element id, sign = direction
	Source int64
	Target int64

	// Cost is the base travel cost in hours. Zero or negative means the
	// element is not costed (outside the managed network).
	Cost float64

	Geometry []Coordinate

	// CarNetwork is false for elements cars are not supposed to use
	// (pedestrian area, cycle path).
	CarNetwork bool

	// RVV prohibition flags.
	ProhibitedAllVehicles bool // C01
	ProhibitedCompanyCars bool // C07, company cars over 3500 kg
	ProhibitedBuses       bool // C07A
	ProhibitedTrailers    bool // C10

	// Dimension limits from C17..C21 signage. Zero means no limit.
	MaxLength      float64 // C17, meters
	MaxWidth       float64 // C18, meters
	MaxHeight      float64 // C19, meters
	MaxAxleWeight  float64 // C20, kilograms
	MaxTotalWeight float64 // C21, kilograms

	// Zone membership.
	HeavyGoodsZone  bool // zone_7_5
	LowEmissionZone bool // milieuzone
	InAmsterdam     bool // binnen_amsterdam
}

// RoadElementID returns the undirected road element id shared by both
// directional copies of the edge.
func (e RoadEdge) RoadElementID() int64 {
	if e.ID < 0 {
		return -e.ID
	}
	return e.ID
}

// HasUsableCost reports whether the edge carries a usable base cost.
// Elements without one are outside the managed network and are never
// traversable, by any vehicle.
func (e RoadEdge) HasUsableCost() bool {
	return e.Cost > 0
}

// RoadNode is a vertex of the traffic model network.
type RoadNode struct {
	ID    int64
	Coord Coordinate
}
