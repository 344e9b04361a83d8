package datastructure

// DirectedSegment is the compact representation of a directed edge kept
// in the h3-indexed kv store for snapping queries. Geometry travels as
// an encoded polyline to keep the stored values small.
type DirectedSegment struct {
	EdgeID      int64
	RoadElement int64
	Center      Coordinate
	Polyline    string
	SourceNode  int64
	TargetNode  int64
	CarNetwork  bool
	Costed      bool
}

// NewDirectedSegment derives the kv representation of an edge. The
// center point decides which h3 cell the segment is indexed under.
func NewDirectedSegment(e RoadEdge, polyline string) DirectedSegment {
	center := Coordinate{}
	if n := len(e.Geometry); n > 0 {
		center = e.Geometry[n/2]
	}
	return DirectedSegment{
		EdgeID:      e.ID,
		RoadElement: e.RoadElementID(),
		Center:      center,
		Polyline:    polyline,
		SourceNode:  e.Source,
		TargetNode:  e.Target,
		CarNetwork:  e.CarNetwork,
		Costed:      e.HasUsableCost(),
	}
}
