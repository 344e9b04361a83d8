// Package snap resolves arbitrary coordinates to the road network: the
// nearest graph node for choosing a routing origin, and the nearest
// directed segment for classifying a clicked road.
package snap

import (
	"fmt"

	"github.com/Amsterdam/bereikbaarheid-backend/pkg/datastructure"
	"github.com/Amsterdam/bereikbaarheid-backend/pkg/geo"

	"github.com/dhconnelly/rtreego"
)

var tol = 0.0001

// nearestNodeCandidates is how many rtree neighbors feed the planar
// re-ranking. The rtree orders candidates in degree space, so the set
// must be wide enough that the planar winner, and every node tied with
// it, is still inside it.
const nearestNodeCandidates = 32

type nodeEntry struct {
	Location rtreego.Point
	Node     datastructure.RoadNode
}

func (n *nodeEntry) Bounds() rtreego.Rect {
	// a rectangle centered at the node with side lengths 2 * tol
	return n.Location.ToRect(tol)
}

// NodeLocator answers nearest-node queries over an rtree of all graph
// nodes. Built once at startup, read-only afterwards.
type NodeLocator struct {
	tree *rtreego.Rtree
}

func NewNodeLocator(nodes []datastructure.RoadNode) *NodeLocator {
	tree := rtreego.NewTree(2, 25, 50)
	for _, n := range nodes {
		tree.Insert(&nodeEntry{
			Location: rtreego.Point{n.Coord.Lat, n.Coord.Lon},
			Node:     n,
		})
	}
	return &NodeLocator{tree: tree}
}

// NearestNode returns the graph node closest to the coordinate in the
// RD plane. Candidates come from the rtree, the final ordering from the
// planar distance; equally distant nodes resolve to the smallest id so
// repeated queries snap identically.
func (l *NodeLocator) NearestNode(lat, lon float64) (datastructure.RoadNode, error) {
	point := rtreego.Point{lat, lon}
	candidates := l.tree.NearestNeighbors(nearestNodeCandidates, point)
	if len(candidates) == 0 {
		return datastructure.RoadNode{}, fmt.Errorf("no road nodes near %f,%f", lat, lon)
	}

	target := geo.WGS84ToRD(geo.NewLocation(lat, lon))
	best := datastructure.RoadNode{}
	bestDist := -1.0
	for _, c := range candidates {
		entry, ok := c.(*nodeEntry)
		if !ok || entry == nil {
			continue
		}
		d := geo.PlanarDistance(target, geo.WGS84ToRD(geo.NewLocation(entry.Node.Coord.Lat, entry.Node.Coord.Lon)))
		switch {
		case bestDist < 0 || d < bestDist:
			best = entry.Node
			bestDist = d
		case d == bestDist && entry.Node.ID < best.ID:
			best = entry.Node
		}
	}
	if bestDist < 0 {
		return datastructure.RoadNode{}, fmt.Errorf("no road nodes near %f,%f", lat, lon)
	}
	return best, nil
}

// SegmentSource produces candidate segments around a coordinate,
// backed by the h3-indexed kv store.
type SegmentSource interface {
	NearbySegments(lat, lon float64) ([]datastructure.DirectedSegment, error)
}

// SegmentLocator snaps a coordinate to the nearest directed segment.
type SegmentLocator struct {
	source SegmentSource
}

func NewSegmentLocator(source SegmentSource) *SegmentLocator {
	return &SegmentLocator{source: source}
}

// NearestSegment returns the candidate segment whose polyline passes
// closest to the coordinate, with the planar distance in meters.
// Equally distant segments resolve to the smallest road element id.
func (l *SegmentLocator) NearestSegment(lat, lon float64) (datastructure.DirectedSegment, float64, error) {
	candidates, err := l.source.NearbySegments(lat, lon)
	if err != nil {
		return datastructure.DirectedSegment{}, 0, err
	}

	loc := geo.NewLocation(lat, lon)
	best := datastructure.DirectedSegment{}
	bestDist := -1.0
	for _, s := range candidates {
		line, err := geo.DecodePolyline(s.Polyline)
		if err != nil || len(line) == 0 {
			continue
		}
		d := geo.DistanceToPolyline(loc, line)
		switch {
		case bestDist < 0 || d < bestDist:
			best = s
			bestDist = d
		case d == bestDist && s.RoadElement < best.RoadElement:
			best = s
		}
	}
	if bestDist < 0 {
		return datastructure.DirectedSegment{}, 0, fmt.Errorf("no decodable segments near %f,%f", lat, lon)
	}
	return best, bestDist, nil
}
