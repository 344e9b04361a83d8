// Package service implements the accessibility use cases on top of the
// network stores, the snapping locators and the routing engine.
package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/Amsterdam/bereikbaarheid-backend/pkg/accessibility"
	"github.com/Amsterdam/bereikbaarheid-backend/pkg/datastructure"
	"github.com/Amsterdam/bereikbaarheid-backend/pkg/geo"
	"github.com/Amsterdam/bereikbaarheid-backend/pkg/routing"
	"github.com/Amsterdam/bereikbaarheid-backend/pkg/server"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// Routing source nodes of the managed network. Each evaluation kind
// historically routes from its own fixed vertex on the main road
// network around the city.
const (
	ClassifySourceNode    = 902205
	ObstructionSourceNode = 683623
	PermitSourceNode      = 461470
)

// The service only answers queries inside the Amsterdam bounding box.
const (
	bboxLatMin = 52.2
	bboxLatMax = 52.47
	bboxLonMin = 4.7
	bboxLonMax = 5.1
)

type NetworkStore interface {
	Edges(ctx context.Context) ([]datastructure.RoadEdge, error)
	Nodes(ctx context.Context) ([]datastructure.RoadNode, error)
	StreetNames(ctx context.Context) (map[int64]string, error)
}

type RestrictionStore interface {
	Bollards(ctx context.Context) ([]datastructure.Bollard, error)
	TimeWindows(ctx context.Context) ([]datastructure.TimeWindowRestriction, error)
	Obstructions(ctx context.Context, from, to time.Time) ([]datastructure.Obstruction, error)
}

type SignStore interface {
	TrafficSigns(ctx context.Context, categories []string) ([]datastructure.TrafficSign, error)
}

type ElementStore interface {
	RoadElement(ctx context.Context, id int64) (datastructure.RoadElementDetail, error)
	LoadUnloadSections(ctx context.Context) ([]datastructure.LoadUnloadSection, error)
}

type NodeLocator interface {
	NearestNode(lat, lon float64) (datastructure.RoadNode, error)
}

type SegmentLocator interface {
	NearestSegment(lat, lon float64) (datastructure.DirectedSegment, float64, error)
}

type AccessibilityService struct {
	network      NetworkStore
	restrictions RestrictionStore
	signs        SignStore
	elements     ElementStore
	nodes        NodeLocator
	segments     SegmentLocator
	policy       accessibility.PenaltyPolicy
	log          *logrus.Logger
}

func NewAccessibilityService(
	network NetworkStore,
	restrictions RestrictionStore,
	signs SignStore,
	elements ElementStore,
	nodes NodeLocator,
	segments SegmentLocator,
	log *logrus.Logger,
) *AccessibilityService {
	return &AccessibilityService{
		network:      network,
		restrictions: restrictions,
		signs:        signs,
		elements:     elements,
		nodes:        nodes,
		segments:     segments,
		policy:       accessibility.PolicyConservative,
		log:          log,
	}
}

// ClassifiedRoad is one road element with its accessibility outcome
// code for the requested vehicle and permits.
type ClassifiedRoad struct {
	ID         int64
	StatusCode int
	Geometry   []datastructure.Coordinate
}

// NetworkClassification pairs the per-element outcome codes with the
// restriction-adjusted cost graph they were aggregated over.
type NetworkClassification struct {
	Roads []ClassifiedRoad
	Costs *routing.CostGraph
}

// IsochroneRoad is one road element with the travel time from an
// origin, in seconds.
type IsochroneRoad struct {
	ID               int64
	TotalCostSeconds int
	Geometry         []datastructure.Coordinate
}

// ObstructionStatus is one road element that is closed or cut off by
// current obstructions.
type ObstructionStatus struct {
	RoadElement  int64
	StreetName   string
	StatusCode   int
	Geometry     []datastructure.Coordinate
	Obstructions []datastructure.Obstruction
}

// PermitAdvice sums up the permit situation for the road element
// nearest to a destination coordinate.
type PermitAdvice struct {
	RoadElement            int64
	LowEmissionZone        bool
	HeavyGoodsVehicleZone  bool
	RVVPermitNeeded        bool
	InAmsterdam            bool
	TimeWindowDays         []datastructure.Weekday
	WideRoad               bool
	DistanceToDestinationM float64
	ClosestPoint           datastructure.Coordinate
}

func validateBbox(lat, lon float64) error {
	if lat < bboxLatMin || lat > bboxLatMax || lon < bboxLonMin || lon > bboxLonMax {
		return server.WrapErrorf(nil, server.ErrBadParamInput,
			"location %f,%f outside the service area", lat, lon)
	}
	return nil
}

func (uc *AccessibilityService) mapRoutingErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return server.WrapErrorf(err, server.ErrDeadlineExceeded, "routing timed out")
	}
	return server.WrapErrorf(err, server.ErrInternalServerError, "routing failed")
}

func (uc *AccessibilityService) loadNetwork(ctx context.Context) ([]datastructure.RoadEdge, error) {
	edges, err := uc.network.Edges(ctx)
	if err != nil {
		return nil, server.WrapErrorf(err, server.ErrStoreUnavailable, "loading road network")
	}
	return edges, nil
}

func (uc *AccessibilityService) loadRestrictions(ctx context.Context) ([]datastructure.Bollard, []datastructure.TimeWindowRestriction, error) {
	bollards, err := uc.restrictions.Bollards(ctx)
	if err != nil {
		return nil, nil, server.WrapErrorf(err, server.ErrStoreUnavailable, "loading bollards")
	}
	windows, err := uc.restrictions.TimeWindows(ctx)
	if err != nil {
		return nil, nil, server.WrapErrorf(err, server.ErrStoreUnavailable, "loading time windows")
	}
	return bollards, windows, nil
}

// eligibleCostGraph builds the routing graph over the edges the vehicle
// may traverse, weighting each arc with costOf. Edges outside the
// costed network never enter the graph.
func eligibleCostGraph(edges []datastructure.RoadEdge, p datastructure.VehicleProfile, costOf func(datastructure.RoadEdge) float64) *routing.CostGraph {
	g := routing.NewCostGraph()
	for _, e := range edges {
		if !e.HasUsableCost() || !accessibility.EdgeEligible(e, p) {
			continue
		}
		// AddEdge only rejects non-positive costs, filtered above
		_ = g.AddEdge(e.ID, e.Source, e.Target, costOf(e))
	}
	return g
}

func baseCost(e datastructure.RoadEdge) float64 {
	return e.Cost
}

// ClassifyNetwork evaluates the whole network for a vehicle and returns
// the road elements inside Amsterdam that are not plainly accessible,
// each with its outcome code, together with the restriction-adjusted
// cost graph. A nil window evaluates the least restrictive case, a nil
// origin routes from the fixed network source.
func (uc *AccessibilityService) ClassifyNetwork(
	ctx context.Context,
	profile datastructure.VehicleProfile,
	permits datastructure.PermitRequest,
	window *datastructure.TemporalWindow,
	origin *datastructure.Coordinate,
) (NetworkClassification, error) {
	var result NetworkClassification

	if err := accessibility.ValidateProfile(profile); err != nil {
		return result, server.WrapErrorf(err, server.ErrBadParamInput, "%s", err.Error())
	}
	if window != nil {
		if err := accessibility.ValidateWindow(*window); err != nil {
			return result, server.WrapErrorf(err, server.ErrBadParamInput, "%s", err.Error())
		}
	}

	source := int64(ClassifySourceNode)
	if origin != nil {
		if err := validateBbox(origin.Lat, origin.Lon); err != nil {
			return result, err
		}
		node, err := uc.nodes.NearestNode(origin.Lat, origin.Lon)
		if err != nil {
			return result, server.WrapErrorf(err, server.ErrNotFound, "%s", err.Error())
		}
		source = node.ID
	}

	edges, err := uc.loadNetwork(ctx)
	if err != nil {
		return result, err
	}
	bollards, timeWindows, err := uc.loadRestrictions(ctx)
	if err != nil {
		return result, err
	}

	reweigher := accessibility.NewReweigher(uc.policy, bollards, timeWindows)
	graph := eligibleCostGraph(edges, profile, func(e datastructure.RoadEdge) float64 {
		cost, _ := reweigher.AdjustedCost(e, window)
		return cost
	})
	aggCost, err := graph.SingleSourceCost(ctx, source)
	if err != nil {
		return result, uc.mapRoutingErr(err)
	}

	eligible := func(e datastructure.RoadEdge) bool {
		return accessibility.EdgeEligible(e, profile)
	}
	statuses := accessibility.ElementStatuses(edges, eligible, aggCost)

	geometries := make(map[int64][]datastructure.Coordinate)
	inAmsterdam := make(map[int64]bool)
	forwardEdges := make(map[int64]datastructure.RoadEdge)
	for _, e := range edges {
		if e.ID > 0 {
			geometries[e.ID] = e.Geometry
			inAmsterdam[e.ID] = e.InAmsterdam
			forwardEdges[e.ID] = e
		}
	}

	roads := []ClassifiedRoad{}
	for id, status := range statuses {
		if !inAmsterdam[id] || status == datastructure.StatusAccessible {
			continue
		}
		roads = append(roads, ClassifiedRoad{
			ID:         id,
			StatusCode: accessibility.PermitOutcome(forwardEdges[id], status, permits),
			Geometry:   geometries[id],
		})
	}

	sort.Slice(roads, func(i, j int) bool { return roads[i].ID < roads[j].ID })

	uc.log.WithFields(logrus.Fields{
		"vehicle_type": profile.Type,
		"roads":        len(roads),
	}).Debug("classified road network")

	result.Roads = roads
	result.Costs = graph
	return result, nil
}

// Isochrones returns per road element the travel time from the node
// nearest to the given origin, over the unrestricted base costs.
func (uc *AccessibilityService) Isochrones(ctx context.Context, lat, lon float64) ([]IsochroneRoad, error) {
	if err := validateBbox(lat, lon); err != nil {
		return nil, err
	}

	edges, err := uc.loadNetwork(ctx)
	if err != nil {
		return nil, err
	}

	origin, err := uc.nodes.NearestNode(lat, lon)
	if err != nil {
		return nil, server.WrapErrorf(err, server.ErrNotFound, "%s", err.Error())
	}

	g := routing.NewCostGraph()
	for _, e := range edges {
		if e.HasUsableCost() {
			_ = g.AddEdge(e.ID, e.Source, e.Target, e.Cost)
		}
	}
	aggCost, err := g.SingleSourceCost(ctx, origin.ID)
	if err != nil {
		return nil, uc.mapRoutingErr(err)
	}

	// half the element's own cost plus the cost to reach its entry,
	// in seconds
	best := make(map[int64]IsochroneRoad)
	for _, e := range edges {
		if !e.HasUsableCost() || !e.InAmsterdam {
			continue
		}
		reach, ok := aggCost[e.Source]
		if !ok {
			continue
		}
		id := e.RoadElementID()
		total := int((0.5*e.Cost + reach) * 3600)
		if cur, ok := best[id]; !ok || total < cur.TotalCostSeconds {
			geom := e.Geometry
			if prev, ok := best[id]; ok && len(prev.Geometry) > 0 {
				geom = prev.Geometry
			}
			best[id] = IsochroneRoad{ID: id, TotalCostSeconds: total, Geometry: geom}
		}
	}

	roads := lo.Values(best)
	sort.Slice(roads, func(i, j int) bool { return roads[i].ID < roads[j].ID })
	return roads, nil
}

// RouteBollards routes from the network source to the road nearest to
// the destination, biased away from blocked bollards, and returns the
// bollards still encountered on the way.
func (uc *AccessibilityService) RouteBollards(
	ctx context.Context,
	lat, lon float64,
	window *datastructure.TemporalWindow,
) ([]datastructure.Bollard, error) {
	if err := validateBbox(lat, lon); err != nil {
		return nil, err
	}
	if window != nil {
		if err := accessibility.ValidateWindow(*window); err != nil {
			return nil, server.WrapErrorf(err, server.ErrBadParamInput, "%s", err.Error())
		}
	}

	edges, err := uc.loadNetwork(ctx)
	if err != nil {
		return nil, err
	}
	bollards, timeWindows, err := uc.loadRestrictions(ctx)
	if err != nil {
		return nil, err
	}

	reweigher := accessibility.NewReweigher(uc.policy, bollards, timeWindows)

	windowed := make(map[int64]bool, len(timeWindows))
	for _, tw := range timeWindows {
		windowed[tw.RoadElement] = true
	}

	// car network plus the time-window roads, with restriction-adjusted
	// costs so the route only crosses a blocked bollard as a last
	// resort
	g := routing.NewCostGraph()
	for _, e := range edges {
		if !e.CarNetwork && !windowed[e.RoadElementID()] {
			continue
		}
		cost, _ := reweigher.AdjustedCost(e, window)
		if cost <= 0 {
			continue
		}
		_ = g.AddEdge(e.ID, e.Source, e.Target, cost)
	}

	target, _, err := uc.segments.NearestSegment(lat, lon)
	if err != nil {
		return nil, server.WrapErrorf(err, server.ErrNotFound, "%s", err.Error())
	}

	path, _, found, err := g.ShortestPath(ctx, ClassifySourceNode, target.TargetNode)
	if err != nil {
		return nil, uc.mapRoutingErr(err)
	}
	if !found {
		return []datastructure.Bollard{}, nil
	}

	encountered := []datastructure.Bollard{}
	seen := make(map[string]bool)
	for _, edgeID := range path {
		id := edgeID
		if id < 0 {
			id = -id
		}
		for _, b := range reweigher.BollardsOnElement(id) {
			if seen[b.ID] || !accessibility.BollardBlocks(b, window) {
				continue
			}
			seen[b.ID] = true
			encountered = append(encountered, b)
		}
	}

	return encountered, nil
}

// ObstructionStatuses returns the road elements inside Amsterdam that
// are obstructed, or cut off by obstructions elsewhere, during the
// given time span.
func (uc *AccessibilityService) ObstructionStatuses(ctx context.Context, from, to time.Time) ([]ObstructionStatus, error) {
	if to.Before(from) {
		return nil, server.WrapErrorf(nil, server.ErrBadParamInput, "time span ends before it starts")
	}

	edges, err := uc.loadNetwork(ctx)
	if err != nil {
		return nil, err
	}
	obstructions, err := uc.restrictions.Obstructions(ctx, from, to)
	if err != nil {
		return nil, server.WrapErrorf(err, server.ErrStoreUnavailable, "loading obstructions")
	}
	names, err := uc.network.StreetNames(ctx)
	if err != nil {
		return nil, server.WrapErrorf(err, server.ErrStoreUnavailable, "loading street names")
	}

	// the store query filters on overlap too; rows outside the span
	// must not close an element regardless of what the store returned
	obstructed := make(map[int64][]datastructure.Obstruction)
	for _, o := range obstructions {
		if !o.ActiveDuring(from, to) {
			continue
		}
		obstructed[o.RoadElement] = append(obstructed[o.RoadElement], o)
	}

	// route over the network minus the obstructed elements
	g := routing.NewCostGraph()
	for _, e := range edges {
		if !e.HasUsableCost() {
			continue
		}
		if _, ok := obstructed[e.RoadElementID()]; ok {
			continue
		}
		_ = g.AddEdge(e.ID, e.Source, e.Target, e.Cost)
	}
	aggCost, err := g.SingleSourceCost(ctx, ObstructionSourceNode)
	if err != nil {
		return nil, uc.mapRoutingErr(err)
	}

	statuses := make(map[int64]datastructure.AccessStatus)
	geometries := make(map[int64][]datastructure.Coordinate)
	for _, e := range edges {
		if !e.HasUsableCost() || !e.InAmsterdam {
			continue
		}
		id := e.RoadElementID()
		var s datastructure.AccessStatus
		switch {
		case len(obstructed[id]) > 0:
			s = datastructure.StatusOutsideNetwork
		case !hasCost(aggCost, e.Source):
			s = datastructure.StatusInaccessible
		default:
			s = datastructure.StatusAccessible
		}
		if cur, ok := statuses[id]; ok {
			statuses[id] = cur.Worst(s)
		} else {
			statuses[id] = s
		}
		if e.ID > 0 {
			geometries[id] = e.Geometry
		}
	}

	ids := lo.Keys(statuses)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	result := []ObstructionStatus{}
	for _, id := range ids {
		status := statuses[id]
		if status == datastructure.StatusAccessible {
			continue
		}
		entries := obstructed[id]
		if status == datastructure.StatusInaccessible {
			// cut off but not itself obstructed
			entries = []datastructure.Obstruction{}
		}
		result = append(result, ObstructionStatus{
			RoadElement:  id,
			StreetName:   names[id],
			StatusCode:   int(status),
			Geometry:     geometries[id],
			Obstructions: entries,
		})
	}

	return result, nil
}

// PermitAdvice evaluates the permit situation of the road element
// nearest to a destination, for the given vehicle.
func (uc *AccessibilityService) PermitAdvice(
	ctx context.Context,
	lat, lon float64,
	profile datastructure.VehicleProfile,
	permits datastructure.PermitRequest,
) (PermitAdvice, error) {
	var advice PermitAdvice

	if err := validateBbox(lat, lon); err != nil {
		return advice, err
	}
	if err := accessibility.ValidateProfile(profile); err != nil {
		return advice, server.WrapErrorf(err, server.ErrBadParamInput, "%s", err.Error())
	}

	segment, distance, err := uc.segments.NearestSegment(lat, lon)
	if err != nil {
		return advice, server.WrapErrorf(err, server.ErrNotFound, "%s", err.Error())
	}

	edges, err := uc.loadNetwork(ctx)
	if err != nil {
		return advice, err
	}
	_, timeWindows, err := uc.loadRestrictions(ctx)
	if err != nil {
		return advice, err
	}

	graph := eligibleCostGraph(edges, profile, baseCost)
	aggCost, err := graph.SingleSourceCost(ctx, PermitSourceNode)
	if err != nil {
		return advice, uc.mapRoutingErr(err)
	}

	eligible := func(e datastructure.RoadEdge) bool {
		return accessibility.EdgeEligible(e, profile)
	}

	var element datastructure.RoadEdge
	status := datastructure.StatusOutsideNetwork
	first := true
	for _, e := range edges {
		if e.RoadElementID() != segment.RoadElement {
			continue
		}
		s := accessibility.DirectionalStatus(e, eligible(e), aggCost)
		if first {
			status = s
			first = false
		} else {
			status = status.Worst(s)
		}
		if e.ID > 0 {
			element = e
		}
	}

	detail, err := uc.elements.RoadElement(ctx, segment.RoadElement)
	if err != nil {
		uc.log.WithError(err).WithField("element", segment.RoadElement).
			Warn("road element detail unavailable for permit advice")
	}

	windowDays := []datastructure.Weekday{}
	for _, tw := range timeWindows {
		if tw.RoadElement == segment.RoadElement {
			windowDays = append(windowDays, tw.Days...)
		}
	}

	advice = PermitAdvice{
		RoadElement:            segment.RoadElement,
		LowEmissionZone:        element.LowEmissionZone && permits.LowEmissionZone,
		HeavyGoodsVehicleZone:  element.HeavyGoodsZone && permits.HeavyGoodsZone,
		RVVPermitNeeded:        status == datastructure.StatusInaccessible,
		InAmsterdam:            status != datastructure.StatusOutsideNetwork,
		TimeWindowDays:         windowDays,
		WideRoad:               strings.HasSuffix(detail.HeavyGoodsZoneDetail, "breed opgezette wegen"),
		DistanceToDestinationM: distance,
	}
	if line, err := decodeSegmentLine(segment); err == nil && len(line) > 0 {
		advice.ClosestPoint = closestOnLine(lat, lon, line)
	}

	return advice, nil
}

// MatchingTrafficSigns returns the prohibition signs in the requested
// categories that apply to the vehicle.
func (uc *AccessibilityService) MatchingTrafficSigns(
	ctx context.Context,
	categories []string,
	profile datastructure.VehicleProfile,
) ([]datastructure.TrafficSign, error) {
	if err := validateCategories(categories); err != nil {
		return nil, err
	}
	if err := accessibility.ValidateProfile(profile); err != nil {
		return nil, server.WrapErrorf(err, server.ErrBadParamInput, "%s", err.Error())
	}

	dbCategories := lo.Map(categories, func(c string, _ int) string {
		mapped, _ := datastructure.SignCategoryFromAPI(c)
		return mapped
	})

	signs, err := uc.signs.TrafficSigns(ctx, dbCategories)
	if err != nil {
		return nil, server.WrapErrorf(err, server.ErrStoreUnavailable, "loading traffic signs")
	}

	return accessibility.MatchSigns(signs, dbCategories, profile), nil
}

// RoadElement returns one road element with its traffic counts and
// current obstructions.
func (uc *AccessibilityService) RoadElement(ctx context.Context, id int64) (datastructure.RoadElementDetail, error) {
	detail, err := uc.elements.RoadElement(ctx, id)
	if err != nil {
		if errors.Is(err, datastructure.ErrRoadElementNotFound) {
			return detail, server.WrapErrorf(err, server.ErrNotFound, "road element %d not found", id)
		}
		return detail, server.WrapErrorf(err, server.ErrStoreUnavailable, "loading road element %d", id)
	}
	return detail, nil
}

// LoadUnload returns every road section with load/unload windows.
func (uc *AccessibilityService) LoadUnload(ctx context.Context) ([]datastructure.LoadUnloadSection, error) {
	sections, err := uc.elements.LoadUnloadSections(ctx)
	if err != nil {
		return nil, server.WrapErrorf(err, server.ErrStoreUnavailable, "loading load/unload sections")
	}
	return sections, nil
}

func hasCost(aggCost map[int64]float64, node int64) bool {
	_, ok := aggCost[node]
	return ok
}

func validateCategories(categories []string) error {
	if len(categories) == 0 {
		return server.WrapErrorf(nil, server.ErrBadParamInput, "at least one traffic sign category is required")
	}
	for _, c := range categories {
		if _, ok := datastructure.SignCategoryFromAPI(c); !ok {
			return server.WrapErrorf(nil, server.ErrBadParamInput, "unknown traffic sign category %q", c)
		}
	}
	return nil
}

func decodeSegmentLine(s datastructure.DirectedSegment) ([]geo.Location, error) {
	return geo.DecodePolyline(s.Polyline)
}

func closestOnLine(lat, lon float64, line []geo.Location) datastructure.Coordinate {
	p := geo.ClosestPointOnPolyline(geo.NewLocation(lat, lon), line)
	return datastructure.Coordinate{Lat: p.Lat, Lon: p.Lon}
}
