package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/Amsterdam/bereikbaarheid-backend/pkg/datastructure"
	"github.com/Amsterdam/bereikbaarheid-backend/pkg/server"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

type fakeNetworkStore struct {
	edges []datastructure.RoadEdge
	nodes []datastructure.RoadNode
	names map[int64]string
	err   error
}

func (f *fakeNetworkStore) Edges(ctx context.Context) ([]datastructure.RoadEdge, error) {
	return f.edges, f.err
}

func (f *fakeNetworkStore) Nodes(ctx context.Context) ([]datastructure.RoadNode, error) {
	return f.nodes, f.err
}

func (f *fakeNetworkStore) StreetNames(ctx context.Context) (map[int64]string, error) {
	return f.names, f.err
}

type fakeRestrictionStore struct {
	bollards     []datastructure.Bollard
	windows      []datastructure.TimeWindowRestriction
	obstructions []datastructure.Obstruction
	err          error
}

func (f *fakeRestrictionStore) Bollards(ctx context.Context) ([]datastructure.Bollard, error) {
	return f.bollards, f.err
}

func (f *fakeRestrictionStore) TimeWindows(ctx context.Context) ([]datastructure.TimeWindowRestriction, error) {
	return f.windows, f.err
}

func (f *fakeRestrictionStore) Obstructions(ctx context.Context, from, to time.Time) ([]datastructure.Obstruction, error) {
	return f.obstructions, f.err
}

type fakeSignStore struct {
	signs []datastructure.TrafficSign
	err   error
}

func (f *fakeSignStore) TrafficSigns(ctx context.Context, categories []string) ([]datastructure.TrafficSign, error) {
	return f.signs, f.err
}

type fakeElementStore struct {
	detail   datastructure.RoadElementDetail
	sections []datastructure.LoadUnloadSection
	err      error
}

func (f *fakeElementStore) RoadElement(ctx context.Context, id int64) (datastructure.RoadElementDetail, error) {
	return f.detail, f.err
}

func (f *fakeElementStore) LoadUnloadSections(ctx context.Context) ([]datastructure.LoadUnloadSection, error) {
	return f.sections, f.err
}

type fakeNodeLocator struct {
	node datastructure.RoadNode
	err  error
}

func (f *fakeNodeLocator) NearestNode(lat, lon float64) (datastructure.RoadNode, error) {
	return f.node, f.err
}

type fakeSegmentLocator struct {
	segment  datastructure.DirectedSegment
	distance float64
	err      error
}

func (f *fakeSegmentLocator) NearestSegment(lat, lon float64) (datastructure.DirectedSegment, float64, error) {
	return f.segment, f.distance, f.err
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// testNetwork builds a chain from the classification source node:
// element 1 is plainly accessible, element 2 prohibits all vehicles,
// element 3 carries no cost.
func testNetwork() []datastructure.RoadEdge {
	return []datastructure.RoadEdge{
		{ID: 1, Source: ClassifySourceNode, Target: 100, Cost: 0.1, CarNetwork: true, InAmsterdam: true},
		{ID: -1, Source: 100, Target: ClassifySourceNode, Cost: 0.1, CarNetwork: true, InAmsterdam: true},
		{ID: 2, Source: 100, Target: 101, Cost: 0.1, CarNetwork: true, InAmsterdam: true, ProhibitedAllVehicles: true},
		{ID: -2, Source: 101, Target: 100, Cost: 0.1, CarNetwork: true, InAmsterdam: true, ProhibitedAllVehicles: true},
		{ID: 3, Source: 101, Target: 102, Cost: 0, CarNetwork: true, InAmsterdam: true},
	}
}

func newTestService(network *fakeNetworkStore, restrictions *fakeRestrictionStore) *AccessibilityService {
	return NewAccessibilityService(
		network,
		restrictions,
		&fakeSignStore{},
		&fakeElementStore{},
		&fakeNodeLocator{},
		&fakeSegmentLocator{},
		quietLogger(),
	)
}

func passengerCar() datastructure.VehicleProfile {
	return datastructure.VehicleProfile{
		Type:   datastructure.VehicleTypePassengerCar,
		Height: 1.6,
	}
}

func TestClassifyNetwork(t *testing.T) {
	svc := newTestService(&fakeNetworkStore{edges: testNetwork()}, &fakeRestrictionStore{})
	noPermits := datastructure.PermitRequest{}

	t.Run("accessible elements are filtered out", func(t *testing.T) {
		result, err := svc.ClassifyNetwork(context.Background(), passengerCar(), noPermits, nil, nil)
		assert.NoError(t, err)

		ids := make([]int64, len(result.Roads))
		for i, r := range result.Roads {
			ids[i] = r.ID
		}
		assert.Equal(t, []int64{2, 3}, ids)
	})

	t.Run("statuses map to outcome codes", func(t *testing.T) {
		result, err := svc.ClassifyNetwork(context.Background(), passengerCar(), noPermits, nil, nil)
		assert.NoError(t, err)
		assert.Equal(t, 11001, result.Roads[0].StatusCode) // prohibited, no zones
		assert.Equal(t, 333, result.Roads[1].StatusCode)   // no usable cost
	})

	t.Run("deterministic across runs", func(t *testing.T) {
		first, err := svc.ClassifyNetwork(context.Background(), passengerCar(), noPermits, nil, nil)
		assert.NoError(t, err)
		second, err := svc.ClassifyNetwork(context.Background(), passengerCar(), noPermits, nil, nil)
		assert.NoError(t, err)
		assert.Equal(t, first.Roads, second.Roads)
	})

	t.Run("blocked bollard window raises the aggregate costs", func(t *testing.T) {
		guarded := newTestService(
			&fakeNetworkStore{edges: testNetwork()},
			&fakeRestrictionStore{bollards: []datastructure.Bollard{{
				ID:          "P-9",
				RoadElement: 1,
				Days:        []datastructure.Weekday{"ma"},
				OpenFrom:    7 * 60,
				OpenUntil:   11 * 60,
			}}},
		)

		open, err := guarded.ClassifyNetwork(context.Background(), passengerCar(), noPermits, nil, nil)
		assert.NoError(t, err)
		blocked, err := guarded.ClassifyNetwork(context.Background(), passengerCar(), noPermits,
			&datastructure.TemporalWindow{Day: "za", From: 8 * 60, To: 9 * 60}, nil)
		assert.NoError(t, err)

		openCost, err := open.Costs.SingleSourceCost(context.Background(), ClassifySourceNode)
		assert.NoError(t, err)
		blockedCost, err := blocked.Costs.SingleSourceCost(context.Background(), ClassifySourceNode)
		assert.NoError(t, err)

		assert.InDelta(t, 0.1, openCost[100], 1e-9)
		assert.InDelta(t, 1000.0, blockedCost[100], 1e-9)
	})

	t.Run("origin overrides the fixed source", func(t *testing.T) {
		relocated := NewAccessibilityService(
			&fakeNetworkStore{edges: testNetwork()}, &fakeRestrictionStore{},
			&fakeSignStore{}, &fakeElementStore{},
			&fakeNodeLocator{node: datastructure.RoadNode{ID: 102}},
			&fakeSegmentLocator{}, quietLogger(),
		)
		result, err := relocated.ClassifyNetwork(context.Background(), passengerCar(), noPermits,
			nil, &datastructure.Coordinate{Lat: 52.37, Lon: 4.89})
		assert.NoError(t, err)

		// nothing is reachable from node 102, element 1 is no longer
		// filtered as accessible
		ids := make([]int64, len(result.Roads))
		for i, r := range result.Roads {
			ids[i] = r.ID
		}
		assert.Equal(t, []int64{1, 2, 3}, ids)
	})

	t.Run("origin outside the service area is rejected", func(t *testing.T) {
		_, err := svc.ClassifyNetwork(context.Background(), passengerCar(), noPermits,
			nil, &datastructure.Coordinate{Lat: 51.0, Lon: 4.89})
		var serr *server.Error
		assert.ErrorAs(t, err, &serr)
		assert.Equal(t, server.ErrBadParamInput, serr.Code())
	})

	t.Run("inverted window is rejected", func(t *testing.T) {
		_, err := svc.ClassifyNetwork(context.Background(), passengerCar(), noPermits,
			&datastructure.TemporalWindow{Day: "ma", From: 9 * 60, To: 8 * 60}, nil)
		var serr *server.Error
		assert.ErrorAs(t, err, &serr)
		assert.Equal(t, server.ErrBadParamInput, serr.Code())
	})

	t.Run("invalid profile is rejected before any store access", func(t *testing.T) {
		failing := newTestService(&fakeNetworkStore{err: errors.New("down")}, &fakeRestrictionStore{})
		p := passengerCar()
		p.Height = 12
		_, err := failing.ClassifyNetwork(context.Background(), p, noPermits, nil, nil)
		var serr *server.Error
		assert.ErrorAs(t, err, &serr)
		assert.Equal(t, server.ErrBadParamInput, serr.Code())
	})

	t.Run("store failure maps to store unavailable", func(t *testing.T) {
		failing := newTestService(&fakeNetworkStore{err: errors.New("connection refused")}, &fakeRestrictionStore{})
		_, err := failing.ClassifyNetwork(context.Background(), passengerCar(), noPermits, nil, nil)
		var serr *server.Error
		assert.ErrorAs(t, err, &serr)
		assert.Equal(t, server.ErrStoreUnavailable, serr.Code())
	})
}

func TestRouteBollards(t *testing.T) {
	edges := []datastructure.RoadEdge{
		{ID: 1, Source: ClassifySourceNode, Target: 100, Cost: 0.1, CarNetwork: true, InAmsterdam: true},
		{ID: 2, Source: 100, Target: 101, Cost: 0.1, CarNetwork: true, InAmsterdam: true},
	}
	bollard := datastructure.Bollard{
		ID:          "P-7",
		RoadElement: 2,
		Days:        []datastructure.Weekday{"ma"},
		OpenFrom:    7 * 60,
		OpenUntil:   11 * 60,
	}
	network := &fakeNetworkStore{edges: edges}
	restrictions := &fakeRestrictionStore{bollards: []datastructure.Bollard{bollard}}

	svc := NewAccessibilityService(
		network, restrictions, &fakeSignStore{}, &fakeElementStore{},
		&fakeNodeLocator{},
		&fakeSegmentLocator{segment: datastructure.DirectedSegment{EdgeID: 2, RoadElement: 2, TargetNode: 101}},
		quietLogger(),
	)

	t.Run("blocked bollards on the route are reported", func(t *testing.T) {
		w := &datastructure.TemporalWindow{Day: "za", From: 8 * 60, To: 9 * 60}
		found, err := svc.RouteBollards(context.Background(), 52.37, 4.89, w)
		assert.NoError(t, err)
		assert.Len(t, found, 1)
		assert.Equal(t, "P-7", found[0].ID)
	})

	t.Run("open bollards are not reported", func(t *testing.T) {
		w := &datastructure.TemporalWindow{Day: "ma", From: 8 * 60, To: 9 * 60}
		found, err := svc.RouteBollards(context.Background(), 52.37, 4.89, w)
		assert.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("location outside the service area is rejected", func(t *testing.T) {
		_, err := svc.RouteBollards(context.Background(), 51.0, 4.89, nil)
		var serr *server.Error
		assert.ErrorAs(t, err, &serr)
		assert.Equal(t, server.ErrBadParamInput, serr.Code())
	})
}

func TestObstructionStatuses(t *testing.T) {
	edges := []datastructure.RoadEdge{
		{ID: 1, Source: ObstructionSourceNode, Target: 100, Cost: 0.1, CarNetwork: true, InAmsterdam: true},
		{ID: 2, Source: 100, Target: 101, Cost: 0.1, CarNetwork: true, InAmsterdam: true},
		{ID: 3, Source: 101, Target: 102, Cost: 0.1, CarNetwork: true, InAmsterdam: true},
	}
	obstruction := datastructure.Obstruction{
		RoadElement: 2,
		StartDate:   time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC),
		Activity:    "sewer works",
	}
	svc := newTestService(
		&fakeNetworkStore{edges: edges, names: map[int64]string{2: "Rozengracht", 3: "Keizersgracht"}},
		&fakeRestrictionStore{obstructions: []datastructure.Obstruction{obstruction}},
	)

	from := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	to := time.Date(2024, 5, 10, 16, 0, 0, 0, time.UTC)

	t.Run("obstructed element reports 333 with its obstructions", func(t *testing.T) {
		statuses, err := svc.ObstructionStatuses(context.Background(), from, to)
		assert.NoError(t, err)
		assert.Len(t, statuses, 2)

		assert.Equal(t, int64(2), statuses[0].RoadElement)
		assert.Equal(t, 333, statuses[0].StatusCode)
		assert.Equal(t, "Rozengracht", statuses[0].StreetName)
		assert.Len(t, statuses[0].Obstructions, 1)
	})

	t.Run("element cut off by the obstruction reports 222 without obstructions", func(t *testing.T) {
		statuses, err := svc.ObstructionStatuses(context.Background(), from, to)
		assert.NoError(t, err)

		assert.Equal(t, int64(3), statuses[1].RoadElement)
		assert.Equal(t, 222, statuses[1].StatusCode)
		assert.Empty(t, statuses[1].Obstructions)
	})

	t.Run("rows outside the span never close an element", func(t *testing.T) {
		stale := datastructure.Obstruction{
			RoadElement: 3,
			StartDate:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			EndDate:     time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
			Activity:    "paving",
		}
		leaky := newTestService(
			&fakeNetworkStore{edges: edges, names: map[int64]string{2: "Rozengracht"}},
			&fakeRestrictionStore{obstructions: []datastructure.Obstruction{obstruction, stale}},
		)
		statuses, err := leaky.ObstructionStatuses(context.Background(), from, to)
		assert.NoError(t, err)
		assert.Len(t, statuses, 2)
		assert.Equal(t, int64(3), statuses[1].RoadElement)
		assert.Equal(t, 222, statuses[1].StatusCode)
		assert.Empty(t, statuses[1].Obstructions)
	})

	t.Run("inverted time span is rejected", func(t *testing.T) {
		_, err := svc.ObstructionStatuses(context.Background(), to, from)
		var serr *server.Error
		assert.ErrorAs(t, err, &serr)
		assert.Equal(t, server.ErrBadParamInput, serr.Code())
	})
}

func TestMatchingTrafficSigns(t *testing.T) {
	signs := []datastructure.TrafficSign{
		{ID: "a", Model: "C01", Category: datastructure.SignCategoryProhibition, RoadElement: 1},
		{ID: "b", Model: "C07A", Category: datastructure.SignCategoryProhibition, RoadElement: 2},
	}
	svc := NewAccessibilityService(
		&fakeNetworkStore{}, &fakeRestrictionStore{}, &fakeSignStore{signs: signs},
		&fakeElementStore{}, &fakeNodeLocator{}, &fakeSegmentLocator{}, quietLogger(),
	)

	t.Run("signs applying to the vehicle are returned", func(t *testing.T) {
		matched, err := svc.MatchingTrafficSigns(context.Background(), []string{"prohibition"}, passengerCar())
		assert.NoError(t, err)
		assert.Len(t, matched, 1)
		assert.Equal(t, "a", matched[0].ID)
	})

	t.Run("unknown category is rejected", func(t *testing.T) {
		_, err := svc.MatchingTrafficSigns(context.Background(), []string{"warning"}, passengerCar())
		var serr *server.Error
		assert.ErrorAs(t, err, &serr)
		assert.Equal(t, server.ErrBadParamInput, serr.Code())
	})

	t.Run("empty category list is rejected", func(t *testing.T) {
		_, err := svc.MatchingTrafficSigns(context.Background(), nil, passengerCar())
		assert.Error(t, err)
	})
}

func TestRoadElement(t *testing.T) {
	t.Run("missing element maps to not found", func(t *testing.T) {
		svc := NewAccessibilityService(
			&fakeNetworkStore{}, &fakeRestrictionStore{}, &fakeSignStore{},
			&fakeElementStore{err: datastructure.ErrRoadElementNotFound},
			&fakeNodeLocator{}, &fakeSegmentLocator{}, quietLogger(),
		)
		_, err := svc.RoadElement(context.Background(), 42)
		var serr *server.Error
		assert.ErrorAs(t, err, &serr)
		assert.Equal(t, server.ErrNotFound, serr.Code())
	})
}
