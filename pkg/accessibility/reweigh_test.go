package accessibility

import (
	"testing"

	"github.com/Amsterdam/bereikbaarheid-backend/pkg/datastructure"
	"github.com/stretchr/testify/assert"
)

func closedBollard(element int64) datastructure.Bollard {
	// open mondays 07:00-11:00, anything else is blocked
	return datastructure.Bollard{
		ID:          "P-1",
		RoadElement: element,
		Days:        []datastructure.Weekday{"ma"},
		OpenFrom:    7 * 60,
		OpenUntil:   11 * 60,
	}
}

func TestEdgeTier(t *testing.T) {
	r := NewReweigher(PolicyConservative, []datastructure.Bollard{closedBollard(10)}, nil)
	w := &datastructure.TemporalWindow{Day: "di", From: 8 * 60, To: 9 * 60}

	t.Run("car network, no restriction", func(t *testing.T) {
		e := datastructure.RoadEdge{ID: 20, Cost: 0.1, CarNetwork: true}
		assert.Equal(t, TierNone, r.EdgeTier(e, w))
	})

	t.Run("car network, blocked bollard", func(t *testing.T) {
		e := datastructure.RoadEdge{ID: 10, Cost: 0.1, CarNetwork: true}
		assert.Equal(t, TierRestricted, r.EdgeTier(e, w))
	})

	t.Run("restriction applies to both directions of the element", func(t *testing.T) {
		e := datastructure.RoadEdge{ID: -10, Cost: 0.1, CarNetwork: true}
		assert.Equal(t, TierRestricted, r.EdgeTier(e, w))
	})

	t.Run("off car network, blocked bollard", func(t *testing.T) {
		e := datastructure.RoadEdge{ID: 10, Cost: 0.1}
		assert.Equal(t, TierRestrictedOffNetwork, r.EdgeTier(e, w))
	})

	t.Run("off car network, no restriction", func(t *testing.T) {
		e := datastructure.RoadEdge{ID: 20, Cost: 0.1}
		assert.Equal(t, TierOffNetwork, r.EdgeTier(e, w))
	})

	t.Run("open bollard does not restrict", func(t *testing.T) {
		open := &datastructure.TemporalWindow{Day: "ma", From: 8 * 60, To: 9 * 60}
		e := datastructure.RoadEdge{ID: 10, Cost: 0.1, CarNetwork: true}
		assert.Equal(t, TierNone, r.EdgeTier(e, open))
	})
}

func TestAdjustedCost(t *testing.T) {
	r := NewReweigher(PolicyConservative,
		[]datastructure.Bollard{closedBollard(10)},
		[]datastructure.TimeWindowRestriction{{
			RoadElement: 30,
			Days:        []datastructure.Weekday{"ma"},
			From:        7 * 60,
			To:          11 * 60,
		}})
	w := &datastructure.TemporalWindow{Day: "di", From: 8 * 60, To: 9 * 60}

	t.Run("blocked bollard on the car network multiplies by 10000", func(t *testing.T) {
		e := datastructure.RoadEdge{ID: 10, Cost: 0.25, CarNetwork: true}
		cost, tier := r.AdjustedCost(e, w)
		assert.Equal(t, TierRestricted, tier)
		assert.InDelta(t, 2500.0, cost, 1e-9)
	})

	t.Run("time window restricts like a bollard", func(t *testing.T) {
		e := datastructure.RoadEdge{ID: 30, Cost: 0.1, CarNetwork: true}
		_, tier := r.AdjustedCost(e, w)
		assert.Equal(t, TierRestricted, tier)
	})

	t.Run("adjusted cost never drops below base cost", func(t *testing.T) {
		edges := []datastructure.RoadEdge{
			{ID: 10, Cost: 0.1, CarNetwork: true},
			{ID: 10, Cost: 0.1},
			{ID: 20, Cost: 0.1, CarNetwork: true},
			{ID: 20, Cost: 0.1},
		}
		for _, e := range edges {
			cost, _ := r.AdjustedCost(e, w)
			assert.GreaterOrEqual(t, cost, e.Cost)
		}
	})

	t.Run("tier multipliers are strictly increasing", func(t *testing.T) {
		// under the legacy policy the two off-network tiers collapse to
		// the same factor, so strict ordering only holds conservatively
		prev := 0.0
		for _, tier := range []Tier{TierNone, TierRestricted, TierRestrictedOffNetwork, TierOffNetwork} {
			m := PolicyConservative.multiplier(tier)
			assert.Greater(t, m, prev, "tier %d", tier)
			prev = m
		}
	})

	t.Run("conservative policy doubles the legacy off-network penalty", func(t *testing.T) {
		e := datastructure.RoadEdge{ID: 20, Cost: 1}
		conservative, _ := NewReweigher(PolicyConservative, nil, nil).AdjustedCost(e, w)
		legacy, _ := NewReweigher(PolicyLegacy, nil, nil).AdjustedCost(e, w)
		assert.Equal(t, 2*legacy, conservative)
	})
}
