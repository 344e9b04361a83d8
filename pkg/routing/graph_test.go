package routing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// diamond builds a three-node graph where the direct 1->3 arc is more
// expensive than the two-hop route via node 2.
func diamond(t *testing.T) *CostGraph {
	t.Helper()
	g := NewCostGraph()
	assert.NoError(t, g.AddEdge(12, 1, 2, 1.0))
	assert.NoError(t, g.AddEdge(23, 2, 3, 1.0))
	assert.NoError(t, g.AddEdge(13, 1, 3, 4.0))
	return g
}

func TestSingleSourceCost(t *testing.T) {
	t.Run("cheapest cost per node", func(t *testing.T) {
		costs, err := diamond(t).SingleSourceCost(context.Background(), 1)
		assert.NoError(t, err)
		assert.InDelta(t, 0.0, costs[1], 1e-9)
		assert.InDelta(t, 1.0, costs[2], 1e-9)
		assert.InDelta(t, 2.0, costs[3], 1e-9)
	})

	t.Run("unreachable nodes are absent", func(t *testing.T) {
		g := diamond(t)
		assert.NoError(t, g.AddEdge(45, 4, 5, 1.0))

		costs, err := g.SingleSourceCost(context.Background(), 1)
		assert.NoError(t, err)
		_, ok := costs[4]
		assert.False(t, ok)
		_, ok = costs[5]
		assert.False(t, ok)
	})

	t.Run("unknown source settles nothing", func(t *testing.T) {
		costs, err := diamond(t).SingleSourceCost(context.Background(), 99)
		assert.NoError(t, err)
		assert.Empty(t, costs)
	})

	t.Run("penalized edges lose to longer clean detours", func(t *testing.T) {
		g := NewCostGraph()
		// direct arc carries a restriction penalty, the three-hop
		// detour does not
		assert.NoError(t, g.AddEdge(1, 1, 5, 0.1*10_000))
		assert.NoError(t, g.AddEdge(2, 1, 2, 0.4))
		assert.NoError(t, g.AddEdge(3, 2, 3, 0.4))
		assert.NoError(t, g.AddEdge(4, 3, 5, 0.4))

		costs, err := g.SingleSourceCost(context.Background(), 1)
		assert.NoError(t, err)
		assert.InDelta(t, 1.2, costs[5], 1e-9)
	})

	t.Run("deterministic across runs", func(t *testing.T) {
		g := diamond(t)
		first, err := g.SingleSourceCost(context.Background(), 1)
		assert.NoError(t, err)
		second, err := g.SingleSourceCost(context.Background(), 1)
		assert.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("honors a cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := diamond(t).SingleSourceCost(ctx, 1)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("honors an expired deadline", func(t *testing.T) {
		ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
		defer cancel()
		_, err := diamond(t).SingleSourceCost(ctx, 1)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestShortestPath(t *testing.T) {
	t.Run("path edges in travel order", func(t *testing.T) {
		path, cost, found, err := diamond(t).ShortestPath(context.Background(), 1, 3)
		assert.NoError(t, err)
		assert.True(t, found)
		assert.InDelta(t, 2.0, cost, 1e-9)
		assert.Equal(t, []int64{12, 23}, path)
	})

	t.Run("source equals target", func(t *testing.T) {
		path, cost, found, err := diamond(t).ShortestPath(context.Background(), 1, 1)
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Zero(t, cost)
		assert.Empty(t, path)
	})

	t.Run("no path", func(t *testing.T) {
		_, _, found, err := diamond(t).ShortestPath(context.Background(), 3, 1)
		assert.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("unknown endpoints", func(t *testing.T) {
		_, _, found, err := diamond(t).ShortestPath(context.Background(), 1, 99)
		assert.NoError(t, err)
		assert.False(t, found)
	})
}

func TestAddEdgeRejectsNonPositiveCost(t *testing.T) {
	g := NewCostGraph()
	assert.Error(t, g.AddEdge(1, 1, 2, 0))
	assert.Error(t, g.AddEdge(2, 1, 2, -0.5))
}
