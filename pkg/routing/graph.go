// Package routing runs single-source and point-to-point Dijkstra
// searches over the reweighted road network. The graph is rebuilt per
// evaluation from the adjusted edge costs, so the search itself carries
// no knowledge of vehicles or schedules.
package routing

import (
	"context"
	"fmt"
	"math"
)

type arc struct {
	to     int32
	cost   float64
	edgeID int64
}

// CostGraph is a directed graph with float64 arc costs, indexed by the
// external int64 node ids of the traffic model.
type CostGraph struct {
	nodeIdx  map[int64]int32
	nodeIDs  []int64
	outEdges [][]arc
}

func NewCostGraph() *CostGraph {
	return &CostGraph{
		nodeIdx: make(map[int64]int32),
	}
}

func (g *CostGraph) index(node int64) int32 {
	if idx, ok := g.nodeIdx[node]; ok {
		return idx
	}
	idx := int32(len(g.nodeIDs))
	g.nodeIdx[node] = idx
	g.nodeIDs = append(g.nodeIDs, node)
	g.outEdges = append(g.outEdges, nil)
	return idx
}

// AddEdge adds a directed arc. Edges with non-positive cost are
// rejected so that penalty arithmetic upstream cannot smuggle a
// zero-cost shortcut into the search.
func (g *CostGraph) AddEdge(edgeID, source, target int64, cost float64) error {
	if cost <= 0 {
		return fmt.Errorf("edge %d: non-positive cost %f", edgeID, cost)
	}
	s := g.index(source)
	t := g.index(target)
	g.outEdges[s] = append(g.outEdges[s], arc{to: t, cost: cost, edgeID: edgeID})
	return nil
}

func (g *CostGraph) NumNodes() int {
	return len(g.nodeIDs)
}

func (g *CostGraph) HasNode(node int64) bool {
	_, ok := g.nodeIdx[node]
	return ok
}

// checkInterval is how many settled nodes pass between context checks.
const checkInterval = 1024

// SingleSourceCost runs Dijkstra from source and returns the cost of
// the cheapest path to every reachable node, keyed by external node id.
// An unknown source yields an empty map, matching a search that settles
// nothing.
func (g *CostGraph) SingleSourceCost(ctx context.Context, source int64) (map[int64]float64, error) {
	result := make(map[int64]float64)
	srcIdx, ok := g.nodeIdx[source]
	if !ok {
		return result, nil
	}

	dist := make([]float64, len(g.nodeIDs))
	for i := range dist {
		dist[i] = math.MaxFloat64
	}
	visited := make([]bool, len(g.nodeIDs))

	pq := NewMinHeap[int32]()
	dist[srcIdx] = 0
	pq.Insert(PriorityQueueNode[int32]{Rank: 0, Item: srcIdx})

	settled := 0
	for pq.Size() != 0 {
		if settled%checkInterval == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		node, err := pq.ExtractMin()
		if err != nil {
			return nil, err
		}
		if visited[node.Item] {
			continue
		}
		visited[node.Item] = true
		settled++

		for _, a := range g.outEdges[node.Item] {
			newCost := dist[node.Item] + a.cost
			if newCost < dist[a.to] {
				if dist[a.to] == math.MaxFloat64 {
					dist[a.to] = newCost
					pq.Insert(PriorityQueueNode[int32]{Rank: newCost, Item: a.to})
				} else {
					dist[a.to] = newCost
					neighbor := PriorityQueueNode[int32]{Rank: newCost, Item: a.to}
					if err := pq.DecreaseKey(neighbor); err != nil {
						pq.Insert(neighbor)
					}
				}
			}
		}
	}

	for idx, d := range dist {
		if d != math.MaxFloat64 {
			result[g.nodeIDs[idx]] = d
		}
	}
	return result, nil
}

type cameFromPair struct {
	edgeID  int64
	nodeIdx int32
}

// ShortestPath runs Dijkstra from source to target and returns the edge
// ids of the cheapest path in travel order, its total cost, and whether
// a path exists.
func (g *CostGraph) ShortestPath(ctx context.Context, source, target int64) ([]int64, float64, bool, error) {
	srcIdx, ok := g.nodeIdx[source]
	if !ok {
		return nil, 0, false, nil
	}
	dstIdx, ok := g.nodeIdx[target]
	if !ok {
		return nil, 0, false, nil
	}

	dist := make([]float64, len(g.nodeIDs))
	for i := range dist {
		dist[i] = math.MaxFloat64
	}
	visited := make([]bool, len(g.nodeIDs))
	cameFrom := make(map[int32]cameFromPair)

	pq := NewMinHeap[int32]()
	dist[srcIdx] = 0
	pq.Insert(PriorityQueueNode[int32]{Rank: 0, Item: srcIdx})

	settled := 0
	for pq.Size() != 0 {
		if settled%checkInterval == 0 {
			select {
			case <-ctx.Done():
				return nil, 0, false, ctx.Err()
			default:
			}
		}

		node, err := pq.ExtractMin()
		if err != nil {
			return nil, 0, false, err
		}
		if visited[node.Item] {
			continue
		}
		visited[node.Item] = true
		settled++

		if node.Item == dstIdx {
			break
		}

		for _, a := range g.outEdges[node.Item] {
			newCost := dist[node.Item] + a.cost
			if newCost < dist[a.to] {
				insert := dist[a.to] == math.MaxFloat64
				dist[a.to] = newCost
				cameFrom[a.to] = cameFromPair{edgeID: a.edgeID, nodeIdx: node.Item}

				neighbor := PriorityQueueNode[int32]{Rank: newCost, Item: a.to}
				if insert {
					pq.Insert(neighbor)
				} else if err := pq.DecreaseKey(neighbor); err != nil {
					pq.Insert(neighbor)
				}
			}
		}
	}

	if dist[dstIdx] == math.MaxFloat64 {
		return nil, 0, false, nil
	}

	path := []int64{}
	for at := dstIdx; at != srcIdx; {
		prev, ok := cameFrom[at]
		if !ok {
			return nil, 0, false, fmt.Errorf("broken predecessor chain at node %d", g.nodeIDs[at])
		}
		path = append(path, prev.edgeID)
		at = prev.nodeIdx
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, dist[dstIdx], true, nil
}
