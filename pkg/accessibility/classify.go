package accessibility

import (
	"github.com/Amsterdam/bereikbaarheid-backend/pkg/datastructure"
)

// DirectionalStatus classifies a single directed edge given the
// per-node aggregate costs of the eligibility-filtered, reweighted
// graph. An edge whose source node never got a cost is unreachable, no
// matter what its own cost says.
func DirectionalStatus(e datastructure.RoadEdge, eligible bool, aggCost map[int64]float64) datastructure.AccessStatus {
	if !e.HasUsableCost() {
		return datastructure.StatusOutsideNetwork
	}
	if _, ok := aggCost[e.Source]; !ok {
		return datastructure.StatusInaccessible
	}
	if !eligible {
		return datastructure.StatusInaccessible
	}
	return datastructure.StatusAccessible
}

// ElementStatuses folds directional edge statuses into one status per
// road element. The most restrictive direction wins: if +id is
// traversable but -id is not, the element reports as not traversable.
func ElementStatuses(edges []datastructure.RoadEdge, eligible func(datastructure.RoadEdge) bool, aggCost map[int64]float64) map[int64]datastructure.AccessStatus {
	statuses := make(map[int64]datastructure.AccessStatus)
	for _, e := range edges {
		s := DirectionalStatus(e, eligible(e), aggCost)
		id := e.RoadElementID()
		if cur, ok := statuses[id]; ok {
			statuses[id] = cur.Worst(s)
		} else {
			statuses[id] = s
		}
	}
	return statuses
}

// tri is a three-valued condition for decision table rules.
type tri int

const (
	either tri = iota
	yes
	no
)

func (t tri) matches(v bool) bool {
	switch t {
	case yes:
		return v
	case no:
		return !v
	default:
		return true
	}
}

// permitRule is one row of the permit outcome table. Inputs are the
// element's zone membership, whether the element is inaccessible for
// the vehicle (status 222), and the permits held.
type permitRule struct {
	lowEmissionZone tri
	heavyGoodsZone  tri
	inaccessible    tri
	permitMilieu    tri
	permitZZV       tri
	code            int
}

// The historical bereikbaar_status_code outcomes for permit/zone
// combinations, evaluated top to bottom, first match wins. Kept as an
// explicit table so every combination can be audited (and exercised by
// tests) instead of being buried in nested conditionals.
var permitRules = []permitRule{
	{yes, yes, yes, yes, yes, 11111},
	{yes, yes, no, yes, yes, 11110},
	{yes, no, no, yes, either, 11100},
	{yes, no, yes, yes, either, 11101},
	{yes, yes, yes, yes, no, 11101},
	{no, yes, yes, either, yes, 11011},
	{yes, yes, yes, no, yes, 11011},
	{no, yes, no, either, yes, 11010},
	{no, no, yes, either, either, 11001},
	{yes, yes, yes, no, no, 11001},
	{yes, no, yes, no, either, 11001},
}

// PermitOutcome maps an element's zone membership, its accessibility
// status and the held permits to the outcome code the map client
// understands. Elements outside the managed network stay 333; elements
// with no matching rule report their plain status.
func PermitOutcome(e datastructure.RoadEdge, status datastructure.AccessStatus, permits datastructure.PermitRequest) int {
	if status == datastructure.StatusOutsideNetwork {
		return int(datastructure.StatusOutsideNetwork)
	}
	inaccessible := status == datastructure.StatusInaccessible
	for _, r := range permitRules {
		if r.lowEmissionZone.matches(e.LowEmissionZone) &&
			r.heavyGoodsZone.matches(e.HeavyGoodsZone) &&
			r.inaccessible.matches(inaccessible) &&
			r.permitMilieu.matches(permits.LowEmissionZone) &&
			r.permitZZV.matches(permits.HeavyGoodsZone) {
			return r.code
		}
	}
	return int(status)
}
