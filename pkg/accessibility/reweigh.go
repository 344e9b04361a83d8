package accessibility

import (
	"github.com/Amsterdam/bereikbaarheid-backend/pkg/datastructure"
)

// Restriction penalty multipliers. The factors are chosen so that every
// tier dominates any plausible base-cost differential: routing only
// crosses a restricted element when no unrestricted alternative exists
// at all.
const (
	restrictedFactor = 10_000.0
	offNetworkFactor = restrictedFactor * restrictedFactor
)

// Tier is the restriction severity of a directed edge for a query
// window. Higher tiers get strictly larger cost multipliers.
type Tier int

const (
	// TierNone: no restriction applies, base cost is kept.
	TierNone Tier = iota
	// TierRestricted: on the car network, but a bollard or time-window
	// restriction on the element is active for the query window.
	TierRestricted
	// TierRestrictedOffNetwork: the restriction is active and the
	// element is not on the car network at all.
	TierRestrictedOffNetwork
	// TierOffNetwork: the element is categorically not on the car
	// network, independent of any schedule.
	TierOffNetwork
)

// PenaltyPolicy selects the off-network multiplier. The two historical
// query variants used 10,000^2 and 2x10,000^2 for the same situation;
// both are kept as named policies with the stricter one as default.
type PenaltyPolicy int

const (
	PolicyConservative PenaltyPolicy = iota
	PolicyLegacy
)

func (p PenaltyPolicy) offNetworkMultiplier() float64 {
	if p == PolicyLegacy {
		return offNetworkFactor
	}
	return 2 * offNetworkFactor
}

func (p PenaltyPolicy) multiplier(t Tier) float64 {
	switch t {
	case TierRestricted:
		return restrictedFactor
	case TierRestrictedOffNetwork:
		return offNetworkFactor
	case TierOffNetwork:
		return p.offNetworkMultiplier()
	default:
		return 1
	}
}

// Reweigher turns base edge costs into schedule-aware adjusted costs.
// It is built once per evaluation from the restriction snapshot and is
// read-only afterwards.
type Reweigher struct {
	policy   PenaltyPolicy
	bollards map[int64][]datastructure.Bollard
	windows  map[int64][]datastructure.TimeWindowRestriction
}

func NewReweigher(policy PenaltyPolicy, bollards []datastructure.Bollard, windows []datastructure.TimeWindowRestriction) *Reweigher {
	r := &Reweigher{
		policy:   policy,
		bollards: make(map[int64][]datastructure.Bollard),
		windows:  make(map[int64][]datastructure.TimeWindowRestriction),
	}
	for _, b := range bollards {
		r.bollards[b.RoadElement] = append(r.bollards[b.RoadElement], b)
	}
	for _, tw := range windows {
		r.windows[tw.RoadElement] = append(r.windows[tw.RoadElement], tw)
	}
	return r
}

// Restricted reports whether any bollard or time-window restriction on
// the edge's road element is active during the query window.
func (r *Reweigher) Restricted(e datastructure.RoadEdge, w *datastructure.TemporalWindow) bool {
	id := e.RoadElementID()
	for _, b := range r.bollards[id] {
		if BollardBlocks(b, w) {
			return true
		}
	}
	for _, tw := range r.windows[id] {
		if TimeWindowBlocks(tw, w) {
			return true
		}
	}
	return false
}

// EdgeTier classifies the edge for the query window.
func (r *Reweigher) EdgeTier(e datastructure.RoadEdge, w *datastructure.TemporalWindow) Tier {
	restricted := r.Restricted(e, w)
	if !e.CarNetwork {
		if restricted {
			return TierRestrictedOffNetwork
		}
		return TierOffNetwork
	}
	if restricted {
		return TierRestricted
	}
	return TierNone
}

// AdjustedCost returns the reweighted cost of the edge together with
// the tier that produced it. The result is always >= the base cost.
func (r *Reweigher) AdjustedCost(e datastructure.RoadEdge, w *datastructure.TemporalWindow) (float64, Tier) {
	tier := r.EdgeTier(e, w)
	return e.Cost * r.policy.multiplier(tier), tier
}

// BollardsOnElement returns the bollards registered on a road element.
func (r *Reweigher) BollardsOnElement(id int64) []datastructure.Bollard {
	return r.bollards[id]
}
