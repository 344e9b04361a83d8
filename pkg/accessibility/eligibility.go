// Package accessibility holds the rules that decide which parts of the
// road network a given vehicle can reach: the per-edge eligibility
// predicate, the schedule-aware cost reweighting used to bias routing
// away from restricted elements, and the per-element classification.
package accessibility

import (
	"github.com/Amsterdam/bereikbaarheid-backend/pkg/datastructure"
)

// weight above which the C07 company car prohibition applies, in kg.
const companyCarWeightLimit = 3500

// EdgeEligible reports whether the vehicle may traverse the edge given
// the edge's prohibition flags and dimension limits. Scheduling
// (bollards, time windows) is deliberately not part of this predicate.
//
// An unset dimension limit (zero) never triggers. Relaxing any single
// vehicle dimension, or clearing the trailer flag, can only grow the
// eligible set.
func EdgeEligible(e datastructure.RoadEdge, p datastructure.VehicleProfile) bool {
	if e.ProhibitedAllVehicles {
		return false
	}
	if e.ProhibitedCompanyCars && p.IsCompanyCar() && p.MaxAllowedWeight > companyCarWeightLimit {
		return false
	}
	if e.ProhibitedBuses && p.IsBus() {
		return false
	}
	if e.ProhibitedTrailers && p.HasTrailer {
		return false
	}
	if limitExceeded(e.MaxLength, p.Length) ||
		limitExceeded(e.MaxWidth, p.Width) ||
		limitExceeded(e.MaxHeight, p.Height) ||
		limitExceeded(e.MaxAxleWeight, p.AxleWeight) ||
		limitExceeded(e.MaxTotalWeight, p.TotalWeight) {
		return false
	}
	return true
}

func limitExceeded(limit, value float64) bool {
	return limit > 0 && limit < value
}
