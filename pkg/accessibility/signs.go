package accessibility

import (
	"strings"

	"github.com/Amsterdam/bereikbaarheid-backend/pkg/datastructure"
)

// SignApplies reports whether a prohibition sign applies to the given
// vehicle. Categorical models match on vehicle type, dimensional models
// when the vehicle value strictly exceeds the sign threshold.
func SignApplies(s datastructure.TrafficSign, p datastructure.VehicleProfile) bool {
	heavyCompanyCar := p.IsCompanyCar() && p.MaxAllowedWeight > companyCarWeightLimit

	switch strings.ToUpper(s.Model) {
	case "C01":
		return true
	case "C07", "C07ZB":
		return heavyCompanyCar
	case "C07A":
		return p.IsBus()
	case "C07B":
		return heavyCompanyCar || p.IsBus()
	case "C10":
		return p.HasTrailer
	case "C17":
		return p.Length > s.Value
	case "C18":
		return p.Width > s.Value
	case "C19":
		return p.Height > s.Value
	case "C20":
		return p.AxleWeight > s.Value
	case "C21", "C21_ZB":
		return p.TotalWeight > s.Value
	}
	return false
}

// MatchSigns pre-filters signs on validity category (case-insensitive)
// and keeps the ones applying to the vehicle.
func MatchSigns(signs []datastructure.TrafficSign, categories []string, p datastructure.VehicleProfile) []datastructure.TrafficSign {
	wanted := make(map[string]bool, len(categories))
	for _, c := range categories {
		wanted[strings.ToLower(c)] = true
	}

	matched := []datastructure.TrafficSign{}
	for _, s := range signs {
		if len(wanted) > 0 && !wanted[strings.ToLower(s.Category)] {
			continue
		}
		if s.RoadElement == 0 {
			// sign not validated against a network link
			continue
		}
		if SignApplies(s, p) {
			matched = append(matched, s)
		}
	}
	return matched
}
