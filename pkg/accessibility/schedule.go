package accessibility

import (
	"github.com/Amsterdam/bereikbaarheid-backend/pkg/datastructure"
)

// scheduleOpen reports whether the query window falls inside a
// configured open schedule (active days + [from, until] clock window).
//
// The interval is closed on both ends: a query window that exactly
// matches the schedule counts as open. The two historical query
// variants disagreed on the boundary direction; this is the deliberate
// resolution, not an inherited accident.
func scheduleOpen(days []datastructure.Weekday, from, until datastructure.ClockTime, w *datastructure.TemporalWindow) bool {
	if w == nil {
		// no day/time in the query: evaluate least restrictive
		return true
	}
	if !weekdayIn(days, w.Day) {
		return false
	}
	return from <= w.From && w.To <= until
}

func weekdayIn(days []datastructure.Weekday, day datastructure.Weekday) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}

// BollardBlocks reports whether the bollard blocks entry on its road
// element during the query window, i.e. the window falls outside the
// times the bollard is retracted.
func BollardBlocks(b datastructure.Bollard, w *datastructure.TemporalWindow) bool {
	return !scheduleOpen(b.Days, b.OpenFrom, b.OpenUntil, w)
}

// TimeWindowBlocks is the same schedule predicate for a load/unload
// window restriction.
func TimeWindowBlocks(tw datastructure.TimeWindowRestriction, w *datastructure.TemporalWindow) bool {
	return !scheduleOpen(tw.Days, tw.From, tw.To, w)
}
