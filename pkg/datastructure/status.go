package datastructure

// AccessStatus is the per-road-element accessibility code. The numeric
// values are the historical bereikbaar_status_code values and are part
// of the API contract with the map client.
type AccessStatus int

const (
	// StatusAccessible: an eligible route to the element exists.
	StatusAccessible AccessStatus = 999
	// StatusInaccessible: no eligible route reaches the element, or the
	// vehicle itself is prohibited on it.
	StatusInaccessible AccessStatus = 222
	// StatusOutsideNetwork: the element carries no usable base cost and
	// is outside the managed network.
	StatusOutsideNetwork AccessStatus = 333
)

// severity orders statuses from least to most restrictive. Used for the
// worst-case aggregation over the two directional copies of an element.
func (s AccessStatus) severity() int {
	switch s {
	case StatusOutsideNetwork:
		return 2
	case StatusInaccessible:
		return 1
	default:
		return 0
	}
}

// Worst returns the most restrictive of two statuses.
func (s AccessStatus) Worst(other AccessStatus) AccessStatus {
	if other.severity() > s.severity() {
		return other
	}
	return s
}
