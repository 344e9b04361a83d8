package accessibility

import (
	"testing"

	"github.com/Amsterdam/bereikbaarheid-backend/pkg/datastructure"
	"github.com/stretchr/testify/assert"
)

func companyCar(maxAllowed float64) datastructure.VehicleProfile {
	return datastructure.VehicleProfile{
		Type:             datastructure.VehicleTypeCompanyCar,
		Length:           8,
		Width:            2.2,
		Height:           2.8,
		AxleWeight:       6000,
		TotalWeight:      9000,
		MaxAllowedWeight: maxAllowed,
	}
}

func TestEdgeEligible(t *testing.T) {
	t.Run("all vehicles prohibited", func(t *testing.T) {
		e := datastructure.RoadEdge{ID: 1, Cost: 0.1, ProhibitedAllVehicles: true}
		assert.False(t, EdgeEligible(e, companyCar(3000)))
		assert.False(t, EdgeEligible(e, datastructure.VehicleProfile{Type: datastructure.VehicleTypePassengerCar, Height: 1.5}))
	})

	t.Run("company car prohibition needs the weight threshold", func(t *testing.T) {
		e := datastructure.RoadEdge{ID: 2, Cost: 0.1, ProhibitedCompanyCars: true}

		assert.False(t, EdgeEligible(e, companyCar(7000)))
		// at or below 3500 kg the C07 prohibition does not apply
		assert.True(t, EdgeEligible(e, companyCar(3500)))
		// nor to other vehicle types regardless of weight
		heavyBus := companyCar(7000)
		heavyBus.Type = datastructure.VehicleTypeBus
		assert.True(t, EdgeEligible(datastructure.RoadEdge{ID: 2, Cost: 0.1, ProhibitedCompanyCars: true}, heavyBus))
	})

	t.Run("bus and trailer prohibitions", func(t *testing.T) {
		bus := datastructure.VehicleProfile{Type: datastructure.VehicleTypeBus, Height: 3}
		assert.False(t, EdgeEligible(datastructure.RoadEdge{ID: 3, Cost: 0.1, ProhibitedBuses: true}, bus))
		assert.True(t, EdgeEligible(datastructure.RoadEdge{ID: 3, Cost: 0.1, ProhibitedTrailers: true}, bus))

		withTrailer := companyCar(3000)
		withTrailer.HasTrailer = true
		assert.False(t, EdgeEligible(datastructure.RoadEdge{ID: 3, Cost: 0.1, ProhibitedTrailers: true}, withTrailer))
	})

	t.Run("dimension limits", func(t *testing.T) {
		e := datastructure.RoadEdge{
			ID: 4, Cost: 0.1,
			MaxLength: 10, MaxWidth: 2.3, MaxHeight: 3.1,
			MaxAxleWeight: 8000, MaxTotalWeight: 10_000,
		}
		p := companyCar(3000)
		assert.True(t, EdgeEligible(e, p))

		over := p
		over.Height = 3.2
		assert.False(t, EdgeEligible(e, over))

		over = p
		over.TotalWeight = 10_001
		assert.False(t, EdgeEligible(e, over))
	})

	t.Run("unset limits never trigger", func(t *testing.T) {
		e := datastructure.RoadEdge{ID: 5, Cost: 0.1}
		p := companyCar(3000)
		p.Length = 22
		p.TotalWeight = 60_000
		assert.True(t, EdgeEligible(e, p))
	})

	t.Run("vehicle type matching is case-insensitive", func(t *testing.T) {
		e := datastructure.RoadEdge{ID: 6, Cost: 0.1, ProhibitedCompanyCars: true}
		p := companyCar(7000)
		p.Type = "Bedrijfsauto"
		assert.False(t, EdgeEligible(e, p))
	})
}

// Relaxing any single dimension of an ineligible vehicle never shrinks
// the eligible edge set.
func TestEdgeEligibleMonotone(t *testing.T) {
	edges := []datastructure.RoadEdge{
		{ID: 1, Cost: 0.1},
		{ID: 2, Cost: 0.2, MaxHeight: 2.4},
		{ID: 3, Cost: 0.3, MaxTotalWeight: 7500},
		{ID: 4, Cost: 0.4, ProhibitedTrailers: true},
		{ID: 5, Cost: 0.5, MaxLength: 9, MaxAxleWeight: 5000},
	}

	strict := companyCar(7000)
	strict.HasTrailer = true

	relaxations := map[string]datastructure.VehicleProfile{}

	lighter := strict
	lighter.TotalWeight = 5000
	relaxations["total weight"] = lighter

	lower := strict
	lower.Height = 2.0
	relaxations["height"] = lower

	noTrailer := strict
	noTrailer.HasTrailer = false
	relaxations["trailer"] = noTrailer

	shorter := strict
	shorter.Length = 6
	relaxations["length"] = shorter

	for name, relaxed := range relaxations {
		t.Run(name, func(t *testing.T) {
			for _, e := range edges {
				if EdgeEligible(e, strict) {
					assert.True(t, EdgeEligible(e, relaxed),
						"edge %d eligible for the stricter profile but not after relaxing", e.ID)
				}
			}
		})
	}
}
