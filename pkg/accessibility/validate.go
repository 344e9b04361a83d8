package accessibility

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Amsterdam/bereikbaarheid-backend/pkg/datastructure"
)

var (
	// ErrInvalidVehicleProfile rejects a profile before any graph work
	// happens.
	ErrInvalidVehicleProfile = errors.New("invalid vehicle profile")
	// ErrInvalidTemporalWindow rejects a day/time window before any
	// graph work happens.
	ErrInvalidTemporalWindow = errors.New("invalid temporal window")
)

// Parameter domains, kept in sync with the validation of the
// client-side vehicle forms.
const (
	maxVehicleLength      = 22.0    // meters
	maxVehicleWidth       = 3.0     // meters
	maxVehicleHeight      = 4.0     // meters
	maxVehicleAxleWeight  = 12_000  // kilograms
	maxVehicleTotalWeight = 60_000  // kilograms
	maxAllowedWeightLimit = 60_000  // kilograms
)

// ValidateProfile checks a vehicle profile against the parameter
// domains. Errors wrap ErrInvalidVehicleProfile.
func ValidateProfile(p datastructure.VehicleProfile) error {
	switch strings.ToLower(string(p.Type)) {
	case string(datastructure.VehicleTypeCompanyCar),
		string(datastructure.VehicleTypeBus),
		string(datastructure.VehicleTypePassengerCar):
	default:
		return fmt.Errorf("%w: unknown vehicle type %q", ErrInvalidVehicleProfile, p.Type)
	}
	if p.Length < 0 || p.Length > maxVehicleLength {
		return fmt.Errorf("%w: length %.2f out of range [0, %.0f]", ErrInvalidVehicleProfile, p.Length, maxVehicleLength)
	}
	if p.Width < 0 || p.Width > maxVehicleWidth {
		return fmt.Errorf("%w: width %.2f out of range [0, %.0f]", ErrInvalidVehicleProfile, p.Width, maxVehicleWidth)
	}
	if p.Height <= 0 || p.Height > maxVehicleHeight {
		return fmt.Errorf("%w: height %.2f out of range (0, %.0f]", ErrInvalidVehicleProfile, p.Height, maxVehicleHeight)
	}
	if p.AxleWeight < 0 || p.AxleWeight > maxVehicleAxleWeight {
		return fmt.Errorf("%w: axle weight %.0f out of range [0, %d]", ErrInvalidVehicleProfile, p.AxleWeight, maxVehicleAxleWeight)
	}
	if p.TotalWeight < 0 || p.TotalWeight > maxVehicleTotalWeight {
		return fmt.Errorf("%w: total weight %.0f out of range [0, %d]", ErrInvalidVehicleProfile, p.TotalWeight, maxVehicleTotalWeight)
	}
	if p.MaxAllowedWeight < 0 || p.MaxAllowedWeight > maxAllowedWeightLimit {
		return fmt.Errorf("%w: max allowed weight %.0f out of range [0, %d]", ErrInvalidVehicleProfile, p.MaxAllowedWeight, maxAllowedWeightLimit)
	}
	return nil
}

// ValidateWindow checks a temporal window. Errors wrap
// ErrInvalidTemporalWindow.
func ValidateWindow(w datastructure.TemporalWindow) error {
	if _, err := datastructure.ParseWeekday(string(w.Day)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTemporalWindow, err)
	}
	if w.To < w.From {
		return fmt.Errorf("%w: end %s before start %s", ErrInvalidTemporalWindow, w.To, w.From)
	}
	return nil
}
