package datastructure

import "strings"

// VehicleType is one of the RDW vehicle type names, see
// https://opendata.rdw.nl/resource/9dze-d57m.json. Matching is
// case-insensitive everywhere, like the client-side forms.
type VehicleType string

const (
	VehicleTypeCompanyCar   VehicleType = "bedrijfsauto"
	VehicleTypeBus          VehicleType = "bus"
	VehicleTypePassengerCar VehicleType = "personenauto"
)

// VehicleProfile describes the physical properties of the vehicle a
// query is evaluated for. Weights are in kilograms, dimensions in
// meters.
type VehicleProfile struct {
	Type             VehicleType
	Length           float64
	Width            float64
	Height           float64
	AxleWeight       float64
	TotalWeight      float64
	MaxAllowedWeight float64
	HasTrailer       bool
}

func (p VehicleProfile) IsCompanyCar() bool {
	return strings.EqualFold(string(p.Type), string(VehicleTypeCompanyCar))
}

func (p VehicleProfile) IsBus() bool {
	return strings.EqualFold(string(p.Type), string(VehicleTypeBus))
}

// PermitRequest carries the permits held by (or requested for) the
// vehicle: a low emission zone (milieuzone) permit and a heavy goods
// vehicle zone (zone zwaar verkeer) permit.
type PermitRequest struct {
	LowEmissionZone bool
	HeavyGoodsZone  bool
}
