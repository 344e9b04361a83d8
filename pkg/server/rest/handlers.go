package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Amsterdam/bereikbaarheid-backend/pkg/datastructure"
	"github.com/Amsterdam/bereikbaarheid-backend/pkg/server"
	"github.com/Amsterdam/bereikbaarheid-backend/pkg/server/rest/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

type AccessibilityService interface {
	ClassifyNetwork(ctx context.Context, profile datastructure.VehicleProfile,
		permits datastructure.PermitRequest, window *datastructure.TemporalWindow,
		origin *datastructure.Coordinate) (service.NetworkClassification, error)
	Isochrones(ctx context.Context, lat, lon float64) ([]service.IsochroneRoad, error)
	RouteBollards(ctx context.Context, lat, lon float64,
		window *datastructure.TemporalWindow) ([]datastructure.Bollard, error)
	ObstructionStatuses(ctx context.Context, from, to time.Time) ([]service.ObstructionStatus, error)
	PermitAdvice(ctx context.Context, lat, lon float64, profile datastructure.VehicleProfile,
		permits datastructure.PermitRequest) (service.PermitAdvice, error)
	MatchingTrafficSigns(ctx context.Context, categories []string,
		profile datastructure.VehicleProfile) ([]datastructure.TrafficSign, error)
	RoadElement(ctx context.Context, id int64) (datastructure.RoadElementDetail, error)
	LoadUnload(ctx context.Context) ([]datastructure.LoadUnloadSection, error)
}

type AccessibilityHandler struct {
	svc          AccessibilityService
	promeMetrics *metrics
}

func AccessibilityRouter(r *chi.Mux, svc AccessibilityService, m *metrics) {
	handler := &AccessibilityHandler{svc, m}

	r.Group(func(r chi.Router) {
		r.Route("/v1", func(r chi.Router) {
			r.Get("/roads/prohibitory", handler.prohibitoryRoads)
			r.Get("/roads/isochrones", handler.isochrones)
			r.Get("/bollards/", handler.bollards)
			r.Get("/road-obstructions/", handler.roadObstructions)
			r.Get("/road-elements/{id}", handler.roadElements)
			r.Get("/road-sections/load-unload/", handler.loadUnload)
			r.Get("/traffic-signs", handler.trafficSigns)
			r.Get("/permits", handler.permits)
		})
		r.Get("/status/health", handler.health)
	})
}

// VehicleQuery carries the vehicle properties every accessibility
// endpoint accepts, with the historical query parameter names.
type VehicleQuery struct {
	VehicleType             string  `validate:"required"`
	VehicleLength           float64 `validate:"gte=0,lte=22"`
	VehicleWidth            float64 `validate:"gte=0,lte=3"`
	VehicleHeight           float64 `validate:"gt=0,lte=4"`
	VehicleAxleWeight       float64 `validate:"gte=0,lte=12000"`
	VehicleTotalWeight      float64 `validate:"gte=0,lte=60000"`
	VehicleMaxAllowedWeight float64 `validate:"gte=0,lte=60000"`
	VehicleHasTrailer       bool
}

func (v VehicleQuery) profile() datastructure.VehicleProfile {
	return datastructure.VehicleProfile{
		Type:             datastructure.VehicleType(v.VehicleType),
		Length:           v.VehicleLength,
		Width:            v.VehicleWidth,
		Height:           v.VehicleHeight,
		AxleWeight:       v.VehicleAxleWeight,
		TotalWeight:      v.VehicleTotalWeight,
		MaxAllowedWeight: v.VehicleMaxAllowedWeight,
		HasTrailer:       v.VehicleHasTrailer,
	}
}

func parseVehicleQuery(q url.Values) (VehicleQuery, error) {
	var v VehicleQuery
	var err error

	v.VehicleType = q.Get("vehicleType")
	if v.VehicleLength, err = queryFloat(q, "vehicleLength"); err != nil {
		return v, err
	}
	if v.VehicleWidth, err = queryFloat(q, "vehicleWidth"); err != nil {
		return v, err
	}
	if v.VehicleHeight, err = queryFloat(q, "vehicleHeight"); err != nil {
		return v, err
	}
	if v.VehicleAxleWeight, err = queryFloat(q, "vehicleAxleWeight"); err != nil {
		return v, err
	}
	if v.VehicleTotalWeight, err = queryFloat(q, "vehicleTotalWeight"); err != nil {
		return v, err
	}
	if v.VehicleMaxAllowedWeight, err = queryFloat(q, "vehicleMaxAllowedWeight"); err != nil {
		return v, err
	}
	if v.VehicleHasTrailer, err = queryBool(q, "vehicleHasTrailer"); err != nil {
		return v, err
	}
	return v, nil
}

func parsePermitQuery(q url.Values) (datastructure.PermitRequest, error) {
	var p datastructure.PermitRequest
	var err error
	if p.LowEmissionZone, err = queryBool(q, "permitLowEmissionZone"); err != nil {
		return p, err
	}
	if p.HeavyGoodsZone, err = queryBool(q, "permitZzv"); err != nil {
		return p, err
	}
	return p, nil
}

// LocationQuery is a lat/lon pair inside the service area.
type LocationQuery struct {
	Lat float64 `validate:"required,gt=-90,lt=90"`
	Lon float64 `validate:"required,gt=-180,lt=180"`
}

func parseLocationQuery(q url.Values) (LocationQuery, error) {
	var l LocationQuery
	var err error
	if l.Lat, err = queryFloat(q, "lat"); err != nil {
		return l, err
	}
	if l.Lon, err = queryFloat(q, "lon"); err != nil {
		return l, err
	}
	return l, nil
}

// parseWindowQuery parses the optional dayOfTheWeek/timeFrom/timeTo
// trio. The three parameters depend on each other: either all present
// or none.
func parseWindowQuery(q url.Values) (*datastructure.TemporalWindow, error) {
	day := q.Get("dayOfTheWeek")
	from := q.Get("timeFrom")
	to := q.Get("timeTo")

	if day == "" && from == "" && to == "" {
		return nil, nil
	}
	if day == "" || from == "" || to == "" {
		return nil, errors.New("dayOfTheWeek, timeFrom and timeTo must be provided together")
	}

	d, err := datastructure.ParseWeekday(day)
	if err != nil {
		return nil, err
	}
	f, err := queryClock(from)
	if err != nil {
		return nil, err
	}
	t, err := queryClock(to)
	if err != nil {
		return nil, err
	}
	return &datastructure.TemporalWindow{Day: d, From: f, To: t}, nil
}

func queryFloat(q url.Values, name string) (float64, error) {
	s := q.Get(name)
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parameter %s is not a number", name)
	}
	return f, nil
}

func queryBool(q url.Values, name string) (bool, error) {
	s := q.Get(name)
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("parameter %s is not a boolean", name)
	}
	return b, nil
}

// queryClock accepts both "08:00" and the historical "08:00:00".
func queryClock(s string) (datastructure.ClockTime, error) {
	if len(s) == len("08:00:00") {
		s = s[:len("08:00")]
	}
	return datastructure.ParseClockTime(s)
}

func validateStruct(data interface{}) []error {
	validate := validator.New()
	err := validate.Struct(data)
	if err == nil {
		return nil
	}
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)
	return translateError(err, trans)
}

// GeoJSON response envelope per rfc7946 section 3.3, the format the
// map client consumes.
type Feature struct {
	Type       string                 `json:"type"`
	Geometry   *Geometry              `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

type Geometry struct {
	Type        string      `json:"type"`
	Coordinates interface{} `json:"coordinates"`
}

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

func NewFeatureCollection(features []Feature) *FeatureCollection {
	if features == nil {
		features = []Feature{}
	}
	return &FeatureCollection{Type: "FeatureCollection", Features: features}
}

func lineGeometry(coords []datastructure.Coordinate) *Geometry {
	if len(coords) == 0 {
		return nil
	}
	line := make([][2]float64, len(coords))
	for i, c := range coords {
		line[i] = [2]float64{c.Lon, c.Lat}
	}
	return &Geometry{Type: "LineString", Coordinates: line}
}

func pointGeometry(c datastructure.Coordinate) *Geometry {
	return &Geometry{Type: "Point", Coordinates: [2]float64{c.Lon, c.Lat}}
}

// prohibitoryRoads
//
//	@Summary		road elements not plainly accessible for a vehicle.
//	@Description	classifies the whole road network for the given vehicle and permits and returns the road elements inside Amsterdam with a restriction, as a GeoJSON FeatureCollection. An optional dayOfTheWeek/timeFrom/timeTo window restricts the evaluation moment, an optional lat/lon overrides the routing origin.
//	@Tags			roads
//	@Produce		application/json
//	@Router			/v1/roads/prohibitory [get]
//	@Success		200	{object}	FeatureCollection
//	@Failure		400	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *AccessibilityHandler) prohibitoryRoads(w http.ResponseWriter, r *http.Request) {
	vehicle, err := parseVehicleQuery(r.URL.Query())
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	permits, err := parsePermitQuery(r.URL.Query())
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if vv := validateStruct(vehicle); vv != nil {
		render.Render(w, r, ErrValidation(errors.New("invalid vehicle parameters"), vv))
		return
	}
	window, err := parseWindowQuery(r.URL.Query())
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	var origin *datastructure.Coordinate
	if r.URL.Query().Get("lat") != "" || r.URL.Query().Get("lon") != "" {
		loc, err := parseLocationQuery(r.URL.Query())
		if err != nil {
			render.Render(w, r, ErrInvalidRequest(err))
			return
		}
		if vv := validateStruct(loc); vv != nil {
			render.Render(w, r, ErrValidation(errors.New("invalid location"), vv))
			return
		}
		origin = &datastructure.Coordinate{Lat: loc.Lat, Lon: loc.Lon}
	}

	h.promeMetrics.AccessibilityQueryCount.WithLabelValues("prohibitory_roads").Inc()
	result, err := h.svc.ClassifyNetwork(r.Context(), vehicle.profile(), permits, window, origin)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}

	features := make([]Feature, 0, len(result.Roads))
	for _, road := range result.Roads {
		features = append(features, Feature{
			Type:     "Feature",
			Geometry: lineGeometry(road.Geometry),
			Properties: map[string]interface{}{
				"id":                     road.ID,
				"bereikbaar_status_code": road.StatusCode,
			},
		})
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewFeatureCollection(features))
}

// isochrones
//
//	@Summary		travel times from a location over the road network.
//	@Description	returns per road element inside Amsterdam the travel time in seconds from the network node nearest to lat/lon.
//	@Tags			roads
//	@Produce		application/json
//	@Router			/v1/roads/isochrones [get]
//	@Success		200	{object}	FeatureCollection
//	@Failure		400	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *AccessibilityHandler) isochrones(w http.ResponseWriter, r *http.Request) {
	loc, err := parseLocationQuery(r.URL.Query())
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if vv := validateStruct(loc); vv != nil {
		render.Render(w, r, ErrValidation(errors.New("invalid location"), vv))
		return
	}

	h.promeMetrics.AccessibilityQueryCount.WithLabelValues("isochrones").Inc()
	roads, err := h.svc.Isochrones(r.Context(), loc.Lat, loc.Lon)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}

	features := make([]Feature, 0, len(roads))
	for _, road := range roads {
		features = append(features, Feature{
			Type:     "Feature",
			Geometry: lineGeometry(road.Geometry),
			Properties: map[string]interface{}{
				"id":        road.ID,
				"totalcost": road.TotalCostSeconds,
			},
		})
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewFeatureCollection(features))
}

// bollards
//
//	@Summary		bollards on the route to a location.
//	@Description	routes to the road element nearest to lat/lon, avoiding closed bollards where possible, and returns the blocking bollards still encountered.
//	@Tags			bollards
//	@Produce		application/json
//	@Router			/v1/bollards/ [get]
//	@Success		200	{object}	FeatureCollection
//	@Failure		400	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *AccessibilityHandler) bollards(w http.ResponseWriter, r *http.Request) {
	loc, err := parseLocationQuery(r.URL.Query())
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if vv := validateStruct(loc); vv != nil {
		render.Render(w, r, ErrValidation(errors.New("invalid location"), vv))
		return
	}
	window, err := parseWindowQuery(r.URL.Query())
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	h.promeMetrics.AccessibilityQueryCount.WithLabelValues("bollards").Inc()
	bollards, err := h.svc.RouteBollards(r.Context(), loc.Lat, loc.Lon, window)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}

	features := make([]Feature, 0, len(bollards))
	for _, b := range bollards {
		days := make([]string, len(b.Days))
		for i, d := range b.Days {
			days[i] = string(d)
		}
		features = append(features, Feature{
			Type:     "Feature",
			Geometry: pointGeometry(b.Geometry),
			Properties: map[string]interface{}{
				"paalnummer":      b.ID,
				"type":            b.Type,
				"standplaats":     b.Location,
				"dagen":           days,
				"begin_tijd":      b.OpenFrom.String(),
				"eind_tijd":       b.OpenUntil.String(),
				"toegangssysteem": b.EntrySystem,
				"linknr":          b.RoadElement,
			},
		})
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewFeatureCollection(features))
}

// RoadObstructionsQuery is the date + time span road obstructions are
// evaluated for. The date defaults to today, the time span to the whole
// day.
type RoadObstructionsQuery struct {
	Date     string `validate:"omitempty,datetime=2006-01-02"`
	TimeFrom string
	TimeTo   string
}

// roadObstructions
//
//	@Summary		road elements obstructed during a time span.
//	@Description	returns the road elements that are obstructed, or cut off by obstructions elsewhere, during the given date and time span.
//	@Tags			road-obstructions
//	@Produce		application/json
//	@Router			/v1/road-obstructions/ [get]
//	@Success		200	{object}	FeatureCollection
//	@Failure		400	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *AccessibilityHandler) roadObstructions(w http.ResponseWriter, r *http.Request) {
	q := RoadObstructionsQuery{
		Date:     r.URL.Query().Get("date"),
		TimeFrom: r.URL.Query().Get("timeFrom"),
		TimeTo:   r.URL.Query().Get("timeTo"),
	}
	if vv := validateStruct(q); vv != nil {
		render.Render(w, r, ErrValidation(errors.New("invalid time span"), vv))
		return
	}
	if q.TimeFrom == "" {
		q.TimeFrom = "00:00"
	}
	if q.TimeTo == "" {
		q.TimeTo = "23:59"
	}

	day := time.Now()
	if q.Date != "" {
		var err error
		day, err = time.Parse("2006-01-02", q.Date)
		if err != nil {
			render.Render(w, r, ErrInvalidRequest(err))
			return
		}
	}
	from, err := combineDayTime(day, q.TimeFrom)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	to, err := combineDayTime(day, q.TimeTo)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if to.Before(from) {
		render.Render(w, r, ErrInvalidRequest(errors.New("timeTo must be later than timeFrom")))
		return
	}

	h.promeMetrics.AccessibilityQueryCount.WithLabelValues("road_obstructions").Inc()
	statuses, err := h.svc.ObstructionStatuses(r.Context(), from, to)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}

	features := make([]Feature, 0, len(statuses))
	for _, s := range statuses {
		obstructions := make([]map[string]interface{}, 0, len(s.Obstructions))
		for _, o := range s.Obstructions {
			obstructions = append(obstructions, map[string]interface{}{
				"kenmerk":       o.Reference,
				"werkzaamheden": o.Activity,
				"url":           o.URL,
				"opmerking":     o.Remark,
				"start_date":    o.StartDate.Format("2006-01-02"),
				"end_date":      o.EndDate.Format("2006-01-02"),
			})
		}
		features = append(features, Feature{
			Type:     "Feature",
			Geometry: lineGeometry(s.Geometry),
			Properties: map[string]interface{}{
				"id":                     s.RoadElement,
				"street_name":            s.StreetName,
				"bereikbaar_status_code": s.StatusCode,
				"obstructions":           obstructions,
			},
		})
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewFeatureCollection(features))
}

func combineDayTime(day time.Time, clock string) (time.Time, error) {
	c, err := queryClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), int(c)/60, int(c)%60, 0, 0, day.Location()), nil
}

// roadElements
//
//	@Summary		one road element with measurements and obstructions.
//	@Description	returns a single road element with its traffic counts and current obstructions.
//	@Tags			road-elements
//	@Produce		application/json
//	@Router			/v1/road-elements/{id} [get]
//	@Success		200	{object}	FeatureCollection
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *AccessibilityHandler) roadElements(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(errors.New("id must be an integer")))
		return
	}

	h.promeMetrics.AccessibilityQueryCount.WithLabelValues("road_elements").Inc()
	detail, err := h.svc.RoadElement(r.Context(), id)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}

	counts := make([]map[string]interface{}, 0, len(detail.TrafficCounts))
	for _, c := range detail.TrafficCounts {
		counts = append(counts, map[string]interface{}{
			"directions_1":        c.Direction1,
			"directions_2":        c.Direction2,
			"known_interruptions": c.KnownInterruptions,
			"langzaam_verkeer":    c.SlowTraffic,
			"snel_verkeer":        c.FastTraffic,
			"link_to_file":        c.LinkToFile,
			"location_name":       c.LocationName,
			"measures_between":    c.MeasuresBetween,
			"method":              c.Method,
			"remarks":             c.Remarks,
			"traffic_type":        c.TrafficType,
			"year":                c.Year,
		})
	}
	obstructions := make([]map[string]interface{}, 0, len(detail.Obstructions))
	for _, o := range detail.Obstructions {
		obstructions = append(obstructions, map[string]interface{}{
			"kenmerk":       o.Reference,
			"werkzaamheden": o.Activity,
			"url":           o.URL,
			"opmerking":     o.Remark,
			"start_date":    o.StartDate.Format("2006-01-02"),
			"end_date":      o.EndDate.Format("2006-01-02"),
		})
	}

	feature := Feature{
		Type:     "Feature",
		Geometry: lineGeometry(detail.Geometry),
		Properties: map[string]interface{}{
			"id":                detail.ID,
			"length_in_m":       detail.LengthInM,
			"max_speed_in_km":   detail.MaxSpeedKmH,
			"street_name":       detail.StreetName,
			"traffic_counts":    counts,
			"road_obstructions": obstructions,
		},
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewFeatureCollection([]Feature{feature}))
}

// loadUnload
//
//	@Summary		road sections with load/unload windows.
//	@Tags			road-sections
//	@Produce		application/json
//	@Router			/v1/road-sections/load-unload/ [get]
//	@Success		200	{object}	FeatureCollection
//	@Failure		500	{object}	ErrResponse
func (h *AccessibilityHandler) loadUnload(w http.ResponseWriter, r *http.Request) {
	h.promeMetrics.AccessibilityQueryCount.WithLabelValues("load_unload").Inc()
	sections, err := h.svc.LoadUnload(r.Context())
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}

	features := make([]Feature, 0, len(sections))
	for _, s := range sections {
		windows := make([]map[string]interface{}, 0, len(s.Windows))
		for _, lu := range s.Windows {
			days := make([]string, len(lu.Days))
			for i, d := range lu.Days {
				days[i] = string(d)
			}
			windows = append(windows, map[string]interface{}{
				"category":   lu.Category,
				"days":       days,
				"start_time": lu.From.String(),
				"end_time":   lu.To.String(),
			})
		}
		features = append(features, Feature{
			Type:     "Feature",
			Geometry: lineGeometry(s.Geometry),
			Properties: map[string]interface{}{
				"id":          s.RoadElement,
				"street_name": s.StreetName,
				"load_unload": windows,
			},
		})
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewFeatureCollection(features))
}

// TrafficSignsQuery carries the sign categories to search in.
type TrafficSignsQuery struct {
	Categories []string `validate:"required,min=1"`
}

// trafficSigns
//
//	@Summary		prohibition signs applying to a vehicle.
//	@Description	returns the validated prohibition signs in the requested categories that apply to the given vehicle.
//	@Tags			traffic-signs
//	@Produce		application/json
//	@Router			/v1/traffic-signs [get]
//	@Success		200	{object}	FeatureCollection
//	@Failure		400	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *AccessibilityHandler) trafficSigns(w http.ResponseWriter, r *http.Request) {
	vehicle, err := parseVehicleQuery(r.URL.Query())
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if vv := validateStruct(vehicle); vv != nil {
		render.Render(w, r, ErrValidation(errors.New("invalid vehicle parameters"), vv))
		return
	}
	categories := TrafficSignsQuery{Categories: r.URL.Query()["trafficSignCategories"]}
	if vv := validateStruct(categories); vv != nil {
		render.Render(w, r, ErrValidation(errors.New("invalid traffic sign categories"), vv))
		return
	}

	h.promeMetrics.AccessibilityQueryCount.WithLabelValues("traffic_signs").Inc()
	signs, err := h.svc.MatchingTrafficSigns(r.Context(), categories.Categories, vehicle.profile())
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}

	features := make([]Feature, 0, len(signs))
	for _, s := range signs {
		features = append(features, Feature{
			Type:     "Feature",
			Geometry: pointGeometry(s.Coord),
			Properties: map[string]interface{}{
				"bord_id":          s.ID,
				"rvv_modelnummer":  s.Model,
				"tekst_waarde":     s.Value,
				"tekst":            s.Label,
				"geldigheid":       s.Category,
				"link_gevalideerd": s.RoadElement,
				"straatnaam":       s.StreetName,
				"kijkrichting":     s.ViewDirection,
				"onderbord_tekst":  s.AdditionalInfo,
				"verkeersbesluit":  s.TrafficDecree,
				"panorama":         s.PanoramaURL,
			},
		})
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewFeatureCollection(features))
}

// PermitResponse follows the jsonapi envelope the permit check page of
// the map client consumes.
type PermitResponse struct {
	Data   *PermitData            `json:"data"`
	Errors []string               `json:"errors"`
	Meta   map[string]interface{} `json:"meta"`
}

type PermitData struct {
	ID         int64            `json:"id"`
	Attributes PermitAttributes `json:"attributes"`
}

type PermitAttributes struct {
	HeavyGoodsVehicleZone  bool      `json:"heavy_goods_vehicle_zone"`
	InAmsterdam            bool      `json:"in_amsterdam"`
	LowEmissionZone        bool      `json:"low_emission_zone"`
	RVVPermitNeeded        bool      `json:"rvv_permit_needed"`
	TimeWindow             []string  `json:"time_window"`
	WideRoad               bool      `json:"wide_road"`
	DistanceToDestinationM int       `json:"distance_to_destination_in_m"`
	Geom                   *Geometry `json:"geom"`
}

// permits
//
//	@Summary		permit advice for a destination.
//	@Description	evaluates which permits are needed to reach the road element nearest to lat/lon with the given vehicle.
//	@Tags			permits
//	@Produce		application/json
//	@Router			/v1/permits [get]
//	@Success		200	{object}	PermitResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *AccessibilityHandler) permits(w http.ResponseWriter, r *http.Request) {
	vehicle, err := parseVehicleQuery(r.URL.Query())
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	permits, err := parsePermitQuery(r.URL.Query())
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	loc, err := parseLocationQuery(r.URL.Query())
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if vv := validateStruct(vehicle); vv != nil {
		render.Render(w, r, ErrValidation(errors.New("invalid vehicle parameters"), vv))
		return
	}
	if vv := validateStruct(loc); vv != nil {
		render.Render(w, r, ErrValidation(errors.New("invalid location"), vv))
		return
	}

	h.promeMetrics.AccessibilityQueryCount.WithLabelValues("permits").Inc()
	advice, err := h.svc.PermitAdvice(r.Context(), loc.Lat, loc.Lon, vehicle.profile(), permits)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}

	window := make([]string, len(advice.TimeWindowDays))
	for i, d := range advice.TimeWindowDays {
		window[i] = string(d)
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, &PermitResponse{
		Data: &PermitData{
			ID: advice.RoadElement,
			Attributes: PermitAttributes{
				HeavyGoodsVehicleZone:  advice.HeavyGoodsVehicleZone,
				InAmsterdam:            advice.InAmsterdam,
				LowEmissionZone:        advice.LowEmissionZone,
				RVVPermitNeeded:        advice.RVVPermitNeeded,
				TimeWindow:             window,
				WideRoad:               advice.WideRoad,
				DistanceToDestinationM: int(advice.DistanceToDestinationM),
				Geom:                   pointGeometry(advice.ClosestPoint),
			},
		},
		Errors: []string{},
		Meta:   map[string]interface{}{},
	})
}

// health
//
//	@Summary		liveness check.
//	@Tags			status
//	@Produce		application/json
//	@Router			/status/health [get]
//	@Success		200
func (h *AccessibilityHandler) health(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]string{"status": "OK", "content": "OK"})
}

// ErrResponse renderer type for handling all sorts of errors.
type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusText    string   `json:"status"`          // user-level status message
	AppCode       int64    `json:"code,omitempty"`  // application-specific error code
	ErrorText     string   `json:"error,omitempty"` // application-level error message, for debugging
	ErrValidation []string `json:"validation,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func ErrInternalServerErrorRend(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 500,
		StatusText:     "Internal server error.",
		ErrorText:      err.Error(),
	}
}

func ErrValidation(err error, errV []error) render.Renderer {
	vv := []string{}
	for _, v := range errV {
		vv = append(vv, v.Error())
	}
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 400,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
		ErrValidation:  vv,
	}
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 400,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
	}
}

func ErrRender(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 422,
		StatusText:     "Error rendering response.",
		ErrorText:      err.Error(),
	}
}

func ErrChi(err error) render.Renderer {
	statusText := ""
	switch getStatusCode(err) {
	case http.StatusNotFound:
		statusText = "Resource not found."
	case http.StatusInternalServerError:
		statusText = "Internal server error."
	case http.StatusConflict:
		statusText = "Resource conflict."
	case http.StatusBadRequest:
		statusText = "Bad request."
	case http.StatusServiceUnavailable:
		statusText = "Service unavailable."
	case http.StatusGatewayTimeout:
		statusText = "Timeout."
	default:
		statusText = "Error."
	}

	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: getStatusCode(err),
		StatusText:     statusText,
		ErrorText:      err.Error(),
	}
}

func getStatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var ierr *server.Error
	if !errors.As(err, &ierr) {
		return http.StatusInternalServerError
	} else {
		switch ierr.Code() {
		case server.ErrInternalServerError:
			return http.StatusInternalServerError
		case server.ErrNotFound:
			return http.StatusNotFound
		case server.ErrConflict:
			return http.StatusConflict
		case server.ErrBadParamInput:
			return http.StatusBadRequest
		case server.ErrStoreUnavailable:
			return http.StatusServiceUnavailable
		case server.ErrDeadlineExceeded:
			return http.StatusGatewayTimeout
		default:
			return http.StatusInternalServerError
		}
	}
}

func translateError(err error, trans ut.Translator) (errs []error) {
	if err == nil {
		return nil
	}
	validatorErrs := err.(validator.ValidationErrors)
	for _, e := range validatorErrs {
		translatedErr := fmt.Errorf(e.Translate(trans))
		errs = append(errs, translatedErr)
	}
	return errs
}
