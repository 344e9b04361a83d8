package datastructure

import (
	"fmt"
	"strings"
	"time"
)

// Weekday is a Dutch two-letter day abbreviation as stored in the
// restriction tables ("ma", "di", "wo", "do", "vr", "za", "zo").
type Weekday string

var Weekdays = []Weekday{"ma", "di", "wo", "do", "vr", "za", "zo"}

// ParseWeekday validates a day abbreviation, case-insensitively.
func ParseWeekday(s string) (Weekday, error) {
	for _, d := range Weekdays {
		if strings.EqualFold(s, string(d)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown day of the week %q", s)
}

// ClockTime is a time of day in minutes since midnight.
type ClockTime int

// ParseClockTime parses "HH:MM".
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return ClockTime(t.Hour()*60 + t.Minute()), nil
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// TemporalWindow is the day + time window a query is evaluated for.
// The three fields come as a trio: either all present or the query is
// evaluated without schedule restrictions.
type TemporalWindow struct {
	Day  Weekday
	From ClockTime
	To   ClockTime
}

// Bollard is a retractable barrier (verkeerspaal) on a road element.
// Days and the open window describe when the bollard is retracted, i.e.
// when the element can be entered.
type Bollard struct {
	ID          string // paalnummer
	RoadElement int64  // linknr
	Type        string
	Location    string // standplaats
	Days        []Weekday
	OpenFrom    ClockTime // begin_tijd
	OpenUntil   ClockTime // eind_tijd
	EntrySystem string    // toegangssysteem
	Geometry    Coordinate
}

// TimeWindowRestriction is a load/unload window (venstertijd) on a road
// element. Same day/time shape as a bollard schedule, but it annotates
// permission instead of driving the route cost.
type TimeWindowRestriction struct {
	RoadElement int64 // linknr
	Category    string
	Days        []Weekday
	From        ClockTime
	To          ClockTime
}

// Obstruction is a temporary closure (stremming) of a road element.
type Obstruction struct {
	RoadElement int64 // vma_linknr
	StartDate   time.Time
	EndDate     time.Time
	Reference   string // kenmerk
	Activity    string // werkzaamheden
	URL         string
	Remark      string // opmerking
}

// ActiveDuring reports whether the obstruction overlaps [from, to].
func (o Obstruction) ActiveDuring(from, to time.Time) bool {
	return !o.StartDate.After(to) && !o.EndDate.Before(from)
}

// TrafficSign is a mapped prohibition sign (borden_mapping).
type TrafficSign struct {
	ID             string  // bord_id
	Model          string  // rvv_modelnummer: C01, C07, C07A, C07B, C07ZB, C10, C17..C21, C21_ZB
	Value          float64 // tekst_waarde, threshold for dimensional signs
	Label          string  // tekst
	Category       string  // geldigheid
	RoadElement    int64   // link_gevalideerd
	StreetName     string
	ViewDirection  int // kijkrichting, degrees
	AdditionalInfo string
	TrafficDecree  string // verkeersbesluit
	PanoramaURL    string
	Coord          Coordinate
}

// Traffic sign validity categories as stored in the database, with the
// names the API exposes them under.
const (
	SignCategoryProhibition              = "verbod"
	SignCategoryProhibitionWithException = "verbod, met uitzondering"
	SignCategoryProhibitionAhead         = "vooraankondiging verbod"
)

// SignCategoryFromAPI maps an API category name to the database value.
// Matching is case-insensitive.
func SignCategoryFromAPI(name string) (string, bool) {
	switch strings.ToLower(name) {
	case "prohibition":
		return SignCategoryProhibition, true
	case "prohibition with exception":
		return SignCategoryProhibitionWithException, true
	case "prohibition ahead":
		return SignCategoryProhibitionAhead, true
	}
	return "", false
}
