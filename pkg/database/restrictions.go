package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Amsterdam/bereikbaarheid-backend/pkg/datastructure"
)

// RestrictionStore reads the bollard, time window and obstruction
// tables.
type RestrictionStore struct {
	DB *sql.DB
}

func NewRestrictionStore(db *sql.DB) *RestrictionStore {
	return &RestrictionStore{DB: db}
}

// parseDays splits a comma-joined dagen array. Unknown abbreviations
// are dropped rather than failing the whole snapshot.
func parseDays(joined string) []datastructure.Weekday {
	if joined == "" {
		return nil
	}
	var days []datastructure.Weekday
	for _, part := range strings.Split(joined, ",") {
		day, err := datastructure.ParseWeekday(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		days = append(days, day)
	}
	return days
}

func parseClock(s string) (datastructure.ClockTime, error) {
	// time columns come back as HH24:MI via to_char
	return datastructure.ParseClockTime(s)
}

// Bollards returns every bollard with its retraction schedule.
func (s *RestrictionStore) Bollards(ctx context.Context) ([]datastructure.Bollard, error) {
	query := `
	SELECT
		p.paalnummer,
		p.linknr,
		p.type,
		p.standplaats,
		array_to_string(p.dagen, ','),
		to_char(p.begin_tijd, 'HH24:MI'),
		to_char(p.eind_tijd, 'HH24:MI'),
		p.toegangssysteem,
		ST_Y(ST_Transform(p.geometry, 4326)),
		ST_X(ST_Transform(p.geometry, 4326))
	FROM bereikbaarheid.bd_verkeerspalen p
	WHERE p.paalnummer IS NOT NULL;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list bollards: %w", err)
	}
	defer rows.Close()

	bollards := []datastructure.Bollard{}
	for rows.Next() {
		var (
			b           datastructure.Bollard
			kind        sql.NullString
			location    sql.NullString
			days        sql.NullString
			from, until sql.NullString
			entry       sql.NullString
		)
		if err := rows.Scan(
			&b.ID, &b.RoadElement, &kind, &location, &days,
			&from, &until, &entry, &b.Geometry.Lat, &b.Geometry.Lon,
		); err != nil {
			return nil, fmt.Errorf("list bollards: scan row: %w", err)
		}
		b.Type = kind.String
		b.Location = location.String
		b.EntrySystem = entry.String
		b.Days = parseDays(days.String)
		if from.Valid {
			if b.OpenFrom, err = parseClock(from.String); err != nil {
				return nil, fmt.Errorf("list bollards: bollard %s: %w", b.ID, err)
			}
		}
		if until.Valid {
			if b.OpenUntil, err = parseClock(until.String); err != nil {
				return nil, fmt.Errorf("list bollards: bollard %s: %w", b.ID, err)
			}
		}
		bollards = append(bollards, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list bollards: row iteration: %w", err)
	}

	return bollards, nil
}

// TimeWindows returns the time-window road restrictions.
func (s *RestrictionStore) TimeWindows(ctx context.Context) ([]datastructure.TimeWindowRestriction, error) {
	query := `
	SELECT
		t.linknr,
		t.laden_lossen,
		array_to_string(t.dagen, ','),
		to_char(t.begin_tijd, 'HH24:MI'),
		to_char(t.eind_tijd, 'HH24:MI')
	FROM bereikbaarheid.bd_venstertijdwegen t;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list time windows: %w", err)
	}
	defer rows.Close()

	windows := []datastructure.TimeWindowRestriction{}
	for rows.Next() {
		var (
			tw          datastructure.TimeWindowRestriction
			category    sql.NullString
			days        sql.NullString
			from, until sql.NullString
		)
		if err := rows.Scan(&tw.RoadElement, &category, &days, &from, &until); err != nil {
			return nil, fmt.Errorf("list time windows: scan row: %w", err)
		}
		tw.Category = category.String
		tw.Days = parseDays(days.String)
		if from.Valid {
			if tw.From, err = parseClock(from.String); err != nil {
				return nil, fmt.Errorf("list time windows: element %d: %w", tw.RoadElement, err)
			}
		}
		if until.Valid {
			if tw.To, err = parseClock(until.String); err != nil {
				return nil, fmt.Errorf("list time windows: element %d: %w", tw.RoadElement, err)
			}
		}
		windows = append(windows, tw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list time windows: row iteration: %w", err)
	}

	return windows, nil
}

// Obstructions returns the obstructions overlapping [from, to].
func (s *RestrictionStore) Obstructions(ctx context.Context, from, to time.Time) ([]datastructure.Obstruction, error) {
	query := `
	SELECT
		o.vma_linknr,
		o.start_date,
		o.end_date,
		o.kenmerk,
		o.werkzaamheden,
		o.url,
		o.opmerking
	FROM bereikbaarheid.bd_stremmingen o
	WHERE o.start_date <= $1
	AND o.end_date >= $2;
	`
	rows, err := s.DB.QueryContext(ctx, query, to, from)
	if err != nil {
		return nil, fmt.Errorf("list obstructions: %w", err)
	}
	defer rows.Close()

	obstructions := []datastructure.Obstruction{}
	for rows.Next() {
		var (
			o         datastructure.Obstruction
			reference sql.NullString
			activity  sql.NullString
			url       sql.NullString
			remark    sql.NullString
		)
		if err := rows.Scan(
			&o.RoadElement, &o.StartDate, &o.EndDate,
			&reference, &activity, &url, &remark,
		); err != nil {
			return nil, fmt.Errorf("list obstructions: scan row: %w", err)
		}
		o.Reference = reference.String
		o.Activity = activity.String
		o.URL = url.String
		o.Remark = remark.String
		obstructions = append(obstructions, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list obstructions: row iteration: %w", err)
	}

	return obstructions, nil
}
