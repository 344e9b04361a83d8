package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Amsterdam/bereikbaarheid-backend/pkg/datastructure"
	"github.com/Amsterdam/bereikbaarheid-backend/pkg/geo"
)

// ElementStore reads the undirected road element view with its traffic
// counts, obstructions and load/unload windows.
type ElementStore struct {
	DB *sql.DB
}

func NewElementStore(db *sql.DB) *ElementStore {
	return &ElementStore{DB: db}
}

func decodeLine(polyline sql.NullString) ([]datastructure.Coordinate, error) {
	if !polyline.Valid {
		return nil, nil
	}
	line, err := geo.DecodePolyline(polyline.String)
	if err != nil {
		return nil, err
	}
	coords := make([]datastructure.Coordinate, len(line))
	for i, loc := range line {
		coords[i] = datastructure.Coordinate{Lat: loc.Lat, Lon: loc.Lon}
	}
	return coords, nil
}

// RoadElement returns one road element with its current obstructions
// and every known traffic count, newest first.
func (s *ElementStore) RoadElement(ctx context.Context, id int64) (datastructure.RoadElementDetail, error) {
	detail := datastructure.RoadElementDetail{
		TrafficCounts: []datastructure.TrafficCount{},
		Obstructions:  []datastructure.Obstruction{},
	}

	elementQuery := `
	SELECT
		t.linknr,
		t.lengte::int,
		t.wettelijke_snelheid_actueel,
		t.name,
		t.zone_zwaar_verkeer_detail,
		ST_AsEncodedPolyline(ST_LineMerge(ST_Transform(t.geom, 4326)))
	FROM bereikbaarheid.out_vma_undirected t
	WHERE t.linknr = $1;
	`
	var (
		speed      sql.NullInt64
		name       sql.NullString
		zoneDetail sql.NullString
		polyline   sql.NullString
	)
	err := s.DB.QueryRowContext(ctx, elementQuery, id).Scan(
		&detail.ID, &detail.LengthInM, &speed, &name, &zoneDetail, &polyline,
	)
	if err == sql.ErrNoRows {
		return detail, datastructure.ErrRoadElementNotFound
	}
	if err != nil {
		return detail, fmt.Errorf("get road element %d: %w", id, err)
	}
	detail.MaxSpeedKmH = int(speed.Int64)
	detail.StreetName = name.String
	detail.HeavyGoodsZoneDetail = zoneDetail.String
	if detail.Geometry, err = decodeLine(polyline); err != nil {
		return detail, fmt.Errorf("get road element %d: geometry: %w", id, err)
	}

	countQuery := `
	SELECT
		t."Richtingen_1", t."Richtingen_2",
		t.storing,
		t."Langzaam_verkeer"::boolean,
		t.snel_verkeer::boolean,
		t.url,
		t."Telpuntnaam",
		t."Tussen",
		t."Meetmethode",
		t."Bijzonderheden",
		t."Type_verkeer",
		t.jaar
	FROM bereikbaarheid.bd_verkeerstellingen t
	WHERE t.vma_linknr = $1
	ORDER BY t.jaar DESC;
	`
	rows, err := s.DB.QueryContext(ctx, countQuery, id)
	if err != nil {
		return detail, fmt.Errorf("get road element %d: traffic counts: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			c                            datastructure.TrafficCount
			dir1, dir2, interruptions    sql.NullString
			slow, fast                   sql.NullBool
			link, location, between      sql.NullString
			method, remarks, trafficType sql.NullString
			year                         sql.NullInt64
		)
		if err := rows.Scan(
			&dir1, &dir2, &interruptions, &slow, &fast, &link,
			&location, &between, &method, &remarks, &trafficType, &year,
		); err != nil {
			return detail, fmt.Errorf("get road element %d: scan traffic count: %w", id, err)
		}
		c.Direction1 = dir1.String
		c.Direction2 = dir2.String
		c.KnownInterruptions = interruptions.String
		c.SlowTraffic = slow.Bool
		c.FastTraffic = fast.Bool
		c.LinkToFile = link.String
		c.LocationName = location.String
		c.MeasuresBetween = between.String
		c.Method = method.String
		c.Remarks = remarks.String
		c.TrafficType = trafficType.String
		c.Year = int(year.Int64)
		detail.TrafficCounts = append(detail.TrafficCounts, c)
	}
	if err := rows.Err(); err != nil {
		return detail, fmt.Errorf("get road element %d: traffic count iteration: %w", id, err)
	}

	obstructionQuery := `
	SELECT
		o.vma_linknr,
		o.start_date,
		o.end_date,
		o.kenmerk,
		o.werkzaamheden,
		o.url,
		o.opmerking
	FROM bereikbaarheid.bd_stremmingen o
	WHERE o.vma_linknr = $1
	AND now() < o.end_date
	ORDER BY o.start_date DESC;
	`
	obsRows, err := s.DB.QueryContext(ctx, obstructionQuery, id)
	if err != nil {
		return detail, fmt.Errorf("get road element %d: obstructions: %w", id, err)
	}
	defer obsRows.Close()

	for obsRows.Next() {
		var (
			o                             datastructure.Obstruction
			reference, activity, url, rem sql.NullString
		)
		if err := obsRows.Scan(
			&o.RoadElement, &o.StartDate, &o.EndDate,
			&reference, &activity, &url, &rem,
		); err != nil {
			return detail, fmt.Errorf("get road element %d: scan obstruction: %w", id, err)
		}
		o.Reference = reference.String
		o.Activity = activity.String
		o.URL = url.String
		o.Remark = rem.String
		detail.Obstructions = append(detail.Obstructions, o)
	}
	if err := obsRows.Err(); err != nil {
		return detail, fmt.Errorf("get road element %d: obstruction iteration: %w", id, err)
	}

	return detail, nil
}

// LoadUnloadSections returns every road section with load/unload
// windows, grouped per section with the windows ordered by end time.
func (s *ElementStore) LoadUnloadSections(ctx context.Context) ([]datastructure.LoadUnloadSection, error) {
	query := `
	SELECT
		t2.linknr,
		t1.name,
		ST_AsEncodedPolyline(ST_LineMerge(ST_Transform(t1.geom, 4326))),
		t2.laden_lossen,
		array_to_string(t2.dagen, ','),
		to_char(t2.begin_tijd, 'HH24:MI'),
		to_char(t2.eind_tijd, 'HH24:MI')
	FROM bereikbaarheid.ht_venstertijdwegen t2
	LEFT JOIN bereikbaarheid.out_vma_undirected t1
		ON t1.linknr = t2.linknr
	WHERE t1.geom IS NOT NULL
	ORDER BY t2.linknr, t2.eind_tijd ASC;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list load/unload sections: %w", err)
	}
	defer rows.Close()

	sections := []datastructure.LoadUnloadSection{}
	for rows.Next() {
		var (
			linknr      int64
			name        sql.NullString
			polyline    sql.NullString
			category    sql.NullString
			days        sql.NullString
			from, until sql.NullString
		)
		if err := rows.Scan(&linknr, &name, &polyline, &category, &days, &from, &until); err != nil {
			return nil, fmt.Errorf("list load/unload sections: scan row: %w", err)
		}

		w := datastructure.LoadUnloadWindow{
			Category: category.String,
			Days:     parseDays(days.String),
		}
		if from.Valid {
			if w.From, err = parseClock(from.String); err != nil {
				return nil, fmt.Errorf("list load/unload sections: element %d: %w", linknr, err)
			}
		}
		if until.Valid {
			if w.To, err = parseClock(until.String); err != nil {
				return nil, fmt.Errorf("list load/unload sections: element %d: %w", linknr, err)
			}
		}

		if n := len(sections); n > 0 && sections[n-1].RoadElement == linknr {
			sections[n-1].Windows = append(sections[n-1].Windows, w)
			continue
		}

		geometry, err := decodeLine(polyline)
		if err != nil {
			return nil, fmt.Errorf("list load/unload sections: element %d geometry: %w", linknr, err)
		}
		sections = append(sections, datastructure.LoadUnloadSection{
			RoadElement: linknr,
			StreetName:  name.String,
			Geometry:    geometry,
			Windows:     []datastructure.LoadUnloadWindow{w},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list load/unload sections: row iteration: %w", err)
	}

	return sections, nil
}
