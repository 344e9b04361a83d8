package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Amsterdam/bereikbaarheid-backend/pkg/datastructure"
)

// SignStore reads the mapped traffic signs (borden_mapping).
type SignStore struct {
	DB *sql.DB
}

func NewSignStore(db *sql.DB) *SignStore {
	return &SignStore{DB: db}
}

// TrafficSigns returns the signs in the given validity categories,
// validated against a network link, with their coordinate reprojected
// from RD New to WGS84. An empty category list returns all signs.
func (s *SignStore) TrafficSigns(ctx context.Context, categories []string) ([]datastructure.TrafficSign, error) {
	query := `
	SELECT
		m.bord_id,
		m.rvv_modelnummer,
		m.tekst_waarde,
		m.tekst,
		m.geldigheid,
		m.link_gevalideerd,
		m.kijkrichting,
		m.onderbord_tekst,
		m.verkeersbesluit,
		m.panorama,
		x.name,
		ST_Y(ST_Transform(ST_SetSRID(ST_MakePoint(m.rd_x, m.rd_y), 28992), 4326)),
		ST_X(ST_Transform(ST_SetSRID(ST_MakePoint(m.rd_x, m.rd_y), 28992), 4326))
	FROM bereikbaarheid.borden_mapping m
	LEFT JOIN bereikbaarheid.netwerk2020_bebording x
		ON m.link_gevalideerd = x.id
	WHERE m.link_gevalideerd <> 0
	AND ($1 = '' OR LOWER(m.geldigheid) = ANY(string_to_array($1, ';')));
	`
	lowered := make([]string, len(categories))
	for i, c := range categories {
		lowered[i] = strings.ToLower(c)
	}

	rows, err := s.DB.QueryContext(ctx, query, strings.Join(lowered, ";"))
	if err != nil {
		return nil, fmt.Errorf("list traffic signs: %w", err)
	}
	defer rows.Close()

	signs := []datastructure.TrafficSign{}
	for rows.Next() {
		var (
			sign       datastructure.TrafficSign
			value      sql.NullFloat64
			label      sql.NullString
			direction  sql.NullInt64
			additional sql.NullString
			decree     sql.NullString
			panorama   sql.NullString
			street     sql.NullString
		)
		if err := rows.Scan(
			&sign.ID, &sign.Model, &value, &label, &sign.Category,
			&sign.RoadElement, &direction, &additional, &decree,
			&panorama, &street, &sign.Coord.Lat, &sign.Coord.Lon,
		); err != nil {
			return nil, fmt.Errorf("list traffic signs: scan row: %w", err)
		}
		sign.Value = value.Float64
		sign.Label = label.String
		sign.ViewDirection = int(direction.Int64)
		sign.AdditionalInfo = additional.String
		sign.TrafficDecree = decree.String
		sign.PanoramaURL = panorama.String
		sign.StreetName = street.String
		signs = append(signs, sign)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list traffic signs: row iteration: %w", err)
	}

	return signs, nil
}
