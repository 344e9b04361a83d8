package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Amsterdam/bereikbaarheid-backend/pkg/datastructure"
	"github.com/Amsterdam/bereikbaarheid-backend/pkg/geo"
)

// NetworkStore reads the directed traffic model network
// (out_vma_directed / out_vma_node).
type NetworkStore struct {
	DB *sql.DB
}

func NewNetworkStore(db *sql.DB) *NetworkStore {
	return &NetworkStore{DB: db}
}

// Edges returns every directed edge of the network with its geometry
// decoded. NULL costs and NULL dimension limits come back as zero,
// meaning "not costed" and "no limit" respectively.
func (s *NetworkStore) Edges(ctx context.Context) ([]datastructure.RoadEdge, error) {
	query := `
	SELECT
		v.id,
		v.source,
		v.target,
		v.cost,
		v.car_network,
		v.c01, v.c07, v.c07a, v.c10,
		v.c17, v.c18, v.c19, v.c20, v.c21,
		v.zone_7_5,
		v.milieuzone,
		v.binnen_amsterdam,
		ST_AsEncodedPolyline(ST_LineMerge(v.geom4326))
	FROM bereikbaarheid.out_vma_directed v;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list network edges: %w", err)
	}
	defer rows.Close()

	edges := make([]datastructure.RoadEdge, 0, 1<<16)
	for rows.Next() {
		var (
			e        datastructure.RoadEdge
			cost     sql.NullFloat64
			c01      sql.NullBool
			c07      sql.NullBool
			c07a     sql.NullBool
			c10      sql.NullBool
			c17      sql.NullFloat64
			c18      sql.NullFloat64
			c19      sql.NullFloat64
			c20      sql.NullFloat64
			c21      sql.NullFloat64
			zone     sql.NullBool
			milieu   sql.NullBool
			inAdam   sql.NullBool
			polyline sql.NullString
		)
		if err := rows.Scan(
			&e.ID, &e.Source, &e.Target, &cost, &e.CarNetwork,
			&c01, &c07, &c07a, &c10,
			&c17, &c18, &c19, &c20, &c21,
			&zone, &milieu, &inAdam, &polyline,
		); err != nil {
			return nil, fmt.Errorf("list network edges: scan row: %w", err)
		}

		e.Cost = cost.Float64
		e.ProhibitedAllVehicles = c01.Bool
		e.ProhibitedCompanyCars = c07.Bool
		e.ProhibitedBuses = c07a.Bool
		e.ProhibitedTrailers = c10.Bool
		e.MaxLength = c17.Float64
		e.MaxWidth = c18.Float64
		e.MaxHeight = c19.Float64
		e.MaxAxleWeight = c20.Float64
		e.MaxTotalWeight = c21.Float64
		e.HeavyGoodsZone = zone.Bool
		e.LowEmissionZone = milieu.Bool
		e.InAmsterdam = inAdam.Bool

		if polyline.Valid {
			line, err := geo.DecodePolyline(polyline.String)
			if err != nil {
				return nil, fmt.Errorf("list network edges: edge %d geometry: %w", e.ID, err)
			}
			e.Geometry = make([]datastructure.Coordinate, len(line))
			for i, loc := range line {
				e.Geometry[i] = datastructure.Coordinate{Lat: loc.Lat, Lon: loc.Lon}
			}
		}

		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list network edges: row iteration: %w", err)
	}

	return edges, nil
}

// StreetNames returns the street name of every road element.
func (s *NetworkStore) StreetNames(ctx context.Context) (map[int64]string, error) {
	query := `
	SELECT t.linknr, t.name
	FROM bereikbaarheid.out_vma_undirected t;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list street names: %w", err)
	}
	defer rows.Close()

	names := make(map[int64]string)
	for rows.Next() {
		var (
			id   int64
			name sql.NullString
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("list street names: scan row: %w", err)
		}
		names[id] = name.String
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list street names: row iteration: %w", err)
	}

	return names, nil
}

// Nodes returns every vertex of the network in WGS84.
func (s *NetworkStore) Nodes(ctx context.Context) ([]datastructure.RoadNode, error) {
	query := `
	SELECT
		n.node,
		ST_Y(ST_Transform(n.geom, 4326)),
		ST_X(ST_Transform(n.geom, 4326))
	FROM bereikbaarheid.out_vma_node n;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list network nodes: %w", err)
	}
	defer rows.Close()

	nodes := make([]datastructure.RoadNode, 0, 1<<15)
	for rows.Next() {
		var n datastructure.RoadNode
		if err := rows.Scan(&n.ID, &n.Coord.Lat, &n.Coord.Lon); err != nil {
			return nil, fmt.Errorf("list network nodes: scan row: %w", err)
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list network nodes: row iteration: %w", err)
	}

	return nodes, nil
}
