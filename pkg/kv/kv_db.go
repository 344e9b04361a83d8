// Package kv keeps an h3-indexed copy of the directed road segments in
// a local pebble store. It answers "which segments lie near this
// coordinate" for snapping, without a database round trip per query.
package kv

import (
	"fmt"
	"math"

	"github.com/Amsterdam/bereikbaarheid-backend/pkg/concurrent"
	"github.com/Amsterdam/bereikbaarheid-backend/pkg/datastructure"

	"github.com/cockroachdb/pebble"
	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"github.com/uber/h3-go/v4"
)

// h3 resolution 9 cells are ~0.1 km2, small enough that a cell plus its
// neighbors stays a handful of segments inside the city.
const indexResolution = 9

type SaveSegmentJobItem struct {
	Key      string
	Segments []datastructure.DirectedSegment
}

type KVDB struct {
	db  *pebble.DB
	log *logrus.Logger
}

func NewKVDB(db *pebble.DB, log *logrus.Logger) *KVDB {
	return &KVDB{db: db, log: log}
}

// BuildSegmentIndex buckets every directed segment under the h3 cell of
// its center point and bulk-writes the buckets into pebble. Run once at
// startup after the network is loaded from the database.
func (k *KVDB) BuildSegmentIndex(segments []datastructure.DirectedSegment) error {
	bar := progressbar.NewOptions(len(segments),
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(15),
		progressbar.OptionSetDescription("[cyan][1/2][reset] indexing road segments..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	buckets := make(map[string][]datastructure.DirectedSegment)
	for _, s := range segments {
		cell := h3.LatLngToCell(h3.NewLatLng(s.Center.Lat, s.Center.Lon), indexResolution)
		buckets[cell.String()] = append(buckets[cell.String()], s)
		bar.Add(1)
	}
	fmt.Println("")

	bar = progressbar.NewOptions(len(buckets),
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(15),
		progressbar.OptionSetDescription("[cyan][2/2][reset] saving h3 buckets to pebble..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	workers := concurrent.NewWorkerPool[SaveSegmentJobItem, error](4, len(buckets))
	for key, segs := range buckets {
		workers.AddJob(SaveSegmentJobItem{Key: key, Segments: segs})
		bar.Add(1)
	}
	workers.Close()

	workers.Start(k.saveSegments)
	workers.Wait()
	fmt.Println("")

	for err := range workers.CollectResults() {
		if err != nil {
			return err
		}
	}
	return nil
}

func (k *KVDB) saveSegments(item SaveSegmentJobItem) error {
	encoded, err := Encode(item.Segments)
	if err != nil {
		return fmt.Errorf("encode bucket %s: %w", item.Key, err)
	}
	val, err := Compress(encoded)
	if err != nil {
		return fmt.Errorf("compress bucket %s: %w", item.Key, err)
	}
	if err := k.db.Set([]byte(item.Key), val, pebble.Sync); err != nil {
		return fmt.Errorf("save bucket %s: %w", item.Key, err)
	}
	return nil
}

func (k *KVDB) loadCell(cell h3.Cell) ([]datastructure.DirectedSegment, error) {
	val, closer, err := k.db.Get([]byte(cell.String()))
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	defer closer.Close()

	decompressed, err := Decompress(val)
	if err != nil {
		return nil, err
	}
	return Decode(decompressed)
}

// NearbySegments returns the segments indexed around a coordinate. It
// starts with the home cell plus the neighbor ring covering ~0.7 km and
// widens the grid disk when the area around the point has no roads at
// all (water, parks).
func (k *KVDB) NearbySegments(lat, lon float64) ([]datastructure.DirectedSegment, error) {
	home := h3.LatLngToCell(h3.NewLatLng(lat, lon), indexResolution)

	segments := []datastructure.DirectedSegment{}
	for _, cell := range kRingIndexesArea(lat, lon, 0.7) {
		found, err := k.loadCell(cell)
		if err != nil {
			return nil, err
		}
		segments = append(segments, found...)
	}

	for lev := 1; lev <= 10 && len(segments) == 0; lev++ {
		for _, cell := range h3.GridDisk(home, lev) {
			found, err := k.loadCell(cell)
			if err != nil {
				return nil, err
			}
			segments = append(segments, found...)
		}
	}

	if len(segments) == 0 {
		return nil, fmt.Errorf("no road segments near %f,%f", lat, lon)
	}
	return segments, nil
}

// kRingIndexesArea returns the h3 cells whose combined area covers a
// disk of searchRadiusKm around the coordinate.
// https://observablehq.com/@nrabinowitz/h3-radius-lookup
func kRingIndexesArea(lat, lon, searchRadiusKm float64) []h3.Cell {
	origin := h3.LatLngToCell(h3.NewLatLng(lat, lon), indexResolution)
	originArea := h3.CellAreaKm2(origin)
	searchArea := math.Pi * searchRadiusKm * searchRadiusKm

	radius := 0
	diskArea := originArea
	for diskArea < searchArea {
		radius++
		cellCount := float64(3*radius*(radius+1) + 1)
		diskArea = cellCount * originArea
	}

	return h3.GridDisk(origin, radius)
}

func (k *KVDB) Close() {
	if err := k.db.Close(); err != nil {
		k.log.WithError(err).Warn("closing segment kv store")
	}
}
