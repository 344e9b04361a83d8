package kv

import (
	"encoding/json"

	"github.com/Amsterdam/bereikbaarheid-backend/pkg/datastructure"

	"github.com/DataDog/zstd"
)

func Encode(segments []datastructure.DirectedSegment) ([]byte, error) {
	return json.Marshal(segments)
}

func Decode(bb []byte) ([]datastructure.DirectedSegment, error) {
	var segments []datastructure.DirectedSegment
	if err := json.Unmarshal(bb, &segments); err != nil {
		return nil, err
	}
	return segments, nil
}

func Compress(bb []byte) ([]byte, error) {
	var bbCompressed []byte
	bbCompressed, err := zstd.Compress(bbCompressed, bb)
	if err != nil {
		return []byte{}, err
	}
	return bbCompressed, nil
}

func Decompress(bbCompressed []byte) ([]byte, error) {
	var bb []byte
	bb, err := zstd.Decompress(bb, bbCompressed)
	if err != nil {
		return []byte{}, err
	}

	return bb, nil
}
