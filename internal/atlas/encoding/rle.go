// Package encoding packs tile layers into compact text for the region pack.
package encoding

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
)

// Integer is any tile value type stored in a layer.
type Integer interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32
}

// EncodeRLE encodes values into base64(varint pairs). The pairs are
// (value, run_len) repeated; values are zigzag encoded so heights stay short.
func EncodeRLE[T Integer](vals []T) string {
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte

	i := 0
	for i < len(vals) {
		v := vals[i]
		run := 1
		for j := i + 1; j < len(vals) && vals[j] == v; j++ {
			run++
		}

		n := binary.PutVarint(tmp[:], int64(v))
		buf.Write(tmp[:n])
		n = binary.PutUvarint(tmp[:], uint64(run))
		buf.Write(tmp[:n])

		i += run
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// DecodeRLE decodes exactly want values. lo and hi bound every value.
func DecodeRLE[T Integer](b64 string, want int, lo, hi int64) ([]T, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, want)
	for i := 0; i < len(raw); {
		v, n := binary.Varint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		run, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		if v < lo || v > hi {
			return nil, fmt.Errorf("value %d outside [%d,%d]", v, lo, hi)
		}
		if run > uint64(want-len(out)) {
			return nil, fmt.Errorf("run of %d overflows %d values", run, want)
		}
		for k := uint64(0); k < run; k++ {
			out = append(out, T(v))
		}
	}
	if len(out) != want {
		return nil, fmt.Errorf("decoded %d values, want %d", len(out), want)
	}
	return out, nil
}

// Value ranges for the layer types in use.
const (
	MaxUint8  = math.MaxUint8
	MaxUint16 = math.MaxUint16
	MinInt32  = math.MinInt32
	MaxInt32  = math.MaxInt32
)
