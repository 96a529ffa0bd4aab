// Package regionpack stores decoded regions as zstd-compressed JSON lines:
// a header line followed by one region per line.
package regionpack

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"regionatlas.dev/internal/atlas/encoding"
	"regionatlas.dev/internal/atlas/region"
)

const Version = 1

type Header struct {
	Version int    `json:"version"`
	Source  string `json:"source,omitempty"`
	Regions int    `json:"regions"`
}

type regionV1 struct {
	RegionX    int                `json:"region_x"`
	RegionY    int                `json:"region_y"`
	Planes     [region.Z]planeV1  `json:"planes"`
	Placements []region.Placement `json:"placements,omitempty"`
}

// planeV1 holds RLE strings of x-major 64x64 layers.
type planeV1 struct {
	Settings  string `json:"settings"`
	Underlays string `json:"underlays"`
	Overlays  string `json:"overlays"`
	Paths     string `json:"paths"`
	Rotations string `json:"rotations"`
	Heights   string `json:"heights"`
}

const planeTiles = region.X * region.Y

func Write(path string, h Header, regions []*region.Region) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := Encode(f, h, regions); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Encode writes a pack to w. Header.Version and Header.Regions are filled in.
func Encode(w io.Writer, h Header, regions []*region.Region) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	h.Version = Version
	h.Regions = len(regions)
	je := json.NewEncoder(bw)
	if err := je.Encode(h); err != nil {
		_ = enc.Close()
		return err
	}
	for _, r := range regions {
		if err := je.Encode(encodeRegion(r)); err != nil {
			_ = enc.Close()
			return fmt.Errorf("region %d,%d: %w", r.RegionX, r.RegionY, err)
		}
	}
	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

func Read(path string) (Header, []*region.Region, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, nil, err
	}
	defer f.Close()
	return Decode(f)
}

func Decode(r io.Reader) (Header, []*region.Region, error) {
	var out []*region.Region
	h, err := Scan(r, func(reg *region.Region) error {
		out = append(out, reg)
		return nil
	})
	if err != nil {
		return h, nil, err
	}
	return h, out, nil
}

// Scan decodes regions one at a time without holding the whole pack.
func Scan(r io.Reader, fn func(*region.Region) error) (Header, error) {
	var h Header
	dec, err := zstd.NewReader(r)
	if err != nil {
		return h, err
	}
	defer dec.Close()

	jd := json.NewDecoder(bufio.NewReaderSize(dec, 256*1024))
	if err := jd.Decode(&h); err != nil {
		return h, fmt.Errorf("header: %w", err)
	}
	if h.Version != Version {
		return h, fmt.Errorf("unsupported pack version %d", h.Version)
	}
	n := 0
	for {
		var rv regionV1
		if err := jd.Decode(&rv); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return h, fmt.Errorf("region #%d: %w", n, err)
		}
		reg, err := decodeRegion(rv)
		if err != nil {
			return h, fmt.Errorf("region %d,%d: %w", rv.RegionX, rv.RegionY, err)
		}
		if err := fn(reg); err != nil {
			return h, err
		}
		n++
	}
	if n != h.Regions {
		return h, fmt.Errorf("header lists %d regions, pack holds %d", h.Regions, n)
	}
	return h, nil
}

func encodeRegion(r *region.Region) regionV1 {
	rv := regionV1{
		RegionX:    r.RegionX,
		RegionY:    r.RegionY,
		Placements: r.Placements,
	}
	for z := 0; z < region.Z; z++ {
		rv.Planes[z] = planeV1{
			Settings:  encoding.EncodeRLE(flatten(&r.Settings[z])),
			Underlays: encoding.EncodeRLE(flatten(&r.Underlays[z])),
			Overlays:  encoding.EncodeRLE(flatten(&r.Overlays[z])),
			Paths:     encoding.EncodeRLE(flatten(&r.OverlayPaths[z])),
			Rotations: encoding.EncodeRLE(flatten(&r.OverlayRotations[z])),
			Heights:   encoding.EncodeRLE(flatten(&r.Heights[z])),
		}
	}
	return rv
}

func decodeRegion(rv regionV1) (*region.Region, error) {
	r := region.New(rv.RegionX, rv.RegionY)
	r.Placements = rv.Placements
	for z := 0; z < region.Z; z++ {
		p := rv.Planes[z]
		if err := unflattenInto(&r.Settings[z], p.Settings, 0, encoding.MaxUint8); err != nil {
			return nil, fmt.Errorf("plane %d settings: %w", z, err)
		}
		if err := unflattenInto(&r.Underlays[z], p.Underlays, 0, encoding.MaxUint16); err != nil {
			return nil, fmt.Errorf("plane %d underlays: %w", z, err)
		}
		if err := unflattenInto(&r.Overlays[z], p.Overlays, 0, encoding.MaxUint16); err != nil {
			return nil, fmt.Errorf("plane %d overlays: %w", z, err)
		}
		if err := unflattenInto(&r.OverlayPaths[z], p.Paths, 0, encoding.MaxUint8); err != nil {
			return nil, fmt.Errorf("plane %d paths: %w", z, err)
		}
		if err := unflattenInto(&r.OverlayRotations[z], p.Rotations, 0, 3); err != nil {
			return nil, fmt.Errorf("plane %d rotations: %w", z, err)
		}
		if err := unflattenInto(&r.Heights[z], p.Heights, encoding.MinInt32, encoding.MaxInt32); err != nil {
			return nil, fmt.Errorf("plane %d heights: %w", z, err)
		}
	}
	for i, pl := range r.Placements {
		if !region.PlaneInRange(pl.Position.Z) || !r.Contains(pl.Position.X, pl.Position.Y) {
			return nil, fmt.Errorf("placement #%d (id %d) outside region at %+v", i, pl.ID, pl.Position)
		}
	}
	return r, nil
}

func flatten[T encoding.Integer](plane *[region.X][region.Y]T) []T {
	out := make([]T, 0, planeTiles)
	for x := 0; x < region.X; x++ {
		out = append(out, plane[x][:]...)
	}
	return out
}

func unflattenInto[T encoding.Integer](plane *[region.X][region.Y]T, s string, lo, hi int64) error {
	vals, err := encoding.DecodeRLE[T](s, planeTiles, lo, hi)
	if err != nil {
		return err
	}
	for x := 0; x < region.X; x++ {
		copy(plane[x][:], vals[x*region.Y:(x+1)*region.Y])
	}
	return nil
}
