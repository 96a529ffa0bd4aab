// Package placements merges object records that share an id.
package placements

import "regionatlas.dev/internal/atlas/objects"

// Patch adds a fixed extra location to one object's record once it has
// collected a given number of locations through merges.
type Patch struct {
	ID       int
	AtCount  int
	Coord    [2]int
	Rotation int
}

// DefaultPatches restores a location the region data does not place.
var DefaultPatches = []Patch{
	{ID: 10060, AtCount: 3, Coord: [2]int{8554, 36468}, Rotation: 0},
}

// Dedupe merges records by id, keeping first-seen order. A record whose id was
// already seen contributes its coordinates and rotations to the earlier record
// one at a time; duplicate coordinates are kept. The input records are not
// modified.
func Dedupe(records []objects.Record) []objects.Record {
	return DedupeWith(records, DefaultPatches)
}

// DedupeWith is Dedupe with an explicit patch list.
func DedupeWith(records []objects.Record, patches []Patch) []objects.Record {
	out := make([]objects.Record, 0, len(records))
	index := make(map[int]int, len(records))

	for _, rec := range records {
		i, seen := index[rec.ID]
		if !seen {
			index[rec.ID] = len(out)
			out = append(out, clone(rec))
			continue
		}
		merged := &out[i]
		for k, c := range rec.Coordinates {
			merged.Coordinates = append(merged.Coordinates, c)
			if k < len(rec.Rotations) {
				merged.Rotations = append(merged.Rotations, rec.Rotations[k])
			}
			applyPatches(merged, patches)
		}
	}
	return out
}

func applyPatches(rec *objects.Record, patches []Patch) {
	for _, p := range patches {
		if rec.ID == p.ID && len(rec.Coordinates) == p.AtCount {
			rec.Coordinates = append(rec.Coordinates, p.Coord)
			rec.Rotations = append(rec.Rotations, p.Rotation)
		}
	}
}

func clone(rec objects.Record) objects.Record {
	rec.Actions = append([]string(nil), rec.Actions...)
	rec.Coordinates = append([][2]int(nil), rec.Coordinates...)
	rec.Size = append([]int(nil), rec.Size...)
	rec.Rotations = append([]int(nil), rec.Rotations...)
	return rec
}
