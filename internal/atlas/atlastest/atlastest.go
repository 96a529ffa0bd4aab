// Package atlastest builds small in-memory regions and definition tables for
// tests.
package atlastest

import (
	"testing"

	"regionatlas.dev/internal/atlas/defs"
	"regionatlas.dev/internal/atlas/region"
)

// Grass is underlay definition 0, referenced from regions as id 1.
var Grass = defs.Underlay{ID: 0, Color: 0x3F7F1F, Hue: 12, Saturation: 140, Lightness: 80, HueMultiplier: 60}

// Tree is an interactive 1x1 scenery object.
var Tree = defs.Object{
	ID: 1276, Name: "Tree", Category: 1, SizeX: 1, SizeY: 1,
	InteractType: 2, MapSceneID: -1, Models: []int{1}, Actions: []*string{strPtr("Chop down")},
}

func strPtr(s string) *string { return &s }

// Tables returns definition tables holding Grass, Tree and any extra objects.
func Tables(extra ...defs.Object) *defs.Tables {
	objs := append([]defs.Object{Tree}, extra...)
	return defs.NewTables([]defs.Underlay{Grass}, nil, objs, nil)
}

// Flat returns a region whose every plane-0 tile uses underlay id.
func Flat(regionX, regionY int, underlayID uint16) *region.Region {
	r := region.New(regionX, regionY)
	for x := 0; x < region.X; x++ {
		for y := 0; y < region.Y; y++ {
			r.Underlays[0][x][y] = underlayID
		}
	}
	return r
}

// Place adds a placement at local tile (x, y) on plane z.
func Place(r *region.Region, id, typ, orientation, x, y, z int) {
	r.Placements = append(r.Placements, region.Placement{
		ID:          id,
		Type:        typ,
		Orientation: orientation,
		Position:    region.Position{X: r.BaseX() + x, Y: r.BaseY() + y, Z: z},
	})
}

// Grid builds a grid or fails the test.
func Grid(t testing.TB, regions ...*region.Region) *region.Grid {
	t.Helper()
	g, err := region.NewGrid(regions)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	return g
}
