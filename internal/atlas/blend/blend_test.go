package blend

import (
	"testing"

	"regionatlas.dev/internal/atlas/boxfilter"
	"regionatlas.dev/internal/atlas/colors"
	"regionatlas.dev/internal/atlas/defs"
	"regionatlas.dev/internal/atlas/region"
)

func testDefs() *defs.Tables {
	return defs.NewTables(
		[]defs.Underlay{
			{ID: 0, Hue: 10, Saturation: 100, Lightness: 90, HueMultiplier: 40},
			{ID: 1, Hue: 300, Saturation: 30, Lightness: 200, HueMultiplier: 120},
			{ID: 2, Hue: -5, Saturation: 250, Lightness: 10, HueMultiplier: 7},
		},
		[]defs.Overlay{
			{ID: 0, Texture: -1, SecondaryColor: -1, Hue: 20, Saturation: 200, Lightness: 100},
			{ID: 1, Color: defs.NoPaintColor, Texture: -1, SecondaryColor: -1},
		},
		nil, nil,
	)
}

func patterned(rx, ry int) *region.Region {
	r := region.New(rx, ry)
	for x := 0; x < region.X; x++ {
		for y := 0; y < region.Y; y++ {
			// Leave some cells empty so the count differs from the area.
			r.Underlays[0][x][y] = uint16((x*7 + y*3) % 4)
		}
	}
	return r
}

func newBlender(t *testing.T, regions ...*region.Region) *Blender {
	t.Helper()
	g, err := region.NewGrid(regions)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	return &Blender{Grid: g, Defs: testDefs(), Palette: colors.NewPalette(colors.BrightnessMax)}
}

// bruteForce sums the window around (x, y) by reading every tile through the
// grid, so tiles of neighbouring regions resolve by world coordinate.
func bruteForce(b *Blender, r *region.Region, x, y, rad int) boxfilter.Sample {
	var s boxfilter.Sample
	for xx := x - rad + 1; xx <= x+rad; xx++ {
		for yy := y - rad + 1; yy <= y+rad; yy++ {
			wx, wy := r.BaseX()+xx, r.BaseY()+yy
			owner := b.Grid.At(wx, wy)
			if owner == nil {
				continue
			}
			id := owner.UnderlayID(0, wx-owner.BaseX(), wy-owner.BaseY())
			if id == 0 {
				continue
			}
			u := b.Defs.MustUnderlay(id - 1)
			s.Add(boxfilter.Sample{Hue: u.Hue, Saturation: u.Saturation, Lightness: u.Lightness, Multiplier: u.HueMultiplier, Count: 1})
		}
	}
	return s
}

func TestIsolatedRegionAveragesOnlyItsOwnTiles(t *testing.T) {
	r := patterned(50, 50)
	b := newBlender(t, r)

	visited := 0
	b.Neighbourhood(r, 0, func(x, y int, sum boxfilter.Sample) {
		visited++
		if want := bruteForce(b, r, x, y, DefaultRadius); sum != want {
			t.Fatalf("tile (%d,%d): got %+v want %+v", x, y, sum, want)
		}
	})
	if visited != region.X*region.Y {
		t.Fatalf("visited %d tiles", visited)
	}
}

func TestNeighbourContributesAcrossEdge(t *testing.T) {
	r := region.New(50, 50)
	east := region.New(51, 50)
	for y := 0; y < region.Y; y++ {
		east.Underlays[0][0][y] = 2
	}
	b := newBlender(t, r, east)

	b.Neighbourhood(r, 0, func(x, y int, sum boxfilter.Sample) {
		// Column 0 of the east region sits at x=64 and is inside the
		// window of x in [59, 63] only.
		inReach := x >= region.X-DefaultRadius
		if inReach && sum.Count == 0 {
			t.Fatalf("tile (%d,%d) should see the east neighbour", x, y)
		}
		if !inReach && sum.Count != 0 {
			t.Fatalf("tile (%d,%d) sees %d samples", x, y, sum.Count)
		}
	})

	// Without the neighbour the same tiles see nothing.
	alone := newBlender(t, r)
	alone.Neighbourhood(r, 0, func(x, y int, sum boxfilter.Sample) {
		if sum.Count != 0 {
			t.Fatalf("tile (%d,%d) sees %d samples alone", x, y, sum.Count)
		}
	})
}

func TestWestAndSouthNeighboursContribute(t *testing.T) {
	r := patterned(50, 50)
	west := patterned(49, 50)
	south := patterned(50, 49)
	b := newBlender(t, r, west, south)
	alone := newBlender(t, r)

	crossed := 0
	b.Neighbourhood(r, 0, func(x, y int, sum boxfilter.Sample) {
		if want := bruteForce(b, r, x, y, DefaultRadius); sum != want {
			t.Fatalf("tile (%d,%d): got %+v want %+v", x, y, sum, want)
		}
		if x < DefaultRadius-1 || y < DefaultRadius-1 {
			if sum != bruteForce(alone, r, x, y, DefaultRadius) {
				crossed++
			}
		}
	})
	if crossed == 0 {
		t.Fatalf("no tile near the west or south edge saw a neighbour")
	}

	// Column 63 of the west region sits at x=-1, inside the window of
	// x < radius-1 only.
	centre := region.New(50, 50)
	edge := region.New(49, 50)
	for y := 0; y < region.Y; y++ {
		edge.Underlays[0][region.X-1][y] = 2
	}
	b = newBlender(t, centre, edge)
	b.Neighbourhood(centre, 0, func(x, y int, sum boxfilter.Sample) {
		inReach := x < DefaultRadius-1
		if inReach && sum.Count == 0 {
			t.Fatalf("tile (%d,%d) should see the west neighbour", x, y)
		}
		if !inReach && sum.Count != 0 {
			t.Fatalf("tile (%d,%d) sees %d samples", x, y, sum.Count)
		}
	})
}

func TestRegionAtOriginDoesNotWrap(t *testing.T) {
	r := patterned(0, 0)
	b := newBlender(t, r)
	g := b.Blend(r, 0)
	if len(g.Pix) != 256*256 {
		t.Fatalf("ground size %d", len(g.Pix))
	}
}

func TestUniformUnderlayIsFlat(t *testing.T) {
	r := region.New(40, 40)
	for x := 0; x < region.X; x++ {
		for y := 0; y < region.Y; y++ {
			r.Underlays[0][x][y] = 1
		}
	}
	b := newBlender(t, r)
	g := b.Blend(r, 0)

	u := b.Defs.MustUnderlay(0)
	want := b.Palette.ARGB(colors.AdjustUnderlay(colors.PackHSL(u.Hue*256/u.HueMultiplier, u.Saturation, u.Lightness), colors.DefaultLightness))
	for i, px := range g.Pix {
		if px != want {
			t.Fatalf("pixel %d = %#x want %#x", i, px, want)
		}
	}
}

func TestOverlayShapesAndNoPaint(t *testing.T) {
	r := region.New(40, 40)
	for x := 0; x < region.X; x++ {
		for y := 0; y < region.Y; y++ {
			r.Underlays[0][x][y] = 1
		}
	}
	// Full overlay at (0,63): top-left tile of the ground.
	r.Overlays[0][0][63] = 1
	// Half overlay (shape 7, left columns) at (1,63).
	r.Overlays[0][1][63] = 1
	r.OverlayPaths[0][1][63] = 6
	// No-paint overlay at (2,63) clears the tile.
	r.Overlays[0][2][63] = 2

	b := newBlender(t, r)
	g := b.Blend(r, 0)

	o := b.Defs.MustOverlay(0)
	overlay := b.Palette.ARGB(colors.AdjustOverlay(colors.PackHSL(o.Hue, o.Saturation, o.Lightness), colors.DefaultLightness))
	underlay := g.Tile(5, 5, 0, 0)

	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if got := g.Tile(0, 0, i, j); got != overlay {
				t.Fatalf("full overlay (%d,%d)=%#x", i, j, got)
			}
			want := underlay
			if i < 2 {
				want = overlay
			}
			if got := g.Tile(1, 0, i, j); got != want {
				t.Fatalf("half overlay (%d,%d)=%#x want %#x", i, j, got, want)
			}
			if got := g.Tile(2, 0, i, j); got != 0 {
				t.Fatalf("no-paint overlay (%d,%d)=%#x", i, j, got)
			}
		}
	}
}

func TestAverageRejectsEmptySums(t *testing.T) {
	if _, ok := Average(boxfilter.Sample{}); ok {
		t.Fatalf("empty sum must not average")
	}
	if _, ok := Average(boxfilter.Sample{Count: 2, Lightness: 600}); ok {
		t.Fatalf("zero multiplier must not average")
	}
	hsl, ok := Average(boxfilter.Sample{Count: 2, Multiplier: 2, Lightness: 600})
	if !ok || colors.UnpackLightness(hsl) != 255/2 {
		t.Fatalf("lightness must clamp to 255 before packing, got %d", hsl)
	}
}
