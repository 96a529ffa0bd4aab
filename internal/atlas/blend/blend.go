// Package blend computes the smoothed ground colours of a region: underlay
// colours averaged over a square neighbourhood that crosses into loaded
// neighbour regions, with shaped overlays drawn on top.
package blend

import (
	"fmt"

	"regionatlas.dev/internal/atlas/boxfilter"
	"regionatlas.dev/internal/atlas/colors"
	"regionatlas.dev/internal/atlas/defs"
	"regionatlas.dev/internal/atlas/mathx"
	"regionatlas.dev/internal/atlas/region"
	"regionatlas.dev/internal/atlas/tileshape"
)

const DefaultRadius = 5

// Definitions is the subset of the definition tables the blender reads.
type Definitions interface {
	MustUnderlay(id int) defs.Underlay
	MustOverlay(id int) defs.Overlay
	defs.TextureAverages
}

type Blender struct {
	Grid    *region.Grid
	Defs    Definitions
	Palette *colors.Palette

	// Textures overrides the texture averages from Defs when set.
	Textures defs.TextureAverages

	Radius     int
	Scale      int
	Brightness int
}

func (b *Blender) radius() int {
	if b.Radius <= 0 {
		return DefaultRadius
	}
	return b.Radius
}

func (b *Blender) scale() int {
	if b.Scale <= 0 {
		return 4
	}
	return b.Scale
}

func (b *Blender) brightness() int {
	if b.Brightness <= 0 {
		return colors.DefaultLightness
	}
	return b.Brightness
}

func (b *Blender) textures() defs.TextureAverages {
	if b.Textures != nil {
		return b.Textures
	}
	return b.Defs
}

// Neighbourhood calls visit for every tile of r on plane z with the summed
// underlay channels of the tiles around it. The window reaches radius tiles
// past an edge only when a region is loaded on that side.
func (b *Blender) Neighbourhood(r *region.Region, z int, visit func(x, y int, sum boxfilter.Sample)) {
	rad := b.radius()
	baseX, baseY := r.BaseX(), r.BaseY()

	left := b.Grid.At(baseX-1, baseY) != nil
	right := b.Grid.At(baseX+region.X, baseY) != nil
	up := b.Grid.At(baseX, baseY+region.Y) != nil
	down := b.Grid.At(baseX, baseY-1) != nil

	validX := boxfilter.Span{Lo: reach(left, -rad), Hi: region.X + reach(right, rad)}
	validY := boxfilter.Span{Lo: reach(down, -rad), Hi: region.Y + reach(up, rad)}
	stepsX := boxfilter.Span{Lo: -rad + reach(left, -rad), Hi: region.X + rad + reach(right, rad)}
	stepsY := boxfilter.Span{Lo: -rad + reach(down, -rad), Hi: region.Y + rad + reach(up, rad)}

	cols := boxfilter.NewColumns(boxfilter.Span{Lo: -rad, Hi: region.Y + rad})
	column := func(x int, add bool) {
		for y := validY.Lo; y < validY.Hi; y++ {
			s, ok := b.sample(baseX, baseY, x, y, z)
			if !ok {
				continue
			}
			if add {
				cols.At(y).Add(s)
			} else {
				cols.At(y).Sub(s)
			}
		}
	}

	boxfilter.Sweep(stepsX, rad, validX,
		func(x int) { column(x, true) },
		func(x int) { column(x, false) },
		func(x int) {
			if x < 0 || x >= region.X {
				return
			}
			var w boxfilter.Window
			boxfilter.Sweep(stepsY, rad, validY,
				func(y int) { w.Add(cols.At(y).Sum()) },
				func(y int) { w.Sub(cols.At(y).Sum()) },
				func(y int) {
					if y >= 0 && y < region.Y {
						visit(x, y, w.Sum())
					}
				})
		})
}

func reach(present bool, by int) int {
	if present {
		return by
	}
	return 0
}

// sample reads the underlay at (x, y) relative to the region based at
// (baseX, baseY). Tiles in regions that are not loaded contribute nothing.
func (b *Blender) sample(baseX, baseY, x, y, z int) (boxfilter.Sample, bool) {
	owner := b.Grid.At(baseX+x, baseY+y)
	if owner == nil {
		return boxfilter.Sample{}, false
	}
	id := owner.UnderlayID(z, region.LocalCoord(x), region.LocalCoord(y))
	if id <= 0 {
		return boxfilter.Sample{}, false
	}
	u := b.Defs.MustUnderlay(id - 1)
	return boxfilter.Sample{
		Hue:        u.Hue,
		Saturation: u.Saturation,
		Lightness:  u.Lightness,
		Multiplier: u.HueMultiplier,
		Count:      1,
	}, true
}

// Blend draws the ground of r on plane z.
func (b *Blender) Blend(r *region.Region, z int) *Ground {
	g := NewGround(b.scale())
	b.Neighbourhood(r, z, func(x, y int, sum boxfilter.Sample) {
		underlayID := r.UnderlayID(z, x, y)
		overlayID := r.OverlayID(z, x, y)
		if underlayID <= 0 && overlayID <= 0 {
			return
		}

		var underlay uint32
		if underlayID > 0 {
			if hsl, ok := Average(sum); ok {
				underlay = b.Palette.ARGB(colors.AdjustUnderlay(hsl, b.brightness()))
			}
		}

		shape, rotation := 0, 0
		var overlay uint32
		if overlayID > 0 {
			shape = r.OverlayPath(z, x, y) + 1
			rotation = r.OverlayRotation(z, x, y)
			overlay = b.overlayColour(b.Defs.MustOverlay(overlayID - 1))
		}

		paintTile(g, x, region.Y-1-y, shape, rotation, underlay, overlay)
	})
	return g
}

// Average packs the mean colour of a neighbourhood sum. It reports false
// when the sum holds no samples or no hue weight.
func Average(sum boxfilter.Sample) (hsl int, ok bool) {
	if sum.Count == 0 || sum.Multiplier == 0 {
		return colors.Unset, false
	}
	hue := sum.Hue * 256 / sum.Multiplier
	sat := sum.Saturation / sum.Count
	light := mathx.Clamp(sum.Lightness/sum.Count, 0, 255)
	return colors.PackHSL(hue, sat, light), true
}

func (b *Blender) overlayColour(o defs.Overlay) uint32 {
	var hsl int
	switch {
	case o.HasTexture():
		avg, ok := b.textures().TextureAverage(o.Texture)
		if !ok {
			panic(fmt.Sprintf("blend: overlay %d references texture %d with no average colour", o.ID, o.Texture))
		}
		hsl = avg
	case o.NoPaint():
		hsl = colors.NoPaint
	default:
		hsl = colors.PackHSL(o.Hue, o.Saturation, o.Lightness)
	}
	argb := b.Palette.ARGB(colors.AdjustOverlay(hsl, b.brightness()))

	if o.HasSecondary() {
		hsl = colors.PackHSL(o.OtherHue, o.OtherSaturation, o.OtherLightness)
		argb = b.Palette.ARGB(colors.AdjustOverlay(hsl, b.brightness()))
	}
	return argb
}

func paintTile(g *Ground, x, row, shape, rotation int, underlay, overlay uint32) {
	switch shape {
	case 0:
		if underlay != 0 {
			g.fillTile(x, row, underlay)
		}
	case 1:
		g.fillTile(x, row, overlay)
	default:
		for j := 0; j < g.Scale; j++ {
			for i := 0; i < g.Scale; i++ {
				px, py := x*g.Scale+i, row*g.Scale+j
				switch {
				case tileshape.AtPixel(shape, rotation, j, i, g.Scale):
					g.set(px, py, overlay)
				case underlay != 0:
					g.set(px, py, underlay)
				}
			}
		}
	}
}
