package compositor

import (
	"image/color"
	"math"

	"github.com/sirupsen/logrus"

	"regionatlas.dev/internal/atlas/canvas"
	"regionatlas.dev/internal/atlas/region"
)

// MaxDepth is the deepest tile height drawn as white.
const MaxDepth = 2048.0

// Height renders plane z at one pixel per tile; deeper ground is brighter.
func (c *Compositor) Height(z int) (*canvas.Canvas, error) {
	if err := checkPlane(z); err != nil {
		return nil, err
	}
	w, h := c.Grid.PixelSize(1)
	out := canvas.New(w, h)
	lo, hi := math.MaxInt, math.MinInt
	for _, r := range c.Grid.Regions() {
		ox, oy := c.origin(r, 1)
		for x := 0; x < region.X; x++ {
			for y := 0; y < region.Y; y++ {
				height := r.Height(z, x, y)
				lo, hi = min(lo, height), max(hi, height)
				out.Set(ox+x, oy+region.Y-1-y, HeightColor(height))
			}
		}
	}
	c.Logger.WithFields(logrus.Fields{"kind": KindHeight, "plane": z, "min": lo, "max": hi}).Info("height range")
	return out, nil
}

// HeightColor maps a tile height (zero or negative) to an opaque grey.
func HeightColor(height int) uint32 {
	f := float64(-height) / MaxDepth
	f = min(max(f, 0), 1)
	v := uint8(f*255 + 0.5)
	return canvas.ARGB(color.RGBA{R: v, G: v, B: v, A: 0xFF})
}
