package compositor

import (
	"image"

	"github.com/sirupsen/logrus"

	"regionatlas.dev/internal/atlas/blend"
	"regionatlas.dev/internal/atlas/canvas"
	"regionatlas.dev/internal/atlas/planes"
	"regionatlas.dev/internal/atlas/region"
)

// Map renders the blended ground of plane z. Bridges and push-up tiles copy
// ground from the planes planes.Resolve selects.
func (c *Compositor) Map(z int) (*canvas.Canvas, error) {
	if err := checkPlane(z); err != nil {
		return nil, err
	}
	s := c.Options.Scale
	w, h := c.Grid.PixelSize(s)
	out := canvas.New(w, h)

	for _, r := range c.Grid.Regions() {
		c.drawGround(out, r, z)
	}
	if c.Options.MapObjects {
		for _, r := range c.Grid.Regions() {
			c.drawSilhouettes(out, r, z)
		}
	}
	c.Logger.WithFields(logrus.Fields{"kind": KindMap, "plane": z, "regions": c.Grid.Len()}).Debug("ground composited")
	return out, nil
}

func (c *Compositor) drawGround(out *canvas.Canvas, r *region.Region, z int) {
	s := c.Options.Scale
	ox, oy := c.origin(r, s)

	var grounds [region.Z]*blend.Ground
	groundOf := func(plane int) *blend.Ground {
		if grounds[plane] == nil {
			grounds[plane] = c.blender.Blend(r, plane)
		}
		return grounds[plane]
	}

	for x := 0; x < region.X; x++ {
		for row := 0; row < region.Y; row++ {
			y := region.Y - 1 - row
			res := planes.Resolve(r, z, x, y)
			for _, layer := range res.Layers {
				if c.Options.MapBlocked && r.Setting(layer, x, y)&region.FlagBlocked != 0 {
					out.Fill(image.Rect(ox+x*s, oy+row*s, ox+(x+1)*s, oy+(row+1)*s), c.Options.BlockedColor)
					continue
				}
				g := groundOf(layer)
				for j := 0; j < s; j++ {
					for i := 0; i < s; i++ {
						if argb := g.Tile(x, row, i, j); argb != 0 {
							out.Set(ox+x*s+i, oy+row*s+j, argb)
						}
					}
				}
			}
		}
	}
}
