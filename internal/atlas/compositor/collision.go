package compositor

import (
	"image"

	"github.com/sirupsen/logrus"

	"regionatlas.dev/internal/atlas/canvas"
	"regionatlas.dev/internal/atlas/planes"
	"regionatlas.dev/internal/atlas/region"
)

// Collision renders plane z as walkable and blocked tiles, then draws object
// silhouettes. All tiles are drawn before any silhouette so neighbouring
// regions cannot paint over each other's objects.
func (c *Compositor) Collision(z int) (*canvas.Canvas, error) {
	if err := checkPlane(z); err != nil {
		return nil, err
	}
	s := c.Options.Scale
	w, h := c.Grid.PixelSize(s)
	out := canvas.New(w, h)

	for _, r := range c.Grid.Regions() {
		c.drawTiles(out, r, z)
	}
	for _, r := range c.Grid.Regions() {
		c.drawSilhouettes(out, r, z)
	}
	c.Logger.WithFields(logrus.Fields{"kind": KindCollision, "plane": z, "regions": c.Grid.Len()}).Debug("collision composited")
	return out, nil
}

func (c *Compositor) drawTiles(out *canvas.Canvas, r *region.Region, z int) {
	s := c.Options.Scale
	ox, oy := c.origin(r, s)
	for x := 0; x < region.X; x++ {
		for row := 0; row < region.Y; row++ {
			y := region.Y - 1 - row
			for _, layer := range planes.Resolve(r, z, x, y).Layers {
				color := c.Options.WalkableColor
				if r.Setting(layer, x, y)&region.FlagBlocked != 0 {
					color = c.Options.BlockedColor
				}
				out.Fill(image.Rect(ox+x*s, oy+row*s, ox+(x+1)*s, oy+(row+1)*s), color)
			}
		}
	}
}

func (c *Compositor) drawSilhouettes(out *canvas.Canvas, r *region.Region, z int) {
	ox, oy := c.origin(r, c.Options.Scale)
	idx := planes.NewIndex(r)
	for x := 0; x < region.X; x++ {
		for y := 0; y < region.Y; y++ {
			local, pushDown := idx.Layers(z, x, y)
			for _, layer := range [2][]region.Placement{local, pushDown} {
				for _, pl := range layer {
					def := c.Defs.MustObject(pl.ID)
					out.Apply(ox, oy, c.projector.Silhouette(pl, def, x, y))
				}
			}
		}
	}
}
