package compositor

import (
	"image"

	"regionatlas.dev/internal/atlas/canvas"
	"regionatlas.dev/internal/atlas/region"
)

// Chunk is the part of a plane canvas covering one region.
type Chunk struct {
	RegionX, RegionY int
	Plane            int
	Image            *image.RGBA
	// Empty is set when the chunk carries no information: a single colour
	// for raster maps, or all black for height maps.
	Empty bool
}

// Chunks cuts cv into one chunk per region, in region id order. scale is the
// pixels-per-tile the canvas was drawn at.
func (c *Compositor) Chunks(kind Kind, cv *canvas.Canvas, z, scale int) []Chunk {
	out := make([]Chunk, 0, c.Grid.Len())
	for _, r := range c.Grid.Regions() {
		ox, oy := c.origin(r, scale)
		rect := image.Rect(ox, oy, ox+region.X*scale, oy+region.Y*scale)
		img := cv.Chunk(rect)
		out = append(out, Chunk{
			RegionX: r.RegionX,
			RegionY: r.RegionY,
			Plane:   z,
			Image:   img,
			Empty:   emptyChunk(kind, img),
		})
	}
	return out
}

func emptyChunk(kind Kind, img *image.RGBA) bool {
	if kind != KindHeight {
		return canvas.Uniform(img)
	}
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 || img.Pix[i+1] != 0 || img.Pix[i+2] != 0 || img.Pix[i+3] != 0xFF {
			return false
		}
	}
	return true
}
