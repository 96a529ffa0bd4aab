package blend

import "regionatlas.dev/internal/atlas/region"

// Ground is the blended ground of one region and plane, drawn north-up at
// Scale pixels per tile. A zero pixel was not painted.
type Ground struct {
	Scale int
	Pix   []uint32
}

func NewGround(scale int) *Ground {
	side := region.X * scale
	return &Ground{Scale: scale, Pix: make([]uint32, side*side)}
}

// Side is the width and height in pixels.
func (g *Ground) Side() int { return region.X * g.Scale }

func (g *Ground) At(px, py int) uint32 {
	return g.Pix[py*g.Side()+px]
}

func (g *Ground) set(px, py int, argb uint32) {
	g.Pix[py*g.Side()+px] = argb
}

// Tile returns the pixel at (i, j) inside the tile at (x, row), where row
// already counts from the top.
func (g *Ground) Tile(x, row, i, j int) uint32 {
	return g.At(x*g.Scale+i, row*g.Scale+j)
}

func (g *Ground) fillTile(x, row int, argb uint32) {
	for j := 0; j < g.Scale; j++ {
		for i := 0; i < g.Scale; i++ {
			g.set(x*g.Scale+i, row*g.Scale+j, argb)
		}
	}
}
