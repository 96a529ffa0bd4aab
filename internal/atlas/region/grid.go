package region

import (
	"errors"
	"fmt"
	"sort"
)

var ErrDuplicateRegion = errors.New("duplicate region")

// Bounds holds the extreme region bases of a loaded set.
type Bounds struct {
	LowestX, LowestY   int
	HighestX, HighestY int
}

// Width and Height are the tile extents covered by the loaded set.
func (b Bounds) Width() int  { return b.HighestX + X - b.LowestX }
func (b Bounds) Height() int { return b.HighestY + Y - b.LowestY }

// Grid indexes decoded regions by id. It is read-only once built.
type Grid struct {
	byID   map[int]*Region
	order  []*Region
	bounds Bounds
}

func NewGrid(regions []*Region) (*Grid, error) {
	g := &Grid{byID: make(map[int]*Region, len(regions))}
	for _, r := range regions {
		if r == nil {
			continue
		}
		if _, ok := g.byID[r.ID()]; ok {
			return nil, fmt.Errorf("%w: %d (%d,%d)", ErrDuplicateRegion, r.ID(), r.RegionX, r.RegionY)
		}
		g.byID[r.ID()] = r
		g.order = append(g.order, r)
	}
	sort.Slice(g.order, func(i, j int) bool { return g.order[i].ID() < g.order[j].ID() })
	g.calculateBounds()
	return g, nil
}

func (g *Grid) calculateBounds() {
	if len(g.order) == 0 {
		return
	}
	first := g.order[0]
	b := Bounds{
		LowestX: first.BaseX(), HighestX: first.BaseX(),
		LowestY: first.BaseY(), HighestY: first.BaseY(),
	}
	for _, r := range g.order[1:] {
		b.LowestX = min(b.LowestX, r.BaseX())
		b.HighestX = max(b.HighestX, r.BaseX())
		b.LowestY = min(b.LowestY, r.BaseY())
		b.HighestY = max(b.HighestY, r.BaseY())
	}
	g.bounds = b
}

func (g *Grid) Len() int { return len(g.order) }

// Regions returns the loaded regions in ascending id order.
func (g *Grid) Regions() []*Region { return g.order }

func (g *Grid) Bounds() Bounds { return g.bounds }

// At returns the region containing the world tile, or nil.
func (g *Grid) At(worldX, worldY int) *Region {
	if worldX < 0 || worldY < 0 {
		return nil
	}
	rx, ry := worldX/X, worldY/Y
	if ry > 0xFF {
		return nil
	}
	return g.byID[rx<<8|ry]
}

// DrawBase is the region's top-left corner in map tiles. The map is drawn
// north-up, so the region with the greatest Y sits at row 0.
func (g *Grid) DrawBase(r *Region) (x, y int) {
	return r.BaseX() - g.bounds.LowestX, g.bounds.HighestY - r.BaseY()
}

// PixelSize is the full map size at the given pixels-per-tile scale.
func (g *Grid) PixelSize(scale int) (w, h int) {
	if len(g.order) == 0 {
		return 0, 0
	}
	return g.bounds.Width() * scale, g.bounds.Height() * scale
}
