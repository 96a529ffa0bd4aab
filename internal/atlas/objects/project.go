// Package objects turns object placements into collision silhouettes and
// metadata records. Projection is pure: handlers return drawing commands and
// the caller applies them.
package objects

import (
	"regionatlas.dev/internal/atlas/defs"
	"regionatlas.dev/internal/atlas/region"
)

// Default colours, ARGB.
const (
	DefaultBlockedColor uint32 = 0xFF000000
	DefaultDoorColor    uint32 = 0xFFFF0000
)

// DefaultIgnored are gate objects left off the collision map.
var DefaultIgnored = []int{9266, 16784}

// Command fills a W x H rectangle at (X, Y). Coordinates are in pixels
// relative to the region's top-left corner and may be negative.
type Command struct {
	X, Y, W, H int
	Color      uint32
}

type Projector struct {
	Scale        int
	BlockedColor uint32
	DoorColor    uint32
	Ignored      map[int]bool
}

func NewProjector(scale int, ignored []int) *Projector {
	p := &Projector{
		Scale:        scale,
		BlockedColor: DefaultBlockedColor,
		DoorColor:    DefaultDoorColor,
		Ignored:      make(map[int]bool, len(ignored)),
	}
	for _, id := range ignored {
		p.Ignored[id] = true
	}
	return p
}

type handler func(p *Projector, pl region.Placement, d defs.Object, x0, y0 int) []Command

var handlers = [...]handler{
	KindNone:     nil,
	KindWall:     wallSilhouette,
	KindSolid:    cellSilhouette,
	KindDiagonal: cellSilhouette,
	KindScenery:  scenerySilhouette,
}

// Origin is the top-left pixel of an object's footprint inside its region.
// The map is drawn north-up, so the footprint's top row depends on its depth.
func (p *Projector) Origin(d defs.Object, localX, localY int) (x, y int) {
	return localX * p.Scale, (region.Y - d.SizeY - localY) * p.Scale
}

// Silhouette returns the collision drawing for a placement standing on local
// tile (localX, localY).
func (p *Projector) Silhouette(pl region.Placement, d defs.Object, localX, localY int) []Command {
	if p.Ignored[d.ID] {
		return nil
	}
	h := handlers[KindOf(pl.Type)]
	if h == nil {
		return nil
	}
	x0, y0 := p.Origin(d, localX, localY)
	return h(p, pl, d, x0, y0)
}

func wallSilhouette(p *Projector, pl region.Placement, d defs.Object, x0, y0 int) []Command {
	if d.MapSceneID != -1 {
		return nil
	}
	color := p.BlockedColor
	if d.WallOrDoor != 0 {
		color = p.DoorColor
	}
	s := p.Scale
	west := Command{X: x0, Y: y0, W: 1, H: s, Color: color}
	north := Command{X: x0, Y: y0, W: s, H: 1, Color: color}
	east := Command{X: x0 + s - 1, Y: y0, W: 1, H: s, Color: color}
	south := Command{X: x0, Y: y0 + s - 1, W: s, H: 1, Color: color}
	rot := pl.Orientation & 3

	var out []Command
	switch pl.Type {
	case 0:
		out = append(out, [4]Command{west, north, east, south}[rot])
	case 2:
		out = append(out,
			[4]Command{west, north, east, south}[rot],
			[4]Command{north, east, south, west}[rot])
	case 3:
		corners := [4][2]int{{x0, y0}, {x0 + s - 1, y0}, {x0 + s - 1, y0 + s - 1}, {x0, y0 + s - 1}}
		c := corners[rot]
		out = append(out, Command{X: c[0], Y: c[1], W: 1, H: 1, Color: color})
	}
	return out
}

func cellSilhouette(p *Projector, _ region.Placement, _ defs.Object, x0, y0 int) []Command {
	return []Command{{X: x0, Y: y0, W: p.Scale, H: p.Scale, Color: p.BlockedColor}}
}

func scenerySilhouette(p *Projector, pl region.Placement, d defs.Object, x0, y0 int) []Command {
	if !d.Interactive() || d.Models == nil {
		return nil
	}
	s := p.Scale
	block := Command{X: x0, Y: y0, W: d.SizeX * s, H: d.SizeY * s, Color: p.BlockedColor}
	if d.Square() {
		return []Command{block}
	}
	if rot := pl.Orientation & 3; rot == 0 || rot == 2 {
		return []Command{block}
	}
	if d.SizeX < d.SizeY {
		block.Y += s
		return []Command{block}
	}

	// Turned footprints wider than deep are recentred on their middle row:
	// half the width is painted below the centre and half above it.
	centerY := y0
	if d.SizeY > 2 {
		centerY -= s
	}
	half := d.SizeX / 2 * s
	return []Command{
		{X: x0, Y: centerY, W: d.SizeY * s, H: half, Color: p.BlockedColor},
		{X: x0, Y: centerY - half, W: d.SizeY * s, H: half, Color: p.BlockedColor},
	}
}
