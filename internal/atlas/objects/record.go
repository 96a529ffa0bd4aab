package objects

import (
	"regionatlas.dev/internal/atlas/defs"
	"regionatlas.dev/internal/atlas/region"
)

// Record describes one object id and every place it was seen, in full map
// pixel coordinates.
type Record struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Category    int      `json:"category"`
	Actions     []string `json:"actions"`
	Coordinates [][2]int `json:"coordinates"`
	Size        []int    `json:"size"`
	Rotations   []int    `json:"rotations"`
}

// Record returns the metadata record for a placement standing on local tile
// (localX, localY) of a region whose pixel origin in the map is
// (originX, originY). Unnamed and non-interactive objects are skipped, as is
// every type that is not a wall or scenery.
func (p *Projector) Record(pl region.Placement, d defs.Object, localX, localY, originX, originY int) (Record, bool) {
	if !Recorded(pl.Type) || !d.Named() || !d.Interactive() {
		return Record{}, false
	}
	x0, y0 := p.Origin(d, localX, localY)
	x, y := originX+x0, originY+y0

	// The centre offset uses the footprint depth on both axes.
	centerX := x + d.SizeY*p.Scale/2
	centerY := y
	if d.SizeY > 2 {
		centerY = y - p.Scale
	}

	rotation := pl.Orientation
	if d.Square() {
		rotation = 0
	}
	return Record{
		ID:          d.ID,
		Name:        d.Name,
		Category:    d.Category,
		Actions:     d.ActionLabels(),
		Coordinates: [][2]int{{centerX, centerY}},
		Size:        []int{d.SizeX, d.SizeY},
		Rotations:   []int{rotation},
	}, true
}
