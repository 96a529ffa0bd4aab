package region

import "regionatlas.dev/internal/atlas/mathx"

// Region dimensions in tiles, and the number of planes.
const (
	X = 64
	Y = 64
	Z = 4
)

// Tile attribute bits.
const (
	FlagBlocked uint8 = 1 << 0
	FlagBridge  uint8 = 1 << 1
	FlagPushUp  uint8 = 1 << 3
	FlagHidden  uint8 = 1 << 4

	// MaskOccluded suppresses normal ground rendering when any bit is set.
	MaskOccluded = FlagPushUp | FlagHidden
)

type Position struct {
	X, Y, Z int
}

// Placement is one object instance inside a region, in world coordinates.
type Placement struct {
	ID          int      `json:"id"`
	Type        int      `json:"type"`
	Orientation int      `json:"orientation"`
	Position    Position `json:"position"`
}

type Layer[T any] [Z][X][Y]T

type Region struct {
	RegionX, RegionY int

	Settings         Layer[uint8]
	Underlays        Layer[uint16]
	Overlays         Layer[uint16]
	OverlayPaths     Layer[uint8]
	OverlayRotations Layer[uint8]
	Heights          Layer[int32]

	Placements []Placement
}

func New(regionX, regionY int) *Region {
	return &Region{RegionX: regionX, RegionY: regionY}
}

// FromID builds an empty region for a packed id (regionX<<8 | regionY).
func FromID(id int) *Region {
	return New(id>>8, id&0xFF)
}

func (r *Region) ID() int    { return r.RegionX<<8 | r.RegionY }
func (r *Region) BaseX() int { return r.RegionX * X }
func (r *Region) BaseY() int { return r.RegionY * Y }

func (r *Region) Setting(z, x, y int) uint8       { return r.Settings[z][x][y] }
func (r *Region) UnderlayID(z, x, y int) int      { return int(r.Underlays[z][x][y]) }
func (r *Region) OverlayID(z, x, y int) int       { return int(r.Overlays[z][x][y]) }
func (r *Region) OverlayPath(z, x, y int) int     { return int(r.OverlayPaths[z][x][y]) }
func (r *Region) OverlayRotation(z, x, y int) int { return int(r.OverlayRotations[z][x][y]) }
func (r *Region) Height(z, x, y int) int          { return int(r.Heights[z][x][y]) }

// Contains reports whether the world tile lies inside the region.
func (r *Region) Contains(worldX, worldY int) bool {
	return worldX >= r.BaseX() && worldX < r.BaseX()+X &&
		worldY >= r.BaseY() && worldY < r.BaseY()+Y
}

// LocalCoord folds a region-relative coordinate, which may run past either
// edge while scanning a neighbourhood, back into [0, 64).
func LocalCoord(d int) int {
	return mathx.Mod(d, X)
}

// PlaneInRange reports whether z is a valid plane index.
func PlaneInRange(z int) bool {
	return z >= 0 && z < Z
}
