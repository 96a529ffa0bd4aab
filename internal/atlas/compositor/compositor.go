// Package compositor renders whole-map artifacts for one plane at a time:
// the blended ground map, the collision map, object metadata and the height
// map, plus their per-region chunks.
package compositor

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"regionatlas.dev/internal/atlas/blend"
	"regionatlas.dev/internal/atlas/colors"
	"regionatlas.dev/internal/atlas/defs"
	"regionatlas.dev/internal/atlas/objects"
	"regionatlas.dev/internal/atlas/region"
)

var ErrPlaneRange = errors.New("plane out of range")

// Definitions is what the compositors read from the definition tables.
type Definitions interface {
	blend.Definitions
	MustObject(id int) defs.Object
}

type Options struct {
	// Scale is the number of pixels per tile side.
	Scale       int
	BlendRadius int
	// Brightness is the lightness target applied to ground colours.
	Brightness int

	IgnoredObjects []int

	BlockedColor  uint32
	WalkableColor uint32
	DoorColor     uint32

	// MapBlocked paints blocked tiles on the ground map.
	MapBlocked bool
	// MapObjects draws object silhouettes on the ground map.
	MapObjects bool
}

func DefaultOptions() Options {
	return Options{
		Scale:          4,
		BlendRadius:    blend.DefaultRadius,
		Brightness:     colors.DefaultLightness,
		IgnoredObjects: append([]int(nil), objects.DefaultIgnored...),
		BlockedColor:   objects.DefaultBlockedColor,
		WalkableColor:  0xFFFFFFFF,
		DoorColor:      objects.DefaultDoorColor,
	}
}

// Compositor is safe for concurrent use across planes: the grid, tables and
// palette are only read.
type Compositor struct {
	Grid    *region.Grid
	Defs    Definitions
	Palette *colors.Palette
	Options Options
	Logger  logrus.FieldLogger

	blender   *blend.Blender
	projector *objects.Projector
}

func New(grid *region.Grid, tables Definitions, palette *colors.Palette, opts Options, logger logrus.FieldLogger) *Compositor {
	if opts.Scale <= 0 {
		opts.Scale = 4
	}
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	p := objects.NewProjector(opts.Scale, opts.IgnoredObjects)
	p.BlockedColor = opts.BlockedColor
	p.DoorColor = opts.DoorColor
	return &Compositor{
		Grid:    grid,
		Defs:    tables,
		Palette: palette,
		Options: opts,
		Logger:  logger,
		blender: &blend.Blender{
			Grid:       grid,
			Defs:       tables,
			Palette:    palette,
			Radius:     opts.BlendRadius,
			Scale:      opts.Scale,
			Brightness: opts.Brightness,
		},
		projector: p,
	}
}

func checkPlane(z int) error {
	if !region.PlaneInRange(z) {
		return fmt.Errorf("%w: %d", ErrPlaneRange, z)
	}
	return nil
}

// origin is the top-left pixel of r in the full map at the given scale.
func (c *Compositor) origin(r *region.Region, scale int) (x, y int) {
	bx, by := c.Grid.DrawBase(r)
	return bx * scale, by * scale
}
