package compositor

import (
	"github.com/sirupsen/logrus"

	"regionatlas.dev/internal/atlas/objects"
	"regionatlas.dev/internal/atlas/placements"
	"regionatlas.dev/internal/atlas/planes"
	"regionatlas.dev/internal/atlas/region"
)

// RegionObjects holds the metadata records of one region.
type RegionObjects struct {
	RegionX, RegionY int
	// Records is merged by id within the region.
	Records []objects.Record
}

// ObjectSet is the metadata of one plane.
type ObjectSet struct {
	Plane   int
	Regions []RegionObjects
	// All merges every region's records by id, in region order.
	All []objects.Record
}

// Objects projects every qualifying placement on plane z into metadata
// records. Region records are merged within the region only; the plane-wide
// set is a single merge over every region's raw records, so location patches
// apply once per plane and never to a region chunk.
func (c *Compositor) Objects(z int) (*ObjectSet, error) {
	if err := checkPlane(z); err != nil {
		return nil, err
	}
	set := &ObjectSet{Plane: z}
	var raw []objects.Record
	for _, r := range c.Grid.Regions() {
		recs := c.regionRecords(r, z)
		set.Regions = append(set.Regions, RegionObjects{
			RegionX: r.RegionX,
			RegionY: r.RegionY,
			Records: placements.DedupeWith(recs, nil),
		})
		raw = append(raw, recs...)
	}
	set.All = placements.Dedupe(raw)
	c.Logger.WithFields(logrus.Fields{"kind": KindObjects, "plane": z, "records": len(set.All)}).Debug("objects projected")
	return set, nil
}

func (c *Compositor) regionRecords(r *region.Region, z int) []objects.Record {
	s := c.Options.Scale
	ox, oy := c.origin(r, s)
	idx := planes.NewIndex(r)

	var out []objects.Record
	for x := 0; x < region.X; x++ {
		for y := 0; y < region.Y; y++ {
			local, pushDown := idx.Layers(z, x, y)
			for _, layer := range [2][]region.Placement{local, pushDown} {
				for _, pl := range layer {
					if !objects.Recorded(pl.Type) {
						continue
					}
					if rec, ok := c.projector.Record(pl, c.Defs.MustObject(pl.ID), x, y, ox, oy); ok {
						out = append(out, rec)
					}
				}
			}
		}
	}
	return out
}
