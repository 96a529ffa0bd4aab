// Package planes decides which plane's data is drawn for a tile when a map
// of one plane is rendered. Bridges lift the source plane by one and
// push-up flags draw a second, higher plane over the same tile.
package planes

import "regionatlas.dev/internal/atlas/region"

// Resolution describes how one tile of a requested plane is drawn.
type Resolution struct {
	// Bridge is set when plane 1 marks the tile as a bridge.
	Bridge bool
	// Source is the plane the tile's content is read from.
	Source int
	// Visible is false when the requested plane occludes the tile.
	Visible bool
	// PushUp is set when the plane above also draws over this tile.
	PushUp bool
	// Layers lists the planes whose ground is drawn, bottom first.
	Layers []int
}

// Drawn reports whether anything is drawn for the tile.
func (r Resolution) Drawn() bool { return len(r.Layers) > 0 }

// Resolve classifies tile (x, y) of region r for plane z. z must be in
// [0, 3].
func Resolve(r *region.Region, z, x, y int) Resolution {
	res := Resolution{Bridge: r.Setting(1, x, y)&region.FlagBridge != 0}
	res.Source = z
	if res.Bridge {
		res.Source++
	}
	if res.Source >= region.Z {
		return res
	}

	res.Visible = r.Setting(z, x, y)&region.MaskOccluded == 0
	if res.Visible {
		if z == 0 && res.Bridge {
			res.Layers = append(res.Layers, 0)
		}
		res.Layers = append(res.Layers, res.Source)
	}

	if res.Source < region.Z-1 && r.Setting(z+1, x, y)&region.FlagPushUp != 0 {
		res.PushUp = true
		res.Layers = append(res.Layers, res.Source+1)
	}
	return res
}

// objectRule is the placement filter for one tile.
type objectRule struct {
	tileZ   int
	visible bool
	pushUp  bool
}

func ruleAt(r *region.Region, z, x, y int) objectRule {
	rule := objectRule{
		tileZ:   z,
		visible: r.Setting(z, x, y)&region.MaskOccluded == 0,
		pushUp:  z < region.Z-1 && r.Setting(z+1, x, y)&region.FlagPushUp != 0,
	}
	if r.Setting(1, x, y)&region.FlagBridge != 0 {
		rule.tileZ++
	}
	return rule
}

func (rule objectRule) split(at []region.Placement) (local, pushDown []region.Placement) {
	for _, p := range at {
		switch {
		case p.Position.Z == rule.tileZ && rule.visible:
			local = append(local, p)
		case rule.pushUp && p.Position.Z == rule.tileZ+1:
			pushDown = append(pushDown, p)
		}
	}
	return local, pushDown
}

// Index groups a region's placements by local tile.
type Index struct {
	r     *region.Region
	cells map[[2]int][]region.Placement
}

func NewIndex(r *region.Region) *Index {
	idx := &Index{r: r, cells: make(map[[2]int][]region.Placement)}
	for _, p := range r.Placements {
		x, y := p.Position.X-r.BaseX(), p.Position.Y-r.BaseY()
		if x < 0 || y < 0 || x >= region.X || y >= region.Y {
			continue
		}
		k := [2]int{x, y}
		idx.cells[k] = append(idx.cells[k], p)
	}
	return idx
}

// Layers splits the placements standing on local tile (x, y) into the
// plane-local layer and the push-down layer drawn over it when plane z is
// rendered. Order within a layer follows the region's placement order.
func (idx *Index) Layers(z, x, y int) (local, pushDown []region.Placement) {
	at := idx.cells[[2]int{x, y}]
	if len(at) == 0 {
		return nil, nil
	}
	return ruleAt(idx.r, z, x, y).split(at)
}
