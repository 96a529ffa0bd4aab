package objects

// Kind groups placement types by how they are drawn on the collision map.
type Kind int

const (
	KindNone Kind = iota
	// KindWall covers boundary walls, wall corners and doors (types 0-3).
	KindWall
	// KindSolid covers ground clutter drawn as a full cell (types <0, 8, 12-21).
	KindSolid
	// KindDiagonal is the diagonal wall marker (type 9).
	KindDiagonal
	// KindScenery covers interactive scenery such as trees and rocks (types 10-11).
	KindScenery
)

func KindOf(placementType int) Kind {
	switch {
	case placementType >= 0 && placementType <= 3:
		return KindWall
	case placementType < 0, placementType == 8, placementType >= 12 && placementType <= 21:
		return KindSolid
	case placementType == 9:
		return KindDiagonal
	case placementType == 10, placementType == 11:
		return KindScenery
	}
	return KindNone
}

func (k Kind) String() string {
	switch k {
	case KindWall:
		return "wall"
	case KindSolid:
		return "solid"
	case KindDiagonal:
		return "diagonal"
	case KindScenery:
		return "scenery"
	}
	return "none"
}

// Recorded reports whether placements of this type produce metadata records.
func Recorded(placementType int) bool {
	k := KindOf(placementType)
	return k == KindWall || k == KindScenery
}
