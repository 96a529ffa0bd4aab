// Package tileshape holds the 4x4 sub-cell masks used to draw shaped overlay
// tiles (slopes, corners and diagonals) on the 2D map.
package tileshape

// Cells is the number of sub-cells per tile (4x4, row-major).
const Cells = 16

// Shapes[shape][cell] is 1 where the overlay covers the sub-cell.
var Shapes = [13][Cells]uint8{
	{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
	{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
	{1, 0, 0, 0, 1, 1, 0, 0, 1, 1, 1, 0, 1, 1, 1, 1},
	{1, 1, 0, 0, 1, 1, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0},
	{0, 0, 1, 1, 0, 0, 1, 1, 0, 0, 0, 1, 0, 0, 0, 1},
	{0, 1, 1, 1, 0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
	{1, 1, 1, 0, 1, 1, 1, 0, 1, 1, 1, 1, 1, 1, 1, 1},
	{1, 1, 0, 0, 1, 1, 0, 0, 1, 1, 0, 0, 1, 1, 0, 0},
	{0, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 1, 1, 0, 0},
	{1, 1, 1, 1, 1, 1, 1, 1, 0, 1, 1, 1, 0, 0, 1, 1},
	{1, 1, 1, 1, 1, 1, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0},
	{0, 0, 0, 0, 0, 0, 1, 1, 0, 1, 1, 1, 0, 1, 1, 1},
	{0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 0, 1, 1, 1, 1},
}

// Rotations[rot][i] is the shape cell read for output cell i.
var Rotations = [4][Cells]uint8{
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
	{12, 8, 4, 0, 13, 9, 5, 1, 14, 10, 6, 2, 15, 11, 7, 3},
	{15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0},
	{3, 7, 11, 15, 2, 6, 10, 14, 1, 5, 9, 13, 0, 4, 8, 12},
}

// Overlay reports whether output sub-cell idx of a tile with the given shape
// and rotation is painted with the overlay colour. Out-of-range shapes or
// rotations are treated as fully overlaid.
func Overlay(shape, rotation, idx int) bool {
	if shape < 0 || shape >= len(Shapes) || idx < 0 || idx >= Cells {
		return true
	}
	rot := Rotations[rotation&3]
	return Shapes[shape][rot[idx]] != 0
}

// AtPixel is Overlay for pixel (row, col) of a tile drawn scale pixels wide.
// Each sub-cell covers scale/4 pixels per side.
func AtPixel(shape, rotation, row, col, scale int) bool {
	if scale <= 0 {
		return Overlay(shape, rotation, 0)
	}
	return Overlay(shape, rotation, (row*4/scale)*4+col*4/scale)
}
