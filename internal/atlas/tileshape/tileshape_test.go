package tileshape

import "testing"

func TestFlatShapes(t *testing.T) {
	for rot := 0; rot < 4; rot++ {
		for i := 0; i < Cells; i++ {
			if Overlay(0, rot, i) {
				t.Fatalf("shape 0 rot %d cell %d painted overlay", rot, i)
			}
			if !Overlay(1, rot, i) {
				t.Fatalf("shape 1 rot %d cell %d missed overlay", rot, i)
			}
		}
	}
}

func TestRotationsArePermutations(t *testing.T) {
	for r, rot := range Rotations {
		var seen [Cells]bool
		for _, v := range rot {
			if seen[v] {
				t.Fatalf("rotation %d repeats cell %d", r, v)
			}
			seen[v] = true
		}
	}
}

func TestRotationPreservesCoverage(t *testing.T) {
	for s := range Shapes {
		want := 0
		for i := 0; i < Cells; i++ {
			if Overlay(s, 0, i) {
				want++
			}
		}
		for rot := 1; rot < 4; rot++ {
			got := 0
			for i := 0; i < Cells; i++ {
				if Overlay(s, rot, i) {
					got++
				}
			}
			if got != want {
				t.Fatalf("shape %d rot %d covers %d cells, want %d", s, rot, got, want)
			}
		}
	}
}

func TestHalfShapeRotation(t *testing.T) {
	// Shape 7 covers the two left columns; rotating by 2 mirrors it right.
	for i := 0; i < Cells; i++ {
		col := i % 4
		if got, want := Overlay(7, 0, i), col < 2; got != want {
			t.Fatalf("rot0 cell %d: got %v want %v", i, got, want)
		}
		if got, want := Overlay(7, 2, i), col >= 2; got != want {
			t.Fatalf("rot2 cell %d: got %v want %v", i, got, want)
		}
	}
}

func TestAtPixelScales(t *testing.T) {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			if got, want := AtPixel(3, 1, row, col, 8), Overlay(3, 1, (row/2)*4+col/2); got != want {
				t.Fatalf("pixel (%d,%d): got %v want %v", row, col, got, want)
			}
		}
	}
	if AtPixel(2, 0, 0, 3, 4) != Overlay(2, 0, 3) {
		t.Fatalf("scale 4 must map pixels one to one")
	}
}
