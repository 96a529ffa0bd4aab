package mathx

import "testing"

func TestMod(t *testing.T) {
	cases := []struct {
		a, b, md int
	}{
		{a: 0, b: 64, md: 0},
		{a: 63, b: 64, md: 63},
		{a: 64, b: 64, md: 0},
		{a: -1, b: 64, md: 63},
		{a: -64, b: 64, md: 0},
		{a: -65, b: 64, md: 63},
	}
	for _, c := range cases {
		if got := Mod(c.a, c.b); got != c.md {
			t.Fatalf("Mod(%d,%d)=%d want %d", c.a, c.b, got, c.md)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(1, 2, 126); got != 2 {
		t.Fatalf("Clamp low=%d", got)
	}
	if got := Clamp(200, 2, 126); got != 126 {
		t.Fatalf("Clamp high=%d", got)
	}
	if got := Clamp(50, 2, 126); got != 50 {
		t.Fatalf("Clamp mid=%d", got)
	}
}
