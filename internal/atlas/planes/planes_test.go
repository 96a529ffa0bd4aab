package planes

import (
	"reflect"
	"testing"

	"regionatlas.dev/internal/atlas/region"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		name     string
		settings [region.Z]uint8
		z        int
		want     Resolution
	}{
		{
			name: "plain",
			z:    0,
			want: Resolution{Source: 0, Visible: true, Layers: []int{0}},
		},
		{
			name:     "bridge on plane 0 draws ground then bridge",
			settings: [region.Z]uint8{0, region.FlagBridge, 0, 0},
			z:        0,
			want:     Resolution{Bridge: true, Source: 1, Visible: true, Layers: []int{0, 1}},
		},
		{
			name:     "bridge on plane 1 lifts to 2",
			settings: [region.Z]uint8{0, region.FlagBridge, 0, 0},
			z:        1,
			want:     Resolution{Bridge: true, Source: 2, Visible: true, Layers: []int{2}},
		},
		{
			name:     "bridge past the top plane draws nothing",
			settings: [region.Z]uint8{0, region.FlagBridge, 0, 0},
			z:        3,
			want:     Resolution{Bridge: true, Source: 4},
		},
		{
			name:     "occluded",
			settings: [region.Z]uint8{region.FlagHidden, 0, 0, 0},
			z:        0,
			want:     Resolution{Source: 0},
		},
		{
			name:     "push-up draws the plane above too",
			settings: [region.Z]uint8{0, region.FlagPushUp, 0, 0},
			z:        0,
			want:     Resolution{Source: 0, Visible: true, PushUp: true, Layers: []int{0, 1}},
		},
		{
			name:     "occluded but pushed up",
			settings: [region.Z]uint8{region.FlagPushUp, region.FlagPushUp, 0, 0},
			z:        0,
			want:     Resolution{Source: 0, PushUp: true, Layers: []int{1}},
		},
		{
			name:     "push-up ignored on the top plane",
			settings: [region.Z]uint8{0, 0, 0, 0},
			z:        3,
			want:     Resolution{Source: 3, Visible: true, Layers: []int{3}},
		},
	}
	for _, c := range cases {
		r := region.New(10, 10)
		for z, s := range c.settings {
			r.Settings[z][7][9] = s
		}
		got := Resolve(r, c.z, 7, 9)
		if !reflect.DeepEqual(got, c.want) {
			t.Fatalf("%s: got %+v want %+v", c.name, got, c.want)
		}
	}
}

func TestBridgeNeverResolvesToRequestedPlane(t *testing.T) {
	r := region.New(10, 10)
	r.Settings[1][0][0] = region.FlagBridge
	for z := 0; z < region.Z; z++ {
		if got := Resolve(r, z, 0, 0); got.Source != z+1 {
			t.Fatalf("plane %d: source %d", z, got.Source)
		}
	}
}

func TestIndexLayers(t *testing.T) {
	r := region.New(10, 10)
	wx, wy := r.BaseX()+3, r.BaseY()+4
	r.Placements = []region.Placement{
		{ID: 1, Position: region.Position{X: wx, Y: wy, Z: 0}},
		{ID: 2, Position: region.Position{X: wx, Y: wy, Z: 1}},
		{ID: 3, Position: region.Position{X: wx + 1, Y: wy, Z: 0}},
		{ID: 4, Position: region.Position{X: wx, Y: wy, Z: 0}},
	}

	local, push := NewIndex(r).Layers(0, 3, 4)
	if len(local) != 2 || local[0].ID != 1 || local[1].ID != 4 || len(push) != 0 {
		t.Fatalf("plain: local=%v push=%v", local, push)
	}

	r.Settings[1][3][4] = region.FlagPushUp
	local, push = NewIndex(r).Layers(0, 3, 4)
	if len(local) != 2 || len(push) != 1 || push[0].ID != 2 {
		t.Fatalf("push-up: local=%v push=%v", local, push)
	}

	r.Settings[0][3][4] = region.FlagHidden
	local, push = NewIndex(r).Layers(0, 3, 4)
	if len(local) != 0 || len(push) != 1 {
		t.Fatalf("occluded: local=%v push=%v", local, push)
	}

	r.Settings[1][3][4] = region.FlagBridge
	r.Settings[0][3][4] = 0
	local, _ = NewIndex(r).Layers(0, 3, 4)
	if len(local) != 1 || local[0].ID != 2 {
		t.Fatalf("bridge: local=%v", local)
	}
}
