// Package defs holds the decoded ground and object definition tables the
// compositors read from.
package defs

import "fmt"

// NoPaintColor marks an overlay that must not be painted.
const NoPaintColor = 0xFF00FF

type Underlay struct {
	ID    int
	Color int

	Hue           int
	Saturation    int
	Lightness     int
	HueMultiplier int
}

type Overlay struct {
	ID             int
	Color          int
	Texture        int // -1: none
	SecondaryColor int // -1: none
	HideUnderlay   bool

	Hue        int
	Saturation int
	Lightness  int

	OtherHue        int
	OtherSaturation int
	OtherLightness  int
}

func (o Overlay) HasTexture() bool   { return o.Texture >= 0 }
func (o Overlay) HasSecondary() bool { return o.SecondaryColor != -1 }
func (o Overlay) NoPaint() bool      { return o.Color == NoPaintColor }

type Object struct {
	ID           int
	Name         string
	Category     int
	SizeX, SizeY int
	InteractType int
	WallOrDoor   int
	MapSceneID   int
	// Actions keeps its null slots so menu positions survive.
	Actions []*string
	Models  []int
}

func (o Object) Square() bool { return o.SizeX == o.SizeY }

// Interactive reports whether the object has an interaction affordance.
func (o Object) Interactive() bool { return o.InteractType != 0 }

// Named reports whether the object has a real name. Unnamed objects carry the
// literal "null".
func (o Object) Named() bool { return o.Name != "null" }

// ActionLabels returns the non-null actions in menu order.
func (o Object) ActionLabels() []string {
	out := make([]string, 0, len(o.Actions))
	for _, a := range o.Actions {
		if a != nil {
			out = append(out, *a)
		}
	}
	return out
}

type Texture struct {
	ID         int
	AverageHSL int
}

// TextureAverages resolves the precomputed average colour of a texture.
type TextureAverages interface {
	TextureAverage(id int) (hsl int, ok bool)
}

// Tables are the id-keyed definition sets. They are read-only once loaded.
type Tables struct {
	Underlays map[int]Underlay
	Overlays  map[int]Overlay
	Objects   map[int]Object
	Textures  map[int]Texture

	// Digests maps each catalog file name to the sha256 of its raw bytes.
	Digests map[string]string
}

func NewTables(underlays []Underlay, overlays []Overlay, objects []Object, textures []Texture) *Tables {
	t := &Tables{
		Underlays: make(map[int]Underlay, len(underlays)),
		Overlays:  make(map[int]Overlay, len(overlays)),
		Objects:   make(map[int]Object, len(objects)),
		Textures:  make(map[int]Texture, len(textures)),
		Digests:   map[string]string{},
	}
	for _, d := range underlays {
		t.Underlays[d.ID] = d
	}
	for _, d := range overlays {
		t.Overlays[d.ID] = d
	}
	for _, d := range objects {
		t.Objects[d.ID] = d
	}
	for _, d := range textures {
		t.Textures[d.ID] = d
	}
	return t
}

func (t *Tables) Underlay(id int) (Underlay, bool) {
	d, ok := t.Underlays[id]
	return d, ok
}

func (t *Tables) Overlay(id int) (Overlay, bool) {
	d, ok := t.Overlays[id]
	return d, ok
}

func (t *Tables) Object(id int) (Object, bool) {
	d, ok := t.Objects[id]
	return d, ok
}

func (t *Tables) TextureAverage(id int) (int, bool) {
	d, ok := t.Textures[id]
	return d.AverageHSL, ok
}

// The Must lookups are used inside the compositors, where a region referring
// to an unknown id means the asset set is inconsistent.

func (t *Tables) MustUnderlay(id int) Underlay {
	d, ok := t.Underlays[id]
	if !ok {
		panic(fmt.Sprintf("defs: underlay %d not defined", id))
	}
	return d
}

func (t *Tables) MustOverlay(id int) Overlay {
	d, ok := t.Overlays[id]
	if !ok {
		panic(fmt.Sprintf("defs: overlay %d not defined", id))
	}
	return d
}

func (t *Tables) MustObject(id int) Object {
	d, ok := t.Objects[id]
	if !ok {
		panic(fmt.Sprintf("defs: object %d not defined", id))
	}
	return d
}
