package defs

import (
	"bytes"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Catalog file names inside a definitions directory.
const (
	UnderlaysFile = "underlays.json"
	OverlaysFile  = "overlays.json"
	ObjectsFile   = "objects.json"
	TexturesFile  = "textures.json"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

type underlayJSON struct {
	ID            int  `json:"id"`
	Color         int  `json:"color"`
	Hue           *int `json:"hue,omitempty"`
	Saturation    *int `json:"saturation,omitempty"`
	Lightness     *int `json:"lightness,omitempty"`
	HueMultiplier *int `json:"hue_multiplier,omitempty"`
}

type overlayJSON struct {
	ID             int  `json:"id"`
	Color          int  `json:"color"`
	Texture        *int `json:"texture,omitempty"`
	SecondaryColor *int `json:"secondary_color,omitempty"`
	HideUnderlay   bool `json:"hide_underlay,omitempty"`
}

type objectJSON struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Category     int       `json:"category"`
	SizeX        *int      `json:"size_x,omitempty"`
	SizeY        *int      `json:"size_y,omitempty"`
	InteractType *int      `json:"interact_type,omitempty"`
	WallOrDoor   int       `json:"wall_or_door"`
	MapSceneID   *int      `json:"map_scene_id,omitempty"`
	Actions      []*string `json:"actions"`
	Models       []int     `json:"models"`
}

type textureJSON struct {
	ID         int `json:"id"`
	AverageHSL int `json:"average_hsl"`
}

// Load reads the definition catalogs from dir. Every file is validated
// against its embedded schema before decoding. textures.json is optional.
func Load(dir string) (*Tables, error) {
	t := NewTables(nil, nil, nil, nil)

	var underlays []underlayJSON
	if err := loadCatalog(dir, UnderlaysFile, false, t.Digests, &underlays); err != nil {
		return nil, err
	}
	for _, u := range underlays {
		if _, dup := t.Underlays[u.ID]; dup {
			return nil, fmt.Errorf("%s: duplicate id %d", UnderlaysFile, u.ID)
		}
		t.Underlays[u.ID] = u.toDef()
	}

	var overlays []overlayJSON
	if err := loadCatalog(dir, OverlaysFile, false, t.Digests, &overlays); err != nil {
		return nil, err
	}
	for _, o := range overlays {
		if _, dup := t.Overlays[o.ID]; dup {
			return nil, fmt.Errorf("%s: duplicate id %d", OverlaysFile, o.ID)
		}
		t.Overlays[o.ID] = o.toDef()
	}

	var objects []objectJSON
	if err := loadCatalog(dir, ObjectsFile, false, t.Digests, &objects); err != nil {
		return nil, err
	}
	for _, o := range objects {
		if _, dup := t.Objects[o.ID]; dup {
			return nil, fmt.Errorf("%s: duplicate id %d", ObjectsFile, o.ID)
		}
		t.Objects[o.ID] = o.toDef()
	}

	var textures []textureJSON
	if err := loadCatalog(dir, TexturesFile, true, t.Digests, &textures); err != nil {
		return nil, err
	}
	for _, x := range textures {
		t.Textures[x.ID] = Texture{ID: x.ID, AverageHSL: x.AverageHSL}
	}

	for _, o := range t.Overlays {
		if o.HasTexture() {
			if _, ok := t.Textures[o.Texture]; !ok {
				return nil, fmt.Errorf("%s: overlay %d references unknown texture %d", OverlaysFile, o.ID, o.Texture)
			}
		}
	}
	return t, nil
}

func loadCatalog(dir, name string, optional bool, digests map[string]string, out any) error {
	raw, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		if optional && os.IsNotExist(err) {
			digests[name] = sha256Hex(nil)
			return nil
		}
		return err
	}
	digests[name] = sha256Hex(raw)

	schema, err := compileSchema(name)
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func compileSchema(catalog string) (*jsonschema.Schema, error) {
	name := catalog[:len(catalog)-len(filepath.Ext(catalog))] + ".schema.json"
	b, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", name, err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("schema %s: %w", name, err)
	}
	return c.Compile(name)
}

// Digest is a stable digest over every catalog digest, used to tag runs.
func (t *Tables) Digest() string {
	names := make([]string, 0, len(t.Digests))
	for n := range t.Digests {
		names = append(names, n)
	}
	sort.Strings(names)
	var buf bytes.Buffer
	for _, n := range names {
		buf.WriteString(n)
		buf.WriteByte('=')
		buf.WriteString(t.Digests[n])
		buf.WriteByte('\n')
	}
	return sha256Hex(buf.Bytes())
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func (u underlayJSON) toDef() Underlay {
	d := Underlay{ID: u.ID, Color: u.Color}
	d.Derive()
	if u.Hue != nil {
		d.Hue = *u.Hue
	}
	if u.Saturation != nil {
		d.Saturation = *u.Saturation
	}
	if u.Lightness != nil {
		d.Lightness = *u.Lightness
	}
	if u.HueMultiplier != nil {
		d.HueMultiplier = *u.HueMultiplier
	}
	return d
}

func (o overlayJSON) toDef() Overlay {
	d := Overlay{ID: o.ID, Color: o.Color, Texture: -1, SecondaryColor: -1, HideUnderlay: o.HideUnderlay}
	if o.Texture != nil {
		d.Texture = *o.Texture
	}
	if o.SecondaryColor != nil {
		d.SecondaryColor = *o.SecondaryColor
	}
	d.Derive()
	return d
}

func (o objectJSON) toDef() Object {
	d := Object{
		ID:           o.ID,
		Name:         o.Name,
		Category:     o.Category,
		SizeX:        intOr(o.SizeX, 1),
		SizeY:        intOr(o.SizeY, 1),
		InteractType: intOr(o.InteractType, 2),
		WallOrDoor:   o.WallOrDoor,
		MapSceneID:   intOr(o.MapSceneID, -1),
		Actions:      o.Actions,
		Models:       o.Models,
	}
	return d
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
