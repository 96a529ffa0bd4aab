package defs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeCatalogs(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestLoadDerivesColoursAndDefaults(t *testing.T) {
	dir := writeCatalogs(t, map[string]string{
		UnderlaysFile: `[{"id":0,"color":16711680},{"id":1,"color":8421504,"hue":7}]`,
		OverlaysFile:  `[{"id":0,"color":65280},{"id":1,"color":16711935},{"id":2,"color":0,"texture":3,"secondary_color":65280}]`,
		ObjectsFile:   `[{"id":1276,"name":"Tree","actions":["Chop down",null,null,null,"Examine"],"models":[1]}]`,
		TexturesFile:  `[{"id":3,"average_hsl":4242}]`,
	})

	tables, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	red := tables.MustUnderlay(0)
	if red.Hue != 0 || red.Saturation != 255 || red.Lightness != 127 || red.HueMultiplier != 255 {
		t.Fatalf("red underlay: %+v", red)
	}
	grey := tables.MustUnderlay(1)
	if grey.Hue != 7 || grey.Saturation != 0 || grey.HueMultiplier != 1 {
		t.Fatalf("grey underlay: %+v", grey)
	}

	green := tables.MustOverlay(0)
	if green.Hue != 85 || green.Saturation != 255 || green.Lightness != 127 {
		t.Fatalf("green overlay: %+v", green)
	}
	if green.HasTexture() || green.HasSecondary() {
		t.Fatalf("green overlay should have no texture or secondary colour")
	}
	if !tables.MustOverlay(1).NoPaint() {
		t.Fatalf("magenta overlay must be no-paint")
	}
	textured := tables.MustOverlay(2)
	if !textured.HasTexture() || textured.OtherHue != 85 {
		t.Fatalf("textured overlay: %+v", textured)
	}
	if avg, ok := tables.TextureAverage(3); !ok || avg != 4242 {
		t.Fatalf("texture average=%d ok=%v", avg, ok)
	}

	tree := tables.MustObject(1276)
	if tree.SizeX != 1 || tree.SizeY != 1 || tree.InteractType != 2 || tree.MapSceneID != -1 {
		t.Fatalf("object defaults: %+v", tree)
	}
	if got := strings.Join(tree.ActionLabels(), ","); got != "Chop down,Examine" {
		t.Fatalf("actions=%q", got)
	}
	if len(tables.Digests) != 4 || tables.Digest() == "" {
		t.Fatalf("digests=%v", tables.Digests)
	}
}

func TestLoadRejectsSchemaViolations(t *testing.T) {
	dir := writeCatalogs(t, map[string]string{
		UnderlaysFile: `[{"id":0}]`,
		OverlaysFile:  `[]`,
		ObjectsFile:   `[]`,
	})
	_, err := Load(dir)
	if err == nil || !strings.Contains(err.Error(), UnderlaysFile) {
		t.Fatalf("expected underlays schema error, got %v", err)
	}
}

func TestLoadTexturesOptionalButReferencesChecked(t *testing.T) {
	dir := writeCatalogs(t, map[string]string{
		UnderlaysFile: `[]`,
		OverlaysFile:  `[{"id":0,"color":0}]`,
		ObjectsFile:   `[]`,
	})
	if _, err := Load(dir); err != nil {
		t.Fatalf("Load without textures: %v", err)
	}

	dir = writeCatalogs(t, map[string]string{
		UnderlaysFile: `[]`,
		OverlaysFile:  `[{"id":0,"color":0,"texture":9}]`,
		ObjectsFile:   `[]`,
	})
	if _, err := Load(dir); err == nil {
		t.Fatalf("expected unknown texture error")
	}
}

func TestLoadRejectsDuplicateIDs(t *testing.T) {
	dir := writeCatalogs(t, map[string]string{
		UnderlaysFile: `[]`,
		OverlaysFile:  `[]`,
		ObjectsFile:   `[{"id":5,"name":"a"},{"id":5,"name":"b"}]`,
	})
	if _, err := Load(dir); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestMustLookupPanicsOnMissingID(t *testing.T) {
	tables := NewTables(nil, nil, nil, nil)
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic")
		}
	}()
	tables.MustObject(42)
}

func TestObjectPredicates(t *testing.T) {
	o := Object{Name: "null", SizeX: 2, SizeY: 1}
	if o.Named() || o.Square() || !(Object{InteractType: 1}).Interactive() {
		t.Fatalf("predicates wrong for %+v", o)
	}
}
