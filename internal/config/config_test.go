package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"regionatlas.dev/internal/atlas/compositor"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "atlas.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadEmptyPathIsDefaults(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	opts := c.Options()
	want := compositor.DefaultOptions()
	if opts.Scale != want.Scale || opts.BlendRadius != want.BlendRadius || opts.Brightness != want.Brightness {
		t.Fatalf("options=%+v want %+v", opts, want)
	}
	if opts.BlockedColor != 0xFF000000 || opts.WalkableColor != 0xFFFFFFFF {
		t.Fatalf("colors: blocked=%#x walkable=%#x", opts.BlockedColor, opts.WalkableColor)
	}
	kinds, err := c.ParsedKinds()
	if err != nil || len(kinds) != len(compositor.Kinds) {
		t.Fatalf("kinds=%v err=%v", kinds, err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeYAML(t, `
render:
  scale: 8
  colors:
    door: 0xFF00FF00
  map_blocked: true
kinds: [map, height]
planes: [0, 2]
output:
  dir: /tmp/atlas
  full_images: true
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Render.Scale != 8 || !c.Render.MapBlocked {
		t.Fatalf("render=%+v", c.Render)
	}
	if c.Render.Colors.Door != 0xFF00FF00 {
		t.Fatalf("door=%#x", c.Render.Colors.Door)
	}
	// Untouched fields keep their defaults.
	if c.Render.BlendRadius != 5 || c.Render.Colors.Blocked != 0xFF000000 {
		t.Fatalf("defaults lost: %+v", c.Render)
	}
	if len(c.Planes) != 2 || c.Planes[1] != 2 {
		t.Fatalf("planes=%v", c.Planes)
	}
	if !c.Output.FullImages || !c.Output.Chunks || c.Output.Dir != "/tmp/atlas" {
		t.Fatalf("output=%+v", c.Output)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ATLAS_OUT_DIR", "/data/out")
	t.Setenv("ATLAS_R2_MIRROR", "true")
	t.Setenv("ATLAS_R2_ENDPOINT", "r2.example.com")
	t.Setenv("ATLAS_R2_BUCKET", "atlas")
	t.Setenv("ATLAS_R2_ACCESS_KEY_ID", "id")
	t.Setenv("ATLAS_R2_SECRET_ACCESS_KEY", "secret")
	t.Setenv("ATLAS_R2_UPLOAD_WORKERS", "nope")

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Output.Dir != "/data/out" {
		t.Fatalf("dir=%q", c.Output.Dir)
	}
	if !c.Mirror.Enabled || c.Mirror.Bucket != "atlas" || c.Mirror.Workers != 2 {
		t.Fatalf("mirror=%+v", c.Mirror)
	}
}

func TestLoadRejects(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"scale", "render: {scale: 0}", "render.scale"},
		{"palette", "render: {palette_brightness: 1.5}", "palette_brightness"},
		{"kind", "kinds: [map, terrain]", "unknown kind"},
		{"mirror", "mirror: {enabled: true}", "mirror.enabled"},
		{"yaml", "render: [", "atlas.yaml"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeYAML(t, tc.body))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err=%v want substring %q", err, tc.want)
			}
		})
	}
}

func TestLoadRejectsPlane(t *testing.T) {
	_, err := Load(writeYAML(t, "planes: [0, 4]"))
	if !errors.Is(err, compositor.ErrPlaneRange) {
		t.Fatalf("err=%v want ErrPlaneRange", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err=%v want not exist", err)
	}
}
