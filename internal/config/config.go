// Package config loads atlas.yaml, the knobs for one export run.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"regionatlas.dev/internal/atlas/colors"
	"regionatlas.dev/internal/atlas/compositor"
	"regionatlas.dev/internal/atlas/region"
)

type Config struct {
	Render Render   `yaml:"render"`
	Kinds  []string `yaml:"kinds"`
	Planes []int    `yaml:"planes"`
	Output Output   `yaml:"output"`
	Mirror Mirror   `yaml:"mirror"`
}

type Render struct {
	Scale       int `yaml:"scale"`
	BlendRadius int `yaml:"blend_radius"`
	// Lightness target for ground colours.
	Brightness int `yaml:"brightness"`
	// Palette gamma, 0.6 (brightest) to 0.9.
	PaletteBrightness float64 `yaml:"palette_brightness"`

	IgnoredObjects []int  `yaml:"ignored_objects"`
	Colors         Colors `yaml:"colors"`

	MapBlocked bool `yaml:"map_blocked"`
	MapObjects bool `yaml:"map_objects"`
}

// Colors are 0xAARRGGBB.
type Colors struct {
	Blocked  uint32 `yaml:"blocked"`
	Walkable uint32 `yaml:"walkable"`
	Door     uint32 `yaml:"door"`
}

type Output struct {
	Dir         string `yaml:"dir"`
	Chunks      bool   `yaml:"chunks"`
	FullImages  bool   `yaml:"full_images"`
	EmptyChunks bool   `yaml:"empty_chunks"`
	// PreviewSize is the longest side of preview PNGs; 0 disables them.
	PreviewSize int  `yaml:"preview_size"`
	Manifest    bool `yaml:"manifest"`
	// IndexDB is relative to Dir unless absolute; empty disables the index.
	IndexDB string `yaml:"index_db"`
	// Archive copies each run's outputs to archives/run_<id>/.
	Archive bool `yaml:"archive"`
	// Workers bounds concurrent chunk encoding; 0 means GOMAXPROCS.
	Workers int `yaml:"workers"`
}

type Mirror struct {
	Enabled         bool   `yaml:"enabled"`
	Endpoint        string `yaml:"endpoint"`
	Bucket          string `yaml:"bucket"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Prefix          string `yaml:"prefix"`
	Workers         int    `yaml:"workers"`
	QueueCapacity   int    `yaml:"queue_capacity"`
	EnqueueWaitMs   int    `yaml:"enqueue_wait_ms"`
}

func Defaults() Config {
	opts := compositor.DefaultOptions()
	kinds := make([]string, 0, len(compositor.Kinds))
	for _, k := range compositor.Kinds {
		kinds = append(kinds, string(k))
	}
	return Config{
		Render: Render{
			Scale:             opts.Scale,
			BlendRadius:       opts.BlendRadius,
			Brightness:        opts.Brightness,
			PaletteBrightness: colors.BrightnessMax,
			IgnoredObjects:    opts.IgnoredObjects,
			Colors: Colors{
				Blocked:  opts.BlockedColor,
				Walkable: opts.WalkableColor,
				Door:     opts.DoorColor,
			},
		},
		Kinds:  kinds,
		Planes: []int{0, 1, 2, 3},
		Output: Output{
			Dir:         "out",
			Chunks:      true,
			PreviewSize: 1024,
			Manifest:    true,
			IndexDB:     "index.sqlite",
		},
		Mirror: Mirror{
			Workers:       2,
			QueueCapacity: 1024,
			EnqueueWaitMs: 250,
		},
	}
}

// Load reads path over Defaults and applies ATLAS_* environment overrides.
// An empty path yields the defaults.
func Load(path string) (Config, error) {
	c := Defaults()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return c, err
		}
		if err := yaml.Unmarshal(raw, &c); err != nil {
			return c, fmt.Errorf("atlas.yaml: %w", err)
		}
	}
	c.applyEnv()
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("atlas.yaml: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("ATLAS_OUT_DIR")); v != "" {
		c.Output.Dir = v
	}
	c.Mirror.Enabled = envBool("ATLAS_R2_MIRROR", c.Mirror.Enabled)
	envString("ATLAS_R2_ENDPOINT", &c.Mirror.Endpoint)
	envString("ATLAS_R2_BUCKET", &c.Mirror.Bucket)
	envString("ATLAS_R2_ACCESS_KEY_ID", &c.Mirror.AccessKeyID)
	envString("ATLAS_R2_SECRET_ACCESS_KEY", &c.Mirror.SecretAccessKey)
	envString("ATLAS_R2_PREFIX", &c.Mirror.Prefix)
	c.Mirror.Workers = envInt("ATLAS_R2_UPLOAD_WORKERS", c.Mirror.Workers)
}

func (c Config) Validate() error {
	if c.Render.Scale <= 0 {
		return fmt.Errorf("render.scale must be > 0, got %d", c.Render.Scale)
	}
	if c.Output.Workers < 0 {
		return fmt.Errorf("output.workers must be >= 0, got %d", c.Output.Workers)
	}
	if c.Render.BlendRadius < 0 {
		return fmt.Errorf("render.blend_radius must be >= 0, got %d", c.Render.BlendRadius)
	}
	if b := c.Render.PaletteBrightness; b < colors.BrightnessMax || b > colors.BrightnessMin {
		return fmt.Errorf("render.palette_brightness must be within [%v, %v], got %v", colors.BrightnessMax, colors.BrightnessMin, b)
	}
	if _, err := c.ParsedKinds(); err != nil {
		return err
	}
	for _, z := range c.Planes {
		if !region.PlaneInRange(z) {
			return fmt.Errorf("planes: %d: %w", z, compositor.ErrPlaneRange)
		}
	}
	m := c.Mirror
	if m.Enabled && (m.Endpoint == "" || m.Bucket == "" || m.AccessKeyID == "" || m.SecretAccessKey == "") {
		return fmt.Errorf("mirror.enabled=true but endpoint/bucket/access_key_id/secret_access_key are not fully set")
	}
	return nil
}

func (c Config) ParsedKinds() ([]compositor.Kind, error) {
	out := make([]compositor.Kind, 0, len(c.Kinds))
	for _, s := range c.Kinds {
		k, err := compositor.ParseKind(s)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

// Options converts the render section for the compositor.
func (c Config) Options() compositor.Options {
	r := c.Render
	return compositor.Options{
		Scale:          r.Scale,
		BlendRadius:    r.BlendRadius,
		Brightness:     r.Brightness,
		IgnoredObjects: append([]int(nil), r.IgnoredObjects...),
		BlockedColor:   r.Colors.Blocked,
		WalkableColor:  r.Colors.Walkable,
		DoorColor:      r.Colors.Door,
		MapBlocked:     r.MapBlocked,
		MapObjects:     r.MapObjects,
	}
}

func envString(key string, dst *string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
