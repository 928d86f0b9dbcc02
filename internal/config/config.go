package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Config holds the scene and the audit settings.
type Config struct {
	Instances []Instance `json:"instances"`

	// Output
	OutputDir string `json:"output_dir"`
	Format    string `json:"format"` // heat map encoding: webp, tga or png

	// Audit settings
	Samples          int    `json:"samples"` // hits per triangle
	Rays             int    `json:"rays"`    // rays per hit and side
	Seed             int64  `json:"seed"`
	Workers          int    `json:"workers"`
	VerifyTransforms bool   `json:"verify_transforms"`
	LogLevel         string `json:"log_level"`

	// Heat map
	ImageSize   int `json:"image_size"`
	Supersample int `json:"supersample"`
}

// Instance places one mesh. Mesh is a builtin name (plane, grid,
// icosphere) or a PLY path, resolved against the config file's directory.
type Instance struct {
	Name      string     `json:"name"`
	Mesh      string     `json:"mesh"`
	Detail    int        `json:"detail"` // grid resolution or icosphere level
	Translate mgl64.Vec3 `json:"translate"`
	RotateDeg mgl64.Vec3 `json:"rotate_deg"`
	Scale     mgl64.Vec3 `json:"scale"`
}

// Load reads a JSON config file. Fields not set in the file keep their
// zero values; relative mesh paths are made relative to the file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for i := range cfg.Instances {
		m := cfg.Instances[i].Mesh
		if strings.HasSuffix(strings.ToLower(m), ".ply") && !filepath.IsAbs(m) {
			cfg.Instances[i].Mesh = filepath.Join(dir, m)
		}
	}
	return cfg, nil
}

// Flags holds CLI values that override the config file when non-zero.
type Flags struct {
	OutputDir string
	Format    string
	Samples   int
	Rays      int
	Seed      int64
	Workers   int
	Verbose   bool
}

// Resolve applies flag overrides and fills in defaults.
func (c *Config) Resolve(flags Flags) {
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.Samples > 0 {
		c.Samples = flags.Samples
	}
	if flags.Rays > 0 {
		c.Rays = flags.Rays
	}
	if flags.Seed != 0 {
		c.Seed = flags.Seed
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Verbose {
		c.LogLevel = "debug"
	}

	if len(c.Instances) == 0 {
		c.Instances = DefaultInstances()
	}
	if c.OutputDir == "" {
		c.OutputDir = "spawncheck-out"
	}
	c.Format = strings.ToLower(c.Format)
	if c.Format == "" {
		c.Format = "webp"
	}
	if c.Samples <= 0 {
		c.Samples = 16
	}
	if c.Rays <= 0 {
		c.Rays = 8
	}
	if c.Seed == 0 {
		c.Seed = 1
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.ImageSize <= 0 {
		c.ImageSize = 512
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
}

// Validate rejects settings Resolve cannot repair.
func (c *Config) Validate() error {
	switch c.Format {
	case "webp", "tga", "png":
	default:
		return fmt.Errorf("config: unknown format %q (want webp, tga or png)", c.Format)
	}
	for i, in := range c.Instances {
		if in.Mesh == "" {
			return fmt.Errorf("config: instance %d has no mesh", i)
		}
		if in.Scale[0] == 0 && in.Scale[1] == 0 && in.Scale[2] == 0 {
			continue
		}
		if in.Scale[0] == 0 || in.Scale[1] == 0 || in.Scale[2] == 0 {
			return fmt.Errorf("config: instance %d has a zero scale component %v", i, in.Scale)
		}
	}
	return nil
}

// DefaultInstances is the scene used when the config names none: a unit
// sphere near the origin, the same sphere far from it, and a stretched grid.
func DefaultInstances() []Instance {
	return []Instance{
		{Name: "sphere-near", Mesh: "icosphere", Detail: 3, Translate: mgl64.Vec3{0, 1, 0}},
		{Name: "sphere-far", Mesh: "icosphere", Detail: 3,
			Translate: mgl64.Vec3{4096, 512, -2048}, RotateDeg: mgl64.Vec3{10, 20, 30}, Scale: mgl64.Vec3{2, 2, 2}},
		{Name: "floor", Mesh: "grid", Detail: 16,
			RotateDeg: mgl64.Vec3{-90, 0, 0}, Scale: mgl64.Vec3{50, 50, 1}},
	}
}
