package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Config holds the optimizer settings shared by the command line tools.
type Config struct {
	// Paths
	OutputDir  string `json:"output_dir"`
	PreviewDir string `json:"preview_dir"`

	// Optimization settings
	Epsilon float32      `json:"epsilon"`
	Procs   []string     `json:"procs"`
	Actions string       `json:"terrain_actions"`
	Eyes    [][3]float32 `json:"eyes"`
	Workers int          `json:"workers"`

	// Preview settings
	PreviewSize   int    `json:"preview_size"`
	Supersample   int    `json:"supersample"`
	PreviewFormat string `json:"preview_format"`
	WebPQuality   int    `json:"webp_quality"`
}

// DefaultProcs is the optimization list run when none is configured.
var DefaultProcs = []string{"just_unify", "unify_by_tan_epsilon", "merge_vertex_buffers"}

// DefaultEyes are the terrain camera directions.
var DefaultEyes = [][3]float32{
	{-0.122788, -0.984808, -0.122788},
	{-0.40558, -0.819152, -0.40558},
	{-0.612372, -0.5, -0.612372},
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.PreviewDir != "" {
		c.PreviewDir = flags.PreviewDir
	}
	if flags.Epsilon > 0 {
		c.Epsilon = flags.Epsilon
	}
	if flags.Procs != "" {
		c.Procs = splitList(flags.Procs)
	}
	if flags.Actions != "" {
		c.Actions = flags.Actions
	}
	if flags.Format != "" {
		c.PreviewFormat = flags.Format
	}
	if flags.Quality > 0 {
		c.WebPQuality = flags.Quality
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	if c.OutputDir != "" {
		c.OutputDir = filepath.Clean(c.OutputDir)
	}

	// Defaults for optimization settings
	if c.Epsilon <= 0 {
		c.Epsilon = 0.2
	}
	if len(c.Procs) == 0 {
		c.Procs = append([]string(nil), DefaultProcs...)
	}
	if c.Actions == "" {
		c.Actions = "all"
	}
	if len(c.Eyes) == 0 {
		c.Eyes = append([][3]float32(nil), DefaultEyes...)
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}

	// Defaults for preview settings
	if c.PreviewSize <= 0 {
		c.PreviewSize = 256
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	c.PreviewFormat = strings.ToLower(c.PreviewFormat)
	if c.PreviewFormat == "" {
		c.PreviewFormat = "webp"
	}
	if c.WebPQuality <= 0 {
		c.WebPQuality = 90
	}
}

// EyeVectors returns the configured eye directions as vectors.
func (c *Config) EyeVectors() []mgl32.Vec3 {
	eyes := make([]mgl32.Vec3, len(c.Eyes))
	for i, e := range c.Eyes {
		eyes[i] = mgl32.Vec3(e)
	}
	return eyes
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	OutputDir  string
	PreviewDir string
	Epsilon    float32
	Procs      string
	Actions    string
	Format     string
	Quality    int
	Workers    int
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
