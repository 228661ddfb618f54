package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configurable paths and viewer settings.
type Config struct {
	// Paths
	BaseDir   string `json:"base_dir" yaml:"base_dir"`
	AssetDir  string `json:"asset_dir" yaml:"asset_dir"`
	Catalog   string `json:"catalog" yaml:"catalog"`
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Server
	Addr string `json:"addr" yaml:"addr"`

	// Viewer settings
	Width               int     `json:"width" yaml:"width"`
	Height              int     `json:"height" yaml:"height"`
	Placeholder         string  `json:"placeholder" yaml:"placeholder"`
	TargetSize          float64 `json:"target_size" yaml:"target_size"`
	RotationSensitivity float64 `json:"rotation_sensitivity" yaml:"rotation_sensitivity"`
	PanSensitivity      float64 `json:"pan_sensitivity" yaml:"pan_sensitivity"`
	RotationPeriodMS    int     `json:"rotation_period_ms" yaml:"rotation_period_ms"`
	AutoRotate          bool    `json:"auto_rotate" yaml:"auto_rotate"`
	AutoRotateSpeed     float64 `json:"auto_rotate_speed" yaml:"auto_rotate_speed"`
	FPS                 int     `json:"fps" yaml:"fps"`
	NoDamping           bool    `json:"no_damping" yaml:"no_damping"`
	Supersample         int     `json:"supersample" yaml:"supersample"`

	// Turntable settings
	Frames     int `json:"frames" yaml:"frames"`
	RenderSize int `json:"render_size" yaml:"render_size"`
	Workers    int `json:"workers" yaml:"workers"`
}

// Load reads a JSON or YAML config file, chosen by extension.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	BaseDir   string
	AssetDir  string
	Catalog   string
	OutputDir string
	Addr      string
	Width     int
	Height    int
	Frames    int
	Workers   int
}

// Resolve fills in any empty fields with auto-detected defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	override(&c.BaseDir, flags.BaseDir)
	override(&c.AssetDir, flags.AssetDir)
	override(&c.Catalog, flags.Catalog)
	override(&c.OutputDir, flags.OutputDir)
	override(&c.Addr, flags.Addr)
	overrideInt(&c.Width, flags.Width)
	overrideInt(&c.Height, flags.Height)
	overrideInt(&c.Frames, flags.Frames)
	overrideInt(&c.Workers, flags.Workers)

	// Auto-detect base dir if still empty
	if c.BaseDir == "" {
		c.BaseDir = detectBaseDir()
	}

	// Resolve relative paths against base dir
	if c.BaseDir != "" {
		c.AssetDir = under(c.BaseDir, c.AssetDir, "assets")
		c.Catalog = under(c.BaseDir, c.Catalog, findCatalog(c.BaseDir))
		c.OutputDir = under(c.BaseDir, c.OutputDir, "renders")
	}

	// Defaults for viewer settings
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.Width <= 0 {
		c.Width = 400
	}
	if c.Height <= 0 {
		c.Height = 400
	}
	if c.TargetSize <= 0 {
		c.TargetSize = 3
	}
	if c.RotationSensitivity <= 0 {
		c.RotationSensitivity = 2
	}
	if c.PanSensitivity <= 0 {
		c.PanSensitivity = 1
	}
	if c.RotationPeriodMS <= 0 {
		c.RotationPeriodMS = 2500
	}
	if c.AutoRotateSpeed <= 0 {
		c.AutoRotateSpeed = 2.0
	}
	if c.FPS <= 0 {
		c.FPS = 30
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.Frames <= 0 {
		c.Frames = 36
	}
	if c.RenderSize <= 0 {
		c.RenderSize = 512
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// RotationPeriod is the auto-rotate period for one full turn.
func (c Config) RotationPeriod() time.Duration {
	return time.Duration(c.RotationPeriodMS) * time.Millisecond
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func overrideInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

// under resolves p against base, using def when p is empty.
func under(base, p, def string) string {
	if p == "" {
		p = def
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

func detectBaseDir() string {
	// Try relative to executable
	exe, _ := os.Executable()
	if exe != "" {
		dir := filepath.Dir(exe)
		for _, base := range []string{dir, filepath.Dir(dir), filepath.Join(dir, "..", "..")} {
			if isDir(filepath.Join(base, "assets")) {
				return base
			}
		}
	}

	// Try current working directory, then its parent
	cwd, _ := os.Getwd()
	for _, base := range []string{cwd, filepath.Dir(cwd)} {
		if isDir(filepath.Join(base, "assets")) {
			return base
		}
	}
	return cwd
}

func isDir(p string) bool {
	st, err := os.Stat(p)
	return err == nil && st.IsDir()
}

func findCatalog(baseDir string) string {
	candidates := []string{"products.yaml", "products.yml", "products.json"}
	for _, c := range candidates {
		if _, err := os.Stat(filepath.Join(baseDir, c)); err == nil {
			return c
		}
	}
	return candidates[0]
}
