package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/df07/go-progressive-gltracer/pkg/camera"
	"github.com/df07/go-progressive-gltracer/pkg/core"
	"github.com/df07/go-progressive-gltracer/pkg/renderer"
)

// Config is the complete viewer configuration
type Config struct {
	Window    WindowConfig    `toml:"window" yaml:"window" json:"window"`
	Camera    CameraConfig    `toml:"camera" yaml:"camera" json:"camera"`
	Render    RenderConfig    `toml:"render" yaml:"render" json:"render"`
	Shaders   ShaderConfig    `toml:"shaders" yaml:"shaders" json:"shaders"`
	Output    OutputConfig    `toml:"output" yaml:"output" json:"output"`
	Telemetry TelemetryConfig `toml:"telemetry" yaml:"telemetry" json:"telemetry"`
}

// WindowConfig sizes the visible window and the offscreen target
type WindowConfig struct {
	Title       string `toml:"title" yaml:"title" json:"title"`
	Width       int    `toml:"width" yaml:"width" json:"width"`
	Height      int    `toml:"height" yaml:"height" json:"height"`
	Supersample int    `toml:"supersample" yaml:"supersample" json:"supersample"` // Offscreen scale factor
	VSync       bool   `toml:"vsync" yaml:"vsync" json:"vsync"`
}

// CameraConfig holds the starting camera and input tuning
type CameraConfig struct {
	LookFrom      [3]float64 `toml:"lookfrom" yaml:"lookfrom" json:"lookfrom"`
	LookAt        [3]float64 `toml:"lookat" yaml:"lookat" json:"lookat"`
	Up            [3]float64 `toml:"up" yaml:"up" json:"up"`
	VFov          float64    `toml:"vfov" yaml:"vfov" json:"vfov"`                               // Degrees
	Aperture      float64    `toml:"aperture" yaml:"aperture" json:"aperture"`                   // Lens diameter
	FocusDistance float64    `toml:"focus_distance" yaml:"focus_distance" json:"focusDistance"` // 0 = |lookfrom - lookat|
	MoveSpeed     float64    `toml:"move_speed" yaml:"move_speed" json:"moveSpeed"`             // World units per second
	Sensitivity   float64    `toml:"sensitivity" yaml:"sensitivity" json:"sensitivity"`          // Degrees per pointer pixel
	ApertureStep  float64    `toml:"aperture_step" yaml:"aperture_step" json:"apertureStep"`
	FocusStep     float64    `toml:"focus_step" yaml:"focus_step" json:"focusStep"`
}

// RenderConfig holds the accumulation quality knobs
type RenderConfig struct {
	K                    int   `toml:"k" yaml:"k" json:"k"`
	Samples              int   `toml:"nsamples" yaml:"nsamples" json:"nsamples"`
	ResetOnQualityChange bool  `toml:"reset_on_quality_change" yaml:"reset_on_quality_change" json:"resetOnQualityChange"`
	Seed                 int64 `toml:"seed" yaml:"seed" json:"seed"` // 0 = time based
}

// ShaderConfig points at an optional directory overriding the embedded shaders
type ShaderConfig struct {
	Dir   string `toml:"dir" yaml:"dir" json:"dir"`
	Watch bool   `toml:"watch" yaml:"watch" json:"watch"`
}

// OutputConfig controls where snapshots are written
type OutputConfig struct {
	Dir string `toml:"dir" yaml:"dir" json:"dir"`
}

// TelemetryConfig controls the optional HTTP telemetry server
type TelemetryConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled" json:"enabled"`
	Addr    string `toml:"addr" yaml:"addr" json:"addr"`
}

// Default returns the viewer's built-in configuration
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:       "Progressive GL Tracer",
			Width:       400,
			Height:      320,
			Supersample: 2,
			VSync:       true,
		},
		Camera: CameraConfig{
			LookFrom:     [3]float64{0, 0, 5},
			LookAt:       [3]float64{0, 0, -1},
			Up:           [3]float64{0, 1, 0},
			VFov:         45,
			Aperture:     0.1,
			MoveSpeed:    1,
			Sensitivity:  0.1,
			ApertureStep: 0.01,
			FocusStep:    0.25,
		},
		Render: RenderConfig{
			K:                    3,
			Samples:              2,
			ResetOnQualityChange: true,
		},
		Output: OutputConfig{
			Dir: "output",
		},
		Telemetry: TelemetryConfig{
			Addr: "localhost:8080",
		},
	}
}

// Load reads a TOML (.toml) or YAML (.yaml, .yml) file on top of the
// defaults. Keys absent from the file keep their default value.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: reading config: %v", core.ErrResourceLoadFault, err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = decodeTOML(data, &cfg)
	case ".yaml", ".yml":
		err = decodeYAML(data, &cfg)
	default:
		return Config{}, fmt.Errorf("%w: unsupported config format %q", core.ErrConfigurationFault, ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("%w: parsing %s: %v", core.ErrConfigurationFault, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeTOML(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(cfg)
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks every value the viewer cannot start with
func (c Config) Validate() error {
	var problems []string
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		problems = append(problems, fmt.Sprintf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Window.Supersample < 1 {
		problems = append(problems, fmt.Sprintf("supersample %d must be at least 1", c.Window.Supersample))
	}
	if c.Render.K < 0 || c.Render.Samples < 0 {
		problems = append(problems, fmt.Sprintf("k %d and nsamples %d must not be negative", c.Render.K, c.Render.Samples))
	}
	if c.Camera.MoveSpeed < 0 || c.Camera.Sensitivity < 0 {
		problems = append(problems, "move speed and sensitivity must not be negative")
	}
	if c.Camera.ApertureStep < 0 || c.Camera.FocusStep < 0 {
		problems = append(problems, "aperture and focus steps must not be negative")
	}
	if c.Camera.FocusDistance < 0 {
		problems = append(problems, fmt.Sprintf("focus distance %g must not be negative", c.Camera.FocusDistance))
	}

	if c.Camera.LookFrom == c.Camera.LookAt {
		problems = append(problems, "lookfrom and lookat must differ")
	}

	if _, err := camera.Recompute(camera.NewFlyCamera(c.Fly()).Params(c.AspectRatio())); err != nil {
		problems = append(problems, fmt.Sprintf("camera: %v", err))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", core.ErrConfigurationFault, strings.Join(problems, "; "))
	}
	return nil
}

// AspectRatio returns the window's width / height
func (c Config) AspectRatio() float64 {
	return c.Viewport().AspectRatio()
}

// Fly returns the starting fly camera configuration
func (c Config) Fly() camera.FlyConfig {
	return camera.FlyConfig{
		LookFrom:      mgl64.Vec3(c.Camera.LookFrom),
		LookAt:        mgl64.Vec3(c.Camera.LookAt),
		Up:            mgl64.Vec3(c.Camera.Up),
		VFov:          c.Camera.VFov,
		Aperture:      c.Camera.Aperture,
		FocusDistance: c.Camera.FocusDistance,
		MoveSpeed:     c.Camera.MoveSpeed,
		Sensitivity:   c.Camera.Sensitivity,
	}
}

// Viewport returns the window and offscreen target dimensions
func (c Config) Viewport() renderer.Viewport {
	return renderer.Viewport{
		Width:       c.Window.Width,
		Height:      c.Window.Height,
		Supersample: c.Window.Supersample,
	}
}

// Accumulation returns the starting quality knobs and reset policy
func (c Config) Accumulation() renderer.AccumulationConfig {
	return renderer.AccumulationConfig{
		QualityK:             c.Render.K,
		SampleCount:          c.Render.Samples,
		ResetOnQualityChange: c.Render.ResetOnQualityChange,
	}
}

// LensSteps returns the aperture and focus command increments
func (c Config) LensSteps() renderer.LensSteps {
	return renderer.LensSteps{
		Aperture: c.Camera.ApertureStep,
		Focus:    c.Camera.FocusStep,
	}
}
