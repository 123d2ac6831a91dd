package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-uniforms/common"
	"github.com/Carmen-Shannon/oxy-uniforms/engine"
	"github.com/Carmen-Shannon/oxy-uniforms/engine/camera"
	"github.com/Carmen-Shannon/oxy-uniforms/engine/scene"
	"github.com/Carmen-Shannon/oxy-uniforms/engine/window"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var (
	// ErrUnsupportedFormat is returned for file extensions other than .toml, .yaml and .yml.
	ErrUnsupportedFormat = errors.New("unsupported config format")
	// ErrInvalidConfig is returned when a decoded value cannot be used.
	ErrInvalidConfig = errors.New("invalid config")
)

// Format is a config file encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Config describes a viewer session: the window, the camera, the sun, the drawable grid and the engine loop.
type Config struct {
	Window WindowConfig `toml:"window" yaml:"window"`
	Camera CameraConfig `toml:"camera" yaml:"camera"`
	Sun    SunConfig    `toml:"sun" yaml:"sun"`
	Scene  SceneConfig  `toml:"scene" yaml:"scene"`
	Engine EngineConfig `toml:"engine" yaml:"engine"`
}

// WindowConfig sizes the viewer window. The min/max limits bound interactive resizing; 0 leaves a limit open.
type WindowConfig struct {
	Title     string `toml:"title" yaml:"title"`
	Width     int    `toml:"width" yaml:"width"`
	Height    int    `toml:"height" yaml:"height"`
	MinWidth  int    `toml:"min_width" yaml:"min_width"`
	MinHeight int    `toml:"min_height" yaml:"min_height"`
	MaxWidth  int    `toml:"max_width" yaml:"max_width"`
	MaxHeight int    `toml:"max_height" yaml:"max_height"`
}

type CameraConfig struct {
	Position   []float64 `toml:"position" yaml:"position"`
	Target     []float64 `toml:"target" yaml:"target"`
	Up         []float64 `toml:"up" yaml:"up"`
	FovDegrees float64   `toml:"fov_degrees" yaml:"fov_degrees"`
	Near       float64   `toml:"near" yaml:"near"`
	Far        float64   `toml:"far" yaml:"far"`
}

// SunConfig holds the sun position in world coordinates. An empty position keeps the uniform state default.
type SunConfig struct {
	Position []float64 `toml:"position" yaml:"position"`
}

// SceneConfig lays drawables out on a square grid in the XZ plane.
type SceneConfig struct {
	Name            string  `toml:"name" yaml:"name"`
	Grid            int     `toml:"grid" yaml:"grid"`
	Spacing         float64 `toml:"spacing" yaml:"spacing"`
	BoundingRadius  float64 `toml:"bounding_radius" yaml:"bounding_radius"`
	CullingDisabled bool    `toml:"culling_disabled" yaml:"culling_disabled"`
	ComputeWorkers  int     `toml:"compute_workers" yaml:"compute_workers"`
}

type EngineConfig struct {
	TickRate         float64 `toml:"tick_rate" yaml:"tick_rate"`
	FrameLimit       float64 `toml:"frame_limit" yaml:"frame_limit"`
	Profiling        bool    `toml:"profiling" yaml:"profiling"`
	UniformBinding   int     `toml:"uniform_binding" yaml:"uniform_binding"`
	UniformAlignment uint64  `toml:"uniform_alignment" yaml:"uniform_alignment"`
}

// Load reads a config file, choosing the decoder from its extension.
//
// Parameters:
//   - path: path to a .toml, .yaml or .yml file
//
// Returns:
//   - Config: the decoded config with defaults applied
//   - error: error if the file cannot be read, decoded or validated
func Load(path string) (Config, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	c, err := Parse(data, format)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

// FormatFromPath maps a file extension to a Format.
//
// Parameters:
//   - path: the file path
//
// Returns:
//   - Format: the format for the extension
//   - error: ErrUnsupportedFormat for unknown extensions
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%q: %w", ext, ErrUnsupportedFormat)
	}
}

// Parse decodes data in the given format, applies defaults and validates the result.
//
// Parameters:
//   - data: the encoded config
//   - format: the encoding of data
//
// Returns:
//   - Config: the decoded config with defaults applied
//   - error: error if decoding or validation fails
func Parse(data []byte, format Format) (Config, error) {
	var c Config
	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &c)
	case FormatYAML:
		err = yaml.Unmarshal(data, &c)
	default:
		return Config{}, fmt.Errorf("%q: %w", format, ErrUnsupportedFormat)
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to decode %s: %w", format, err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Default returns the config used when no file is given.
//
// Returns:
//   - Config: the default config
func Default() Config {
	var c Config
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	c.Window.Title = common.Coalesce(c.Window.Title, "oxy-uniforms")
	c.Window.Width = common.Coalesce(c.Window.Width, 1280)
	c.Window.Height = common.Coalesce(c.Window.Height, 720)

	if len(c.Camera.Position) == 0 {
		c.Camera.Position = []float64{0, 10, 30}
	}
	if len(c.Camera.Target) == 0 {
		c.Camera.Target = []float64{0, 0, 0}
	}
	if len(c.Camera.Up) == 0 {
		c.Camera.Up = []float64{0, 1, 0}
	}
	c.Camera.FovDegrees = common.Coalesce(c.Camera.FovDegrees, 45)
	c.Camera.Near = common.Coalesce(c.Camera.Near, 0.1)
	c.Camera.Far = common.Coalesce(c.Camera.Far, 1000)

	c.Scene.Name = common.Coalesce(c.Scene.Name, "main")
	c.Scene.Grid = common.Coalesce(c.Scene.Grid, 10)
	c.Scene.Spacing = common.Coalesce(c.Scene.Spacing, 2)
	c.Scene.BoundingRadius = common.Coalesce(c.Scene.BoundingRadius, 1)

	c.Engine.TickRate = common.Coalesce(c.Engine.TickRate, 60)
	c.Engine.UniformAlignment = common.Coalesce(c.Engine.UniformAlignment, 256)
}

// Validate checks the values a component would otherwise reject or silently misuse.
//
// Returns:
//   - error: an ErrInvalidConfig wrapped error describing the first problem found
func (c Config) Validate() error {
	vectors := []struct {
		name  string
		value []float64
	}{
		{"camera.position", c.Camera.Position},
		{"camera.target", c.Camera.Target},
		{"camera.up", c.Camera.Up},
	}
	for _, v := range vectors {
		if len(v.value) != 3 {
			return fmt.Errorf("%s needs 3 components, got %d: %w", v.name, len(v.value), ErrInvalidConfig)
		}
	}
	if n := len(c.Sun.Position); n != 0 && n != 3 {
		return fmt.Errorf("sun.position needs 3 components, got %d: %w", n, ErrInvalidConfig)
	}
	if c.Camera.FovDegrees <= 0 || c.Camera.FovDegrees >= 180 {
		return fmt.Errorf("camera.fov_degrees %v out of range (0, 180): %w", c.Camera.FovDegrees, ErrInvalidConfig)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("camera near %v / far %v: %w", c.Camera.Near, c.Camera.Far, ErrInvalidConfig)
	}
	if err := c.Window.validate(); err != nil {
		return err
	}
	if c.Scene.Grid < 0 {
		return fmt.Errorf("scene.grid %d is negative: %w", c.Scene.Grid, ErrInvalidConfig)
	}
	return nil
}

// validate checks one dimension at a time that min <= size <= max, treating a 0 limit as open.
func (w WindowConfig) validate() error {
	dims := []struct {
		name           string
		size, min, max int
	}{
		{"width", w.Width, w.MinWidth, w.MaxWidth},
		{"height", w.Height, w.MinHeight, w.MaxHeight},
	}
	for _, d := range dims {
		if d.size <= 0 || d.min < 0 || d.max < 0 {
			return fmt.Errorf("window.%s %d (min %d, max %d) must be positive: %w", d.name, d.size, d.min, d.max, ErrInvalidConfig)
		}
		if d.min > 0 && d.size < d.min {
			return fmt.Errorf("window.%s %d is below min_%s %d: %w", d.name, d.size, d.name, d.min, ErrInvalidConfig)
		}
		if d.max > 0 && d.size > d.max {
			return fmt.Errorf("window.%s %d is above max_%s %d: %w", d.name, d.size, d.name, d.max, ErrInvalidConfig)
		}
	}
	return nil
}

func vec3(v []float64) mgl64.Vec3 {
	return mgl64.Vec3{v[0], v[1], v[2]}
}

// SunPosition returns the configured sun position, or nil when none is set.
//
// Returns:
//   - *mgl64.Vec3: the sun position in world coordinates, or nil
func (c Config) SunPosition() *mgl64.Vec3 {
	if len(c.Sun.Position) != 3 {
		return nil
	}
	p := vec3(c.Sun.Position)
	return &p
}

// WindowOptions converts the window section into window builder options.
//
// Returns:
//   - []window.WindowBuilderOption: the options
func (c Config) WindowOptions() []window.WindowBuilderOption {
	return []window.WindowBuilderOption{
		window.WithTitle(c.Window.Title),
		window.WithSize(c.Window.Width, c.Window.Height),
		window.WithMinSize(c.Window.MinWidth, c.Window.MinHeight),
		window.WithMaxSize(c.Window.MaxWidth, c.Window.MaxHeight),
	}
}

// NewCamera builds the configured camera. The aspect ratio is left at its default until
// the first viewport is applied.
//
// Returns:
//   - camera.Camera: the camera
func (c Config) NewCamera() camera.Camera {
	return camera.NewCamera(
		camera.WithPosition(vec3(c.Camera.Position)),
		camera.WithTarget(vec3(c.Camera.Target)),
		camera.WithUp(vec3(c.Camera.Up)),
		camera.WithFrustum(camera.NewPerspectiveFrustum(
			camera.WithFov(mgl64.DegToRad(c.Camera.FovDegrees)),
			camera.WithNear(c.Camera.Near),
			camera.WithFar(c.Camera.Far),
		)),
	)
}

// Drawables lays out Grid×Grid drawables centred on the origin.
//
// Returns:
//   - []scene.Drawable: the drawables, without IDs
func (c Config) Drawables() []scene.Drawable {
	n := c.Scene.Grid
	half := float64(n-1) / 2
	drawables := make([]scene.Drawable, 0, n*n)
	for i := range n {
		for j := range n {
			x := (float64(i) - half) * c.Scene.Spacing
			z := (float64(j) - half) * c.Scene.Spacing
			drawables = append(drawables, scene.Drawable{
				Model:          mgl64.Translate3D(x, 0, z),
				BoundingRadius: c.Scene.BoundingRadius,
			})
		}
	}
	return drawables
}

// NewScene builds the configured scene around cam, including its drawables and sun.
//
// Parameters:
//   - cam: the scene camera
//
// Returns:
//   - scene.Scene: the scene
//   - error: error if the sun position is rejected
func (c Config) NewScene(cam camera.Camera) (scene.Scene, error) {
	options := []scene.SceneBuilderOption{
		scene.WithDrawables(c.Drawables()...),
		scene.WithCullingDisabled(c.Scene.CullingDisabled),
	}
	if c.Scene.ComputeWorkers > 0 {
		options = append(options, scene.WithComputeWorkers(c.Scene.ComputeWorkers))
	}
	s := scene.NewScene(c.Scene.Name, cam, options...)
	if sun := c.SunPosition(); sun != nil {
		if err := s.SetSunPosition(sun); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// EngineOptions converts the engine section into engine builder options.
//
// Returns:
//   - []engine.EngineBuilderOption: the options
func (c Config) EngineOptions() []engine.EngineBuilderOption {
	return []engine.EngineBuilderOption{
		engine.WithTickRate(c.Engine.TickRate),
		engine.WithRenderFrameLimit(c.Engine.FrameLimit),
		engine.WithProfiling(c.Engine.Profiling),
		engine.WithUniformBinding(c.Engine.UniformBinding),
		engine.WithUniformAlignment(c.Engine.UniformAlignment),
	}
}

