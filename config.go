package cubeview

import (
	"fmt"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration for YAML unmarshaling ("250ms", "1s").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config configures a cube viewer. Zero fields take the DefaultConfig value
// when loaded through LoadConfig.
type Config struct {
	Title  string  `yaml:"title"`
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	Depth  float64 `yaml:"depth"`

	ClearColor [4]float64 `yaml:"clear_color"`

	// Images holds up to six sources, one per face in F R U B L D order.
	Images        []string `yaml:"images"`
	FallbackImage string   `yaml:"fallback_image"`
	CubeSize      float64  `yaml:"cube_size"`

	// Translation defaults to the viewport center when unset.
	Translation     *[3]float64 `yaml:"translation"`
	RotationDegrees [3]float64  `yaml:"rotation_degrees"`
	Scale           [3]float64  `yaml:"scale"`

	TurnDuration   Duration `yaml:"turn_duration"`
	TextureMode    string   `yaml:"texture_mode"` // "modulate" or "color"
	MaxTextureSize int      `yaml:"max_texture_size"`

	ControlAddr   string `yaml:"control_addr"` // empty disables remote control
	ScreenshotDir string `yaml:"screenshot_dir"`
	Debug         bool   `yaml:"debug"`
}

// DefaultConfig returns the stock viewer configuration: a 400x400
// viewport, sky-blue background, the cube tilted to show three faces.
func DefaultConfig() Config {
	return Config{
		Title:           "cubeview",
		Width:           400,
		Height:          400,
		Depth:           DefaultDepth,
		ClearColor:      [4]float64{ColorSky.R, ColorSky.G, ColorSky.B, ColorSky.A},
		FallbackImage:   DefaultFallback,
		CubeSize:        100,
		RotationDegrees: [3]float64{40, 25, 325},
		Scale:           [3]float64{1, 1, 1},
		TurnDuration:    Duration(250 * time.Millisecond),
		TextureMode:     TextureModulate.String(),
		ScreenshotDir:   "screenshots",
	}
}

// LoadConfig reads a YAML config file over DefaultConfig and validates it.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML config data over DefaultConfig and validates it.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("config: viewport %dx%d: %w", c.Width, c.Height, ErrEmptyViewport)
	}
	if c.Depth <= 0 {
		return fmt.Errorf("config: depth must be positive, got %g", c.Depth)
	}
	if len(c.Images) > MaxImageSources {
		return fmt.Errorf("config: %w: %d images", ErrTooManySources, len(c.Images))
	}
	if c.CubeSize <= 0 {
		return fmt.Errorf("config: cube_size must be positive, got %g", c.CubeSize)
	}
	if c.TurnDuration < 0 {
		return fmt.Errorf("config: turn_duration must not be negative")
	}
	if c.MaxTextureSize < 0 {
		return fmt.Errorf("config: max_texture_size must not be negative")
	}
	if _, err := ParseTextureMode(c.TextureMode); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	for i, v := range c.ClearColor {
		if v < 0 || v > 1 {
			return fmt.Errorf("config: clear_color[%d] = %g outside [0, 1]", i, v)
		}
	}
	return nil
}

// InitialParams returns the starting transform: translation (or the
// viewport center), rotation converted to radians, and scale.
func (c Config) InitialParams() TransformParameters {
	t := mgl64.Vec3{float64(c.Width) / 2, float64(c.Height) / 2, 0}
	if c.Translation != nil {
		t = mgl64.Vec3(*c.Translation)
	}
	return TransformParameters{
		Translation: t,
		Rotation: mgl64.Vec3{
			DegreesToRadians(c.RotationDegrees[0]),
			DegreesToRadians(c.RotationDegrees[1]),
			DegreesToRadians(c.RotationDegrees[2]),
		},
		Scale: mgl64.Vec3(c.Scale),
	}
}

// Clear returns the clear color.
func (c Config) Clear() Color {
	return Color{c.ClearColor[0], c.ClearColor[1], c.ClearColor[2], c.ClearColor[3]}
}

// ImageSources returns exactly six sources, padding with empty entries that
// LoadImages replaces with the fallback.
func (c Config) ImageSources() []string {
	out := make([]string, MaxImageSources)
	copy(out, c.Images)
	return out
}
