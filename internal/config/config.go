package config

import (
	"fmt"
	"image/color"
	"os"
	"time"

	"github.com/c3nav/maprender"
	"github.com/c3nav/maprender/renderers"
	"github.com/c3nav/maprender/renderers/svg"
	"github.com/tdewolff/canvas"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel string `yaml:"log_level"`
	SVG      SVG    `yaml:"svg"`
	Cache    Cache  `yaml:"cache"`
	Render   Render `yaml:"render"`
}

type SVG struct {
	Rasterizer string        `yaml:"rasterizer"`
	Timeout    time.Duration `yaml:"timeout"`
	Buffer     float64       `yaml:"buffer"`
	Minify     bool          `yaml:"minify"`
}

type Cache struct {
	RenderDataTTL time.Duration `yaml:"render_data_ttl"`
	ResponseTTL   time.Duration `yaml:"response_ttl"`
	Responses     bool          `yaml:"responses"`

	RenderDataCapacity uint64 `yaml:"render_data_capacity"`
	ResponseCapacity   uint64 `yaml:"response_capacity"`
}

type Render struct {
	DefaultMinAltitude int     `yaml:"default_min_altitude"`
	Fill               string  `yaml:"fill"`
	Stroke             string  `yaml:"stroke"`
	StrokeWidth        float64 `yaml:"stroke_width"`
}

// Default returns the configuration used for settings missing from the file.
func Default() Config {
	return Config{
		LogLevel: "info",
		SVG: SVG{
			Rasterizer: string(svg.RSVGConvert),
			Timeout:    30 * time.Second,
			Buffer:     1.0,
		},
		Cache: Cache{
			RenderDataTTL: 10 * time.Minute,
			ResponseTTL:   time.Minute,

			RenderDataCapacity: maprender.DefaultRenderDataCapacity,
			ResponseCapacity:   maprender.DefaultResponseCapacity,
		},
		Render: Render{
			Fill: "#d1d1d1",
		},
	}
}

// Load reads the YAML configuration file on top of the defaults. An empty filename returns the defaults.
func Load(filename string) (Config, error) {
	cfg := Default()
	if filename == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(filename)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", filename, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", filename, err)
	}
	return cfg, nil
}

// Validate checks settings that would otherwise only fail at render time.
func (cfg Config) Validate() error {
	if _, err := svg.ParseRasterizer(cfg.SVG.Rasterizer); err != nil {
		return err
	} else if cfg.SVG.Timeout < 0 {
		return fmt.Errorf("negative rasterizer timeout: %v", cfg.SVG.Timeout)
	} else if cfg.SVG.Buffer < 0.0 {
		return fmt.Errorf("negative buffer: %v", cfg.SVG.Buffer)
	}
	return nil
}

// RendererOptions returns the engine options.
func (cfg Config) RendererOptions() *renderers.Options {
	rasterizer, _ := svg.ParseRasterizer(cfg.SVG.Rasterizer)
	return &renderers.Options{
		SVG: &svg.Options{
			Minify:     cfg.SVG.Minify,
			Buffer:     cfg.SVG.Buffer,
			Rasterizer: rasterizer,
			Timeout:    cfg.SVG.Timeout,
		},
	}
}

// Style returns the style of altitude areas.
func (cfg Config) Style() maprender.Style {
	style := maprender.Style{
		Fill:        parseColor(cfg.Render.Fill),
		Stroke:      parseColor(cfg.Render.Stroke),
		StrokeWidth: cfg.Render.StrokeWidth,
	}
	if style.Stroke != nil {
		style.StrokeLineJoin = "round"
	}
	return style
}

func parseColor(s string) color.Color {
	if s == "" || s == "none" {
		return nil
	}
	return canvas.Hex(s)
}
