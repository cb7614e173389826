package renderers

import (
	"fmt"
	"sort"

	"github.com/c3nav/maprender"
	"github.com/c3nav/maprender/renderers/blender"
	"github.com/c3nav/maprender/renderers/svg"
	"github.com/paulmach/orb"
)

type Options struct {
	SVG *svg.Options
}

type constructor func(bounds orb.Bound, scale float64, opts *Options) maprender.Engine

var engines = map[string]constructor{
	svg.FormatSVG: func(bounds orb.Bound, scale float64, opts *Options) maprender.Engine {
		return svg.New(bounds, scale, svgOptions(opts, svg.FormatSVG))
	},
	svg.FormatPNG: func(bounds orb.Bound, scale float64, opts *Options) maprender.Engine {
		return svg.New(bounds, scale, svgOptions(opts, svg.FormatPNG))
	},
	blender.Format: func(bounds orb.Bound, scale float64, opts *Options) maprender.Engine {
		return blender.New(bounds)
	},
}

func svgOptions(opts *Options, format string) *svg.Options {
	svgOpts := svg.DefaultOptions
	if opts != nil && opts.SVG != nil {
		svgOpts = *opts.SVG
	}
	svgOpts.Format = format
	return &svgOpts
}

// Formats returns the names of the supported output formats.
func Formats() []string {
	formats := make([]string, 0, len(engines))
	for format := range engines {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

// New returns a new engine for the output format.
func New(format string, bounds orb.Bound, scale float64, opts *Options) (maprender.Engine, error) {
	engine, ok := engines[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", maprender.ErrUnknownFormat, format)
	}
	return engine(bounds, scale, opts), nil
}

// Factory returns an engine factory with fixed options.
func Factory(opts *Options) maprender.EngineFactory {
	return func(format string, bounds orb.Bound, scale float64) (maprender.Engine, error) {
		return New(format, bounds, scale, opts)
	}
}
