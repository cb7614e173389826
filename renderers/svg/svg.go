package svg

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/c3nav/maprender"
	"github.com/paulmach/orb"
	"github.com/tdewolff/minify/v2"
	minifySVG "github.com/tdewolff/minify/v2/svg"
)

// Output formats of the SVG engine.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
)

type Options struct {
	Format string
	Minify bool

	// Buffer is the margin in model units that is rendered around the image before rasterizing, so that shadows at the edges are not cut off.
	Buffer float64

	Rasterizer Rasterizer
	Command    []string // replaces the rasterizer command line when set
	Timeout    time.Duration
}

var DefaultOptions = Options{
	Format:     FormatSVG,
	Rasterizer: RSVGConvert,
	Timeout:    30 * time.Second,
}

// SVG is a 2D engine that assembles an SVG document in memory. It is used by one render request only.
type SVG struct {
	bounds        orb.Bound
	scale         float64
	width, height float64
	bufferPx      int
	toPixels      func(orb.Point) orb.Point

	defs *Element
	g    *Element
	defI int

	geometries map[string]maprender.Geometry
	clipPaths  map[string]bool
	blurs      map[float64]string
	footprints maprender.Footprints

	opts Options
}

// New returns an SVG engine covering bounds with scale pixels per model unit.
func New(bounds orb.Bound, scale float64, opts *Options) *SVG {
	if opts == nil {
		defaultOptions := DefaultOptions
		opts = &defaultOptions
	}
	return &SVG{
		bounds:     bounds,
		scale:      scale,
		width:      bounds.Max[0] - bounds.Min[0],
		height:     bounds.Max[1] - bounds.Min[1],
		bufferPx:   int(math.Ceil(opts.Buffer * scale)),
		toPixels:   maprender.PixelTransform(bounds, scale),
		defs:       NewElement("defs"),
		g:          NewElement("g"),
		geometries: map[string]maprender.Geometry{},
		clipPaths:  map[string]bool{},
		blurs:      map[float64]string{},
		opts:       *opts,
	}
}

// Size returns the size of the image in pixels, including the buffer margin on both sides if requested.
func (r *SVG) Size(buffer bool) (float64, float64) {
	w, h := r.width*r.scale, r.height*r.scale
	if buffer {
		w += float64(2 * r.bufferPx)
		h += float64(2 * r.bufferPx)
	}
	return w, h
}

// Elements returns the drawn elements in drawing order.
func (r *SVG) Elements() []*Element {
	return r.g.Children
}

// Defs returns the definitions.
func (r *SVG) Defs() []*Element {
	return r.defs.Children
}

// Footprint returns the part of the geometry drawn at altitude that later draws did not cover.
func (r *SVG) Footprint(altitude int) maprender.Geometry {
	return r.footprints.Footprint(altitude)
}

func (r *SVG) newDefID() string {
	id := "s" + strconv.Itoa(r.defI)
	r.defI++
	return id
}

func (r *SVG) createGeometry(g maprender.Geometry) *Element {
	return NewElement("path", "d", pathData(g.Transform(r.toPixels).Polygons()))
}

// RegisterGeometry adds the geometry to the definitions.
func (r *SVG) RegisterGeometry(g maprender.Geometry, id string, asClipPath bool) (string, error) {
	if id == "" {
		id = r.newDefID()
	} else if _, ok := r.geometries[id]; ok {
		return "", maprender.Preconditionf("definition %s already registered", id)
	}

	element := r.createGeometry(g)
	if asClipPath {
		element = NewElement("clipPath", "id", id)
		element.Append(r.createGeometry(g))
		r.clipPaths[id] = true
	} else {
		element.Set("id", id)
	}
	r.defs.Append(element)
	r.geometries[id] = g
	return id, nil
}

// Blur returns the id of a gaussian blur filter with a standard deviation proportional to elevation.
func (r *SVG) Blur(elevation float64) string {
	if id, ok := r.blurs[elevation]; ok {
		return id
	}
	id := "blur" + strings.ReplaceAll(strconv.FormatFloat(elevation*100.0, 'f', -1, 64), ".", "_")
	filter := NewElement("filter", "id", id, "width", "200%", "height", "200%", "x", "-50%", "y", "-50%")
	filter.Append(NewElement("feGaussianBlur", "in", "SourceGraphic", "stdDeviation", num(elevation*r.scale).String()))
	r.defs.Append(filter)
	r.blurs[elevation] = id
	return id
}

// AddClipPath adds a clip path made of registered geometries.
func (r *SVG) AddClipPath(ids []string, inverted, subtract bool) (string, error) {
	if len(ids) == 0 {
		return "", maprender.Preconditionf("clip path without geometries")
	}
	geometries := make([]maprender.Geometry, 0, len(ids))
	plain := !inverted && !subtract
	for _, id := range ids {
		g, ok := r.geometries[id]
		if !ok {
			return "", maprender.Preconditionf("unknown definition %s", id)
		}
		geometries = append(geometries, g)
		plain = plain && !r.clipPaths[id]
	}

	id := r.newDefID()
	clipPath := NewElement("clipPath", "id", id)
	if plain {
		for _, ref := range ids {
			clipPath.Append(NewElement("use", "xlink:href", "#"+ref))
		}
	} else {
		var region maprender.Geometry
		if subtract {
			region = geometries[0].Difference(maprender.Union(geometries[1:]...))
		} else {
			region = maprender.Union(geometries...)
		}
		if inverted {
			region = maprender.Rect(r.bounds).Difference(region)
		}
		clipPath.Append(r.createGeometry(region))
	}
	r.defs.Append(clipPath)
	return id, nil
}

// AddGeometry draws a shape, see Add.
func (r *SVG) AddGeometry(s maprender.Shape, style maprender.Style) error {
	_, err := r.Add(s, style)
	return err
}

// Add draws a shape and returns the drawn element, or nil if nothing was drawn. Draws with an altitude or elevation get a blurred drop shadow first, and their altitudes must be non-decreasing.
func (r *SVG) Add(s maprender.Shape, style maprender.Style) (*Element, error) {
	var element *Element
	var geometry maprender.Geometry
	switch s := s.(type) {
	case maprender.Geometry:
		geometry = s.Difference(style.Mask)
		if geometry.Empty() {
			return nil, nil
		}
		element = r.createGeometry(geometry)
	case maprender.Ref:
		g, ok := r.geometries[string(s)]
		if !ok {
			return nil, maprender.Preconditionf("unknown definition %s", s)
		}
		geometry = g.Difference(style.Mask)
		if geometry.Empty() {
			return nil, nil
		} else if style.Mask.Empty() || geometry.Area() == g.Area() {
			element = NewElement("use", "xlink:href", "#"+string(s))
		} else {
			element = r.createGeometry(geometry)
		}
	case maprender.Background:
		if style.Mask.Empty() {
			element = NewElement("rect", "width", "100%", "height", "100%")
			geometry = maprender.Rect(r.bounds)
		} else {
			geometry = maprender.Rect(r.bounds).Difference(style.Mask)
			if geometry.Empty() {
				return nil, nil
			}
			element = r.createGeometry(geometry)
		}
	default:
		return nil, maprender.Preconditionf("unsupported shape %T", s)
	}

	if style.HasShadow() {
		if err := r.footprints.Clip(geometry, style.Altitude); err != nil {
			return nil, err
		}
		radius := style.ShadowRadius()
		shadow := geometry.Buffer(radius/20.0).Translate(radius/40.0, -radius/40.0).Difference(style.Mask)
		if !shadow.Empty() {
			shadowElement := r.createGeometry(shadow)
			shadowElement.Set("fill", "#000000")
			shadowElement.Set("fill-opacity", "0.14")
			shadowElement.Set("filter", "url(#"+r.Blur(radius/15.0)+")")
			r.g.Append(shadowElement)
		}
	}

	r.applyStyle(element, style)
	r.g.Append(element)
	return element, nil
}

func (r *SVG) applyStyle(element *Element, style maprender.Style) {
	if style.Fill != nil {
		fill, alpha := cssColor(style.Fill)
		element.Set("fill", fill)
		if style.FillOpacity == 0.0 && alpha < 1.0 {
			style.FillOpacity = alpha
		}
	} else {
		element.Set("fill", "none")
	}
	if style.FillOpacity != 0.0 {
		element.Set("fill-opacity", opacity(style.FillOpacity))
	}
	if style.StrokePx != 0.0 {
		element.Set("stroke-width", trim(style.StrokePx))
	} else if style.StrokeWidth != 0.0 {
		element.Set("stroke-width", trim(style.StrokeWidth*r.scale))
	}
	if style.Stroke != nil {
		stroke, alpha := cssColor(style.Stroke)
		element.Set("stroke", stroke)
		if style.StrokeOpacity == 0.0 && alpha < 1.0 {
			style.StrokeOpacity = alpha
		}
	}
	if style.StrokeOpacity != 0.0 {
		element.Set("stroke-opacity", opacity(style.StrokeOpacity))
	}
	if style.StrokeLineJoin != "" {
		element.Set("stroke-linejoin", style.StrokeLineJoin)
	}
	if style.Opacity != 0.0 {
		element.Set("opacity", opacity(style.Opacity))
	}
	if style.Filter != "" {
		element.Set("filter", "url(#"+style.Filter+")")
	}
	if style.ClipPath != "" {
		element.Set("clip-path", "url(#"+style.ClipPath+")")
	}
}

// Document returns the SVG root element. When buffered, the image is enlarged by the buffer margin on every side.
func (r *SVG) Document(buffer bool) *Element {
	w, h := r.Size(buffer)
	width, height := trim(w), trim(h)
	root := NewElement("svg",
		"width", width,
		"height", height,
		"xmlns:svg", "http://www.w3.org/2000/svg",
		"xmlns", "http://www.w3.org/2000/svg",
		"xmlns:xlink", "http://www.w3.org/1999/xlink",
	)
	if buffer {
		offset := trim(float64(-r.bufferPx))
		root.Set("viewBox", strings.Join([]string{offset, offset, width, height}, " "))
	}
	root.Append(r.defs, r.g)
	return root
}

// Render returns the SVG document, or the rasterized PNG image.
func (r *SVG) Render(ctx context.Context) ([]byte, error) {
	switch r.opts.Format {
	case FormatSVG, "":
		b := []byte(r.Document(false).String())
		if r.opts.Minify {
			m := minify.New()
			m.AddFunc("image/svg+xml", minifySVG.Minify)
			return m.Bytes("image/svg+xml", b)
		}
		return b, nil
	case FormatPNG:
		return r.renderPNG(ctx)
	}
	return nil, fmt.Errorf("%w: %s", maprender.ErrUnknownFormat, r.opts.Format)
}
