package maprender

import (
	"context"
	"image/color"

	"github.com/paulmach/orb"
)

// Engine is a single-use drawing surface of one render request. Draw calls accumulate until Render serializes them.
type Engine interface {
	// RegisterGeometry stores the geometry under a definition id for reuse by reference, optionally as a clip path. An empty id is replaced by a generated one, unique within the engine.
	RegisterGeometry(g Geometry, id string, asClipPath bool) (string, error)

	// AddGeometry draws a shape. Drawing an empty geometry is a no-op.
	AddGeometry(s Shape, style Style) error

	// AddClipPath composes registered geometries into a clip region. With inverted the region is everything outside of the geometries, with subtract the first geometry minus the others.
	AddClipPath(ids []string, inverted, subtract bool) (string, error)

	// Blur returns the id of the blur filter for an elevation, creating it on first use.
	Blur(elevation float64) string

	// Render serializes everything drawn so far.
	Render(ctx context.Context) ([]byte, error)
}

// EngineFactory creates an engine for an output format covering bounds at the given scale in pixels per model unit.
type EngineFactory func(format string, bounds orb.Bound, scale float64) (Engine, error)

// Shape is what AddGeometry draws: a Geometry, a Ref to a registered geometry or the Background.
type Shape interface {
	isShape()
}

// Ref refers to a geometry registered with RegisterGeometry.
type Ref string

// Background covers the whole canvas.
type Background struct{}

func (Geometry) isShape()   {}
func (Ref) isShape()        {}
func (Background) isShape() {}

// Style is the appearance of a draw call. Zero values mean unset.
type Style struct {
	Fill        color.Color // nil for no fill
	FillOpacity float64
	Opacity     float64
	Filter      string
	ClipPath    string

	Stroke         color.Color
	StrokePx       float64 // stroke width in pixels
	StrokeWidth    float64 // stroke width in model units, used when StrokePx is zero
	StrokeOpacity  float64
	StrokeLineJoin string

	// Altitude marks the draw as a surface at that altitude. 2D engines give it a drop shadow and track its footprint, 3D engines extrude it from Floor up to Altitude.
	Altitude *int
	Floor    int

	// Elevation in model units sizes the drop shadow, 1 when only Altitude is set.
	Elevation float64

	// Mask is removed from everything the draw emits, shadows included.
	Mask Geometry
}

// HasShadow returns true if the draw receives an elevation shadow.
func (s Style) HasShadow() bool {
	return s.Altitude != nil || s.Elevation != 0.0
}

// ShadowRadius returns the blur radius of the elevation shadow.
func (s Style) ShadowRadius() float64 {
	if s.Elevation == 0.0 {
		return 1.0
	}
	return s.Elevation
}

// At returns a pointer to altitude, for use as Style.Altitude.
func At(altitude int) *int {
	return &altitude
}
