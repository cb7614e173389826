package maprender

import (
	"github.com/paulmach/orb"
)

// PixelTransform returns the function mapping model coordinates to pixel coordinates for an image covering bounds at the given scale. The lower-left corner of bounds becomes the origin, the Y axis is flipped so that it increases downward, and both axes are multiplied by scale.
func PixelTransform(bounds orb.Bound, scale float64) func(orb.Point) orb.Point {
	left, top := bounds.Min[0], bounds.Max[1]
	return func(p orb.Point) orb.Point {
		return orb.Point{(p[0] - left) * scale, (top - p[1]) * scale}
	}
}

// PixelSize returns the width and height in pixels of an image covering bounds at the given scale.
func PixelSize(bounds orb.Bound, scale float64) (float64, float64) {
	return (bounds.Max[0] - bounds.Min[0]) * scale, (bounds.Max[1] - bounds.Min[1]) * scale
}
