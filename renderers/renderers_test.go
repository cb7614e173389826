package renderers

import (
	"context"
	"errors"
	"testing"

	"github.com/c3nav/maprender"
	"github.com/c3nav/maprender/renderers/blender"
	"github.com/c3nav/maprender/renderers/svg"
	"github.com/paulmach/orb"
	"github.com/tdewolff/test"
)

var testBounds = orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10, 10}}

func TestFormats(t *testing.T) {
	test.T(t, Formats(), []string{"blend.py", "png", "svg"})
}

func TestNew(t *testing.T) {
	e, err := New("svg", testBounds, 1.0, nil)
	test.Error(t, err)
	_, ok := e.(*svg.SVG)
	test.That(t, ok)

	e, err = New("blend.py", testBounds, 1.0, nil)
	test.Error(t, err)
	_, ok = e.(*blender.Blender)
	test.That(t, ok)

	_, err = New("gif", testBounds, 1.0, nil)
	test.That(t, errors.Is(err, maprender.ErrUnknownFormat), err)
}

func TestFactory(t *testing.T) {
	factory := Factory(&Options{SVG: &svg.Options{Format: "png", Minify: true}})
	e, err := factory("svg", testBounds, 1.0)
	test.Error(t, err)

	// the format of the request wins over the configured one
	b, err := e.Render(context.Background())
	test.Error(t, err)
	test.That(t, 0 < len(b) && b[0] == '<', string(b))
}
