package maprender

import (
	"errors"
	"testing"

	"github.com/tdewolff/test"
)

func TestFootprints(t *testing.T) {
	f := &Footprints{}
	test.Error(t, f.Clip(squareGeometry(0, 0, 10), At(0)))
	test.Error(t, f.Clip(squareGeometry(0, 0, 5), At(100)))
	test.T(t, f.Len(), 2)
	test.That(t, approx(f.Footprint(0).Area(), 75.0), f.Footprint(0).Area())
	test.That(t, approx(f.Footprint(100).Area(), 25.0))

	// same altitude accumulates
	test.Error(t, f.Clip(squareGeometry(20, 0, 5), At(100)))
	test.That(t, approx(f.Footprint(100).Area(), 50.0))

	// draws without altitude only cover
	test.Error(t, f.Clip(squareGeometry(0, 0, 10), nil))
	test.T(t, f.Len(), 1)
	test.That(t, f.Footprint(0).Empty())
	test.That(t, approx(f.Footprint(100).Area(), 25.0))
}

func TestFootprintsDescending(t *testing.T) {
	f := &Footprints{}
	test.Error(t, f.Clip(squareGeometry(0, 0, 10), At(100)))
	err := f.Clip(squareGeometry(0, 0, 4), At(50))
	test.That(t, errors.Is(err, ErrPrecondition), err)

	// nothing changed
	test.T(t, f.Len(), 1)
	test.That(t, approx(f.Footprint(100).Area(), 100.0))
}
