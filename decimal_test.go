package maprender

import (
	"fmt"
	"testing"

	"github.com/paulmach/orb"
	"github.com/tdewolff/test"
)

func TestTrimDecimals(t *testing.T) {
	var tts = []struct {
		data     string
		expected string
	}{
		{"12.34567", "12.3"},
		{"5.0", "5"},
		{"5.04", "5"},
		{"M1.25,3.0 L10.0,2.75", "M1.2,3 L10,2.7"},
		{"opacity 0.14", "opacity 0.1"},
		{"100", "100"},
		{"id s10", "id s10"},
	}
	for _, tt := range tts {
		t.Run(tt.data, func(t *testing.T) {
			test.String(t, TrimDecimals(tt.data), tt.expected)
		})
	}
}

func TestFormatDecimal(t *testing.T) {
	var tts = []struct {
		f        float64
		expected string
	}{
		{0.0, "0"},
		{-0.01, "0"},
		{3.0, "3"},
		{3.14159, "3.1"},
		{-2.5, "-2.5"},
		{12.96, "13"},
	}
	for i, tt := range tts {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			test.String(t, FormatDecimal(tt.f), tt.expected)
		})
	}
}

func TestPixelTransform(t *testing.T) {
	bounds := orb.Bound{Min: orb.Point{10, 20}, Max: orb.Point{30, 60}}
	f := PixelTransform(bounds, 2.0)
	test.T(t, f(orb.Point{10, 60}), orb.Point{0, 0})
	test.T(t, f(orb.Point{30, 20}), orb.Point{40, 80})
	test.T(t, f(orb.Point{15, 50}), orb.Point{10, 20})

	w, h := PixelSize(bounds, 2.0)
	test.Float(t, w, 40.0)
	test.Float(t, h, 80.0)
}
