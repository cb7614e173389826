package svg

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/c3nav/maprender"
	"github.com/paulmach/orb"
	"github.com/tdewolff/minify/v2"
)

// num formats numbers of filter parameters.
type num float64

func (f num) String() string {
	s := strconv.FormatFloat(float64(f), 'f', -1, 64)
	return string(minify.Number([]byte(s), 4))
}

// trim formats a number like TrimDecimals does, truncating to one decimal place.
func trim(f float64) string {
	return maprender.TrimDecimals(strconv.FormatFloat(f, 'f', -1, 64))
}

// opacity keeps the first four characters of the number.
func opacity(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if 4 < len(s) {
		s = s[:4]
	}
	return s
}

func cssColor(c color.Color) (string, float64) {
	nrgba := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x", nrgba.R, nrgba.G, nrgba.B), float64(nrgba.A) / 255.0
}

// pathData returns the SVG path data of the polygons, coordinates already in pixel space. Points that format the same as their predecessor are left out.
func pathData(polygons []orb.Polygon) string {
	sb := strings.Builder{}
	for _, polygon := range polygons {
		for _, ring := range polygon {
			if 0 < sb.Len() {
				sb.WriteByte(' ')
			}
			prev := ""
			for i, p := range ring[:len(ring)-1] {
				point := maprender.FormatDecimal(p[0]) + "," + maprender.FormatDecimal(p[1])
				if point == prev {
					continue
				} else if i == 0 {
					sb.WriteString("M")
				} else {
					sb.WriteString(" L")
				}
				sb.WriteString(point)
				prev = point
			}
			sb.WriteString(" z")
		}
	}
	return sb.String()
}
