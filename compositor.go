package maprender

import (
	"sort"

	"github.com/paulmach/orb"
)

// CompositeRequest describes what part of the render data is drawn for whom.
type CompositeRequest struct {
	Bounds      orb.Bound
	Permissions Permissions

	// DefaultMinAltitude anchors the lowest volume when the levels have neither altitude areas nor base altitudes.
	DefaultMinAltitude int

	// SingleLevel draws only the first full level, as a quick preview.
	SingleLevel bool

	// Style is applied to every altitude area. Altitude, Floor and Mask are set per area.
	Style Style
}

type areaDraw struct {
	geometry Geometry
	altitude int
	floor    int
	hidden   Geometry
}

// Composite issues the draw calls of the full levels of data to the engine. Altitude areas are drawn in ascending altitude order with the geometry hidden by access restrictions removed, so that higher areas occlude lower ones and hidden geometry never reaches the engine. Altitude areas of a level that are not in ascending order are a precondition violation.
func Composite(e Engine, data *LevelRenderData, req CompositeRequest) error {
	levels := data.FullLevels()
	if len(levels) == 0 {
		return nil
	}
	minAltitude := MinAltitude(levels, req.DefaultMinAltitude)
	if req.SingleLevel {
		levels = levels[:1]
	}

	clip := Rect(req.Bounds)
	draws := []areaDraw{}
	for _, level := range levels {
		hidden := level.Hidden(req.Permissions)

		floor := minAltitude - 1
		for i, area := range level.AltitudeAreas {
			if 0 < i {
				prev := level.AltitudeAreas[i-1].Altitude
				if area.Altitude < prev {
					return Preconditionf("altitude areas of level %s have to be ascending, got %d after %d", level.ID, area.Altitude, prev)
				} else if prev < area.Altitude {
					floor = prev
				}
			}

			geometry := area.Geometry
			if !clip.Empty() {
				geometry = geometry.Intersection(clip)
			}
			draws = append(draws, areaDraw{
				geometry: geometry.Difference(hidden),
				altitude: area.Altitude,
				floor:    floor,
				hidden:   hidden,
			})
		}
	}

	// merge the ascending runs of all levels, earlier levels first on equal altitude
	sort.SliceStable(draws, func(i, j int) bool {
		return draws[i].altitude < draws[j].altitude
	})

	for _, draw := range draws {
		if draw.geometry.Empty() {
			continue
		}
		style := req.Style
		style.Altitude = At(draw.altitude)
		style.Floor = draw.floor
		style.Mask = Union(style.Mask, draw.hidden)
		if err := e.AddGeometry(draw.geometry, style); err != nil {
			return err
		}
	}
	return nil
}
