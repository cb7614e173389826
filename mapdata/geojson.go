package mapdata

import (
	"fmt"

	"github.com/c3nav/maprender"
	"github.com/paulmach/orb/geojson"
)

// Feature kinds of GeoJSON map data, given by the "kind" property.
const (
	KindLevel        = "level"
	KindAltitudeArea = "altitudearea"
	KindSpace        = "space"
)

// parseGeoJSON reads a feature collection. Level features carry "id", "on_top_of" and "base_altitude"; altitude areas "level" and "altitude"; spaces "level", "access_restriction" and "outside". Levels referenced by areas or spaces only are created implicitly.
func parseGeoJSON(b []byte) ([]maprender.LevelRecord, error) {
	fc, err := geojson.UnmarshalFeatureCollection(b)
	if err != nil {
		return nil, err
	}

	var levels []maprender.LevelRecord
	index := map[maprender.LevelID]int{}
	level := func(id maprender.LevelID) *maprender.LevelRecord {
		i, ok := index[id]
		if !ok {
			i = len(levels)
			index[id] = i
			levels = append(levels, maprender.LevelRecord{ID: id})
		}
		return &levels[i]
	}

	for i, f := range fc.Features {
		switch kind := f.Properties.MustString("kind", ""); kind {
		case KindLevel:
			id := maprender.LevelID(f.Properties.MustString("id", ""))
			if id == "" {
				return nil, fmt.Errorf("feature %d: level without id", i)
			}
			l := level(id)
			l.OnTopOf = maprender.LevelID(f.Properties.MustString("on_top_of", ""))
			l.BaseAltitude = f.Properties.MustInt("base_altitude", 0)
		case KindAltitudeArea, KindSpace:
			id := maprender.LevelID(f.Properties.MustString("level", ""))
			if id == "" {
				return nil, fmt.Errorf("feature %d: %s without level", i, kind)
			}
			g, err := maprender.NewGeometry(f.Geometry)
			if err != nil {
				return nil, fmt.Errorf("feature %d: %w", i, err)
			}
			l := level(id)
			if kind == KindAltitudeArea {
				l.AltitudeAreas = append(l.AltitudeAreas, maprender.AltitudeArea{
					Geometry: g,
					Altitude: f.Properties.MustInt("altitude", 0),
				})
			} else {
				l.Spaces = append(l.Spaces, maprender.SpaceRecord{
					Geometry:          g,
					AccessRestriction: maprender.AccessRestriction(f.Properties.MustString("access_restriction", "")),
					Outside:           f.Properties.MustBool("outside", false),
				})
			}
		default:
			return nil, fmt.Errorf("feature %d: unknown kind %q", i, kind)
		}
	}
	return levels, nil
}
