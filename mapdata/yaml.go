package mapdata

import (
	"fmt"

	"github.com/c3nav/maprender"
	"github.com/paulmach/orb/encoding/wkt"
	"gopkg.in/yaml.v3"
)

type yamlMap struct {
	Levels []yamlLevel `yaml:"levels"`
}

type yamlLevel struct {
	ID            string             `yaml:"id"`
	OnTopOf       string             `yaml:"on_top_of"`
	BaseAltitude  int                `yaml:"base_altitude"`
	AltitudeAreas []yamlAltitudeArea `yaml:"altitude_areas"`
	Spaces        []yamlSpace        `yaml:"spaces"`
}

type yamlAltitudeArea struct {
	Altitude int    `yaml:"altitude"`
	Geometry string `yaml:"geometry"`
}

type yamlSpace struct {
	Geometry          string `yaml:"geometry"`
	AccessRestriction string `yaml:"access_restriction"`
	Outside           bool   `yaml:"outside"`
}

// parseYAML reads levels with geometries given as WKT.
func parseYAML(b []byte) ([]maprender.LevelRecord, error) {
	var m yamlMap
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, err
	}

	levels := make([]maprender.LevelRecord, 0, len(m.Levels))
	for _, l := range m.Levels {
		if l.ID == "" {
			return nil, fmt.Errorf("level without id")
		}
		level := maprender.LevelRecord{
			ID:           maprender.LevelID(l.ID),
			OnTopOf:      maprender.LevelID(l.OnTopOf),
			BaseAltitude: l.BaseAltitude,
		}
		for i, area := range l.AltitudeAreas {
			g, err := parseWKT(area.Geometry)
			if err != nil {
				return nil, fmt.Errorf("level %s: altitude area %d: %w", l.ID, i, err)
			}
			level.AltitudeAreas = append(level.AltitudeAreas, maprender.AltitudeArea{
				Geometry: g,
				Altitude: area.Altitude,
			})
		}
		for i, space := range l.Spaces {
			g, err := parseWKT(space.Geometry)
			if err != nil {
				return nil, fmt.Errorf("level %s: space %d: %w", l.ID, i, err)
			}
			level.Spaces = append(level.Spaces, maprender.SpaceRecord{
				Geometry:          g,
				AccessRestriction: maprender.AccessRestriction(space.AccessRestriction),
				Outside:           space.Outside,
			})
		}
		levels = append(levels, level)
	}
	return levels, nil
}

func parseWKT(s string) (maprender.Geometry, error) {
	g, err := wkt.Unmarshal(s)
	if err != nil {
		return maprender.Geometry{}, err
	}
	return maprender.NewGeometry(g)
}
