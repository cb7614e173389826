package maprender

import (
	"fmt"
	"sort"
)

// LevelRecord is a level as stored by the map data layer.
type LevelRecord struct {
	ID            LevelID
	OnTopOf       LevelID
	BaseAltitude  int
	AltitudeAreas []AltitudeArea
	Spaces        []SpaceRecord
}

// SpaceRecord is a space of a level. Spaces without access restriction are not relevant to rendering.
type SpaceRecord struct {
	Geometry          Geometry
	AccessRestriction AccessRestriction
	Outside           bool
}

// BuildLevelRenderData computes the render data of level id. When the level is on top of another level, that level is the base; the base and every level on top of it are included.
func BuildLevelRenderData(records []LevelRecord, id LevelID) (*LevelRenderData, error) {
	index := make(map[LevelID]*LevelRecord, len(records))
	for i := range records {
		index[records[i].ID] = &records[i]
	}

	target, ok := index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLevel, id)
	}
	base := target
	if target.OnTopOf != "" {
		if base, ok = index[target.OnTopOf]; !ok {
			return nil, fmt.Errorf("%w: %s (below %s)", ErrUnknownLevel, target.OnTopOf, id)
		}
	}

	var overlays []*LevelRecord
	for i := range records {
		if records[i].OnTopOf == base.ID && records[i].ID != base.ID {
			overlays = append(overlays, &records[i])
		}
	}
	sort.SliceStable(overlays, func(i, j int) bool {
		if overlays[i].BaseAltitude != overlays[j].BaseAltitude {
			return overlays[i].BaseAltitude < overlays[j].BaseAltitude
		}
		return overlays[i].ID < overlays[j].ID
	})

	data := &LevelRenderData{
		Level:        id,
		BaseAltitude: target.BaseAltitude,
		Levels:       []*LevelGeometries{buildLevelGeometries(base)},
	}
	for _, overlay := range overlays {
		data.Levels = append(data.Levels, buildLevelGeometries(overlay))
	}
	return data, nil
}

func buildLevelGeometries(record *LevelRecord) *LevelGeometries {
	areas := make([]AltitudeArea, 0, len(record.AltitudeAreas))
	for _, area := range record.AltitudeAreas {
		if !area.Geometry.Empty() {
			areas = append(areas, area)
		}
	}
	sort.SliceStable(areas, func(i, j int) bool {
		return areas[i].Altitude < areas[j].Altitude
	})

	indoors := map[AccessRestriction][]Geometry{}
	outdoors := map[AccessRestriction][]Geometry{}
	for _, space := range record.Spaces {
		if space.AccessRestriction == "" || space.Geometry.Empty() {
			continue
		}
		if space.Outside {
			outdoors[space.AccessRestriction] = append(outdoors[space.AccessRestriction], space.Geometry)
		} else {
			indoors[space.AccessRestriction] = append(indoors[space.AccessRestriction], space.Geometry)
		}
	}

	return &LevelGeometries{
		ID:                 record.ID,
		OnTopOf:            record.OnTopOf,
		BaseAltitude:       record.BaseAltitude,
		AltitudeAreas:      areas,
		RestrictedIndoors:  unionRestricted(indoors),
		RestrictedOutdoors: unionRestricted(outdoors),
	}
}

func unionRestricted(spaces map[AccessRestriction][]Geometry) RestrictedSpaces {
	restricted := make(RestrictedSpaces, len(spaces))
	for id, geometries := range spaces {
		restricted[id] = Union(geometries...)
	}
	return restricted
}
