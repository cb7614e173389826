package maprender

import (
	"sort"
)

// LevelID identifies a level.
type LevelID string

// AccessRestriction identifies a permission gate. Geometry behind it is hidden from callers that do not hold it.
type AccessRestriction string

// Permissions is the set of access restrictions a caller holds. A nil set holds nothing.
type Permissions map[AccessRestriction]struct{}

// NewPermissions returns the set of the given access restrictions.
func NewPermissions(ids ...AccessRestriction) Permissions {
	perms := make(Permissions, len(ids))
	for _, id := range ids {
		perms[id] = struct{}{}
	}
	return perms
}

// Has returns true if the access restriction is held.
func (p Permissions) Has(id AccessRestriction) bool {
	_, ok := p[id]
	return ok
}

// Sorted returns the held access restrictions in ascending order.
func (p Permissions) Sorted() []AccessRestriction {
	ids := make([]AccessRestriction, 0, len(p))
	for id := range p {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// AltitudeArea is a surface of a level at a fixed altitude in millimeters.
type AltitudeArea struct {
	Geometry Geometry
	Altitude int
}

// RestrictedSpaces maps an access restriction to the geometry it hides.
type RestrictedSpaces map[AccessRestriction]Geometry

// LevelGeometries is the precomputed render input of a single level.
type LevelGeometries struct {
	ID           LevelID
	OnTopOf      LevelID // empty for a root level
	BaseAltitude int

	// AltitudeAreas are ordered by ascending altitude.
	AltitudeAreas []AltitudeArea

	RestrictedIndoors  RestrictedSpaces
	RestrictedOutdoors RestrictedSpaces
}

// Hidden returns the union of all indoor and outdoor restricted geometry whose access restriction is not held.
func (l *LevelGeometries) Hidden(perms Permissions) Geometry {
	var hidden []Geometry
	for _, spaces := range []RestrictedSpaces{l.RestrictedIndoors, l.RestrictedOutdoors} {
		ids := make([]AccessRestriction, 0, len(spaces))
		for id := range spaces {
			if !perms.Has(id) {
				ids = append(ids, id)
			}
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, id := range ids {
			hidden = append(hidden, spaces[id])
		}
	}
	return Union(hidden...)
}

// LevelRenderData is the render input of a requested level: the level it resolves to, together with every level stacked on top of the same base. It is read-only once built and shared between concurrent renders.
type LevelRenderData struct {
	Level        LevelID
	BaseAltitude int
	Levels       []*LevelGeometries
}

// FullLevels returns every root level followed by the levels on top of it.
func (d *LevelRenderData) FullLevels() []*LevelGeometries {
	var levels []*LevelGeometries
	for _, level := range d.Levels {
		if level.OnTopOf != "" {
			continue
		}
		levels = append(levels, level)
		for _, sublevel := range d.Levels {
			if sublevel.OnTopOf == level.ID {
				levels = append(levels, sublevel)
			}
		}
	}
	return levels
}

// MinAltitude returns the lowest altitude among the altitude areas of levels. Without altitude areas it falls back to the lowest base altitude and, without levels, to def.
func MinAltitude(levels []*LevelGeometries, def int) int {
	found := false
	min := 0
	for _, level := range levels {
		for _, area := range level.AltitudeAreas {
			if !found || area.Altitude < min {
				min = area.Altitude
				found = true
			}
		}
	}
	if found {
		return min
	}
	for _, level := range levels {
		if !found || level.BaseAltitude < min {
			min = level.BaseAltitude
			found = true
		}
	}
	if found {
		return min
	}
	return def
}
