package maprender

import (
	"errors"
	"testing"

	"github.com/tdewolff/test"
)

func testRecords() []LevelRecord {
	return []LevelRecord{
		{
			ID: "0",
			AltitudeAreas: []AltitudeArea{
				{squareGeometry(0, 0, 10), 100},
				{Geometry{}, 50},
				{squareGeometry(10, 0, 10), 0},
			},
			Spaces: []SpaceRecord{
				{squareGeometry(0, 0, 2), "staff", false},
				{squareGeometry(2, 0, 2), "staff", false},
				{squareGeometry(12, 0, 2), "staff", true},
				{squareGeometry(4, 4, 2), "", false},
			},
		},
		{ID: "0b", OnTopOf: "0", BaseAltitude: 300},
		{ID: "0a", OnTopOf: "0", BaseAltitude: 200},
		{ID: "1", BaseAltitude: 4000},
	}
}

func levelIDs(levels []*LevelGeometries) []LevelID {
	ids := []LevelID{}
	for _, level := range levels {
		ids = append(ids, level.ID)
	}
	return ids
}

func TestBuildLevelRenderData(t *testing.T) {
	data, err := BuildLevelRenderData(testRecords(), "0")
	test.Error(t, err)
	test.T(t, data.Level, LevelID("0"))
	test.T(t, levelIDs(data.Levels), []LevelID{"0", "0a", "0b"})
	test.T(t, levelIDs(data.FullLevels()), []LevelID{"0", "0a", "0b"})

	base := data.Levels[0]
	test.T(t, len(base.AltitudeAreas), 2)
	test.T(t, base.AltitudeAreas[0].Altitude, 0)
	test.T(t, base.AltitudeAreas[1].Altitude, 100)

	test.T(t, len(base.RestrictedIndoors), 1)
	test.That(t, approx(base.RestrictedIndoors["staff"].Area(), 8.0), base.RestrictedIndoors["staff"].Area())
	test.That(t, approx(base.RestrictedOutdoors["staff"].Area(), 4.0))
}

func TestBuildLevelRenderDataOverlay(t *testing.T) {
	// an overlay resolves to its base, siblings included
	data, err := BuildLevelRenderData(testRecords(), "0b")
	test.Error(t, err)
	test.T(t, data.Level, LevelID("0b"))
	test.T(t, data.BaseAltitude, 300)
	test.T(t, levelIDs(data.FullLevels()), []LevelID{"0", "0a", "0b"})
}

func TestBuildLevelRenderDataUnknown(t *testing.T) {
	_, err := BuildLevelRenderData(testRecords(), "9")
	test.That(t, errors.Is(err, ErrUnknownLevel), err)

	_, err = BuildLevelRenderData([]LevelRecord{{ID: "x", OnTopOf: "y"}}, "x")
	test.That(t, errors.Is(err, ErrUnknownLevel), err)
}

func TestFullLevels(t *testing.T) {
	data := &LevelRenderData{Levels: []*LevelGeometries{
		{ID: "up", OnTopOf: "r1"},
		{ID: "r1"},
		{ID: "r2"},
		{ID: "orphan", OnTopOf: "missing"},
	}}
	test.T(t, levelIDs(data.FullLevels()), []LevelID{"r1", "up", "r2"})
	test.T(t, len((&LevelRenderData{}).FullLevels()), 0)
}

func TestMinAltitude(t *testing.T) {
	levels := []*LevelGeometries{
		{BaseAltitude: -500, AltitudeAreas: []AltitudeArea{{squareGeometry(0, 0, 1), 20}}},
		{BaseAltitude: 300, AltitudeAreas: []AltitudeArea{{squareGeometry(0, 0, 1), 10}}},
	}
	test.T(t, MinAltitude(levels, 7), 10)
	test.T(t, MinAltitude([]*LevelGeometries{{BaseAltitude: 300}, {BaseAltitude: -500}}, 7), -500)
	test.T(t, MinAltitude(nil, 7), 7)
}

func TestHidden(t *testing.T) {
	level := &LevelGeometries{
		RestrictedIndoors:  RestrictedSpaces{"r1": squareGeometry(0, 0, 2), "r2": squareGeometry(5, 5, 2)},
		RestrictedOutdoors: RestrictedSpaces{"r1": squareGeometry(10, 10, 1)},
	}
	test.That(t, approx(level.Hidden(nil).Area(), 9.0), level.Hidden(nil).Area())
	test.That(t, approx(level.Hidden(NewPermissions("r1")).Area(), 4.0))
	test.That(t, level.Hidden(NewPermissions("r1", "r2")).Empty())
}

func TestPermissions(t *testing.T) {
	perms := NewPermissions("b", "a")
	test.That(t, perms.Has("a"))
	test.That(t, !perms.Has("c"))
	test.T(t, perms.Sorted(), []AccessRestriction{"a", "b"})

	var none Permissions
	test.That(t, !none.Has("a"))
	test.T(t, len(none.Sorted()), 0)
}
