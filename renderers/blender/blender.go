package blender

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/c3nav/maprender"
	"github.com/paulmach/orb"
)

// Format is the output format name of the Blender engine.
const Format = "blend.py"

const prelude = `import bpy

def deselect_all():
    bpy.ops.object.select_all(action='DESELECT')

def select_object(obj):
    deselect_all()
    obj.select = True
    bpy.context.scene.objects.active = obj

def add_polygon(exterior, interiors, minz, maxz):
    bpy.ops.object.mode_set(mode='OBJECT')
    deselect_all()
    exterior = add_ring(exterior, minz, maxz)
    for interior_coords in interiors:
        interior = add_ring(interior_coords, minz-1, maxz+1)
        select_object(exterior)
        bpy.ops.object.modifier_add(type='BOOLEAN')
        mod = exterior.modifiers
        mod[0].name = 'Difference'
        mod[0].operation = 'DIFFERENCE'
        mod[0].object = interior
        bpy.ops.object.modifier_apply(apply_as='DATA', modifier=mod[0].name)
        select_object(interior)
        bpy.ops.object.delete()

def add_ring(coords, minz, maxz):
    if coords[0] == coords[-1]:
        coords = coords[:-1]
    if len(coords) < 3:
        raise ValueError('Ring with less than 3 points.')

    indices = tuple(range(len(coords)))
    mesh = bpy.data.meshes.new(name='Ring')
    mesh.from_pydata(
        tuple((x, y, minz) for x, y in coords),
        tuple(zip(indices, indices[1:]+(0, ))),
        (indices, ),
    )

    obj = bpy.data.objects.new('Ring', mesh)
    scene = bpy.context.scene
    scene.objects.link(obj)

    select_object(obj)
    bpy.ops.object.mode_set(mode='EDIT')
    bpy.ops.mesh.select_mode(type='FACE')
    bpy.ops.mesh.select_all(action='SELECT')
    bpy.ops.mesh.extrude_region_move(
        TRANSFORM_OT_translate={'value': (0, 0, maxz-minz)}
    )
    bpy.ops.object.mode_set(mode='OBJECT')
    obj.select = False
    return obj
`

// Blender is a 3D engine emitting a python script that builds the scene in Blender by extruding every polygon from its floor to its altitude. Coordinates stay in model units, so there is no pixel scale; altitudes are converted from millimeters to meters.
type Blender struct {
	bounds orb.Bound

	result     strings.Builder
	defI       int
	geometries map[string]maprender.Geometry
	blurs      map[float64]string
}

// New returns a Blender engine.
func New(bounds orb.Bound) *Blender {
	b := &Blender{
		bounds:     bounds,
		geometries: map[string]maprender.Geometry{},
		blurs:      map[float64]string{},
	}
	b.result.WriteString(prelude)
	b.result.WriteString("\n")
	return b
}

func (b *Blender) newDefID() string {
	id := "s" + strconv.Itoa(b.defI)
	b.defI++
	return id
}

// RegisterGeometry remembers the geometry for later references, the script is not changed.
func (b *Blender) RegisterGeometry(g maprender.Geometry, id string, asClipPath bool) (string, error) {
	if id == "" {
		id = b.newDefID()
	} else if _, ok := b.geometries[id]; ok {
		return "", maprender.Preconditionf("definition %s already registered", id)
	}
	b.geometries[id] = g
	return id, nil
}

// AddClipPath has no effect on the scene, clip regions are a 2D concept.
func (b *Blender) AddClipPath(ids []string, inverted, subtract bool) (string, error) {
	for _, id := range ids {
		if _, ok := b.geometries[id]; !ok {
			return "", maprender.Preconditionf("unknown definition %s", id)
		}
	}
	return b.newDefID(), nil
}

// Blur has no effect on the scene.
func (b *Blender) Blur(elevation float64) string {
	if id, ok := b.blurs[elevation]; ok {
		return id
	}
	id := "blur" + strings.ReplaceAll(strconv.FormatFloat(elevation*100.0, 'f', -1, 64), ".", "_")
	b.blurs[elevation] = id
	return id
}

// AddGeometry extrudes the shape from style.Floor up to style.Altitude. Without altitude a slab of 1mm on top of the floor is added.
func (b *Blender) AddGeometry(s maprender.Shape, style maprender.Style) error {
	var geometry maprender.Geometry
	switch s := s.(type) {
	case maprender.Geometry:
		geometry = s
	case maprender.Ref:
		g, ok := b.geometries[string(s)]
		if !ok {
			return maprender.Preconditionf("unknown definition %s", s)
		}
		geometry = g
	case maprender.Background:
		geometry = maprender.Rect(b.bounds)
	default:
		return maprender.Preconditionf("unsupported shape %T", s)
	}
	geometry = geometry.Difference(style.Mask)
	if geometry.Empty() {
		return nil
	}

	minz, maxz := style.Floor, style.Floor+1
	if style.Altitude != nil {
		maxz = *style.Altitude
	}
	for _, polygon := range geometry.Polygons() {
		if err := b.addPolygon(polygon, minz, maxz); err != nil {
			return err
		}
	}
	return nil
}

func (b *Blender) addPolygon(polygon orb.Polygon, minz, maxz int) error {
	rings := make([]string, len(polygon))
	for i, ring := range polygon {
		if vertices(ring) < 3 {
			return maprender.Preconditionf("ring with less than 3 points")
		}
		coords := make([]string, len(ring))
		for j, p := range ring {
			coords[j] = pyTuple(pyFloat(p[0]), pyFloat(p[1]))
		}
		rings[i] = pyTuple(coords...)
	}
	fmt.Fprintf(&b.result, "add_polygon(exterior=%s, interiors=%s, minz=%f, maxz=%f)\n",
		rings[0], pyTuple(rings[1:]...), float64(minz)/1000.0, float64(maxz)/1000.0)
	return nil
}

// Render returns the script.
func (b *Blender) Render(ctx context.Context) ([]byte, error) {
	return []byte(b.result.String()), nil
}

// vertices returns the number of ring points, not counting a closing point.
func vertices(ring orb.Ring) int {
	if 1 < len(ring) && ring[0].Equal(ring[len(ring)-1]) {
		return len(ring) - 1
	}
	return len(ring)
}

func pyFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func pyTuple(items ...string) string {
	if len(items) == 1 {
		return "(" + items[0] + ",)"
	}
	return "(" + strings.Join(items, ", ") + ")"
}
