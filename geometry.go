package maprender

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/tdewolff/canvas"
)

// minRingArea is the area below which rings produced by boolean operations are dropped as slivers.
const minRingArea = 1e-9

// Geometry is an immutable set of polygons, each with one exterior ring and zero or more holes. Rings are closed, exteriors are counter clockwise and holes clockwise. The zero value is the empty geometry.
type Geometry struct {
	mp orb.MultiPolygon
}

// NewGeometry normalizes a polygonal geometry. Polygons, multipolygons, rings, bounds and collections thereof are accepted, anything else is a precondition violation, as is a ring with fewer than three distinct points.
func NewGeometry(g orb.Geometry) (Geometry, error) {
	polygons, err := AssertMultiPolygon(g)
	if err != nil {
		return Geometry{}, err
	}
	mp := make(orb.MultiPolygon, 0, len(polygons))
	for _, polygon := range polygons {
		if len(polygon) == 0 {
			continue
		}
		normalized := make(orb.Polygon, 0, len(polygon))
		for i, ring := range polygon {
			ring = closeRing(ring.Clone())
			if distinctPoints(ring) < 3 {
				return Geometry{}, Preconditionf("ring with less than 3 points")
			}
			orient(ring, i == 0)
			normalized = append(normalized, ring)
		}
		mp = append(mp, normalized)
	}
	return Geometry{mp}, nil
}

// MustGeometry is like NewGeometry but panics on error. It is meant for literals.
func MustGeometry(g orb.Geometry) Geometry {
	geom, err := NewGeometry(g)
	if err != nil {
		panic(err)
	}
	return geom
}

// Rect returns the geometry covering the bound.
func Rect(b orb.Bound) Geometry {
	if !(b.Min[0] < b.Max[0] && b.Min[1] < b.Max[1]) {
		return Geometry{}
	}
	return MustGeometry(b.ToPolygon())
}

// AssertMultiPolygon splits a polygonal geometry into simple polygons.
func AssertMultiPolygon(g orb.Geometry) ([]orb.Polygon, error) {
	switch g := g.(type) {
	case nil:
		return nil, nil
	case orb.Polygon:
		return []orb.Polygon{g}, nil
	case orb.MultiPolygon:
		return []orb.Polygon(g), nil
	case orb.Ring:
		return []orb.Polygon{{g}}, nil
	case orb.Bound:
		return []orb.Polygon{g.ToPolygon()}, nil
	case orb.Collection:
		var polygons []orb.Polygon
		for _, item := range g {
			sub, err := AssertMultiPolygon(item)
			if err != nil {
				return nil, err
			}
			polygons = append(polygons, sub...)
		}
		return polygons, nil
	}
	return nil, Preconditionf("%s is not polygonal", g.GeoJSONType())
}

// Empty returns true if the geometry has no polygons.
func (g Geometry) Empty() bool {
	return len(g.mp) == 0
}

// Polygons returns a copy of the polygons.
func (g Geometry) Polygons() []orb.Polygon {
	return []orb.Polygon(g.mp.Clone())
}

// MultiPolygon returns a copy of the geometry as an orb.MultiPolygon.
func (g Geometry) MultiPolygon() orb.MultiPolygon {
	return g.mp.Clone()
}

// Bound returns the bounding box, the zero bound for the empty geometry.
func (g Geometry) Bound() orb.Bound {
	if g.Empty() {
		return orb.Bound{}
	}
	return g.mp.Bound()
}

// Area returns the area covered by the geometry.
func (g Geometry) Area() float64 {
	area := 0.0
	for _, polygon := range g.mp {
		for i, ring := range polygon {
			if i == 0 {
				area += math.Abs(planar.Area(ring))
			} else {
				area -= math.Abs(planar.Area(ring))
			}
		}
	}
	return area
}

// Contains returns true if the point lies inside the geometry.
func (g Geometry) Contains(p orb.Point) bool {
	return planar.MultiPolygonContains(g.mp, p)
}

// Translate returns the geometry moved by (dx,dy).
func (g Geometry) Translate(dx, dy float64) Geometry {
	return g.Transform(func(p orb.Point) orb.Point {
		return orb.Point{p[0] + dx, p[1] + dy}
	})
}

// Transform returns the geometry with f applied to every coordinate. Ring orientation is restored when f mirrors the plane.
func (g Geometry) Transform(f func(orb.Point) orb.Point) Geometry {
	mp := make(orb.MultiPolygon, len(g.mp))
	for i, polygon := range g.mp {
		mp[i] = make(orb.Polygon, len(polygon))
		for j, ring := range polygon {
			r := make(orb.Ring, len(ring))
			for k, p := range ring {
				r[k] = f(p)
			}
			orient(r, j == 0)
			mp[i][j] = r
		}
	}
	return Geometry{mp}
}

// Union returns the union of g and others.
func (g Geometry) Union(others ...Geometry) Geometry {
	if len(others) == 0 {
		return g
	}
	p := g.path()
	for _, o := range others {
		if o.Empty() {
			continue
		} else if p.Empty() {
			p = o.path()
			continue
		}
		p = p.Or(o.path())
	}
	return fromPath(p)
}

// Union returns the union of all geometries.
func Union(geometries ...Geometry) Geometry {
	nonEmpty := make([]Geometry, 0, len(geometries))
	for _, g := range geometries {
		if !g.Empty() {
			nonEmpty = append(nonEmpty, g)
		}
	}
	if len(nonEmpty) == 0 {
		return Geometry{}
	}
	return nonEmpty[0].Union(nonEmpty[1:]...)
}

// Difference returns g minus o.
func (g Geometry) Difference(o Geometry) Geometry {
	if g.Empty() || o.Empty() || !intersects(g.Bound(), o.Bound()) {
		return g
	}
	return fromPath(g.path().Not(o.path()))
}

// Intersection returns the area covered by both g and o.
func (g Geometry) Intersection(o Geometry) Geometry {
	if g.Empty() || o.Empty() || !intersects(g.Bound(), o.Bound()) {
		return Geometry{}
	}
	return fromPath(g.path().And(o.path()))
}

// Buffer grows the geometry by d, or shrinks it when d is negative. Corners are beveled.
func (g Geometry) Buffer(d float64) Geometry {
	if g.Empty() || d == 0.0 {
		return g
	}
	p := g.path()
	outline := p.Stroke(2.0*math.Abs(d), canvas.ButtCap, canvas.BevelJoin, canvas.Tolerance)
	if 0.0 < d {
		return fromPath(p.Or(outline))
	}
	return fromPath(p.Not(outline))
}

func (g Geometry) path() *canvas.Path {
	p := &canvas.Path{}
	for _, polygon := range g.mp {
		for _, ring := range polygon {
			p.MoveTo(ring[0][0], ring[0][1])
			for _, pt := range ring[1 : len(ring)-1] {
				p.LineTo(pt[0], pt[1])
			}
			p.Close()
		}
	}
	return p
}

// fromPath converts the result of a boolean path operation back into polygons. Every ring is classified by how many larger rings enclose it: an even count makes it an exterior, an odd count a hole of the smallest enclosing exterior.
func fromPath(p *canvas.Path) Geometry {
	type sizedRing struct {
		ring orb.Ring
		area float64
	}

	var rings []sizedRing
	for _, sub := range p.Split() {
		var ring orb.Ring
		scanner := sub.Scanner()
		for scanner.Scan() {
			if scanner.Cmd() == canvas.CloseCmd {
				break
			}
			end := scanner.End()
			pt := orb.Point{end.X, end.Y}
			if 0 < len(ring) && ring[len(ring)-1].Equal(pt) {
				continue
			}
			ring = append(ring, pt)
		}
		ring = closeRing(ring)
		if distinctPoints(ring) < 3 {
			continue
		}
		area := math.Abs(planar.Area(ring))
		if area < minRingArea {
			continue
		}
		rings = append(rings, sizedRing{ring, area})
	}
	sort.SliceStable(rings, func(i, j int) bool {
		return rings[i].area > rings[j].area
	})

	mp := orb.MultiPolygon{}
	var placed []orb.Ring
	var owner []int // polygon index for exteriors, -1 for holes
	for _, r := range rings {
		probe := orb.Point{(r.ring[0][0] + r.ring[1][0]) / 2.0, (r.ring[0][1] + r.ring[1][1]) / 2.0}
		depth, exterior := 0, -1
		for i, q := range placed {
			if planar.RingContains(q, probe) {
				depth++
				if owner[i] != -1 {
					exterior = owner[i]
				}
			}
		}
		placed = append(placed, r.ring)
		if depth%2 == 0 || exterior == -1 {
			orient(r.ring, true)
			owner = append(owner, len(mp))
			mp = append(mp, orb.Polygon{r.ring})
		} else {
			orient(r.ring, false)
			owner = append(owner, -1)
			mp[exterior] = append(mp[exterior], r.ring)
		}
	}
	if len(mp) == 0 {
		return Geometry{}
	}
	return Geometry{mp}
}

func closeRing(ring orb.Ring) orb.Ring {
	if 0 < len(ring) && !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return ring
}

func distinctPoints(ring orb.Ring) int {
	n := 0
	for i, p := range ring {
		seen := false
		for _, q := range ring[:i] {
			if p.Equal(q) {
				seen = true
				break
			}
		}
		if !seen {
			n++
		}
	}
	return n
}

// orient reverses the ring in place when its winding doesn't match: counter clockwise for exteriors and clockwise for holes.
func orient(ring orb.Ring, exterior bool) {
	if (ring.Orientation() == orb.CCW) != exterior {
		ring.Reverse()
	}
}

func intersects(a, b orb.Bound) bool {
	return a.Min[0] <= b.Max[0] && b.Min[0] <= a.Max[0] && a.Min[1] <= b.Max[1] && b.Min[1] <= a.Max[1]
}
