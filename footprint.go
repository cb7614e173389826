package maprender

// Footprints tracks, per altitude, the part of the drawn geometry that no later draw at another altitude has covered yet. Altitudes must be added in non-decreasing order.
type Footprints struct {
	altitudes map[int]Geometry
	last      *int
}

// Clip removes g from the footprints of all other altitudes and, when altitude is not nil, adds it to the footprint of that altitude.
func (f *Footprints) Clip(g Geometry, altitude *int) error {
	if altitude != nil && f.last != nil && *altitude < *f.last {
		return Preconditionf("altitudes have to be ascending, got %d after %d", *altitude, *f.last)
	}
	if f.altitudes == nil {
		f.altitudes = map[int]Geometry{}
	}
	for alt, footprint := range f.altitudes {
		if altitude == nil || alt != *altitude {
			footprint = footprint.Difference(g)
			if footprint.Empty() {
				delete(f.altitudes, alt)
			} else {
				f.altitudes[alt] = footprint
			}
		}
	}
	if altitude != nil {
		last := *altitude
		f.last = &last
		if footprint, ok := f.altitudes[last]; ok {
			f.altitudes[last] = footprint.Union(g)
		} else {
			f.altitudes[last] = g
		}
	}
	return nil
}

// Footprint returns the uncovered geometry drawn at altitude.
func (f *Footprints) Footprint(altitude int) Geometry {
	return f.altitudes[altitude]
}

// Len returns the number of altitudes with an uncovered footprint.
func (f *Footprints) Len() int {
	return len(f.altitudes)
}
