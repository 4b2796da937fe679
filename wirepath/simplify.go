package wirepath

import (
	"oss.terrastruct.com/wire/lib/geo"
	"oss.terrastruct.com/wire/wiregrid"
)

// Simplify keeps the first and last points, every corner, and any point for
// which pinned returns true. Straight runs collapse to their endpoints.
// pinned may be nil.
func Simplify(path geo.Route, pinned func(*geo.Point) bool) geo.Route {
	if len(path) <= 2 {
		return path.Copy()
	}
	out := geo.Route{path[0].Copy()}
	for i := 1; i < len(path)-1; i++ {
		p := path[i]
		if pinned != nil && pinned(p) {
			out = append(out, p.Copy())
			continue
		}
		last := out[len(out)-1]
		if last.AxisAligned(p) && p.AxisAligned(path[i+1]) &&
			geo.DirectionBetween(last, p) == geo.DirectionBetween(p, path[i+1]) {
			continue
		}
		out = append(out, p.Copy())
	}
	return append(out, path[len(path)-1].Copy())
}

// Deduplicate drops every point equal to its predecessor.
func Deduplicate(path geo.Route) geo.Route {
	out := make(geo.Route, 0, len(path))
	for _, p := range path {
		if len(out) > 0 && out[len(out)-1].Equals(p) {
			continue
		}
		out = append(out, p.Copy())
	}
	return out
}

// Snap rounds both coordinates of p to the nearest multiple of size.
func Snap(p *geo.Point, size float64) *geo.Point {
	return wiregrid.SnapToGrid(p, size)
}

// SnapRoute snaps every point of path.
func SnapRoute(path geo.Route, size float64) geo.Route {
	out := make(geo.Route, 0, len(path))
	for _, p := range path {
		out = append(out, Snap(p, size))
	}
	return out
}
