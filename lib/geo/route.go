package geo

type Route []*Point

func (route Route) Length() float64 {
	l := 0.
	for i := 0; i < len(route)-1; i++ {
		l += EuclideanDistance(
			route[i].X, route[i].Y,
			route[i+1].X, route[i+1].Y,
		)
	}
	return l
}

func (route Route) ManhattanLength() float64 {
	l := 0.
	for i := 0; i < len(route)-1; i++ {
		l += route[i].ManhattanDistance(route[i+1])
	}
	return l
}

func (route Route) Segments() []Segment {
	if len(route) < 2 {
		return nil
	}
	segs := make([]Segment, 0, len(route)-1)
	for i := 0; i < len(route)-1; i++ {
		segs = append(segs, Segment{Start: route[i], End: route[i+1]})
	}
	return segs
}

// IsOrthogonal is true when every consecutive pair shares exactly one coordinate.
func (route Route) IsOrthogonal() bool {
	for i := 0; i < len(route)-1; i++ {
		if !route[i].AxisAligned(route[i+1]) {
			return false
		}
	}
	return true
}

// Turns counts direction changes between consecutive segments.
func (route Route) Turns() int {
	turns := 0
	prev := NoDirection
	for _, s := range route.Segments() {
		d := s.Direction()
		if d == NoDirection {
			continue
		}
		if prev != NoDirection && d != prev {
			turns++
		}
		prev = d
	}
	return turns
}

// CollinearAt reports whether route[i] lies on a straight run between its neighbors.
func (route Route) CollinearAt(i int) bool {
	if i <= 0 || i >= len(route)-1 {
		return false
	}
	a, b, c := route[i-1], route[i], route[i+1]
	return (a.X == b.X && b.X == c.X) || (a.Y == b.Y && b.Y == c.Y)
}

func (route Route) Copy() Route {
	out := make(Route, 0, len(route))
	for _, p := range route {
		out = append(out, p.Copy())
	}
	return out
}

func (route Route) ToString() string {
	return Points(route).ToString()
}
