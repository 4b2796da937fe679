package geo

type Segment struct {
	Start *Point
	End   *Point
}

func NewSegment(from, to *Point) *Segment {
	return &Segment{from, to}
}

func (s Segment) IsHorizontal() bool {
	return s.Start.Y == s.End.Y
}

// IsOrthogonal is true when the segment runs along exactly one axis.
func (s Segment) IsOrthogonal() bool {
	return s.Start.AxisAligned(s.End)
}

// Direction of travel from Start to End. Only meaningful for orthogonal segments.
func (s Segment) Direction() Direction {
	return DirectionBetween(s.Start, s.End)
}
