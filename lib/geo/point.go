package geo

import (
	"fmt"
	"strings"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func NewPoint(x, y float64) *Point {
	return &Point{X: x, Y: y}
}

func (p1 *Point) Equals(p2 *Point) bool {
	if p1 == nil {
		return p2 == nil
	} else if p2 == nil {
		return false
	}
	return (p1.X == p2.X) && (p1.Y == p2.Y)
}

func (p *Point) Copy() *Point {
	return &Point{X: p.X, Y: p.Y}
}

func (p *Point) IsFinite() bool {
	return p != nil && IsFinite(p.X, p.Y)
}

// Move returns the point dist away from p in direction d.
func (p *Point) Move(d Direction, dist float64) *Point {
	v := d.Vector()
	return NewPoint(p.X+v[0]*dist, p.Y+v[1]*dist)
}

func (p1 *Point) ManhattanDistance(p2 *Point) float64 {
	return ManhattanDistance(p1.X, p1.Y, p2.X, p2.Y)
}

// AxisAligned reports whether p1 and p2 share exactly one coordinate.
func (p1 *Point) AxisAligned(p2 *Point) bool {
	return (p1.X == p2.X) != (p1.Y == p2.Y)
}

type Points []*Point

func (p *Point) ToString() string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("(%v, %v)", p.X, p.Y)
}

func (points Points) ToString() string {
	strs := make([]string, 0, len(points))
	for _, p := range points {
		strs = append(strs, p.ToString())
	}
	return strings.Join(strs, ", ")
}
