package wiregrid

import (
	"math"

	"oss.terrastruct.com/wire/lib/geo"
	"oss.terrastruct.com/wire/lib/go2"
)

// DefaultSize is the world distance between two neighboring grid lines.
const DefaultSize = 10.

// Cell is an integer grid coordinate.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (c Cell) Step(d geo.Direction) Cell {
	dx, dy := d.Delta()
	return Cell{X: c.X + dx, Y: c.Y + dy}
}

// Manhattan is the number of orthogonal steps between c and o.
func (c Cell) Manhattan(o Cell) int {
	return go2.Abs(c.X-o.X) + go2.Abs(c.Y-o.Y)
}

func WorldToGrid(v, size float64) int {
	return int(math.Round(v / size))
}

func GridToWorld(g int, size float64) float64 {
	return float64(g) * size
}

// CellOf maps a world point to the cell it rounds to.
func CellOf(p *geo.Point, size float64) Cell {
	return Cell{X: WorldToGrid(p.X, size), Y: WorldToGrid(p.Y, size)}
}

// PointOf maps a cell back to world space.
func PointOf(c Cell, size float64) *geo.Point {
	return geo.NewPoint(GridToWorld(c.X, size), GridToWorld(c.Y, size))
}

// SnapToGrid rounds each coordinate of p to the nearest multiple of size.
func SnapToGrid(p *geo.Point, size float64) *geo.Point {
	return PointOf(CellOf(p, size), size)
}
