package geo

import (
	"fmt"
	"strings"
)

// Direction is a travel or facing direction on the orthogonal grid.
// Y grows downwards, so Up moves towards smaller Y.
type Direction int

const (
	NoDirection Direction = iota
	Up
	Right
	Down
	Left
)

// Directions lists the four real directions in a fixed order.
var Directions = [4]Direction{Up, Right, Down, Left}

var directionVectors = [...][2]int{
	NoDirection: {0, 0},
	Up:          {0, -1},
	Right:       {1, 0},
	Down:        {0, 1},
	Left:        {-1, 0},
}

var directionNames = [...]string{
	NoDirection: "",
	Up:          "up",
	Right:       "right",
	Down:        "down",
	Left:        "left",
}

func (d Direction) valid() bool {
	return d >= NoDirection && d <= Left
}

// Delta is the unit step of d in grid cells.
func (d Direction) Delta() (int, int) {
	if !d.valid() {
		return 0, 0
	}
	v := directionVectors[d]
	return v[0], v[1]
}

// Vector is the unit vector of d in world space.
func (d Direction) Vector() [2]float64 {
	dx, dy := d.Delta()
	return [2]float64{float64(dx), float64(dy)}
}

func (d Direction) IsHorizontal() bool {
	return d == Left || d == Right
}

func (d Direction) IsVertical() bool {
	return d == Up || d == Down
}

// Parallel reports whether d and o lie on the same axis.
func (d Direction) Parallel(o Direction) bool {
	return (d.IsHorizontal() && o.IsHorizontal()) || (d.IsVertical() && o.IsVertical())
}

func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	default:
		return NoDirection
	}
}

// Bit is the single-bit mask of d, used for direction sets.
func (d Direction) Bit() uint8 {
	if d == NoDirection || !d.valid() {
		return 0
	}
	return 1 << uint(d-1)
}

func (d Direction) String() string {
	if !d.valid() {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "top", "north":
		return Up, nil
	case "right", "east":
		return Right, nil
	case "down", "bottom", "south":
		return Down, nil
	case "left", "west":
		return Left, nil
	case "":
		return NoDirection, nil
	}
	return NoDirection, fmt.Errorf("unknown direction %q", s)
}

func (d Direction) MarshalText() ([]byte, error) {
	if !d.valid() {
		return nil, fmt.Errorf("invalid direction %d", int(d))
	}
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	v, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// DirectionBetween gets the direction of travel from pFrom to pTo along the
// dominant axis. Ties go to the horizontal axis. Equal points have no direction.
func DirectionBetween(pFrom, pTo *Point) Direction {
	dx := pTo.X - pFrom.X
	dy := pTo.Y - pFrom.Y
	if dx == 0 && dy == 0 {
		return NoDirection
	}
	if abs(dx) >= abs(dy) {
		if dx > 0 {
			return Right
		}
		return Left
	}
	if dy > 0 {
		return Down
	}
	return Up
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
