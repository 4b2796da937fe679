// Package wireusage records which grid cells earlier wires of a routing batch
// occupy, and in which directions, so later searches can steer around them.
package wireusage

import (
	"encoding/binary"
	"hash/fnv"

	"golang.org/x/exp/slices"

	"oss.terrastruct.com/wire/lib/geo"
	"oss.terrastruct.com/wire/wiregrid"
)

// DefaultSharedSourceCells is how many cells next to a source stub are left
// unrecorded, since wires fanning out of one port always share them.
const DefaultSharedSourceCells = 3

// Usage maps a cell to the set of directions wires travelled through it.
// The zero value is not usable, see New.
type Usage struct {
	cells map[wiregrid.Cell]uint8
}

func New() *Usage {
	return &Usage{
		cells: make(map[wiregrid.Cell]uint8),
	}
}

func (u *Usage) Len() int {
	if u == nil {
		return 0
	}
	return len(u.cells)
}

// Mark records that a wire travelled through c in direction d.
func (u *Usage) Mark(c wiregrid.Cell, d geo.Direction) {
	u.cells[c] |= d.Bit()
}

// Directions returns the directions recorded at c.
func (u *Usage) Directions(c wiregrid.Cell) []geo.Direction {
	if u == nil {
		return nil
	}
	bits := u.cells[c]
	var ds []geo.Direction
	for _, d := range geo.Directions {
		if bits&d.Bit() != 0 {
			ds = append(ds, d)
		}
	}
	return ds
}

// CrossesAt reports whether entering c in direction d would cross a recorded
// wire, meaning some recorded direction there is not parallel to d.
func (u *Usage) CrossesAt(c wiregrid.Cell, d geo.Direction) bool {
	if u == nil {
		return false
	}
	bits := u.cells[c]
	for _, prev := range geo.Directions {
		if bits&prev.Bit() != 0 && !prev.Parallel(d) {
			return true
		}
	}
	return false
}

// Absorb records the cells of a simplified path. Consecutive points must be
// axis aligned to be recorded; other segments (fallback lines) are skipped.
// The first sharedSourceCells cells from the start of the path are not recorded.
func (u *Usage) Absorb(path geo.Route, size float64, sharedSourceCells int) {
	// visited counts distinct cells along the path, for the shared source skip.
	visited := 0
	first := true
	for _, s := range path.Segments() {
		if !s.IsOrthogonal() {
			first = true
			continue
		}
		d := s.Direction()
		dx, dy := d.Delta()
		from := wiregrid.CellOf(s.Start, size)
		n := from.Manhattan(wiregrid.CellOf(s.End, size))
		for i := 0; i <= n; i++ {
			c := wiregrid.Cell{X: from.X + dx*i, Y: from.Y + dy*i}
			if i == 0 && !first {
				// corner, already counted by the previous segment
				if visited > sharedSourceCells {
					u.Mark(c, d)
				}
				continue
			}
			visited++
			if visited > sharedSourceCells {
				u.Mark(c, d)
			}
		}
		first = false
	}
}

// Hash is a digest of the recorded cells that does not depend on insertion order.
func (u *Usage) Hash() uint64 {
	h := fnv.New64a()
	if u == nil {
		return h.Sum64()
	}
	cells := make([]wiregrid.Cell, 0, len(u.cells))
	for c := range u.cells {
		cells = append(cells, c)
	}
	slices.SortFunc(cells, func(a, b wiregrid.Cell) bool {
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
	var buf [17]byte
	for _, c := range cells {
		binary.LittleEndian.PutUint64(buf[0:8], uint64(int64(c.X)))
		binary.LittleEndian.PutUint64(buf[8:16], uint64(int64(c.Y)))
		buf[16] = u.cells[c]
		h.Write(buf[:])
	}
	return h.Sum64()
}
