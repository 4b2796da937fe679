// Package wirepath finds turn-penalized orthogonal paths over a wiregrid.Grid.
//
// The search is A* over 4-connected cells. A move costs one unit, plus
// TurnPenalty when it changes direction, plus CrossingPenalty when it enters a
// cell another wire of the batch already crosses in a non-parallel direction.
// State is (cell, direction of entry), so turn costs are exact.
package wirepath

import (
	"container/heap"
	"context"

	"cdr.dev/slog"

	"oss.terrastruct.com/wire/lib/geo"
	"oss.terrastruct.com/wire/lib/log"
	"oss.terrastruct.com/wire/wiregrid"
	"oss.terrastruct.com/wire/wireusage"
)

const (
	DefaultTurnPenalty     = 2
	DefaultCrossingPenalty = 3
)

type Request struct {
	Start *geo.Point
	End   *geo.Point
	// Seed is the direction of travel before the first move, usually the
	// facing of the port the path leaves from. NoDirection makes the first move free.
	Seed geo.Direction
	// Arrive is the direction the path should be travelling when it enters End.
	// NoDirection accepts any.
	Arrive geo.Direction
	// Usage is the soft-avoidance input from earlier wires of the batch. May be nil.
	Usage *wireusage.Usage

	TurnPenalty     int
	CrossingPenalty int
}

type Result struct {
	// Path is the cell-by-cell path in world coordinates, or the direct line
	// between Start and End when Fallback is set.
	Path     geo.Route
	Fallback bool
	// Expanded is the number of states taken off the open set.
	Expanded int
}

type state struct {
	cell wiregrid.Cell
	dir  geo.Direction
}

type node struct {
	state
	g      int
	f      int
	seq    int
	parent *node
}

// Find runs the search on g. Start and End are always walkable if in bounds.
func Find(ctx context.Context, g *wiregrid.Grid, req Request) *Result {
	startCell := g.CellOf(req.Start)
	endCell := g.CellOf(req.End)

	if startCell == endCell {
		return &Result{Path: geo.Route{g.PointOf(startCell)}}
	}

	g = g.ForceWalkable(startCell, endCell)
	if !g.InBounds(startCell) || !g.InBounds(endCell) {
		log.Debug(ctx, "path endpoint out of bounds", slog.F("start", startCell), slog.F("end", endCell))
		return fallback(req, 0)
	}

	open := &openSet{}
	best := make(map[state]int)
	closed := make(map[state]struct{})
	seq := 0

	root := &node{
		state: state{cell: startCell, dir: req.Seed},
		f:     startCell.Manhattan(endCell),
	}
	heap.Push(open, root)
	best[root.state] = 0

	expanded := 0
	for open.Len() > 0 {
		cur := heap.Pop(open).(*node)
		if _, ok := closed[cur.state]; ok {
			continue
		}
		closed[cur.state] = struct{}{}
		expanded++

		if cur.cell == endCell {
			return &Result{
				Path:     reconstruct(g, cur),
				Expanded: expanded,
			}
		}

		for _, d := range geo.Directions {
			next := state{cell: cur.cell.Step(d), dir: d}
			if _, ok := closed[next]; ok {
				continue
			}
			if !g.IsWalkableAt(next.cell) {
				continue
			}
			cost := cur.g + 1
			if cur.dir != geo.NoDirection && d != cur.dir {
				cost += req.TurnPenalty
			}
			if next.cell == endCell && req.Arrive != geo.NoDirection && d != req.Arrive {
				cost += req.TurnPenalty
			}
			if req.Usage.CrossesAt(next.cell, d) {
				cost += req.CrossingPenalty
			}
			if prev, ok := best[next]; ok && prev <= cost {
				continue
			}
			best[next] = cost
			seq++
			heap.Push(open, &node{
				state:  next,
				g:      cost,
				f:      cost + next.cell.Manhattan(endCell),
				seq:    seq,
				parent: cur,
			})
		}
	}

	log.Debug(ctx, "no walkable path", slog.F("start", startCell), slog.F("end", endCell), slog.F("expanded", expanded))
	return fallback(req, expanded)
}

func fallback(req Request, expanded int) *Result {
	return &Result{
		Path:     geo.Route{req.Start.Copy(), req.End.Copy()},
		Fallback: true,
		Expanded: expanded,
	}
}

func reconstruct(g *wiregrid.Grid, n *node) geo.Route {
	var path geo.Route
	for ; n != nil; n = n.parent {
		path = append(path, g.PointOf(n.cell))
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// openSet is a min-heap on f, ties broken by discovery order.
type openSet []*node

func (s openSet) Len() int { return len(s) }

func (s openSet) Less(i, j int) bool {
	if s[i].f != s[j].f {
		return s[i].f < s[j].f
	}
	return s[i].seq < s[j].seq
}

func (s openSet) Swap(i, j int) { s[i], s[j] = s[j], s[i] }

func (s *openSet) Push(x interface{}) {
	*s = append(*s, x.(*node))
}

func (s *openSet) Pop() interface{} {
	old := *s
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*s = old[:n-1]
	return item
}
