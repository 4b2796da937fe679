package wiregrid

import (
	"context"
	"fmt"
	"math"

	"cdr.dev/slog"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"oss.terrastruct.com/wire/lib/geo"
	"oss.terrastruct.com/wire/lib/go2"
	"oss.terrastruct.com/wire/lib/log"
)

type Options struct {
	// Size is the world distance between grid lines.
	Size float64
	// Margin is added around every node before it becomes an obstacle.
	Margin float64
	// Padding is added around the canvas so wires can run outside it.
	Padding float64
	// PortExits blocks the cell one step beyond every port.
	PortExits bool
}

func DefaultOptions() *Options {
	return &Options{
		Size:      DefaultSize,
		Margin:    DefaultSize,
		Padding:   6 * DefaultSize,
		PortExits: true,
	}
}

// Exit is a port seen from the grid: a position and the way it faces.
type Exit struct {
	NodeID    string
	Position  *geo.Point
	Direction geo.Direction
}

// Obstacle is an inclusive rectangle of blocked cells.
type Obstacle struct {
	NodeID string
	Min    Cell
	Max    Cell
	// PortExit marks the single cell obstacles in front of ports.
	PortExit bool
}

func (o Obstacle) Contains(c Cell) bool {
	return c.X >= o.Min.X && c.X <= o.Max.X && c.Y >= o.Min.Y && c.Y <= o.Max.Y
}

func (o Obstacle) String() string {
	return fmt.Sprintf("%s[%d,%d..%d,%d]", o.NodeID, o.Min.X, o.Min.Y, o.Max.X, o.Max.Y)
}

// Grid is a sparse walkability model: a bounded cell range plus a list of
// obstacle rectangles. Nothing proportional to the grid area is allocated.
type Grid struct {
	Size float64
	// Min and Max are the inclusive cell extent. Min is the local origin.
	Min Cell
	Max Cell

	obstacles []Obstacle
	forced    map[Cell]struct{}
}

// Build creates the grid for one routing pass. The extent covers the canvas,
// every node and every anchor the pass routes through, such as stubs and
// user waypoints.
func Build(ctx context.Context, canvas *geo.Box, nodes map[string]*geo.Box, exits []Exit, anchors []*geo.Point, opts *Options) *Grid {
	if opts == nil {
		opts = DefaultOptions()
	}
	size := opts.Size
	if size <= 0 || !geo.IsFinite(size) {
		size = DefaultSize
	}

	ids := maps.Keys(nodes)
	slices.Sort(ids)

	var extent *geo.Box
	if canvas != nil {
		if canvas.IsFinite() {
			extent = canvas.Copy()
		} else {
			log.Warn(ctx, "ignoring canvas with non-finite bounds", slog.F("canvas", canvas.ToString()))
		}
	}
	for _, id := range ids {
		if nodes[id].IsFinite() {
			extent = extent.Union(nodes[id])
		}
	}
	for _, p := range anchors {
		if p.IsFinite() {
			extent = extent.Union(geo.NewBox(p.Copy(), 0, 0))
		}
	}
	if extent == nil {
		extent = geo.NewBox(geo.NewPoint(0, 0), 0, 0)
	}
	extent = extent.Expand(opts.Padding)

	g := &Grid{
		Size: size,
		Min: Cell{
			X: int(math.Floor(extent.Left() / size)),
			Y: int(math.Floor(extent.Top() / size)),
		},
		Max: Cell{
			X: int(math.Ceil(extent.Right() / size)),
			Y: int(math.Ceil(extent.Bottom() / size)),
		},
	}

	for _, id := range ids {
		b := nodes[id]
		if !b.IsFinite() {
			log.Warn(ctx, "skipping node with non-finite bounds", slog.F("node", id), slog.F("bounds", b.ToString()))
			continue
		}
		m := b.Expand(opts.Margin)
		g.obstacles = append(g.obstacles, Obstacle{
			NodeID: id,
			Min:    Cell{X: WorldToGrid(m.Left(), size), Y: WorldToGrid(m.Top(), size)},
			Max:    Cell{X: WorldToGrid(m.Right(), size), Y: WorldToGrid(m.Bottom(), size)},
		})
	}

	if opts.PortExits {
		for _, e := range exits {
			if e.Direction == geo.NoDirection || !e.Position.IsFinite() {
				continue
			}
			c := CellOf(e.Position, size).Step(e.Direction)
			g.obstacles = append(g.obstacles, Obstacle{
				NodeID:   e.NodeID,
				Min:      c,
				Max:      c,
				PortExit: true,
			})
		}
	}

	log.Debug(ctx, "built obstacle grid",
		slog.F("width", g.Width()),
		slog.F("height", g.Height()),
		slog.F("obstacles", len(g.obstacles)),
	)
	return g
}

func (g *Grid) Width() int {
	return g.Max.X - g.Min.X + 1
}

func (g *Grid) Height() int {
	return g.Max.Y - g.Min.Y + 1
}

// Local translates c so that the grid origin is (0, 0).
func (g *Grid) Local(c Cell) (int, int) {
	return c.X - g.Min.X, c.Y - g.Min.Y
}

func (g *Grid) InBounds(c Cell) bool {
	x, y := g.Local(c)
	return x >= 0 && y >= 0 && x < g.Width() && y < g.Height()
}

func (g *Grid) CellOf(p *geo.Point) Cell {
	return CellOf(p, g.Size)
}

func (g *Grid) PointOf(c Cell) *geo.Point {
	return PointOf(c, g.Size)
}

func (g *Grid) Obstacles() []Obstacle {
	return g.obstacles
}

// IsWalkableAt is a linear scan over the obstacles.
func (g *Grid) IsWalkableAt(c Cell) bool {
	if !g.InBounds(c) {
		return false
	}
	if _, ok := g.forced[c]; ok {
		return true
	}
	for _, o := range g.obstacles {
		if o.Contains(c) {
			return false
		}
	}
	return true
}

// Without returns a view of g without the body obstacles of the given nodes.
// Port exit obstacles of those nodes stay.
func (g *Grid) Without(nodeIDs ...string) *Grid {
	g2 := g.copy()
	g2.obstacles = make([]Obstacle, 0, len(g.obstacles))
	for _, o := range g.obstacles {
		if !o.PortExit && go2.Contains(nodeIDs, o.NodeID) {
			continue
		}
		g2.obstacles = append(g2.obstacles, o)
	}
	return g2
}

// ForceWalkable returns a view of g where the given cells are walkable
// whenever they are in bounds.
func (g *Grid) ForceWalkable(cells ...Cell) *Grid {
	g2 := g.copy()
	g2.forced = make(map[Cell]struct{}, len(g.forced)+len(cells))
	for c := range g.forced {
		g2.forced[c] = struct{}{}
	}
	for _, c := range cells {
		g2.forced[c] = struct{}{}
	}
	return g2
}

func (g *Grid) copy() *Grid {
	return &Grid{
		Size:      g.Size,
		Min:       g.Min,
		Max:       g.Max,
		obstacles: g.obstacles,
		forced:    g.forced,
	}
}
