package wiregrid_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"oss.terrastruct.com/wire/lib/geo"
	"oss.terrastruct.com/wire/lib/log"
	"oss.terrastruct.com/wire/wiregrid"
)

func TestRoundTrip(t *testing.T) {
	for g := -50; g <= 50; g++ {
		assert.Equal(t, g, wiregrid.WorldToGrid(wiregrid.GridToWorld(g, 10), 10))
		assert.Equal(t, g, wiregrid.WorldToGrid(wiregrid.GridToWorld(g, 7.5), 7.5))
	}
	for _, v := range []float64{-120, -10, 0, 10, 30, 990} {
		assert.Equal(t, v, wiregrid.GridToWorld(wiregrid.WorldToGrid(v, 10), 10))
	}
}

func TestSnapToGrid(t *testing.T) {
	assert.True(t, geo.NewPoint(10, -20).Equals(wiregrid.SnapToGrid(geo.NewPoint(12, -17), 10)))
	assert.True(t, geo.NewPoint(20, 0).Equals(wiregrid.SnapToGrid(geo.NewPoint(15, 4.9), 10)))
}

func TestBuild(t *testing.T) {
	ctx := log.WithTB(context.Background(), t, nil)

	canvas := geo.NewBox(geo.NewPoint(0, 0), 200, 100)
	nodes := map[string]*geo.Box{
		"a": geo.NewBox(geo.NewPoint(20, 20), 40, 20),
	}
	exits := []wiregrid.Exit{
		{NodeID: "a", Position: geo.NewPoint(60, 30), Direction: geo.Right},
	}
	g := wiregrid.Build(ctx, canvas, nodes, exits, nil, &wiregrid.Options{
		Size:      10,
		Margin:    10,
		Padding:   20,
		PortExits: true,
	})

	assert.Equal(t, wiregrid.Cell{X: -2, Y: -2}, g.Min)
	assert.Equal(t, wiregrid.Cell{X: 22, Y: 12}, g.Max)
	assert.Equal(t, 25, g.Width())
	assert.Equal(t, 15, g.Height())

	obstacles := g.Obstacles()
	assert.Len(t, obstacles, 2)
	assert.Equal(t, wiregrid.Obstacle{NodeID: "a", Min: wiregrid.Cell{X: 1, Y: 1}, Max: wiregrid.Cell{X: 7, Y: 5}}, obstacles[0])
	assert.Equal(t, wiregrid.Obstacle{NodeID: "a", Min: wiregrid.Cell{X: 7, Y: 3}, Max: wiregrid.Cell{X: 7, Y: 3}, PortExit: true}, obstacles[1])

	// inside the margin
	assert.False(t, g.IsWalkableAt(wiregrid.Cell{X: 1, Y: 1}))
	assert.False(t, g.IsWalkableAt(wiregrid.Cell{X: 4, Y: 3}))
	// just outside
	assert.True(t, g.IsWalkableAt(wiregrid.Cell{X: 0, Y: 1}))
	assert.True(t, g.IsWalkableAt(wiregrid.Cell{X: 8, Y: 3}))
	// out of bounds
	assert.False(t, g.IsWalkableAt(wiregrid.Cell{X: -3, Y: 0}))
	assert.False(t, g.IsWalkableAt(wiregrid.Cell{X: 0, Y: 13}))

	x, y := g.Local(g.Min)
	assert.Equal(t, 0, x)
	assert.Equal(t, 0, y)
}

func TestWithout(t *testing.T) {
	ctx := log.WithTB(context.Background(), t, nil)

	nodes := map[string]*geo.Box{
		"a": geo.NewBox(geo.NewPoint(0, 0), 40, 40),
		"b": geo.NewBox(geo.NewPoint(100, 0), 40, 40),
	}
	exits := []wiregrid.Exit{
		{NodeID: "a", Position: geo.NewPoint(40, 20), Direction: geo.Right},
	}
	g := wiregrid.Build(ctx, nil, nodes, exits, nil, nil)

	inA := wiregrid.Cell{X: 2, Y: 2}
	inB := wiregrid.Cell{X: 12, Y: 2}
	exitA := wiregrid.Cell{X: 5, Y: 2}
	assert.False(t, g.IsWalkableAt(inA))
	assert.False(t, g.IsWalkableAt(inB))
	assert.False(t, g.IsWalkableAt(exitA))

	g2 := g.Without("a")
	assert.True(t, g2.IsWalkableAt(inA))
	assert.False(t, g2.IsWalkableAt(inB))
	assert.False(t, g2.IsWalkableAt(exitA), "port exits survive exclusion")

	// the original is untouched
	assert.False(t, g.IsWalkableAt(inA))
	assert.Len(t, g.Obstacles(), 3)
	assert.Len(t, g2.Obstacles(), 2)
}

func TestForceWalkable(t *testing.T) {
	ctx := log.WithTB(context.Background(), t, nil)

	nodes := map[string]*geo.Box{
		"a": geo.NewBox(geo.NewPoint(0, 0), 40, 40),
	}
	g := wiregrid.Build(ctx, nil, nodes, nil, nil, nil)

	c := wiregrid.Cell{X: 2, Y: 2}
	assert.False(t, g.IsWalkableAt(c))

	g2 := g.ForceWalkable(c)
	assert.True(t, g2.IsWalkableAt(c))
	assert.False(t, g2.IsWalkableAt(wiregrid.Cell{X: 2, Y: 3}))
	assert.False(t, g.IsWalkableAt(c))

	// forcing never extends the bounds
	outside := wiregrid.Cell{X: 1000, Y: 1000}
	assert.False(t, g.ForceWalkable(outside).IsWalkableAt(outside))
}

func TestBuildExtent(t *testing.T) {
	t.Parallel()

	nodes := map[string]*geo.Box{
		"a": geo.NewBox(geo.NewPoint(0, 0), 40, 40),
	}
	opts := &wiregrid.Options{Size: 10, Padding: 20}

	testCases := []struct {
		name    string
		canvas  *geo.Box
		anchors []*geo.Point
		min     wiregrid.Cell
		max     wiregrid.Cell
	}{
		{
			name: "nodes_only",
			min:  wiregrid.Cell{X: -2, Y: -2},
			max:  wiregrid.Cell{X: 6, Y: 6},
		},
		{
			name:    "anchor_below",
			anchors: []*geo.Point{geo.NewPoint(100, 400)},
			min:     wiregrid.Cell{X: -2, Y: -2},
			max:     wiregrid.Cell{X: 12, Y: 42},
		},
		{
			name:    "non_finite_anchor",
			anchors: []*geo.Point{geo.NewPoint(math.NaN(), 400), nil},
			min:     wiregrid.Cell{X: -2, Y: -2},
			max:     wiregrid.Cell{X: 6, Y: 6},
		},
		{
			name:   "canvas_without_corner",
			canvas: &geo.Box{Width: 500, Height: 500},
			min:    wiregrid.Cell{X: -2, Y: -2},
			max:    wiregrid.Cell{X: 6, Y: 6},
		},
		{
			name:   "non_finite_canvas",
			canvas: geo.NewBox(geo.NewPoint(0, 0), math.Inf(1), 10),
			min:    wiregrid.Cell{X: -2, Y: -2},
			max:    wiregrid.Cell{X: 6, Y: 6},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctx := log.WithTB(context.Background(), t, nil)

			g := wiregrid.Build(ctx, tc.canvas, nodes, nil, tc.anchors, opts)
			assert.Equal(t, tc.min, g.Min)
			assert.Equal(t, tc.max, g.Max)
		})
	}
}
