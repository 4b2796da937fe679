package wirecache_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oss.terrastruct.com/wire/lib/geo"
	"oss.terrastruct.com/wire/lib/log"
	"oss.terrastruct.com/wire/wirecache"
	"oss.terrastruct.com/wire/wireroute"
)

func scene() *wireroute.Scene {
	return &wireroute.Scene{
		Nodes: map[string]*wireroute.Node{
			"a": {
				Box:   geo.NewBox(geo.NewPoint(-40, -20), 40, 40),
				Ports: []*wireroute.Port{{Position: geo.NewPoint(0, 0), Direction: geo.Right}},
			},
			"b": {
				Box:   geo.NewBox(geo.NewPoint(100, -20), 40, 40),
				Ports: []*wireroute.Port{{Position: geo.NewPoint(100, 0), Direction: geo.Left}},
			},
			"c": {
				Box:   geo.NewBox(geo.NewPoint(200, 80), 40, 40),
				Ports: []*wireroute.Port{{Position: geo.NewPoint(200, 100), Direction: geo.Left}},
			},
		},
	}
}

func conns() []*wireroute.Connection {
	return []*wireroute.Connection{
		{ID: "a->b", SourceNodeID: "a", TargetNodeID: "b"},
		{ID: "a->c", SourceNodeID: "a", TargetNodeID: "c"},
	}
}

func paths(results []*wireroute.RouteResult) []string {
	var out []string
	for _, res := range results {
		out = append(out, res.Path.ToString())
	}
	return out
}

func TestRouteAll(t *testing.T) {
	t.Parallel()
	ctx := log.WithTB(context.Background(), t, nil)

	exp, err := wireroute.RouteAll(ctx, scene(), conns(), nil)
	require.NoError(t, err)

	c := wirecache.New()
	got, err := c.RouteAll(ctx, scene(), conns(), nil)
	require.NoError(t, err)
	assert.Equal(t, paths(exp), paths(got))
	hits, misses := c.Stats()
	assert.Equal(t, 0, hits)
	assert.Equal(t, 2, misses)

	got2, err := c.RouteAll(ctx, scene(), conns(), nil)
	require.NoError(t, err)
	assert.Equal(t, paths(exp), paths(got2))
	hits, misses = c.Stats()
	assert.Equal(t, 2, hits)
	assert.Equal(t, 2, misses)
	assert.Same(t, got[0], got2[0])
	assert.Contains(t, c.String(), "size=2, hits=2, misses=2")
}

func TestRouteAllInvalidates(t *testing.T) {
	t.Parallel()
	ctx := log.WithTB(context.Background(), t, nil)

	c := wirecache.New()
	_, err := c.RouteAll(ctx, scene(), conns(), nil)
	require.NoError(t, err)

	// Moving c only changes the second connection, but any scene change
	// changes the scene key.
	s := scene()
	s.Nodes["c"].Box.TopLeft.Y += 20
	s.Nodes["c"].Ports[0].Position.Y += 20
	got, err := c.RouteAll(ctx, s, conns(), nil)
	require.NoError(t, err)
	hits, _ := c.Stats()
	assert.Equal(t, 0, hits)
	assert.Equal(t, "(170, 120)", got[1].TargetStub.ToString())

	c.Invalidate("a->b")
	_, ok := c.Lookup("a->b")
	assert.False(t, ok)
	_, ok = c.Lookup("a->c")
	assert.True(t, ok)

	// Connections missing from a pass are dropped.
	_, err = c.RouteAll(ctx, s, conns()[:1], nil)
	require.NoError(t, err)
	_, ok = c.Lookup("a->c")
	assert.False(t, ok)
}

func TestConnectionKeyDependsOnUsage(t *testing.T) {
	t.Parallel()
	ctx := log.WithTB(context.Background(), t, nil)

	r := wireroute.NewRouter(ctx, scene(), conns(), nil)
	sk, err := wirecache.SceneKey(r.Scene(), r.Options())
	require.NoError(t, err)

	conn := conns()[1]
	before, err := wirecache.ConnectionKey(sk, conn, r)
	require.NoError(t, err)
	_, err = r.Route(ctx, conns()[0])
	require.NoError(t, err)
	after, err := wirecache.ConnectionKey(sk, conn, r)
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
}

func TestNonFiniteSceneIsNotCached(t *testing.T) {
	t.Parallel()
	ctx := log.WithTB(context.Background(), t, nil)

	s := scene()
	s.Nodes["b"].Ports[0].Position.X = math.Inf(1)
	_, err := wirecache.SceneKey(s, wireroute.DefaultOptions())
	require.Error(t, err)

	c := wirecache.New()
	got, err := c.RouteAll(ctx, s, conns(), nil)
	require.NoError(t, err)
	assert.True(t, got[0].IsFallback)
	_, ok := c.Lookup("a->b")
	assert.False(t, ok)
}

func TestRouteAllGridExtent(t *testing.T) {
	t.Parallel()
	ctx := log.WithTB(context.Background(), t, nil)

	c := wirecache.New()
	_, err := c.RouteAll(ctx, scene(), conns(), nil)
	require.NoError(t, err)

	// A waypoint far below the scene grows the grid of the whole pass, so
	// a->b cannot be reused even though its own inputs are unchanged.
	cs := conns()
	cs[1].Waypoints = []*wireroute.Waypoint{
		{ID: "w", Position: geo.NewPoint(150, 400), IsUserWaypoint: true},
	}
	got, err := c.RouteAll(ctx, scene(), cs, nil)
	require.NoError(t, err)
	hits, misses := c.Stats()
	assert.Equal(t, 0, hits)
	assert.Equal(t, 4, misses)
	assert.False(t, got[1].IsFallback, got[1].Path.ToString())
}

func TestRouteAllNilConnection(t *testing.T) {
	t.Parallel()
	ctx := log.WithTB(context.Background(), t, nil)

	_, err := wirecache.New().RouteAll(ctx, scene(), []*wireroute.Connection{conns()[0], nil}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection 1 is nil")
}
