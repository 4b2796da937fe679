package wireroute

import (
	"context"
	"errors"

	"cdr.dev/slog"
	"oss.terrastruct.com/xdefer"

	"oss.terrastruct.com/wire/lib/log"
	"oss.terrastruct.com/wire/wiregrid"
	"oss.terrastruct.com/wire/wireusage"
)

// Router routes the connections of one pass in order. The grid is built once
// and each routed wire is recorded in the pass usage, so every connection
// sees the ones routed before it. A Router is not safe for concurrent use.
type Router struct {
	scene *Scene
	opts  *Options
	grid  *wiregrid.Grid
	usage *wireusage.Usage
}

// NewRouter builds the grid of a pass. The grid covers the anchors of conns,
// which should be the connections the pass will route.
func NewRouter(ctx context.Context, scene *Scene, conns []*Connection, opts *Options) *Router {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Router{
		scene: scene,
		opts:  opts,
		grid:  BuildGrid(ctx, scene, conns, opts),
		usage: wireusage.New(),
	}
}

func (r *Router) Scene() *Scene {
	return r.scene
}

func (r *Router) Options() *Options {
	return r.opts
}

func (r *Router) Grid() *wiregrid.Grid {
	return r.grid
}

// Usage is the cells recorded so far in this pass.
func (r *Router) Usage() *wireusage.Usage {
	return r.usage
}

// Route routes conn and records it.
func (r *Router) Route(ctx context.Context, conn *Connection) (_ *RouteResult, err error) {
	if conn == nil {
		return nil, errors.New("failed to route: nil connection")
	}
	defer xdefer.Errorf(&err, "failed to route %q", conn.ID)

	res, err := route(ctx, r.grid, r.scene, conn, r.usage, r.opts)
	if err != nil {
		return nil, err
	}
	r.Absorb(res)
	return res, nil
}

// Absorb records a result computed elsewhere, such as one taken from a cache.
func (r *Router) Absorb(res *RouteResult) {
	r.usage.Absorb(res.Path, r.grid.Size, r.opts.SharedSourceCells)
}

// RouteAll routes conns in order and returns their results in the same order.
func RouteAll(ctx context.Context, scene *Scene, conns []*Connection, opts *Options) ([]*RouteResult, error) {
	r := NewRouter(ctx, scene, conns, opts)
	results := make([]*RouteResult, 0, len(conns))
	fallbacks := 0
	for _, conn := range conns {
		res, err := r.Route(ctx, conn)
		if err != nil {
			return nil, err
		}
		if res.IsFallback {
			fallbacks++
		}
		results = append(results, res)
	}
	log.Debug(ctx, "routed batch",
		slog.F("connections", len(conns)),
		slog.F("fallbacks", fallbacks),
		slog.F("used_cells", r.usage.Len()),
	)
	return results, nil
}
