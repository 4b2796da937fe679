// Package wireroute turns a connection between two node ports into an
// orthogonal wire: it derives the clearance stubs, chains pathfinder searches
// through the user's waypoints and simplifies the result.
package wireroute

import (
	"context"
	"errors"
	"fmt"

	"cdr.dev/slog"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"oss.terrastruct.com/xdefer"

	"oss.terrastruct.com/wire/lib/geo"
	"oss.terrastruct.com/wire/lib/log"
	"oss.terrastruct.com/wire/wiregrid"
	"oss.terrastruct.com/wire/wirepath"
	"oss.terrastruct.com/wire/wireusage"
)

// ComputeRoute routes a single connection against a freshly built grid.
// usage may be nil. The only error is a reference to a node or port the scene
// does not have.
func ComputeRoute(ctx context.Context, scene *Scene, conn *Connection, usage *wireusage.Usage, opts *Options) (_ *RouteResult, err error) {
	if conn == nil {
		return nil, errors.New("failed to route: nil connection")
	}
	defer xdefer.Errorf(&err, "failed to route %q", conn.ID)

	if opts == nil {
		opts = DefaultOptions()
	}
	g := BuildGrid(ctx, scene, []*Connection{conn}, opts)
	return route(ctx, g, scene, conn, usage, opts)
}

// BuildGrid builds the obstacle grid of a scene, with every node as an
// obstacle and every port exit blocked. The grid extends to cover the stubs
// and user waypoints of conns.
func BuildGrid(ctx context.Context, scene *Scene, conns []*Connection, opts *Options) *wiregrid.Grid {
	if scene == nil {
		scene = &Scene{}
	}
	ids := maps.Keys(scene.Nodes)
	slices.Sort(ids)

	boxes := make(map[string]*geo.Box, len(scene.Nodes))
	var exits []wiregrid.Exit
	for _, id := range ids {
		n := scene.Nodes[id]
		if n == nil || n.Box == nil {
			continue
		}
		boxes[id] = n.Box
		for _, p := range n.Ports {
			if p == nil || p.Position == nil {
				continue
			}
			exits = append(exits, wiregrid.Exit{
				NodeID:    id,
				Position:  p.Position,
				Direction: p.Direction,
			})
		}
	}
	return wiregrid.Build(ctx, scene.Canvas, boxes, exits, scene.anchors(conns, opts), opts.gridOptions())
}

// anchors lists the points conns route through. Unresolvable references are
// skipped; routing reports them.
func (s *Scene) anchors(conns []*Connection, opts *Options) []*geo.Point {
	var out []*geo.Point
	for _, conn := range conns {
		if conn == nil {
			continue
		}
		if p, err := s.port(conn.SourceNodeID, conn.SourcePortIndex); err == nil {
			out = append(out, p.Position.Move(p.Direction, opts.SourceClearance))
		}
		if p, err := s.port(conn.TargetNodeID, conn.TargetPortIndex); err == nil {
			out = append(out, p.Position.Move(p.Direction, opts.TargetClearance))
		}
		for _, wp := range userWaypoints(conn) {
			out = append(out, wp.Position)
		}
	}
	return out
}

func (s *Scene) port(nodeID string, index int) (*Port, error) {
	if s == nil {
		return nil, fmt.Errorf("unknown node %q", nodeID)
	}
	n, ok := s.Nodes[nodeID]
	if !ok || n == nil {
		return nil, fmt.Errorf("unknown node %q", nodeID)
	}
	if index < 0 || index >= len(n.Ports) || n.Ports[index] == nil || n.Ports[index].Position == nil {
		return nil, fmt.Errorf("node %q has no port %d", nodeID, index)
	}
	return n.Ports[index], nil
}

func route(ctx context.Context, g *wiregrid.Grid, scene *Scene, conn *Connection, usage *wireusage.Usage, opts *Options) (*RouteResult, error) {
	src, err := scene.port(conn.SourceNodeID, conn.SourcePortIndex)
	if err != nil {
		return nil, err
	}
	dst, err := scene.port(conn.TargetNodeID, conn.TargetPortIndex)
	if err != nil {
		return nil, err
	}

	res := &RouteResult{
		SourcePort: src.Position.Copy(),
		TargetPort: dst.Position.Copy(),
		SourceStub: src.Position.Move(src.Direction, opts.SourceClearance),
		TargetStub: dst.Position.Move(dst.Direction, opts.TargetClearance),
	}

	user := userWaypoints(conn)
	if !inputsFinite(res, user) {
		log.Warn(ctx, "non-finite route input, drawing a direct line", slog.F("connection", conn.ID))
		res.Path = geo.Route{res.SourceStub.Copy(), res.TargetStub.Copy()}
		res.IsFallback = true
		res.Waypoints = user
		res.Segments = segments(res.Path, nil)
		return res, nil
	}

	res.SourceStub = wirepath.Snap(res.SourceStub, g.Size)
	res.TargetStub = wirepath.Snap(res.TargetStub, g.Size)
	for _, wp := range user {
		wp.Position = wirepath.Snap(wp.Position, g.Size)
	}
	if !conn.WaypointsOrdered {
		slices.SortStableFunc(user, func(a, b *Waypoint) bool {
			return a.Position.ManhattanDistance(res.SourceStub) < b.Position.ManhattanDistance(res.SourceStub)
		})
	}

	view := g.Without(conn.SourceNodeID, conn.TargetNodeID)

	anchors := make([]*geo.Point, 0, len(user)+2)
	anchors = append(anchors, res.SourceStub)
	for _, wp := range user {
		anchors = append(anchors, wp.Position)
	}
	anchors = append(anchors, res.TargetStub)

	var path geo.Route
	seed := src.Direction
	for i := 0; i+1 < len(anchors); i++ {
		req := wirepath.Request{
			Start:           anchors[i],
			End:             anchors[i+1],
			Seed:            seed,
			Usage:           usage,
			TurnPenalty:     opts.TurnPenalty,
			CrossingPenalty: opts.CrossingPenalty,
		}
		if i+2 == len(anchors) {
			req.Arrive = dst.Direction.Opposite()
		}
		leg := wirepath.Find(ctx, view, req)
		if leg.Fallback {
			log.Warn(ctx, "leg fell back to a direct line",
				slog.F("connection", conn.ID),
				slog.F("leg", i),
				slog.F("from", anchors[i].ToString()),
				slog.F("to", anchors[i+1].ToString()),
			)
			res.IsFallback = true
		}
		if len(path) > 0 && len(leg.Path) > 0 && path[len(path)-1].Equals(leg.Path[0]) {
			path = append(path, leg.Path[1:]...)
		} else {
			path = append(path, leg.Path...)
		}

		if n := len(leg.Path); n >= 2 {
			seed = geo.DirectionBetween(leg.Path[n-2], leg.Path[n-1])
		} else if i+2 < len(anchors) {
			seed = geo.DirectionBetween(anchors[i+1], anchors[i+2])
		}
	}

	pinned := func(p *geo.Point) bool {
		for _, wp := range user {
			if wp.Position.Equals(p) {
				return true
			}
		}
		return false
	}
	res.Path = wirepath.Simplify(wirepath.Deduplicate(path), pinned)
	res.Segments = segments(res.Path, pinned)
	res.Waypoints = append(user, autoWaypoints(conn.ID, res.Path, pinned)...)

	log.Debug(ctx, "routed connection",
		slog.F("connection", conn.ID),
		slog.F("points", len(res.Path)),
		slog.F("turns", res.Path.Turns()),
		slog.F("length", res.Path.Length()),
		slog.F("fallback", res.IsFallback),
	)
	return res, nil
}

// userWaypoints copies the user waypoints of conn. Others are regenerated.
func userWaypoints(conn *Connection) []*Waypoint {
	var out []*Waypoint
	for _, wp := range conn.Waypoints {
		if wp == nil || !wp.IsUserWaypoint || wp.Position == nil {
			continue
		}
		out = append(out, &Waypoint{
			ID:             wp.ID,
			Position:       wp.Position.Copy(),
			IsUserWaypoint: true,
		})
	}
	return out
}

func inputsFinite(res *RouteResult, user []*Waypoint) bool {
	if !res.SourceStub.IsFinite() || !res.TargetStub.IsFinite() {
		return false
	}
	for _, wp := range user {
		if !wp.Position.IsFinite() {
			return false
		}
	}
	return true
}

func segments(path geo.Route, pinned func(*geo.Point) bool) []*Segment {
	segs := make([]*Segment, 0, len(path))
	for i := 0; i+1 < len(path); i++ {
		a, b := path[i], path[i+1]
		segs = append(segs, &Segment{
			Index:         i,
			Start:         a.Copy(),
			End:           b.Copy(),
			IsHorizontal:  geo.NewSegment(a, b).IsHorizontal(),
			IsUserSegment: pinned != nil && (pinned(a) || pinned(b)),
		})
	}
	return segs
}

// autoWaypoints places a regenerated waypoint on every interior corner that is
// not a user waypoint.
func autoWaypoints(connID string, path geo.Route, pinned func(*geo.Point) bool) []*Waypoint {
	var out []*Waypoint
	for i := 1; i+1 < len(path); i++ {
		if pinned(path[i]) || path.CollinearAt(i) {
			continue
		}
		out = append(out, &Waypoint{
			ID:       fmt.Sprintf("%s.auto.%d", connID, len(out)),
			Position: path[i].Copy(),
		})
	}
	return out
}
