package wireroute

import (
	"oss.terrastruct.com/wire/lib/geo"
	"oss.terrastruct.com/wire/wiregrid"
	"oss.terrastruct.com/wire/wirepath"
	"oss.terrastruct.com/wire/wireusage"
)

// Port is a resolved connection point on a node boundary.
type Port struct {
	Position  *geo.Point    `json:"position"`
	Direction geo.Direction `json:"direction"`
}

// Node is what the router needs to know about a diagram node: its bounds and
// the ports the rendering layer resolved for it, by port index.
type Node struct {
	Box   *geo.Box `json:"box"`
	Ports []*Port  `json:"ports,omitempty"`
}

// Scene is everything one routing pass reads. It is owned by the caller.
type Scene struct {
	Canvas *geo.Box
	Nodes  map[string]*Node
}

type Waypoint struct {
	ID             string     `json:"id"`
	Position       *geo.Point `json:"position"`
	IsUserWaypoint bool       `json:"isUserWaypoint"`
}

type Connection struct {
	ID              string `json:"id"`
	SourceNodeID    string `json:"sourceNodeId"`
	SourcePortIndex int    `json:"sourcePortIndex"`
	TargetNodeID    string `json:"targetNodeId"`
	TargetPortIndex int    `json:"targetPortIndex"`

	Waypoints []*Waypoint `json:"waypoints,omitempty"`
	// WaypointsOrdered is set when Waypoints is in authored order. Otherwise
	// user waypoints are visited by distance from the source stub.
	WaypointsOrdered bool `json:"waypointsOrdered,omitempty"`
}

type Segment struct {
	Index         int        `json:"index"`
	Start         *geo.Point `json:"startPoint"`
	End           *geo.Point `json:"endPoint"`
	IsHorizontal  bool       `json:"isHorizontal"`
	IsUserSegment bool       `json:"isUserSegment"`
}

type RouteResult struct {
	// Path runs from SourceStub to TargetStub.
	Path       geo.Route   `json:"path"`
	Waypoints  []*Waypoint `json:"waypoints"`
	Segments   []*Segment  `json:"segments"`
	IsFallback bool        `json:"isFallback"`

	SourcePort *geo.Point `json:"sourcePort"`
	SourceStub *geo.Point `json:"sourceStub"`
	TargetStub *geo.Point `json:"targetStub"`
	TargetPort *geo.Point `json:"targetPort"`
}

// Polyline is the full drawable wire, port to port.
func (r *RouteResult) Polyline() geo.Route {
	out := geo.Route{r.SourcePort}
	out = append(out, r.Path...)
	out = append(out, r.TargetPort)
	return wirepath.Simplify(wirepath.Deduplicate(out), r.isUserPoint)
}

func (r *RouteResult) isUserPoint(p *geo.Point) bool {
	for _, wp := range r.Waypoints {
		if wp.IsUserWaypoint && wp.Position.Equals(p) {
			return true
		}
	}
	return false
}

type Options struct {
	GridSize float64 `json:"gridSize"`
	// Margin is kept free around every node.
	Margin float64 `json:"margin"`
	// Padding extends the routable area beyond the canvas.
	Padding float64 `json:"padding"`
	// SourceClearance and TargetClearance are the stub lengths. They differ by
	// default so stubs of wires meeting at one anchor do not coincide.
	SourceClearance float64 `json:"sourceClearance"`
	TargetClearance float64 `json:"targetClearance"`

	TurnPenalty     int `json:"turnPenalty"`
	CrossingPenalty int `json:"crossingPenalty"`
	// SharedSourceCells cells next to a source stub are not recorded in the
	// batch usage.
	SharedSourceCells int  `json:"sharedSourceCells"`
	PortExits         bool `json:"portExits"`
}

func DefaultOptions() *Options {
	return &Options{
		GridSize:          wiregrid.DefaultSize,
		Margin:            wiregrid.DefaultSize,
		Padding:           6 * wiregrid.DefaultSize,
		SourceClearance:   2 * wiregrid.DefaultSize,
		TargetClearance:   3 * wiregrid.DefaultSize,
		TurnPenalty:       wirepath.DefaultTurnPenalty,
		CrossingPenalty:   wirepath.DefaultCrossingPenalty,
		SharedSourceCells: wireusage.DefaultSharedSourceCells,
		PortExits:         true,
	}
}

func (opts *Options) gridOptions() *wiregrid.Options {
	return &wiregrid.Options{
		Size:      opts.GridSize,
		Margin:    opts.Margin,
		Padding:   opts.Padding,
		PortExits: opts.PortExits,
	}
}
