// Package wiretarget defines the JSON documents read and written by the wire
// command: a scene of nodes, ports and connections in, routed wires out.
package wiretarget

import (
	"bytes"
	"encoding/json"
	"fmt"

	"oss.terrastruct.com/xdefer"
	"oss.terrastruct.com/xjson"

	"oss.terrastruct.com/wire/lib/geo"
	"oss.terrastruct.com/wire/wireroute"
)

type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r *Rect) Box() *geo.Box {
	if r == nil {
		return nil
	}
	return geo.NewBox(geo.NewPoint(r.X, r.Y), r.Width, r.Height)
}

type Port struct {
	X         float64       `json:"x"`
	Y         float64       `json:"y"`
	Direction geo.Direction `json:"direction"`
}

type Node struct {
	ID string `json:"id"`
	Rect
	// Ports are referenced by index from connections.
	Ports []Port `json:"ports,omitempty"`
}

type Scene struct {
	Canvas      *Rect                   `json:"canvas,omitempty"`
	Nodes       []Node                  `json:"nodes"`
	Connections []*wireroute.Connection `json:"connections"`
}

// Parse decodes and validates a scene document. Unknown fields are rejected.
func Parse(b []byte) (_ *Scene, err error) {
	defer xdefer.Errorf(&err, "failed to parse scene")

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	var s Scene
	if err := dec.Decode(&s); err != nil {
		return nil, err
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Scene) validate() error {
	nodes := make(map[string]struct{}, len(s.Nodes))
	for i, n := range s.Nodes {
		if n.ID == "" {
			return fmt.Errorf("node %d has no id", i)
		}
		if _, ok := nodes[n.ID]; ok {
			return fmt.Errorf("duplicate node %q", n.ID)
		}
		if n.Width < 0 || n.Height < 0 {
			return fmt.Errorf("node %q has negative size", n.ID)
		}
		for j, p := range n.Ports {
			if p.Direction == geo.NoDirection {
				return fmt.Errorf("port %d of node %q has no direction", j, n.ID)
			}
		}
		nodes[n.ID] = struct{}{}
	}
	conns := make(map[string]struct{}, len(s.Connections))
	for i, c := range s.Connections {
		if c == nil || c.ID == "" {
			return fmt.Errorf("connection %d has no id", i)
		}
		if _, ok := conns[c.ID]; ok {
			return fmt.Errorf("duplicate connection %q", c.ID)
		}
		conns[c.ID] = struct{}{}
	}
	return nil
}

// RouterScene converts s to what the router reads.
func (s *Scene) RouterScene() *wireroute.Scene {
	rs := &wireroute.Scene{
		Canvas: s.Canvas.Box(),
		Nodes:  make(map[string]*wireroute.Node, len(s.Nodes)),
	}
	for i := range s.Nodes {
		n := &s.Nodes[i]
		rn := &wireroute.Node{Box: n.Box()}
		for _, p := range n.Ports {
			rn.Ports = append(rn.Ports, &wireroute.Port{
				Position:  geo.NewPoint(p.X, p.Y),
				Direction: p.Direction,
			})
		}
		rs.Nodes[n.ID] = rn
	}
	return rs
}

type Wire struct {
	ID string `json:"id"`
	*wireroute.RouteResult
	// Polyline is the wire from port to port.
	Polyline geo.Route `json:"polyline"`
}

type Result struct {
	Wires     []Wire `json:"wires"`
	Fallbacks int    `json:"fallbacks"`
}

// NewResult pairs results with the connections they were routed for.
func NewResult(conns []*wireroute.Connection, results []*wireroute.RouteResult) *Result {
	r := &Result{
		Wires: make([]Wire, 0, len(results)),
	}
	for i, res := range results {
		if res.IsFallback {
			r.Fallbacks++
		}
		r.Wires = append(r.Wires, Wire{
			ID:          conns[i].ID,
			RouteResult: res,
			Polyline:    res.Polyline(),
		})
	}
	return r
}

func (r *Result) Bytes() []byte {
	return xjson.Marshal(r)
}
