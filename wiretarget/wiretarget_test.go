package wiretarget_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oss.terrastruct.com/wire/lib/geo"
	"oss.terrastruct.com/wire/lib/log"
	"oss.terrastruct.com/wire/wireroute"
	"oss.terrastruct.com/wire/wiretarget"
)

const scene = `{
  "nodes": [
    {"id": "a", "x": -40, "y": -20, "width": 40, "height": 40,
     "ports": [{"x": 0, "y": 0, "direction": "right"}]},
    {"id": "b", "x": 100, "y": -20, "width": 40, "height": 40,
     "ports": [{"x": 100, "y": 0, "direction": "west"}]}
  ],
  "connections": [
    {"id": "a->b", "sourceNodeId": "a", "targetNodeId": "b"}
  ]
}`

func TestParse(t *testing.T) {
	t.Parallel()

	s, err := wiretarget.Parse([]byte(scene))
	require.NoError(t, err)
	require.Len(t, s.Nodes, 2)
	assert.Equal(t, geo.Left, s.Nodes[1].Ports[0].Direction)
	require.Len(t, s.Connections, 1)
	assert.Equal(t, "b", s.Connections[0].TargetNodeID)

	rs := s.RouterScene()
	assert.Nil(t, rs.Canvas)
	require.Contains(t, rs.Nodes, "a")
	assert.Equal(t, 40., rs.Nodes["a"].Box.Width)
	assert.Equal(t, "(100, 0)", rs.Nodes["b"].Ports[0].Position.ToString())
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		text string
		err  string
	}{
		{
			name: "syntax",
			text: `{"nodes": [`,
			err:  "failed to parse scene",
		},
		{
			name: "unknown_field",
			text: `{"nodes": [], "edges": []}`,
			err:  `unknown field "edges"`,
		},
		{
			name: "duplicate_node",
			text: `{"nodes": [{"id": "a"}, {"id": "a"}]}`,
			err:  `duplicate node "a"`,
		},
		{
			name: "missing_id",
			text: `{"nodes": [{"x": 1}]}`,
			err:  "node 0 has no id",
		},
		{
			name: "bad_direction",
			text: `{"nodes": [{"id": "a", "ports": [{"direction": "sideways"}]}]}`,
			err:  "sideways",
		},
		{
			name: "no_direction",
			text: `{"nodes": [{"id": "a", "ports": [{"x": 1}]}]}`,
			err:  `port 0 of node "a" has no direction`,
		},
		{
			name: "duplicate_connection",
			text: `{"nodes": [], "connections": [{"id": "c"}, {"id": "c"}]}`,
			err:  `duplicate connection "c"`,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := wiretarget.Parse([]byte(tc.text))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.err)
		})
	}
}

func TestResult(t *testing.T) {
	t.Parallel()
	ctx := log.WithTB(context.Background(), t, nil)

	s, err := wiretarget.Parse([]byte(scene))
	require.NoError(t, err)
	results, err := wireroute.RouteAll(ctx, s.RouterScene(), s.Connections, nil)
	require.NoError(t, err)

	r := wiretarget.NewResult(s.Connections, results)
	assert.Equal(t, 0, r.Fallbacks)
	require.Len(t, r.Wires, 1)
	assert.Equal(t, "(0, 0), (100, 0)", r.Wires[0].Polyline.ToString())

	var got struct {
		Wires []struct {
			ID         string `json:"id"`
			IsFallback bool   `json:"isFallback"`
			Path       []struct {
				X float64 `json:"x"`
				Y float64 `json:"y"`
			} `json:"path"`
			Polyline []json.RawMessage `json:"polyline"`
		} `json:"wires"`
	}
	require.NoError(t, json.Unmarshal(r.Bytes(), &got))
	require.Len(t, got.Wires, 1)
	assert.Equal(t, "a->b", got.Wires[0].ID)
	require.Len(t, got.Wires[0].Path, 2)
	assert.Equal(t, 70., got.Wires[0].Path[1].X)
	assert.Len(t, got.Wires[0].Polyline, 2)
}
