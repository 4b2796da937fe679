package xmain

import (
	"errors"
	"io"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"oss.terrastruct.com/cmdlog"
	"oss.terrastruct.com/xos"
)

func testOpts(t *testing.T, environ []string, args ...string) *Opts {
	env := xos.NewEnv(environ)
	return NewOpts(env, cmdlog.Log(env, io.Discard), args)
}

func TestOptsEnvFallback(t *testing.T) {
	t.Parallel()

	o := testOpts(t, []string{"WIRE_GRID_SIZE=20", "WIRE_TURN_PENALTY=5", "WIRE_WATCH=true"}, "--turn-penalty=7", "in.json")
	size, err := o.Float64("WIRE_GRID_SIZE", "grid-size", "", 10, "")
	require.NoError(t, err)
	turn, err := o.Int64("WIRE_TURN_PENALTY", "turn-penalty", "", 2, "")
	require.NoError(t, err)
	watch, err := o.Bool("WIRE_WATCH", "watch", "w", false, "")
	require.NoError(t, err)
	require.NoError(t, o.Parse())

	assert.Equal(t, 20., *size)
	assert.Equal(t, int64(7), *turn)
	assert.True(t, *watch)
	assert.Equal(t, []string{"in.json"}, o.Flags.Args())
	assert.Contains(t, o.Defaults(), "- $WIRE_GRID_SIZE")
}

func TestOptsErrors(t *testing.T) {
	t.Parallel()

	o := testOpts(t, []string{"WIRE_GRID_SIZE=big", "WIRE_WATCH=yes"})
	_, err := o.Float64("WIRE_GRID_SIZE", "grid-size", "", 10, "")
	var uerr UsageError
	require.True(t, errors.As(err, &uerr))
	assert.Contains(t, err.Error(), `"big"`)
	_, err = o.Bool("WIRE_WATCH", "watch", "w", false, "")
	require.Error(t, err)

	o = testOpts(t, nil, "--nope")
	require.True(t, errors.As(o.Parse(), &uerr))

	o = testOpts(t, nil, "--help")
	assert.True(t, errors.Is(o.Parse(), pflag.ErrHelp))
}
