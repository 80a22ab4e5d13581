package redisbus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nop(ctx context.Context, args Args) (any, error) { return nil, nil }

func init() {
	RegisterTarget("targettest.once", Target{Func: nop})
	RegisterTarget("main.local", Target{Func: nop})
	RegisterTarget("undotted", Target{Func: nop})
}

func TestRegisterTargetTwicePanics(t *testing.T) {
	f := nop
	assert.Panics(t, func() { RegisterTarget("targettest.once", Target{Func: f}) })
	assert.Panics(t, func() { RegisterTarget("targettest.nofunc", Target{}) })
	assert.Panics(t, func() {
		RegisterTarget("targettest.dup", Target{Func: f, Params: []Param{Required("a"), Required("a")}})
	})

	_, ok := LookupTarget("targettest.once")
	assert.True(t, ok)
	assert.Contains(t, Targets(), "targettest.once")
}

func TestCheckTargetRef(t *testing.T) {
	for _, ref := range []string{"", "main.local", "undotted", "targettest.missing"} {
		var re *RegistrationError
		require.ErrorAs(t, checkTargetRef(ref), &re, ref)
		assert.Equal(t, ref, re.Target)
	}
	assert.NoError(t, checkTargetRef("bustest.hello"))
}

func TestArgsAccessors(t *testing.T) {
	type point struct {
		X, Y int
	}
	a := Args{
		"s": "str",
		"i": int64(7),
		"f": 2.5,
		"b": true,
		"p": map[string]any{"X": int64(1), "Y": int64(2)},
	}

	assert.Equal(t, "str", a.String("s"))
	assert.Equal(t, "7", a.String("i"))
	assert.Equal(t, "", a.String("missing"))
	assert.Equal(t, int64(7), a.Int("i"))
	assert.Equal(t, int64(2), a.Int("f"))
	assert.Equal(t, 2.5, a.Float("f"))
	assert.Equal(t, 7.0, a.Float("i"))
	assert.True(t, a.Bool("b"))
	assert.False(t, a.Bool("s"))

	var p point
	require.NoError(t, a.Decode("p", &p))
	assert.Equal(t, point{1, 2}, p)
}
