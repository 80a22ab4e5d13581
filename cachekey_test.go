package redisbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	helloParams = []Param{Optional("username", "world")}
	sumParams   = []Param{Required("a"), Optional("b", 10)}
)

func TestBindAppliesDefaults(t *testing.T) {
	a, err := Bind(sumParams, []any{1}, nil)
	require.NoError(t, err)
	assert.Equal(t, Args{"a": int64(1), "b": int64(10)}, a)

	a, err = Bind(sumParams, nil, map[string]any{"b": 2, "a": 3})
	require.NoError(t, err)
	assert.Equal(t, Args{"a": int64(3), "b": int64(2)}, a)
}

func TestBindErrors(t *testing.T) {
	cases := []struct {
		name   string
		args   []any
		kwargs map[string]any
	}{
		{"too many positional", []any{1, 2, 3}, nil},
		{"unknown keyword", []any{1}, map[string]any{"c": 1}},
		{"duplicate", []any{1}, map[string]any{"a": 2}},
		{"missing required", nil, map[string]any{"b": 1}},
		{"unencodable", []any{make(chan int)}, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Bind(sumParams, c.args, c.kwargs)
			var be *BindingError
			require.ErrorAs(t, err, &be)
		})
	}
}

func TestResolveCacheKey(t *testing.T) {
	key, ok, err := ResolveCacheKey("", sumParams, []any{1}, nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, key)

	key, ok, err = ResolveCacheKey("{a}/{b}", sumParams, []any{1}, nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1/10", key)

	key, _, err = ResolveCacheKey("user:{username}", helloParams, nil, map[string]any{"username": "Joe"})
	require.NoError(t, err)
	assert.Equal(t, "user:Joe", key)

	key, _, err = ResolveCacheKey("{{{a}}}", sumParams, []any{"x"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "{x}", key)
}

// The same logical arguments must address the same slot however they were passed.
func TestResolveCacheKeyIsStable(t *testing.T) {
	params := []Param{Required("v")}
	forms := []any{int(5), int8(5), uint32(5), int64(5)}

	var keys []string
	for _, f := range forms {
		k, _, err := ResolveCacheKey("{v}", params, []any{f}, nil)
		require.NoError(t, err)
		keys = append(keys, k)
	}
	for _, k := range keys {
		assert.Equal(t, "5", k)
	}

	k1, _, err := ResolveCacheKey("{v}", params, []any{float32(0.1)}, nil)
	require.NoError(t, err)
	k2, _, err := ResolveCacheKey("{v}", params, nil, map[string]any{"v": float32(0.1)})
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
}

func TestTemplateErrors(t *testing.T) {
	for _, tmpl := range []string{"{c}", "{a", "a}", "{}", "{a{b}}"} {
		t.Run(tmpl, func(t *testing.T) {
			_, _, err := ResolveCacheKey(tmpl, sumParams, []any{1}, nil)
			var ke *KeyFormatError
			require.ErrorAs(t, err, &ke)
			assert.Equal(t, tmpl, ke.Template)

			require.ErrorAs(t, CheckTemplate(tmpl, sumParams), &ke)
		})
	}
	assert.NoError(t, CheckTemplate("{a}-{{b}}", sumParams))
}
