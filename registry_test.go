package redisbus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLookup(t *testing.T) {
	b, mr := newTestBus(t)
	ctx := context.Background()

	m, err := b.Register(ctx, "bustest.hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", m.Name)
	assert.False(t, m.Cached())

	got, err := b.Lookup(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Name)
	assert.Equal(t, "bustest.hello", got.Target)

	raw := mr.HGet("redis_bus:methods", "hello")
	assert.JSONEq(t, `{"fn": "bustest.hello", "ck": null}`, raw)

	_, err = b.Register(ctx, "bustest.sum", WithMethodName("add"), WithCacheKey("{a}/{b}"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"fn": "bustest.sum", "ck": "{a}/{b}"}`, mr.HGet("redis_bus:methods", "add"))

	got, err = b.Lookup(ctx, "add")
	require.NoError(t, err)
	assert.Equal(t, "{a}/{b}", got.CacheKey)

	tgt, err := got.Resolve()
	require.NoError(t, err)
	assert.Len(t, tgt.Params, 2)
}

func TestRegisterWithPrefix(t *testing.T) {
	b, _ := newTestBus(t, WithPrefix("greet_"))

	m, err := b.Register(context.Background(), "bustest.hello")
	require.NoError(t, err)
	assert.Equal(t, "greet_hello", m.Name)
}

func TestRegisterRefused(t *testing.T) {
	b, _ := newTestBus(t)
	ctx := context.Background()

	var re *RegistrationError
	_, err := b.Register(ctx, "main.local")
	require.ErrorAs(t, err, &re)
	_, err = b.Register(ctx, "bustest.nothere")
	require.ErrorAs(t, err, &re)
	_, err = b.Register(ctx, "bustest.hello", WithMethodName("a:b"))
	require.ErrorAs(t, err, &re)

	var ke *KeyFormatError
	_, err = b.Register(ctx, "bustest.hello", WithCacheKey("{user}"))
	require.ErrorAs(t, err, &ke)

	names, err := b.AllMethods(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLookupNotFound(t *testing.T) {
	b, _ := newTestBus(t)

	_, err := b.Lookup(context.Background(), "nope")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "nope", nf.Method)
}

func TestList(t *testing.T) {
	b, _ := newTestBus(t)
	ctx := context.Background()

	for _, name := range []string{"math_sum", "math_mul", "hello"} {
		_, err := b.Register(ctx, "bustest.sum", WithMethodName(name))
		require.NoError(t, err)
	}

	names, err := b.List(ctx, "math_*")
	require.NoError(t, err)
	assert.Equal(t, []string{"math_mul", "math_sum"}, names)

	names, err = b.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "math_mul", "math_sum"}, names)

	names, err = b.List(ctx, "{hello,math_sum}")
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "math_sum"}, names)

	names, err = b.List(ctx, "nomatch*")
	require.NoError(t, err)
	assert.Empty(t, names)

	_, err = b.List(ctx, "[")
	var ce *ConfigError
	assert.ErrorAs(t, err, &ce)
}

func TestResetDeletesNamespace(t *testing.T) {
	b, mr := newTestBus(t, WithName("one"))
	ctx := context.Background()

	_, err := b.Register(ctx, "bustest.hello")
	require.NoError(t, err)
	_, err = b.Lookup(ctx, "hello")
	require.NoError(t, err)

	require.NoError(t, mr.Set("one:cache:hello:x", "v"))
	require.NoError(t, mr.Set("other:methods", "keep"))
	_, err = mr.Lpush("one:calls:hello", "call")
	require.NoError(t, err)

	require.NoError(t, b.Reset(ctx))

	assert.Equal(t, []string{"other:methods"}, mr.Keys())

	// the method cache must not outlive the reset
	var nf *NotFoundError
	_, err = b.Lookup(ctx, "hello")
	assert.ErrorAs(t, err, &nf)

	require.NoError(t, b.Reset(ctx))
}

func TestLookupCacheSeesReregistration(t *testing.T) {
	b, _ := newTestBus(t, WithMethodCacheTTL(time.Hour))
	ctx := context.Background()

	_, err := b.Register(ctx, "bustest.sum", WithMethodName("m"))
	require.NoError(t, err)
	_, err = b.Lookup(ctx, "m")
	require.NoError(t, err)

	_, err = b.Register(ctx, "bustest.hello", WithMethodName("m"))
	require.NoError(t, err)
	m, err := b.Lookup(ctx, "m")
	require.NoError(t, err)
	assert.Equal(t, "bustest.hello", m.Target)
}
