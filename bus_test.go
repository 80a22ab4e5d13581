package redisbus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dermesser/redisbus/broker"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func init() {
	RegisterTarget("bustest.hello", Target{
		Params: []Param{Optional("username", "world")},
		Func: func(ctx context.Context, args Args) (any, error) {
			return "Hello, " + args.String("username"), nil
		},
	})
	RegisterTarget("bustest.sum", Target{
		Params: []Param{Required("a"), Required("b")},
		Func: func(ctx context.Context, args Args) (any, error) {
			return args.Int("a") + args.Int("b"), nil
		},
	})
	RegisterTarget("bustest.fail", Target{
		Func: func(ctx context.Context, args Args) (any, error) {
			return nil, errors.New("boom")
		},
	})
}

func newTestBus(t *testing.T, opts ...Option) (*Bus, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	br := broker.NewRedis(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
	t.Cleanup(func() { br.Close() })

	b, err := New(br, opts...)
	require.NoError(t, err)
	return b, mr
}

func TestKeyLayout(t *testing.T) {
	b, _ := newTestBus(t, WithName("ns"))

	cases := []struct{ got, want string }{
		{b.MethodsKey(), "ns:methods"},
		{b.CallsKey("hello"), "ns:calls:hello"},
		{b.ResultKey("abc"), "ns:results:abc"},
		{b.CacheKey("uuid", "1"), "ns:cache:uuid:1"},
		{b.CacheKey("sum", "1/2"), "ns:cache:sum:1/2"},
		{b.ServePattern(), "*"},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Errorf("got %q, want %q", c.got, c.want)
		}
	}

	m, ok := b.MethodFromCallsKey("ns:calls:hello")
	if !ok || m != "hello" {
		t.Errorf("MethodFromCallsKey: %q %v", m, ok)
	}
}

func TestDefaults(t *testing.T) {
	b, _ := newTestBus(t)
	require.Equal(t, DefaultName, b.Name())
	require.Equal(t, DefaultResultTTL, b.ResultTTL())
	require.Equal(t, DefaultCacheTTL, b.CacheTTL())

	b, _ = newTestBus(t, WithPrefix("math_"))
	require.Equal(t, "math_*", b.ServePattern())
}

func TestBadName(t *testing.T) {
	for _, name := range []string{"", "a*", "a?", "bus[12]", `a\b`} {
		_, err := New(nil, WithName(name))
		var ce *ConfigError
		require.ErrorAs(t, err, &ce, name)
	}
}

func TestResetStaysInNamespace(t *testing.T) {
	b, mr := newTestBus(t, WithName("bus"))
	ctx := context.Background()
	_, err := b.Register(ctx, "bustest.hello")
	require.NoError(t, err)
	require.NoError(t, mr.Set("bus1:methods", "x"))
	require.NoError(t, mr.Set("busy:methods", "x"))

	require.NoError(t, b.Reset(ctx))
	require.ElementsMatch(t, []string{"bus1:methods", "busy:methods"}, mr.Keys())
}

func TestZeroResultTTL(t *testing.T) {
	_, err := New(nil, WithResultTTL(0))
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)

	_, err = New(nil, WithResultTTL(NoExpiry))
	require.NoError(t, err)
}

func TestMethodCacheIsOffByDefault(t *testing.T) {
	b, _ := newTestBus(t)
	require.Nil(t, b.methods)

	b, _ = newTestBus(t, WithMethodCacheTTL(time.Minute))
	require.NotNil(t, b.methods)
}
