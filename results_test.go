package redisbus

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/dermesser/redisbus/codec"
	"github.com/dermesser/redisbus/proto"
	pb "github.com/gogo/protobuf/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcomeStates(t *testing.T) {
	b, _ := newTestBus(t)

	assert.False(t, Unresolved.Resolved())
	_, err := b.Result(Unresolved)
	assert.Error(t, err)

	ok, err := b.OkValue(nil)
	require.NoError(t, err)
	assert.True(t, ok.Resolved())
	assert.True(t, ok.IsOk())
	v, err := b.Result(ok)
	require.NoError(t, err)
	assert.Nil(t, v)

	f := NewFault(errors.New("boom"))
	failed := Err(f)
	assert.True(t, failed.Resolved())
	assert.False(t, failed.IsOk())
	_, err = b.Result(failed)
	assert.Equal(t, f, err)
}

func TestCallRoundTrip(t *testing.T) {
	for _, c := range []codec.Compression{codec.None, codec.Zstd, codec.LZ4} {
		t.Run(c.String(), func(t *testing.T) {
			b, _ := newTestBus(t, WithCompression(c, 16))

			in := &Call{
				Args:     []any{"Joe", 3, []string{"x"}},
				Kwargs:   map[string]any{"b": 1.5, "a": map[string]any{"k": "v"}},
				ResultID: "r1",
			}
			data, err := b.EncodeCall(in)
			require.NoError(t, err)

			out, err := b.DecodeCall(data)
			require.NoError(t, err)
			assert.Equal(t, "r1", out.ResultID)
			assert.Equal(t, []any{"Joe", int64(3), []any{"x"}}, out.Args)
			assert.Equal(t, map[string]any{"b": 1.5, "a": map[string]any{"k": "v"}}, out.Kwargs)
			assert.WithinDuration(t, time.Now(), out.Submitted, time.Minute)
		})
	}
}

func TestPublishAwait(t *testing.T) {
	b, _ := newTestBus(t)
	ctx := context.Background()

	o, err := b.OkValue("Hello, world")
	require.NoError(t, err)
	require.NoError(t, b.PublishResult(ctx, "id1", o))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := b.AwaitResult(ctx, "id1")
			if assert.NoError(t, err) {
				v, err := b.Result(got)
				assert.NoError(t, err)
				assert.Equal(t, "Hello, world", v)
			}
		}()
	}
	wg.Wait()
}

func TestAwaitFault(t *testing.T) {
	b, _ := newTestBus(t)
	ctx := context.Background()

	require.NoError(t, b.PublishResult(ctx, "id", Err(&Fault{Kind: "*errors.errorString", Message: "boom"})))

	o, err := b.AwaitResult(ctx, "id")
	require.NoError(t, err)
	_, err = b.Result(o)
	var f *Fault
	require.ErrorAs(t, err, &f)
	assert.Equal(t, "boom", f.Error())
	assert.False(t, f.Panicked())
}

func TestFaultKeepsOnlyKindAndText(t *testing.T) {
	b, _ := newTestBus(t)
	ctx := context.Background()

	require.NoError(t, b.PublishResult(ctx, "eof", Err(NewFault(io.EOF))))
	o, err := b.AwaitResult(ctx, "eof")
	require.NoError(t, err)

	_, err = b.Result(o)
	assert.NotErrorIs(t, err, io.EOF)
	assert.ErrorIs(t, err, NewFault(io.EOF))
	assert.Equal(t, "*errors.errorString", o.Fault().Kind)
	assert.Equal(t, "EOF", err.Error())
}

func TestEncodeCallRefusesUndecodableValues(t *testing.T) {
	b, _ := newTestBus(t)
	var be *BindingError

	_, err := b.EncodeCall(&Call{Args: []any{uint64(1 << 63)}, ResultID: "id"})
	require.ErrorAs(t, err, &be)
	assert.Contains(t, be.Message, "argument 0")

	_, err = b.EncodeCall(&Call{Kwargs: map[string]any{"n": uint64(1 << 63)}, ResultID: "id"})
	require.ErrorAs(t, err, &be)
	assert.Contains(t, be.Message, `"n"`)

	_, err = b.EncodeCall(&Call{Args: []any{uint64(1 << 62)}, ResultID: "id"})
	assert.NoError(t, err)
}

func TestDecodeCallKeepsResultID(t *testing.T) {
	b, _ := newTestBus(t)

	huge, err := b.values.Marshal(uint64(1 << 63))
	require.NoError(t, err)
	raw, err := pb.Marshal(&proto.CallRecord{Args: [][]byte{huge}, ResultId: pb.String("id")})
	require.NoError(t, err)
	data, err := b.framer.Frame(raw)
	require.NoError(t, err)

	c, err := b.DecodeCall(data)
	var be *BindingError
	require.ErrorAs(t, err, &be)
	require.NotNil(t, c)
	assert.Equal(t, "id", c.ResultID)
	assert.Empty(t, c.Args)

	c, err = b.DecodeCall([]byte("garbage"))
	assert.Error(t, err)
	assert.Nil(t, c)
}

func TestAwaitDeadline(t *testing.T) {
	b, _ := newTestBus(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := b.AwaitResult(ctx, "never")
	assert.ErrorIs(t, err, ErrTimeout)

	_, err = b.AwaitResult(ctx, "never")
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestCacheSlots(t *testing.T) {
	b, mr := newTestBus(t)
	ctx := context.Background()

	m, err := b.Register(ctx, "bustest.sum", WithCacheKey("{a}+{b}"))
	require.NoError(t, err)

	key, ok, err := b.ResolveCacheSlot(m, []any{1}, map[string]any{"b": 2})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "redis_bus:cache:sum:1+2", key)

	o, err := b.CheckCache(ctx, key)
	require.NoError(t, err)
	assert.False(t, o.Resolved())

	stored, err := b.OkValue(3)
	require.NoError(t, err)
	require.NoError(t, b.StoreCache(ctx, key, stored))
	assert.Equal(t, DefaultCacheTTL, mr.TTL(key))

	o, err = b.CheckCache(ctx, key)
	require.NoError(t, err)
	v, err := b.Result(o)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	require.NoError(t, b.ClearCache(ctx, m, []any{1, 2}, nil))
	assert.False(t, mr.Exists(key))

	_, _, err = b.ResolveCacheSlot(m, []any{1}, nil)
	var be *BindingError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "sum", be.Method)
}

func TestCacheTTLZeroSkipsWrites(t *testing.T) {
	b, mr := newTestBus(t, WithCacheTTL(0))
	ctx := context.Background()

	o, err := b.OkValue(1)
	require.NoError(t, err)
	require.NoError(t, b.StoreCache(ctx, "redis_bus:cache:x:1", o))
	assert.False(t, mr.Exists("redis_bus:cache:x:1"))
}

func TestUncachedMethodHasNoSlot(t *testing.T) {
	b, _ := newTestBus(t)
	ctx := context.Background()

	m, err := b.Register(ctx, "bustest.hello")
	require.NoError(t, err)
	_, ok, err := b.ResolveCacheSlot(m, nil, nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, b.ClearCache(ctx, m, nil, nil))
}
