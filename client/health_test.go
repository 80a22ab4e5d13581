package client

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dermesser/redisbus/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbe(t *testing.T) {
	f := setup(t)
	endpoint := fmt.Sprintf("inproc://probe-%d", time.Now().UnixNano())
	hs, err := server.NewHealthServer(f.worker, nil, endpoint)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hs.Serve(ctx) }()
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	st, err := Probe(context.Background(), endpoint, server.ProcHealth, nil)
	require.NoError(t, err)
	assert.True(t, st.Healthy())

	_, err = f.client.Submit(context.Background(), "hello", nil, nil)
	require.NoError(t, err)
	f.drain(t)
	st, err = Probe(context.Background(), endpoint, server.ProcStats, nil)
	require.NoError(t, err)
	assert.Equal(t, "executed=1 busy=0", st.Detail)

	f.worker.SetLameduck(true)
	st, err = Probe(context.Background(), endpoint, server.ProcHealth, nil)
	require.NoError(t, err)
	assert.False(t, st.Healthy())
	assert.Equal(t, server.StatusLameduck, st.Status)
}

func TestProbeNoAnswer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	_, err := Probe(ctx, "tcp://127.0.0.1:1", server.ProcPing, nil)
	assert.Error(t, err)
}
