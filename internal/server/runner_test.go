package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (c *countingRefresher) Refresh(context.Context) error {
	c.calls.Add(1)
	return c.err
}

type countingPruner struct {
	mu        sync.Mutex
	retention []time.Duration
}

func (c *countingPruner) Prune(_ context.Context, olderThan time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.retention = append(c.retention, olderThan)
	return 1, nil
}

func (c *countingPruner) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.retention)
}

type recordingSweeper struct {
	started atomic.Int32
}

func (s *recordingSweeper) StartSweeper(context.Context) {
	s.started.Add(1)
}

func listen(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return ln
}

func TestRunner_ServesAndStops(t *testing.T) {
	refresher := &countingRefresher{err: errors.New("provider down")}
	pruner := &countingPruner{}
	sweeper := &recordingSweeper{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pong"))
	})

	runner := NewRunner(Config{
		PollInterval:   10 * time.Millisecond,
		PruneInterval:  10 * time.Millisecond,
		EventRetention: time.Hour,
	}, Components{Handler: mux, Tasks: sweeper, Downloads: refresher, Events: pruner}, testLogger())

	ln := listen(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runner.Serve(ctx, ln)
	}()

	resp, err := http.Get("http://" + ln.Addr().String() + "/ping")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "pong", string(body))

	require.Eventually(t, func() bool {
		return refresher.calls.Load() >= 2 && pruner.count() >= 2
	}, 2*time.Second, 5*time.Millisecond, "refresh errors must not stop the poller")
	assert.Equal(t, int32(1), sweeper.started.Load())

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for runner to stop")
	}

	pruner.mu.Lock()
	assert.Equal(t, time.Hour, pruner.retention[0])
	pruner.mu.Unlock()
}

func TestRunner_PruningDisabled(t *testing.T) {
	pruner := &countingPruner{}
	runner := NewRunner(Config{PruneInterval: 5 * time.Millisecond}, Components{Events: pruner}, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.NoError(t, runner.Serve(ctx, listen(t)))
	assert.Zero(t, pruner.count())
}

func TestRunner_ListenError(t *testing.T) {
	ln := listen(t)
	defer ln.Close()

	runner := NewRunner(Config{Addr: ln.Addr().String()}, Components{}, testLogger())
	err := runner.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen")
}

func TestNewRunner_Defaults(t *testing.T) {
	runner := NewRunner(Config{}, Components{}, nil)
	require.NotNil(t, runner.logger)
	assert.Equal(t, DefaultPollInterval, runner.config.PollInterval)
	assert.Equal(t, DefaultPruneInterval, runner.config.PruneInterval)
	assert.Equal(t, DefaultShutdownTimeout, runner.config.ShutdownTimeout)
}
