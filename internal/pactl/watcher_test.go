package pactl

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"per-app-volume/internal/platform/logger"
)

// pipeSubscriber hands out one in-memory event stream. Cancelling the
// subscription context breaks the pipe the way killing pactl would.
type pipeSubscriber struct {
	w   *io.PipeWriter
	err error
}

func (p *pipeSubscriber) Subscribe(ctx context.Context) (io.ReadCloser, error) {
	if p.err != nil {
		return nil, p.err
	}
	r, w := io.Pipe()
	p.w = w
	go func() {
		<-ctx.Done()
		w.CloseWithError(ctx.Err())
	}()
	return r, nil
}

func newTestWatcher(t *testing.T, sub Subscriber) (*Watcher, *atomic.Int32) {
	t.Helper()
	var n atomic.Int32
	w := NewWatcher(sub, func() { n.Add(1) }, logger.Discard(), nil)
	t.Cleanup(w.Stop)
	return w, &n
}

func TestWatcher_triggers_on_relevant_events(t *testing.T) {
	sub := &pipeSubscriber{}
	w, n := newTestWatcher(t, sub)

	require.NoError(t, w.Start(context.Background()))
	assert.Equal(t, StateListening, w.State())

	lines := "Event 'new' on sink-input #42\n" +
		"Event 'change' on sink #0\n" +
		"Event 'remove' on client #17\n" +
		"Event 'change' on source-output #3\n" +
		"Event 'change' on SERVER\n"
	_, err := io.WriteString(sub.w, lines)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return n.Load() == 3 }, time.Second, 5*time.Millisecond)
}

func TestWatcher_stops_when_stream_ends(t *testing.T) {
	sub := &pipeSubscriber{}
	w, n := newTestWatcher(t, sub)
	require.NoError(t, w.Start(context.Background()))

	_, err := io.WriteString(sub.w, "Event 'new' on sink-input #1\n")
	require.NoError(t, err)
	require.NoError(t, sub.w.Close())

	assert.Eventually(t, func() bool { return w.State() == StateStopped }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), n.Load())
}

func TestWatcher_Stop_cancels_subscription(t *testing.T) {
	sub := &pipeSubscriber{}
	w, n := newTestWatcher(t, sub)
	require.NoError(t, w.Start(context.Background()))

	w.Stop()
	assert.Equal(t, StateStopped, w.State())

	assert.Eventually(t, func() bool {
		_, err := io.WriteString(sub.w, "Event 'new' on sink-input #1\n")
		return err != nil
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(0), n.Load())
}

func TestWatcher_Start_twice(t *testing.T) {
	sub := &pipeSubscriber{}
	w, _ := newTestWatcher(t, sub)
	require.NoError(t, w.Start(context.Background()))

	assert.ErrorIs(t, w.Start(context.Background()), ErrWatcherRunning)
}

func TestWatcher_Start_subscribe_failure(t *testing.T) {
	sub := &pipeSubscriber{err: errors.New("exec: \"pactl\": executable file not found in $PATH")}
	w, _ := newTestWatcher(t, sub)

	err := w.Start(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateStopped, w.State())
}

func TestWatcher_restart_after_stop(t *testing.T) {
	sub := &pipeSubscriber{}
	w, n := newTestWatcher(t, sub)
	require.NoError(t, w.Start(context.Background()))
	w.Stop()

	require.NoError(t, w.Start(context.Background()))
	_, err := io.WriteString(sub.w, "Event 'new' on sink-input #5\n")
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return n.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "stopped", StateStopped.String())
	assert.Equal(t, "starting", StateStarting.String())
	assert.Equal(t, "listening", StateListening.String())
}
