package pactl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sync"

	"per-app-volume/internal/platform/metrics"
)

// relevantEvent matches subscription lines that can change the stream list.
var relevantEvent = regexp.MustCompile(`(?i)sink-input|server|client`)

// ErrWatcherRunning is returned by Start when the watcher is not stopped.
var ErrWatcherRunning = errors.New("watcher already running")

// State is the lifecycle state of a Watcher.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateListening
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateListening:
		return "listening"
	default:
		return "stopped"
	}
}

// Watcher follows the server's event stream and calls trigger for every
// event that concerns streams, clients or the server itself. It does not
// reconnect: when the stream ends the watcher stays stopped.
type Watcher struct {
	sub     Subscriber
	trigger func()
	log     *slog.Logger
	metrics *metrics.Metrics

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}
}

// NewWatcher returns a stopped Watcher. m may be nil.
func NewWatcher(sub Subscriber, trigger func(), log *slog.Logger, m *metrics.Metrics) *Watcher {
	if log == nil {
		log = slog.Default()
	}
	return &Watcher{sub: sub, trigger: trigger, log: log, metrics: m, state: StateStopped}
}

// Start opens the subscription and reads it on a new goroutine until ctx is
// cancelled, Stop is called or the stream ends.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.state != StateStopped {
		w.mu.Unlock()
		return ErrWatcherRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	w.state = StateStarting
	w.cancel = cancel
	w.mu.Unlock()

	rc, err := w.sub.Subscribe(ctx)
	if err != nil {
		cancel()
		w.mu.Lock()
		w.state = StateStopped
		w.cancel = nil
		w.mu.Unlock()
		return fmt.Errorf("subscribing to server events: %w", err)
	}

	w.mu.Lock()
	if ctx.Err() != nil {
		// Stopped while starting.
		w.mu.Unlock()
		rc.Close()
		return nil
	}
	done := make(chan struct{})
	w.state = StateListening
	w.done = done
	w.mu.Unlock()

	w.log.Debug("pactl: watching server events")
	go w.loop(ctx, cancel, rc, done)
	return nil
}

func (w *Watcher) loop(ctx context.Context, cancel context.CancelFunc, rc io.ReadCloser, done chan struct{}) {
	defer close(done)
	defer cancel()

	sc := bufio.NewScanner(rc)
	for sc.Scan() {
		// Lines that arrive after Stop are dropped.
		if ctx.Err() != nil {
			break
		}
		if line := sc.Text(); line != "" && relevantEvent.MatchString(line) {
			if w.metrics != nil {
				w.metrics.IncWatcherEvents()
			}
			w.trigger()
		}
		if ctx.Err() != nil {
			break
		}
	}
	stopped := ctx.Err() != nil
	rc.Close()

	w.mu.Lock()
	if w.done == done {
		w.state = StateStopped
		w.cancel = nil
		w.done = nil
	}
	w.mu.Unlock()

	if stopped {
		w.log.Debug("pactl: event watcher stopped")
		return
	}
	attrs := []slog.Attr{}
	if err := sc.Err(); err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	w.log.LogAttrs(context.Background(), slog.LevelWarn, "pactl: event stream ended", attrs...)
}

// Stop cancels the subscription, which kills the subprocess. It does not
// wait for a read in progress.
func (w *Watcher) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.state = StateStopped
	w.cancel = nil
	w.done = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// State returns the current lifecycle state.
func (w *Watcher) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}
