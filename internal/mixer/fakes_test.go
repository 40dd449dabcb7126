package mixer

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"per-app-volume/internal/icon"
)

type fakeInventory struct {
	mu      sync.Mutex
	streams []Stream
	ok      bool
	calls   int
}

func (f *fakeInventory) ListStreams(ctx context.Context) ([]Stream, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return append([]Stream(nil), f.streams...), f.ok
}

func (f *fakeInventory) set(ok bool, streams ...Stream) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ok = ok
	f.streams = streams
}

func (f *fakeInventory) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type setCall struct {
	ID       StreamID
	Fraction float64
}

type fakeControl struct {
	mu      sync.Mutex
	live    map[StreamID]float64
	sets    []setCall
	killed  []StreamID
	queried []StreamID
}

func newFakeControl() *fakeControl {
	return &fakeControl{live: make(map[StreamID]float64)}
}

func (f *fakeControl) GetVolume(ctx context.Context, id StreamID) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queried = append(f.queried, id)
	if v, ok := f.live[id]; ok {
		return v
	}
	return 1.0
}

func (f *fakeControl) SetVolume(ctx context.Context, id StreamID, fraction float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.live[id] = fraction
	f.sets = append(f.sets, setCall{ID: id, Fraction: fraction})
}

func (f *fakeControl) KillStream(ctx context.Context, id StreamID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.killed = append(f.killed, id)
}

func (f *fakeControl) setCalls() []setCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]setCall(nil), f.sets...)
}

func (f *fakeControl) killedIDs() []StreamID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]StreamID(nil), f.killed...)
}

type fakeIcons struct {
	reloads int
}

func (f *fakeIcons) Resolve(props map[string]string) icon.Descriptor {
	if name := props[PropAppName]; name != "" {
		return icon.Descriptor{Kind: icon.KindName, Value: icon.Normalize(name), Source: icon.SourceTheme}
	}
	return icon.Fallback()
}

func (f *fakeIcons) Reload() error {
	f.reloads++
	return nil
}

type fixture struct {
	inv    *fakeInventory
	ctrl   *fakeControl
	icons  *fakeIcons
	memory *InMemoryVolumeStore
	svc    *Service
}

func newFixture(t *testing.T, delay time.Duration) *fixture {
	t.Helper()
	f := &fixture{
		inv:    &fakeInventory{ok: true},
		ctrl:   newFakeControl(),
		icons:  &fakeIcons{},
		memory: NewInMemoryVolumeStore(),
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	f.svc = NewService(f.inv, f.ctrl, f.icons, f.memory, Config{Debounce: delay, Log: log})
	t.Cleanup(f.svc.Close)
	return f
}

func stream(id StreamID, props Properties) Stream {
	return Stream{ID: id, Properties: props}
}

func rowIDs(snap Snapshot) []StreamID {
	ids := make([]StreamID, 0, len(snap.Rows))
	for _, r := range snap.Rows {
		ids = append(ids, r.ID)
	}
	return ids
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func hasRow(snap Snapshot, id StreamID) bool {
	for _, r := range snap.Rows {
		if r.ID == id {
			return true
		}
	}
	return false
}
