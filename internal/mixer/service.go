package mixer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"per-app-volume/internal/debounce"
	"per-app-volume/internal/icon"
	"per-app-volume/internal/platform/metrics"
)

// DefaultDebounce is the quiescence window for slider motion.
const DefaultDebounce = 80 * time.Millisecond

// ErrUnknownStream is returned for gestures on a stream that is not a row of
// the latest render.
var ErrUnknownStream = errors.New("stream not in current render")

// Inventory lists the live streams. ok is false when the audio utility could
// not be run; unparseable output is reported as an empty list with ok true.
type Inventory interface {
	ListStreams(ctx context.Context) (streams []Stream, ok bool)
}

// Controller issues per-stream control calls. Calls are best effort:
// GetVolume falls back to full volume, the others swallow failures.
type Controller interface {
	GetVolume(ctx context.Context, id StreamID) float64
	SetVolume(ctx context.Context, id StreamID, fraction float64)
	KillStream(ctx context.Context, id StreamID)
}

// IconResolver picks a row's icon and can rebuild its application index.
type IconResolver interface {
	Resolve(props map[string]string) icon.Descriptor
	Reload() error
}

// Config carries the Service's optional collaborators.
type Config struct {
	// Debounce is the slider quiescence window; DefaultDebounce when zero.
	Debounce time.Duration
	Log      *slog.Logger
	// Metrics may be nil to disable metric recording (e.g. in tests).
	Metrics *metrics.Metrics
}

// binding ties a visible row to its identity key and volume debouncer.
type binding struct {
	key     string
	applier *debounce.Trailing[float64]
}

// Service reconciles the stream inventory, the volume memory and the hidden
// set into the render model, and applies the UI's gestures.
type Service struct {
	inventory Inventory
	control   Controller
	icons     IconResolver
	memory    VolumeStore
	hidden    *HiddenSet
	log       *slog.Logger
	metrics   *metrics.Metrics
	delay     time.Duration

	// ctx bounds control calls made from debounce timers.
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	rows   map[StreamID]*binding
	latest *Snapshot

	refreshCh chan struct{}
}

// NewService returns a Service with an empty hidden set. memory may be shared
// with other readers but only the Service writes to it.
func NewService(inv Inventory, ctrl Controller, icons IconResolver, memory VolumeStore, cfg Config) *Service {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		inventory: inv,
		control:   ctrl,
		icons:     icons,
		memory:    memory,
		hidden:    NewHiddenSet(),
		log:       cfg.Log,
		metrics:   cfg.Metrics,
		delay:     cfg.Debounce,
		ctx:       ctx,
		cancel:    cancel,
		rows:      make(map[StreamID]*binding),
		refreshCh: make(chan struct{}, 1),
	}
}

// Refresh lists the streams and publishes a new render. Hidden streams are
// skipped. A stream whose key is remembered gets that volume pushed back; an
// unseen key is seeded from the stream's live volume.
func (s *Service) Refresh(ctx context.Context) Snapshot {
	streams, ok := s.inventory.ListStreams(ctx)
	if !ok {
		s.log.Warn("mixer: stream inventory unavailable")
		return s.publish(newSnapshot(StateUnavailable, nil), metrics.RefreshUnavailable)
	}

	present := make(map[StreamID]struct{}, len(streams))
	for _, st := range streams {
		present[st.ID] = struct{}{}
	}
	if n := s.hidden.Retain(present); n > 0 {
		s.log.Debug("mixer: forgot hidden streams that disappeared", slog.Int("count", n))
	}

	if len(streams) == 0 {
		return s.publish(newSnapshot(StateEmpty, nil), metrics.RefreshEmpty)
	}

	rows := make([]Row, 0, len(streams))
	for _, st := range streams {
		if s.hidden.Has(st.ID) {
			continue
		}
		rows = append(rows, s.reconcile(ctx, st))
	}

	return s.publish(newSnapshot(StateStreams, rows), metrics.RefreshStreams)
}

func (s *Service) reconcile(ctx context.Context, st Stream) Row {
	key := IdentityKey(st.Properties)

	fraction, remembered := s.memory.Get(key)
	if remembered {
		s.control.SetVolume(ctx, st.ID, fraction)
		if s.metrics != nil {
			s.metrics.IncPushBacks()
		}
	} else {
		fraction = s.control.GetVolume(ctx, st.ID)
		s.memory.Set(key, fraction)
		s.log.Debug("mixer: remembered new application",
			slog.String("key", key),
			slog.Float64("fraction", fraction))
	}

	return Row{
		ID:       st.ID,
		Title:    Title(st.ID, st.Properties),
		Icon:     s.icons.Resolve(st.Properties),
		Fraction: fraction,
		Key:      key,
	}
}

// publish installs snap as the latest render and rebinds rows. Bindings of
// streams that are no longer rendered are dropped and their pending volume
// changes discarded.
func (s *Service) publish(snap Snapshot, result string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A Remove may have landed while this refresh was listing streams.
	visible := snap.Rows[:0]
	for _, r := range snap.Rows {
		if !s.hidden.Has(r.ID) {
			visible = append(visible, r)
		}
	}
	snap.Rows = visible

	next := make(map[StreamID]*binding, len(snap.Rows))
	for _, r := range snap.Rows {
		if b, ok := s.rows[r.ID]; ok && b.key == r.Key {
			next[r.ID] = b
			continue
		}
		next[r.ID] = s.newBinding(r.ID, r.Key)
	}
	for id, b := range s.rows {
		if next[id] != b {
			b.applier.Stop()
		}
	}
	s.rows = next
	s.latest = &snap

	if s.metrics != nil {
		s.metrics.IncRefresh(result, len(snap.Rows))
		s.metrics.SetRememberedKeys(s.memory.Len())
	}
	s.log.Debug("mixer: render published",
		slog.String("state", string(snap.State)),
		slog.Int("rows", len(snap.Rows)))

	return snap.clone()
}

func (s *Service) newBinding(id StreamID, key string) *binding {
	b := &binding{key: key}
	b.applier = debounce.NewTrailing(s.delay, func(f float64) {
		s.apply(id, key, f)
	})
	return b
}

// apply sends a settled volume to the stream and remembers it for its key.
func (s *Service) apply(id StreamID, key string, fraction float64) {
	s.control.SetVolume(s.ctx, id, fraction)
	s.memory.Set(key, fraction)

	s.mu.Lock()
	if s.latest != nil {
		for i := range s.latest.Rows {
			if s.latest.Rows[i].ID == id {
				s.latest.Rows[i].Fraction = fraction
			}
		}
	}
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.IncVolumeApplies()
	}
	s.log.Debug("mixer: volume applied",
		slog.String("stream_id", id.String()),
		slog.String("key", key),
		slog.Float64("fraction", fraction))
}

// SetVolume records a volume intent for a visible stream. Intents are
// coalesced per stream; final marks the end of an interaction (drag release)
// and applies the value immediately.
func (s *Service) SetVolume(ctx context.Context, id StreamID, fraction float64, final bool) error {
	s.mu.Lock()
	b, ok := s.rows[id]
	s.mu.Unlock()
	if !ok {
		return ErrUnknownStream
	}

	b.applier.Push(Clamp(fraction))
	if final {
		b.applier.Flush()
	}
	return nil
}

// Remove hides a visible stream until ShowAll and asks the server to kill it.
func (s *Service) Remove(ctx context.Context, id StreamID) error {
	s.mu.Lock()
	b, ok := s.rows[id]
	if ok {
		s.hidden.Add(id)
		b.applier.Stop()
		delete(s.rows, id)
		if s.latest != nil {
			rows := make([]Row, 0, len(s.latest.Rows))
			for _, r := range s.latest.Rows {
				if r.ID != id {
					rows = append(rows, r)
				}
			}
			s.latest.Rows = rows
		}
	}
	s.mu.Unlock()
	if !ok {
		return ErrUnknownStream
	}

	s.control.KillStream(ctx, id)
	if s.metrics != nil {
		s.metrics.IncStreamsKilled()
	}
	s.log.Info("mixer: stream removed", slog.String("stream_id", id.String()))
	return nil
}

// ShowAll unhides every stream and refreshes.
func (s *Service) ShowAll(ctx context.Context) Snapshot {
	s.hidden.Clear()
	return s.Refresh(ctx)
}

// ManualRefresh rebuilds the application icon index, then refreshes.
func (s *Service) ManualRefresh(ctx context.Context) Snapshot {
	if err := s.icons.Reload(); err != nil {
		s.log.Warn("mixer: icon index rebuild failed", slog.String("error", err.Error()))
	}
	return s.Refresh(ctx)
}

// RequestRefresh schedules a refresh on the Run loop. Requests made while one
// is already pending are merged into it.
func (s *Service) RequestRefresh() {
	select {
	case s.refreshCh <- struct{}{}:
	default:
	}
}

// Run performs requested refreshes until ctx is done, then closes the Service.
func (s *Service) Run(ctx context.Context) {
	defer s.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.refreshCh:
			s.Refresh(ctx)
		}
	}
}

// Close discards pending volume changes and cancels in-flight control calls
// started by debounce timers.
func (s *Service) Close() {
	s.mu.Lock()
	for _, b := range s.rows {
		b.applier.Stop()
	}
	s.mu.Unlock()
	s.cancel()
}

// Snapshot returns the latest render; ok is false before the first refresh.
func (s *Service) Snapshot() (snap Snapshot, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		return Snapshot{}, false
	}
	return s.latest.clone(), true
}

// Memory returns the remembered volumes.
func (s *Service) Memory() []MemoryEntry {
	return s.memory.Entries()
}

// HiddenCount returns the number of hidden streams.
func (s *Service) HiddenCount() int {
	return s.hidden.Len()
}
