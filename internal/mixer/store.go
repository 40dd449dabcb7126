package mixer

import (
	"math"
	"sort"
	"sync"
)

// VolumeStore is the volume memory: identity key -> fraction in [0,1].
// Entries live for the process lifetime and are never evicted.
type VolumeStore interface {
	Get(key string) (float64, bool)
	Set(key string, fraction float64)
	Has(key string) bool
	Entries() []MemoryEntry
	Len() int
}

// MemoryEntry is one remembered volume.
type MemoryEntry struct {
	Key      string  `json:"key"`
	Fraction float64 `json:"fraction"`
}

// InMemoryVolumeStore is a concurrency-safe in-memory VolumeStore.
type InMemoryVolumeStore struct {
	mu      sync.RWMutex
	volumes map[string]float64
}

// NewInMemoryVolumeStore returns a new empty store.
func NewInMemoryVolumeStore() *InMemoryVolumeStore {
	return &InMemoryVolumeStore{volumes: make(map[string]float64)}
}

// Get implements VolumeStore.Get.
func (s *InMemoryVolumeStore) Get(key string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.volumes[key]
	return f, ok
}

// Set implements VolumeStore.Set. The fraction is clamped to [0,1].
func (s *InMemoryVolumeStore) Set(key string, fraction float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volumes[key] = Clamp(fraction)
}

// Has implements VolumeStore.Has.
func (s *InMemoryVolumeStore) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.volumes[key]
	return ok
}

// Entries implements VolumeStore.Entries, sorted by key.
func (s *InMemoryVolumeStore) Entries() []MemoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]MemoryEntry, 0, len(s.volumes))
	for k, f := range s.volumes {
		out = append(out, MemoryEntry{Key: k, Fraction: f})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Len implements VolumeStore.Len.
func (s *InMemoryVolumeStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.volumes)
}

// Clamp limits f to [0,1].
func Clamp(f float64) float64 {
	if f < 0 || math.IsNaN(f) {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
