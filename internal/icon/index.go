package icon

import (
	"path/filepath"
	"strings"
	"sync"
)

// App is one installed application as reported by a Registry.
type App struct {
	ID   string // desktop entry id, e.g. "firefox.desktop"
	Exec string // executable, e.g. "/usr/bin/firefox"
	Icon string // icon name or absolute image path
}

// Registry lists installed applications.
type Registry interface {
	Applications() ([]App, error)
}

// Index maps normalized application identifiers and executable basenames to
// the icon their desktop entry declares. It is built once and only rebuilt on
// request; stale entries are tolerated.
type Index struct {
	registry Registry

	mu      sync.RWMutex
	entries map[string]Descriptor
}

// NewIndex returns an empty index backed by registry. Call Rebuild to fill it.
func NewIndex(registry Registry) *Index {
	return &Index{registry: registry, entries: make(map[string]Descriptor)}
}

// Rebuild replaces the index contents with a fresh registry listing.
// On error the previous contents are kept.
func (x *Index) Rebuild() error {
	apps, err := x.registry.Applications()
	if err != nil {
		return err
	}

	entries := make(map[string]Descriptor, len(apps)*2)
	for _, app := range apps {
		if app.Icon == "" {
			continue
		}
		d := handle(app.Icon)
		// Registries list entries in precedence order; the first one wins.
		if app.ID != "" {
			k := strings.TrimSuffix(strings.ToLower(app.ID), ".desktop")
			if _, seen := entries[k]; !seen {
				entries[k] = d
			}
		}
		if app.Exec != "" {
			k := strings.ToLower(basename(app.Exec))
			if _, seen := entries[k]; !seen {
				entries[k] = d
			}
		}
	}

	x.mu.Lock()
	x.entries = entries
	x.mu.Unlock()
	return nil
}

// Lookup returns the icon indexed under name.
func (x *Index) Lookup(name string) (Descriptor, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	d, ok := x.entries[name]
	return d, ok
}

// Len returns the number of indexed names.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

func handle(icon string) Descriptor {
	if filepath.IsAbs(icon) {
		return Descriptor{Kind: KindFile, Value: icon, Source: SourceDesktop}
	}
	return Descriptor{Kind: KindName, Value: icon, Source: SourceDesktop}
}
