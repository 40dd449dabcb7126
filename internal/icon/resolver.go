package icon

import (
	"os"
	"path/filepath"
	"strings"
)

// Stream properties consulted for candidate names, in priority order.
const (
	propAppIcon    = "application.icon_name"
	propMediaIcon  = "media.icon_name"
	propWindowIcon = "window.icon_name"
	propAppName    = "application.name"
	propBinary     = "application.process.binary"
)

// Resolver turns stream properties into a Descriptor.
type Resolver struct {
	assetDir string
	aliases  Aliases
	index    *Index
}

// NewResolver returns a Resolver that looks for "<name>.png" under assetDir
// before consulting index.
func NewResolver(assetDir string, aliases Aliases, index *Index) *Resolver {
	if aliases == nil {
		aliases = NewAliases(DefaultAliases)
	}
	return &Resolver{assetDir: assetDir, aliases: aliases, index: index}
}

// Candidates returns the normalized, alias-mapped names to try for props.
func (r *Resolver) Candidates(props map[string]string) []string {
	raw := []string{
		props[propAppIcon],
		props[propMediaIcon],
		props[propWindowIcon],
		props[propAppName],
		basename(props[propBinary]),
	}

	var out []string
	for _, c := range raw {
		if c == "" {
			continue
		}
		out = append(out, r.aliases.Canonical(Normalize(c)))
	}
	return out
}

// Resolve picks the icon for a stream; the first tier with a match wins.
func (r *Resolver) Resolve(props map[string]string) Descriptor {
	cands := r.Candidates(props)

	for _, name := range cands {
		if path, ok := r.asset(name); ok {
			return Descriptor{Kind: KindFile, Value: path, Source: SourceAsset}
		}
	}
	if r.index != nil {
		for _, name := range cands {
			if d, ok := r.index.Lookup(name); ok {
				return d
			}
		}
	}
	if len(cands) > 0 {
		return Descriptor{Kind: KindName, Value: cands[0], Source: SourceTheme}
	}
	return Fallback()
}

// Reload rebuilds the application index.
func (r *Resolver) Reload() error {
	if r.index == nil {
		return nil
	}
	return r.index.Rebuild()
}

func (r *Resolver) asset(name string) (string, bool) {
	if r.assetDir == "" || name == "." || name == ".." || strings.ContainsRune(name, '/') {
		return "", false
	}
	path := filepath.Join(r.assetDir, name+".png")
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}
