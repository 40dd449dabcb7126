// Package icon picks an icon for an audio stream from its metadata.
//
// Lookup is layered: bundled PNG assets override everything, icons declared
// by installed desktop entries come next, and a bare guessed name is handed
// to the renderer's theme lookup as a last resort.
package icon

// Kind tells the renderer how to interpret Descriptor.Value.
type Kind string

const (
	// KindFile means Value is a path to an image on disk.
	KindFile Kind = "file"
	// KindName means Value is an icon-theme name.
	KindName Kind = "name"
)

// Source records which resolution tier produced a Descriptor.
type Source string

const (
	SourceAsset    Source = "asset"
	SourceDesktop  Source = "desktop"
	SourceTheme    Source = "theme"
	SourceFallback Source = "fallback"
)

// FallbackName is used when a stream carries no usable naming metadata.
const FallbackName = "audio-x-generic-symbolic"

// Descriptor is either a custom image reference or a named icon reference.
type Descriptor struct {
	Kind   Kind   `json:"kind"`
	Value  string `json:"value"`
	Source Source `json:"source"`
}

// Fallback returns the generic descriptor.
func Fallback() Descriptor {
	return Descriptor{Kind: KindName, Value: FallbackName, Source: SourceFallback}
}
