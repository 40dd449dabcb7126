package output

import (
	"fmt"
	"io"
	"math"

	"per-app-volume/internal/mixer"
)

type Formatter struct {
	w io.Writer
}

func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

func (f *Formatter) Error(msg string) {
	fmt.Fprintf(f.w, "❌ %s\n", msg)
}

func (f *Formatter) Info(msg string) {
	fmt.Fprintf(f.w, "ℹ️  %s\n", msg)
}

func (f *Formatter) Success(msg string) {
	fmt.Fprintf(f.w, "✅ %s\n", msg)
}

func (f *Formatter) Warning(msg string) {
	fmt.Fprintf(f.w, "⚠️  %s\n", msg)
}

// Snapshot prints a render: the placeholder message for the unavailable and
// empty states, otherwise one line per row.
func (f *Formatter) Snapshot(snap mixer.Snapshot) {
	switch snap.State {
	case mixer.StateUnavailable:
		f.Error(capitalize(snap.Message))
		return
	case mixer.StateEmpty:
		f.Info(capitalize(snap.Message))
		return
	}

	fmt.Fprintf(f.w, "🔊 Streams:\n\n")
	for _, r := range snap.Rows {
		f.StreamRow(r)
	}
}

func (f *Formatter) StreamRow(r mixer.Row) {
	fmt.Fprintf(f.w, "  #%-5s %-28s %s %3d%%  %s:%s\n",
		r.ID, r.Title, volumeBar(r.Fraction), percent(r.Fraction), r.Icon.Source, r.Icon.Value)
}

func (f *Formatter) MemoryHeader(n int) {
	fmt.Fprintf(f.w, "\n💾 Remembered volumes (%d):\n\n", n)
}

func (f *Formatter) MemoryEntry(e mixer.MemoryEntry) {
	fmt.Fprintf(f.w, "  %-40s %3d%%\n", e.Key, percent(e.Fraction))
}

func (f *Formatter) SetupCheck(name string, ok bool, detail string) {
	if ok {
		fmt.Fprintf(f.w, "  ✅ %s: %s\n", name, detail)
	} else {
		fmt.Fprintf(f.w, "  ❌ %s: %s\n", name, detail)
	}
}

const barWidth = 10

func volumeBar(fraction float64) string {
	filled := int(math.Round(mixer.Clamp(fraction) * barWidth))
	bar := make([]rune, barWidth)
	for i := range bar {
		if i < filled {
			bar[i] = '█'
		} else {
			bar[i] = '░'
		}
	}
	return string(bar)
}

func percent(fraction float64) int {
	return int(math.Round(mixer.Clamp(fraction) * 100))
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
