package mixer

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"per-app-volume/internal/icon"
)

// StreamID is the index the audio server assigns to a sink-input. It is only
// unique while the stream lives and may be reused after a server restart.
type StreamID uint32

// ParseStreamID parses a decimal stream index.
func ParseStreamID(s string) (StreamID, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return StreamID(n), nil
}

func (id StreamID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Property keys read from a stream's metadata.
const (
	PropAppName   = "application.name"
	PropBinary    = "application.process.binary"
	PropHost      = "application.process.host"
	PropMediaName = "media.name"
)

// Properties is a stream's sparse metadata; any key may be absent.
type Properties map[string]string

// Stream is one active sink-input as listed by the audio server.
type Stream struct {
	ID         StreamID
	Properties Properties
}

// RenderState tells the UI which view to draw.
type RenderState string

const (
	StateUnavailable RenderState = "unavailable"
	StateEmpty       RenderState = "empty"
	StateStreams     RenderState = "streams"
)

// Message is the placeholder text for states without rows.
func (s RenderState) Message() string {
	switch s {
	case StateUnavailable:
		return "audio service unavailable"
	case StateEmpty:
		return "no active streams"
	default:
		return ""
	}
}

// Row is one visible stream in the render model.
type Row struct {
	ID       StreamID        `json:"id"`
	Title    string          `json:"title"`
	Icon     icon.Descriptor `json:"icon"`
	Fraction float64         `json:"fraction"`
	Key      string          `json:"key"`
}

// Snapshot is the render model handed to the UI after each refresh.
type Snapshot struct {
	ID          uuid.UUID   `json:"id"`
	State       RenderState `json:"state"`
	Message     string      `json:"message,omitempty"`
	Rows        []Row       `json:"rows"`
	GeneratedAt time.Time   `json:"generated_at"`
}

func newSnapshot(state RenderState, rows []Row) Snapshot {
	if rows == nil {
		rows = []Row{}
	}
	return Snapshot{
		ID:          uuid.New(),
		State:       state,
		Message:     state.Message(),
		Rows:        rows,
		GeneratedAt: time.Now().UTC(),
	}
}

// clone returns a copy whose Rows slice can be handed out safely.
func (s Snapshot) clone() Snapshot {
	s.Rows = append([]Row{}, s.Rows...)
	return s
}
