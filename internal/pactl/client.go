package pactl

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"per-app-volume/internal/mixer"
)

var percentPattern = regexp.MustCompile(`(\d+)%`)

// Client implements mixer.Inventory and mixer.Controller on top of a Runner.
type Client struct {
	run Runner
	log *slog.Logger
}

// NewClient returns a Client issuing commands through run.
func NewClient(run Runner, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{run: run, log: log}
}

// ListStreams runs "pactl -f json list sink-inputs". ok is false only when
// the command could not be run or failed.
func (c *Client) ListStreams(ctx context.Context) ([]mixer.Stream, bool) {
	out, err := c.run.Run(ctx, "-f", "json", "list", "sink-inputs")
	if err != nil {
		c.log.Warn("pactl: listing sink-inputs failed", slog.String("error", err.Error()))
		return nil, false
	}
	return ParseSinkInputs(out), true
}

// GetVolume returns the stream's volume as a fraction; 1.0 when it cannot be
// read.
func (c *Client) GetVolume(ctx context.Context, id mixer.StreamID) float64 {
	out, err := c.run.Run(ctx, "get-sink-input-volume", id.String())
	if err != nil {
		c.log.Debug("pactl: reading volume failed",
			slog.String("stream_id", id.String()),
			slog.String("error", err.Error()))
		return 1.0
	}
	return ParseVolume(string(out))
}

// SetVolume sets the stream's volume to fraction, rounded to a whole percent.
func (c *Client) SetVolume(ctx context.Context, id mixer.StreamID, fraction float64) {
	pct := Percent(fraction)
	if _, err := c.run.Run(ctx, "set-sink-input-volume", id.String(), strconv.Itoa(pct)+"%"); err != nil {
		c.log.Warn("pactl: setting volume failed",
			slog.String("stream_id", id.String()),
			slog.Int("percent", pct),
			slog.String("error", err.Error()))
	}
}

// KillStream asks the server to terminate the stream.
func (c *Client) KillStream(ctx context.Context, id mixer.StreamID) {
	if _, err := c.run.Run(ctx, "kill-sink-input", id.String()); err != nil {
		c.log.Warn("pactl: killing sink-input failed",
			slog.String("stream_id", id.String()),
			slog.String("error", err.Error()))
	}
}

// Info returns the "Key: value" lines printed by "pactl info".
func (c *Client) Info(ctx context.Context) (map[string]string, error) {
	out, err := c.run.Run(ctx, "info")
	if err != nil {
		return nil, err
	}
	info := make(map[string]string)
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		k, v, ok := strings.Cut(sc.Text(), ":")
		if !ok {
			continue
		}
		info[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return info, nil
}

type sinkInput struct {
	Index      *uint32                    `json:"index"`
	Properties map[string]json.RawMessage `json:"properties"`
}

// ParseSinkInputs decodes pactl's JSON sink-input list. Anything that is not
// a JSON array yields no streams; elements without a usable index are
// skipped.
func ParseSinkInputs(data []byte) []mixer.Stream {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return []mixer.Stream{}
	}

	streams := make([]mixer.Stream, 0, len(elems))
	for _, raw := range elems {
		var in sinkInput
		if err := json.Unmarshal(raw, &in); err != nil || in.Index == nil {
			continue
		}
		props := make(mixer.Properties, len(in.Properties))
		for k, v := range in.Properties {
			if s, ok := propertyString(v); ok {
				props[k] = s
			}
		}
		streams = append(streams, mixer.Stream{ID: mixer.StreamID(*in.Index), Properties: props})
	}
	return streams
}

// propertyString returns strings unquoted and any other non-null value in
// its JSON form.
func propertyString(v json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s, true
	}
	t := strings.TrimSpace(string(v))
	if t == "" || t == "null" {
		return "", false
	}
	return t, true
}

// ParseVolume averages every "<n>%" in the output of get-sink-input-volume
// and returns it as a fraction in [0, 1]; 1.0 when there is none.
func ParseVolume(out string) float64 {
	matches := percentPattern.FindAllStringSubmatch(out, -1)
	if len(matches) == 0 {
		return 1.0
	}
	var sum float64
	for _, m := range matches {
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 1.0
		}
		sum += n
	}
	return mixer.Clamp(sum / float64(len(matches)) / 100)
}

// Percent converts a fraction to a whole percent in [0, 100].
func Percent(fraction float64) int {
	return int(math.Round(mixer.Clamp(fraction) * 100))
}
