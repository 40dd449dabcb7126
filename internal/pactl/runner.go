// Package pactl talks to the PulseAudio/PipeWire server through the pactl
// command-line utility.
package pactl

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single pactl call.
const DefaultTimeout = 2 * time.Second

// Runner runs one pactl command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

// Subscriber opens the server's event stream. Cancelling ctx ends the
// subscription; the returned reader then reports EOF or an error.
type Subscriber interface {
	Subscribe(ctx context.Context) (io.ReadCloser, error)
}

// ExecRunner runs the pactl binary as a subprocess. Standard error is
// discarded.
type ExecRunner struct {
	Bin     string
	Timeout time.Duration
}

// NewExecRunner returns an ExecRunner for bin ("pactl" when empty).
func NewExecRunner(bin string, timeout time.Duration) *ExecRunner {
	if bin == "" {
		bin = "pactl"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ExecRunner{Bin: bin, Timeout: timeout}
}

func (r *ExecRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.Bin, args...)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", r.Bin, strings.Join(args, " "), err)
	}
	return bytes.TrimSpace(out), nil
}

// Subscribe starts "pactl subscribe". The process is killed when ctx is
// cancelled or the reader is closed.
func (r *ExecRunner) Subscribe(ctx context.Context) (io.ReadCloser, error) {
	cmd := exec.CommandContext(ctx, r.Bin, "subscribe")
	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%s subscribe: %w", r.Bin, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%s subscribe: %w", r.Bin, err)
	}
	return &subscription{ReadCloser: out, cmd: cmd}, nil
}

// LookPath reports where the configured binary resolves on PATH.
func (r *ExecRunner) LookPath() (string, error) {
	return exec.LookPath(r.Bin)
}

type subscription struct {
	io.ReadCloser
	cmd *exec.Cmd
}

// Close kills the subprocess and reaps it. Callers must not be reading.
func (s *subscription) Close() error {
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	// Wait closes the pipe; an error here is the kill we just sent.
	_ = s.cmd.Wait()
	return nil
}
