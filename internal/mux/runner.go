package mux

import (
	"bytes"
	"errors"
	"os/exec"
	"strings"
	"sync"

	"addsubs/internal/services"
)

// DefaultOutputTailLines is how many trailing lines of tool output a
// result keeps.
const DefaultOutputTailLines = 20

// ProcessResult is what the core needs from a finished process.
type ProcessResult struct {
	ExitCode int
	Output   []string
}

// ProcessRunner starts cmd and waits for it. A non-zero exit is reported
// through ProcessResult, not as an error. Errors are reserved for failures
// to start (ErrJobLaunch) or to wait (ErrJobWait).
type ProcessRunner interface {
	Run(cmd Command) (ProcessResult, error)
}

// ExecRunner runs commands on the host.
type ExecRunner struct {
	TailLines int
}

func (r ExecRunner) Run(command Command) (ProcessResult, error) {
	tail := newTailBuffer(r.TailLines)
	cmd := exec.Command(command.Name, command.Args...) //nolint:gosec
	cmd.Dir = command.Dir
	cmd.Stdout = tail
	cmd.Stderr = tail

	if err := cmd.Start(); err != nil {
		return ProcessResult{ExitCode: -1}, services.Wrap(services.ErrJobLaunch, "dispatch", "start "+command.Name, "", err)
	}
	err := cmd.Wait()
	result := ProcessResult{Output: tail.Lines()}
	if err == nil {
		return result, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	result.ExitCode = -1
	return result, services.Wrap(services.ErrJobWait, "dispatch", "wait "+command.Name, "", err)
}

// tailBuffer keeps the last n complete lines written to it plus any
// unterminated remainder.
type tailBuffer struct {
	mu      sync.Mutex
	limit   int
	lines   []string
	partial bytes.Buffer
}

func newTailBuffer(limit int) *tailBuffer {
	if limit <= 0 {
		limit = DefaultOutputTailLines
	}
	return &tailBuffer{limit: limit}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.partial.Write(p)
	for {
		data := t.partial.Bytes()
		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			break
		}
		t.push(string(data[:idx]))
		t.partial.Next(idx + 1)
	}
	return len(p), nil
}

func (t *tailBuffer) push(line string) {
	line = strings.TrimRight(line, "\r")
	if strings.TrimSpace(line) == "" {
		return
	}
	if len(t.lines) == t.limit {
		copy(t.lines, t.lines[1:])
		t.lines = t.lines[:t.limit-1]
	}
	t.lines = append(t.lines, line)
}

// Lines flushes any remainder and returns a copy of the kept lines.
func (t *tailBuffer) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.partial.Len() > 0 {
		t.push(t.partial.String())
		t.partial.Reset()
	}
	if len(t.lines) == 0 {
		return nil
	}
	out := make([]string, len(t.lines))
	copy(out, t.lines)
	return out
}
