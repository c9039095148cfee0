// Package agent implements the trisync backend for a local agent CLI run
// in single-turn mode.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/zoobzio/capitan"

	"github.com/notebrook/trisync"
)

// Backend implements trisync.Completer by spawning an agent CLI per call.
// Each call is a fresh process; nothing is cached between syncs.
type Backend struct {
	binary string
	args   []string
	dir    string
}

// Config holds configuration for the agent backend.
type Config struct {
	// Binary is the agent executable, defaults to "claude". Resolved at
	// construction; a missing binary is a construction error.
	Binary string

	// Args are passed before the built-in flags. The backend always
	// appends single-turn and JSON-output flags so one sync maps to one
	// turn.
	Args []string

	// Dir is the working directory for the process. Optional.
	Dir string
}

// New creates an agent backend, resolving the binary up front.
func New(config Config) (*Backend, error) {
	if config.Binary == "" {
		config.Binary = "claude"
	}
	path, err := exec.LookPath(config.Binary)
	if err != nil {
		return nil, fmt.Errorf("agent: binary %q not found: %w", config.Binary, err)
	}

	return &Backend{
		binary: path,
		args:   config.Args,
		dir:    config.Dir,
	}, nil
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return "agent" }

// Complete runs one single-turn session, feeding the prompt on stdin.
//
// Long-running CLI sessions sometimes report a non-zero exit after having
// already streamed a usable final result. That trailing error is
// reclassified as success here; it is a quirk of this one backend, not a
// pattern other adapters follow. Canceling the context stops the wait, but
// the spawned process may keep running to completion on its own.
func (b *Backend) Complete(ctx context.Context, prompt string) (string, error) {
	startTime := time.Now()

	capitan.Emit(ctx, trisync.ProviderCallStarted,
		trisync.ProviderKey.Field(b.Name()),
		trisync.ModelKey.Field(b.binary),
	)

	args := append(append([]string{}, b.args...),
		"-p", "--max-turns", "1", "--output-format", "json")

	cmd := exec.CommandContext(ctx, b.binary, args...)
	cmd.Dir = b.dir
	cmd.Stdin = strings.NewReader(prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	result, ok := finalResult(stdout.Bytes())

	if runErr != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		}

		// Trailing error after a streamed result: the work finished.
		if ok && result != "" {
			capitan.Emit(ctx, trisync.ProviderCallCompleted,
				trisync.ProviderKey.Field(b.Name()),
				trisync.ExitCodeKey.Field(exitCode),
				trisync.DurationMsKey.Field(int(time.Since(startTime).Milliseconds())),
			)
			return result, nil
		}

		capitan.Emit(ctx, trisync.ProviderCallFailed,
			trisync.ProviderKey.Field(b.Name()),
			trisync.ExitCodeKey.Field(exitCode),
			trisync.ErrorKey.Field(runErr.Error()),
		)

		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = runErr.Error()
		}
		return "", fmt.Errorf("agent session failed: %s", msg)
	}

	capitan.Emit(ctx, trisync.ProviderCallCompleted,
		trisync.ProviderKey.Field(b.Name()),
		trisync.ExitCodeKey.Field(0),
		trisync.DurationMsKey.Field(int(time.Since(startTime).Milliseconds())),
	)

	if ok {
		return result, nil
	}

	// Not JSON output; the raw stream is the result.
	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return "", fmt.Errorf("agent session produced no output")
	}
	return out, nil
}

// sessionPayload is the final JSON object the agent CLI prints in JSON
// output mode.
type sessionPayload struct {
	Result  string `json:"result"`
	IsError bool   `json:"is_error"`
}

// finalResult extracts the final result payload from the CLI's stdout.
// In JSON output mode the last line is the payload; earlier lines may be
// streamed progress.
func finalResult(out []byte) (string, bool) {
	lines := bytes.Split(bytes.TrimSpace(out), []byte("\n"))
	for i := len(lines) - 1; i >= 0; i-- {
		line := bytes.TrimSpace(lines[i])
		if len(line) == 0 || line[0] != '{' {
			continue
		}
		var payload sessionPayload
		if err := json.Unmarshal(line, &payload); err != nil {
			continue
		}
		if payload.IsError {
			return "", false
		}
		if payload.Result != "" {
			return payload.Result, true
		}
	}
	return "", false
}
