// Package runner compiles shell command lines into executor tasks and
// collects per-command results.
//
// A batch of commands is fanned out through a sharedexec pool with
// MapWithOptions, pairing each command with its input position so the
// consumed results stay in submission order regardless of completion order.
package runner

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rshetty/sharedexec"
	"github.com/rshetty/sharedexec/internal/util"
)

// DefaultShell is used when a Spec does not name one.
const DefaultShell = "/bin/sh"

// Spec describes how a batch of commands is executed.
type Spec struct {
	// Shell is the interpreter invoked as `shell -c <command>`.
	// Empty means DefaultShell.
	Shell string

	// Dir is the working directory for every command. Empty means the
	// current directory.
	Dir string

	// Env holds extra KEY=VALUE pairs appended to the inherited environment.
	Env []string

	// FailFast stops result consumption at the first failed command.
	// Commands already queued still run; their results are discarded.
	FailFast bool

	// Timeout bounds how long Run may wait for results, measured from the
	// moment the batch is submitted. Zero means wait indefinitely. The
	// deadline abandons waiting but never kills a running command.
	Timeout time.Duration

	// ChunkSize is the result prefetch size passed through to the executor.
	ChunkSize int
}

// CommandResult is the outcome of one command.
type CommandResult struct {
	Index    int           `json:"index" yaml:"index"`
	Command  string        `json:"command" yaml:"command"`
	Stdout   string        `json:"stdout,omitempty" yaml:"stdout,omitempty"`
	Stderr   string        `json:"stderr,omitempty" yaml:"stderr,omitempty"`
	ExitCode int           `json:"exit_code" yaml:"exit_code"`
	Duration time.Duration `json:"duration" yaml:"duration"`

	// Err records launch failures (shell not found, bad working directory).
	// A command that ran and exited nonzero leaves Err empty.
	Err string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether the command either failed to launch or exited nonzero.
func (r CommandResult) Failed() bool {
	return r.ExitCode != 0 || r.Err != ""
}

// failure converts the recorded outcome back into an error for fail-fast mode.
func (r CommandResult) failure() error {
	if r.Err != "" {
		return errors.New(r.Err)
	}
	return fmt.Errorf("exit status %d", r.ExitCode)
}

// Run executes commands through the pool and returns their results in input
// order. With FailFast set, the first failure ends consumption early and is
// returned alongside the results gathered so far; otherwise failures are
// embedded in the results and the error is reserved for pool-level problems
// (closed pool, consumption timeout, cancelled context).
func Run(ctx context.Context, pool *sharedexec.Executor, spec Spec, commands []string) ([]CommandResult, error) {
	if len(commands) == 0 {
		return nil, util.ErrNoCommands
	}
	if spec.Shell == "" {
		spec.Shell = DefaultShell
	}

	indices := make([]any, len(commands))
	lines := make([]any, len(commands))
	for i, cmd := range commands {
		indices[i] = i
		lines[i] = cmd
	}

	fn := func(ctx context.Context, args ...any) (any, error) {
		idx := args[0].(int)
		line := args[1].(string)

		res := runCommand(ctx, spec, idx, line)
		if spec.FailFast && res.Failed() {
			return nil, util.WrapCommandError(line, res.failure())
		}
		return res, nil
	}

	opts := sharedexec.MapOptions{Timeout: spec.Timeout, ChunkSize: spec.ChunkSize}
	iter, err := pool.MapWithOptions(ctx, opts, fn, indices, lines)
	if err != nil {
		return nil, err
	}

	results := make([]CommandResult, 0, len(commands))
	for iter.Next() {
		results = append(results, iter.Value().(CommandResult))
	}
	if err := iter.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// runCommand launches one command under the configured shell and captures
// its outcome. The context kills the process on cancellation.
func runCommand(ctx context.Context, spec Spec, index int, line string) CommandResult {
	res := CommandResult{
		Index:   index,
		Command: line,
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, spec.Shell, "-c", line)
	cmd.Dir = spec.Dir
	cmd.Env = append(os.Environ(), spec.Env...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res.Duration = time.Since(start)
	res.Stdout = strings.TrimRight(stdout.String(), "\n")
	res.Stderr = strings.TrimRight(stderr.String(), "\n")

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Ran but exited nonzero (or was signalled, which reports -1)
			res.ExitCode = exitErr.ExitCode()
		} else {
			res.ExitCode = -1
			res.Err = err.Error()
		}
	}

	return res
}

// ParseCommands reads one command per line, skipping blank lines and lines
// whose first non-space character is '#'.
func ParseCommands(r io.Reader) ([]string, error) {
	var commands []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		commands = append(commands, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, util.WrapErrorf(err, "reading commands")
	}

	return commands, nil
}
