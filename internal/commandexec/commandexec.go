/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package commandexec bounds concurrent execution of configured shell
// commands behind a weighted semaphore, the way nabbar-golib/semaphore
// wraps golang.org/x/sync/semaphore for worker-count-limited work, adapted
// here to gate external process spawns with an acquire deadline instead of
// an unbounded wait.
package commandexec

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/nabbar/edgehttp/internal/config"
)

// ErrTimeout is returned by Run when the semaphore permit could not be
// acquired within the configured deadline.
type ErrTimeout struct{ CommandID string }

func (e *ErrTimeout) Error() string {
	return "timed out acquiring command execution permit for " + e.CommandID
}

// Response is the JSON body returned for a successful or failed command
// invocation (spawn/wait failures are stringified into Output, not
// returned as a Go error, per the handler's infallible-at-the-wire
// contract).
type Response struct {
	Now               time.Time         `json:"now"`
	CommandDurationMs int64             `json:"command_duration_ms"`
	CommandInfo       config.CommandInfo `json:"command_info"`
	CommandOutput     string            `json:"command_output"`
}

// Executor runs configured commands with bounded concurrency.
type Executor struct {
	sem             *semaphore.Weighted
	acquireTimeout  time.Duration
	commands        map[string]config.CommandInfo
	orderedCommands []config.CommandInfo
}

// New builds an Executor allowing up to maxConcurrent commands to run at
// once, each acquisition bounded by acquireTimeout.
func New(maxConcurrent int64, acquireTimeout time.Duration, commands []config.CommandInfo) *Executor {
	byID := make(map[string]config.CommandInfo, len(commands))
	for _, c := range commands {
		byID[c.ID] = c
	}
	return &Executor{
		sem:             semaphore.NewWeighted(maxConcurrent),
		acquireTimeout:  acquireTimeout,
		commands:        byID,
		orderedCommands: commands,
	}
}

// Commands returns the configured command list in declaration order, for
// the `{ctx}/commands` listing endpoint.
func (e *Executor) Commands() []config.CommandInfo {
	return e.orderedCommands
}

// Lookup returns the configured command by id.
func (e *Executor) Lookup(id string) (config.CommandInfo, bool) {
	c, ok := e.commands[id]
	return c, ok
}

// Run acquires a permit (bounded by the executor's acquire timeout),
// spawns the command, and waits for it to exit, capturing combined
// stdout/stderr.
func (e *Executor) Run(ctx context.Context, cmdInfo config.CommandInfo) (Response, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, e.acquireTimeout)
	defer cancel()

	if err := e.sem.Acquire(acquireCtx, 1); err != nil {
		return Response{}, &ErrTimeout{CommandID: cmdInfo.ID}
	}
	defer e.sem.Release(1)

	start := time.Now()

	cmd := exec.CommandContext(ctx, cmdInfo.Command, cmdInfo.Args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	elapsed := time.Since(start)

	// A non-zero exit status is still a completed run: *exec.ExitError is
	// reported here but carries no spawn/wait failure, so the captured
	// output is returned as-is. Only a genuine spawn/wait error (binary not
	// found, context canceled, ...) replaces the output with its message.
	output := stderr.String() + stdout.String()
	var exitErr *exec.ExitError
	if runErr != nil && !errors.As(runErr, &exitErr) {
		output = runErr.Error()
		if output == "" {
			output = "command failed"
		}
	}

	return Response{
		Now:               time.Now(),
		CommandDurationMs: elapsed.Milliseconds(),
		CommandInfo:       cmdInfo,
		CommandOutput:     output,
	}, nil
}
