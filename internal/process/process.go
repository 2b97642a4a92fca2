// Package process starts the game as a detached process and tracks its PID.
package process

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// ErrNoPath is returned when a Spec has no executable path.
var ErrNoPath = errors.New("no executable path")

// Spec describes a process to start.
type Spec struct {
	Path string
	Args []string
	Dir  string
}

// Starter starts a process and returns its PID without waiting for it.
// A PID of 0 means the process was started but its PID is unknown.
type Starter interface {
	Start(ctx context.Context, spec Spec) (int, error)
}

// StarterFunc adapts a function to the Starter interface.
type StarterFunc func(ctx context.Context, spec Spec) (int, error)

// Start calls f.
func (f StarterFunc) Start(ctx context.Context, spec Spec) (int, error) {
	return f(ctx, spec)
}

// Detached starts processes fully detached from the launcher: no console
// inheritance, no std streams, and no wait. The child outlives the launcher.
type Detached struct{}

// Start launches spec and releases the process handle.
func (Detached) Start(ctx context.Context, spec Spec) (int, error) {
	if spec.Path == "" {
		return 0, ErrNoPath
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	// exec.CommandContext would kill the child on cancel.
	cmd := exec.Command(spec.Path, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = detachAttrs()

	if err := cmd.Start(); err != nil {
		pid, ferr := startFallback(spec, err)
		if ferr != nil {
			return 0, fmt.Errorf("failed to start %s: %w", spec.Path, ferr)
		}
		return pid, nil
	}

	pid := cmd.Process.Pid
	_ = cmd.Process.Release()
	return pid, nil
}
