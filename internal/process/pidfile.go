package process

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// PIDFileName is written to the data directory after each launch.
const PIDFileName = "game.pid"

var ErrPIDFileNotFound = errors.New("PID file not found")

// PIDFile remembers the PID of the last launched game so status can tell
// whether it is still running.
type PIDFile struct {
	path string
}

func NewPIDFile(path string) *PIDFile { return &PIDFile{path: path} }

func (p *PIDFile) Path() string { return p.path }

// Write replaces the file atomically so a concurrent Read never sees a
// partial number.
func (p *PIDFile) Write(pid int) error {
	if pid <= 0 {
		return fmt.Errorf("invalid PID %d", pid)
	}
	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create PID directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(p.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	_, werr := tmp.WriteString(strconv.Itoa(pid) + "\n")
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	if err := os.Rename(tmp.Name(), p.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	return nil
}

// Read returns the recorded PID, or ErrPIDFileNotFound.
func (p *PIDFile) Read() (int, error) {
	data, err := os.ReadFile(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, ErrPIDFileNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read PID file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID in file: %w", err)
	}
	return pid, nil
}

// Remove deletes the file; a missing file is not an error.
func (p *PIDFile) Remove() error {
	if err := os.Remove(p.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// Running returns the recorded PID when that process is still alive. A
// stale or unreadable file is removed.
func (p *PIDFile) Running() (int, bool) {
	pid, err := p.Read()
	if errors.Is(err, ErrPIDFileNotFound) {
		return 0, false
	}
	if err != nil || !Alive(pid) {
		_ = p.Remove()
		return 0, false
	}
	return pid, true
}
