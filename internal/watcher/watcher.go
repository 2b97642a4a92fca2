package watcher

import (
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/endfield-mods/efl/internal/mods"
)

// Operation is the kind of change seen for a path.
type Operation int

const (
	OpCreate Operation = iota
	OpModify
	OpDelete
	// OpRename means the path was renamed away; the new name arrives as
	// its own OpCreate.
	OpRename
)

var opNames = [...]string{"CREATE", "MODIFY", "DELETE", "RENAME"}

func (op Operation) String() string {
	if op < 0 || int(op) >= len(opNames) {
		return "UNKNOWN"
	}
	return opNames[op]
}

// FileEvent is a change below the mods root. Path is slash separated and
// relative to the root.
type FileEvent struct {
	Path      string
	Operation Operation
	IsDir     bool
	Timestamp time.Time
}

// Options tunes batching. Zero values take the defaults.
type Options struct {
	// DebounceWindow is the quiet period that ends a batch (500ms).
	DebounceWindow time.Duration
	// MaxWait bounds how long a steady stream of changes can hold a
	// batch back (5s).
	MaxWait time.Duration
	// IgnoreDirs are extra folder names skipped at any depth.
	IgnoreDirs []string
}

func DefaultOptions() Options {
	return Options{}.WithDefaults()
}

// WithDefaults fills zero or negative fields.
func (o Options) WithDefaults() Options {
	if o.DebounceWindow <= 0 {
		o.DebounceWindow = 500 * time.Millisecond
	}
	if o.MaxWait <= 0 {
		o.MaxWait = 5 * time.Second
	}
	return o
}

// Folders whose contents never trigger a rebuild. The generated pack is
// first: rebuilding it must not retrigger the watcher.
var alwaysIgnored = []string{mods.ActiveDirName, ".git", "__pycache__"}

// Ignored reports whether rel, relative to the mods root, is the root
// itself or lies inside an ignored folder. Names match case-insensitively.
func (o Options) Ignored(rel string) bool {
	rel = filepath.ToSlash(rel)
	if rel == "" || rel == "." {
		return true
	}
	skip := func(part string) bool {
		match := func(name string) bool { return strings.EqualFold(part, name) }
		return slices.ContainsFunc(alwaysIgnored, match) || slices.ContainsFunc(o.IgnoreDirs, match)
	}
	return slices.ContainsFunc(strings.Split(rel, "/"), skip)
}
