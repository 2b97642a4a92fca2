package logging

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLog = `{"time":"2026-01-02T03:04:05.000Z","level":"INFO","msg":"game started","pid":42}
{"time":"2026-01-02T03:04:06.000Z","level":"WARN","msg":"proxy library missing","library":"dxgi.dll"}
not json at all
{"time":"2026-01-02T03:04:07.000Z","level":"ERROR","msg":"deploy failed","error":"locked"}
`

func writeLog(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestViewer_Tail_LastN(t *testing.T) {
	// Given: a log with four lines
	path := filepath.Join(t.TempDir(), "efl.log")
	writeLog(t, path, sampleLog)
	v := NewViewer(ViewerConfig{NoColor: true}, &bytes.Buffer{})

	// When: tailing two
	entries, err := v.Tail([]string{path}, 2)

	// Then: the last two lines come back, raw line included
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.False(t, entries[0].IsValid)
	assert.Equal(t, "deploy failed", entries[1].Msg)
}

func TestViewer_Tail_LevelFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "efl.log")
	writeLog(t, path, sampleLog)
	v := NewViewer(ViewerConfig{Level: "warn", NoColor: true}, &bytes.Buffer{})

	entries, err := v.Tail([]string{path}, 0)

	// unparsable lines are kept
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "WARN", entries[0].Level)
	assert.Equal(t, "ERROR", entries[2].Level)
}

func TestViewer_Tail_PatternFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "efl.log")
	writeLog(t, path, sampleLog)
	v := NewViewer(ViewerConfig{Pattern: regexp.MustCompile(`dxgi`), NoColor: true}, &bytes.Buffer{})

	entries, err := v.Tail([]string{path}, 0)

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "proxy library missing", entries[0].Msg)
}

func TestViewer_Tail_RotatedFilesOldestFirst(t *testing.T) {
	// Given: a rotated file and the current file
	path := filepath.Join(t.TempDir(), "efl.log")
	writeLog(t, path+".1", `{"time":"2026-01-01T00:00:00Z","level":"INFO","msg":"old"}`+"\n")
	writeLog(t, path, `{"time":"2026-01-02T00:00:00Z","level":"INFO","msg":"new"}`+"\n")

	// When: collecting paths and tailing
	paths := RotatedPaths(path, 3)
	v := NewViewer(ViewerConfig{NoColor: true}, &bytes.Buffer{})
	entries, err := v.Tail(paths, 10)

	// Then: older entries come first
	require.NoError(t, err)
	assert.Equal(t, []string{path + ".1", path}, paths)
	require.Len(t, entries, 2)
	assert.Equal(t, "old", entries[0].Msg)
	assert.Equal(t, "new", entries[1].Msg)
}

func TestViewer_FormatEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "efl.log")
	writeLog(t, path, sampleLog)
	buf := &bytes.Buffer{}
	v := NewViewer(ViewerConfig{NoColor: true}, buf)

	entries, err := v.Tail([]string{path}, 0)
	require.NoError(t, err)
	v.Print(entries)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "INFO  game started pid=42")
	assert.Equal(t, "not json at all", lines[2])
}

func TestViewer_Follow(t *testing.T) {
	// Given: an existing log being followed
	path := filepath.Join(t.TempDir(), "efl.log")
	writeLog(t, path, sampleLog)
	v := NewViewer(ViewerConfig{NoColor: true}, &bytes.Buffer{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := make(chan LogEntry, 10)
	done := make(chan error, 1)
	go func() { done <- v.Follow(ctx, path, ch) }()
	time.Sleep(150 * time.Millisecond)

	// When: a new line is appended
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(`{"time":"2026-01-02T03:04:08Z","level":"INFO","msg":"appended"}` + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	// Then: only the new entry is delivered
	select {
	case e := <-ch:
		assert.Equal(t, "appended", e.Msg)
	case <-time.After(2 * time.Second):
		t.Fatal("no entry delivered")
	}
	cancel()
	assert.NoError(t, <-done)
}
