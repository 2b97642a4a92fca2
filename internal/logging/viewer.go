package logging

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// LogEntry is a parsed JSON log line.
type LogEntry struct {
	Time    time.Time
	Level   string
	Msg     string
	Attrs   map[string]any
	Raw     string
	IsValid bool
}

// ViewerConfig configures the log viewer.
type ViewerConfig struct {
	Level   string         // minimum level shown
	Pattern *regexp.Regexp // lines must match when set
	NoColor bool
}

// Viewer reads, filters and formats efl log files.
type Viewer struct {
	config ViewerConfig
	out    io.Writer
	levels map[string]lipgloss.Style
}

// NewViewer creates a log viewer writing to out.
func NewViewer(cfg ViewerConfig, out io.Writer) *Viewer {
	v := &Viewer{config: cfg, out: out, levels: map[string]lipgloss.Style{}}
	if !cfg.NoColor {
		v.levels = map[string]lipgloss.Style{
			"debug": lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			"info":  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
			"warn":  lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
			"error": lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		}
	}
	return v
}

// RotatedPaths returns the log file followed by its rotations, oldest
// first, keeping only files that exist.
func RotatedPaths(path string, maxFiles int) []string {
	var out []string
	for i := maxFiles; i >= 1; i-- {
		p := fmt.Sprintf("%s.%d", path, i)
		if _, err := os.Stat(p); err == nil {
			out = append(out, p)
		}
	}
	if _, err := os.Stat(path); err == nil {
		out = append(out, path)
	}
	return out
}

// Tail returns the last n matching entries across paths, read in order.
func (v *Viewer) Tail(paths []string, n int) ([]LogEntry, error) {
	var entries []LogEntry
	for _, p := range paths {
		lines, err := readLines(p)
		if err != nil {
			return nil, err
		}
		for _, line := range lines {
			if e := v.parseLine(line); v.matchesFilter(e) {
				entries = append(entries, e)
			}
		}
	}
	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}

func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var lines []string
	scanner := bufio.NewScanner(file)
	const maxCapacity = 1024 * 1024
	scanner.Buffer(make([]byte, 64*1024), maxCapacity)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}
	return lines, nil
}

// Follow sends entries appended to path until ctx is done. When the file
// is rotated away it is reopened from the start.
func (v *Viewer) Follow(ctx context.Context, path string, entries chan<- LogEntry) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	offset, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("failed to seek to end: %w", err)
	}

	reader := bufio.NewReader(file)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	// pending holds a line whose newline has not been written yet
	var pending string
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if info, err := os.Stat(path); err == nil && info.Size() < offset {
			_ = file.Close()
			if file, err = os.Open(path); err != nil {
				return fmt.Errorf("failed to reopen log file: %w", err)
			}
			offset, pending = 0, ""
			reader.Reset(file)
		}

		for {
			chunk, err := reader.ReadString('\n')
			offset += int64(len(chunk))
			if err != nil {
				pending += chunk
				break
			}
			line := strings.TrimRight(pending+chunk, "\r\n")
			pending = ""
			if line == "" {
				continue
			}
			if e := v.parseLine(line); v.matchesFilter(e) {
				select {
				case entries <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	}
}

// FormatEntry formats an entry as "time LEVEL msg k=v...".
func (v *Viewer) FormatEntry(e LogEntry) string {
	if !e.IsValid {
		return e.Raw
	}

	keys := make([]string, 0, len(e.Attrs))
	for k := range e.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(e.Time.Local().Format("15:04:05.000"))
	b.WriteByte(' ')
	b.WriteString(v.formatLevel(e.Level))
	b.WriteByte(' ')
	b.WriteString(e.Msg)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Attrs[k])
	}
	return b.String()
}

// Print writes entries to the output.
func (v *Viewer) Print(entries []LogEntry) {
	for _, e := range entries {
		_, _ = fmt.Fprintln(v.out, v.FormatEntry(e))
	}
}

func (v *Viewer) parseLine(line string) LogEntry {
	entry := LogEntry{Raw: line}

	var data map[string]any
	if err := json.Unmarshal([]byte(line), &data); err != nil {
		return entry
	}
	entry.IsValid = true

	if t, ok := data["time"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			entry.Time = parsed
		}
	}
	entry.Level, _ = data["level"].(string)
	entry.Msg, _ = data["msg"].(string)

	entry.Attrs = make(map[string]any, len(data))
	for k, val := range data {
		if k != "time" && k != "level" && k != "msg" {
			entry.Attrs[k] = val
		}
	}
	return entry
}

func (v *Viewer) matchesFilter(e LogEntry) bool {
	if v.config.Level != "" && e.IsValid {
		lv, _ := ParseLevel(e.Level)
		floor, _ := ParseLevel(v.config.Level)
		if lv < floor {
			return false
		}
	}
	if v.config.Pattern != nil && !v.config.Pattern.MatchString(e.Raw) {
		return false
	}
	return true
}

func (v *Viewer) formatLevel(level string) string {
	s := strings.ToUpper(level)
	if len(s) > 5 {
		s = s[:5]
	}
	s = fmt.Sprintf("%-5s", s)

	key := strings.ToLower(level)
	if key == "warning" {
		key = "warn"
	}
	if style, ok := v.levels[key]; ok {
		return style.Render(s)
	}
	return s
}
