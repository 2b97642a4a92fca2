// Package output prints the human-facing lines of efl commands.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/endfield-mods/efl/internal/ui"
)

const barWidth = 30

// Writer prefixes each line with an icon and styles it when color is on.
// Write errors are dropped; there is nowhere better to report them.
type Writer struct {
	out      io.Writer
	useColor bool
	styles   ui.Styles
	bar      *progress.Model
}

// New colors output only when out is a terminal and NO_COLOR is unset.
func New(out io.Writer) *Writer {
	return NewWithColor(out, ui.UseColor(out))
}

func NewWithColor(out io.Writer, useColor bool) *Writer {
	return &Writer{out: out, useColor: useColor, styles: ui.GetStyles(!useColor)}
}

func (w *Writer) Out() io.Writer     { return w.out }
func (w *Writer) UseColor() bool     { return w.useColor }
func (w *Writer) Styles() ui.Styles  { return w.styles }
func (w *Writer) Newline()           { w.println("") }
func (w *Writer) Header(msg string)  { w.println(w.styles.Header.Render(msg)) }
func (w *Writer) Dim(msg string)     { w.println("   " + w.styles.Label.Render(msg)) }
func (w *Writer) Success(msg string) { w.Status("✅", w.styles.Success.Render(msg)) }
func (w *Writer) Warning(msg string) { w.Status("⚠️ ", w.styles.Warning.Render(msg)) }
func (w *Writer) Error(msg string)   { w.Status("❌", w.styles.Error.Render(msg)) }

func (w *Writer) Successf(format string, args ...any) { w.Success(fmt.Sprintf(format, args...)) }
func (w *Writer) Warningf(format string, args ...any) { w.Warning(fmt.Sprintf(format, args...)) }
func (w *Writer) Errorf(format string, args ...any)   { w.Error(fmt.Sprintf(format, args...)) }

// Status prints msg after icon. An empty icon indents msg to line up with
// iconed lines.
func (w *Writer) Status(icon, msg string) {
	if icon == "" {
		icon = "  "
	}
	w.println(icon + " " + msg)
}

func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Render styles text, or returns it unchanged without color.
func (w *Writer) Render(s lipgloss.Style, text string) string {
	if w.useColor {
		return s.Render(text)
	}
	return text
}

// Progress redraws a single progress line in place and ends it once
// current reaches total. Nothing is printed for a non-positive total.
func (w *Writer) Progress(current, total int, msg string) {
	if total <= 0 {
		return
	}
	frac := min(max(float64(current)/float64(total), 0), 1)

	var bar string
	if w.useColor {
		if w.bar == nil {
			m := progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth), progress.WithoutPercentage())
			w.bar = &m
		}
		bar = w.bar.ViewAs(frac)
	} else {
		bar = "[" + textBar(frac, barWidth) + "]"
	}

	_, _ = fmt.Fprintf(w.out, "\r%s %3.0f%% %s", bar, frac*100, msg)
	if current >= total {
		w.println("")
	}
}

func textBar(frac float64, width int) string {
	filled := int(frac * float64(width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func (w *Writer) println(line string) {
	_, _ = fmt.Fprintln(w.out, line)
}
