package output

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestWriter_IconLines(t *testing.T) {
	tests := []struct {
		name  string
		write func(w *Writer)
		want  string
	}{
		{"status", func(w *Writer) { w.Status("🔍", "Scanning mods...") }, "🔍 Scanning mods...\n"},
		{"success", func(w *Writer) { w.Success("Pack built") }, "✅ Pack built\n"},
		{"warning", func(w *Writer) { w.Warningf("%s not found", "dxgi.dll") }, "⚠️  dxgi.dll not found\n"},
		{"error", func(w *Writer) { w.Errorf("%s not found", "d3dx.ini") }, "❌ d3dx.ini not found\n"},
		{"statusf", func(w *Writer) { w.Statusf("📂", "Found %d mods", 3) }, "📂 Found 3 mods\n"},
		{"dim", func(w *Writer) { w.Dim("skins/Hero") }, "   skins/Hero\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: a writer without color
			buf := &bytes.Buffer{}
			w := NewWithColor(buf, false)

			// When: writing one line
			tt.write(w)

			// Then: the line is exactly icon and text
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestWriter_Progress_Midway(t *testing.T) {
	// Given: a plain writer
	buf := &bytes.Buffer{}

	// When: half of the files are copied
	NewWithColor(buf, false).Progress(50, 100, "skins/Hero/hero.ini")

	// Then: a half bar is redrawn in place without ending the line
	want := "\r[" + strings.Repeat("█", barWidth/2) + strings.Repeat("░", barWidth/2) + "]  50% skins/Hero/hero.ini"
	assert.Equal(t, want, buf.String())
}

func TestWriter_Progress_ZeroTotal_PrintsNothing(t *testing.T) {
	buf := &bytes.Buffer{}

	New(buf).Progress(0, 0, "Processing")

	assert.Empty(t, buf.String())
}

func TestWriter_Progress_Complete_EndsLine(t *testing.T) {
	// Given: a plain writer
	buf := &bytes.Buffer{}
	w := NewWithColor(buf, false)

	// When: reporting the last step
	w.Progress(4, 4, "configs/Tweak/mod.ini")

	// Then: the bar is full and the line is terminated
	output := buf.String()
	assert.Contains(t, output, "["+strings.Repeat("█", barWidth)+"]")
	assert.Contains(t, output, "100%")
	assert.True(t, strings.HasSuffix(output, "\n"))
}

func TestWriter_Progress_Color_UsesBubblesBar(t *testing.T) {
	// Given: a writer with color forced on
	buf := &bytes.Buffer{}
	w := NewWithColor(buf, true)

	// When: drawing two frames
	w.Progress(1, 3, "a")
	w.Progress(2, 3, "b")

	// Then: the bar model is reused and no line is ended yet
	assert.NotNil(t, w.bar)
	assert.Contains(t, buf.String(), " 67% b")
	assert.False(t, strings.HasSuffix(buf.String(), "\n"))
}

func TestTextBar(t *testing.T) {
	tests := []struct {
		frac     float64
		wantFull int
	}{
		{0, 0},
		{0.5, 5},
		{1, 10},
	}
	for _, tt := range tests {
		bar := textBar(tt.frac, 10)
		assert.Equal(t, tt.wantFull, strings.Count(bar, "█"))
		assert.Equal(t, 10, utf8.RuneCountInString(bar))
	}
}

func TestWriter_Status_EmptyIconIndents(t *testing.T) {
	buf := &bytes.Buffer{}
	New(buf).Status("", "detail")

	assert.Equal(t, "   detail\n", buf.String())
}

func TestWriter_Render_PlainWithoutColor(t *testing.T) {
	w := NewWithColor(&bytes.Buffer{}, false)

	assert.Equal(t, "text", w.Render(w.Styles().Error, "text"))
}
