package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOperation_String(t *testing.T) {
	tests := []struct {
		name string
		op   Operation
		want string
	}{
		{"create", OpCreate, "CREATE"},
		{"modify", OpModify, "MODIFY"},
		{"delete", OpDelete, "DELETE"},
		{"rename", OpRename, "RENAME"},
		{"unknown", Operation(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.op.String())
		})
	}
}

func TestOptions_WithDefaults(t *testing.T) {
	got := Options{}.WithDefaults()

	assert.Equal(t, 500*time.Millisecond, got.DebounceWindow)
	assert.Equal(t, 5*time.Second, got.MaxWait)

	custom := Options{DebounceWindow: time.Second, MaxWait: -1}.WithDefaults()
	assert.Equal(t, time.Second, custom.DebounceWindow)
	assert.Equal(t, 5*time.Second, custom.MaxWait)
}

func TestOptions_Ignored(t *testing.T) {
	opts := Options{IgnoreDirs: []string{"backup"}}

	tests := []struct {
		rel  string
		want bool
	}{
		{".", true},
		{"", true},
		{"_active", true},
		{"_active/skins/A/a.dds", true},
		{"skins/A/.git/HEAD", true},
		{"skins/A/__pycache__/x.pyc", true},
		{"misc/Backup/x.txt", true},
		{"skins/A/a.dds", false},
		{"misc/active/x.txt", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, opts.Ignored(tt.rel), tt.rel)
	}
}
