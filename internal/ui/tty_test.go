package ui

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTTY_NoDescriptor(t *testing.T) {
	assert.False(t, IsTTY(&bytes.Buffer{}))
	assert.False(t, IsTTY(nil))
}

func TestIsTTY_RegularFile(t *testing.T) {
	// Given: a plain file
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	// Then: it is neither a terminal nor interactive
	assert.False(t, IsTTY(f))
	assert.False(t, IsInteractive(f, f))
	assert.False(t, IsInteractive(&bytes.Buffer{}, f))
}

func TestUseColor(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want bool
	}{
		{"forced on for a buffer", map[string]string{"EFL_COLOR": "always"}, true},
		{"forced on beats NO_COLOR", map[string]string{"EFL_COLOR": "Always", "NO_COLOR": "1"}, true},
		{"forced off", map[string]string{"EFL_COLOR": "never"}, false},
		{"NO_COLOR", map[string]string{"NO_COLOR": ""}, false},
		{"CI", map[string]string{"CI": "true"}, false},
		{"not a terminal", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("EFL_COLOR", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			assert.Equal(t, tt.want, UseColor(&bytes.Buffer{}))
		})
	}
}
