package preflight

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckDiskSpace_TempDir(t *testing.T) {
	// Given: the temp directory, which exists on every platform
	result := New().CheckDiskSpace(t.TempDir())

	// Then: the check reports a size and is never required
	assert.Equal(t, NameDiskSpace, result.Name)
	assert.False(t, result.Required)
	assert.Contains(t, result.Message, "free")
	assert.NotEqual(t, StatusFail, result.Status)
}

func TestCheckDiskSpace_MissingDir(t *testing.T) {
	result := New().CheckDiskSpace(filepath.Join(t.TempDir(), "missing"))

	assert.Equal(t, StatusWarn, result.Status)
	assert.Contains(t, result.Message, "failed to check disk space")
}

func TestCheckDiskSpace_ThresholdAboveFreeSpace_Warns(t *testing.T) {
	// Given: a threshold no real volume can satisfy
	checker := New(WithMinFreeSpace(1 << 62))

	// When: checking the temp directory
	result := checker.CheckDiskSpace(t.TempDir())

	// Then: the check warns and names the threshold
	assert.Equal(t, StatusWarn, result.Status)
	assert.Contains(t, result.Message, "minimum: 4.0 EiB")
}

func TestWithMinFreeSpace_ZeroKeepsDefault(t *testing.T) {
	assert.Equal(t, uint64(MinDiskSpaceBytes), New(WithMinFreeSpace(0)).minFree)
}
