package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eflerrors "github.com/endfield-mods/efl/internal/errors"
	"github.com/endfield-mods/efl/internal/preflight"
)

type doctorJSON struct {
	Dir    string `json:"dir"`
	Checks []struct {
		Name   string `json:"name"`
		Status string `json:"status"`
	} `json:"checks"`
	Errors []string `json:"errors"`
}

func runDoctorJSON(t *testing.T, dir string) (doctorJSON, error) {
	t.Helper()
	out, err := runEfl(t, dir, "", "doctor", "--json")
	var got doctorJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got), out)
	return got, err
}

func statusOf(d doctorJSON, name string) string {
	for _, c := range d.Checks {
		if c.Name == name {
			return c.Status
		}
	}
	return ""
}

func TestDoctor_MarkerMissing_Fails(t *testing.T) {
	// Given: an empty game folder
	dir := t.TempDir()

	// When: running doctor
	got, err := runDoctorJSON(t, dir)

	// Then: the marker check fails and the command exits 1
	require.Error(t, err)
	assert.Equal(t, 1, ExitCode(err))
	assert.Equal(t, "FAIL", statusOf(got, preflight.NameMarker))
	assert.Equal(t, "WARN", statusOf(got, preflight.NameProxyLibrary))
	assert.NotEmpty(t, got.Errors)
}

func TestDoctor_InjectorPresent(t *testing.T) {
	// Given: a game folder with the injector files
	dir := gameFolder(t)

	// When: running doctor
	got, _ := runDoctorJSON(t, dir)

	// Then: injector and config checks pass
	assert.Equal(t, dir, got.Dir)
	assert.Equal(t, "PASS", statusOf(got, preflight.NameMarker))
	assert.Equal(t, "PASS", statusOf(got, preflight.NameProxyLibrary))
	assert.Equal(t, "PASS", statusOf(got, preflight.NameExecutable))
	assert.Equal(t, "PASS", statusOf(got, "config"))
}

func TestDoctor_InvalidMinFree(t *testing.T) {
	// Given: a size humanize cannot parse
	dir := gameFolder(t)

	// When: running doctor with it
	_, err := runEfl(t, dir, "", "doctor", "--min-free", "lots")

	// Then: the flag is rejected as invalid input
	require.Error(t, err)
	assert.Equal(t, eflerrors.ErrCodeInvalidInput, eflerrors.GetCode(err))
}
