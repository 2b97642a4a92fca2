package preflight

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CheckMarker requires the injector marker next to the game. Only
// existence is tested; a directory with the marker's name does not count.
func (c *Checker) CheckMarker(dir string) CheckResult {
	if FileExists(filepath.Join(dir, c.marker)) {
		return pass(NameMarker, c.marker+" found").required()
	}
	r := fail(NameMarker, fmt.Sprintf("%s not found in: %s", c.marker, dir)).required()
	r.Details = "the injector is not installed next to the game"
	return r
}

// CheckProxyLibrary looks for the proxy library. A missing library only
// warns; Details lists any accepted substitute that is present.
func (c *Checker) CheckProxyLibrary(dir string) CheckResult {
	if FileExists(filepath.Join(dir, c.library)) {
		return pass(NameProxyLibrary, c.library+" found")
	}

	msg := c.library + " not found"
	if len(c.alternates) > 0 {
		msg = fmt.Sprintf("%s not found (%s may be in use)", c.library, strings.Join(c.alternates, ", "))
	}
	r := warn(NameProxyLibrary, msg)

	var present []string
	for _, alt := range c.alternates {
		if FileExists(filepath.Join(dir, alt)) {
			present = append(present, alt)
		}
	}
	if len(present) > 0 {
		r.Details = "found " + strings.Join(present, ", ")
	}
	return r
}

// CheckExecutable warns when the game executable is absent.
func (c *Checker) CheckExecutable(dir string) CheckResult {
	exe := c.executable
	if !filepath.IsAbs(exe) {
		exe = filepath.Join(dir, exe)
	}
	if FileExists(exe) {
		return pass(NameExecutable, c.executable+" found")
	}
	r := warn(NameExecutable, c.executable+" not found")
	r.Details = exe
	return r
}

// FileExists reports whether path names something other than a directory.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
