// Package ui holds terminal detection, the color theme and the mod picker.
package ui

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// IsTTY reports whether v is backed by a terminal, including Cygwin and
// MSYS consoles on Windows. Values without a file descriptor never are.
func IsTTY(v any) bool {
	f, ok := v.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// IsInteractive reports whether the picker can run: both ends must be
// terminals.
func IsInteractive(in, out any) bool {
	return IsTTY(in) && IsTTY(out)
}

var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"}

// UseColor decides whether to style output written to w. EFL_COLOR=always
// or never wins; otherwise NO_COLOR, a dumb terminal or a CI environment
// turn color off, and anything that is not a terminal gets none.
func UseColor(w any) bool {
	switch strings.ToLower(os.Getenv("EFL_COLOR")) {
	case "always":
		return true
	case "never":
		return false
	}
	if _, set := os.LookupEnv("NO_COLOR"); set || os.Getenv("TERM") == "dumb" {
		return false
	}
	for _, v := range ciVars {
		if _, set := os.LookupEnv(v); set {
			return false
		}
	}
	return IsTTY(w)
}
