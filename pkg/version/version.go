// Package version reports which efl build is running.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Release builds stamp these with
//
//	-ldflags "-X github.com/endfield-mods/efl/pkg/version.Version=v1.2.3 ..."
//
// Unstamped fields are filled from the module build info where possible.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// BuildInfo is the version --json document.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

func (b BuildInfo) String() string {
	return fmt.Sprintf("efl %s (commit: %s, built: %s, go: %s, %s/%s)",
		b.Version, b.Commit, b.Date, b.GoVersion, b.OS, b.Arch)
}

// GetInfo merges the ldflags values with what the Go toolchain embedded:
// the module version for `go install` builds and the VCS stamp.
func GetInfo() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && info.Commit == "unknown":
			info.Commit = shortRevision(s.Value)
		case s.Key == "vcs.time" && info.Date == "unknown":
			info.Date = s.Value
		}
	}
	return info
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}

// String is GetInfo().String().
func String() string { return GetInfo().String() }

// Short returns the version alone.
func Short() string { return GetInfo().Version }
