package logging

import (
	"os"
	"path/filepath"
)

const (
	DataDirName = ".efl"
	LogFileName = "efl.log"
)

// LogDir is <dir>/.efl/logs. An empty dir means the user's home, or the
// temp directory when home cannot be found.
func LogDir(dir string) string {
	if dir == "" {
		var err error
		if dir, err = os.UserHomeDir(); err != nil {
			dir = os.TempDir()
		}
	}
	return filepath.Join(dir, DataDirName, "logs")
}

// LogPath is the active log file for dir.
func LogPath(dir string) string {
	return filepath.Join(LogDir(dir), LogFileName)
}
