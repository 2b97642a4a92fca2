package preflight

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// MinDiskSpaceBytes is the default free-space warning threshold.
const MinDiskSpaceBytes = 500 * humanize.MiByte

// CheckDiskSpace warns when the volume holding dir runs low. Deploy copies
// mod files into the game folder, but low space never blocks a launch.
func (c *Checker) CheckDiskSpace(dir string) CheckResult {
	free, err := freeBytes(dir)
	if err != nil {
		return warn(NameDiskSpace, fmt.Sprintf("failed to check disk space: %v", err))
	}

	msg := fmt.Sprintf("%s free (minimum: %s)", humanize.IBytes(free), humanize.IBytes(c.minFree))
	if free < c.minFree {
		return warn(NameDiskSpace, msg)
	}
	return pass(NameDiskSpace, msg)
}
