//go:build windows

package process

import (
	"errors"
	"fmt"
	"strings"
	"syscall"

	"golang.org/x/sys/windows"
)

// errElevationRequired is ERROR_ELEVATION_REQUIRED, returned by CreateProcess
// when the executable's manifest asks for administrator rights.
const errElevationRequired = syscall.Errno(740)

func detachAttrs() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		CreationFlags: windows.DETACHED_PROCESS | windows.CREATE_NEW_PROCESS_GROUP,
	}
}

// startFallback retries through ShellExecute with the runas verb, which shows
// the UAC prompt. The PID is not reported by ShellExecute.
func startFallback(spec Spec, err error) (int, error) {
	if !errors.Is(err, errElevationRequired) {
		return 0, err
	}

	verb, _ := windows.UTF16PtrFromString("runas")
	file, perr := windows.UTF16PtrFromString(spec.Path)
	if perr != nil {
		return 0, perr
	}
	var args, dir *uint16
	if len(spec.Args) > 0 {
		quoted := make([]string, len(spec.Args))
		for i, a := range spec.Args {
			quoted[i] = syscall.EscapeArg(a)
		}
		args, _ = windows.UTF16PtrFromString(strings.Join(quoted, " "))
	}
	if spec.Dir != "" {
		dir, _ = windows.UTF16PtrFromString(spec.Dir)
	}

	if serr := windows.ShellExecute(0, verb, file, args, dir, windows.SW_SHOWNORMAL); serr != nil {
		return 0, fmt.Errorf("elevated start failed: %w", serr)
	}
	return 0, nil
}
