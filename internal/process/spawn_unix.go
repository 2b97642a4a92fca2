//go:build !windows

package process

import "syscall"

func detachAttrs() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setsid: true,
	}
}

func startFallback(_ Spec, err error) (int, error) {
	return 0, err
}
