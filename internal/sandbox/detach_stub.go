//go:build !linux

package sandbox

import (
	"os"
	"syscall"

	"github.com/skeld-sh/skeld/internal/errors"
)

func openDetachLogfile() (*os.File, error) {
	return nil, errors.New(errors.ExitLogfileFailed,
		"detaching from the terminal is only supported on Linux")
}

func detachSysProcAttr() *syscall.SysProcAttr {
	return nil
}
