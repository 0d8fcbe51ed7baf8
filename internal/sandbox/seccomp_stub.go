//go:build !linux

package sandbox

import "github.com/skeld-sh/skeld/internal/errors"

func installTerminalGuard() error {
	return errors.New(errors.ExitSeccompFailed,
		"the terminal-injection filter is only supported on Linux")
}
