//go:build !linux

package tui

import "os"

func isTTY(*os.File) bool {
	return false
}
