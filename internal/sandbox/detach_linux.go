//go:build linux

package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/skeld-sh/skeld/internal/dirs"
	"github.com/skeld-sh/skeld/internal/errors"
)

// openDetachLogfile prepares the logfile a detaching command writes to:
// it ensures the skeld state directory exists, prunes logfiles untouched
// for a day and claims the first free name with an exclusive create.
func openDetachLogfile() (*os.File, error) {
	logdir, err := dirs.SkeldState()
	if err != nil {
		return nil, errors.LogfileFailed("failed to determine the skeld state directory", err)
	}
	if err := os.MkdirAll(logdir, 0o755); err != nil {
		return nil, errors.LogfileFailed(
			fmt.Sprintf("failed to create the skeld state directory `%s`", logdir), err)
	}

	removeOldLogfiles(logdir)

	logfile, err := createLogfile(logdir)
	if err != nil {
		return nil, errors.LogfileFailed("failed to create a logfile", err)
	}
	return logfile, nil
}

// detachSysProcAttr puts the child into a fresh session, dropping the
// controlling terminal.
func detachSysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}

// removeOldLogfiles deletes logfiles whose last access lies more than a
// day back. Best effort: unreadable entries are kept, directories are
// never removed.
func removeOldLogfiles(logdir string) {
	entries, err := os.ReadDir(logdir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".log" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		stat, ok := info.Sys().(*syscall.Stat_t)
		if !ok {
			continue
		}
		atime := time.Unix(stat.Atim.Sec, stat.Atim.Nsec)
		if time.Since(atime) > 24*time.Hour {
			os.Remove(filepath.Join(logdir, entry.Name()))
		}
	}
}

// createLogfile claims the first free logfile name. Exclusive creation
// makes concurrent detachments pick distinct files without locking. The
// name space is bounded to one name per minute of a day.
func createLogfile(logdir string) (*os.File, error) {
	for i := 1; i < 1440; i++ {
		path := filepath.Join(logdir, fmt.Sprintf("skeld.%d.log", i))
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o666)
		if err == nil {
			return file, nil
		}
		if !os.IsExist(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("all logfile names are occupied")
}
