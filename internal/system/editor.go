// Package system ties skeld to the surrounding environment: it picks
// the user's preferred editor and opens files in it.
package system

import (
	"os"
	"os/exec"

	shellquote "github.com/kballard/go-shellquote"

	"github.com/skeld-sh/skeld/internal/errors"
)

// Editor returns the command line of the user's preferred editor, picked
// like git picks one: VISUAL on a capable terminal, then EDITOR, then
// vi. The returned string may carry arguments and runs through the
// shell.
func Editor() string {
	dumb := isDumbTerminal()
	if visual := os.Getenv("VISUAL"); visual != "" && !dumb {
		return visual
	}
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}
	if dumb {
		return "vi -e"
	}
	return "vi"
}

// isDumbTerminal reports whether the terminal cannot drive a
// full-screen editor. An unset TERM counts as dumb, an empty one does
// not.
func isDumbTerminal() bool {
	term, ok := os.LookupEnv("TERM")
	return !ok || term == "dumb"
}

// OpenInEditor opens path in the user's editor and waits for the editor
// to close. The editor's own exit code is ignored, a user quitting with
// an error is not skeld's failure.
func OpenInEditor(path string) error {
	cmdline := Editor() + " " + shellquote.Join(path)

	cmd := exec.Command("sh", "-c", cmdline)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return errors.Wrap(errors.ExitLaunchFailed, "failed to launch editor", err)
	}
	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return errors.Wrap(errors.ExitLaunchFailed, "failed to wait for editor", err)
		}
	}
	return nil
}
