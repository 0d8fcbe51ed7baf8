package sandbox

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/skeld-sh/skeld/internal/errors"
	"github.com/skeld-sh/skeld/internal/logging"
)

// Command is a program invocation prepared by the configuration layer.
// An empty WorkingDir inherits the caller's directory. With Detach set
// the program is started in its own session with output redirected to a
// logfile, and Run returns without waiting for it.
type Command struct {
	Program    string
	Args       []string
	WorkingDir string
	Detach     bool
}

// Run executes the command outside any sandbox and returns the exit code
// to forward to the caller's own exit.
func (c *Command) Run() (int, error) {
	return c.run(func(err error) error {
		return errors.LaunchFailed(c.Program, err)
	})
}

// run spawns the command. wrapSpawnErr turns a spawn failure into the
// user-facing error, the sandboxed path uses it to attach the Bubblewrap
// install note.
func (c *Command) run(wrapSpawnErr func(error) error) (int, error) {
	execCmd := exec.Command(c.Program, c.Args...)
	if c.WorkingDir != "" {
		execCmd.Dir = c.WorkingDir
	}

	if c.Detach {
		return c.runDetached(execCmd, wrapSpawnErr)
	}

	execCmd.Stdin = os.Stdin
	execCmd.Stdout = os.Stdout
	execCmd.Stderr = os.Stderr

	if err := execCmd.Start(); err != nil {
		return 0, wrapSpawnErr(err)
	}

	if err := execCmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return 0, errors.LaunchFailed(c.Program, err)
		}
	}

	return forwardExitStatus(execCmd.ProcessState), nil
}

// runDetached starts the command in a fresh session with its output
// redirected to a newly allocated logfile and returns without waiting.
// The launcher exits right after, which reparents the child away from
// the invoking shell.
func (c *Command) runDetached(execCmd *exec.Cmd, wrapSpawnErr func(error) error) (int, error) {
	logfile, err := openDetachLogfile()
	if err != nil {
		return 0, err
	}
	defer logfile.Close()

	// announced on the still-attached stdout, everything after goes to
	// the logfile
	fmt.Printf("NOTE: Detaching from terminal;\n      further output will be redirected to `%s`\n",
		logfile.Name())

	// the child keeps the logfile descriptor as its stdout and stderr;
	// stdin stays nil and reads from /dev/null
	execCmd.Stdout = logfile
	execCmd.Stderr = logfile
	execCmd.SysProcAttr = detachSysProcAttr()

	if err := execCmd.Start(); err != nil {
		return 0, wrapSpawnErr(err)
	}

	logging.Debug("detached command started",
		"program", c.Program, "pid", execCmd.Process.Pid, "logfile", logfile.Name())

	return 0, nil
}

// forwardExitStatus converts a child's termination status into the exit
// code to forward: an explicit exit code passes through truncated to a
// byte, termination by signal becomes a plain failure. The signal number
// is never forwarded.
func forwardExitStatus(state *os.ProcessState) int {
	if code := state.ExitCode(); code >= 0 {
		return code & 0xff
	}
	if state.Success() {
		return 0
	}
	return 1
}
