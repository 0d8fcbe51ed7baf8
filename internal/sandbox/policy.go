package sandbox

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/skeld-sh/skeld/internal/errors"
	"github.com/skeld-sh/skeld/internal/logging"
)

// EnvWhitelist selects the environment a sandboxed command inherits:
// the full parent environment, or a fixed list of variable names.
type EnvWhitelist struct {
	// All forwards the parent environment unchanged.
	All bool
	// Names lists the variables forwarded when All is false, in
	// declaration order. Names that are unset are skipped.
	Names []string
}

// Params describes one sandbox: the filesystem whitelist tree and the
// environment whitelist. The configuration layer assembles and validates
// both, they are not mutated here.
type Params struct {
	FSTree       *FSTree[struct{}]
	EnvWhitelist EnvWhitelist
}

// Run executes cmd inside the sandbox. Foreground runs install the
// terminal-injection filter before Bubblewrap is spawned and block until
// it exits. Detached runs skip the filter, they give up the controlling
// terminal instead.
func (p *Params) Run(cmd *Command) (int, error) {
	if cmd.Program == "" {
		return 0, errors.ValidationError("refusing to run an empty command in the sandbox")
	}

	bwrapArgs, err := p.BwrapArgs(cmd)
	if err != nil {
		return 0, err
	}

	args := make([]string, 0, len(bwrapArgs)+2+len(cmd.Args))
	args = append(args, bwrapArgs...)
	args = append(args, "--", cmd.Program)
	args = append(args, cmd.Args...)

	logging.Debug("assembled sandbox invocation", "bwrap_args", len(args))

	if !cmd.Detach {
		// the sandboxed process shares the controlling terminal, keep
		// it from typing into the shell's input buffer
		if err := installTerminalGuard(); err != nil {
			return 0, err
		}
	}

	wrapped := &Command{Program: "bwrap", Args: args, Detach: cmd.Detach}
	return wrapped.run(bwrapSpawnError)
}

func bwrapSpawnError(err error) error {
	if errors.Is(err, exec.ErrNotFound) {
		return errors.SandboxUnavailable(err)
	}
	return errors.LaunchFailed("bwrap", err)
}

// BwrapArgs compiles the Bubblewrap argument list for cmd, without the
// trailing `-- program args...`. Argument order is significant: /dev is
// mounted before the tree entries so a whitelist below /dev can override
// it, and the flattened tree itself keeps ancestors before descendants.
func (p *Params) BwrapArgs(cmd *Command) ([]string, error) {
	var args []string

	if !p.EnvWhitelist.All {
		args = append(args, "--clearenv")
		args = append(args, envWhitelistArgs(p.EnvWhitelist.Names)...)
	}

	if !filepath.IsAbs(cmd.WorkingDir) {
		return nil, errors.ValidationError(fmt.Sprintf(
			"sandbox working directory must be absolute, got `%s`", cmd.WorkingDir))
	}
	args = append(args, "--chdir", cmd.WorkingDir)

	args = append(args, "--proc", "/proc")
	args = append(args, "--dev", "/dev")

	fsArgs, err := fsTreeArgs(p.FSTree)
	if err != nil {
		return nil, err
	}
	args = append(args, fsArgs...)

	args = append(args, "--unshare-ipc", "--unshare-pid")

	// a foreground sandbox must not outlive the launcher it shares the
	// terminal with
	if !cmd.Detach {
		args = append(args, "--die-with-parent")
	}

	return args, nil
}

func envWhitelistArgs(names []string) []string {
	var args []string
	for _, name := range names {
		value, ok := os.LookupEnv(name)
		if !ok {
			continue
		}
		args = append(args, "--setenv", name, value)
	}
	return args
}

func fsTreeArgs(tree *FSTree[struct{}]) ([]string, error) {
	var args []string
	for _, entry := range tree.Flatten() {
		switch entry.Type {
		case AllowDev:
			args = append(args, "--dev-bind-try", entry.Path, entry.Path)
		case ReadWrite:
			args = append(args, "--bind-try", entry.Path, entry.Path)
		case ReadOnly:
			args = append(args, "--ro-bind-try", entry.Path, entry.Path)
		case Symlink:
			// resolved against the host at synthesis time, a dangling
			// declaration aborts the launch
			target, err := os.Readlink(entry.Path)
			if err != nil {
				return nil, errors.Wrap(errors.ExitGeneralError,
					fmt.Sprintf("failed to read symlink `%s`", entry.Path), err)
			}
			args = append(args, "--symlink", target, entry.Path)
		case Tmpfs:
			args = append(args, "--tmpfs", entry.Path)
		}
	}
	return args, nil
}
