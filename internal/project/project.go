// Package project turns start screen selections into running processes:
// it opens projects inside their sandbox and runs the configured command
// buttons.
package project

import (
	"os"
	"path/filepath"

	shellquote "github.com/kballard/go-shellquote"

	"github.com/skeld-sh/skeld/internal/config"
	"github.com/skeld-sh/skeld/internal/logging"
	"github.com/skeld-sh/skeld/internal/sandbox"
)

// Action is what a start screen selection resolves to. Execute returns
// the exit code to forward to the caller's own exit.
type Action interface {
	Execute(cfg *config.Config) (int, error)
}

// CommandAction runs a command button from the global configuration.
type CommandAction struct {
	Command config.Command
}

// Execute spawns the button's command. An empty command does nothing,
// which makes a plain quit button.
func (a CommandAction) Execute(*config.Config) (int, error) {
	if len(a.Command.Argv) == 0 {
		return 0, nil
	}

	cmd := sandbox.Command{
		Program: a.Command.Argv[0],
		Args:    a.Command.Argv[1:],
		Detach:  a.Command.Detach,
	}
	return cmd.Run()
}

// OpenAction opens the project stored at Path.
type OpenAction struct {
	Path string
}

func (a OpenAction) Execute(cfg *config.Config) (int, error) {
	return Open(cfg, a.Path)
}

// Open loads the project file at path on top of the global configuration
// and launches its editor.
func Open(cfg *config.Config, path string) (int, error) {
	project, err := cfg.LoadProject(path)
	if err != nil {
		return 0, err
	}
	return launch(project)
}

func launch(p *config.Project) (int, error) {
	cmd := p.Editor
	if p.AutoNixshell && hasNixShellFile(p.Dir) {
		cmd = wrapNixShell(cmd)
	}

	logging.Debug("launching project",
		"project", p.Name, "dir", p.Dir, "sandboxed", p.Sandbox != nil)

	if p.Sandbox == nil {
		return cmd.Run()
	}

	// The project directory is always writable inside the sandbox. If a
	// whitelist already covers it with a stronger or incompatible entry,
	// that entry stays and the insertion error is ignored.
	_ = p.Sandbox.FSTree.AddPath(p.Dir, sandbox.ReadWrite, struct{}{})
	return p.Sandbox.Run(&cmd)
}

func hasNixShellFile(dir string) bool {
	for _, name := range []string{"shell.nix", "default.nix"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// wrapNixShell reroutes the editor invocation through `nix-shell` so the
// project's shell environment applies. The original argv is passed as a
// single shell-quoted string.
func wrapNixShell(cmd sandbox.Command) sandbox.Command {
	argv := append([]string{cmd.Program}, cmd.Args...)
	return sandbox.Command{
		Program:    "nix-shell",
		Args:       []string{"--command", shellquote.Join(argv...)},
		WorkingDir: cmd.WorkingDir,
		Detach:     cmd.Detach,
	}
}
