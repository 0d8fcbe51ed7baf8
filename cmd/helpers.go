package cmd

import (
	"github.com/skeld-sh/skeld/internal/config"
	"github.com/skeld-sh/skeld/internal/errors"
	"github.com/skeld-sh/skeld/internal/project"
)

// executeAction runs a start screen action after the terminal has been
// restored, translating a non-zero child exit code into an error that
// main forwards silently.
func executeAction(cfg *config.Config, action project.Action) error {
	code, err := action.Execute(cfg)
	if err != nil {
		return err
	}
	if code != 0 {
		return errors.ExitStatus(code)
	}
	return nil
}

// findProjectFile resolves a project or bookmark name to its file.
// Projects win over bookmarks with the same name.
func findProjectFile(name string) (string, error) {
	projects, err := config.Projects()
	if err != nil {
		return "", err
	}
	bookmarks, err := config.Bookmarks()
	if err != nil {
		return "", err
	}

	for _, button := range append(projects, bookmarks...) {
		if button.Name == name {
			return button.Path, nil
		}
	}
	return "", errors.ProjectNotFound(name)
}
