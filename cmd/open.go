package cmd

import (
	"github.com/spf13/cobra"

	"github.com/skeld-sh/skeld/internal/config"
	"github.com/skeld-sh/skeld/internal/logging"
	"github.com/skeld-sh/skeld/internal/project"
)

var openCmd = &cobra.Command{
	Use:   "open <project>",
	Short: "Open a project or bookmark by name",
	Long: `Opens the named project directly, skipping the start screen.

The name is matched against project and bookmark files, project files
taking precedence.`,
	Args: cobra.ExactArgs(1),
	RunE: runOpen,
}

func init() {
	rootCmd.AddCommand(openCmd)
}

func runOpen(cmd *cobra.Command, args []string) error {
	name := args[0]

	cfg, err := config.Load("")
	if err != nil {
		return err
	}

	path, err := findProjectFile(name)
	if err != nil {
		return err
	}

	logging.Debug("opening project", "name", name, "file", path)

	return executeAction(cfg, project.OpenAction{Path: path})
}
