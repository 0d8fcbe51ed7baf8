package cmd

import (
	"github.com/spf13/cobra"

	"github.com/skeld-sh/skeld/internal/logging"
	"github.com/skeld-sh/skeld/internal/project"
	"github.com/skeld-sh/skeld/internal/system"
)

var addName string

var addCmd = &cobra.Command{
	Use:   "add <path>",
	Short: "Create a project file for a directory or file",
	Long: `Creates a project file pointing at the given directory, or at the
given file's directory with the file opened on start. The file is then
opened in your editor so you can fill in whitelists.

The project name is derived from the path's basename, use --name to
pick a different one.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&addName, "name", "n", "", "Project name (default: basename of the path)")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	path, err := project.Create(args[0], addName)
	if err != nil {
		return err
	}

	logging.Debug("created project file", "path", path)

	if err := system.OpenInEditor(path); err != nil {
		return err
	}

	logSuccess("Created %s", path)
	return nil
}
