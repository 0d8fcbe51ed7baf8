package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skeld-sh/skeld/internal/config"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List project and bookmark names",
	Long:  `Prints one project or bookmark name per line, for scripting.`,
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	projects, err := config.Projects()
	if err != nil {
		return err
	}
	bookmarks, err := config.Bookmarks()
	if err != nil {
		return err
	}

	for _, button := range append(projects, bookmarks...) {
		fmt.Fprintln(cmd.OutOrStdout(), button.Name)
	}
	return nil
}
