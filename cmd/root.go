package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/skeld-sh/skeld/internal/config"
	"github.com/skeld-sh/skeld/internal/logging"
	"github.com/skeld-sh/skeld/internal/tui"
)

var (
	verbose    bool
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "skeld",
	Short: "Open projects in encapsulated sandboxes",
	Long: `skeld shows a start screen of projects, bookmarks and commands.

Opening a project launches your editor inside a bubblewrap sandbox:
the filesystem is hidden except for the paths the project whitelists,
environment variables are stripped, and a seccomp filter blocks
terminal command injection via the TIOCSTI and TIOCLINUX ioctls.

Without arguments skeld opens the start screen.`,
	Args: cobra.NoArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(verbose, jsonOutput, os.Stderr)
	},
	RunE: runRoot,
	// Errors are printed by main, which must stay silent for forwarded
	// child exit codes.
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output logs in JSON format")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// Helper aliases for user-facing output (delegates to logging package)
var (
	logInfo    = logging.UserInfo
	logSuccess = logging.UserSuccess
)

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}

	data, err := tui.BuildData(cfg)
	if err != nil {
		return err
	}

	if len(data.Sections) == 0 {
		logInfo("No projects found. Add one with: skeld add <path>")
		return nil
	}

	logging.Debug("start screen assembled", "sections", len(data.Sections))

	action, err := tui.Run(data)
	if err != nil {
		return err
	}
	if action == nil {
		// Ctrl-C on the start screen is a normal exit.
		return nil
	}

	return executeAction(cfg, action)
}
