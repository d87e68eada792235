// Package cli implements the streakctl command line tool.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
}

// SetBuildInfo sets the commit hash and build time
func SetBuildInfo(c, bt string) {
	commit = c
	buildTime = bt
}

// NewRootCmd builds the streakctl command tree.
func NewRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "streakctl",
		Short: "Render streak calendar cards",
		Long: `streakctl renders the streak calendar card served by the badge server,
either for a live Monkeytype user or from a local file of daily counts.

Example usage:
  streakctl render --username miodec -o streak.svg
  streakctl render --counts days.json --streak 12 --format png -o streak.png
  streakctl version --short`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: level,
			})))
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(newRenderCmd(), newVersionCmd())
	return root
}

// Execute runs the root command against os.Args.
func Execute() error {
	root := NewRootCmd()
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	return root.Execute()
}
