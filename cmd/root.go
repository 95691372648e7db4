package cmd

import (
	"github.com/joho/godotenv"
	"github.com/lehigh-university-libraries/weeder/internal/weedcmd"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weeder",
		Short: "Collection weeding tool with WorldCat holdings lookup",
		Long: `Weeder selects library items for weeding review from WMS circulation exports.

Candidates are grouped by LC class into review batches, and each title is checked
against WorldCat to show how many other institutions in the state still hold it.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.AddCommand(weedcmd.NewRunCmd())
	cmd.AddCommand(weedcmd.NewCandidatesCmd())
	cmd.AddCommand(weedcmd.NewEnrichCmd())

	return cmd
}
