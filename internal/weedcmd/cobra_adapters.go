package weedcmd

import (
	"github.com/spf13/cobra"
)

// NewRunCmd creates the run command for the full weeding workflow
func NewRunCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Select weeding candidates and enrich them with WorldCat holdings",
		Long: `Run the full weeding workflow.

Reads the WMS circulation exports (tab-delimited .xls files) from the input directory,
keeps items on the eligible shelf that were published and last circulated before the
cutoff year, groups them by LC class into review batches, writes one intermediate
candidates file per batch, then looks up how many other institutions in the state hold
each title and writes one review spreadsheet per batch.

WorldCat credentials are read from WORLDCAT_CLIENT_ID and WORLDCAT_CLIENT_SECRET
(a .env file is loaded if present), or from the --credentials file.`,
		Example: `  # Weed everything not published or circulated since 2004
  weeder run --cutoff 2004

  # Smaller review files
  weeder run --cutoff 2010 --max-batch 150 --verbose`,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(opts.verbose)
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			return executeRun(cmd.Context(), cfg, opts.credentialsPath)
		},
	}

	opts.addFlags(cmd)
	return cmd
}

// NewCandidatesCmd creates the candidates command, which stops before holdings lookup
func NewCandidatesCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "candidates",
		Short: "Write intermediate candidate files without looking up holdings",
		Long: `Select and batch weeding candidates and write the intermediate tab-delimited
candidate files only. Use "weeder enrich" afterwards to look up holdings.`,
		Example: `  weeder candidates --cutoff 2004 --input ./input`,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(opts.verbose)
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			return executeCandidates(cmd.Context(), cfg)
		},
	}

	opts.addFlags(cmd)
	return cmd
}

// NewEnrichCmd creates the enrich command for existing candidate files
func NewEnrichCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Look up WorldCat holdings for existing candidate files",
		Long: `Read every "<phrase> candidates[ n].txt" file in the candidates directory, look up
WorldCat holdings for each title and write one review spreadsheet per file.

Candidate files may be edited by hand before enriching, and enrichment can be re-run
after a failure.`,
		Example: `  weeder enrich --candidates-dir ./output --output "./output/xlsx files"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(opts.verbose)
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			return executeEnrich(cmd.Context(), cfg, opts.credentialsPath)
		},
	}

	opts.addFlags(cmd)
	return cmd
}
