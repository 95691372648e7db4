package weedcmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/lehigh-university-libraries/weeder/internal/config"
	"github.com/lehigh-university-libraries/weeder/internal/holdings"
	"github.com/lehigh-university-libraries/weeder/internal/output"
	"github.com/lehigh-university-libraries/weeder/internal/pipeline"
	"github.com/lehigh-university-libraries/weeder/internal/report"
	"github.com/lehigh-university-libraries/weeder/internal/worldcat"
	"github.com/spf13/cobra"
)

// options are the flags shared by every weeding subcommand
type options struct {
	configPath      string
	credentialsPath string
	cutoffYear      string
	inputDir        string
	intermediateDir string
	outputDir       string
	format          string
	minGroupSize    int
	maxBatchSize    int
	verbose         bool
}

func (o *options) addFlags(cmd *cobra.Command) {
	defaults := config.Default()
	flags := cmd.Flags()
	flags.StringVar(&o.configPath, "config", "", "Path to a YAML config file")
	flags.StringVar(&o.credentialsPath, "credentials", "credentials.dat", "Fallback file with the WorldCat client id and secret on separate lines")
	flags.StringVar(&o.cutoffYear, "cutoff", defaults.CutoffYear, "Cutoff year (4 digits); items published or circulated since are kept")
	flags.StringVar(&o.inputDir, "input", defaults.InputDir, "Directory of WMS .xls exports")
	flags.StringVar(&o.intermediateDir, "candidates-dir", defaults.IntermediateDir, "Directory for intermediate candidate files and run reports")
	flags.StringVar(&o.outputDir, "output", defaults.OutputDir, "Directory for review spreadsheets")
	flags.StringVar(&o.format, "format", defaults.Format, "Review file format (xlsx or parquet)")
	flags.IntVar(&o.minGroupSize, "min-group", defaults.MinGroupSize, "Call number groups smaller than this go to the MISC batch")
	flags.IntVar(&o.maxBatchSize, "max-batch", defaults.MaxBatchSize, "Largest number of titles in one review file")
	flags.BoolVar(&o.verbose, "verbose", false, "Verbose logging")
}

// load applies explicitly set flags over the config file
func (o *options) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("cutoff") {
		cfg.CutoffYear = o.cutoffYear
	}
	if flags.Changed("input") {
		cfg.InputDir = o.inputDir
	}
	if flags.Changed("candidates-dir") {
		cfg.IntermediateDir = o.intermediateDir
	}
	if flags.Changed("output") {
		cfg.OutputDir = o.outputDir
	}
	if flags.Changed("format") {
		cfg.Format = o.format
	}
	if flags.Changed("min-group") {
		cfg.MinGroupSize = o.minGroupSize
	}
	if flags.Changed("max-batch") {
		cfg.MaxBatchSize = o.maxBatchSize
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// newPipeline wires the WorldCat client, token provider, enricher and writer
func newPipeline(cfg config.Config, credentialsPath string) (*pipeline.Pipeline, error) {
	creds, err := config.LoadCredentials(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load WorldCat credentials: %w", err)
	}

	writer, err := output.New(cfg.Format)
	if err != nil {
		return nil, err
	}

	client := worldcat.NewClient(cfg.HoldingsURL, cfg.Jurisdiction, cfg.DistinctCap+1, cfg.HTTPTimeout)
	tokens := worldcat.NewTokenProvider(creds.ClientID, creds.ClientSecret, cfg.TokenURL, cfg.Scope, client.HTTPClient())
	enricher := holdings.New(tokens, client, cfg.Institution, cfg.EnumerateCap, cfg.DistinctCap)

	return pipeline.New(cfg, enricher, writer), nil
}

func printSummary(r *report.Report, outputDir string) {
	fmt.Println("\n========================================")
	fmt.Println("Weeding Summary")
	fmt.Println("========================================")
	fmt.Printf("Files processed:    %d\n", len(r.FilesIngested))
	fmt.Printf("Files skipped:      %d\n", len(r.FilesSkipped))
	fmt.Printf("Records read:       %d\n", r.RecordsRead)
	fmt.Printf("Candidates:         %d\n", r.Candidates)
	fmt.Printf("Malformed call nos: %d\n", len(r.MalformedCalls))
	fmt.Println()
	for _, b := range r.Batches {
		status := "candidates only"
		switch {
		case b.Interrupted:
			status = "interrupted"
		case b.Enriched:
			status = "enriched"
		}
		fmt.Printf("  %-24s %5d  %s\n", b.Name, b.Records, status)
	}
	fmt.Println("========================================")
	if r.Error != "" {
		fmt.Printf("Stopped with error: %s\n", r.Error)
	} else if outputDir != "" {
		fmt.Printf("\nProcess complete! Check %s for results.\n", outputDir)
	}
}
