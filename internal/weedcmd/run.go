package weedcmd

import (
	"context"
	"log/slog"

	"github.com/lehigh-university-libraries/weeder/internal/config"
	"github.com/lehigh-university-libraries/weeder/internal/pipeline"
)

func executeRun(ctx context.Context, cfg config.Config, credentialsPath string) error {
	slog.Info("Starting weeding run", "cutoff", cfg.CutoffYear, "input", cfg.InputDir, "output", cfg.OutputDir)

	p, err := newPipeline(cfg, credentialsPath)
	if err != nil {
		return err
	}

	err = p.Run(ctx)
	printSummary(p.Report, cfg.OutputDir)
	return err
}

func executeCandidates(ctx context.Context, cfg config.Config) error {
	slog.Info("Building weeding candidates", "cutoff", cfg.CutoffYear, "input", cfg.InputDir)

	p := pipeline.New(cfg, nil, nil)
	_, err := p.Candidates(ctx)
	p.Finish(err)
	printSummary(p.Report, "")
	return err
}

func executeEnrich(ctx context.Context, cfg config.Config, credentialsPath string) error {
	slog.Info("Enriching candidate files", "dir", cfg.IntermediateDir, "output", cfg.OutputDir)

	p, err := newPipeline(cfg, credentialsPath)
	if err != nil {
		return err
	}

	batches, err := p.LoadCandidates(ctx)
	if err == nil {
		err = p.Enrich(ctx, batches)
	}
	p.Finish(err)
	printSummary(p.Report, cfg.OutputDir)
	return err
}
