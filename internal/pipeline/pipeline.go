// Package pipeline runs the weeding workflow: ingest WMS exports, select and batch
// candidates, write intermediate candidate files, then enrich each batch with WorldCat
// holdings and write the review spreadsheets.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lehigh-university-libraries/weeder/internal/config"
	"github.com/lehigh-university-libraries/weeder/internal/holdings"
	"github.com/lehigh-university-libraries/weeder/internal/ingest"
	"github.com/lehigh-university-libraries/weeder/internal/models"
	"github.com/lehigh-university-libraries/weeder/internal/output"
	"github.com/lehigh-university-libraries/weeder/internal/report"
	"github.com/lehigh-university-libraries/weeder/internal/weeding"
)

// Pipeline owns every record and batch for the duration of one run
type Pipeline struct {
	cfg      config.Config
	ingestor *ingest.Ingestor
	enricher *holdings.Enricher
	writer   output.Writer

	Report *report.Report
}

// New creates a pipeline. enricher and writer may be nil when only candidates are built.
func New(cfg config.Config, enricher *holdings.Enricher, writer output.Writer) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		ingestor: ingest.New(),
		enricher: enricher,
		writer:   writer,
		Report:   report.New(cfg),
	}
}

// Candidates ingests the exports, selects and batches candidates, and writes one
// intermediate file per batch
func (p *Pipeline) Candidates(ctx context.Context) ([]models.Batch, error) {
	slog.Info("Processing export files", "dir", p.cfg.InputDir)
	result, err := p.ingestor.Ingest(p.cfg.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to ingest exports: %w", err)
	}

	p.Report.FilesIngested = result.Files
	for _, skipped := range result.Skipped {
		p.Report.FilesSkipped = append(p.Report.FilesSkipped, report.SkippedFile{File: skipped.File, Reason: skipped.Err.Error()})
	}
	p.Report.RecordsRead = len(result.Records)

	filter := weeding.Filter{CutoffYear: p.cfg.CutoffYear, EligibleShelf: p.cfg.EligibleShelf}
	eligible := filter.Apply(result.Records)
	p.Report.Candidates = len(eligible)
	slog.Info("Selected weeding candidates", "records", len(result.Records), "candidates", len(eligible), "cutoff", p.cfg.CutoffYear)

	groups, malformed := weeding.Classify(eligible)
	for _, mErr := range malformed {
		slog.Warn("Malformed call number", "oclc", mErr.OCLCNumber, "call_number", mErr.CallNumber, "reason", mErr.Reason)
		p.Report.MalformedCalls = append(p.Report.MalformedCalls, mErr.Error())
	}

	batcher := weeding.Batcher{MinGroupSize: p.cfg.MinGroupSize, MaxBatchSize: p.cfg.MaxBatchSize}
	batches := batcher.Batch(groups)

	stale, err := output.RemoveCandidates(p.cfg.IntermediateDir)
	if err != nil {
		return nil, err
	}
	for _, path := range stale {
		slog.Debug("Removed candidates file from an earlier run", "file", path)
	}

	slog.Info("Creating intermediate files", "dir", p.cfg.IntermediateDir, "batches", len(batches))
	for _, batch := range batches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path, err := output.WriteCandidates(p.cfg.IntermediateDir, batch)
		if err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", batch.Name(), err)
		}
		entry := p.Report.Batch(batch.Name())
		entry.Records = len(batch.Records)
		entry.Candidates = path
		slog.Info("Wrote candidates file", "file", path, "records", len(batch.Records))
	}

	return batches, nil
}

// LoadCandidates reads previously written intermediate files back into batches
func (p *Pipeline) LoadCandidates(ctx context.Context) ([]models.Batch, error) {
	paths, err := output.ListCandidates(p.cfg.IntermediateDir)
	if err != nil {
		return nil, err
	}

	var batches []models.Batch
	for _, path := range paths {
		name := output.BatchName(path)
		batch, ok := models.ParseBatchName(name)
		if !ok {
			slog.Warn("Skipping file with unrecognised name", "file", path)
			continue
		}
		records, err := output.ReadCandidates(path)
		if err != nil {
			slog.Warn("Skipping unreadable candidates file", "file", path, "error", err)
			p.Report.FilesSkipped = append(p.Report.FilesSkipped, report.SkippedFile{File: path, Reason: err.Error()})
			continue
		}
		batch.Records = records
		batches = append(batches, batch)

		entry := p.Report.Batch(name)
		entry.Records = len(records)
		entry.Candidates = path
		p.Report.Candidates += len(records)
	}

	if len(batches) == 0 {
		return nil, fmt.Errorf("no candidate files in %s: %w", p.cfg.IntermediateDir, ingest.ErrNoInput)
	}
	return batches, nil
}

// Enrich looks up holdings for each batch in turn and writes its review file. A batch
// interrupted by an authentication failure or cancellation is still written, with the
// unlooked-up records marked as errors; later batches are left unenriched.
func (p *Pipeline) Enrich(ctx context.Context, batches []models.Batch) error {
	if p.enricher == nil || p.writer == nil {
		return errors.New("enrichment requires a holdings enricher and output writer")
	}

	for i, batch := range batches {
		slog.Info("Enriching batch", "batch", batch.Name(), "records", len(batch.Records), "progress", fmt.Sprintf("%d/%d", i+1, len(batches)))

		enriched, enrichErr := p.enricher.Enrich(ctx, batch)
		path, writeErr := p.writer.Write(p.cfg.OutputDir, enriched)

		entry := p.Report.Batch(enriched.Name)
		entry.Records = len(enriched.Records)
		entry.Outcomes = report.Tally(enriched)
		entry.Enriched = enrichErr == nil
		entry.Interrupted = enrichErr != nil
		if writeErr != nil {
			return fmt.Errorf("failed to write %s: %w", enriched.Name, writeErr)
		}
		entry.Output = path
		slog.Info("Results written", "file", path)

		if enrichErr != nil {
			for _, rest := range batches[i+1:] {
				slog.Warn("Batch not enriched", "batch", rest.Name())
			}
			return fmt.Errorf("enrichment stopped during %s: %w", enriched.Name, enrichErr)
		}
	}

	return nil
}

// Run builds the candidates, enriches them and saves the run report
func (p *Pipeline) Run(ctx context.Context) error {
	batches, err := p.Candidates(ctx)
	if err == nil {
		err = p.Enrich(ctx, batches)
	}
	p.Finish(err)
	return err
}

// Finish records the final error, if any, and saves the run report
func (p *Pipeline) Finish(runErr error) {
	if runErr != nil {
		p.Report.Error = runErr.Error()
		slog.Error("Weeding run failed", "error", runErr)
	}

	path, err := report.Save(p.cfg.IntermediateDir, p.Report)
	if err != nil {
		slog.Error("Unable to save run report", "error", err)
		return
	}
	slog.Info("Run report saved", "file", path)
}
