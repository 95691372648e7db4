package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lehigh-university-libraries/weeder/internal/config"
	"github.com/lehigh-university-libraries/weeder/internal/models"
	"gopkg.in/yaml.v3"
)

// RunConfig is the configuration section of the report
type RunConfig struct {
	CutoffYear    string `yaml:"cutoffyear"`
	EligibleShelf string `yaml:"eligibleshelf"`
	Jurisdiction  string `yaml:"jurisdiction"`
	MinGroupSize  int    `yaml:"mingroupsize"`
	MaxBatchSize  int    `yaml:"maxbatchsize"`
	EnumerateCap  int    `yaml:"enumeratecap"`
	DistinctCap   int    `yaml:"distinctcap"`
	Format        string `yaml:"format"`
}

// SkippedFile is an export that could not be parsed
type SkippedFile struct {
	File   string `yaml:"file"`
	Reason string `yaml:"reason"`
}

// BatchResult summarises one batch
type BatchResult struct {
	Name        string         `yaml:"name"`
	Records     int            `yaml:"records"`
	Candidates  string         `yaml:"candidates,omitempty"`
	Output      string         `yaml:"output,omitempty"`
	Outcomes    map[string]int `yaml:"outcomes,omitempty"`
	Enriched    bool           `yaml:"enriched"`
	Interrupted bool           `yaml:"interrupted,omitempty"`
}

// Report is the YAML summary written after every run
type Report struct {
	Timestamp      string        `yaml:"timestamp"`
	Config         RunConfig     `yaml:"config"`
	FilesIngested  []string      `yaml:"filesingested"`
	FilesSkipped   []SkippedFile `yaml:"filesskipped,omitempty"`
	RecordsRead    int           `yaml:"recordsread"`
	Candidates     int           `yaml:"candidates"`
	MalformedCalls []string      `yaml:"malformedcallnumbers,omitempty"`
	Batches        []BatchResult `yaml:"batches"`
	Error          string        `yaml:"error,omitempty"`
}

// New starts a report for a run with the given configuration
func New(cfg config.Config) *Report {
	return &Report{
		Timestamp: time.Now().Format("2006-01-02_15-04-05"),
		Config: RunConfig{
			CutoffYear:    cfg.CutoffYear,
			EligibleShelf: cfg.EligibleShelf,
			Jurisdiction:  cfg.Jurisdiction,
			MinGroupSize:  cfg.MinGroupSize,
			MaxBatchSize:  cfg.MaxBatchSize,
			EnumerateCap:  cfg.EnumerateCap,
			DistinctCap:   cfg.DistinctCap,
			Format:        cfg.Format,
		},
	}
}

// Batch returns the result entry for a batch name, adding it if needed
func (r *Report) Batch(name string) *BatchResult {
	for i := range r.Batches {
		if r.Batches[i].Name == name {
			return &r.Batches[i]
		}
	}
	r.Batches = append(r.Batches, BatchResult{Name: name})
	return &r.Batches[len(r.Batches)-1]
}

// Tally counts the outcomes of an enriched batch
func Tally(batch models.EnrichedBatch) map[string]int {
	counts := make(map[string]int)
	for _, rec := range batch.Records {
		counts[rec.Outcome.Kind.String()]++
	}
	return counts
}

// Save writes the report as run-report-<timestamp>.yaml in dir
func Save(dir string, r *Report) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("run-report-%s.yaml", r.Timestamp))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}

	return path, nil
}
