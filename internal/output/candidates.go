package output

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lehigh-university-libraries/weeder/internal/ingest"
	"github.com/lehigh-university-libraries/weeder/internal/models"
)

// CandidateExt is the extension of intermediate candidate files
const CandidateExt = ".txt"

// CandidateSuffix identifies intermediate candidate files, numbered or not
const CandidateSuffix = " candidates"

// WriteCandidates writes a batch as a tab-delimited candidate file and returns its path
func WriteCandidates(dir string, batch models.Batch) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create candidates directory: %w", err)
	}

	path := filepath.Join(dir, batch.Name()+CandidateExt)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create candidates file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	w.Comma = '\t'
	if err := w.Write(models.CandidateColumns); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}
	for _, rec := range batch.Records {
		if err := w.Write(models.CandidateRow(rec)); err != nil {
			return "", fmt.Errorf("failed to write OCLC #%s: %w", rec.OCLCNumber, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush candidates file: %w", err)
	}

	return path, file.Close()
}

// ReadCandidates reads an intermediate candidate file back into records
func ReadCandidates(path string) ([]models.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open candidates file: %w", err)
	}
	defer file.Close()

	return readCandidates(ingest.NewTSVReader(file))
}

func readCandidates(r *csv.Reader) ([]models.Record, error) {
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var records []models.Record
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read candidate row: %w", err)
		}
		var rec models.Record
		for i, col := range header {
			if i < len(row) {
				rec.SetField(strings.TrimSpace(col), row[i])
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// ListCandidates returns the candidate files in dir, sorted by name
func ListCandidates(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read candidates directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != CandidateExt {
			continue
		}
		if !strings.Contains(strings.TrimSuffix(name, CandidateExt), CandidateSuffix) {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	sort.Strings(paths)
	return paths, nil
}

// RemoveCandidates deletes the candidate files in dir so a new run does not leave stale
// batches behind for a later enrich. A missing dir is not an error.
func RemoveCandidates(dir string) ([]string, error) {
	paths, err := ListCandidates(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	for _, path := range paths {
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("failed to remove stale candidates file: %w", err)
		}
	}
	return paths, nil
}

// BatchName recovers the batch name from a candidate file path
func BatchName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), CandidateExt)
}
