package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/lehigh-university-libraries/weeder/internal/models"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	// WMS suffixes its tab-delimited exports with .xls
	DefaultExtension = ".xls"
	// Report title and run date precede the column header row
	DefaultHeaderLines = 2
	// MaxLineSize bounds a single export row
	MaxLineSize = 1024 * 1024
)

// ErrNoInput is wrapped by every NoInputError
var ErrNoInput = errors.New("no ingestible input files")

// NoInputError means a run has nothing to work with
type NoInputError struct {
	Dir     string
	Skipped []*FileParseError
}

func (e *NoInputError) Error() string {
	if len(e.Skipped) == 0 {
		return fmt.Sprintf("no *%s files found in %s", DefaultExtension, e.Dir)
	}
	return fmt.Sprintf("none of the %d files in %s could be processed", len(e.Skipped), e.Dir)
}

func (e *NoInputError) Unwrap() error { return ErrNoInput }

// FileParseError describes an export file that was skipped
type FileParseError struct {
	File string
	Err  error
}

func (e *FileParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.File, e.Err)
}

func (e *FileParseError) Unwrap() error { return e.Err }

// Result is the unified record set from every readable export
type Result struct {
	Records []models.Record
	Files   []string
	Skipped []*FileParseError
}

// Ingestor reads WMS circulation exports from a directory
type Ingestor struct {
	Extension   string
	HeaderLines int
}

// New creates an ingestor for the standard WMS export layout
func New() *Ingestor {
	return &Ingestor{
		Extension:   DefaultExtension,
		HeaderLines: DefaultHeaderLines,
	}
}

// Ingest parses every export in dir in file name order and concatenates the rows.
// Unreadable files are skipped; a NoInputError is returned if nothing could be read.
func (i *Ingestor) Ingest(dir string) (*Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), i.Extension) {
			continue
		}
		names = append(names, entry.Name())
	}
	if len(names) == 0 {
		return nil, &NoInputError{Dir: dir}
	}
	sort.Strings(names)

	result := &Result{}
	for _, name := range names {
		path := filepath.Join(dir, name)
		records, err := i.ReadFile(path)
		if err != nil {
			parseErr := &FileParseError{File: name, Err: err}
			slog.Warn("Skipping export file", "file", name, "error", err)
			result.Skipped = append(result.Skipped, parseErr)
			continue
		}
		slog.Info("Processed export file", "file", name, "records", len(records))
		result.Records = append(result.Records, records...)
		result.Files = append(result.Files, name)
	}

	if len(result.Files) == 0 {
		return nil, &NoInputError{Dir: dir, Skipped: result.Skipped}
	}

	return result, nil
}

// ReadFile parses a single export file
func (i *Ingestor) ReadFile(path string) ([]models.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open export: %w", err)
	}
	defer file.Close()

	return i.Read(file)
}

// Read parses an export stream. UTF-8 and BOM-marked UTF-16 exports are both accepted.
func (i *Ingestor) Read(r io.Reader) ([]models.Record, error) {
	br := bufio.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	for n := 0; n < i.HeaderLines; n++ {
		if _, err := br.ReadString('\n'); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("export ended within the %d header lines", i.HeaderLines)
			}
			return nil, fmt.Errorf("failed to skip header lines: %w", err)
		}
	}

	scanner := bufio.NewScanner(br)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read column header row: %w", err)
		}
		return nil, errors.New("export has no column header row")
	}
	header := splitRow(scanner.Text())
	for j := range header {
		header[j] = strings.TrimSpace(header[j])
	}
	if err := checkColumns(header); err != nil {
		return nil, err
	}

	var records []models.Record
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}

		row := splitRow(text)
		var rec models.Record
		for j, col := range header {
			if j >= len(row) {
				break
			}
			rec.SetField(col, row[j])
		}
		rec.OCLCNumber = CleanHyperlink(rec.OCLCNumber)
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read data row %d: %w", line+1, err)
	}

	return records, nil
}

// splitRow splits one export line on tabs. Exports are not quoted, so quote characters
// are ordinary text.
func splitRow(line string) []string {
	return strings.Split(strings.TrimRight(line, "\r"), "\t")
}

// NewTSVReader returns a csv.Reader for the tab-delimited candidate files, whose fields
// are quoted by csv.Writer when needed
func NewTSVReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader
}

func checkColumns(header []string) error {
	present := make(map[string]bool, len(header))
	for _, col := range header {
		present[col] = true
	}
	var missing []string
	for _, col := range models.RequiredExportColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("export is missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

var hyperlinkText = regexp.MustCompile(`"([^"]+)"[^"]*$`)

// CleanHyperlink extracts the visible text from a spreadsheet HYPERLINK formula
// such as =HYPERLINK("http://worldcat.org/oclc/123","123"). Other values are returned unchanged.
func CleanHyperlink(value string) string {
	if !strings.HasPrefix(value, "=HYPERLINK(") {
		return value
	}
	if m := hyperlinkText.FindStringSubmatch(value); m != nil {
		return m[1]
	}
	return value
}
