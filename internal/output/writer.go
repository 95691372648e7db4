package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/lehigh-university-libraries/weeder/internal/models"
	"github.com/parquet-go/parquet-go"
	"github.com/xuri/excelize/v2"
)

// Writer persists an enriched batch for review
type Writer interface {
	// Write stores the batch in dir and returns the path written
	Write(dir string, batch models.EnrichedBatch) (string, error)
}

// New returns the writer for a configured format
func New(format string) (Writer, error) {
	switch format {
	case "xlsx":
		return &XLSXWriter{Sheet: "Sheet1"}, nil
	case "parquet":
		return &ParquetWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (supported: xlsx, parquet)", format)
	}
}

// XLSXWriter writes one review spreadsheet per batch
type XLSXWriter struct {
	Sheet string
}

// numericColumns are written as numbers so reviewers can sort them
var numericColumns = map[string]bool{
	models.ColOCLCNum:      true,
	models.ColCirculations: true,
}

func (x *XLSXWriter) Write(dir string, batch models.EnrichedBatch) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(x.Sheet)
	if err != nil {
		return "", fmt.Errorf("failed to create stream writer: %w", err)
	}
	if err := sw.SetColWidth(1, len(models.ReviewColumns), 18); err != nil {
		return "", fmt.Errorf("failed to set column width: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return "", fmt.Errorf("failed to create header style: %w", err)
	}
	header := make([]interface{}, len(models.ReviewColumns))
	for i, col := range models.ReviewColumns {
		header[i] = col
	}
	if err := sw.SetRow("A1", header, excelize.RowOpts{StyleID: bold}); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}

	for i, rec := range batch.Records {
		row := models.ReviewRow(rec)
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
			if numericColumns[models.ReviewColumns[j]] {
				if n, err := strconv.Atoi(v); err == nil {
					values[j] = n
				}
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", err
		}
		if err := sw.SetRow(cell, values); err != nil {
			return "", fmt.Errorf("failed to write OCLC #%s: %w", rec.OCLCNumber, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush spreadsheet: %w", err)
	}

	path := filepath.Join(dir, batch.Name+".xlsx")
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save spreadsheet: %w", err)
	}
	return path, nil
}

// ReviewRecord is the parquet row layout of an enriched record
type ReviewRecord struct {
	OCLCNum         string `parquet:"oclc_num"`
	OnlyLib         string `parquet:"only_lib"`
	OthersHolding   string `parquet:"others_holding"`
	InRCL           string `parquet:"in_rcl"`
	Outcome         string `parquet:"outcome"`
	HolderCount     int32  `parquet:"holder_count"`
	Title           string `parquet:"title"`
	Author          string `parquet:"author"`
	PublicationDate string `parquet:"publication_date"`
	Subject         string `parquet:"subject"`
	Format          string `parquet:"format"`
	Edition         string `parquet:"edition"`
	Publisher       string `parquet:"publisher"`
	Language        string `parquet:"language"`
	LCCallNumber    string `parquet:"lc_call_number"`
	LocalCallNumber string `parquet:"local_call_number"`
	Circulations    string `parquet:"circulations"`
	LastCirculated  string `parquet:"last_circulated"`
}

// ParquetWriter writes one parquet file per batch for loading into analysis tools
type ParquetWriter struct{}

func (p *ParquetWriter) Write(dir string, batch models.EnrichedBatch) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	rows := make([]ReviewRecord, len(batch.Records))
	for i, rec := range batch.Records {
		rows[i] = ReviewRecord{
			OCLCNum:         rec.OCLCNumber,
			OnlyLib:         rec.Outcome.OnlyLib(),
			OthersHolding:   rec.Outcome.OthersHolding(),
			Outcome:         rec.Outcome.Kind.String(),
			HolderCount:     int32(rec.Outcome.Count),
			Title:           rec.Title,
			Author:          rec.Author,
			PublicationDate: rec.PublicationDate,
			Subject:         rec.Subject,
			Format:          rec.Format,
			Edition:         rec.Edition,
			Publisher:       rec.Publisher,
			Language:        rec.Language,
			LCCallNumber:    rec.LCCallNumber,
			LocalCallNumber: rec.LocalCallNumber,
			Circulations:    rec.Circulations,
			LastCirculated:  rec.LastCirculated,
		}
	}

	path := filepath.Join(dir, batch.Name+".parquet")
	if err := parquet.WriteFile(path, rows); err != nil {
		return "", fmt.Errorf("failed to write parquet file: %w", err)
	}
	return path, nil
}
