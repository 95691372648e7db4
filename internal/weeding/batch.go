package weeding

import (
	"github.com/lehigh-university-libraries/weeder/internal/models"
)

// Batcher splits phrase groups into review batches. Groups smaller than MinGroupSize
// are pooled into one MISC batch; groups larger than MaxBatchSize are split into
// numbered parts.
type Batcher struct {
	MinGroupSize int
	MaxBatchSize int
}

// Batch returns the batches in phrase order with the MISC batch, if any, last
func (b Batcher) Batch(groups Groups) []models.Batch {
	var batches []models.Batch
	var misc []models.Record

	for _, phrase := range groups.Phrases() {
		recs := groups[phrase]
		if len(recs) < b.MinGroupSize {
			misc = append(misc, recs...)
			continue
		}

		parts := Split(recs, b.MaxBatchSize)
		for i, part := range parts {
			batch := models.Batch{Phrase: phrase, Records: part}
			if len(parts) > 1 {
				batch.Part = i + 1
			}
			batches = append(batches, batch)
		}
	}

	if len(misc) > 0 {
		SortRecords(misc)
		batches = append(batches, models.Batch{Misc: true, Records: misc})
	}

	return batches
}

// Split cuts records into ceil(n/maxSize) contiguous parts of near-equal size, none
// larger than maxSize. The last part takes whatever remains.
func Split(recs []models.Record, maxSize int) [][]models.Record {
	n := len(recs)
	if n == 0 {
		return nil
	}
	if maxSize < 1 || n <= maxSize {
		return [][]models.Record{recs}
	}

	sections := (n + maxSize - 1) / maxSize
	size := (n + sections - 1) / sections

	parts := make([][]models.Record, 0, sections)
	for start := 0; start < n; start += size {
		end := min(start+size, n)
		parts = append(parts, recs[start:end:end])
	}
	return parts
}
