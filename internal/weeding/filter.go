// Package weeding selects, classifies and batches weeding candidates.
package weeding

import (
	"strings"

	"github.com/lehigh-university-libraries/weeder/internal/models"
)

// Filter keeps the records eligible for weeding review
type Filter struct {
	CutoffYear    string
	EligibleShelf string
}

// Apply returns the eligible records in their original order.
//
// Year comparisons are string comparisons, matching how the workflow has always
// behaved; cutoff years must be zero padded to 4 digits.
func (f Filter) Apply(records []models.Record) []models.Record {
	var kept []models.Record
	for _, rec := range records {
		if f.Eligible(rec) {
			kept = append(kept, rec)
		}
	}
	return kept
}

// Eligible reports whether a single record is a weeding candidate
func (f Filter) Eligible(rec models.Record) bool {
	if rec.Location != f.EligibleShelf {
		return false
	}
	if !rec.UnknownYear() && !(rec.PublicationDate < f.CutoffYear) {
		return false
	}
	return LastCirculatedYear(rec.LastCirculated) < f.CutoffYear
}

// LastCirculatedYear extracts the year from an MM/DD/YYYY date. Values without a slash
// (blank or never circulated) yield "0".
func LastCirculatedYear(date string) string {
	if !strings.Contains(date, "/") {
		return "0"
	}
	parts := strings.Split(date, "/")
	if len(parts) >= 3 {
		return parts[2]
	}
	return parts[len(parts)-1]
}
