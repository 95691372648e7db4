package weeding

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"unicode"

	"github.com/lehigh-university-libraries/weeder/internal/models"
)

// MalformedCallNumberError is reported for call numbers that do not start with a class
// letter run followed by digits, e.g. "QA76".
type MalformedCallNumberError struct {
	OCLCNumber string
	CallNumber string
	Reason     string
}

func (e *MalformedCallNumberError) Error() string {
	return fmt.Sprintf("malformed LC call number %q for OCLC #%s: %s", e.CallNumber, e.OCLCNumber, e.Reason)
}

// SortKey zero pads the class number of an LC call number to 4 digits so that plain
// string comparison orders "A9" before "A10".
func SortKey(callNumber string) (string, error) {
	cn := strings.TrimSpace(callNumber)

	letters := 0
	for letters < len(cn) && isASCIILetter(cn[letters]) {
		letters++
	}
	if letters == 0 {
		return "", &MalformedCallNumberError{CallNumber: callNumber, Reason: "no leading class letters"}
	}

	digits := letters
	for digits < len(cn) && cn[digits] >= '0' && cn[digits] <= '9' {
		digits++
	}
	if digits == letters {
		return "", &MalformedCallNumberError{CallNumber: callNumber, Reason: "no class number after class letters"}
	}

	pad := ""
	if n := digits - letters; n < 4 {
		pad = strings.Repeat("0", 4-n)
	}
	return cn[:letters] + pad + cn[letters:], nil
}

func isASCIILetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// Phrase returns the review grouping key for a record: the letters among the first three
// characters of its LC call number, uppercased, or "UU" when the publication year is unknown.
func Phrase(rec models.Record) string {
	if rec.UnknownYear() {
		return models.UnknownPhrase
	}
	var b strings.Builder
	for i, r := range []rune(rec.LCCallNumber) {
		if i == 3 {
			break
		}
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return strings.ToUpper(b.String())
}

// Groups maps a phrase to its records ordered by sort key
type Groups map[string][]models.Record

// Phrases returns the group keys in ascending order
func (g Groups) Phrases() []string {
	phrases := make([]string, 0, len(g))
	for phrase := range g {
		phrases = append(phrases, phrase)
	}
	sort.Strings(phrases)
	return phrases
}

// Len returns the number of records across all groups
func (g Groups) Len() int {
	total := 0
	for _, recs := range g {
		total += len(recs)
	}
	return total
}

// Classify fills in SortKey and Phrase and groups the records by phrase.
// Records with malformed call numbers are kept, sorted by their raw call number,
// and reported in the returned error list.
func Classify(records []models.Record) (Groups, []*MalformedCallNumberError) {
	groups := make(Groups)
	var malformed []*MalformedCallNumberError

	for _, rec := range records {
		key, err := SortKey(rec.LCCallNumber)
		if err != nil {
			mErr := err.(*MalformedCallNumberError)
			mErr.OCLCNumber = rec.OCLCNumber
			malformed = append(malformed, mErr)
			key = rec.LCCallNumber
		}
		rec.SortKey = key
		rec.Phrase = Phrase(rec)
		groups[rec.Phrase] = append(groups[rec.Phrase], rec)
	}

	for _, recs := range groups {
		SortRecords(recs)
	}

	return groups, malformed
}

// SortRecords orders records by SortKey, keeping input order for equal keys
func SortRecords(recs []models.Record) {
	slices.SortStableFunc(recs, func(a, b models.Record) int {
		return strings.Compare(a.SortKey, b.SortKey)
	})
}
