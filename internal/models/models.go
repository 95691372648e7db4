package models

import (
	"fmt"
	"strconv"
	"strings"
)

// UnknownYear is the publication date WMS exports when the year is not known
const UnknownYear = "uuuu"

// UnknownPhrase groups every record whose publication year is unknown
const UnknownPhrase = "UU"

// Record represents one catalog item from a WMS circulation export
type Record struct {
	OCLCNumber      string `json:"oclc_number" parquet:"oclc_number"`
	Title           string `json:"title" parquet:"title"`
	Author          string `json:"author" parquet:"author"`
	PublicationDate string `json:"publication_date" parquet:"publication_date"`
	Subject         string `json:"subject" parquet:"subject"`
	Format          string `json:"format" parquet:"format"`
	Edition         string `json:"edition" parquet:"edition"`
	Publisher       string `json:"publisher" parquet:"publisher"`
	Language        string `json:"language" parquet:"language"`
	LCCallNumber    string `json:"lc_call_number" parquet:"lc_call_number"`
	LocalCallNumber string `json:"local_call_number" parquet:"local_call_number"`
	Circulations    string `json:"circulations" parquet:"circulations"`
	LastCirculated  string `json:"last_circulated" parquet:"last_circulated"`
	Location        string `json:"location" parquet:"location"`

	// Derived during classification
	SortKey string `json:"sort_key,omitempty" parquet:"-"`
	Phrase  string `json:"phrase,omitempty" parquet:"-"`
}

// UnknownYear reports whether the publication year is the "uuuu" sentinel
func (r *Record) UnknownYear() bool {
	return r.PublicationDate == UnknownYear
}

// OutcomeKind classifies how widely a title is held by other institutions
type OutcomeKind int

const (
	// LookupFailed is the zero value so an unenriched record never reads as a holding result
	LookupFailed OutcomeKind = iota
	SoleHolder
	FewHolders
	WidelyHeld
)

func (k OutcomeKind) String() string {
	switch k {
	case SoleHolder:
		return "sole_holder"
	case FewHolders:
		return "few_holders"
	case WidelyHeld:
		return "widely_held"
	default:
		return "lookup_failed"
	}
}

// Outcome is the holdings enrichment result attached to a record
type Outcome struct {
	Kind         OutcomeKind `json:"kind"`
	Count        int         `json:"count,omitempty"`
	Institutions []string    `json:"institutions,omitempty"`
}

// OnlyLib renders the "Only Lib?" review column
func (o Outcome) OnlyLib() string {
	switch o.Kind {
	case SoleHolder:
		return "Y"
	case FewHolders:
		return fmt.Sprintf("1 of %d", o.Count)
	case WidelyHeld:
		return "N"
	default:
		return "Error"
	}
}

// OthersHolding renders the "Others Holding" review column
func (o Outcome) OthersHolding() string {
	return strings.Join(o.Institutions, "; ")
}

// EnrichedRecord pairs a candidate with its holdings outcome
type EnrichedRecord struct {
	Record
	Outcome Outcome
}

// Batch is one reviewable group of candidates written to a single file
type Batch struct {
	Phrase  string
	Part    int // 1-based; 0 when the phrase fits in a single batch
	Misc    bool
	Records []Record
}

// Name returns the base file name shared by the intermediate and enriched outputs
func (b Batch) Name() string {
	if b.Misc {
		return "MISC candidates"
	}
	phrase := b.Phrase
	if phrase == "" {
		phrase = "blank"
	}
	if b.Part > 0 {
		return phrase + " candidates " + strconv.Itoa(b.Part)
	}
	return phrase + " candidates"
}

// EnrichedBatch is a batch after holdings lookup
type EnrichedBatch struct {
	Name    string
	Records []EnrichedRecord
}

// ParseBatchName reverses Name for a candidate file base name such as "QA candidates 2"
func ParseBatchName(name string) (Batch, bool) {
	prefix, rest, found := strings.Cut(name, " candidates")
	if !found || prefix == "" {
		return Batch{}, false
	}

	part := 0
	if rest != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(rest, " "))
		if err != nil || n < 1 || !strings.HasPrefix(rest, " ") {
			return Batch{}, false
		}
		part = n
	}

	switch prefix {
	case "MISC":
		return Batch{Misc: true}, part == 0
	case "blank":
		return Batch{Part: part}, true
	default:
		return Batch{Phrase: prefix, Part: part}, true
	}
}
