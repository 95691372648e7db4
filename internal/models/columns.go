package models

// Column headers as they appear in WMS exports and in the review files.
const (
	ColOCLCNumber      = "OCLC Number"
	ColOCLCNum         = "OCLCNum"
	ColOnlyLib         = "Only Lib?"
	ColOthersHolding   = "Others Holding"
	ColInRCL           = "In RCL?"
	ColTitle           = "Title"
	ColAuthor          = "Author"
	ColPublicationDate = "Publication Date"
	ColSubject         = "Subject"
	ColFormat          = "Format"
	ColEdition         = "Edition"
	ColPublisher       = "Publisher"
	ColLanguage        = "Language"
	ColLCCallNumber    = "LC Call Number"
	ColLocalCallNumber = "Local Call Number"
	ColCirculations    = "Number of Circulations"
	ColLastCirculated  = "Last Circulated Date"
	ColLocation        = "Location"
)

// CandidateColumns is the intermediate candidate file header. The order is relied on by
// reviewers' spreadsheets and must not change.
var CandidateColumns = []string{
	ColOCLCNumber, ColOnlyLib, ColOthersHolding, ColInRCL,
	ColTitle, ColAuthor, ColPublicationDate, ColSubject, ColFormat, ColEdition,
	ColPublisher, ColLanguage, ColLCCallNumber, ColLocalCallNumber,
	ColCirculations, ColLastCirculated,
}

// ReviewColumns is the enriched spreadsheet header
var ReviewColumns = append([]string{ColOCLCNum}, CandidateColumns[1:]...)

// RequiredExportColumns must be present in every ingested export
var RequiredExportColumns = []string{
	ColOCLCNumber, ColPublicationDate, ColLCCallNumber, ColLastCirculated, ColLocation,
}

// Field returns the value of a named column; unknown columns and the manual review
// columns resolve to the empty string.
func (r *Record) Field(column string) string {
	if p := r.field(column); p != nil {
		return *p
	}
	return ""
}

// SetField assigns a named column and reports whether the column is part of the schema
func (r *Record) SetField(column, value string) bool {
	p := r.field(column)
	if p == nil {
		return false
	}
	*p = value
	return true
}

func (r *Record) field(column string) *string {
	switch column {
	case ColOCLCNumber, ColOCLCNum:
		return &r.OCLCNumber
	case ColTitle:
		return &r.Title
	case ColAuthor:
		return &r.Author
	case ColPublicationDate:
		return &r.PublicationDate
	case ColSubject:
		return &r.Subject
	case ColFormat:
		return &r.Format
	case ColEdition:
		return &r.Edition
	case ColPublisher:
		return &r.Publisher
	case ColLanguage:
		return &r.Language
	case ColLCCallNumber:
		return &r.LCCallNumber
	case ColLocalCallNumber:
		return &r.LocalCallNumber
	case ColCirculations:
		return &r.Circulations
	case ColLastCirculated:
		return &r.LastCirculated
	case ColLocation:
		return &r.Location
	}
	return nil
}

// CandidateRow renders a record in CandidateColumns order
func CandidateRow(r Record) []string {
	row := make([]string, len(CandidateColumns))
	for i, col := range CandidateColumns {
		row[i] = r.Field(col)
	}
	return row
}

// ReviewRow renders an enriched record in ReviewColumns order
func ReviewRow(er EnrichedRecord) []string {
	row := make([]string, len(ReviewColumns))
	for i, col := range ReviewColumns {
		switch col {
		case ColOnlyLib:
			row[i] = er.Outcome.OnlyLib()
		case ColOthersHolding:
			row[i] = er.Outcome.OthersHolding()
		default:
			row[i] = er.Record.Field(col)
		}
	}
	return row
}
