package holdings

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/lehigh-university-libraries/weeder/internal/models"
	"github.com/lehigh-university-libraries/weeder/internal/worldcat"
	"golang.org/x/net/html"
)

// TokenSource supplies a bearer token for each lookup
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Lookup queries holdings for one OCLC number
type Lookup interface {
	BibsHoldings(ctx context.Context, token, oclcNumber string) (*worldcat.BibsHoldingsResponse, error)
}

// Enricher attaches a holdings outcome to every record of a batch
type Enricher struct {
	tokens TokenSource
	lookup Lookup

	// Institution is the requesting library; it is never listed among other holders
	Institution  string
	EnumerateCap int
	DistinctCap  int
}

// New creates an enricher
func New(tokens TokenSource, lookup Lookup, institution string, enumerateCap, distinctCap int) *Enricher {
	return &Enricher{
		tokens:       tokens,
		lookup:       lookup,
		Institution:  institution,
		EnumerateCap: enumerateCap,
		DistinctCap:  distinctCap,
	}
}

// Enrich looks up every record of the batch in order. A failed lookup marks that record
// LookupFailed and enrichment continues. An authentication failure or cancelled context
// stops enrichment: the returned batch is still complete, with the records that were not
// looked up marked LookupFailed, alongside the error.
func (e *Enricher) Enrich(ctx context.Context, batch models.Batch) (models.EnrichedBatch, error) {
	enriched := models.EnrichedBatch{
		Name:    batch.Name(),
		Records: make([]models.EnrichedRecord, len(batch.Records)),
	}
	for i, rec := range batch.Records {
		enriched.Records[i] = models.EnrichedRecord{Record: rec}
	}

	for i := range enriched.Records {
		if err := ctx.Err(); err != nil {
			return enriched, err
		}

		rec := &enriched.Records[i]
		outcome, err := e.EnrichRecord(ctx, rec.OCLCNumber)
		if err != nil {
			var authErr *worldcat.AuthError
			if errors.As(err, &authErr) {
				slog.Error("WorldCat authentication failed, stopping enrichment", "batch", enriched.Name, "oclc", rec.OCLCNumber, "error", err)
				return enriched, err
			}
			slog.Warn("Holdings lookup failed", "oclc", rec.OCLCNumber, "error", err)
		}
		rec.Outcome = outcome
	}

	return enriched, nil
}

// EnrichRecord performs a single lookup. Any error leaves the outcome LookupFailed.
func (e *Enricher) EnrichRecord(ctx context.Context, oclcNumber string) (models.Outcome, error) {
	token, err := e.tokens.Token(ctx)
	if err != nil {
		return models.Outcome{Kind: models.LookupFailed}, err
	}

	resp, err := e.lookup.BibsHoldings(ctx, token, oclcNumber)
	if err != nil {
		return models.Outcome{Kind: models.LookupFailed}, err
	}

	outcome := e.Classify(resp)
	if outcome.Kind == models.LookupFailed {
		slog.Warn("Holdings response had no holdings data", "oclc", oclcNumber)
	}
	return outcome, nil
}

// Classify maps a holdings response to an outcome by the number of holding institutions
func (e *Enricher) Classify(resp *worldcat.BibsHoldingsResponse) models.Outcome {
	if resp == nil || len(resp.BriefRecords) == 0 || resp.BriefRecords[0].InstitutionHolding == nil {
		return models.Outcome{Kind: models.LookupFailed}
	}

	holdings := resp.BriefRecords[0].InstitutionHolding.BriefHoldings
	n := len(holdings)
	switch {
	case n == 0:
		return models.Outcome{Kind: models.LookupFailed}
	case n == 1:
		return models.Outcome{Kind: models.SoleHolder, Count: 1}
	case n <= e.EnumerateCap:
		return models.Outcome{Kind: models.FewHolders, Count: n, Institutions: e.otherInstitutions(holdings)}
	case n <= e.DistinctCap:
		return models.Outcome{Kind: models.FewHolders, Count: n}
	default:
		return models.Outcome{Kind: models.WidelyHeld, Count: n}
	}
}

func (e *Enricher) otherInstitutions(holdings []worldcat.BriefHolding) []string {
	var names []string
	for _, h := range holdings {
		name := strings.TrimSpace(html.UnescapeString(h.InstitutionName))
		if name == "" || name == e.Institution {
			continue
		}
		names = append(names, name)
	}
	return names
}
