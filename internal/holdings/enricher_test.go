package holdings

import (
	"context"
	"errors"
	"testing"

	"github.com/lehigh-university-libraries/weeder/internal/models"
	"github.com/lehigh-university-libraries/weeder/internal/worldcat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken struct {
	calls int
	err   error
}

func (s *staticToken) Token(ctx context.Context) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return "tk", nil
}

type fakeLookup struct {
	responses map[string]*worldcat.BibsHoldingsResponse
	errs      map[string]error
	queried   []string
}

func (f *fakeLookup) BibsHoldings(ctx context.Context, token, oclcNumber string) (*worldcat.BibsHoldingsResponse, error) {
	f.queried = append(f.queried, oclcNumber)
	if err, ok := f.errs[oclcNumber]; ok {
		return nil, err
	}
	return f.responses[oclcNumber], nil
}

func response(names ...string) *worldcat.BibsHoldingsResponse {
	holdings := make([]worldcat.BriefHolding, len(names))
	for i, name := range names {
		holdings[i] = worldcat.BriefHolding{InstitutionName: name}
	}
	return &worldcat.BibsHoldingsResponse{
		NumberOfRecords: 1,
		BriefRecords: []worldcat.BriefRecord{{
			InstitutionHolding: &worldcat.InstitutionHolding{TotalHoldingCount: len(names), BriefHoldings: holdings},
		}},
	}
}

func TestClassify(t *testing.T) {
	e := New(nil, nil, "Stetson University", 3, 5)

	tests := []struct {
		name     string
		resp     *worldcat.BibsHoldingsResponse
		expected models.Outcome
	}{
		{
			name:     "sole holder",
			resp:     response("Stetson University"),
			expected: models.Outcome{Kind: models.SoleHolder, Count: 1},
		},
		{
			name:     "two holders enumerated",
			resp:     response("Rollins College", "Eckerd College"),
			expected: models.Outcome{Kind: models.FewHolders, Count: 2, Institutions: []string{"Rollins College", "Eckerd College"}},
		},
		{
			name:     "own name excluded but counted",
			resp:     response("Stetson University", "Rollins College", "Flagler College"),
			expected: models.Outcome{Kind: models.FewHolders, Count: 3, Institutions: []string{"Rollins College", "Flagler College"}},
		},
		{
			name:     "entities decoded",
			resp:     response("Stetson University", "Florida A&amp;M University"),
			expected: models.Outcome{Kind: models.FewHolders, Count: 2, Institutions: []string{"Florida A&M University"}},
		},
		{
			name:     "four holders withheld",
			resp:     response("A", "B", "C", "D"),
			expected: models.Outcome{Kind: models.FewHolders, Count: 4},
		},
		{
			name:     "five holders withheld",
			resp:     response("A", "B", "C", "D", "E"),
			expected: models.Outcome{Kind: models.FewHolders, Count: 5},
		},
		{
			name:     "widely held",
			resp:     response("A", "B", "C", "D", "E", "F"),
			expected: models.Outcome{Kind: models.WidelyHeld, Count: 6},
		},
		{
			name:     "no brief records",
			resp:     &worldcat.BibsHoldingsResponse{},
			expected: models.Outcome{Kind: models.LookupFailed},
		},
		{
			name:     "no institution holding",
			resp:     &worldcat.BibsHoldingsResponse{BriefRecords: []worldcat.BriefRecord{{OCLCNumber: "1"}}},
			expected: models.Outcome{Kind: models.LookupFailed},
		},
		{
			name:     "zero holdings",
			resp:     response(),
			expected: models.Outcome{Kind: models.LookupFailed},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, e.Classify(tt.resp))
		})
	}
}

func TestEnrichContinuesPastLookupFailures(t *testing.T) {
	lookup := &fakeLookup{
		responses: map[string]*worldcat.BibsHoldingsResponse{
			"1": response("Stetson University"),
			"3": response("A", "B", "C", "D", "E", "F"),
		},
		errs: map[string]error{
			"2": &worldcat.LookupError{OCLCNumber: "2", StatusCode: 500},
		},
	}
	tokens := &staticToken{}
	e := New(tokens, lookup, "Stetson University", 3, 5)

	batch := models.Batch{Phrase: "QA", Records: []models.Record{
		{OCLCNumber: "1", Title: "One"},
		{OCLCNumber: "2", Title: "Two"},
		{OCLCNumber: "3", Title: "Three"},
	}}

	enriched, err := e.Enrich(context.Background(), batch)
	require.NoError(t, err)

	assert.Equal(t, "QA candidates", enriched.Name)
	require.Len(t, enriched.Records, 3)
	assert.Equal(t, models.SoleHolder, enriched.Records[0].Outcome.Kind)
	assert.Equal(t, models.LookupFailed, enriched.Records[1].Outcome.Kind)
	assert.Equal(t, "Two", enriched.Records[1].Title)
	assert.Equal(t, models.WidelyHeld, enriched.Records[2].Outcome.Kind)
	assert.Equal(t, []string{"1", "2", "3"}, lookup.queried)
	assert.Equal(t, 3, tokens.calls)
}

func TestEnrichStopsOnAuthError(t *testing.T) {
	lookup := &fakeLookup{}
	tokens := &staticToken{err: &worldcat.AuthError{StatusCode: 401}}
	e := New(tokens, lookup, "Stetson University", 3, 5)

	batch := models.Batch{Phrase: "PS", Records: []models.Record{{OCLCNumber: "1"}, {OCLCNumber: "2"}}}
	enriched, err := e.Enrich(context.Background(), batch)

	var authErr *worldcat.AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, 1, tokens.calls)
	assert.Empty(t, lookup.queried)
	require.Len(t, enriched.Records, 2)
	for _, r := range enriched.Records {
		assert.Equal(t, models.LookupFailed, r.Outcome.Kind)
	}
}

func TestEnrichHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lookup := &fakeLookup{}
	e := New(&staticToken{}, lookup, "Stetson University", 3, 5)
	enriched, err := e.Enrich(ctx, models.Batch{Misc: true, Records: []models.Record{{OCLCNumber: "1"}}})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, enriched.Records, 1)
	assert.Empty(t, lookup.queried)
}
