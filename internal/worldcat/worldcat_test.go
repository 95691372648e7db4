package worldcat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenServer(t *testing.T, expiresIn int, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)

		user, pass, ok := r.BasicAuth()
		if !ok || user != "client" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
			return
		}
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "wcapi:view_institution_holdings", r.PostForm.Get("scope"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"tk_%d","token_type":"bearer","expires_in":%d}`, n, expiresIn)
	}))
}

func TestTokenProviderCaches(t *testing.T) {
	var calls atomic.Int32
	srv := tokenServer(t, 1199, &calls)
	defer srv.Close()

	p := NewTokenProvider("client", "secret", srv.URL, "wcapi:view_institution_holdings", nil)

	first, err := p.Token(context.Background())
	require.NoError(t, err)
	second, err := p.Token(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "tk_1", first)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
	// expiry carries the safety margin
	assert.WithinDuration(t, time.Now().Add(1199*time.Second-ExpiryMargin), p.expiry, 5*time.Second)
}

func TestTokenProviderRefreshesAfterExpiry(t *testing.T) {
	var calls atomic.Int32
	srv := tokenServer(t, 1199, &calls)
	defer srv.Close()

	p := NewTokenProvider("client", "secret", srv.URL, "wcapi:view_institution_holdings", nil)

	_, err := p.Token(context.Background())
	require.NoError(t, err)

	p.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	tok, err := p.Token(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "tk_2", tok)
	assert.Equal(t, int32(2), calls.Load())
}

func TestTokenProviderShortTTLIsNotReused(t *testing.T) {
	var calls atomic.Int32
	// shorter than the margin, so the token is already stale when cached
	srv := tokenServer(t, 30, &calls)
	defer srv.Close()

	p := NewTokenProvider("client", "secret", srv.URL, "wcapi:view_institution_holdings", nil)
	_, err := p.Token(context.Background())
	require.NoError(t, err)
	_, err = p.Token(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
}

func TestTokenProviderAuthError(t *testing.T) {
	var calls atomic.Int32
	srv := tokenServer(t, 1199, &calls)
	defer srv.Close()

	p := NewTokenProvider("client", "wrong", srv.URL, "wcapi:view_institution_holdings", nil)
	_, err := p.Token(context.Background())

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
	assert.Contains(t, authErr.Body, "invalid_client")
}

func TestBibsHoldings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tk", r.Header.Get("Authorization"))
		q := r.URL.Query()
		assert.Equal(t, "12345", q.Get("oclcNumber"))
		assert.Equal(t, "US-FL", q.Get("heldInState"))
		assert.Equal(t, "6", q.Get("limit"))
		assert.Equal(t, "false", q.Get("holdingsAllEditions"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"numberOfRecords": 1,
			"briefRecords": [{
				"oclcNumber": "12345",
				"title": "Calculus",
				"institutionHolding": {
					"totalHoldingCount": 2,
					"briefHoldings": [
						{"institutionName": "Stetson University", "oclcSymbol": "FSS", "state": "US-FL"},
						{"institutionName": "Rollins College", "oclcSymbol": "FWP", "state": "US-FL"}
					]
				}
			}]
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "US-FL", 6, time.Second)
	resp, err := c.BibsHoldings(context.Background(), "tk", "12345")
	require.NoError(t, err)

	require.Len(t, resp.BriefRecords, 1)
	holding := resp.BriefRecords[0].InstitutionHolding
	require.NotNil(t, holding)
	assert.Len(t, holding.BriefHoldings, 2)
	assert.Equal(t, "Rollins College", holding.BriefHoldings[1].InstitutionName)
}

func TestBibsHoldingsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "US-FL", 6, time.Second)
	_, err := c.BibsHoldings(context.Background(), "tk", "999")

	var lookupErr *LookupError
	require.True(t, errors.As(err, &lookupErr))
	assert.Equal(t, "999", lookupErr.OCLCNumber)
	assert.Equal(t, http.StatusTooManyRequests, lookupErr.StatusCode)
}
