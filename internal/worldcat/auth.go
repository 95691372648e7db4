package worldcat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ExpiryMargin is subtracted from the server TTL so a token is never used right at expiry
const ExpiryMargin = 60 * time.Second

// AuthError means the client credential exchange failed; no lookup can succeed without a token
type AuthError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *AuthError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("authentication failed with status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("authentication failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// TokenProvider obtains and caches a WorldCat bearer token. It is not safe for concurrent
// use; a run owns exactly one and enriches sequentially.
type TokenProvider struct {
	config     clientcredentials.Config
	httpClient *http.Client
	now        func() time.Time

	token  string
	expiry time.Time
}

// NewTokenProvider creates a provider for the client credentials grant
func NewTokenProvider(clientID, clientSecret, tokenURL, scope string, httpClient *http.Client) *TokenProvider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &TokenProvider{
		config: clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			Scopes:       []string{scope},
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		httpClient: httpClient,
		now:        time.Now,
	}
}

// Token returns the cached token, re-authenticating once it has expired
func (p *TokenProvider) Token(ctx context.Context) (string, error) {
	if p.token != "" && p.now().Before(p.expiry) {
		return p.token, nil
	}

	slog.Debug("Requesting WorldCat access token", "url", p.config.TokenURL)

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	tok, err := p.config.Token(ctx)
	if err != nil {
		p.token = ""
		authErr := &AuthError{Err: err}
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			authErr.StatusCode = retrieveErr.Response.StatusCode
			authErr.Body = string(retrieveErr.Body)
		}
		return "", authErr
	}

	p.token = tok.AccessToken
	// A zero expiry means the server sent no TTL; such a token is only used once
	p.expiry = time.Time{}
	if !tok.Expiry.IsZero() {
		p.expiry = tok.Expiry.Add(-ExpiryMargin)
	}

	slog.Debug("Obtained WorldCat access token", "expires", p.expiry)
	return p.token, nil
}
