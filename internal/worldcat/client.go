package worldcat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// LookupError is a failed holdings query for a single OCLC number
type LookupError struct {
	OCLCNumber string
	StatusCode int
	Err        error
}

func (e *LookupError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("holdings lookup for OCLC #%s returned status %d: %v", e.OCLCNumber, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("holdings lookup for OCLC #%s failed: %v", e.OCLCNumber, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// Client queries the WorldCat Search API bibs-holdings endpoint
type Client struct {
	BaseURL      string
	Jurisdiction string
	Limit        int
	httpClient   *http.Client
}

// BibsHoldingsResponse is the subset of the bibs-holdings response we consume
type BibsHoldingsResponse struct {
	NumberOfRecords int           `json:"numberOfRecords"`
	BriefRecords    []BriefRecord `json:"briefRecords"`
}

// BriefRecord is one bibliographic match
type BriefRecord struct {
	OCLCNumber         string              `json:"oclcNumber"`
	Title              string              `json:"title"`
	InstitutionHolding *InstitutionHolding `json:"institutionHolding"`
}

// InstitutionHolding lists the institutions holding a record
type InstitutionHolding struct {
	TotalHoldingCount int            `json:"totalHoldingCount"`
	BriefHoldings     []BriefHolding `json:"briefHoldings"`
}

// BriefHolding is one holding institution
type BriefHolding struct {
	InstitutionName   string `json:"institutionName"`
	OCLCSymbol        string `json:"oclcSymbol"`
	InstitutionNumber int    `json:"institutionNumber"`
	Country           string `json:"country"`
	State             string `json:"state"`
}

// NewClient creates a holdings client restricted to one jurisdiction (e.g. US-FL),
// asking for at most limit holdings per record
func NewClient(baseURL, jurisdiction string, limit int, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL:      baseURL,
		Jurisdiction: jurisdiction,
		Limit:        limit,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// HTTPClient exposes the underlying client so the token exchange can share its timeout
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// BibsHoldings fetches the holdings of one OCLC number using a bearer token
func (c *Client) BibsHoldings(ctx context.Context, token, oclcNumber string) (*BibsHoldingsResponse, error) {
	params := url.Values{}
	params.Set("oclcNumber", oclcNumber)
	params.Set("holdingsAllEditions", "false")
	params.Set("holdingsAllVariantRecords", "false")
	params.Set("heldInState", c.Jurisdiction)
	params.Set("limit", strconv.Itoa(c.Limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &LookupError{OCLCNumber: oclcNumber, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &LookupError{OCLCNumber: oclcNumber, Err: fmt.Errorf("failed to send request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &LookupError{OCLCNumber: oclcNumber, StatusCode: resp.StatusCode, Err: errors.New(string(body))}
	}

	var holdings BibsHoldingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&holdings); err != nil {
		return nil, &LookupError{OCLCNumber: oclcNumber, Err: fmt.Errorf("failed to decode response body: %w", err)}
	}

	return &holdings, nil
}
