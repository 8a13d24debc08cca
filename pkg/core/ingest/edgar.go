// Package ingest provides SEC EDGAR API integration for fetching company facts.
// API Documentation: https://www.sec.gov/edgar/sec-api-documentation
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	// SEC EDGAR API endpoints
	SECDataBaseURL     = "https://data.sec.gov"
	SECCompanyFactsURL = "%s/api/xbrl/companyfacts/CIK%s.json"
	SECTickersURL      = "https://www.sec.gov/files/company_tickers.json"

	// Required User-Agent per SEC guidelines; override with SEC_USER_AGENT
	DefaultUserAgent = "QuarterlyFinancials/1.0 (contact@example.com)"
)

// EDGARClient handles SEC EDGAR API requests.
type EDGARClient struct {
	httpClient *http.Client
	baseURL    string
	tickersURL string
	userAgent  string
}

// NewEDGARClient creates a new SEC EDGAR API client.
func NewEDGARClient() *EDGARClient {
	ua := os.Getenv("SEC_USER_AGENT")
	if ua == "" {
		ua = DefaultUserAgent
	}
	return &EDGARClient{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:    SECDataBaseURL,
		tickersURL: SECTickersURL,
		userAgent:  ua,
	}
}

// WithEndpoints points the client at alternative hosts (mirrors, tests).
func (c *EDGARClient) WithEndpoints(baseURL, tickersURL string) *EDGARClient {
	c.baseURL = strings.TrimRight(baseURL, "/")
	c.tickersURL = tickersURL
	return c
}

// ErrInvalidCIK is returned for identifiers that are not 1-10 decimal digits.
var ErrInvalidCIK = errors.New("invalid CIK")

// NormalizeCIK zero-pads a CIK to 10 digits (e.g., "320193" -> "0000320193").
// An optional "CIK" prefix is accepted; anything else but digits is rejected.
func NormalizeCIK(cik string) (string, error) {
	raw := cik
	cik = strings.TrimSpace(strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(cik)), "CIK"))
	if len(cik) == 0 || len(cik) > 10 {
		return "", fmt.Errorf("%w: %q", ErrInvalidCIK, raw)
	}
	for _, r := range cik {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: %q", ErrInvalidCIK, raw)
		}
	}
	return strings.Repeat("0", 10-len(cik)) + cik, nil
}

// FetchCompanyFacts downloads the raw companyfacts document for a CIK.
func (c *EDGARClient) FetchCompanyFacts(ctx context.Context, cik string) ([]byte, error) {
	cik, err := NormalizeCIK(cik)
	if err != nil {
		return nil, err
	}
	return c.get(ctx, fmt.Sprintf(SECCompanyFactsURL, c.baseURL, cik))
}

// LookupCIKByTicker finds the CIK for a given ticker symbol using the SEC
// ticker mapping file.
func (c *EDGARClient) LookupCIKByTicker(ctx context.Context, ticker string) (string, error) {
	body, err := c.get(ctx, c.tickersURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch ticker mapping: %w", err)
	}

	// Response structure: { "0": {"cik_str": 320193, "ticker": "AAPL", "title": "..."}, ... }
	var mapping map[string]struct {
		CIK    int    `json:"cik_str"`
		Ticker string `json:"ticker"`
		Title  string `json:"title"`
	}
	if err := json.Unmarshal(body, &mapping); err != nil {
		return "", fmt.Errorf("failed to parse ticker mapping: %w", err)
	}

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	for _, entry := range mapping {
		if entry.Ticker == ticker {
			return fmt.Sprintf("%010d", entry.CIK), nil
		}
	}

	return "", fmt.Errorf("ticker %s not found in SEC database", ticker)
}

func (c *EDGARClient) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// SEC requires User-Agent header
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("SEC API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("SEC API returned status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}
