// Package edgar fetches normalized company financials from SEC EDGAR's
// structured APIs: ticker-to-CIK resolution, XBRL companyfacts, and the
// filing index page for source references. It feeds the calibration
// layer; the valuation engine itself never touches the network.
package edgar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	companyTickersURL = "https://www.sec.gov/files/company_tickers.json"
	companyFactsURL   = "https://data.sec.gov/api/xbrl/companyfacts/CIK%s.json"
	browseFilingsURL  = "https://www.sec.gov/cgi-bin/browse-edgar?action=getcompany&CIK=%s&type=10-K&owner=include&count=10"
)

// Client talks to SEC EDGAR. The SEC requires a descriptive User-Agent
// with contact information on every request.
type Client struct {
	httpClient *http.Client
	userAgent  string

	tickerMu    sync.RWMutex
	tickerCache map[string]string // TICKER -> zero-padded CIK
}

// NewClient builds an EDGAR client. userAgent must identify the caller
// per SEC fair-access guidelines.
func NewClient(userAgent string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		userAgent:  userAgent,
	}
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// ResolveCIK maps a ticker symbol to its zero-padded CIK using the SEC's
// company_tickers.json. The full table is cached after the first call.
func (c *Client) ResolveCIK(ctx context.Context, ticker string) (string, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	c.tickerMu.RLock()
	cik, ok := c.tickerCache[ticker]
	c.tickerMu.RUnlock()
	if ok {
		return cik, nil
	}

	body, err := c.get(ctx, companyTickersURL)
	if err != nil {
		return "", err
	}

	// The file is an object keyed by row index, not an array.
	var table map[string]struct {
		CIK    int    `json:"cik_str"`
		Ticker string `json:"ticker"`
		Title  string `json:"title"`
	}
	if err := json.Unmarshal(body, &table); err != nil {
		return "", fmt.Errorf("decoding company tickers: %w", err)
	}

	c.tickerMu.Lock()
	if c.tickerCache == nil {
		c.tickerCache = make(map[string]string, len(table))
	}
	for _, row := range table {
		c.tickerCache[strings.ToUpper(row.Ticker)] = fmt.Sprintf("%010d", row.CIK)
	}
	cik, ok = c.tickerCache[ticker]
	c.tickerMu.Unlock()

	if !ok {
		return "", fmt.Errorf("ticker %q not found in SEC company table", ticker)
	}
	return cik, nil
}

// CompanyFacts fetches the full XBRL companyfacts document for a CIK.
func (c *Client) CompanyFacts(ctx context.Context, cik string) (*CompanyFacts, error) {
	body, err := c.get(ctx, fmt.Sprintf(companyFactsURL, cik))
	if err != nil {
		return nil, err
	}

	var facts CompanyFacts
	if err := json.Unmarshal(body, &facts); err != nil {
		return nil, fmt.Errorf("decoding companyfacts for CIK %s: %w", cik, err)
	}
	return &facts, nil
}
