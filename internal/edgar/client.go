// Package edgar is the SEC EDGAR client: filing indices and documents over
// REST, every request gated by a shared token-bucket rate limiter and
// retried with exponential backoff on transient failures.
//
// No API key required. Requests must carry a User-Agent naming the client
// and a contact per SEC policy.
// Docs: https://www.sec.gov/edgar/sec-api-documentation
// Rate limit: 10 requests/second per user agent.
package edgar

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/edgarintel/internal/infra"
	"github.com/seenimoa/edgarintel/pkg/models"
	"github.com/seenimoa/edgarintel/pkg/utils"
)

const (
	defaultBaseURL = "https://www.sec.gov"  // registry, feed, archives
	defaultDataURL = "https://data.sec.gov" // submissions JSON API

	// SEC requires a User-Agent with a client name and contact for EDGAR
	// requests. Operators override this with their own contact address.
	defaultUserAgent = "edgarintel/1.0 (github.com/seenimoa/edgarintel)"

	// The SEC ceiling is 10 req/s; default below it to leave headroom.
	defaultRatePerSec = 8
	defaultBurst      = 8

	defaultCacheTTL = 15 * time.Minute
)

// Options configure a Client. Zero values fall back to the defaults above.
type Options struct {
	BaseURL    string
	DataURL    string
	UserAgent  string
	RatePerSec int
	Burst      int
	CacheTTL   time.Duration
	Retry      infra.RetryConfig
}

// Client fetches filing indices and documents from SEC EDGAR. All requests
// share one rate limiter, so the aggregate rate stays under the configured
// ceiling no matter how many workers call in concurrently.
type Client struct {
	baseURL   string
	dataURL   string
	userAgent string
	limiter   *infra.RateLimiter
	cache     *infra.Cache
	retry     infra.RetryConfig
	parser    *gofeed.Parser
}

// New creates an EDGAR client.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.DataURL == "" {
		opts.DataURL = defaultDataURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.RatePerSec < 1 {
		opts.RatePerSec = defaultRatePerSec
	}
	if opts.Burst < 1 {
		opts.Burst = defaultBurst
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	if opts.Retry.MaxAttempts < 1 {
		opts.Retry = infra.DefaultRetryConfig()
	}

	return &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		dataURL:   strings.TrimRight(opts.DataURL, "/"),
		userAgent: opts.UserAgent,
		limiter:   infra.NewPerSecond(opts.RatePerSec, opts.Burst),
		cache:     infra.NewCache(opts.CacheTTL),
		retry:     opts.Retry,
		parser:    gofeed.NewParser(),
	}
}

// Ping checks connectivity to EDGAR using a known-stable submissions URL.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	url := c.dataURL + "/submissions/CIK0000320193.json" // Apple
	body, _, err := infra.DoGet(ctx, url, c.headers())
	if err != nil {
		return fmt.Errorf("edgar ping: %w", err)
	}
	body.Close()
	return nil
}

// --- Index operations ---

// CompanyTickers returns every registrant in the company tickers file in
// its published order. The live file is a map keyed by row number, so keys
// are sorted numerically before conversion. Rows without a CIK or title are
// dropped. The result is cached for the client's TTL.
func (c *Client) CompanyTickers(ctx context.Context) ([]models.Institution, error) {
	const cacheKey = "company_tickers"
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.([]models.Institution), nil
	}

	raw, err := c.fetch(ctx, "company tickers", c.baseURL+"/files/company_tickers.json")
	if err != nil {
		return nil, fmt.Errorf("fetch company tickers: %w", err)
	}

	var rows map[string]tickerEntry
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("parse company tickers: %w", err)
	}

	keys := make([]string, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, _ := strconv.Atoi(keys[i])
		b, _ := strconv.Atoi(keys[j])
		return a < b
	})

	companies := make([]models.Institution, 0, len(rows))
	for _, k := range keys {
		row := rows[k]
		if row.CIK == 0 || row.Title == "" {
			continue
		}
		cik := strconv.FormatInt(row.CIK, 10)
		companies = append(companies, models.Institution{
			CIK:        cik,
			Name:       row.Title,
			Ticker:     row.Ticker,
			FilingType: models.FilingADV,
			SourceURL:  c.baseURL + "/cgi-bin/browse-edgar?action=getcompany&CIK=" + cik,
		})
	}

	c.cache.Set(cacheKey, companies)
	return companies, nil
}

// --- Document operations ---

// Submissions returns the raw submissions JSON for a CIK: entity metadata,
// business address, and the recent-filings index. Cached per CIK.
func (c *Client) Submissions(ctx context.Context, cik string) ([]byte, error) {
	cacheKey := "submissions:" + cik
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.([]byte), nil
	}

	url := fmt.Sprintf("%s/submissions/CIK%s.json", c.dataURL, utils.PadCIK(cik))
	raw, err := c.fetch(ctx, "submissions", url)
	if err != nil {
		return nil, fmt.Errorf("fetch submissions for CIK %s: %w", cik, err)
	}

	c.cache.Set(cacheKey, raw)
	return raw, nil
}

// FilingDocument fetches one document from the EDGAR archives. accessionNo
// may carry dashes; the archive path wants them removed.
func (c *Client) FilingDocument(ctx context.Context, cik, accessionNo, primaryDoc string) ([]byte, error) {
	accNoClean := strings.ReplaceAll(accessionNo, "-", "")
	url := fmt.Sprintf("%s/Archives/edgar/data/%s/%s/%s",
		c.baseURL, utils.TrimCIK(cik), accNoClean, primaryDoc)

	raw, err := c.fetch(ctx, "filing document", url)
	if err != nil {
		return nil, fmt.Errorf("fetch filing document %s: %w", accessionNo, err)
	}
	return raw, nil
}

// --- Shared helpers ---

func (c *Client) headers() map[string]string {
	return map[string]string{
		"User-Agent": c.userAgent,
		"Accept":     "application/json, text/html, application/xml",
	}
}

// fetch performs one rate-limited GET with retries. The limiter sits inside
// the retry closure so every attempt, including retries, takes a token.
func (c *Client) fetch(ctx context.Context, operation, url string) ([]byte, error) {
	return infra.WithRetry(ctx, c.retry, operation, func(ctx context.Context) ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return infra.GetBytes(ctx, url, c.headers())
	})
}
