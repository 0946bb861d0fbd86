// Package download retrieves filings from SEC EDGAR: the quarterly
// full-index archives, the per-filing index pages, and the filing documents
// themselves. All traffic goes through a throttled, retrying Client, since
// EDGAR both rate-limits and temporarily bans noisy crawlers.
package download

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	fullIndexBaseURL  = "https://www.sec.gov/Archives/edgar/full-index"
	archivesBaseURL   = "https://www.sec.gov/Archives/"
	secBaseURL        = "https://www.sec.gov"
	companyTickersURL = "https://www.sec.gov/files/company_tickers.json"
	companyBrowseURL  = "https://www.sec.gov/cgi-bin/browse-edgar?CIK="

	// banPageMarker appears in the HTML page EDGAR serves instead of the
	// requested resource once it has throttled a client.
	banPageMarker = "will be managed until action is taken to declare your traffic."

	maxAttempts   = 5
	backoffFactor = 200 * time.Millisecond

	// EDGAR allows at most 10 requests per second per client.
	requestsPerSecond = 10
)

// retryStatus are the HTTP statuses worth retrying with backoff.
var retryStatus = map[int]bool{
	400: true, 401: true, 403: true,
	500: true, 502: true, 503: true, 504: true, 505: true,
}

// Client is a rate-limited EDGAR HTTP client. EDGAR rejects requests without
// a descriptive User-Agent, so one must be supplied.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	log        *slog.Logger
}

func NewClient(userAgent string, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		userAgent:  userAgent,
		log:        log,
	}
}

// Get fetches url with throttling, exponential backoff over retryable
// statuses, and detection of the EDGAR ban page.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			delay := backoffFactor * (1 << (attempt - 1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, err := c.getOnce(ctx, url)
		if err != nil {
			lastErr = err
			c.log.Debug("request failed, retrying", "url", url, "attempt", attempt+1, "err", err)
			continue
		}
		return body, nil
	}
	return nil, fmt.Errorf("giving up on %s after %d attempts: %w", url, maxAttempts, lastErr)
}

func (c *Client) getOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if retryStatus[resp.StatusCode] {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if strings.Contains(string(body), banPageMarker) {
		return nil, fmt.Errorf("traffic throttled by EDGAR")
	}
	return body, nil
}
