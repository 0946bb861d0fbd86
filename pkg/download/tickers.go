package download

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// companyTicker is one entry of EDGAR's company_tickers.json.
type companyTicker struct {
	CIK    json.Number `json:"cik_str"`
	Ticker string      `json:"ticker"`
	Title  string      `json:"title"`
}

// ResolveCIKs turns a mixed list of CIK numbers and ticker symbols into a
// CIK set. The ticker mapping is fetched from EDGAR only when at least one
// non-numeric entry is present. Unknown tickers are logged and skipped.
func (c *Client) ResolveCIKs(ctx context.Context, cikTickers []string) (map[string]bool, error) {
	ciks := make(map[string]bool)
	var tickers []string
	for _, entry := range cikTickers {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if _, err := strconv.Atoi(entry); err == nil {
			ciks[entry] = true
		} else {
			tickers = append(tickers, entry)
		}
	}
	if len(tickers) == 0 {
		return ciks, nil
	}

	body, err := c.Get(ctx, companyTickersURL)
	if err != nil {
		return nil, fmt.Errorf("fetch company tickers: %w", err)
	}
	var companies map[string]companyTicker
	if err := json.Unmarshal(body, &companies); err != nil {
		return nil, fmt.Errorf("parse company tickers: %w", err)
	}

	tickerToCIK := make(map[string]string, len(companies))
	for _, company := range companies {
		tickerToCIK[company.Ticker] = company.CIK.String()
	}
	for _, ticker := range tickers {
		cik, ok := tickerToCIK[ticker]
		if !ok {
			c.log.Debug("could not find CIK for ticker", "ticker", ticker)
			continue
		}
		ciks[cik] = true
	}
	return ciks, nil
}

// ReadCIKTickerFile reads a plain list of CIKs or tickers, one per line.
func ReadCIKTickerFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			entries = append(entries, line)
		}
	}
	return entries, scanner.Err()
}
