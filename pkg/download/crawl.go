package download

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nlpaueb/edgar-crawler/pkg/edgar"
)

// Crawling one filing means fetching its index page, scraping the filing
// date, period of report, registrant details and document links from it,
// and downloading the best document: the primary htm when the index lists
// one, otherwise the complete submission text file.

var (
	fiscalYearEndRe  = regexp.MustCompile(`Fiscal Year End: *(\d{4})`)
	filingTypeNameRe = regexp.MustCompile(`[-/\\]`)
)

// incorporationLabels are the spellings the index pages use for the state
// of incorporation field.
var incorporationLabels = map[string]bool{
	"State of Incorp.":        true,
	"State of Inc.":           true,
	"State of Incorporation.": true,
}

// CrawlFiling completes an index row into a full FilingRecord and downloads
// the filing document under rawDir/<type>/. A nil error means the record is
// complete and the file is on disk.
func (c *Client) CrawlFiling(ctx context.Context, rec edgar.FilingRecord, filingTypes []string, rawDir string, nonPeriodicTypes map[string]bool, cache *CompanyInfoCache) (*edgar.FilingRecord, error) {
	body, err := c.Get(ctx, rec.HTMLIndex)
	if err != nil {
		return nil, fmt.Errorf("fetch index page: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("parse index page: %w", err)
	}

	nonPeriodic := nonPeriodicTypes[rec.Type]

	// Filing date and period of report sit in infoHead/info div pairs.
	doc.Find("div.infoHead").Each(func(_ int, head *goquery.Selection) {
		value := strings.TrimSpace(head.Next().Text())
		switch strings.TrimSpace(head.Text()) {
		case "Filing Date":
			rec.FilingDate = value
		case "Period of Report":
			rec.PeriodOfReport = value
		}
	})
	if rec.PeriodOfReport == "" && !nonPeriodic {
		return nil, fmt.Errorf("no period of report on %s", rec.HTMLIndex)
	}

	companyInfo := doc.Find("div.companyInfo p.identInfo").First().Text()
	for _, info := range strings.Split(companyInfo, "|") {
		label, value, ok := strings.Cut(info, ":")
		if !ok {
			continue
		}
		label = strings.TrimSpace(label)
		if incorporationLabels[label] {
			rec.StateOfInc = strings.TrimSpace(value)
		}
		if label == "State location" {
			rec.StateLocation = strings.TrimSpace(value)
		}
	}
	if m := fiscalYearEndRe.FindStringSubmatch(companyInfo); m != nil {
		rec.FiscalYearEnd = m[1]
	}
	if sic := doc.Find(`.identInfo a[href*="SIC"]`).First(); sic.Length() > 0 {
		rec.SIC = strings.TrimSpace(sic.Text())
	}

	// Fill remaining holes from the per-company cache.
	if rec.SIC == "" || rec.StateOfInc == "" || rec.StateLocation == "" || rec.FiscalYearEnd == "" {
		info, err := cache.lookup(ctx, c, rec.CIK)
		if err != nil {
			return nil, fmt.Errorf("company info for CIK %s: %w", rec.CIK, err)
		}
		if rec.SIC == "" {
			rec.SIC = info.SIC
		}
		if rec.StateOfInc == "" {
			rec.StateOfInc = info.StateOfInc
		}
		if rec.StateLocation == "" {
			rec.StateLocation = info.StateLocation
		}
		if rec.FiscalYearEnd == "" {
			rec.FiscalYearEnd = info.FiscalYearEnd
		}
	}

	htmLink, completeTextLink, filingType := findDocumentLinks(doc, filingTypes, &rec)

	var downloadURL, extension string
	switch {
	case htmLink != "":
		// iXBRL viewer links need unwrapping to reach the raw document.
		if strings.Contains(htmLink, "ix?doc=/") {
			downloadURL = strings.Replace(htmLink, "ix?doc=/", "", 1)
			rec.HTMFileLink = downloadURL
			extension = "htm"
		} else {
			downloadURL = htmLink
			extension = lastDotSuffix(htmLink)
		}
	case completeTextLink != "":
		downloadURL = completeTextLink
		extension = lastDotSuffix(completeTextLink)
	default:
		return nil, fmt.Errorf("no downloadable document on %s", rec.HTMLIndex)
	}

	accession := strings.TrimSuffix(
		filepath.Base(rec.CompleteTextFileLink),
		filepath.Ext(rec.CompleteTextFileLink),
	)
	typeName := filingTypeNameRe.ReplaceAllString(filingType, "")
	if nonPeriodic {
		rec.Filename = fmt.Sprintf("%s_%s_%s.%s", rec.CIK, typeName, accession, extension)
	} else {
		rec.Filename = fmt.Sprintf("%s_%s_%s_%s.%s", rec.CIK, typeName, periodYear(rec.PeriodOfReport), accession, extension)
	}

	destDir := filepath.Join(rawDir, filingType)
	if err := c.downloadFile(ctx, downloadURL, filepath.Join(destDir, rec.Filename)); err != nil {
		return nil, err
	}
	return &rec, nil
}

// findDocumentLinks scans the Document Format Files table for the primary
// document of one of the wanted filing types, falling back to the complete
// submission text file.
func findDocumentLinks(doc *goquery.Document, filingTypes []string, rec *edgar.FilingRecord) (htmLink, completeTextLink, filingType string) {
	filingType = rec.Type

	doc.Find(`table[summary="Document Format Files"] tr`).EachWithBreak(func(i int, row *goquery.Selection) bool {
		if i == 0 {
			return true // header row
		}
		cells := row.Find("td")
		if cells.Length() < 4 {
			return true
		}
		rowType := strings.TrimSpace(cells.Eq(3).Text())
		description := strings.TrimSpace(cells.Eq(1).Text())
		href, _ := cells.Eq(2).Find("a").First().Attr("href")

		if containsString(filingTypes, rowType) {
			ext := lastDotSuffix(href)
			if ext == "htm" || ext == "html" {
				filingType = rowType
				htmLink = secBaseURL + href
				rec.HTMFileLink = htmLink
				return false
			}
		} else if description == "Complete submission text file" {
			completeTextLink = secBaseURL + href
			rec.CompleteTextFileLink = completeTextLink
			return false
		}
		return true
	})
	return htmLink, completeTextLink, filingType
}

func (c *Client) downloadFile(ctx context.Context, url, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	body, err := c.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	return os.WriteFile(path, body, 0o644)
}

// periodYear is the year component of a scraped period-of-report date.
// Index pages occasionally carry truncated values; those pass through as-is.
func periodYear(period string) string {
	if len(period) > 4 {
		return period[:4]
	}
	return period
}

func lastDotSuffix(s string) string {
	if i := strings.LastIndex(s, "."); i >= 0 {
		return s[i+1:]
	}
	return ""
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
