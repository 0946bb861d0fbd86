package download

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// CompanyInfo is what the company browse page knows about a registrant.
// Filing index pages frequently omit some of these fields, so they are
// crawled once per CIK and cached on disk across runs.
type CompanyInfo struct {
	CompanyName   string `json:"Company Name"`
	SIC           string `json:"SIC"`
	StateLocation string `json:"State location"`
	StateOfInc    string `json:"State of Inc"`
	FiscalYearEnd string `json:"Fiscal Year End"`
}

// CompanyInfoCache is a JSON-file-backed CIK -> CompanyInfo map, safe for
// concurrent use.
type CompanyInfoCache struct {
	path string

	mu      sync.Mutex
	entries map[string]CompanyInfo
}

// LoadCompanyInfoCache reads the cache file; a missing file yields an empty
// cache.
func LoadCompanyInfoCache(path string) (*CompanyInfoCache, error) {
	cache := &CompanyInfoCache{path: path, entries: map[string]CompanyInfo{}}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cache, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &cache.entries); err != nil {
		return nil, err
	}
	return cache, nil
}

func (c *CompanyInfoCache) get(cik string) (CompanyInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	info, ok := c.entries[cik]
	return info, ok
}

func (c *CompanyInfoCache) put(cik string, info CompanyInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cik] = info

	raw, err := json.MarshalIndent(c.entries, "", "    ")
	if err != nil {
		return err
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}

// lookup returns the cached info for a CIK, crawling the company browse page
// on a miss.
func (c *CompanyInfoCache) lookup(ctx context.Context, client *Client, cik string) (CompanyInfo, error) {
	if info, ok := c.get(cik); ok {
		return info, nil
	}

	body, err := client.Get(ctx, companyBrowseURL+cik)
	if err != nil {
		return CompanyInfo{}, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return CompanyInfo{}, err
	}

	info := parseCompanyInfo(doc)
	if err := c.put(cik, info); err != nil {
		return info, err
	}
	return info, nil
}

// parseCompanyInfo extracts the registrant details from a company browse
// page. The identInfo paragraph mixes links, text nodes and spans, so the
// fields are recognized by markers in each node's markup.
func parseCompanyInfo(doc *goquery.Document) CompanyInfo {
	var info CompanyInfo

	companyDiv := doc.Find("div.companyInfo").First()
	if companyDiv.Length() == 0 {
		return info
	}
	info.CompanyName = strings.TrimSpace(firstTextNode(companyDiv.Find("span.companyName").First()))

	contents := companyDiv.Find("p.identInfo").First().Contents()
	n := contents.Length()
	for i := 0; i < n; i++ {
		node := contents.Eq(i)
		markup, err := goquery.OuterHtml(node)
		if err != nil {
			continue
		}
		switch {
		case strings.Contains(markup, ";SIC="):
			info.SIC = strings.TrimSpace(node.Text())
		case strings.Contains(markup, ";State="):
			info.StateLocation = strings.TrimSpace(node.Text())
		case strings.Contains(markup, "State of Inc"):
			if i+1 < n {
				info.StateOfInc = strings.TrimSpace(contents.Eq(i + 1).Text())
			}
		case strings.Contains(markup, "Fiscal Year End"):
			parts := strings.Fields(markup)
			if len(parts) > 0 {
				info.FiscalYearEnd = parts[len(parts)-1]
			}
		}
	}
	return info
}

// firstTextNode returns the text of the selection's first child text node,
// skipping nested elements such as the CIK link inside the company name.
func firstTextNode(sel *goquery.Selection) string {
	for _, node := range sel.Nodes {
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			if child.Type == html.TextNode {
				return child.Data
			}
		}
	}
	return ""
}
