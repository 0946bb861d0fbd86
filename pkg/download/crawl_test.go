package download

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/nlpaueb/edgar-crawler/pkg/edgar"
)

const indexPageTable = `<html><body>
<table summary="Document Format Files">
<tr><th>Seq</th><th>Description</th><th>Document</th><th>Type</th><th>Size</th></tr>
<tr><td>1</td><td>10-K</td><td><a href="/Archives/edgar/data/320193/aapl-20230930.htm">aapl-20230930.htm</a></td><td>10-K</td><td>100</td></tr>
<tr><td>2</td><td>XBRL TAXONOMY</td><td><a href="/Archives/edgar/data/320193/aapl-20230930.xsd">aapl-20230930.xsd</a></td><td>EX-101.SCH</td><td>50</td></tr>
<tr><td>&nbsp;</td><td>Complete submission text file</td><td><a href="/Archives/edgar/data/320193/0000320193-23-000106.txt">0000320193-23-000106.txt</a></td><td>&nbsp;</td><td>200</td></tr>
</table>
</body></html>`

func TestFindDocumentLinksPrimaryDocument(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(indexPageTable))
	if err != nil {
		t.Fatal(err)
	}

	rec := edgar.FilingRecord{Type: "10-K"}
	htmLink, completeTextLink, filingType := findDocumentLinks(doc, []string{"10-K"}, &rec)

	if htmLink != secBaseURL+"/Archives/edgar/data/320193/aapl-20230930.htm" {
		t.Errorf("htm link = %q", htmLink)
	}
	if completeTextLink != "" {
		t.Errorf("complete text link = %q, want empty once the htm is found", completeTextLink)
	}
	if filingType != "10-K" {
		t.Errorf("filing type = %q", filingType)
	}
	if rec.HTMFileLink != htmLink {
		t.Errorf("record htm link = %q", rec.HTMFileLink)
	}
}

func TestFindDocumentLinksTextFallback(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(indexPageTable))
	if err != nil {
		t.Fatal(err)
	}

	// None of the rows carries a wanted type, so the complete submission
	// text file is the download target.
	rec := edgar.FilingRecord{Type: "10-Q"}
	htmLink, completeTextLink, _ := findDocumentLinks(doc, []string{"10-Q"}, &rec)

	if htmLink != "" {
		t.Errorf("htm link = %q, want empty", htmLink)
	}
	want := secBaseURL + "/Archives/edgar/data/320193/0000320193-23-000106.txt"
	if completeTextLink != want {
		t.Errorf("complete text link = %q, want %q", completeTextLink, want)
	}
	if rec.CompleteTextFileLink != want {
		t.Errorf("record complete text link = %q", rec.CompleteTextFileLink)
	}
}

func TestPeriodYear(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2023-09-30", "2023"},
		{"2023", "2023"},
		{"202", "202"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := periodYear(tt.in); got != tt.want {
			t.Errorf("periodYear(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
