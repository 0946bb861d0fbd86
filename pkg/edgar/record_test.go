package edgar

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testRecordMetadata() FilingRecord {
	return FilingRecord{
		CIK:                  "320193",
		Company:              "Apple Inc.",
		Type:                 "10-K",
		Date:                 "2023-11-03",
		CompleteTextFileLink: "https://www.sec.gov/Archives/edgar/data/320193/0000320193-23-000106.txt",
		HTMLIndex:            "https://www.sec.gov/Archives/edgar/data/320193/0000320193-23-000106-index.html",
		PeriodOfReport:       "2023-09-30",
		SIC:                  "3571",
		Filename:             "320193_10K_2023_0000320193-23-000106.htm",
	}
}

func TestWriteRecordSegmentedFiling(t *testing.T) {
	record := &SegmentedFiling{
		Metadata: testRecordMetadata(),
		Sections: []ItemSection{
			{Key: "item_1", Text: "We design <b>devices</b> & services."},
			{Key: "item_1A", Text: ""},
		},
	}

	path := filepath.Join(t.TempDir(), "out", "record.json")
	if err := WriteRecord(path, record); err != nil {
		t.Fatalf("WriteRecord: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	out := string(raw)

	// Key order is part of the dataset format: metadata first, then the
	// sections in schema order.
	keys := []string{
		`"cik"`, `"company"`, `"filing_type"`, `"filing_date"`,
		`"period_of_report"`, `"sic"`, `"state_of_inc"`, `"state_location"`,
		`"fiscal_year_end"`, `"filing_html_index"`, `"htm_filing_link"`,
		`"complete_text_filing_link"`, `"filename"`, `"item_1"`, `"item_1A"`,
	}
	last := -1
	for _, key := range keys {
		idx := strings.Index(out, key)
		if idx < 0 {
			t.Fatalf("key %s missing from output:\n%s", key, out)
		}
		if idx < last {
			t.Errorf("key %s out of order", key)
		}
		last = idx
	}

	if !strings.Contains(out, "<b>devices</b> & services") {
		t.Errorf("section text was HTML-escaped:\n%s", out)
	}

	var decoded map[string]string
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["filing_date"] != "2023-11-03" {
		t.Errorf("filing_date = %q", decoded["filing_date"])
	}
	if decoded["item_1A"] != "" {
		t.Errorf("item_1A = %q, want empty string", decoded["item_1A"])
	}
}

func TestWriteRecordOwnershipFiling(t *testing.T) {
	meta := testRecordMetadata()
	meta.Type = "4"
	record := &OwnershipFiling{
		Metadata: meta,
		Data: &Form4Data{
			DerivativeTransactions:    []DerivativeTransaction{},
			NonDerivativeTransactions: []NonDerivativeTransaction{},
			Footnotes:                 map[string]string{"F1": "A note."},
			Remarks:                   "None",
		},
	}

	path := filepath.Join(t.TempDir(), "record.json")
	if err := WriteRecord(path, record); err != nil {
		t.Fatalf("WriteRecord: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	// The form payload's keys sit at the top level next to the metadata.
	if _, ok := decoded["derivative_transactions"]; !ok {
		t.Errorf("payload keys not spliced into the record: %v", decoded)
	}
	if _, ok := decoded["Data"]; ok {
		t.Errorf("payload nested under a Data key: %v", decoded)
	}
	if decoded["cik"] != "320193" {
		t.Errorf("cik = %v", decoded["cik"])
	}
	if decoded["remarks"] != "None" {
		t.Errorf("remarks = %v", decoded["remarks"])
	}
}

func TestWriteRecordLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "record.json")
	if err := WriteRecord(path, &SegmentedFiling{Metadata: testRecordMetadata()}); err != nil {
		t.Fatalf("WriteRecord: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "record.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory contents = %v, want only record.json", names)
	}
}
