// Package batch drives extraction over a set of filings: it loads the
// filings metadata table produced by the download pipeline and fans the
// extractor out over a worker pool.
package batch

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/nlpaueb/edgar-crawler/pkg/edgar"
)

// metadataColumns is the exact header of the filings metadata CSV. The
// column names are part of the dataset format and shared with its consumers.
var metadataColumns = []string{
	"CIK",
	"Company",
	"Type",
	"Date",
	"complete_text_file_link",
	"html_index",
	"Filing Date",
	"Period of Report",
	"SIC",
	"htm_file_link",
	"State of Inc",
	"State location",
	"Fiscal Year End",
	"filename",
}

func recordToRow(rec edgar.FilingRecord) []string {
	return []string{
		rec.CIK,
		rec.Company,
		rec.Type,
		rec.Date,
		rec.CompleteTextFileLink,
		rec.HTMLIndex,
		rec.FilingDate,
		rec.PeriodOfReport,
		rec.SIC,
		rec.HTMFileLink,
		rec.StateOfInc,
		rec.StateLocation,
		rec.FiscalYearEnd,
		rec.Filename,
	}
}

func rowToRecord(row []string) edgar.FilingRecord {
	get := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	return edgar.FilingRecord{
		CIK:                  get(0),
		Company:              get(1),
		Type:                 get(2),
		Date:                 get(3),
		CompleteTextFileLink: get(4),
		HTMLIndex:            get(5),
		FilingDate:           get(6),
		PeriodOfReport:       get(7),
		SIC:                  get(8),
		HTMFileLink:          get(9),
		StateOfInc:           get(10),
		StateLocation:        get(11),
		FiscalYearEnd:        get(12),
		Filename:             get(13),
	}
}

// ReadMetadata loads the filings metadata CSV. A missing file surfaces as
// an os.IsNotExist error for the caller to decide on.
func ReadMetadata(path string) ([]edgar.FilingRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read metadata csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	records := make([]edgar.FilingRecord, 0, len(rows)-1)
	for _, row := range rows[1:] { // skip header
		records = append(records, rowToRecord(row))
	}
	return records, nil
}

// WriteMetadata writes the filings metadata CSV via a temp file and rename,
// so an interrupted run never truncates the table.
func WriteMetadata(path string, records []edgar.FilingRecord) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.Write(metadataColumns); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	for _, rec := range records {
		if err := w.Write(recordToRow(rec)); err != nil {
			f.Close()
			os.Remove(tmp)
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// FilterByType keeps the records whose filing type is in filingTypes; an
// empty filter keeps everything.
func FilterByType(records []edgar.FilingRecord, filingTypes []string) []edgar.FilingRecord {
	if len(filingTypes) == 0 {
		return records
	}
	typeSet := make(map[string]bool, len(filingTypes))
	for _, t := range filingTypes {
		typeSet[t] = true
	}
	var out []edgar.FilingRecord
	for _, rec := range records {
		if typeSet[rec.Type] {
			out = append(out, rec)
		}
	}
	return out
}
