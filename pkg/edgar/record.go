package edgar

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Output records. Key order in the JSON matters to downstream consumers of
// the dataset: metadata first, then sections in schema order, so both record
// kinds marshal their keys explicitly.

// ItemSection is one resolved section keyed the way it appears in the output
// ("item_7A", "part_2_item_1", "SIGNATURE", or a bare part key like "part_1").
type ItemSection struct {
	Key  string
	Text string
}

// SegmentedFiling is the extraction result for a narrative filing.
type SegmentedFiling struct {
	Metadata FilingRecord
	Sections []ItemSection
}

// OwnershipFiling is the extraction result for an XML-based ownership form;
// Data is one of *Form3Data, *Form4Data or *Schedule13Data.
type OwnershipFiling struct {
	Metadata FilingRecord
	Data     any
}

func metadataPairs(m FilingRecord) []ItemSection {
	return []ItemSection{
		{"cik", m.CIK},
		{"company", m.Company},
		{"filing_type", m.Type},
		{"filing_date", m.Date},
		{"period_of_report", m.PeriodOfReport},
		{"sic", m.SIC},
		{"state_of_inc", m.StateOfInc},
		{"state_location", m.StateLocation},
		{"fiscal_year_end", m.FiscalYearEnd},
		{"filing_html_index", m.HTMLIndex},
		{"htm_filing_link", m.HTMFileLink},
		{"complete_text_filing_link", m.CompleteTextFileLink},
		{"filename", m.Filename},
	}
}

// encodeJSONValue marshals v without HTML escaping, so section text keeps
// its <, > and & characters readable.
func encodeJSONValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (f *SegmentedFiling) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	pairs := append(metadataPairs(f.Metadata), f.Sections...)
	for i, p := range pairs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := encodeJSONValue(p.Key)
		if err != nil {
			return nil, err
		}
		value, err := encodeJSONValue(p.Text)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (f *OwnershipFiling) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range metadataPairs(f.Metadata) {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := encodeJSONValue(p.Key)
		if err != nil {
			return nil, err
		}
		value, err := encodeJSONValue(p.Text)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	// Splice the form payload's keys into the same object.
	data, err := encodeJSONValue(f.Data)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) > 2 && data[0] == '{' {
		buf.WriteByte(',')
		buf.Write(data[1 : len(data)-1])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// WriteRecord writes a record as indented JSON via a temp file in the target
// directory followed by a rename, so a crash never leaves a partial file.
func WriteRecord(path string, record any) error {
	var indented bytes.Buffer
	enc := json.NewEncoder(&indented)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(record); err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(indented.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
