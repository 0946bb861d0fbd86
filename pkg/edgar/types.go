// Package edgar segments SEC filings (10-K, 10-Q, 8-K and ownership forms)
// into their named items. The entry point is Extractor, which takes a raw
// full-text submission and produces one JSON record per filing with one key
// per item.
package edgar

import "errors"

// Sentinel errors returned by the extraction pipeline. Callers distinguish
// them with errors.Is; everything else is wrapped I/O or parse failure.
var (
	// ErrUnsupportedFilingType is returned when no item schema exists for a
	// filing type.
	ErrUnsupportedFilingType = errors.New("unsupported filing type")

	// ErrSchemaMismatch is returned when none of the requested items belong
	// to the schema of the filing being processed.
	ErrSchemaMismatch = errors.New("requested items not in filing schema")

	// ErrNoSectionsExtracted is returned when every requested item resolved
	// to an empty section; no output file is written for such a filing.
	ErrNoSectionsExtracted = errors.New("no sections extracted")

	// ErrDocumentNotFound is reported when a submission contains no
	// <DOCUMENT> block whose <TYPE> matches the filing family.
	ErrDocumentNotFound = errors.New("no matching document in submission")
)

// FilingRecord is one row of the filings metadata table: everything the
// crawler learned about a filing from the quarterly index and its index page.
type FilingRecord struct {
	CIK                  string
	Company              string
	Type                 string
	Date                 string
	CompleteTextFileLink string
	HTMLIndex            string
	FilingDate           string
	PeriodOfReport       string
	SIC                  string
	HTMFileLink          string
	StateOfInc           string
	StateLocation        string
	FiscalYearEnd        string
	Filename             string
}

// Thresholds collects the empirically tuned constants of the segmentation
// heuristics. Values come from DefaultThresholds; they are grouped here so
// tests can tighten or relax them.
type Thresholds struct {
	// PartSlackChars is the maximum distance, in characters, tolerated
	// between the end of part 1 and the start of part 2 of a 10-Q before
	// the gap is folded back into part 1.
	PartSlackChars int

	// PartImbalanceChars is how much longer part 2 may be than part 1
	// before the partitioner suspects the parts were matched inside the
	// table of contents and retries with leading occurrences skipped.
	PartImbalanceChars int

	// TableDigitRatio and TableSpaceRatio drive the legacy character-count
	// table filter: a table whose stripped text exceeds both ratios is
	// considered numeric. The shipped filter uses background styling
	// instead, but the legacy variant remains available.
	TableDigitRatio float64
	TableSpaceRatio float64
}

// DefaultThresholds returns the tuned values used in production.
func DefaultThresholds() Thresholds {
	return Thresholds{
		PartSlackChars:     200,
		PartImbalanceChars: 5000,
		TableDigitRatio:    0.05,
		TableSpaceRatio:    0.35,
	}
}
