package edgar

import (
	"fmt"
	"time"
)

// Item schemas per filing family. Identifiers are schema keys, not display
// strings: "1A" for 10-K item 1A, "5.02" for 8-K items, and compound
// "part_2__1A" ids for 10-Q items that live inside a part. "SIGNATURE" is the
// terminal section of every narrative schema.
var (
	ItemList10K = []string{
		"1", "1A", "1B", "1C", "2", "3", "4", "5", "6", "7", "7A", "8",
		"9", "9A", "9B", "9C", "10", "11", "12", "13", "14", "15", "16",
		"SIGNATURE",
	}

	ItemList8K = []string{
		"1.01", "1.02", "1.03", "1.04", "1.05",
		"2.01", "2.02", "2.03", "2.04", "2.05", "2.06",
		"3.01", "3.02", "3.03",
		"4.01", "4.02",
		"5.01", "5.02", "5.03", "5.04", "5.05", "5.06", "5.07", "5.08",
		"6.01", "6.02", "6.03", "6.04", "6.05",
		"7.01", "8.01", "9.01",
		"SIGNATURE",
	}

	// ItemList8KObsolete is the numbering 8-K filings used before the SEC
	// renamed the items in August 2004.
	ItemList8KObsolete = []string{
		"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12",
		"SIGNATURE",
	}

	ItemList10Q = []string{
		"part_1__1", "part_1__2", "part_1__3", "part_1__4",
		"part_2__1", "part_2__1A", "part_2__2", "part_2__3", "part_2__4",
		"part_2__5", "part_2__6",
		"SIGNATURE",
	}

	ItemListForm3 = []string{
		"1", "2", "3", "4", "5", "Table I", "Table II", "Notes", "Remarks",
		"SIGNATURE",
	}

	ItemListForm4 = []string{
		"1", "2", "3", "4", "5", "Table I", "Table II", "Notes", "Remarks",
		"SIGNATURE",
	}

	ItemListSC13D = []string{
		"1", "2", "3", "4", "5", "6", "7", "SIGNATURE",
	}

	ItemListSC13G = []string{
		"1", "2", "3", "4", "5", "6", "7", "SIGNATURE",
	}
)

// obsoleteCutoff8K: 8-K filings dated on or before this use the old item
// numbering.
var obsoleteCutoff8K = time.Date(2004, time.August, 23, 0, 0, 0, 0, time.UTC)

// ownershipTypes are the filing types whose payload is a structured XML
// document rather than narrative text.
var ownershipTypes = map[string]bool{
	"3": true, "4": true,
	"SC13D": true, "SC13D/A": true,
	"SC13G": true, "SC13G/A": true,
}

// IsOwnershipType reports whether filingType carries its data as embedded XML.
func IsOwnershipType(filingType string) bool {
	return ownershipTypes[filingType]
}

// ItemsForFiling returns the item schema for a filing type. filingDate is
// used only to pick between the current and obsolete 8-K schemas; an
// unparsable date selects the current one.
func ItemsForFiling(filingType, filingDate string) ([]string, error) {
	switch filingType {
	case "10-K":
		return ItemList10K, nil
	case "8-K":
		if parseFilingDate(filingDate).After(obsoleteCutoff8K) {
			return ItemList8K, nil
		}
		return ItemList8KObsolete, nil
	case "10-Q":
		return ItemList10Q, nil
	case "3":
		return ItemListForm3, nil
	case "4":
		return ItemListForm4, nil
	case "SC13D", "SC13D/A":
		return ItemListSC13D, nil
	case "SC13G", "SC13G/A":
		return ItemListSC13G, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFilingType, filingType)
}

// parseFilingDate accepts the date formats that occur in the quarterly
// indices. Anything unparsable is treated as current.
func parseFilingDate(date string) time.Time {
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04:05", "01/02/2006"} {
		if t, err := time.Parse(layout, date); err == nil {
			return t
		}
	}
	return time.Now().UTC()
}

// FilterItems intersects the user's requested items with a filing schema,
// preserving schema order is not required: the request order is kept, as only
// membership matters downstream. An empty request selects the full schema; a
// request with no overlap is a schema mismatch.
func FilterItems(requested, schema []string) ([]string, error) {
	if len(requested) == 0 {
		return schema, nil
	}
	var overlap []string
	for _, item := range requested {
		if containsItem(schema, item) {
			overlap = append(overlap, item)
		}
	}
	if len(overlap) == 0 {
		return nil, fmt.Errorf("%w: requested %v", ErrSchemaMismatch, requested)
	}
	return overlap, nil
}

func containsItem(items []string, item string) bool {
	for _, it := range items {
		if it == item {
			return true
		}
	}
	return false
}
