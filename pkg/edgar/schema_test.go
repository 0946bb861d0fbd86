package edgar

import (
	"errors"
	"testing"
)

func TestItemsForFiling(t *testing.T) {
	tests := []struct {
		filingType string
		filingDate string
		wantFirst  string
		wantLen    int
	}{
		{"10-K", "2022-10-28", "1", len(ItemList10K)},
		{"10-Q", "2023-08-04", "part_1__1", len(ItemList10Q)},
		{"8-K", "2023-05-04", "1.01", len(ItemList8K)},
		{"8-K", "2004-08-24", "1.01", len(ItemList8K)},
		{"8-K", "2004-08-23", "1", len(ItemList8KObsolete)},
		{"8-K", "1999-03-15", "1", len(ItemList8KObsolete)},
		{"8-K", "not a date", "1.01", len(ItemList8K)},
		{"3", "2023-01-01", "1", len(ItemListForm3)},
		{"SC13D/A", "2023-01-01", "1", len(ItemListSC13D)},
	}
	for _, tt := range tests {
		items, err := ItemsForFiling(tt.filingType, tt.filingDate)
		if err != nil {
			t.Errorf("ItemsForFiling(%q, %q): %v", tt.filingType, tt.filingDate, err)
			continue
		}
		if len(items) != tt.wantLen || items[0] != tt.wantFirst {
			t.Errorf("ItemsForFiling(%q, %q) = %d items starting %q, want %d starting %q",
				tt.filingType, tt.filingDate, len(items), items[0], tt.wantLen, tt.wantFirst)
		}
	}
}

func TestItemsForFilingUnsupported(t *testing.T) {
	_, err := ItemsForFiling("DEF 14A", "2023-01-01")
	if !errors.Is(err, ErrUnsupportedFilingType) {
		t.Errorf("err = %v, want ErrUnsupportedFilingType", err)
	}
}

func TestFilterItems(t *testing.T) {
	items, err := FilterItems(nil, ItemList10K)
	if err != nil {
		t.Fatalf("empty request: %v", err)
	}
	if len(items) != len(ItemList10K) {
		t.Errorf("empty request returned %d items, want the full schema", len(items))
	}

	items, err = FilterItems([]string{"7", "7A", "99"}, ItemList10K)
	if err != nil {
		t.Fatalf("partial overlap: %v", err)
	}
	if len(items) != 2 || items[0] != "7" || items[1] != "7A" {
		t.Errorf("partial overlap = %v, want [7 7A]", items)
	}

	_, err = FilterItems([]string{"99"}, ItemList10K)
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Errorf("no overlap: err = %v, want ErrSchemaMismatch", err)
	}
}

func TestIsOwnershipType(t *testing.T) {
	for _, ft := range []string{"3", "4", "SC13D", "SC13D/A", "SC13G", "SC13G/A"} {
		if !IsOwnershipType(ft) {
			t.Errorf("IsOwnershipType(%q) = false", ft)
		}
	}
	for _, ft := range []string{"10-K", "10-Q", "8-K"} {
		if IsOwnershipType(ft) {
			t.Errorf("IsOwnershipType(%q) = true", ft)
		}
	}
}
