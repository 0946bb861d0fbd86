package edgar

import (
	"strings"
	"testing"
)

func TestStripMarkup(t *testing.T) {
	got := StripMarkup("<div>PART I</div><p>ITEM 1. Business</p>AT&amp;T")
	if !strings.Contains(got, "PART I\n\n") {
		t.Errorf("block close did not become a blank line: %q", got)
	}
	if !strings.Contains(got, "ITEM 1. Business\n\n") {
		t.Errorf("paragraph close did not become a blank line: %q", got)
	}
	if !strings.Contains(got, "AT&T") {
		t.Errorf("entity not decoded: %q", got)
	}
	if strings.Contains(got, "<") {
		t.Errorf("markup left in output: %q", got)
	}
}

func TestStripMarkupCellsAndBreaks(t *testing.T) {
	got := StripMarkup("<table><tr><td>Revenue</td><td>100</td></tr></table>before<br/>after")
	if !strings.Contains(got, "Revenue") || !strings.Contains(got, "100") {
		t.Errorf("cell text lost: %q", got)
	}
	if strings.Contains(got, "Revenue100") {
		t.Errorf("cell boundary collapsed: %q", got)
	}
	if !strings.Contains(got, "before\n\nafter") {
		t.Errorf("<br/> did not become a blank line: %q", got)
	}
}

func TestCleanTextSpecialChars(t *testing.T) {
	got := CleanText("x y—z’s “q”")
	want := `x y-z's "q"`
	if got != want {
		t.Errorf("CleanText = %q, want %q", got, want)
	}
}

func TestCleanTextBrokenHeadings(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"\nI T E M  4. Controls", "\nITEM  4. Controls"},
		{"\nP A R T II\nbody", "\nPART II\nbody"},
		{"\nI T E M 9A. Controls", "\nITEM 9A. Controls"},
		{"\nITEM 4. Controls", "\nITEM 4. Controls"},
	}
	for _, tt := range tests {
		if got := CleanText(tt.in); got != tt.want {
			t.Errorf("CleanText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCleanTextHeadingDash(t *testing.T) {
	got := CleanText("\nITEM 5-Other Events")
	if got != "\nITEM 5 - Other Events" {
		t.Errorf("CleanText = %q", got)
	}
}

func TestCleanTextRemovesNoise(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"contents banner", "intro\nTABLE OF CONTENTS\nrest", "intro\nrest"},
		{"back to contents", "intro\nBack to Contents\nrest", "intro\nrest"},
		{"dashed page number", "alpha\n -12- \nbeta", "alpha\nbeta"},
		{"bare page number", "alpha\n12\nbeta", "alpha\nbeta"},
		{"f page", "alpha\nF-2\nbeta", "alpha\nbeta"},
		{"page label", "alpha\nPage 12\nbeta", "alphabeta"},
	}
	for _, tt := range tests {
		if got := CleanText(tt.in); got != tt.want {
			t.Errorf("%s: CleanText(%q) = %q, want %q", tt.name, tt.in, got, tt.want)
		}
	}
}

func TestCollapseLines(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a\n\n\nb\nc", "a\nb c"},
		{"  hello \n world  ", "hello world"},
		{"para one\n \n \npara two", "para one\npara two"},
		{"single line", "single line"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := CollapseLines(tt.in); got != tt.want {
			t.Errorf("CollapseLines(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHandleSpansText(t *testing.T) {
	in := `before<span style="margin-left: 10.5pt"></span>after`
	if got := handleSpansText(in); got != "before after" {
		t.Errorf("horizontal margin span: got %q", got)
	}
	in = `a<span style="margin-top: 6pt"></span>b`
	if got := handleSpansText(in); got != "a\nb" {
		t.Errorf("vertical margin span: got %q", got)
	}
}
