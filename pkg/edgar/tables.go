package edgar

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

// Numeric tables (financial data) drown the narrative text in numbers, so
// they can be removed before segmentation. A table is kept when an item
// heading occurs inside it, since some filings typeset their headings as
// table rows; otherwise it is removed when any of its rows or cells carries
// a non-default background color, the strongest signal of a data table in
// EDGAR markup.

// defaultBackgrounds are background values that do not mark a data table.
var defaultBackgrounds = map[string]bool{
	"none": true, "transparent": true, "#ffffff": true, "#fff": true, "white": true,
}

// removeNumericTables drops data tables from an HTML document in place.
// schema is the active item schema; tables containing one of its headings
// survive.
func removeNumericTables(doc *goquery.Document, schema []string) {
	doc.Find("table").Each(func(_ int, tbl *goquery.Selection) {
		raw, err := goquery.OuterHtml(tbl)
		if err != nil {
			return
		}
		text := CleanText(StripMarkup(raw))

		for _, item := range schema {
			re := compileCached(`(?is)\n` + ws + `*` + ItemPattern(item) + `[.*~\-:\s]`)
			if re.MatchString(text) {
				return
			}
		}

		colored := false
		tbl.Find("tr[style], td[style], th[style]").EachWithBreak(func(_ int, cell *goquery.Selection) bool {
			style, _ := cell.Attr("style")
			if bg := styleBackground(style); bg != "" && !defaultBackgrounds[bg] {
				colored = true
				return false
			}
			return true
		})
		if !colored {
			tbl.Find("tr[bgcolor], td[bgcolor], th[bgcolor]").EachWithBreak(func(_ int, cell *goquery.Selection) bool {
				bg, _ := cell.Attr("bgcolor")
				if bg != "" && !defaultBackgrounds[strings.ToLower(bg)] {
					colored = true
					return false
				}
				return true
			})
		}
		if colored {
			tbl.Remove()
		}
	})
}

// styleBackground pulls the background or background-color value out of an
// inline style attribute, lowercased. Shorthand background declarations are
// returned whole.
func styleBackground(style string) string {
	for _, decl := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "background" || name == "background-color" {
			return strings.ToLower(strings.TrimSpace(value))
		}
	}
	return ""
}

var textTableRe = regexp.MustCompile(`(?is)<TABLE>.*?</TABLE>`)

// removeTextTables removes <TABLE> blocks from a plain-text filing body.
func removeTextTables(content string) string {
	return textTableRe.ReplaceAllString(content, "")
}

// tableCharacterRatios returns the share of digits among non-space
// characters and the share of spaces, the signals of the legacy numeric
// table filter. The background-color rule replaced it, but the measure is
// kept for tuning against Thresholds.TableDigitRatio / TableSpaceRatio.
func tableCharacterRatios(tableText string) (digitRatio, spaceRatio float64) {
	var digits, spaces, total int
	for _, r := range tableText {
		total++
		switch {
		case unicode.IsDigit(r):
			digits++
		case unicode.IsSpace(r):
			spaces++
		}
	}
	if total-spaces > 0 {
		digitRatio = float64(digits) / float64(total-spaces)
	}
	if total > 0 {
		spaceRatio = float64(spaces) / float64(total)
	}
	return digitRatio, spaceRatio
}

// handleSpans deals with the span soup EDGAR generators emit, in place.
// Spans that carry text are unwrapped so words split across spans rejoin;
// empty spans used purely for spacing become a space (horizontal margin) or
// a newline (vertical margin).
func handleSpans(doc *goquery.Document) {
	doc.Find("span").Each(func(_ int, span *goquery.Selection) {
		if strings.TrimSpace(span.Text()) != "" {
			unwrap(span)
		}
	})
	doc.Find("span").Each(func(_ int, span *goquery.Selection) {
		style, _ := span.Attr("style")
		switch {
		case strings.Contains(style, "margin-left") || strings.Contains(style, "margin-right"):
			span.ReplaceWithHtml(" ")
		case strings.Contains(style, "margin-top") || strings.Contains(style, "margin-bottom"):
			span.ReplaceWithHtml("\n")
		}
	})
}

// unwrap replaces a node with its own children.
func unwrap(sel *goquery.Selection) {
	for _, node := range sel.Nodes {
		parent := node.Parent
		if parent == nil {
			continue
		}
		for node.FirstChild != nil {
			child := node.FirstChild
			node.RemoveChild(child)
			parent.InsertBefore(child, node)
		}
		parent.RemoveChild(node)
	}
}
