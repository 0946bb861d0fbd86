package edgar

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// The normalizer turns raw filing markup into plain text whose item headings
// sit at the start of a line, which is what the boundary resolver anchors on.
// The steps are: block-level tags get trailing newlines, all tags are
// stripped with entities decoded, special characters are normalized, broken
// headings ("I T E M 5") are repaired, and contents-page noise is removed.

var (
	closeBlockRe = regexp.MustCompile(`(<\s*/\s*(?:div|tr|p|li)\s*>)`)
	breakRe      = regexp.MustCompile(`(<br\s*>|<br\s*/>)`)
	closeCellRe  = regexp.MustCompile(`(<\s*/\s*(?:th|td)\s*>)`)
)

// StripMarkup removes all markup from content and returns plain text. Block
// element and row boundaries become blank lines and cell boundaries become
// spaces, so that headings land at line starts and table cells stay apart.
// Character entities are decoded by the tokenizer.
func StripMarkup(content string) string {
	content = closeBlockRe.ReplaceAllString(content, "$1\n\n")
	content = breakRe.ReplaceAllString(content, "$1\n\n")
	content = closeCellRe.ReplaceAllString(content, " $1 ")

	var b strings.Builder
	b.Grow(len(content))
	z := html.NewTokenizer(strings.NewReader(content))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}

// specialChars normalizes the characters EDGAR filings are littered with:
// non-breaking and thin spaces, Windows-1252 punctuation that survived a
// latin-1 decode, smart quotes and the whole family of unicode dashes.
var specialChars = strings.NewReplacer(
	"\u00a0", " ", // no-break space
	"\u200b", " ", // zero-width space
	"\u2009", " ", // thin space
	"\u0091", "'",
	"\u0092", "'",
	"\u0093", `"`,
	"\u0094", `"`,
	"\u0095", "\u2022",
	"\u0096", "-",
	"\u0097", "-",
	"\u0098", "\u02dc",
	"\u0099", "\u2122",
	"\u2010", "-",
	"\u2011", "-",
	"\u2012", "-",
	"\u2013", "-",
	"\u2014", "-",
	"\u2015", "-",
	"\u2018", "'",
	"\u2019", "'",
	"\u201c", `"`,
	"\u201d", `"`,
)

var (
	brokenPartRe = regexp.MustCompile(
		`(?i)(\n` + ws + `*)(P` + ws + `*A` + ws + `*R` + ws + `*T)(` + ws + `+)((?:\d{1,2}|[IV]{1,2})[AB]?)`)
	brokenItemRe = regexp.MustCompile(
		`(?i)(\n` + ws + `*)(I` + ws + `*T` + ws + `*E` + ws + `*M)(` + ws + `+)(\d{1,2}[AB]?)`)
	brokenSignatureRe = regexp.MustCompile(
		`(?i)(\n` + ws + `*)(S` + ws + `*I` + ws + `*G` + ws + `*N` + ws + `*A` + ws + `*T` + ws + `*U` + ws + `*R` + ws + `*E` + ws + `*(?:S|\(` + ws + `*s` + ws + `*\))?)(` + ws + `+)(` + ws + `?)`)
	headingDashRe = regexp.MustCompile(`(?i)(ITEM|PART)(\s+\d{1,2}[AB]?)([-\x{2022}])`)

	contentsBanners = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\n` + ws + `*TABLE\s+OF\s+CONTENTS` + ws + `*\n`),
		regexp.MustCompile(`(?i)\n` + ws + `*INDEX\s+TO\s+FINANCIAL\s+STATEMENTS` + ws + `*\n`),
		regexp.MustCompile(`(?i)\n` + ws + `*BACK\s+TO\s+CONTENTS` + ws + `*\n`),
		regexp.MustCompile(`(?i)\n` + ws + `*QUICKLINKS` + ws + `*\n`),
	}

	pageNumberRe     = regexp.MustCompile(`(?i)\n` + ws + `*-*\d+-*` + ws + `*\n`)
	bareNumberLineRe = regexp.MustCompile(`(?i)\n` + ws + `*\d+` + ws + `*\n`)
	fPageRe          = regexp.MustCompile(`(?i)[\n\s]F-*\d+`)
	pageLabelRe      = regexp.MustCompile(`(?i)\n` + ws + `*Page\s[\d*]+` + ws + `*\n`)

	horizontalWS = regexp.MustCompile(ws)
)

// CleanText normalizes special characters, repairs headings whose letters
// were spaced apart by the markup ("I T E M 5" -> "ITEM 5"), and strips
// contents-page banners, page numbers and F-page markers.
func CleanText(text string) string {
	text = specialChars.Replace(text)

	repair := func(re *regexp.Regexp) {
		text = re.ReplaceAllStringFunc(text, func(m string) string {
			g := re.FindStringSubmatch(m)
			return g[1] + horizontalWS.ReplaceAllString(g[2], "") + g[3] + g[4]
		})
	}
	repair(brokenPartRe)
	repair(brokenItemRe)
	repair(brokenSignatureRe)

	// Put spaces around a dash or bullet glued to the item number so the
	// heading terminator stays visible to the resolver.
	text = headingDashRe.ReplaceAllString(text, "$1$2 $3 ")

	for _, re := range contentsBanners {
		text = re.ReplaceAllString(text, "\n")
	}

	text = pageNumberRe.ReplaceAllString(text, "\n")
	text = bareNumberLineRe.ReplaceAllString(text, "\n")
	text = fPageRe.ReplaceAllString(text, "")
	text = pageLabelRe.ReplaceAllString(text, "")

	return text
}

var (
	newlineRunRe  = regexp.MustCompile(`(( )*\n( )*){2,}`)
	newlineMarkRe = regexp.MustCompile(`(#NEWLINE)+`)
	spaceRunRe    = regexp.MustCompile(`[ ]{2,}`)
)

// CollapseLines folds a resolved section onto paragraph boundaries: runs of
// blank lines become a single newline, single line breaks inside a paragraph
// become spaces. Runs of blank lines are marked with a sentinel before single
// newlines are flattened, then the marks are turned back into newlines.
func CollapseLines(text string) string {
	text = newlineRunRe.ReplaceAllString(text, "#NEWLINE")
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.TrimSpace(newlineMarkRe.ReplaceAllString(text, "\n"))
	return spaceRunRe.ReplaceAllString(text, " ")
}

var (
	horizontalMarginSpanRe = regexp.MustCompile(
		`(?i)<span[^>]*style="[^"]*(?:margin-left|margin-right):\s*[\d.]+pt[^"]*"[^>]*>.*?</span>`)
	verticalMarginSpanRe = regexp.MustCompile(
		`(?i)<span[^>]*style="[^"]*(?:margin-top|margin-bottom):\s*[\d.]+pt[^"]*"[^>]*>.*?</span>`)
)

// handleSpansText is the plain-text counterpart of handleSpans: spans that
// only carry a horizontal margin become a space, vertical margins become a
// newline.
func handleSpansText(doc string) string {
	doc = horizontalMarginSpanRe.ReplaceAllString(doc, " ")
	return verticalMarginSpanRe.ReplaceAllString(doc, "\n")
}
