package edgar

import "strings"

// Boundary resolution. An item section is the text between the heading of
// the item and the heading of the nearest following schema item. Headings
// are only trusted when anchored at the start of a line and followed by a
// terminator character, which keeps inline references ("see Item 7A") from
// being taken for headings. Among all candidate spans the longest one that
// does not precede the previous item's end wins; table-of-contents entries
// lose because the span between two adjacent ToC lines is short.

// headingTerm is the character class that must follow an item heading.
const headingTerm = `[.*~\-:\s(]`

// outcome classifies how a section boundary was resolved.
type outcome int

const (
	// outcomeResolved: a span up to a following heading was found.
	outcomeResolved outcome = iota
	// outcomeOpenEnded: the heading was found but no following heading;
	// the section runs to the end of the text.
	outcomeOpenEnded
	// outcomeAbsent: the item does not occur in the text.
	outcomeAbsent
)

// candidate is one possible section span: an occurrence of the item heading
// at text[offset:] plus a submatch index of the span regex relative to that
// offset. loc[0]:loc[1] is the whole span, loc[2] the start of the next
// heading (capture group 1).
type candidate struct {
	offset int
	loc    []int
}

func headingRe(pat string, caseInsensitive bool) string {
	expr := `\n` + ws + `*` + pat + headingTerm
	if caseInsensitive {
		expr = `(?i)` + expr
	}
	return expr
}

func spanRe(itemPat, nextPat string, caseInsensitive bool) string {
	expr := `(?s)\n` + ws + `*` + itemPat + headingTerm + `.+?` +
		`(\n` + ws + `*` + nextPat + headingTerm + `)`
	if caseInsensitive {
		expr = `(?i)` + expr
	}
	return expr
}

// resolveItem finds the section for item inside text. nextItems are the
// schema items that may follow it, in schema order; allItems is the full
// active schema (used to decide whether an open-ended fallback is allowed);
// positions carries the end positions of previously resolved sections and
// enforces monotonicity. ignoreMatches skips that many leading occurrences
// of the item heading, which the part partitioner uses to step over a table
// of contents.
func resolveItem(text, item string, nextItems, allItems []string, positions []int, ignoreMatches int) (string, []int, outcome) {
	itemPat := ItemPattern(item)

	var itemPart string
	if strings.HasPrefix(item, "part") && strings.Contains(item, "__") {
		itemPart = strings.SplitN(item, "__", 2)[0]
	}

	var cands []candidate
	sawHeading := false
	lastItem := true

	for _, next := range nextItems {
		lastItem = false
		if len(cands) > 0 {
			break
		}
		if next == nextItems[len(nextItems)-1] {
			lastItem = true
		}

		nextPat := ItemPattern(next)

		// Candidate spans never cross a part boundary: once the next
		// schema item belongs to a different part, this item closes
		// open-ended within its own part text.
		if strings.HasPrefix(next, "part") && strings.Contains(next, "__") {
			if strings.SplitN(next, "__", 2)[0] != itemPart {
				lastItem = true
				break
			}
		}

		occurrences := compileCached(headingRe(itemPat, true)).FindAllStringIndex(text, -1)
		for i, occ := range occurrences {
			if i < ignoreMatches {
				continue
			}
			offset := occ[0]
			rest := text[offset:]

			// Case-sensitive search first: genuine headings are
			// usually consistently cased, ToC links often are not.
			spans := compileCached(spanRe(itemPat, nextPat, false)).FindAllStringSubmatchIndex(rest, -1)
			if len(spans) == 0 {
				spans = compileCached(spanRe(itemPat, nextPat, true)).FindAllStringSubmatchIndex(rest, -1)
			}

			if len(spans) > 0 {
				for _, loc := range spans {
					cands = append(cands, candidate{offset: offset, loc: loc})
				}
			} else if next == nextItems[len(nextItems)-1] && len(cands) == 0 {
				sawHeading = true
			}
		}
	}

	section, positions := selectSection(cands, text, positions)
	result := outcomeResolved

	if len(positions) > 0 {
		if section == "" && containsItem(allItems, item) {
			section = openEndedSection(item, text, positions)
			result = outcomeOpenEnded
		}
		if item == "SIGNATURE" {
			// The signature block is terminal; everything from its
			// last heading to the end of the document belongs to it.
			section = openEndedSection(item, text, positions)
			result = outcomeOpenEnded
		}
	} else if sawHeading || lastItem {
		if containsItem(allItems, item) {
			section = openEndedSection(item, text, positions)
			result = outcomeOpenEnded
		}
	}

	if section == "" && result == outcomeOpenEnded {
		result = outcomeAbsent
	}
	if section == "" && result == outcomeResolved {
		result = outcomeAbsent
	}
	return section, positions, result
}

// selectSection picks the longest candidate span whose start does not
// precede the end of the previously resolved section, returns its text up to
// the start of the next heading, and appends the new end position.
func selectSection(cands []candidate, text string, positions []int) (string, []int) {
	var best *candidate
	bestLen := 0

	for i := range cands {
		c := &cands[i]
		length := c.loc[1] - c.loc[0]
		if length <= bestLen {
			continue
		}
		if len(positions) > 0 && c.offset+c.loc[0] < positions[len(positions)-1] {
			continue
		}
		best = c
		bestLen = length
	}

	if best == nil {
		return "", positions
	}

	section := ""
	start := best.offset + best.loc[0]
	nextStart := best.offset + best.loc[2]
	if len(positions) == 0 || start >= positions[len(positions)-1] {
		section = text[start:nextStart]
	}
	// End position: just before the newline that opens the next heading.
	positions = append(positions, nextStart-1)
	return section, positions
}

// openEndedSection returns the text from the item's heading to the end of
// the document. The first occurrence at or past the last known position is
// used, except for SIGNATURE where only the final occurrence counts: the
// heading reappears in the ToC and in exhibit boilerplate, and the genuine
// signature block is the last thing in a filing.
func openEndedSection(item, text string, positions []int) string {
	pat := ItemPattern(item)
	re := compileCached(`(?is)\n` + ws + `*` + pat + `[.\-:\s].`)

	occurrences := re.FindAllStringIndex(text, -1)
	for i, occ := range occurrences {
		if strings.Contains(item, "SIGNATURE") && i != len(occurrences)-1 {
			continue
		}
		if len(positions) > 0 {
			if occ[0] >= positions[len(positions)-1] {
				return strings.TrimSpace(text[occ[0]:])
			}
			continue
		}
		return strings.TrimSpace(text[occ[0]:])
	}
	return ""
}
