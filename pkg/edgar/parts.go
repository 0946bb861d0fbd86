package edgar

import (
	"log/slog"
	"strings"
)

// 10-Q filings nest their items under PART I and PART II. The partitioner
// splits the document into one text per part first, so that "Item 1" of
// part 2 is never confused with "Item 1" of part 1; items are then resolved
// inside their own part text only.

// partMarkers derives the ordered list of bare part ids ("part_1", "part_2")
// from a schema of compound item ids.
func partMarkers(schema []string) []string {
	var parts []string
	for _, item := range schema {
		part := strings.SplitN(item, "__", 2)[0]
		if !strings.HasPrefix(part, "part") {
			continue
		}
		if !containsItem(parts, part) {
			parts = append(parts, part)
		}
	}
	return parts
}

// partOf returns the part id of a compound item id, or "" for a plain item.
func partOf(item string) string {
	if !strings.HasPrefix(item, "part") {
		return ""
	}
	return strings.SplitN(item, "__", 2)[0]
}

// partitionParts resolves each part marker as a section of the full text.
// The part markers themselves act as the schema, so PART I's span ends at
// the PART II heading.
func partitionParts(parts []string, text string, ignoreMatches int) (map[string]string, []int) {
	texts := make(map[string]string, len(parts))
	var positions []int
	for i, part := range parts {
		var section string
		section, positions, _ = resolveItem(text, part, parts[i+1:], parts, positions, ignoreMatches)
		texts[part] = section
	}
	return texts, positions
}

// repairParts patches the two failure modes seen in practice: a missing
// PART I heading (everything before PART II is part 1), and a gap between
// the end of part 1 and the start of part 2 larger than the slack (the gap
// is folded into part 1).
func repairParts(text string, texts map[string]string, positions []int, filename string, slack int, log *slog.Logger) map[string]string {
	clamp := func(n int) int {
		if n < 0 {
			return 0
		}
		if n > len(text) {
			return len(text)
		}
		return n
	}

	switch {
	case len(positions) == 0 || len(texts) == 0:
		log.Debug("could not detect positions of parts", "filename", filename)

	case texts["part_1"] == "":
		log.Debug("no PART I found, taking all text before PART II", "filename", filename)
		texts["part_1"] = text[:clamp(positions[0]-len(texts["part_2"]))]

	case len(positions) > 1:
		separation := positions[1] - len(texts["part_2"]) - positions[0]
		if separation > slack {
			log.Debug("gap between PART I and PART II, taking all text between parts",
				"filename", filename, "chars", separation)
			texts["part_1"] = text[clamp(positions[0]-len(texts["part_1"])):clamp(positions[1]-len(texts["part_2"]))]
		}
	}
	return texts
}

// extractParts splits a part-structured filing into per-part texts. When
// part 2 comes out much longer than part 1, the parts were likely matched
// inside the table of contents; the partition is retried with an increasing
// number of leading heading occurrences skipped until the imbalance stops
// improving.
func extractParts(text string, schema []string, filename string, th Thresholds, log *slog.Logger) map[string]string {
	parts := partMarkers(schema)

	texts, positions := partitionParts(parts, text, 0)
	texts = repairParts(text, texts, positions, filename, th.PartSlackChars, log)

	ignoreMatches := 1
	diff := len(texts["part_2"]) - len(texts["part_1"])
	for diff > th.PartImbalanceChars {
		texts, positions = partitionParts(parts, text, ignoreMatches)
		texts["part_1"] = ""
		texts = repairParts(text, texts, positions, filename, th.PartSlackChars, log)

		newDiff := len(texts["part_2"]) - len(texts["part_1"])
		if newDiff == diff {
			// Skipping occurrences changed nothing; revert to the
			// plain partition and accept the imbalance.
			texts, positions = partitionParts(parts, text, 0)
			texts = repairParts(text, texts, positions, filename, th.PartSlackChars, log)
			log.Warn("could not separate parts, PART I likely holds only contents-page text",
				"filename", filename)
			break
		}
		diff = newDiff
		ignoreMatches++
	}
	return texts
}
