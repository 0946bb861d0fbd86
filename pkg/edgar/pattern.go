package edgar

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// romanNumerals maps the small item indexes to their roman numeral spelling.
// Some legacy filings number their items I, II, III instead of 1, 2, 3.
var romanNumerals = map[string]string{
	"1": "I", "2": "II", "3": "III", "4": "IV", "5": "V",
	"6": "VI", "7": "VII", "8": "VIII", "9": "IX", "10": "X",
	"11": "XI", "12": "XII", "13": "XIII", "14": "XIV", "15": "XV",
	"16": "XVI", "17": "XVII", "18": "XVIII", "19": "XIX", "20": "XX",
}

// ws matches horizontal whitespace: any whitespace except line breaks.
const ws = `[^\S\r\n]`

var patternCache sync.Map // item id -> regex fragment

// ItemPattern builds the regex fragment that matches the heading of an item
// identifier inside cleaned filing text. The function is pure and memoized;
// identical ids always yield identical fragments.
//
// Shapes produced:
//   - "part_1"      -> PART\s*(?:I|1)                 (bare part marker)
//   - "part_2__1A"  -> ITEMS?\s*1[^\S\r\n]*A          (compound 10-Q item)
//   - "9A"          -> ITEMS?\s*9[^\S\r\n]*A(?:\(T\))?
//   - "5.02"        -> ITEMS?\s*5\.02
//   - "2"           -> ITEMS?\s*(?:II|2)
//   - "SIGNATURE"   -> SIGNATURE(?:s|\(s\))?          (no ITEM prefix)
func ItemPattern(id string) string {
	if cached, ok := patternCache.Load(id); ok {
		return cached.(string)
	}
	pat := buildItemPattern(id)
	patternCache.Store(id, pat)
	return pat
}

func buildItemPattern(id string) string {
	if strings.HasPrefix(id, "part") {
		if !strings.Contains(id, "__") {
			// Bare part marker, e.g. "part_2" -> the PART II heading.
			num := strings.SplitN(id, "_", 2)[1]
			return fmt.Sprintf(`PART\s*(?:%s|%s)`, romanNumerals[num], num)
		}
		id = strings.SplitN(id, "__", 2)[1]
	}

	if id == "SIGNATURE" {
		// Filings write SIGNATURE, SIGNATURES or Signature(s); never
		// prefixed with ITEM.
		return id + `(?:s|\(s\))?`
	}

	// Headings like "ITEM 9 A" carry stray whitespace before a letter
	// suffix; allow a horizontal-whitespace gap there. Item 9A may also
	// appear as 9A(T).
	pat := id
	switch {
	case id == "9A":
		pat = strings.Replace(pat, "A", ws+`*A(?:\(T\))?`, 1)
	case strings.Contains(id, "A"):
		pat = strings.Replace(pat, "A", ws+`*A`, 1)
	case strings.Contains(id, "B"):
		pat = strings.Replace(pat, "B", ws+`*B`, 1)
	case strings.Contains(id, "C"):
		pat = strings.Replace(pat, "C", ws+`*C`, 1)
	}

	// 8-K ids contain a literal dot.
	pat = strings.ReplaceAll(pat, ".", `\.`)

	if roman, ok := romanNumerals[id]; ok {
		pat = fmt.Sprintf("(?:%s|%s)", roman, pat)
	}
	return `ITEMS?\s*` + pat
}

var regexpCache sync.Map // expression -> *regexp.Regexp

// compileCached compiles expr once and caches it. Patterns are built from a
// fixed set of item ids, so the cache stays small.
func compileCached(expr string) *regexp.Regexp {
	if cached, ok := regexpCache.Load(expr); ok {
		return cached.(*regexp.Regexp)
	}
	re := regexp.MustCompile(expr)
	regexpCache.Store(expr, re)
	return re
}
