package edgar

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractorConfig is everything the extraction pipeline needs besides the
// per-filing metadata.
type ExtractorConfig struct {
	// RawDir holds the downloaded filings, one subdirectory per filing type.
	RawDir string
	// OutDir receives the extracted JSON, one subdirectory per filing type.
	OutDir string
	// ItemsToExtract restricts the output to these item ids; empty means
	// the full schema of each filing.
	ItemsToExtract []string
	// RemoveTables drops numeric data tables before segmentation.
	RemoveTables bool
	// IncludeSignature adds the SIGNATURE section to the output.
	IncludeSignature bool
	// SkipExtracted leaves filings alone whose JSON already exists.
	SkipExtracted bool

	Thresholds Thresholds
}

// Extractor turns raw filing submissions into segmented JSON records. It is
// safe for concurrent use; all state is read-only after construction.
type Extractor struct {
	cfg ExtractorConfig
	log *slog.Logger
}

func NewExtractor(cfg ExtractorConfig, log *slog.Logger) *Extractor {
	if cfg.Thresholds == (Thresholds{}) {
		cfg.Thresholds = DefaultThresholds()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{cfg: cfg, log: log}
}

var (
	embeddedPDFRe = regexp.MustCompile(`(?is)<PDF>.*?</PDF>`)
	documentRe    = regexp.MustCompile(`(?is)<DOCUMENT>.*?</DOCUMENT>`)
	docTypeRe     = regexp.MustCompile(`(?i)\n` + ws + `*<TYPE>(.*?)\n`)
)

// ExtractFiling reads one raw filing and returns its output record: a
// *SegmentedFiling for narrative filings, an *OwnershipFiling for XML-based
// ownership forms.
func (e *Extractor) ExtractFiling(rec FilingRecord) (any, error) {
	path := filepath.Join(e.cfg.RawDir, rec.Type, rec.Filename)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read filing: %w", err)
	}
	content := embeddedPDFRe.ReplaceAllString(string(raw), "")

	if IsOwnershipType(rec.Type) {
		data, err := extractOwnershipData(content, rec.Type)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", rec.Filename, err)
		}
		return &OwnershipFiling{Metadata: rec, Data: data}, nil
	}

	schema, err := ItemsForFiling(rec.Type, rec.Date)
	if err != nil {
		return nil, err
	}
	items, err := FilterItems(e.cfg.ItemsToExtract, schema)
	if err != nil {
		return nil, fmt.Errorf("%s (%s): %w", rec.Filename, rec.Type, err)
	}

	text := e.normalizeFiling(content, rec, schema)

	sections, anyResolved := e.resolveSections(text, rec, schema, items)
	if !anyResolved {
		return nil, fmt.Errorf("%s: %w", rec.Filename, ErrNoSectionsExtracted)
	}
	return &SegmentedFiling{Metadata: rec, Sections: sections}, nil
}

// normalizeFiling locates the filing body inside the submission and turns it
// into cleaned plain text ready for boundary resolution.
func (e *Extractor) normalizeFiling(content string, rec FilingRecord, schema []string) string {
	documents := documentRe.FindAllString(content, -1)

	body := ""
	found := false
	for _, doc := range documents {
		m := docTypeRe.FindStringSubmatch(doc)
		if m == nil {
			continue
		}
		docType := strings.TrimSpace(m[1])
		if strings.HasPrefix(docType, "10") || strings.HasPrefix(docType, "8") {
			body = doc
			found = true
			break
		}
	}
	if !found {
		if len(documents) > 0 {
			e.log.Info("no matching document in submission, using whole content",
				"filename", rec.Filename, "err", ErrDocumentNotFound)
		} else if strings.HasSuffix(rec.Filename, "txt") {
			e.log.Info("no document markers in filing", "filename", rec.Filename)
		}
		body = content
	}

	// HTML filings are processed structurally; legacy text filings fall
	// back to regex handling of the same concerns.
	doc, parseErr := goquery.NewDocumentFromReader(strings.NewReader(body))
	isHTML := parseErr == nil &&
		doc.Find("td").Length() > 0 && doc.Find("tr").Length() > 0

	if isHTML {
		if e.cfg.RemoveTables {
			removeNumericTables(doc, schema)
		}
		handleSpans(doc)
		if html, err := doc.Html(); err == nil {
			body = html
		}
	} else {
		if e.cfg.RemoveTables {
			body = removeTextTables(body)
		}
		body = handleSpansText(body)
	}

	return CleanText(StripMarkup(body))
}

// resolveSections walks the schema in order, resolving each item's section
// and keeping output keys in schema order. For part-structured filings the
// text is partitioned first and each item resolves inside its own part.
func (e *Extractor) resolveSections(text string, rec FilingRecord, schema, items []string) ([]ItemSection, bool) {
	var partTexts map[string]string
	if len(partMarkers(schema)) > 0 {
		partTexts = extractParts(text, schema, rec.Filename, e.cfg.Thresholds, e.log)
	}

	var (
		sections    []ItemSection
		positions   []int
		anyResolved bool
	)
	activeText := text
	emittedParts := map[string]bool{}

	for i, item := range schema {
		nextItems := schema[i+1:]

		if part := partOf(item); part != "" {
			// Positions are relative to the active part text; reset
			// them when crossing into the next part.
			if i != 0 && partOf(schema[i-1]) != part {
				positions = nil
			}
			activeText = partTexts[part]

			if !emittedParts[part] {
				emittedParts[part] = true
				sections = append(sections, ItemSection{
					Key:  part,
					Text: CollapseLines(strings.TrimSpace(partTexts[part])),
				})
			}
		}

		var section string
		if item == "SIGNATURE" && i > 0 && partOf(schema[i-1]) != "" {
			// The signature block of a part-structured filing sits
			// after the last part, outside every part text; resolve
			// it against the full document.
			section = openEndedSection(item, text, nil)
		} else {
			section, positions, _ = resolveItem(activeText, item, nextItems, schema, positions, 0)
		}
		section = CollapseLines(strings.TrimSpace(section))

		if !containsItem(items, item) {
			continue
		}
		if section != "" {
			anyResolved = true
		}

		switch {
		case item == "SIGNATURE":
			if e.cfg.IncludeSignature {
				sections = append(sections, ItemSection{Key: "SIGNATURE", Text: section})
			}
		case partOf(item) != "":
			part := partOf(item)
			sub := strings.SplitN(item, "__", 2)[1]
			sections = append(sections, ItemSection{Key: part + "_item_" + sub, Text: section})
		default:
			sections = append(sections, ItemSection{Key: "item_" + item, Text: section})
		}
	}
	return sections, anyResolved
}

// ProcessFiling runs the full pipeline for one filing and writes its JSON
// record. It reports whether a record was written; per-filing failures are
// logged and swallowed so a batch keeps going, except schema errors, which
// indicate a misconfigured run and are returned.
func (e *Extractor) ProcessFiling(rec FilingRecord) (written bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("panic while processing filing", "filename", rec.Filename, "panic", r)
			written, err = false, nil
		}
	}()

	base := strings.TrimSuffix(rec.Filename, filepath.Ext(rec.Filename))
	outPath := filepath.Join(e.cfg.OutDir, rec.Type, base+".json")

	if e.cfg.SkipExtracted {
		if _, statErr := os.Stat(outPath); statErr == nil {
			return false, nil
		}
	}

	record, err := e.ExtractFiling(rec)
	if err != nil {
		if errors.Is(err, ErrSchemaMismatch) || errors.Is(err, ErrUnsupportedFilingType) {
			return false, err
		}
		e.log.Warn("extraction failed", "filename", rec.Filename, "err", err)
		return false, nil
	}

	if err := WriteRecord(outPath, record); err != nil {
		return false, fmt.Errorf("write %s: %w", outPath, err)
	}
	return true, nil
}
