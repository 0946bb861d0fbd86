package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nlpaueb/edgar-crawler/pkg/batch"
	"github.com/nlpaueb/edgar-crawler/pkg/edgar"
)

// Options configures a download run.
type Options struct {
	StartYear int
	EndYear   int
	Quarters  []int

	// FilingTypes to download, e.g. ["10-K", "8-K"]. At least one is
	// required.
	FilingTypes []string

	// CIKTickers restricts the run to these companies, given as CIK
	// numbers or ticker symbols. Empty means every company.
	CIKTickers []string

	// NonPeriodicTypes are filing types without a period of report; their
	// filenames omit the year.
	NonPeriodicTypes []string

	UserAgent string

	RawDir          string
	IndicesDir      string
	MetadataFile    string
	CompanyInfoFile string

	SkipPresentIndices bool
}

// Run executes the full download pipeline: quarterly indices, index-row
// selection, per-filing crawl and document download, with the metadata CSV
// rewritten after every crawled filing so an interrupted run loses nothing.
func Run(ctx context.Context, opts Options, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	if len(opts.FilingTypes) == 0 {
		return errors.New("at least one filing type is required")
	}
	if err := os.MkdirAll(opts.RawDir, 0o755); err != nil {
		return err
	}

	client := NewClient(opts.UserAgent, log)

	log.Info("downloading index files from SEC")
	if err := client.DownloadIndices(ctx, opts.StartYear, opts.EndYear, opts.Quarters, opts.SkipPresentIndices, opts.IndicesDir); err != nil {
		// A missing quarter is not fatal; the run proceeds with the
		// indices that are on disk and the next run can retry.
		log.Warn("some indices could not be downloaded", "err", err)
	}

	var tsvPaths []string
	for year := opts.StartYear; year <= opts.EndYear; year++ {
		for _, quarter := range opts.Quarters {
			path := filepath.Join(opts.IndicesDir, IndexFilename(year, quarter))
			if _, err := os.Stat(path); err == nil {
				tsvPaths = append(tsvPaths, path)
			}
		}
	}
	if len(tsvPaths) == 0 {
		return errors.New("no index files available")
	}

	ciks, err := client.ResolveCIKs(ctx, opts.CIKTickers)
	if err != nil {
		return err
	}

	entries, err := ReadIndexEntries(tsvPaths, opts.FilingTypes, ciks)
	if err != nil {
		return err
	}

	// Keep metadata rows whose file is still on disk, and skip entries
	// already crawled in a previous run.
	var existing []edgar.FilingRecord
	known := map[string]bool{}
	if old, err := batch.ReadMetadata(opts.MetadataFile); err == nil {
		for _, rec := range old {
			if _, statErr := os.Stat(filepath.Join(opts.RawDir, rec.Type, rec.Filename)); statErr == nil {
				existing = append(existing, rec)
				known[rec.HTMLIndex] = true
			}
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	var toDownload []edgar.FilingRecord
	for _, entry := range entries {
		if !known[entry.HTMLIndex] {
			toDownload = append(toDownload, entry)
		}
	}
	if len(toDownload) == 0 {
		log.Info("no new filings to download for the given years, quarters and companies")
		return nil
	}

	cache, err := LoadCompanyInfoCache(opts.CompanyInfoFile)
	if err != nil {
		return fmt.Errorf("load company info cache: %w", err)
	}

	nonPeriodic := map[string]bool{}
	for _, t := range opts.NonPeriodicTypes {
		nonPeriodic[t] = true
	}

	log.Info("downloading filings from EDGAR", "count", len(toDownload))
	crawled := existing
	succeeded := 0
	for _, entry := range toDownload {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := client.CrawlFiling(ctx, entry, opts.FilingTypes, opts.RawDir, nonPeriodic, cache)
		if err != nil {
			log.Debug("skipping filing", "html_index", entry.HTMLIndex, "err", err)
			continue
		}
		succeeded++
		crawled = append(crawled, *rec)
		if err := batch.WriteMetadata(opts.MetadataFile, crawled); err != nil {
			return fmt.Errorf("write metadata: %w", err)
		}
	}

	log.Info("filings metadata exported", "path", opts.MetadataFile)
	if succeeded < len(toDownload) {
		log.Info("some filings failed to download, rerun to retry",
			"downloaded", succeeded, "total", len(toDownload))
	}
	return nil
}
