package download

import (
	"archive/zip"
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nlpaueb/edgar-crawler/pkg/edgar"
)

// The quarterly master index is a pipe-separated file listing every filing
// of the quarter: CIK|Company|Type|Date|path-to-txt. It is stored locally as
// a tsv with one extra column, the path of the filing's HTML index page,
// derived from the txt path.

// indexHeaderLines is the preamble of master.idx before the data rows.
const indexHeaderLines = 11

// IndexFilename names the local index file for a year and quarter.
func IndexFilename(year, quarter int) string {
	return fmt.Sprintf("%d_QTR%d.tsv", year, quarter)
}

// DownloadIndices fetches the master index archives for every requested
// year/quarter into indicesDir. Future quarters are skipped; failed
// quarters are collected and reported in one error so the remaining
// quarters still download.
func (c *Client) DownloadIndices(ctx context.Context, startYear, endYear int, quarters []int, skipPresent bool, indicesDir string) error {
	for _, q := range quarters {
		if q < 1 || q > 4 {
			return fmt.Errorf("invalid quarter %d", q)
		}
	}
	if err := os.MkdirAll(indicesDir, 0o755); err != nil {
		return err
	}

	now := time.Now()
	currentQuarter := (int(now.Month())-1)/3 + 1

	var failed []string
	for year := startYear; year <= endYear; year++ {
		for _, quarter := range quarters {
			if year == now.Year() && quarter > currentQuarter {
				break
			}

			name := IndexFilename(year, quarter)
			path := filepath.Join(indicesDir, name)
			if skipPresent {
				if _, err := os.Stat(path); err == nil {
					c.log.Info("index already present, skipping", "index", name)
					continue
				}
			}

			url := fmt.Sprintf("%s/%d/QTR%d/master.zip", fullIndexBaseURL, year, quarter)
			archive, err := c.Get(ctx, url)
			if err != nil {
				c.log.Warn("failed downloading index", "index", name, "err", err)
				failed = append(failed, name)
				continue
			}

			if err := writeIndexFile(path, archive); err != nil {
				c.log.Warn("failed writing index", "index", name, "err", err)
				failed = append(failed, name)
				continue
			}
			c.log.Info("index downloaded", "index", name)
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("could not download indices: %s", strings.Join(failed, ", "))
	}
	return nil
}

// writeIndexFile extracts master.idx from the zip archive and rewrites it as
// the local tsv, appending the derived html index column to each row.
func writeIndexFile(path string, archive []byte) error {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return fmt.Errorf("open index archive: %w", err)
	}
	f, err := zr.Open("master.idx")
	if err != nil {
		return fmt.Errorf("master.idx missing from archive: %w", err)
	}
	defer f.Close()

	var out strings.Builder
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo <= indexHeaderLines {
			continue
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, "|")
		txtPath := fields[len(fields)-1]
		out.WriteString(line)
		out.WriteString("|")
		out.WriteString(strings.Replace(txtPath, ".txt", "-index.html", 1))
		out.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(out.String()), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// ReadIndexEntries loads local index files and returns the rows matching the
// requested filing types and, when non-empty, the CIK allowlist. The six
// populated fields are those of the quarterly index; the rest are filled in
// by the per-filing crawl.
func ReadIndexEntries(tsvPaths []string, filingTypes []string, ciks map[string]bool) ([]edgar.FilingRecord, error) {
	typeSet := make(map[string]bool, len(filingTypes))
	for _, t := range filingTypes {
		typeSet[t] = true
	}

	var records []edgar.FilingRecord
	for _, path := range tsvPaths {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := strings.TrimRight(scanner.Text(), "\n")
			if line == "" {
				continue
			}
			fields := strings.Split(line, "|")
			if len(fields) < 6 {
				continue
			}
			rec := edgar.FilingRecord{
				CIK:                  fields[0],
				Company:              fields[1],
				Type:                 fields[2],
				Date:                 fields[3],
				CompleteTextFileLink: archivesBaseURL + fields[4],
				HTMLIndex:            archivesBaseURL + fields[5],
			}
			if len(typeSet) > 0 && !typeSet[rec.Type] {
				continue
			}
			if len(ciks) > 0 && !ciks[rec.CIK] {
				continue
			}
			records = append(records, rec)
		}
		err = scanner.Err()
		f.Close()
		if err != nil {
			return nil, err
		}
	}
	return records, nil
}
