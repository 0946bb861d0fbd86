package batch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/nlpaueb/edgar-crawler/pkg/edgar"
)

const rawFiling = `<DOCUMENT>
<TYPE>10-K
<TEXT>
ITEM 1. Business

We make widgets.

ITEM 2. Properties

We lease offices.

SIGNATURES

Signed by Jane Roe.
</TEXT>
</DOCUMENT>
`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeRaw(t *testing.T, rawDir string, rec edgar.FilingRecord) {
	t.Helper()
	dir := filepath.Join(rawDir, rec.Type)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, rec.Filename), []byte(rawFiling), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDriverRun(t *testing.T) {
	rawDir := t.TempDir()
	outDir := t.TempDir()

	records := []edgar.FilingRecord{
		{CIK: "1", Type: "10-K", Date: "2023-01-01", Filename: "1_10K_2023_a.txt"},
		{CIK: "2", Type: "10-K", Date: "2023-01-01", Filename: "2_10K_2023_b.txt"},
		{CIK: "3", Type: "10-K", Date: "2023-01-01", Filename: "3_10K_2023_missing.txt"},
	}
	writeRaw(t, rawDir, records[0])
	writeRaw(t, rawDir, records[1])
	// records[2] has no raw file and is skipped.

	d := &Driver{
		Extractor: edgar.NewExtractor(edgar.ExtractorConfig{RawDir: rawDir, OutDir: outDir}, discardLogger()),
		Workers:   2,
		Log:       discardLogger(),
	}

	summary, err := d.Run(context.Background(), records)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Total != 3 || summary.Processed != 2 || summary.Skipped != 1 {
		t.Errorf("summary = %+v", summary)
	}

	for _, name := range []string{"1_10K_2023_a.json", "2_10K_2023_b.json"} {
		if _, err := os.Stat(filepath.Join(outDir, "10-K", name)); err != nil {
			t.Errorf("output %s missing: %v", name, err)
		}
	}
}

func TestDriverRunSchemaError(t *testing.T) {
	rawDir := t.TempDir()
	rec := edgar.FilingRecord{CIK: "1", Type: "10-K", Date: "2023-01-01", Filename: "1_10K_2023_a.txt"}
	writeRaw(t, rawDir, rec)

	d := &Driver{
		Extractor: edgar.NewExtractor(edgar.ExtractorConfig{
			RawDir:         rawDir,
			OutDir:         t.TempDir(),
			ItemsToExtract: []string{"5.02"}, // 8-K items against a 10-K run
		}, discardLogger()),
		Workers: 1,
		Log:     discardLogger(),
	}

	_, err := d.Run(context.Background(), []edgar.FilingRecord{rec})
	if !errors.Is(err, edgar.ErrSchemaMismatch) {
		t.Errorf("err = %v, want ErrSchemaMismatch", err)
	}
}

func TestDriverRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := &Driver{
		Extractor: edgar.NewExtractor(edgar.ExtractorConfig{
			RawDir: t.TempDir(),
			OutDir: t.TempDir(),
		}, discardLogger()),
		Workers: 1,
		Log:     discardLogger(),
	}

	records := []edgar.FilingRecord{
		{CIK: "1", Type: "10-K", Date: "2023-01-01", Filename: "a.txt"},
	}
	_, err := d.Run(ctx, records)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
