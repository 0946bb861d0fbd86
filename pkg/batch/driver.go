package batch

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/nlpaueb/edgar-crawler/pkg/edgar"
	"github.com/nlpaueb/edgar-crawler/pkg/store"
)

// Summary is the outcome of a batch run.
type Summary struct {
	RunID     uuid.UUID
	Total     int
	Processed int
	Skipped   int
}

// Driver fans the extractor out over a fixed-size worker pool. An optional
// ledger records per-run and per-filing outcomes.
type Driver struct {
	Extractor *edgar.Extractor
	Workers   int
	Ledger    *store.Ledger
	Log       *slog.Logger
}

// Run processes all records and returns the counts. Per-filing failures are
// absorbed by the extractor; a schema error aborts the run since it means
// the run itself is misconfigured.
func (d *Driver) Run(ctx context.Context, records []edgar.FilingRecord) (Summary, error) {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}
	workers := d.Workers
	if workers < 1 {
		workers = 1
	}

	summary := Summary{RunID: uuid.New(), Total: len(records)}
	if d.Ledger != nil {
		if err := d.Ledger.BeginRun(ctx, summary.RunID, len(records)); err != nil {
			return summary, err
		}
	}

	var (
		processed atomic.Int64
		skipped   atomic.Int64
		firstErr  atomic.Value
	)

	jobs := make(chan edgar.FilingRecord)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range jobs {
				written, err := d.Extractor.ProcessFiling(rec)
				status := "skipped"
				switch {
				case err != nil:
					firstErr.CompareAndSwap(nil, err)
					skipped.Add(1)
					status = "failed"
				case written:
					processed.Add(1)
					status = "processed"
				default:
					skipped.Add(1)
				}
				if d.Ledger != nil {
					if lerr := d.Ledger.RecordFiling(ctx, summary.RunID, rec.Filename, rec.Type, status); lerr != nil {
						log.Warn("ledger write failed", "filename", rec.Filename, "err", lerr)
					}
				}
			}
		}()
	}

feed:
	for _, rec := range records {
		select {
		case jobs <- rec:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	summary.Processed = int(processed.Load())
	summary.Skipped = int(skipped.Load())

	if d.Ledger != nil {
		if err := d.Ledger.FinishRun(ctx, summary.RunID, summary.Processed, summary.Skipped); err != nil {
			log.Warn("ledger finish failed", "err", err)
		}
	}

	if err, ok := firstErr.Load().(error); ok && err != nil {
		return summary, err
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}
