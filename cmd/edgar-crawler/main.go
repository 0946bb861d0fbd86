// Command edgar-crawler downloads SEC EDGAR filings and extracts their
// items into JSON, in two stages: `download` fetches filings and builds the
// metadata table, `extract` segments the downloaded filings.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nlpaueb/edgar-crawler/pkg/batch"
	"github.com/nlpaueb/edgar-crawler/pkg/config"
	"github.com/nlpaueb/edgar-crawler/pkg/download"
	"github.com/nlpaueb/edgar-crawler/pkg/edgar"
	"github.com/nlpaueb/edgar-crawler/pkg/logging"
	"github.com/nlpaueb/edgar-crawler/pkg/store"
)

var configPath string

func main() {
	// A .env file may carry DATABASE_URL and LOG_LEVEL; absence is fine.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "edgar-crawler",
		Short:         "Download SEC EDGAR filings and extract their items to JSON",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the configuration file")
	root.AddCommand(newDownloadCmd(), newExtractCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newDownloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "download",
		Short: "Download filings and build the filings metadata table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			log, closeLog, err := logging.New(cfg.LogDir, "download_filings")
			if err != nil {
				return err
			}
			defer closeLog()

			cikTickers := cfg.Download.CIKTickers
			if cfg.Download.CIKTickersFile != "" {
				fromFile, err := download.ReadCIKTickerFile(cfg.Download.CIKTickersFile)
				if err != nil {
					return err
				}
				cikTickers = append(cikTickers, fromFile...)
			}

			return download.Run(cmd.Context(), download.Options{
				StartYear:          cfg.Download.StartYear,
				EndYear:            cfg.Download.EndYear,
				Quarters:           cfg.Download.Quarters,
				FilingTypes:        cfg.Download.FilingTypes,
				CIKTickers:         cikTickers,
				NonPeriodicTypes:   cfg.Download.NonPeriodicTypes,
				UserAgent:          cfg.Download.UserAgent,
				RawDir:             cfg.Download.RawFilingsDir,
				IndicesDir:         cfg.Download.IndicesDir,
				MetadataFile:       cfg.Download.MetadataFile,
				CompanyInfoFile:    cfg.Download.CompanyInfoFile,
				SkipPresentIndices: cfg.Download.SkipPresentIndices,
			}, log)
		},
	}
}

func newExtractCmd() *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract items from downloaded filings into JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			log, closeLog, err := logging.New(cfg.LogDir, "extract_items")
			if err != nil {
				return err
			}
			defer closeLog()

			records, err := batch.ReadMetadata(cfg.Extract.MetadataFile)
			if err != nil {
				return fmt.Errorf("read filings metadata: %w", err)
			}
			records = batch.FilterByType(records, cfg.Extract.FilingTypes)
			if len(records) == 0 {
				log.Info("no filings to process", "filing_types", cfg.Extract.FilingTypes)
				return nil
			}

			extractor := edgar.NewExtractor(edgar.ExtractorConfig{
				RawDir:           cfg.Extract.RawFilingsDir,
				OutDir:           cfg.Extract.ExtractedDir,
				ItemsToExtract:   cfg.Extract.ItemsToExtract,
				RemoveTables:     cfg.Extract.RemoveTables,
				IncludeSignature: cfg.Extract.IncludeSignature,
				SkipExtracted:    cfg.Extract.SkipExtractedFilings,
			}, log)

			var ledger *store.Ledger
			if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
				ledger, err = store.Open(cmd.Context(), dbURL)
				if err != nil {
					return err
				}
				defer ledger.Close()
			}

			if workers > 0 {
				cfg.Extract.NumWorkers = workers
			}

			driver := &batch.Driver{
				Extractor: extractor,
				Workers:   cfg.Extract.NumWorkers,
				Ledger:    ledger,
				Log:       log,
			}

			log.Info("starting extraction", "filings", len(records), "workers", cfg.Extract.NumWorkers)
			summary, err := driver.Run(cmd.Context(), records)
			if err != nil {
				return err
			}
			log.Info("extraction completed",
				"run_id", summary.RunID,
				"processed", summary.Processed,
				"skipped", summary.Skipped,
				"output", cfg.Extract.ExtractedDir)
			return nil
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 0, "override the number of extraction workers")
	return cmd
}
