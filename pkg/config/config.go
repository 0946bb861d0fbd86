// Package config loads the crawler configuration from a YAML file with a
// download section and an extract section, mirroring the two pipeline
// stages.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// DownloadConfig configures the filing download stage.
type DownloadConfig struct {
	StartYear          int      `yaml:"start_year"`
	EndYear            int      `yaml:"end_year"`
	Quarters           []int    `yaml:"quarters"`
	FilingTypes        []string `yaml:"filing_types"`
	CIKTickers         []string `yaml:"cik_tickers"`
	CIKTickersFile     string   `yaml:"cik_tickers_file"`
	NonPeriodicTypes   []string `yaml:"non_periodic_filing_types"`
	UserAgent          string   `yaml:"user_agent"`
	RawFilingsDir      string   `yaml:"raw_filings_folder"`
	IndicesDir         string   `yaml:"indices_folder"`
	MetadataFile       string   `yaml:"filings_metadata_file"`
	CompanyInfoFile    string   `yaml:"companies_info_file"`
	SkipPresentIndices bool     `yaml:"skip_present_indices"`
}

// ExtractConfig configures the item extraction stage.
type ExtractConfig struct {
	RawFilingsDir        string   `yaml:"raw_filings_folder"`
	ExtractedDir         string   `yaml:"extracted_filings_folder"`
	MetadataFile         string   `yaml:"filings_metadata_file"`
	FilingTypes          []string `yaml:"filing_types"`
	ItemsToExtract       []string `yaml:"items_to_extract"`
	RemoveTables         bool     `yaml:"remove_tables"`
	IncludeSignature     bool     `yaml:"include_signature"`
	SkipExtractedFilings bool     `yaml:"skip_extracted_filings"`
	NumWorkers           int      `yaml:"num_workers"`
}

type Config struct {
	Download DownloadConfig `yaml:"download_filings"`
	Extract  ExtractConfig  `yaml:"extract_items"`
	LogDir   string         `yaml:"log_folder"`
}

// Load reads and validates the configuration file, applying defaults for
// optional fields.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if len(c.Download.Quarters) == 0 {
		c.Download.Quarters = []int{1, 2, 3, 4}
	}
	if c.Download.RawFilingsDir == "" {
		c.Download.RawFilingsDir = "datasets/RAW_FILINGS"
	}
	if c.Download.IndicesDir == "" {
		c.Download.IndicesDir = "datasets/INDICES"
	}
	if c.Download.MetadataFile == "" {
		c.Download.MetadataFile = "datasets/FILINGS_METADATA.csv"
	}
	if c.Download.CompanyInfoFile == "" {
		c.Download.CompanyInfoFile = "datasets/companies_info.json"
	}
	if c.Extract.RawFilingsDir == "" {
		c.Extract.RawFilingsDir = c.Download.RawFilingsDir
	}
	if c.Extract.ExtractedDir == "" {
		c.Extract.ExtractedDir = "datasets/EXTRACTED_FILINGS"
	}
	if c.Extract.MetadataFile == "" {
		c.Extract.MetadataFile = c.Download.MetadataFile
	}
	if c.Extract.NumWorkers < 1 {
		c.Extract.NumWorkers = 1
	}
	if c.LogDir == "" {
		c.LogDir = "logs"
	}
}
