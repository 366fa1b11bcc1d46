// Package config loads client configuration from flags or a YAML file.
package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultBaseURL        = "http://localhost:8000/api/v1"
	defaultRequestTimeout = 30 * time.Second
	defaultSessionDBPath  = "walletctl.db"
	defaultJournalDir     = "./wal/operations"
	defaultAsset          = "USDT"
	defaultPageLimit      = 20
)

// Config validated client configuration.
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	SessionDBPath  string
	JournalDir     string
	DefaultAsset   string
	PageLimit      int
}

// ConfigTmp yaml-tagged intermediate representation.
type ConfigTmp struct {
	BaseURL        string        `yaml:"base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout,omitempty"`
	SessionDBPath  string        `yaml:"session_db,omitempty"`
	JournalDir     string        `yaml:"journal_dir,omitempty"`
	DefaultAsset   string        `yaml:"default_asset,omitempty"`
	PageLimit      int           `yaml:"page_limit,omitempty"`
}

// Get reads configuration from --config when given, otherwise from flags.
func Get() (Config, error) {
	configPath := flag.String("config", "", "path to yaml config")
	baseURL := flag.String("api", defaultBaseURL, "wallet API base URL")
	dbPath := flag.String("session-db", defaultSessionDBPath, "path to the session database")
	journalDir := flag.String("journal-dir", defaultJournalDir, "operation journal directory")
	asset := flag.String("asset", defaultAsset, "default asset symbol")
	flag.Parse()

	if *configPath != "" {
		return getYaml(*configPath)
	}

	cfg := Config{
		BaseURL:        strings.TrimRight(*baseURL, "/"),
		RequestTimeout: defaultRequestTimeout,
		SessionDBPath:  *dbPath,
		JournalDir:     *journalDir,
		DefaultAsset:   strings.ToUpper(*asset),
		PageLimit:      defaultPageLimit,
	}

	return cfg, cfg.validate()
}

func getYaml(path string) (Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var tmp ConfigTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return Config{}, err
	}

	cfg := Config{
		BaseURL:        strings.TrimRight(tmp.BaseURL, "/"),
		RequestTimeout: tmp.RequestTimeout,
		SessionDBPath:  tmp.SessionDBPath,
		JournalDir:     tmp.JournalDir,
		DefaultAsset:   strings.ToUpper(tmp.DefaultAsset),
		PageLimit:      tmp.PageLimit,
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.SessionDBPath == "" {
		cfg.SessionDBPath = defaultSessionDBPath
	}
	if cfg.JournalDir == "" {
		cfg.JournalDir = defaultJournalDir
	}
	if cfg.DefaultAsset == "" {
		cfg.DefaultAsset = defaultAsset
	}
	if cfg.PageLimit == 0 {
		cfg.PageLimit = defaultPageLimit
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.PageLimit <= 0 {
		return fmt.Errorf("page_limit must be positive, got %d", c.PageLimit)
	}
	return nil
}
