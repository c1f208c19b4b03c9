package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "FILING_SCANNER_CONFIG"
	databaseDSN   = "DATABASE_DSN"
	userAgentEnv  = "EDGAR_USER_AGENT"
	rulesPathEnv  = "RULES_PATH"
	logLevelEnv   = "LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Database  DatabaseConfig  `yaml:"database"`
	Ingestion IngestionConfig `yaml:"ingestion"`
	Rules     RulesConfig     `yaml:"rules"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
}

// LoggingConfig controls the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig describes Postgres connection details.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// IngestionConfig describes the filing source. URLTemplate takes a single
// %s placeholder for the ticker. SEC EDGAR rejects requests without a
// descriptive User-Agent, so it is part of the config surface.
type IngestionConfig struct {
	Source      string `yaml:"source"`
	URLTemplate string `yaml:"urlTemplate"`
	UserAgent   string `yaml:"userAgent"`
}

// RulesConfig points to an external rule table; empty means the embedded
// default set.
type RulesConfig struct {
	Path string `yaml:"path"`
}

// AnalysisConfig sets batch parameters. Interval is a Go duration string
// ("24h"); empty means run one batch and exit.
type AnalysisConfig struct {
	Workers  int      `yaml:"workers"`
	Tickers  []string `yaml:"tickers"`
	Interval string   `yaml:"interval"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	if cfg.Analysis.Workers <= 0 {
		cfg.Analysis.Workers = defaultConfig().Analysis.Workers
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSN); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(userAgentEnv); v != "" {
		c.Ingestion.UserAgent = v
	}

	if v := os.Getenv(rulesPathEnv); v != "" {
		c.Rules.Path = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Ingestion.Source != "" {
		base.Ingestion.Source = override.Ingestion.Source
	}
	if override.Ingestion.URLTemplate != "" {
		base.Ingestion.URLTemplate = override.Ingestion.URLTemplate
	}
	if override.Ingestion.UserAgent != "" {
		base.Ingestion.UserAgent = override.Ingestion.UserAgent
	}

	if override.Rules.Path != "" {
		base.Rules = override.Rules
	}

	if override.Analysis.Workers > 0 {
		base.Analysis.Workers = override.Analysis.Workers
	}
	if len(override.Analysis.Tickers) > 0 {
		base.Analysis.Tickers = override.Analysis.Tickers
	}
	if override.Analysis.Interval != "" {
		base.Analysis.Interval = override.Analysis.Interval
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging:  LoggingConfig{Level: "info"},
		Database: DatabaseConfig{DSN: ""},
		Ingestion: IngestionConfig{
			Source:      "edgar",
			URLTemplate: "https://www.sec.gov/cgi-bin/browse-edgar?action=getcompany&company=%s&type=10-K&output=atom",
			UserAgent:   "FilingScanner/1.0 (research; contact@example.org)",
		},
		Rules:    RulesConfig{Path: ""},
		Analysis: AnalysisConfig{Workers: 4},
	}
}
