// Package config resolves runtime configuration for the risk API.
// Settings merge in priority order: built-in defaults, then an optional
// YAML file, then environment variables. Every external dependency is
// optional; an empty URL means the service falls back to its in-process
// implementation (memory store, memory cache, simulated bureau).
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration.
type Config struct {
	Port int

	DatabaseURL string
	RedisURL    string

	BureauURL string
	BureauKey string

	PolicyURL string
	PolicyKey string

	MarketURL string
	MarketKey string

	ReasonerURL   string
	ReasonerKey   string
	ReasonerModel string

	ProviderTimeout   time.Duration
	EvaluationTimeout time.Duration
	CacheTTL          time.Duration

	Workers      int
	PolicyBudget int

	SeedFile          string
	ApplicantSeedFile string
}

// configFile mirrors the YAML schema used by configs/default.yaml.
type configFile struct {
	Service struct {
		Port    int `yaml:"port"`
		Workers int `yaml:"workers"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL string `yaml:"postgres_url"`
		RedisURL    string `yaml:"redis_url"`
	} `yaml:"dependencies"`
	Providers struct {
		Bureau struct {
			URL string `yaml:"url"`
			Key string `yaml:"key"`
		} `yaml:"bureau"`
		Policy struct {
			URL string `yaml:"url"`
			Key string `yaml:"key"`
		} `yaml:"policy"`
		Market struct {
			URL string `yaml:"url"`
			Key string `yaml:"key"`
		} `yaml:"market"`
		Reasoner struct {
			URL   string `yaml:"url"`
			Key   string `yaml:"key"`
			Model string `yaml:"model"`
		} `yaml:"reasoner"`
	} `yaml:"providers"`
	Timeouts struct {
		ProviderSeconds   int `yaml:"provider_seconds"`
		EvaluationSeconds int `yaml:"evaluation_seconds"`
		CacheTTLMinutes   int `yaml:"cache_ttl_minutes"`
	} `yaml:"timeouts"`
	PolicyBudget      int    `yaml:"policy_budget"`
	SeedFile          string `yaml:"seed_file"`
	ApplicantSeedFile string `yaml:"applicant_seed_file"`
}

// Load resolves configuration from defaults, the file at path (when it
// exists), and finally environment overrides. A missing file is not an
// error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Config{
		Port:              8080,
		ReasonerModel:     "gpt-4o-mini",
		ProviderTimeout:   10 * time.Second,
		EvaluationTimeout: 30 * time.Second,
		CacheTTL:          6 * time.Hour,
		Workers:           8,
		PolicyBudget:      4000,
		SeedFile:          "data/market_seed.json",
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.Port > 0 {
			cfg.Port = f.Service.Port
		}
		if f.Service.Workers > 0 {
			cfg.Workers = f.Service.Workers
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		cfg.BureauURL = f.Providers.Bureau.URL
		cfg.BureauKey = f.Providers.Bureau.Key
		cfg.PolicyURL = f.Providers.Policy.URL
		cfg.PolicyKey = f.Providers.Policy.Key
		cfg.MarketURL = f.Providers.Market.URL
		cfg.MarketKey = f.Providers.Market.Key
		cfg.ReasonerURL = f.Providers.Reasoner.URL
		cfg.ReasonerKey = f.Providers.Reasoner.Key
		if f.Providers.Reasoner.Model != "" {
			cfg.ReasonerModel = f.Providers.Reasoner.Model
		}
		if f.Timeouts.ProviderSeconds > 0 {
			cfg.ProviderTimeout = time.Duration(f.Timeouts.ProviderSeconds) * time.Second
		}
		if f.Timeouts.EvaluationSeconds > 0 {
			cfg.EvaluationTimeout = time.Duration(f.Timeouts.EvaluationSeconds) * time.Second
		}
		if f.Timeouts.CacheTTLMinutes > 0 {
			cfg.CacheTTL = time.Duration(f.Timeouts.CacheTTLMinutes) * time.Minute
		}
		if f.PolicyBudget > 0 {
			cfg.PolicyBudget = f.PolicyBudget
		}
		if f.SeedFile != "" {
			cfg.SeedFile = f.SeedFile
		}
		if f.ApplicantSeedFile != "" {
			cfg.ApplicantSeedFile = f.ApplicantSeedFile
		}
	}

	cfg.Port = envInt("PORT", cfg.Port)
	cfg.DatabaseURL = envOrDefault("DATABASE_URL", cfg.DatabaseURL)
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.BureauURL = envOrDefault("BUREAU_URL", cfg.BureauURL)
	cfg.BureauKey = envOrDefault("BUREAU_API_KEY", cfg.BureauKey)
	cfg.PolicyURL = envOrDefault("POLICY_URL", cfg.PolicyURL)
	cfg.PolicyKey = envOrDefault("POLICY_API_KEY", cfg.PolicyKey)
	cfg.MarketURL = envOrDefault("MARKET_URL", cfg.MarketURL)
	cfg.MarketKey = envOrDefault("MARKET_API_KEY", cfg.MarketKey)
	cfg.ReasonerURL = envOrDefault("REASONER_URL", cfg.ReasonerURL)
	cfg.ReasonerKey = envOrDefault("REASONER_API_KEY", cfg.ReasonerKey)
	cfg.ReasonerModel = envOrDefault("REASONER_MODEL", cfg.ReasonerModel)
	cfg.ProviderTimeout = time.Duration(envInt("PROVIDER_TIMEOUT_SECONDS", int(cfg.ProviderTimeout.Seconds()))) * time.Second
	cfg.EvaluationTimeout = time.Duration(envInt("EVALUATION_TIMEOUT_SECONDS", int(cfg.EvaluationTimeout.Seconds()))) * time.Second
	cfg.CacheTTL = time.Duration(envInt("CACHE_TTL_MINUTES", int(cfg.CacheTTL.Minutes()))) * time.Minute
	cfg.Workers = envInt("WORKERS", cfg.Workers)
	cfg.PolicyBudget = envInt("POLICY_BUDGET", cfg.PolicyBudget)
	cfg.SeedFile = envOrDefault("SEED_FILE", cfg.SeedFile)
	cfg.ApplicantSeedFile = envOrDefault("APPLICANT_SEED_FILE", cfg.ApplicantSeedFile)

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.Workers <= 0 {
		return Config{}, fmt.Errorf("workers must be positive, got %d", cfg.Workers)
	}

	return cfg, nil
}

// envOrDefault returns an env var when present, otherwise the fallback.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars with safe fallback on empty/invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
