package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Ingestion of GSC exports
	Ingest IngestConfig `mapstructure:"ingest"`

	// LLM field extraction for PDF exports
	Agent AgentConfig `mapstructure:"agent"`

	// Report translation
	Translate TranslateConfig `mapstructure:"translate"`

	// Report history storage
	History HistoryConfig `mapstructure:"history"`

	// Export renderers
	Export ExportConfig `mapstructure:"export"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`
}

// IngestConfig holds ingestion and reconciliation settings
type IngestConfig struct {
	MaxConcurrency int `mapstructure:"max_concurrency"`
	ToleranceDays  int `mapstructure:"tolerance_days"`
	TopN           int `mapstructure:"top_n"`
	// SampleSize bounds how many keywords go into a stored report table
	SampleSize int `mapstructure:"sample_size"`
}

// AgentConfig holds the LLM provider configuration
type AgentConfig struct {
	Provider    string        `mapstructure:"provider"`
	Model       string        `mapstructure:"model"`
	APIKey      string        `mapstructure:"api_key"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// TranslateConfig holds the translation endpoints
type TranslateConfig struct {
	Endpoint         string        `mapstructure:"endpoint"`
	APIKey           string        `mapstructure:"api_key"`
	FallbackEndpoint string        `mapstructure:"fallback_endpoint"`
	SourceLang       string        `mapstructure:"source_lang"`
	Delay            time.Duration `mapstructure:"delay"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

// HistoryConfig selects and configures the history backend
type HistoryConfig struct {
	Backend       string `mapstructure:"backend"` // "file", "redis" or "postgres"
	Path          string `mapstructure:"path"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	KeyPrefix     string `mapstructure:"key_prefix"`
	DatabaseURL   string `mapstructure:"database_url"`
	// DeletePolicy is "keep-gaps" or "renumber" for section deletion
	DeletePolicy string `mapstructure:"delete_policy"`
}

// ExportConfig holds export settings
type ExportConfig struct {
	OutputDir   string        `mapstructure:"output_dir"`
	ChromePath  string        `mapstructure:"chrome_path"`
	PageWidthPx int           `mapstructure:"page_width_px"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // "json" or "text"
	Output     string `mapstructure:"output"` // "stdout", "stderr", "file" or "both"
	FilePath   string `mapstructure:"file_path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// Load loads configuration from an optional .env file, a config file and the
// environment. Every call reads afresh.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.reportsmith")
	}

	setDefaults(v)
	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is not an error, we'll use defaults and env
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	loadFromEnv(&config)

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("ingest.max_concurrency", 8)
	v.SetDefault("ingest.tolerance_days", 30)
	v.SetDefault("ingest.top_n", 5)
	v.SetDefault("ingest.sample_size", 20)

	v.SetDefault("agent.provider", "gemini")
	v.SetDefault("agent.model", "gemini-2.0-flash")
	v.SetDefault("agent.temperature", 0.1)
	v.SetDefault("agent.timeout", "60s")

	v.SetDefault("translate.endpoint", "https://libretranslate.com/translate")
	v.SetDefault("translate.fallback_endpoint", "https://api.mymemory.translated.net/get")
	v.SetDefault("translate.source_lang", "pt")
	v.SetDefault("translate.delay", "100ms")
	v.SetDefault("translate.timeout", "15s")

	v.SetDefault("history.backend", "file")
	v.SetDefault("history.path", "./data/history.json")
	v.SetDefault("history.redis_addr", "localhost:6379")
	v.SetDefault("history.key_prefix", "reportsmith")
	v.SetDefault("history.delete_policy", "keep-gaps")

	v.SetDefault("export.output_dir", ".")
	v.SetDefault("export.page_width_px", 1200)
	v.SetDefault("export.timeout", "60s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("logging.file_path", "./logs/reportsmith.log")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 28)
}

// bindEnvVars binds environment variables
func bindEnvVars(v *viper.Viper) {
	v.SetEnvPrefix("REPORTSMITH")
	v.AutomaticEnv()

	// Bind specific env vars
	_ = v.BindEnv("agent.api_key", "GEMINI_API_KEY")
	_ = v.BindEnv("translate.api_key", "TRANSLATE_API_KEY")
	_ = v.BindEnv("history.database_url", "DATABASE_URL")
	_ = v.BindEnv("history.redis_addr", "REDIS_ADDR")
}

// loadFromEnv loads configuration from environment variables
func loadFromEnv(config *Config) {
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.Agent.APIKey = apiKey
	}
	if apiKey := os.Getenv("TRANSLATE_API_KEY"); apiKey != "" {
		config.Translate.APIKey = apiKey
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		config.History.DatabaseURL = url
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		config.History.RedisAddr = addr
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Ingest.MaxConcurrency <= 0 {
		return fmt.Errorf("ingest.max_concurrency must be positive")
	}
	if c.Ingest.ToleranceDays <= 0 {
		return fmt.Errorf("ingest.tolerance_days must be positive")
	}
	if c.Ingest.TopN <= 0 {
		return fmt.Errorf("ingest.top_n must be positive")
	}

	switch c.History.Backend {
	case "file", "redis", "postgres":
	default:
		return fmt.Errorf("history.backend must be file, redis or postgres, got %q", c.History.Backend)
	}
	if c.History.Backend == "postgres" && c.History.DatabaseURL == "" {
		return fmt.Errorf("history.database_url is required for the postgres backend")
	}
	switch c.History.DeletePolicy {
	case "keep-gaps", "renumber":
	default:
		return fmt.Errorf("history.delete_policy must be keep-gaps or renumber, got %q", c.History.DeletePolicy)
	}

	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic":
	default:
		return fmt.Errorf("logging.level %q is not a known level", c.Logging.Level)
	}

	return nil
}

// Warnings lists settings that disable optional features
func (c *Config) Warnings() []string {
	var warnings []string
	if c.Agent.APIKey == "" {
		warnings = append(warnings, "Gemini API key not set. PDF ingestion will be disabled.")
	}
	return warnings
}
