// Package config provides Viper-based hierarchical configuration management
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"fjacquet/beancount-import/internal/logging"
)

// EnvPrefix prefixes every environment override (BEANCOUNT_IMPORT_LOG_LEVEL, ...).
const EnvPrefix = "BEANCOUNT_IMPORT"

// Cembra extractor names
const (
	ExtractorPdfToHTML = "pdftohtml"
	ExtractorNative    = "native"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Ledger struct {
		Currency string `mapstructure:"currency" yaml:"currency"`
		Flag     string `mapstructure:"flag" yaml:"flag"`
	} `mapstructure:"ledger" yaml:"ledger"`

	Rules struct {
		File string `mapstructure:"file" yaml:"file"`
	} `mapstructure:"rules" yaml:"rules"`

	Accounts struct {
		BCV        string `mapstructure:"bcv" yaml:"bcv"`
		Revolut    string `mapstructure:"revolut" yaml:"revolut"`
		CreditCard string `mapstructure:"credit_card" yaml:"credit_card"`
	} `mapstructure:"accounts" yaml:"accounts"`

	Parsers struct {
		BCV struct {
			HeaderMarker  string `mapstructure:"header_marker" yaml:"header_marker"`
			SkipEmptyRows bool   `mapstructure:"skip_empty_rows" yaml:"skip_empty_rows"`
		} `mapstructure:"bcv" yaml:"bcv"`
		Cembra struct {
			FirstPage int    `mapstructure:"first_page" yaml:"first_page"`
			Extractor string `mapstructure:"extractor" yaml:"extractor"`
		} `mapstructure:"cembra" yaml:"cembra"`
	} `mapstructure:"parsers" yaml:"parsers"`

	Tools struct {
		SSConvert      string `mapstructure:"ssconvert" yaml:"ssconvert"`
		PdfToHTML      string `mapstructure:"pdftohtml" yaml:"pdftohtml"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	} `mapstructure:"tools" yaml:"tools"`

	AI struct {
		Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
		Model          string `mapstructure:"model" yaml:"model"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		APIKey         string `mapstructure:"api_key" yaml:"-"` // Never serialize API key
	} `mapstructure:"ai" yaml:"ai"`

	Server struct {
		Address     string `mapstructure:"address" yaml:"address"`
		BodyLimitMB int    `mapstructure:"body_limit_mb" yaml:"body_limit_mb"`
	} `mapstructure:"server" yaml:"server"`
}

// ToolTimeout returns the per-invocation limit for external converters.
func (c *Config) ToolTimeout() time.Duration {
	return time.Duration(c.Tools.TimeoutSeconds) * time.Second
}

// AITimeout returns the per-request limit for the AI fallback.
func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.AI.TimeoutSeconds) * time.Second
}

// InitializeConfig initializes Viper configuration with hierarchical loading.
// When configFile is empty, config.yaml is searched in the usual locations and
// may be absent; an explicit configFile must exist.
func InitializeConfig(configFile string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.beancount-import")
		v.AddConfigPath(".beancount-import")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	// 5. Handle special case for API key (always from env, not prefixed)
	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind GEMINI_API_KEY environment variable: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Ledger defaults
	v.SetDefault("ledger.currency", "CHF")
	v.SetDefault("ledger.flag", "*")

	v.SetDefault("rules.file", "")

	// Account defaults
	v.SetDefault("accounts.bcv", "Assets:Banks:BCV")
	v.SetDefault("accounts.revolut", "Assets:Banks:Revolut")
	v.SetDefault("accounts.credit_card", "Liabilities:CreditCard")

	// Parser defaults
	v.SetDefault("parsers.bcv.header_marker", "\"Date d'exécution")
	v.SetDefault("parsers.bcv.skip_empty_rows", false)
	v.SetDefault("parsers.cembra.first_page", 2)
	v.SetDefault("parsers.cembra.extractor", ExtractorPdfToHTML)

	// External tool defaults
	v.SetDefault("tools.ssconvert", "ssconvert")
	v.SetDefault("tools.pdftohtml", "pdftohtml")
	v.SetDefault("tools.timeout_seconds", 60)

	// AI defaults
	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "gemini-1.5-flash")
	v.SetDefault("ai.timeout_seconds", 30)

	// Server defaults
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.body_limit_mb", 16)
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	// Validate log level
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	// Validate log format
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	// Validate ledger settings
	if config.Ledger.Currency == "" || strings.ContainsAny(config.Ledger.Currency, " \t\n") {
		return fmt.Errorf("ledger.currency must be a non-empty commodity name, got: %q", config.Ledger.Currency)
	}
	if config.Ledger.Flag != "*" && config.Ledger.Flag != "!" {
		return fmt.Errorf("ledger.flag must be '*' or '!', got: %s", config.Ledger.Flag)
	}

	// Validate accounts
	if config.Accounts.BCV == "" || config.Accounts.Revolut == "" || config.Accounts.CreditCard == "" {
		return fmt.Errorf("accounts.bcv, accounts.revolut and accounts.credit_card must not be empty")
	}

	// Validate parser settings
	if config.Parsers.Cembra.FirstPage < 1 {
		return fmt.Errorf("parsers.cembra.first_page must be at least 1, got: %d", config.Parsers.Cembra.FirstPage)
	}
	switch config.Parsers.Cembra.Extractor {
	case ExtractorPdfToHTML, ExtractorNative:
	default:
		return fmt.Errorf("parsers.cembra.extractor must be '%s' or '%s', got: %s",
			ExtractorPdfToHTML, ExtractorNative, config.Parsers.Cembra.Extractor)
	}

	if config.Tools.TimeoutSeconds < 1 || config.Tools.TimeoutSeconds > 3600 {
		return fmt.Errorf("tools.timeout_seconds must be between 1 and 3600, got: %d", config.Tools.TimeoutSeconds)
	}

	// Validate AI configuration
	if config.AI.Enabled {
		if config.AI.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY required when AI is enabled")
		}

		if config.AI.TimeoutSeconds < 1 || config.AI.TimeoutSeconds > 300 {
			return fmt.Errorf("ai.timeout_seconds must be between 1 and 300, got: %d", config.AI.TimeoutSeconds)
		}
	}

	if config.Server.BodyLimitMB < 1 || config.Server.BodyLimitMB > 1024 {
		return fmt.Errorf("server.body_limit_mb must be between 1 and 1024, got: %d", config.Server.BodyLimitMB)
	}

	return nil
}

// ConfigureLoggingFromConfig configures logging based on the Config struct
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	return logging.NewLogrus(config.Log.Level, config.Log.Format, nil)
}
