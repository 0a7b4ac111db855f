// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"partnerops/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Server contains HTTP server settings
	Server ServerConfig `json:"server"`

	// Database contains back-office database settings
	Database DatabaseConfig `json:"database"`

	// Pricing contains pricing defaults
	Pricing PricingConfig `json:"pricing"`

	// Affiliate contains affiliate platform client settings
	Affiliate ClientConfig `json:"affiliate,omitempty"`

	// Subscriptions contains subscription platform client settings
	Subscriptions ClientConfig `json:"subscriptions,omitempty"`

	// Mail contains transactional mail client settings
	Mail ClientConfig `json:"mail,omitempty"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	// Addr is the listen address
	Addr string `json:"addr"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	// URL is the Postgres connection string; empty disables the back-office store
	URL string `json:"url,omitempty"`
}

// PricingConfig contains pricing defaults
type PricingConfig struct {
	// Currency is the display currency
	Currency string `json:"currency"`

	// BasePrice is the retail price per seat for one 6-month billing cycle
	BasePrice string `json:"base_price"`
}

// ClientConfig contains settings for an upstream SaaS client
type ClientConfig struct {
	// BaseURL is the API base URL
	BaseURL string `json:"base_url,omitempty"`

	// APIKey is the bearer token
	APIKey string `json:"api_key,omitempty"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Server: ServerConfig{
			Addr: ":8080",
		},
		Pricing: PricingConfig{
			Currency:  "USD",
			BasePrice: "79.00",
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file, falling back to defaults when the
// file does not exist. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else if err := json.Unmarshal(data, config); err != nil {
		return nil, err
	}

	applyEnv(config)
	return config, nil
}

// applyEnv overlays deployment settings from the environment.
func applyEnv(config *Config) {
	v := viper.New()
	v.AutomaticEnv()
	for _, key := range []string{
		"SERVER_ADDR",
		"DATABASE_URL",
		"AFFILIATE_API_URL", "AFFILIATE_API_KEY",
		"SUBS_API_URL", "SUBS_API_KEY",
		"MAIL_API_URL", "MAIL_API_KEY",
	} {
		_ = v.BindEnv(key)
	}

	if addr := v.GetString("SERVER_ADDR"); addr != "" {
		config.Server.Addr = addr
	}
	if url := v.GetString("DATABASE_URL"); url != "" {
		config.Database.URL = url
	}
	if url := v.GetString("AFFILIATE_API_URL"); url != "" {
		config.Affiliate.BaseURL = url
	}
	if key := v.GetString("AFFILIATE_API_KEY"); key != "" {
		config.Affiliate.APIKey = key
	}
	if url := v.GetString("SUBS_API_URL"); url != "" {
		config.Subscriptions.BaseURL = url
	}
	if key := v.GetString("SUBS_API_KEY"); key != "" {
		config.Subscriptions.APIKey = key
	}
	if url := v.GetString("MAIL_API_URL"); url != "" {
		config.Mail.BaseURL = url
	}
	if key := v.GetString("MAIL_API_KEY"); key != "" {
		config.Mail.APIKey = key
	}
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
