// Package config loads the host application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the complete host configuration: which account to operate on,
// where the ledger lives, and the optional journal and HTTP surface.
type Config struct {
	Account AccountConfig `json:"account" yaml:"account"`
	Store   StoreConfig   `json:"store" yaml:"store"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
	Market  MarketConfig  `json:"market" yaml:"market"`
	Server  ServerConfig  `json:"server" yaml:"server"`
	Log     LogConfig     `json:"log" yaml:"log"`
}

// AccountConfig describes the default account the CLI operates on.
type AccountConfig struct {
	ID              string  `json:"id" yaml:"id"`
	Currency        string  `json:"currency" yaml:"currency"`
	StartingBalance float64 `json:"starting_balance" yaml:"starting_balance"`
}

// StoreConfig selects and parameterizes the account store backend.
type StoreConfig struct {
	Type  string      `json:"type" yaml:"type"` // "memory", "file", "sqlite" or "redis"
	Path  string      `json:"path,omitempty" yaml:"path,omitempty"`
	Redis RedisConfig `json:"redis,omitempty" yaml:"redis,omitempty"`
}

type RedisConfig struct {
	Addr     string `json:"addr,omitempty" yaml:"addr,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	DB       int    `json:"db,omitempty" yaml:"db,omitempty"`
}

// JournalConfig parameterizes the optional settlement journal.
type JournalConfig struct {
	Type        string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	TradesFile  string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	BalanceFile string `json:"balance_file,omitempty" yaml:"balance_file,omitempty"`
	DBPath      string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// MarketConfig selects the quote feed used for mark-to-market valuation. With
// type "none" the engine runs without a price source and valuation is
// unavailable.
type MarketConfig struct {
	Type  string      `json:"type" yaml:"type"` // "none" or "redis"
	Redis RedisConfig `json:"redis,omitempty" yaml:"redis,omitempty"`
}

type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
}

// LoadFromFile loads configuration from a file (YAML or JSON based on what
// parses).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile writes the configuration as YAML (".yaml"/".yml") or indented
// JSON (anything else).
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Account.StartingBalance <= 0 {
		return fmt.Errorf("account.starting_balance must be positive")
	}

	switch c.Store.Type {
	case "memory":
	case "file", "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("store.path required for %s store", c.Store.Type)
		}
	case "redis":
		if c.Store.Redis.Addr == "" {
			return fmt.Errorf("store.redis.addr required for redis store")
		}
	default:
		return fmt.Errorf("store.type must be 'memory', 'file', 'sqlite' or 'redis'")
	}

	switch c.Market.Type {
	case "", "none":
	case "redis":
		if c.Market.Redis.Addr == "" {
			return fmt.Errorf("market.redis.addr required for redis market feed")
		}
	default:
		return fmt.Errorf("market.type must be 'none' or 'redis'")
	}

	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.BalanceFile == "" {
			return fmt.Errorf("journal trades_file and balance_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}

	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			ID:              "paper-001",
			Currency:        "USD",
			StartingBalance: 100000,
		},
		Store: StoreConfig{
			Type: "sqlite",
			Path: "./papertrader.sqlite",
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./journal.sqlite",
		},
		Server: ServerConfig{
			Addr: ":8090",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
