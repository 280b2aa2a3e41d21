package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"LootSpinner/internal/model"
)

// Log formats for the raw result and account logs.
const (
	LogFormatArray  = "array"
	LogFormatNDJSON = "ndjson"
)

// Run holds the fixed parameters of one spin run. It is copied by value
// into the runner and never mutated after startup.
type Run struct {
	Interval     time.Duration `yaml:"interval"`
	MaxSpins     int           `yaml:"max_spins"`
	Quantity     int           `yaml:"quantity"`
	Price        float64       `yaml:"price"`
	AccountEvery int           `yaml:"account_every"`
	LogResults   bool          `yaml:"log_results"`
}

// API describes the upstream Lootify endpoints.
type API struct {
	BaseURL     string        `yaml:"base_url"`
	Network     string        `yaml:"network"`
	Slug        string        `yaml:"slug"`
	ServiceCode string        `yaml:"service_code"`
	Referer     string        `yaml:"referer"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Config holds all application configuration.
type Config struct {
	API       API    `yaml:"api"`
	Run       Run    `yaml:"run"`
	TokenPath string `yaml:"token_path"`
	Wallet    string `yaml:"wallet"`
	Logs      struct {
		Dir    string `yaml:"dir"`
		Format string `yaml:"format"`
	} `yaml:"logs"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	// log_results defaults to true; an explicit false in YAML overrides it.
	cfg.Run.LogResults = true

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("LOOT_API_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("LOOT_TOKEN_PATH"); v != "" {
		cfg.TokenPath = v
	}
	if v := os.Getenv("LOOT_WALLET"); v != "" {
		cfg.Wallet = v
	}
	if v := os.Getenv("LOOT_MAX_SPINS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("LOOT_MAX_SPINS=%q is not a valid integer", v)
		}
		cfg.Run.MaxSpins = n
	}
	if v := os.Getenv("LOOT_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("LOOT_INTERVAL=%q is not a valid duration", v)
		}
		cfg.Run.Interval = d
	}
	if v := os.Getenv("LOOT_LOG_DIR"); v != "" {
		cfg.Logs.Dir = v
	}
	if v := os.Getenv("LOOT_CRON"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "https://1vpveb4uje.execute-api.us-east-2.amazonaws.com"
	}
	if cfg.API.Network == "" {
		cfg.API.Network = "solana"
	}
	if cfg.API.Slug == "" {
		cfg.API.Slug = "monad-box1"
	}
	if cfg.API.ServiceCode == "" {
		cfg.API.ServiceCode = "4ri65117e8w"
	}
	if cfg.API.Referer == "" {
		cfg.API.Referer = "https://beta.lootify.xyz/"
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 30 * time.Second
	}
	if cfg.Run.Interval == 0 {
		cfg.Run.Interval = 5 * time.Second
	}
	if cfg.Run.MaxSpins == 0 {
		cfg.Run.MaxSpins = 100
	}
	if cfg.Run.Quantity == 0 {
		cfg.Run.Quantity = 5
	}
	if cfg.Run.Price == 0 {
		cfg.Run.Price = 5
	}
	if cfg.Run.AccountEvery == 0 {
		cfg.Run.AccountEvery = 5
	}
	if cfg.TokenPath == "" {
		cfg.TokenPath = "./token.txt"
	}
	if cfg.Logs.Dir == "" {
		cfg.Logs.Dir = "."
	}
	if cfg.Logs.Format == "" {
		cfg.Logs.Format = LogFormatArray
	}

	return cfg, nil
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.Run.Interval <= 0 {
		return fmt.Errorf("run.interval must be positive")
	}
	if c.Run.MaxSpins <= 0 {
		return fmt.Errorf("run.max_spins must be positive")
	}
	if c.Run.Quantity <= 0 {
		return fmt.Errorf("run.quantity must be positive")
	}
	if c.Run.Price < 0 {
		return fmt.Errorf("run.price must not be negative")
	}
	if c.Run.AccountEvery <= 0 {
		return fmt.Errorf("run.account_every must be positive")
	}
	if c.Logs.Format != LogFormatArray && c.Logs.Format != LogFormatNDJSON {
		return fmt.Errorf("logs.format must be %q or %q, got %q", LogFormatArray, LogFormatNDJSON, c.Logs.Format)
	}
	if c.Wallet != "" {
		if err := model.ValidateWallet(c.Wallet); err != nil {
			return fmt.Errorf("wallet: %w", err)
		}
	}
	return nil
}
