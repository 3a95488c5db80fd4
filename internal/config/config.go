package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"PoolWarden/internal/chain"
	"PoolWarden/internal/cycle"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Node struct {
		BaseURL   string `yaml:"base_url"`
		Token     string `yaml:"token"`
		WalletURL string `yaml:"wallet_url"`
	} `yaml:"node"`
	Pool struct {
		ContributionDay    int      `yaml:"contribution_day"`
		PayoutDay          int      `yaml:"payout_day"`
		ContributionAmount uint64   `yaml:"contribution_amount"`
		PayoutFraction     string   `yaml:"payout_fraction"`
		SwapRate           string   `yaml:"swap_rate"`
		FeeDivisor         uint64   `yaml:"fee_divisor"`
		Threshold          int      `yaml:"threshold"`
		Signatories        []string `yaml:"signatories"`
		ConfirmationRounds int      `yaml:"confirmation_rounds"`
		StateFile          string   `yaml:"state_file"`
	} `yaml:"pool"`
	Schedule struct {
		CycleHour int `yaml:"cycle_hour"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

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
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("NODE_BASE_URL"); v != "" {
		cfg.Node.BaseURL = v
	}
	if v := os.Getenv("NODE_TOKEN"); v != "" {
		cfg.Node.Token = v
	}
	if v := os.Getenv("WALLET_URL"); v != "" {
		cfg.Node.WalletURL = v
	}
	if v := os.Getenv("POOL_STATE_FILE"); v != "" {
		cfg.Pool.StateFile = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CONTRIBUTION_AMOUNT"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Pool.ContributionAmount = n
		}
	}

	// Defaults
	if cfg.Pool.ContributionDay == 0 {
		cfg.Pool.ContributionDay = 1
	}
	if cfg.Pool.PayoutDay == 0 {
		// Payouts follow contributions by one day, wrapping inside the month.
		cfg.Pool.PayoutDay = cfg.Pool.ContributionDay%31 + 1
	}
	if cfg.Pool.ContributionAmount == 0 {
		cfg.Pool.ContributionAmount = 1_000_000
	}
	if cfg.Pool.PayoutFraction == "" {
		cfg.Pool.PayoutFraction = "0.60"
	}
	if cfg.Pool.SwapRate == "" {
		cfg.Pool.SwapRate = "2"
	}
	if cfg.Pool.FeeDivisor == 0 {
		cfg.Pool.FeeDivisor = 100
	}
	if cfg.Pool.ConfirmationRounds == 0 {
		cfg.Pool.ConfirmationRounds = 4
	}
	if cfg.Pool.StateFile == "" {
		cfg.Pool.StateFile = "data/pool_state.json"
	}
	if cfg.Schedule.CycleHour == 0 {
		cfg.Schedule.CycleHour = 9
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/pool_warden.db"
	}

	return cfg, nil
}

// Validate checks that all required fields are set and in range.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	if err := cycle.ValidateDay(c.Pool.ContributionDay); err != nil {
		return fmt.Errorf("pool.contribution_day: %w", err)
	}
	if err := cycle.ValidateDay(c.Pool.PayoutDay); err != nil {
		return fmt.Errorf("pool.payout_day: %w", err)
	}
	fraction, err := decimal.NewFromString(c.Pool.PayoutFraction)
	if err != nil {
		return fmt.Errorf("pool.payout_fraction: %w", err)
	}
	if fraction.IsNegative() || fraction.IsZero() || fraction.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("pool.payout_fraction %s must be in (0, 1]", fraction)
	}
	rate, err := decimal.NewFromString(c.Pool.SwapRate)
	if err != nil {
		return fmt.Errorf("pool.swap_rate: %w", err)
	}
	if !rate.IsPositive() {
		return fmt.Errorf("pool.swap_rate %s must be positive", rate)
	}
	if c.Pool.Threshold < 1 || c.Pool.Threshold > len(c.Pool.Signatories) {
		return fmt.Errorf("pool.threshold %d of %d signatories is invalid",
			c.Pool.Threshold, len(c.Pool.Signatories))
	}
	for _, addr := range c.Pool.Signatories {
		if !chain.ValidAddress(addr) {
			return fmt.Errorf("pool.signatories: address %q must be %d characters", addr, chain.AddressLen)
		}
	}
	if c.Schedule.CycleHour < 0 || c.Schedule.CycleHour > 23 {
		return fmt.Errorf("schedule.cycle_hour %d must be 0-23", c.Schedule.CycleHour)
	}
	return nil
}

// PayoutFraction returns the parsed payout fraction. Call Validate first.
func (c *Config) PayoutFraction() decimal.Decimal {
	d, _ := decimal.NewFromString(c.Pool.PayoutFraction)
	return d
}

// SwapRate returns the parsed swap rate. Call Validate first.
func (c *Config) SwapRate() decimal.Decimal {
	d, _ := decimal.NewFromString(c.Pool.SwapRate)
	return d
}
