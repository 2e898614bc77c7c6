package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"FibTrader/internal/strategy"
)

// Config holds all application configuration. It is loaded once at startup and
// passed by value; nothing reads it from globals afterwards.
type Config struct {
	Exchange struct {
		BaseURL    string `yaml:"base_url"`
		APIKey     string `yaml:"api_key"`
		SecretKey  string `yaml:"secret_key"`
		Live       bool   `yaml:"live"`        // submit real orders instead of paper fills
		TestOrders bool   `yaml:"test_orders"` // route live orders to the validation endpoint
	} `yaml:"exchange"`
	Market struct {
		Symbol   string `yaml:"symbol"`
		Interval string `yaml:"interval"`
		Limit    int    `yaml:"limit"`
	} `yaml:"market"`
	Strategy strategy.Params `yaml:"strategy"`
	Trading  struct {
		OrderQuantity string `yaml:"order_quantity"`
	} `yaml:"trading"`
	Loop struct {
		PollSchedule       string `yaml:"poll_schedule"`
		RetryDelaySecs     int    `yaml:"retry_delay_secs"`
		ResetPositionSecs  int    `yaml:"reset_position_secs"`
		MaxRetries         int    `yaml:"max_retries"`
		RequestTimeoutSecs int    `yaml:"request_timeout_secs"`
	} `yaml:"loop"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
	MetricsAddr string `yaml:"metrics_addr"`
	Proxy       string `yaml:"proxy"`
}

// Load reads config from a YAML file, then a .env file next to the process,
// then applies environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{Strategy: strategy.DefaultParams()}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env never overrides variables already present in the environment
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("BINANCE_API_KEY"); v != "" {
		cfg.Exchange.APIKey = v
	}
	if v := os.Getenv("BINANCE_SECRET_KEY"); v != "" {
		cfg.Exchange.SecretKey = v
	}
	if v := os.Getenv("BINANCE_BASE_URL"); v != "" {
		cfg.Exchange.BaseURL = v
	}
	if v := os.Getenv("SYMBOL"); v != "" {
		cfg.Market.Symbol = v
	}
	if v := os.Getenv("TIMEFRAME"); v != "" {
		cfg.Market.Interval = v
	}
	if v := os.Getenv("POLL_SCHEDULE"); v != "" {
		cfg.Loop.PollSchedule = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"LIMIT", &cfg.Market.Limit},
		{"RETRY_DELAY", &cfg.Loop.RetryDelaySecs},
		{"RESET_POSITION_TIMEOUT", &cfg.Loop.ResetPositionSecs},
		{"MAX_RETRIES", &cfg.Loop.MaxRetries},
	}
	for _, e := range ints {
		v := os.Getenv(e.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("env %s: %w", e.key, err)
		}
		*e.dst = n
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Exchange.BaseURL == "" {
		cfg.Exchange.BaseURL = "https://api.binance.com"
	}
	if cfg.Market.Symbol == "" {
		cfg.Market.Symbol = "BTC/USDT"
	}
	if cfg.Market.Interval == "" {
		cfg.Market.Interval = "1m"
	}
	if cfg.Market.Limit == 0 {
		cfg.Market.Limit = 20
	}
	if cfg.Strategy.ToleranceBasis == "" {
		cfg.Strategy.ToleranceBasis = strategy.ToleranceRange
	}
	if cfg.Trading.OrderQuantity == "" {
		cfg.Trading.OrderQuantity = "0.001"
	}
	if cfg.Loop.PollSchedule == "" {
		cfg.Loop.PollSchedule = "@every 60s"
	}
	if cfg.Loop.RetryDelaySecs == 0 {
		cfg.Loop.RetryDelaySecs = 60
	}
	if cfg.Loop.ResetPositionSecs == 0 {
		cfg.Loop.ResetPositionSecs = 3600
	}
	if cfg.Loop.MaxRetries == 0 {
		cfg.Loop.MaxRetries = 3
	}
	if cfg.Loop.RequestTimeoutSecs == 0 {
		cfg.Loop.RequestTimeoutSecs = 10
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// Validate checks that all required fields are set and consistent.
func (c *Config) Validate() error {
	if err := c.Strategy.Validate(); err != nil {
		return fmt.Errorf("strategy: %w", err)
	}
	if c.Market.Symbol == "" {
		return fmt.Errorf("market.symbol is required")
	}
	if c.Market.Limit < c.Strategy.SlowPeriod {
		return fmt.Errorf("market.limit %d is below strategy.slow_period %d", c.Market.Limit, c.Strategy.SlowPeriod)
	}
	if c.Market.Limit > 1000 {
		return fmt.Errorf("market.limit must not exceed 1000")
	}
	if c.Loop.RetryDelaySecs < 0 || c.Loop.ResetPositionSecs < 0 || c.Loop.MaxRetries < 0 {
		return fmt.Errorf("loop timings must not be negative")
	}
	if c.Exchange.Live {
		if c.Exchange.APIKey == "" {
			return fmt.Errorf("exchange.api_key is required for live trading")
		}
		if c.Exchange.SecretKey == "" {
			return fmt.Errorf("exchange.secret_key is required for live trading")
		}
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

// RetryDelay is the pause between failed fetch attempts.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.Loop.RetryDelaySecs) * time.Second
}

// ResetTimeout is how long a position may stay open without a new trade.
func (c *Config) ResetTimeout() time.Duration {
	return time.Duration(c.Loop.ResetPositionSecs) * time.Second
}

// RequestTimeout bounds a single exchange HTTP call.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Loop.RequestTimeoutSecs) * time.Second
}
