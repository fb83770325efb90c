// Package config loads runtime configuration from defaults, an optional config
// file and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret"`
	TokenTTL      time.Duration `mapstructure:"token_ttl"`
	AdminUsername string        `mapstructure:"admin_username"`
	AdminPassword string        `mapstructure:"admin_password"`
}

type InventoryConfig struct {
	LowStockThreshold int    `mapstructure:"low_stock_threshold"`
	PageSize          int    `mapstructure:"page_size"`
	Timezone          string `mapstructure:"timezone"`
	CurrencySymbol    string `mapstructure:"currency_symbol"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type SMTPConfig struct {
	Server      string `mapstructure:"server"`
	Port        string `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	From        string `mapstructure:"from"`
	To          string `mapstructure:"to"`
	AuthDisable bool   `mapstructure:"auth_disabled"`
}

// Enabled reports whether alert mails can be sent.
func (s SMTPConfig) Enabled() bool {
	return s.Server != "" && s.From != "" && s.To != ""
}

// Config is the full runtime configuration. RedisAddr is optional: when empty,
// sessions, live events and the alert log stay in process.
type Config struct {
	Storage     string          `mapstructure:"storage"`
	DatabaseURL string          `mapstructure:"database_url"`
	RedisAddr   string          `mapstructure:"redis_addr"`
	HTTP        HTTPConfig      `mapstructure:"http"`
	Auth        AuthConfig      `mapstructure:"auth"`
	Inventory   InventoryConfig `mapstructure:"inventory"`
	RateLimit   RateLimitConfig `mapstructure:"ratelimit"`
	SMTP        SMTPConfig      `mapstructure:"smtp"`
}

// Location resolves the configured timezone used to decide what "today" is.
func (c Config) Location() (*time.Location, error) {
	if c.Inventory.Timezone == "" || c.Inventory.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Inventory.Timezone)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage", StoragePostgres)
	v.SetDefault("database_url", "")
	v.SetDefault("redis_addr", "")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.shutdown_timeout", 15*time.Second)
	v.SetDefault("auth.jwt_secret", "super-secret-key")
	v.SetDefault("auth.token_ttl", 15*time.Minute)
	v.SetDefault("auth.admin_username", "admin")
	v.SetDefault("auth.admin_password", "")
	v.SetDefault("inventory.low_stock_threshold", 5)
	v.SetDefault("inventory.page_size", 5)
	v.SetDefault("inventory.timezone", "Local")
	v.SetDefault("inventory.currency_symbol", "₹")
	v.SetDefault("ratelimit.rps", 5.0)
	v.SetDefault("ratelimit.burst", 10)
	v.SetDefault("smtp.server", "")
	v.SetDefault("smtp.port", "587")
	v.SetDefault("smtp.user", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")
	v.SetDefault("smtp.to", "")
	v.SetDefault("smtp.auth_disabled", false)
}

// Load reads config.yaml from the working directory or /etc/inventory-dashboard
// when present, then applies INVENTORY_* environment overrides. DATABASE_URL and
// REDIS_ADDR are honoured without the prefix.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/inventory-dashboard")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("INVENTORY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("database_url", "INVENTORY_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("redis_addr", "INVENTORY_REDIS_ADDR", "REDIS_ADDR")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Storage {
	case StorageMemory:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return errors.New("database_url is required for postgres storage")
		}
	default:
		return fmt.Errorf("unknown storage %q", c.Storage)
	}
	if c.Inventory.LowStockThreshold <= 0 {
		return errors.New("inventory.low_stock_threshold must be greater than zero")
	}
	if c.Inventory.PageSize <= 0 {
		return errors.New("inventory.page_size must be greater than zero")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid inventory.timezone: %w", err)
	}
	return nil
}
