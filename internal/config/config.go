// File: internal/config/config.go
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL              string        `yaml:"url"`
	MaxConns         int32         `yaml:"max_conns"`
	StatsInterval    time.Duration `yaml:"stats_interval"`
	StatementTimeout time.Duration `yaml:"statement_timeout"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KCPConfig struct {
	BaseURL     string        `yaml:"base_url"`      // KCP HTTP proxy
	SiteCode    string        `yaml:"site_code"`     // g_conf_site_cd
	SiteKey     string        `yaml:"site_key"`      // g_conf_site_key
	GroupID     string        `yaml:"group_id"`      // batch group id
	ReceiptBase string        `yaml:"receipt_base"`  // bill receipt host
	Timeout     time.Duration `yaml:"timeout"`       // per PG call
	Noop        bool          `yaml:"noop"`          // use the in-process gateway
	TaxDeductID string        `yaml:"tax_deduct_id"` // group id for tax deduction cards
}

type SecurityConfig struct {
	PartnerSecretKey string `yaml:"partner_secret_key"` // base64, 32 bytes
	BillKeySecret    string `yaml:"bill_key_secret"`    // base64, 32 bytes
	BcryptCost       int    `yaml:"bcrypt_cost"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	JWTIssuer string `yaml:"jwt_issuer"`
}

type AbuseConfig struct {
	PinEntryThreshold      int           `yaml:"pin_entry_threshold"`
	PinEntryBlockedPeriod  time.Duration `yaml:"pin_entry_blocked_period"`
	PasswordEntryThreshold int           `yaml:"password_entry_threshold"`
	PasswordBlockedPeriod  time.Duration `yaml:"password_entry_blocked_period"`

	// CardRegistrationDailyLimit caps registration attempts per user and day.
	CardRegistrationDailyLimit int `yaml:"card_registration_daily_limit"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	KCP      KCPConfig      `yaml:"kcp"`
	Security SecurityConfig `yaml:"security"`
	Auth     AuthConfig     `yaml:"auth"`
	Abuse    AbuseConfig    `yaml:"abuse"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads -config and -dev from the command line and loads the file.
func LoadConfig() (*Config, error) {
	var configPath string
	var dev bool
	flag.StringVar(&configPath, "config", "config.yaml", "path to config yaml")
	flag.BoolVar(&dev, "dev", false, "development mode")
	flag.Parse()

	return Load(configPath, dev)
}

func Load(configPath string, dev bool) (*Config, error) {
	b, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b, dev)
}

func Parse(b []byte, dev bool) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Security.PartnerSecretKey == "" || cfg.Security.BillKeySecret == "" {
		return nil, errors.New("security.partner_secret_key and security.bill_key_secret are required")
	}
	if cfg.Security.PartnerSecretKey == cfg.Security.BillKeySecret {
		return nil, errors.New("security keys must differ per secret class")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("auth.jwt_secret is required")
	}
	if !cfg.KCP.Noop && cfg.KCP.BaseURL == "" {
		return nil, errors.New("kcp.base_url is required unless kcp.noop is set")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

// Secrets may come from the environment instead of the file.
func applyEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("RIDI_PAY_BILL_KEY_SECRET"); v != "" {
		cfg.Security.BillKeySecret = v
	}
	if v := os.Getenv("RIDI_PAY_PARTNER_SECRET_KEY"); v != "" {
		cfg.Security.PartnerSecretKey = v
	}
	if v := os.Getenv("RIDI_PAY_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	cfg.Server.RequestTimeout = orDefault(cfg.Server.RequestTimeout, 30*time.Second)
	cfg.Server.ReadTimeout = orDefault(cfg.Server.ReadTimeout, 10*time.Second)
	cfg.Server.WriteTimeout = orDefault(cfg.Server.WriteTimeout, 40*time.Second)

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}

	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 16
	}
	cfg.Database.StatsInterval = orDefault(cfg.Database.StatsInterval, 15*time.Second)

	cfg.KCP.Timeout = orDefault(cfg.KCP.Timeout, 10*time.Second)
	if cfg.KCP.ReceiptBase == "" {
		cfg.KCP.ReceiptBase = "https://admin8.kcp.co.kr"
	}

	if cfg.Security.BcryptCost <= 0 {
		cfg.Security.BcryptCost = 10
	}
	if cfg.Auth.JWTIssuer == "" {
		cfg.Auth.JWTIssuer = "ridi-pay"
	}

	if cfg.Abuse.PinEntryThreshold <= 0 {
		cfg.Abuse.PinEntryThreshold = 5
	}
	cfg.Abuse.PinEntryBlockedPeriod = orDefault(cfg.Abuse.PinEntryBlockedPeriod, 10*time.Minute)
	if cfg.Abuse.PasswordEntryThreshold <= 0 {
		cfg.Abuse.PasswordEntryThreshold = 5
	}
	cfg.Abuse.PasswordBlockedPeriod = orDefault(cfg.Abuse.PasswordBlockedPeriod, 10*time.Minute)
	if cfg.Abuse.CardRegistrationDailyLimit <= 0 {
		cfg.Abuse.CardRegistrationDailyLimit = 10
	}
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
