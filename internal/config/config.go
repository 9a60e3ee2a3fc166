package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	FullRecordStatic   = "static"
	FullRecordPostgres = "postgres"
)

type Config struct {
	Port               string        `mapstructure:"PORT"`
	Env                string        `mapstructure:"ENV"`
	DatabaseURL        string        `mapstructure:"DATABASE_URL"`
	DBMaxConns         int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns         int32         `mapstructure:"DB_MIN_CONNS"`
	RecordAPIURL       string        `mapstructure:"RECORD_API_URL"`
	RecordFetchTimeout time.Duration `mapstructure:"RECORD_FETCH_TIMEOUT"`
	FullRecordSource   string        `mapstructure:"FULL_RECORD_SOURCE"`
	SessionSigningKey  string        `mapstructure:"SESSION_SIGNING_KEY"`
	SessionIdleTTL     time.Duration `mapstructure:"SESSION_IDLE_TTL"`
	CookieSecure       bool          `mapstructure:"COOKIE_SECURE"`
	AuthEmail          string        `mapstructure:"AUTH_EMAIL"`
	AuthPasswordHash   string        `mapstructure:"AUTH_PASSWORD_HASH"`
	OverpassURL        string        `mapstructure:"OVERPASS_URL"`
	ProximityCacheTTL  time.Duration `mapstructure:"PROXIMITY_CACHE_TTL"`
	ViewTTL            time.Duration `mapstructure:"VIEW_TTL"`
	RequestTimeout     time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	BodyLimit          string        `mapstructure:"BODY_LIMIT"`
	LoginRateRPS       float64       `mapstructure:"LOGIN_RATE_RPS"`
	LoginRateBurst     int           `mapstructure:"LOGIN_RATE_BURST"`
	CORSOrigins        []string      `mapstructure:"CORS_ORIGINS"`
}

var keys = []string{
	"PORT", "ENV", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
	"RECORD_API_URL", "RECORD_FETCH_TIMEOUT", "FULL_RECORD_SOURCE",
	"SESSION_SIGNING_KEY", "SESSION_IDLE_TTL", "COOKIE_SECURE",
	"AUTH_EMAIL", "AUTH_PASSWORD_HASH", "OVERPASS_URL", "PROXIMITY_CACHE_TTL",
	"VIEW_TTL", "REQUEST_TIMEOUT", "BODY_LIMIT", "LOGIN_RATE_RPS",
	"LOGIN_RATE_BURST", "CORS_ORIGINS",
}

// Load reads the configuration from the environment and an optional .env
// file in the working directory.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("RECORD_FETCH_TIMEOUT", "0s") // no bound beyond the request's own
	v.SetDefault("FULL_RECORD_SOURCE", FullRecordStatic)
	v.SetDefault("SESSION_IDLE_TTL", "12h")
	v.SetDefault("OVERPASS_URL", "https://overpass-api.de/api/interpreter")
	v.SetDefault("PROXIMITY_CACHE_TTL", "10m")
	v.SetDefault("VIEW_TTL", "30m")
	v.SetDefault("REQUEST_TIMEOUT", "0s")
	v.SetDefault("BODY_LIMIT", "16K")
	v.SetDefault("LOGIN_RATE_RPS", 0.2)
	v.SetDefault("LOGIN_RATE_BURST", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// .env is optional
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.CORSOrigins) == 1 && strings.Contains(cfg.CORSOrigins[0], ",") {
		cfg.CORSOrigins = strings.Split(cfg.CORSOrigins[0], ",")
	}
	for i, o := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(o)
	}
	cfg.FullRecordSource = strings.ToLower(strings.TrimSpace(cfg.FullRecordSource))

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// RecordBaseURL is the root of the record endpoint. Without RECORD_API_URL
// the service fetches from its own record API.
func (c *Config) RecordBaseURL() string {
	if c.RecordAPIURL != "" {
		return strings.TrimRight(c.RecordAPIURL, "/")
	}
	return "http://127.0.0.1:" + c.Port
}

// SigningKey returns the browser-session cookie key. Outside production a
// missing key is replaced by a random one, which signs everyone out on
// restart.
func (c *Config) SigningKey() ([]byte, error) {
	if c.SessionSigningKey == "" {
		if c.IsProduction() {
			return nil, fmt.Errorf("SESSION_SIGNING_KEY is required in production")
		}
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate signing key: %w", err)
		}
		return key, nil
	}
	key, err := hex.DecodeString(c.SessionSigningKey)
	if err != nil {
		return nil, fmt.Errorf("SESSION_SIGNING_KEY is not valid hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("SESSION_SIGNING_KEY must be 32 bytes (64 hex chars), got %d bytes", len(key))
	}
	return key, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if _, err := c.SigningKey(); err != nil {
		return err
	}

	switch c.FullRecordSource {
	case FullRecordStatic:
	case FullRecordPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("FULL_RECORD_SOURCE=postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("FULL_RECORD_SOURCE must be %q or %q, got %q", FullRecordStatic, FullRecordPostgres, c.FullRecordSource)
	}

	if (c.AuthEmail == "") != (c.AuthPasswordHash == "") {
		return fmt.Errorf("AUTH_EMAIL and AUTH_PASSWORD_HASH must be set together")
	}
	if c.AuthPasswordHash != "" && !strings.HasPrefix(c.AuthPasswordHash, "$2") {
		return fmt.Errorf("AUTH_PASSWORD_HASH must be a bcrypt hash")
	}

	if c.DBMaxConns < 1 {
		return fmt.Errorf("DB_MAX_CONNS must be at least 1, got %d", c.DBMaxConns)
	}
	if c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS, got %d", c.DBMinConns)
	}

	if c.RecordFetchTimeout < 0 || c.RequestTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if c.ViewTTL <= 0 {
		return fmt.Errorf("VIEW_TTL must be positive, got %s", c.ViewTTL)
	}
	if c.SessionIdleTTL <= 0 {
		return fmt.Errorf("SESSION_IDLE_TTL must be positive, got %s", c.SessionIdleTTL)
	}
	if c.ProximityCacheTTL < 0 {
		return fmt.Errorf("PROXIMITY_CACHE_TTL must not be negative, got %s", c.ProximityCacheTTL)
	}
	if c.LoginRateRPS <= 0 || c.LoginRateBurst < 1 {
		return fmt.Errorf("LOGIN_RATE_RPS and LOGIN_RATE_BURST must be positive")
	}
	return nil
}
