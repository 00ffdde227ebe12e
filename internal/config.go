package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Session SessionConfig `mapstructure:"session"`
	Logging LoggingConfig `mapstructure:"logging"`
	MockAPI MockAPIConfig `mapstructure:"mock_api"`
}

type APIConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type SessionConfig struct {
	Driver      string `mapstructure:"driver" validate:"oneof=sqlite postgres"`
	DSN         string `mapstructure:"dsn" validate:"required"`
	Profile     string `mapstructure:"profile" validate:"required"`
	AutoPersist bool   `mapstructure:"auto_persist"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

type MockAPIConfig struct {
	Port            int           `mapstructure:"port"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl" validate:"min=1s"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
	JWTSecret       string        `mapstructure:"jwt_secret" validate:"required"`
	RefreshSecret   string        `mapstructure:"refresh_secret" validate:"required"`
	BCryptCost      int           `mapstructure:"bcrypt_cost"`
	SeedUsers       bool          `mapstructure:"seed_users"`
}

const (
	DefaultBaseURL         = "http://localhost:8081"
	DefaultAPITimeout      = 10 * time.Second
	DefaultSessionDriver   = "sqlite"
	DefaultSessionDSN      = "hrportal.db"
	DefaultSessionProfile  = "auth"
	DefaultMockAPIPort     = 8081
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
	DefaultBCryptCost      = 10
)

// DefaultConfig is what an empty config file resolves to.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL: DefaultBaseURL,
			Timeout: DefaultAPITimeout,
		},
		Session: SessionConfig{
			Driver:      DefaultSessionDriver,
			DSN:         DefaultSessionDSN,
			Profile:     DefaultSessionProfile,
			AutoPersist: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		MockAPI: MockAPIConfig{
			Port:            DefaultMockAPIPort,
			AccessTokenTTL:  DefaultAccessTokenTTL,
			RefreshTokenTTL: DefaultRefreshTokenTTL,
			JWTSecret:       "dev-access-secret",
			RefreshSecret:   "dev-refresh-secret",
			BCryptCost:      DefaultBCryptCost,
			SeedUsers:       true,
		},
	}
}

// Defaults returns the flattened key/value pairs of DefaultConfig, in the
// dotted form viper.SetDefault expects.
func Defaults() map[string]interface{} {
	d := DefaultConfig()
	return map[string]interface{}{
		"api.base_url":               d.API.BaseURL,
		"api.timeout":                d.API.Timeout,
		"session.driver":             d.Session.Driver,
		"session.dsn":                d.Session.DSN,
		"session.profile":            d.Session.Profile,
		"session.auto_persist":       d.Session.AutoPersist,
		"logging.level":              d.Logging.Level,
		"logging.format":             d.Logging.Format,
		"mock_api.port":              d.MockAPI.Port,
		"mock_api.access_token_ttl":  d.MockAPI.AccessTokenTTL,
		"mock_api.refresh_token_ttl": d.MockAPI.RefreshTokenTTL,
		"mock_api.jwt_secret":        d.MockAPI.JWTSecret,
		"mock_api.refresh_secret":    d.MockAPI.RefreshSecret,
		"mock_api.bcrypt_cost":       d.MockAPI.BCryptCost,
		"mock_api.seed_users":        d.MockAPI.SeedUsers,
	}
}

// LoadConfigFromEnv builds the config from HRPORTAL_* variables for container deployments.
func LoadConfigFromEnv() *Config {
	d := DefaultConfig()
	return &Config{
		API: APIConfig{
			BaseURL: getEnv("HRPORTAL_API_BASE_URL", d.API.BaseURL),
			Timeout: getEnvAsDuration("HRPORTAL_API_TIMEOUT", d.API.Timeout),
		},
		Session: SessionConfig{
			Driver:      getEnv("HRPORTAL_SESSION_DRIVER", d.Session.Driver),
			DSN:         getEnv("HRPORTAL_SESSION_DSN", d.Session.DSN),
			Profile:     getEnv("HRPORTAL_SESSION_PROFILE", d.Session.Profile),
			AutoPersist: getEnvAsBool("HRPORTAL_SESSION_AUTO_PERSIST", d.Session.AutoPersist),
		},
		Logging: LoggingConfig{
			Level:  getEnv("HRPORTAL_LOG_LEVEL", "info"),
			Format: getEnv("HRPORTAL_LOG_FORMAT", "json"),
		},
		MockAPI: MockAPIConfig{
			Port:            getEnvAsInt("HRPORTAL_MOCK_API_PORT", d.MockAPI.Port),
			AccessTokenTTL:  getEnvAsDuration("HRPORTAL_MOCK_API_ACCESS_TOKEN_TTL", d.MockAPI.AccessTokenTTL),
			RefreshTokenTTL: getEnvAsDuration("HRPORTAL_MOCK_API_REFRESH_TOKEN_TTL", d.MockAPI.RefreshTokenTTL),
			JWTSecret:       getEnv("HRPORTAL_MOCK_API_JWT_SECRET", d.MockAPI.JWTSecret),
			RefreshSecret:   getEnv("HRPORTAL_MOCK_API_REFRESH_SECRET", d.MockAPI.RefreshSecret),
			BCryptCost:      getEnvAsInt("HRPORTAL_MOCK_API_BCRYPT_COST", d.MockAPI.BCryptCost),
			SeedUsers:       getEnvAsBool("HRPORTAL_MOCK_API_SEED_USERS", d.MockAPI.SeedUsers),
		},
	}
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.API.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("api config: %v", err))
	}

	if err := c.Session.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("session config: %v", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("logging config: %v", err))
	}

	if err := c.MockAPI.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("mock_api config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *APIConfig) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("base_url %q must be an absolute http(s) url", c.BaseURL)
	}
	if c.Timeout < 0 {
		return errors.New("timeout cannot be negative")
	}
	return nil
}

func (c *SessionConfig) Validate() error {
	switch c.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("driver %q must be sqlite or postgres", c.Driver)
	}
	if c.DSN == "" {
		return errors.New("dsn is required")
	}
	if c.Profile == "" {
		return errors.New("profile is required")
	}
	return nil
}

func (c *LoggingConfig) Validate() error {
	switch strings.ToLower(c.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("level %q must be one of debug, info, warn, error", c.Level)
	}
	switch strings.ToLower(c.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("format %q must be json or text", c.Format)
	}
	return nil
}

func (c *MockAPIConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.AccessTokenTTL < time.Second {
		return errors.New("access_token_ttl must be at least 1s")
	}
	if c.RefreshTokenTTL < c.AccessTokenTTL {
		return errors.New("refresh_token_ttl must be >= access_token_ttl")
	}
	if c.JWTSecret == "" || c.RefreshSecret == "" {
		return errors.New("jwt_secret and refresh_secret are required")
	}
	if c.JWTSecret == c.RefreshSecret {
		return errors.New("jwt_secret and refresh_secret must differ")
	}
	return nil
}

func (c *MockAPIConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
