package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/khabaroff/staff-accounts/src/auth"
	"github.com/khabaroff/staff-accounts/src/database"
	"github.com/khabaroff/staff-accounts/src/logging"
	"github.com/khabaroff/staff-accounts/src/services"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration.
//
// Values come from three layers: built-in defaults, an optional YAML file
// named by CONFIG_FILE, and environment variables. A set environment
// variable always wins.
type Config struct {
	Port           int      `yaml:"port" env:"PORT"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
	LogLevel       string   `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat      string   `yaml:"log_format" env:"LOG_FORMAT"`

	// TrustedProxies lists the IPs or CIDRs whose X-Forwarded-For is honored.
	// Empty means the client IP is always the socket peer.
	TrustedProxies []string `yaml:"trusted_proxies" env:"TRUSTED_PROXIES" envSeparator:","`

	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Admin     AdminConfig     `yaml:"admin"`
	Passwords PasswordConfig  `yaml:"passwords"`
	Login     LoginRateConfig `yaml:"login"`
}

// DatabaseConfig holds PostgreSQL settings
type DatabaseConfig struct {
	URL             string        `yaml:"url" env:"DATABASE_URL"`
	MaxConns        int32         `yaml:"max_conns" env:"DB_MAX_CONNS"`
	MinConns        int32         `yaml:"min_conns" env:"DB_MIN_CONNS"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime" env:"DB_MAX_CONN_LIFETIME"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DB_MAX_CONN_IDLE_TIME"`
}

// JWTConfig holds bearer token settings
type JWTConfig struct {
	Issuer           string        `yaml:"issuer" env:"JWT_ISSUER"`
	Audience         string        `yaml:"audience" env:"JWT_AUDIENCE"`
	Secret           string        `yaml:"secret" env:"JWT_SECRET"`
	ValidateIssuer   bool          `yaml:"validate_issuer" env:"JWT_VALIDATE_ISSUER"`
	ValidateAudience bool          `yaml:"validate_audience" env:"JWT_VALIDATE_AUDIENCE"`
	Leeway           time.Duration `yaml:"leeway" env:"JWT_LEEWAY"`
	TTL              time.Duration `yaml:"ttl" env:"JWT_TTL"`
}

// AdminConfig describes the bootstrap administrator
type AdminConfig struct {
	Name     string `yaml:"name" env:"ADMIN_NAME"`
	Initials string `yaml:"initials" env:"ADMIN_INITIALS"`
	Password string `yaml:"password" env:"ADMIN_PASSWORD"`
}

// PasswordConfig holds password hashing settings
type PasswordConfig struct {
	BcryptCost int `yaml:"bcrypt_cost" env:"BCRYPT_COST"`
}

// LoginRateConfig limits login attempts per client IP
type LoginRateConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" env:"LOGIN_RATE_LIMIT"`
	Burst             int `yaml:"burst" env:"LOGIN_RATE_BURST"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	pool := database.DefaultPoolConfig()
	return &Config{
		Port:      8080,
		LogLevel:  "info",
		LogFormat: "json",
		Database: DatabaseConfig{
			MaxConns:        pool.MaxConns,
			MinConns:        pool.MinConns,
			MaxConnLifetime: pool.MaxConnLifetime,
			MaxConnIdleTime: pool.MaxConnIdleTime,
		},
		JWT: JWTConfig{
			ValidateIssuer:   true,
			ValidateAudience: true,
			TTL:              auth.DefaultTokenTTL,
		},
		Login: LoginRateConfig{
			RequestsPerMinute: 10,
			Burst:             5,
		},
	}
}

// Load reads CONFIG_FILE (if set) and the process environment, then validates
func Load() (*Config, error) {
	return load(os.Getenv("CONFIG_FILE"), env.Options{})
}

func load(path string, opts env.Options) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate reports every missing required key in a single error
func (c *Config) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"DATABASE_URL", c.Database.URL},
		{"JWT_ISSUER", c.JWT.Issuer},
		{"JWT_AUDIENCE", c.JWT.Audience},
		{"JWT_SECRET", c.JWT.Secret},
		{"ADMIN_NAME", c.Admin.Name},
		{"ADMIN_INITIALS", c.Admin.Initials},
		{"ADMIN_PASSWORD", c.Admin.Password},
	}

	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.key)
		}
	}

	var errs []error
	if len(missing) > 0 {
		errs = append(errs, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", ")))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid PORT %d", c.Port))
	}
	if c.Login.RequestsPerMinute <= 0 || c.Login.Burst <= 0 {
		errs = append(errs, errors.New("LOGIN_RATE_LIMIT and LOGIN_RATE_BURST must be positive"))
	}
	for _, proxy := range c.TrustedProxies {
		if net.ParseIP(proxy) == nil {
			if _, _, err := net.ParseCIDR(proxy); err != nil {
				errs = append(errs, fmt.Errorf("invalid TRUSTED_PROXIES entry %q", proxy))
			}
		}
	}
	return errors.Join(errs...)
}

// Logging returns the logger settings
func (c *Config) Logging() logging.Config {
	return logging.Config{Level: c.LogLevel, Format: c.LogFormat}
}

// Pool returns the connection pool settings
func (c *Config) Pool() database.PoolConfig {
	return database.PoolConfig{
		MaxConns:        c.Database.MaxConns,
		MinConns:        c.Database.MinConns,
		MaxConnLifetime: c.Database.MaxConnLifetime,
		MaxConnIdleTime: c.Database.MaxConnIdleTime,
	}
}

// Token returns the bearer token settings shared by validator and issuer
func (c *Config) Token() auth.TokenConfig {
	return auth.TokenConfig{
		Issuer:           c.JWT.Issuer,
		Audience:         c.JWT.Audience,
		Secret:           c.JWT.Secret,
		ValidateIssuer:   c.JWT.ValidateIssuer,
		ValidateAudience: c.JWT.ValidateAudience,
		Leeway:           c.JWT.Leeway,
		TTL:              c.JWT.TTL,
	}
}

// Bootstrap returns the seed for the first administrator
func (c *Config) Bootstrap() services.BootstrapAccount {
	return services.BootstrapAccount{
		Name:     c.Admin.Name,
		Initials: c.Admin.Initials,
		Password: c.Admin.Password,
	}
}
