// Package config loads the server configuration.
//
// Values come from three layers, each overriding the previous one: built-in
// defaults, an optional YAML file (--config or HOURTRACK_CONFIG), and environment
// variables. A .env file in the working directory is loaded into the environment
// first when present.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ConfigPathEnv     = "HOURTRACK_CONFIG"
	minSecretKeyBytes = 32
)

var insecureSecretKeys = map[string]struct{}{
	"change_me_in_production":                    {},
	"replace_with_at_least_32_random_characters": {},
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Admin    AdminConfig    `yaml:"admin"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	Locale   LocaleConfig   `yaml:"locale"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Port         string `yaml:"port"`
	CookieSecure bool   `yaml:"cookie_secure"`

	// AuthRequestsPerMinute caps per-IP requests to the sign-in and registration endpoints.
	AuthRequestsPerMinute int `yaml:"auth_requests_per_minute"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type AuthConfig struct {
	SecretKey          string        `yaml:"secret_key"`
	SessionIdleTimeout time.Duration `yaml:"session_idle_timeout"`
	SessionLifetime    time.Duration `yaml:"session_lifetime"`
	LockoutThreshold   int           `yaml:"lockout_threshold"`
	LockoutWindow      time.Duration `yaml:"lockout_window"`
}

// AdminConfig is the bootstrap admin seeded into an empty store.
type AdminConfig struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type SMTPConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	User          string `yaml:"user"`
	Pass          string `yaml:"pass"`
	From          string `yaml:"from"`
	SkipTLSVerify bool   `yaml:"skip_tls_verify"`
	LoginURL      string `yaml:"login_url"`
}

// Enabled reports whether credential mail can be sent.
func (smtp SMTPConfig) Enabled() bool {
	return strings.TrimSpace(smtp.Host) != "" && strings.TrimSpace(smtp.From) != ""
}

type LocaleConfig struct {
	Timezone        string `yaml:"timezone"`
	DefaultLanguage string `yaml:"default_language"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:                  "8080",
			AuthRequestsPerMinute: 30,
		},
		Database: DatabaseConfig{
			Path: filepath.Join("data", "hourtrack.db"),
		},
		Auth: AuthConfig{
			SessionIdleTimeout: 30 * time.Minute,
			SessionLifetime:    12 * time.Hour,
			LockoutThreshold:   5,
			LockoutWindow:      15 * time.Minute,
		},
		Admin: AdminConfig{
			Name:     "Admin",
			Email:    "admin@clubstride.org",
			Username: "admin123",
			Password: "admin123456",
		},
		SMTP: SMTPConfig{
			Port: 587,
		},
		Locale: LocaleConfig{
			Timezone:        "UTC",
			DefaultLanguage: "en",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load builds the configuration. An empty path falls back to HOURTRACK_CONFIG; with
// neither set only defaults and the environment apply.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if strings.TrimSpace(path) == "" {
		path = os.Getenv(ConfigPathEnv)
	}
	if strings.TrimSpace(path) != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

type lookupFunc func(key string) (string, bool)

func (cfg *Config) applyEnv(lookup lookupFunc) error {
	setString := func(key string, target *string) {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			*target = strings.TrimSpace(value)
		}
	}

	setString("PORT", &cfg.Server.Port)
	setString("DB_PATH", &cfg.Database.Path)
	setString("SECRET_KEY", &cfg.Auth.SecretKey)
	setString("ADMIN_NAME", &cfg.Admin.Name)
	setString("ADMIN_EMAIL", &cfg.Admin.Email)
	setString("ADMIN_USERNAME", &cfg.Admin.Username)
	setString("ADMIN_PASSWORD", &cfg.Admin.Password)
	setString("SMTP_HOST", &cfg.SMTP.Host)
	setString("SMTP_USER", &cfg.SMTP.User)
	setString("SMTP_PASS", &cfg.SMTP.Pass)
	setString("SMTP_FROM", &cfg.SMTP.From)
	setString("LOGIN_URL", &cfg.SMTP.LoginURL)
	setString("TZ", &cfg.Locale.Timezone)
	setString("DEFAULT_LANGUAGE", &cfg.Locale.DefaultLanguage)
	setString("LOG_LEVEL", &cfg.Log.Level)
	setString("LOG_FORMAT", &cfg.Log.Format)

	var errs []error
	if value, ok := lookup("COOKIE_SECURE"); ok && strings.TrimSpace(value) != "" {
		parsed, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			errs = append(errs, fmt.Errorf("COOKIE_SECURE: %w", err))
		}
		cfg.Server.CookieSecure = parsed
	}
	if value, ok := lookup("SMTP_SKIP_TLS_VERIFY"); ok {
		cfg.SMTP.SkipTLSVerify = strings.TrimSpace(value) == "1"
	}
	for key, target := range map[string]*int{
		"SMTP_PORT":                &cfg.SMTP.Port,
		"LOGIN_LOCKOUT_THRESHOLD":  &cfg.Auth.LockoutThreshold,
		"AUTH_REQUESTS_PER_MINUTE": &cfg.Server.AuthRequestsPerMinute,
	} {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			parsed, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				continue
			}
			*target = parsed
		}
	}
	for key, target := range map[string]*time.Duration{
		"SESSION_IDLE_TIMEOUT": &cfg.Auth.SessionIdleTimeout,
		"SESSION_LIFETIME":     &cfg.Auth.SessionLifetime,
		"LOGIN_LOCKOUT_WINDOW": &cfg.Auth.LockoutWindow,
	} {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			parsed, err := time.ParseDuration(strings.TrimSpace(value))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				continue
			}
			*target = parsed
		}
	}
	return errors.Join(errs...)
}

// Validate checks everything every subcommand needs. The secret key is checked
// separately by SecretKey since migrate and reset-password run without one.
func (cfg Config) Validate() error {
	var errs []error

	if _, err := ParsePort(cfg.Server.Port); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(cfg.Database.Path) == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if _, err := time.LoadLocation(cfg.Locale.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("locale.timezone %q: %w", cfg.Locale.Timezone, err))
	}
	if cfg.SMTP.Port < 1 || cfg.SMTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("smtp.port must be between 1 and 65535, got %d", cfg.SMTP.Port))
	}
	if cfg.Auth.SessionIdleTimeout <= 0 || cfg.Auth.SessionLifetime <= 0 || cfg.Auth.LockoutWindow <= 0 {
		errs = append(errs, errors.New("auth durations must be positive"))
	}
	if cfg.Auth.LockoutThreshold < 1 {
		errs = append(errs, errors.New("auth.lockout_threshold must be at least 1"))
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "auto", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be auto, text or json, got %q", cfg.Log.Format))
	}

	return errors.Join(errs...)
}

// SecretKey returns the cookie signing secret, rejecting empty, short and placeholder values.
func (cfg Config) SecretKey() (string, error) {
	secret := strings.TrimSpace(cfg.Auth.SecretKey)
	if secret == "" {
		return "", errors.New("SECRET_KEY is required")
	}
	if _, insecure := insecureSecretKeys[strings.ToLower(secret)]; insecure {
		return "", errors.New("SECRET_KEY uses an insecure placeholder value")
	}
	if len(secret) < minSecretKeyBytes {
		return "", fmt.Errorf("SECRET_KEY must be at least %d characters", minSecretKeyBytes)
	}
	return secret, nil
}

func (cfg Config) Location() *time.Location {
	location, err := time.LoadLocation(cfg.Locale.Timezone)
	if err != nil {
		return time.UTC
	}
	return location
}

func ParsePort(raw string) (string, error) {
	port := strings.TrimSpace(raw)
	value, err := strconv.Atoi(port)
	if err != nil || value < 1 || value > 65535 {
		return "", fmt.Errorf("port must be between 1 and 65535, got %q", raw)
	}
	return port, nil
}
