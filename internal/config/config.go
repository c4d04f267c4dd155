// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type AppConfig struct {
	URL string `yaml:"url"` // base location users are redirected to
}

type HTTPConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type ActivationConfig struct {
	Lifetime     time.Duration `yaml:"lifetime"`
	CodeLength   int           `yaml:"code_length"`
	MaxAttempts  int           `yaml:"max_attempts"` // code generation attempts before giving up
	ResendLimit  int           `yaml:"resend_limit"`
	ResendWindow time.Duration `yaml:"resend_window"`
	LockTTL      time.Duration `yaml:"lock_ttl"`
}

type AuthConfig struct {
	AccessMode string `yaml:"access_mode"` // any | auth
}

type CaptchaConfig struct {
	Enabled   bool   `yaml:"enabled"`
	SiteKey   string `yaml:"site_key"`
	Secret    string `yaml:"secret"`
	VerifyURL string `yaml:"verify_url"`
}

type FlashConfig struct {
	Secret     string        `yaml:"secret"`
	CookieName string        `yaml:"cookie_name"`
	TTL        time.Duration `yaml:"ttl"`
	Secure     bool          `yaml:"secure"`
}

type MailConfig struct {
	Provider  string `yaml:"provider"` // sendgrid | log
	APIKey    string `yaml:"api_key"`
	FromName  string `yaml:"from_name"`
	FromEmail string `yaml:"from_email"`
	Subject   string `yaml:"subject"`
}

type Config struct {
	App        AppConfig        `yaml:"app"`
	HTTP       HTTPConfig       `yaml:"http"`
	Log        LogConfig        `yaml:"log"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Activation ActivationConfig `yaml:"activation"`
	Auth       AuthConfig       `yaml:"auth"`
	Captcha    CaptchaConfig    `yaml:"captcha"`
	Flash      FlashConfig      `yaml:"flash"`
	Mail       MailConfig       `yaml:"mail"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file at path, applies defaults and validates the
// required settings.
func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
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
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.HTTP.Port <= 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.HTTP.ReadTimeout <= 0 {
		cfg.HTTP.ReadTimeout = 10 * time.Second
	}
	if cfg.HTTP.WriteTimeout <= 0 {
		cfg.HTTP.WriteTimeout = 10 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}

	if cfg.Activation.Lifetime <= 0 {
		cfg.Activation.Lifetime = 60 * time.Minute
	}
	if cfg.Activation.CodeLength <= 0 {
		cfg.Activation.CodeLength = 32
	}
	if cfg.Activation.MaxAttempts <= 0 {
		cfg.Activation.MaxAttempts = 10
	}
	if cfg.Activation.ResendLimit <= 0 {
		cfg.Activation.ResendLimit = 5
	}
	if cfg.Activation.ResendWindow <= 0 {
		cfg.Activation.ResendWindow = 15 * time.Minute
	}
	if cfg.Activation.LockTTL <= 0 {
		cfg.Activation.LockTTL = 10 * time.Second
	}

	cfg.Auth.AccessMode = strings.ToLower(strings.TrimSpace(cfg.Auth.AccessMode))
	if cfg.Auth.AccessMode == "" {
		cfg.Auth.AccessMode = "any"
	}
	if cfg.Captcha.VerifyURL == "" {
		cfg.Captcha.VerifyURL = "https://www.google.com/recaptcha/api/siteverify"
	}

	if cfg.Flash.CookieName == "" {
		cfg.Flash.CookieName = "message"
	}
	if cfg.Flash.TTL <= 0 {
		cfg.Flash.TTL = 1337 * time.Minute
	}

	if cfg.Mail.Provider == "" {
		cfg.Mail.Provider = "log"
	}
	if cfg.Mail.Subject == "" {
		cfg.Mail.Subject = "Activate your account"
	}
}

func (cfg *Config) validate() error {
	if cfg.App.URL == "" {
		return errors.New("app.url is required")
	}
	if cfg.Database.URL == "" {
		return errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return errors.New("redis.url is required")
	}
	if cfg.Flash.Secret == "" {
		return errors.New("flash.secret is required")
	}
	switch cfg.Auth.AccessMode {
	case "any", "auth":
	default:
		return fmt.Errorf("auth.access_mode must be any or auth, got %q", cfg.Auth.AccessMode)
	}
	if cfg.Captcha.Enabled && (cfg.Captcha.SiteKey == "" || cfg.Captcha.Secret == "") {
		return errors.New("captcha.site_key and captcha.secret are required when captcha is enabled")
	}
	if cfg.Mail.Provider == "sendgrid" && cfg.Mail.FromEmail == "" {
		return errors.New("mail.from_email is required for sendgrid")
	}
	return nil
}
