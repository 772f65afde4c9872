// Package main provides the NetWatch server CLI.
package main

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/good-yellow-bee/netwatch/internal/alerting"
	"github.com/good-yellow-bee/netwatch/internal/models"
	"github.com/good-yellow-bee/netwatch/internal/security"
)

// Config represents the server configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Auth       AuthConfig       `yaml:"auth"`
	Thresholds ThresholdsConfig `yaml:"thresholds"`
	Alerting   AlertingConfig   `yaml:"alerting"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Notify     NotifyConfig     `yaml:"notifications"`
	Verbose    bool             `yaml:"-"` // set via CLI flag
}

// ServerConfig contains HTTP API settings.
type ServerConfig struct {
	HTTPAddress      string    `yaml:"http_address"`        // default :8080
	TLS              TLSConfig `yaml:"tls"`                 // HTTPS for the API
	RateLimitPerIP   int       `yaml:"rate_limit_per_ip"`   // login attempts per minute
	RateLimitPerUser int       `yaml:"rate_limit_per_user"` // API calls per minute
}

// TLSConfig contains TLS settings for the API server.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
	ClientCA string `yaml:"client_ca_file"` // require client certificates signed by this CA
}

// AuthConfig contains credentials for dashboard users and pollers.
type AuthConfig struct {
	JWTSecret        string        `yaml:"jwt_secret"`       // overridden by NETWATCH_JWT_SECRET
	AccessTokenTTL   string        `yaml:"access_token_ttl"` // default 15m
	LockoutThreshold int           `yaml:"lockout_threshold"`
	LockoutDuration  string        `yaml:"lockout_duration"`
	APIKeys          []string      `yaml:"api_keys"` // extended by NETWATCH_API_KEYS
	Users            []models.User `yaml:"users"`
}

// ThresholdsConfig locates the threshold seed file.
type ThresholdsConfig struct {
	File  string `yaml:"file"`  // empty uses the built-in defaults
	Watch bool   `yaml:"watch"` // reload the file when it changes
}

// AlertingConfig selects the duplicate-raise policy.
type AlertingConfig struct {
	Dedup DedupConfig `yaml:"dedup"`
}

// DedupConfig configures duplicate-raise suppression.
type DedupConfig struct {
	Mode     string `yaml:"mode"`     // always, cooldown, while_active
	Cooldown string `yaml:"cooldown"` // used by cooldown mode
}

// NotifyConfig configures chat notifications for raised alerts.
// A channel is enabled by setting its webhook URL.
type NotifyConfig struct {
	MinSeverity     string `yaml:"min_severity"` // default warning
	SlackWebhookURL string `yaml:"slack_webhook_url"`
	TeamsWebhookURL string `yaml:"teams_webhook_url"`
	QueueSize       int    `yaml:"queue_size"`
	RateLimit       int    `yaml:"rate_limit"`        // notifications per window, default 10
	RateLimitWindow string `yaml:"rate_limit_window"` // default 1m
}

// Enabled reports whether any notification channel is configured.
func (n NotifyConfig) Enabled() bool {
	return n.SlackWebhookURL != "" || n.TeamsWebhookURL != ""
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

// MetricsConfig configures the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

// LoadConfig loads configuration from a YAML file. Files ending in .enc
// are opened with passphrase first.
func LoadConfig(path string, passphrase []byte) (*Config, error) {
	data, err := security.ReadFile(path, passphrase)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Config{Metrics: MetricsConfig{Enabled: true}}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{Metrics: MetricsConfig{Enabled: true}}
	cfg.setDefaults()
	return cfg
}

// setDefaults sets default values for missing config fields.
func (c *Config) setDefaults() {
	if c.Server.HTTPAddress == "" {
		c.Server.HTTPAddress = ":8080"
	}
	if c.Auth.AccessTokenTTL == "" {
		c.Auth.AccessTokenTTL = "15m"
	}
	if c.Auth.LockoutDuration == "" {
		c.Auth.LockoutDuration = "15m"
	}
	if c.Alerting.Dedup.Mode == "" {
		c.Alerting.Dedup.Mode = string(alerting.DedupAlways)
	}
	if c.Alerting.Dedup.Cooldown == "" {
		c.Alerting.Dedup.Cooldown = "5m"
	}
	if c.Notify.MinSeverity == "" {
		c.Notify.MinSeverity = string(models.SeverityWarning)
	}
	if c.Notify.RateLimitWindow == "" {
		c.Notify.RateLimitWindow = "1m"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Metrics.Address == "" {
		c.Metrics.Address = ":9090"
	}
}

// ApplyEnv overlays secrets from the environment.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("NETWATCH_JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := getenv("NETWATCH_SLACK_WEBHOOK_URL"); v != "" {
		c.Notify.SlackWebhookURL = v
	}
	if v := getenv("NETWATCH_TEAMS_WEBHOOK_URL"); v != "" {
		c.Notify.TeamsWebhookURL = v
	}
	if v := getenv("NETWATCH_API_KEYS"); v != "" {
		for _, k := range strings.Split(v, ",") {
			if k = strings.TrimSpace(k); k != "" {
				c.Auth.APIKeys = append(c.Auth.APIKeys, k)
			}
		}
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.HTTPAddress == "" {
		return fmt.Errorf("server.http_address is required")
	}
	if c.Server.TLS.Enabled {
		if c.Server.TLS.CertFile == "" {
			return fmt.Errorf("server.tls.cert_file is required when TLS is enabled")
		}
		if c.Server.TLS.KeyFile == "" {
			return fmt.Errorf("server.tls.key_file is required when TLS is enabled")
		}
	}
	if c.Server.TLS.ClientCA != "" && !c.Server.TLS.Enabled {
		return fmt.Errorf("server.tls.client_ca_file requires server.tls.enabled")
	}
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret (or NETWATCH_JWT_SECRET) must be at least 32 bytes")
	}
	if c.Auth.LockoutThreshold < 0 {
		return fmt.Errorf("auth.lockout_threshold must not be negative")
	}
	if _, err := c.durations(); err != nil {
		return err
	}
	if _, err := alerting.ParseDedupMode(c.Alerting.Dedup.Mode); err != nil {
		return fmt.Errorf("alerting.dedup.mode: %w", err)
	}
	if _, ok := models.ParseSeverity(c.Notify.MinSeverity); !ok {
		return fmt.Errorf("notifications.min_severity: unknown severity %q", c.Notify.MinSeverity)
	}
	if c.Notify.QueueSize < 0 || c.Notify.RateLimit < 0 {
		return fmt.Errorf("notifications.queue_size and notifications.rate_limit must not be negative")
	}
	for name, u := range map[string]string{
		"notifications.slack_webhook_url": c.Notify.SlackWebhookURL,
		"notifications.teams_webhook_url": c.Notify.TeamsWebhookURL,
	} {
		if u != "" && !strings.HasPrefix(u, "https://") {
			return fmt.Errorf("%s must use HTTPS", name)
		}
	}
	if format := c.Logging.Format; format != "json" && format != "console" {
		return fmt.Errorf("logging.format must be json or console, got %q", format)
	}
	if c.Thresholds.Watch && c.Thresholds.File == "" {
		return fmt.Errorf("thresholds.watch requires thresholds.file")
	}
	return nil
}

// parsedDurations holds the validated duration settings.
type parsedDurations struct {
	AccessTokenTTL  time.Duration
	LockoutDuration time.Duration
	Cooldown        time.Duration
	NotifyWindow    time.Duration
}

func (c *Config) durations() (parsedDurations, error) {
	var d parsedDurations
	fields := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"auth.access_token_ttl", c.Auth.AccessTokenTTL, &d.AccessTokenTTL},
		{"auth.lockout_duration", c.Auth.LockoutDuration, &d.LockoutDuration},
		{"alerting.dedup.cooldown", c.Alerting.Dedup.Cooldown, &d.Cooldown},
		{"notifications.rate_limit_window", c.Notify.RateLimitWindow, &d.NotifyWindow},
	}
	for _, f := range fields {
		v, err := time.ParseDuration(f.value)
		if err != nil {
			return d, fmt.Errorf("%s: invalid duration %q: %w", f.name, f.value, err)
		}
		if v <= 0 {
			return d, fmt.Errorf("%s must be positive", f.name)
		}
		*f.dst = v
	}
	return d, nil
}
