package config

import (
	"fmt"
	"os"
	"regexp"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// EnvVar selects the environment section of the config file
const EnvVar = "COOPCONTROL_ENV"

// DefaultEnv is used when neither --env nor COOPCONTROL_ENV is set
const DefaultEnv = "production"

// DefaultPath is the config file location relative to the working directory
const DefaultPath = "config/config.yaml"

// Config is the typed configuration for one environment
type Config struct {
	Env      string         `yaml:"-"`
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	HTTP     HTTPConfig     `yaml:"http"`
	Provider ProviderConfig `yaml:"provider"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Logging  LoggingConfig  `yaml:"logging"`

	location *time.Location
}

// AppConfig holds the observer location and display timezone
type AppConfig struct {
	Name      string  `yaml:"name" validate:"required"`
	Latitude  float64 `yaml:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `yaml:"longitude" validate:"min=-180,max=180"`
	Timezone  string  `yaml:"timezone" validate:"required"`
}

// DatabaseConfig selects the gorm dialector and its DSN
type DatabaseConfig struct {
	Driver string `yaml:"driver" validate:"oneof=sqlite mysql postgres"`
	DSN    string `yaml:"dsn" validate:"required"`
	Debug  bool   `yaml:"debug"`
}

// HTTPConfig configures the API server
type HTTPConfig struct {
	Addr         string        `yaml:"addr" validate:"required"`
	ReadTimeout  time.Duration `yaml:"read_timeout" validate:"gte=0"`
	WriteTimeout time.Duration `yaml:"write_timeout" validate:"gte=0"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" validate:"gte=0"`
}

// ProviderConfig configures the sunrise-sunset API client
type ProviderConfig struct {
	Name    string        `yaml:"name" validate:"required"`
	BaseURL string        `yaml:"base_url" validate:"required,url"`
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
}

// ScheduleConfig configures the daily fetch job
type ScheduleConfig struct {
	Disabled   bool          `yaml:"disabled"`
	DailyAt    string        `yaml:"daily_at" validate:"datetime=15:04"`
	RunOnStart bool          `yaml:"run_on_start"`
	JobTimeout time.Duration `yaml:"job_timeout" validate:"gt=0"`
}

// LoggingConfig configures the zap logger
type LoggingConfig struct {
	Level       string `yaml:"level" validate:"oneof=debug info warn error"`
	Development bool   `yaml:"development"`
}

// Location returns the resolved display timezone
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// Build creates a zap logger for this logging configuration
func (l LoggingConfig) Build() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(l.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", l.Level, err)
	}

	zc := zap.NewProductionConfig()
	if l.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	return zc.Build()
}

var validate = validator.New()

// placeholderPattern matches a value of the exact form {{ENV_VAR}}
var placeholderPattern = regexp.MustCompile(`^{{([A-Z0-9_]+)}}$`)

// Loader reads the environment sections of a config file
type Loader struct {
	path   string
	logger *zap.Logger
}

// NewLoader creates a new configuration loader
func NewLoader(path string, logger *zap.Logger) *Loader {
	if path == "" {
		path = DefaultPath
	}
	return &Loader{
		path:   path,
		logger: logger,
	}
}

// Load reads the config file and returns the section for env. An empty env
// falls back to COOPCONTROL_ENV and then DefaultEnv.
func (l *Loader) Load(env string) (*Config, error) {
	if env == "" {
		env = os.Getenv(EnvVar)
	}
	if env == "" {
		env = DefaultEnv
	}

	l.logger.Debug("Loading config", zap.String("path", l.path), zap.String("env", env))

	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := Parse(data, env)
	if err != nil {
		return nil, err
	}

	l.logger.Info("Config loaded",
		zap.String("env", cfg.Env),
		zap.String("database_driver", cfg.Database.Driver),
		zap.String("timezone", cfg.App.Timezone))
	return cfg, nil
}

// Parse decodes raw YAML and returns the validated section for env
func Parse(data []byte, env string) (*Config, error) {
	var sections map[string]Config
	if err := yaml.Unmarshal(data, &sections); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg, ok := sections[env]
	if !ok {
		return nil, fmt.Errorf("environment %q not found in config", env)
	}
	cfg.Env = env

	cfg.applySecrets()
	cfg.applyDefaults()

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config for %s: %w", env, err)
	}

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.App.Timezone, err)
	}
	cfg.location = loc

	return &cfg, nil
}

// applySecrets swaps {{ENV_VAR}} placeholders for environment values in the
// fields that may carry secrets or deployment-specific values.
func (c *Config) applySecrets() {
	c.Database.DSN = ReplaceSecret(c.Database.DSN)
	c.Provider.BaseURL = ReplaceSecret(c.Provider.BaseURL)
	c.App.Timezone = ReplaceSecret(c.App.Timezone)
	c.HTTP.Addr = ReplaceSecret(c.HTTP.Addr)
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "coopcontrol"
	}
	if c.App.Timezone == "" {
		c.App.Timezone = "UTC"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8081"
	}
	if c.HTTP.ReadTimeout == 0 {
		c.HTTP.ReadTimeout = 10 * time.Second
	}
	if c.HTTP.WriteTimeout == 0 {
		c.HTTP.WriteTimeout = 10 * time.Second
	}
	if c.HTTP.IdleTimeout == 0 {
		c.HTTP.IdleTimeout = 60 * time.Second
	}
	if c.Provider.Name == "" {
		c.Provider.Name = "Sunrise-Sunset API"
	}
	if c.Provider.BaseURL == "" {
		c.Provider.BaseURL = "https://api.sunrise-sunset.org/json"
	}
	if c.Provider.Timeout == 0 {
		c.Provider.Timeout = 10 * time.Second
	}
	if c.Schedule.DailyAt == "" {
		c.Schedule.DailyAt = "00:01"
	}
	if c.Schedule.JobTimeout == 0 {
		c.Schedule.JobTimeout = 30 * time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// ReplaceSecret returns the value of ENV_VAR when value is exactly
// "{{ENV_VAR}}" and the variable is set; otherwise value is returned as is.
func ReplaceSecret(value string) string {
	match := placeholderPattern.FindStringSubmatch(value)
	if match == nil {
		return value
	}
	if v := os.Getenv(match[1]); v != "" {
		return v
	}
	return value
}
