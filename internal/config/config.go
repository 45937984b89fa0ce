package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"logbull/internal/diagnostics"
	"logbull/internal/models"
	"logbull/internal/sender"
	"logbull/internal/utils"
	"logbull/internal/validation"
)

const envPrefix = "LOGBULL_"

// Config holds client configuration loaded from a YAML file and/or
// LOGBULL_* environment variables.
type Config struct {
	Enabled     *bool             `yaml:"enabled"`
	ProjectID   string            `yaml:"project_id"`
	Host        string            `yaml:"host"`
	APIKey      string            `yaml:"api_key"`
	LogLevel    string            `yaml:"log_level"`
	Console     bool              `yaml:"console"`
	Sender      SenderConfig      `yaml:"sender"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
}

// SenderConfig tunes the delivery engine
type SenderConfig struct {
	BatchSize       int           `yaml:"batch_size"`
	BatchInterval   time.Duration `yaml:"batch_interval"`
	QueueCapacity   int           `yaml:"queue_capacity"`
	MaxWorkers      int           `yaml:"max_workers"`
	HTTPTimeout     time.Duration `yaml:"http_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DiagnosticsConfig controls where the client reports its own problems
type DiagnosticsConfig struct {
	LogLevel string      `yaml:"log_level"`
	Redis    RedisConfig `yaml:"redis"`
}

// RedisConfig holds settings for the optional Redis diagnostics list
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
	MaxLen   int64  `yaml:"max_len"`
}

func getEnvInt(key string, defaultValue int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getEnvInt64(key string, defaultValue int64) int64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	intVal, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return defaultValue
	}
	return intVal
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(val)
	if err != nil {
		return defaultValue
	}

	return duration
}

func getEnvString(key string, defaultValue string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	return val
}

func getEnvBool(key string, defaultValue bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultValue
	}
	return b
}

// Load reads configuration from environment variables only.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.applyEnv()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads a YAML file; environment variables override its values.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config file: %w", err)
	}

	cfg.applyEnv()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if os.Getenv(envPrefix+"ENABLED") != "" {
		c.Enabled = utils.BoolPtr(getEnvBool(envPrefix+"ENABLED", c.IsEnabled()))
	}
	c.ProjectID = getEnvString(envPrefix+"PROJECT_ID", c.ProjectID)
	c.Host = getEnvString(envPrefix+"HOST", c.Host)
	c.APIKey = getEnvString(envPrefix+"API_KEY", c.APIKey)
	c.LogLevel = getEnvString(envPrefix+"LOG_LEVEL", c.LogLevel)
	c.Console = getEnvBool(envPrefix+"CONSOLE", c.Console)

	c.Sender.BatchSize = getEnvInt(envPrefix+"BATCH_SIZE", c.Sender.BatchSize)
	c.Sender.BatchInterval = getEnvDuration(envPrefix+"BATCH_INTERVAL", c.Sender.BatchInterval)
	c.Sender.QueueCapacity = getEnvInt(envPrefix+"QUEUE_CAPACITY", c.Sender.QueueCapacity)
	c.Sender.MaxWorkers = getEnvInt(envPrefix+"MAX_WORKERS", c.Sender.MaxWorkers)
	c.Sender.HTTPTimeout = getEnvDuration(envPrefix+"HTTP_TIMEOUT", c.Sender.HTTPTimeout)
	c.Sender.ShutdownTimeout = getEnvDuration(envPrefix+"SHUTDOWN_TIMEOUT", c.Sender.ShutdownTimeout)

	c.Diagnostics.LogLevel = getEnvString(envPrefix+"DIAGNOSTICS_LEVEL", c.Diagnostics.LogLevel)
	c.Diagnostics.Redis.Enabled = getEnvBool(envPrefix+"DIAGNOSTICS_REDIS_ENABLED", c.Diagnostics.Redis.Enabled)
	c.Diagnostics.Redis.Address = getEnvString(envPrefix+"DIAGNOSTICS_REDIS_ADDRESS", c.Diagnostics.Redis.Address)
	c.Diagnostics.Redis.Password = getEnvString(envPrefix+"DIAGNOSTICS_REDIS_PASSWORD", c.Diagnostics.Redis.Password)
	c.Diagnostics.Redis.DB = getEnvInt(envPrefix+"DIAGNOSTICS_REDIS_DB", c.Diagnostics.Redis.DB)
	c.Diagnostics.Redis.Key = getEnvString(envPrefix+"DIAGNOSTICS_REDIS_KEY", c.Diagnostics.Redis.Key)
	c.Diagnostics.Redis.MaxLen = getEnvInt64(envPrefix+"DIAGNOSTICS_REDIS_MAX_LEN", c.Diagnostics.Redis.MaxLen)
}

// SetDefaults fills every unset value
func (c *Config) SetDefaults() {
	if c.Enabled == nil {
		c.Enabled = utils.BoolPtr(true)
	}
	if c.LogLevel == "" {
		c.LogLevel = models.LevelInfo.String()
	}
	c.Sender.SetDefaults()
	c.Diagnostics.SetDefaults()
}

func (c *SenderConfig) SetDefaults() {
	d := sender.DefaultOptions()
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if c.BatchInterval <= 0 {
		c.BatchInterval = d.BatchInterval
	}
	if c.QueueCapacity <= 0 {
		c.QueueCapacity = d.QueueCapacity
	}
	if c.MaxWorkers <= 0 {
		c.MaxWorkers = d.MaxWorkers
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = d.HTTPTimeout
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
}

func (c *DiagnosticsConfig) SetDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "WARNING"
	}
	d := diagnostics.DefaultRedisConfig()
	if c.Redis.Address == "" {
		c.Redis.Address = d.Address
	}
	if c.Redis.Key == "" {
		c.Redis.Key = d.Key
	}
	if c.Redis.MaxLen <= 0 {
		c.Redis.MaxLen = d.MaxLen
	}
}

// IsEnabled reports whether logs should be shipped at all
func (c *Config) IsEnabled() bool {
	return utils.BoolValue(c.Enabled, true)
}

// Validate checks the configuration. A disabled client only needs a valid
// log level.
func (c *Config) Validate() error {
	if _, err := models.ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %v", validation.ErrInvalidInput, err)
	}
	if !c.IsEnabled() {
		return nil
	}
	if err := validation.ValidateConfig(c.modelConfig()); err != nil {
		return err
	}
	if c.Sender.BatchSize > c.Sender.QueueCapacity {
		return fmt.Errorf("%w: sender.batch_size (%d) exceeds sender.queue_capacity (%d)",
			validation.ErrInvalidInput, c.Sender.BatchSize, c.Sender.QueueCapacity)
	}
	return nil
}

// ModelConfig converts to the immutable client configuration
func (c *Config) ModelConfig() (models.Config, error) {
	if _, err := models.ParseLogLevel(c.LogLevel); err != nil {
		return models.Config{}, fmt.Errorf("%w: log_level: %v", validation.ErrInvalidInput, err)
	}
	return c.modelConfig(), nil
}

func (c *Config) modelConfig() models.Config {
	level, err := models.ParseLogLevel(c.LogLevel)
	if err != nil {
		level = models.LevelInfo
	}
	return models.Config{
		ProjectID: strings.TrimSpace(c.ProjectID),
		Host:      strings.TrimSpace(c.Host),
		APIKey:    strings.TrimSpace(c.APIKey),
		MinLevel:  level,
	}
}

// SenderOptions converts to engine options. The reporter is left for the
// caller to set.
func (c *SenderConfig) SenderOptions() sender.Options {
	return sender.Options{
		BatchSize:       c.BatchSize,
		BatchInterval:   c.BatchInterval,
		QueueCapacity:   c.QueueCapacity,
		MaxWorkers:      c.MaxWorkers,
		HTTPTimeout:     c.HTTPTimeout,
		ShutdownTimeout: c.ShutdownTimeout,
	}
}

// RedisReporterConfig converts to the diagnostics sink settings
func (c *RedisConfig) RedisReporterConfig() diagnostics.RedisConfig {
	cfg := diagnostics.DefaultRedisConfig()
	cfg.Address = c.Address
	cfg.Password = c.Password
	cfg.DB = c.DB
	cfg.Key = c.Key
	cfg.MaxLen = c.MaxLen
	return cfg
}

// DiagnosticsLevel maps the configured name onto the internal logger level
func (c *DiagnosticsConfig) DiagnosticsLevel() utils.LogLevel {
	return utils.ParseLevel(c.LogLevel)
}

// String is safe to log: the API key and Redis password are fingerprinted.
func (c *Config) String() string {
	return fmt.Sprintf("Config{enabled=%t, projectID=%s, host=%s, apiKey=%s, logLevel=%s, redis=%t}",
		c.IsEnabled(), c.ProjectID, c.Host, utils.Fingerprint(c.APIKey), c.LogLevel, c.Diagnostics.Redis.Enabled)
}
