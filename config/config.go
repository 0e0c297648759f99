package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/djelia-org/djelia-go"
)

type Config struct {
	APIKey          string `yaml:"api_key"`
	BaseURL         string `yaml:"base_url"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
	Port            string `yaml:"port"`
	LogLevel        string `yaml:"log_level"`
	RedisAddr       string `yaml:"redis_addr"`
	RedisPassword   string `yaml:"redis_password"`
	RedisDB         int    `yaml:"redis_db"`
	HistoryTTLHours int    `yaml:"history_ttl_hours"`
	S3Bucket        string `yaml:"s3_bucket"`
	S3Region        string `yaml:"s3_region"`
}

// Load reads the environment, after loading a .env file if one exists.
// A missing API key is not an error here; the client reports it on use.
func Load() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		APIKey:          getEnv(djelia.EnvAPIKey, ""),
		BaseURL:         getEnv("DJELIA_BASE_URL", djelia.DefaultBaseURL),
		TimeoutSeconds:  getEnvInt("DJELIA_TIMEOUT_SECONDS", int(djelia.DefaultTimeout/time.Second)),
		Port:            getEnv("PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		HistoryTTLHours: getEnvInt("HISTORY_TTL_HOURS", 24),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Region:        getEnv("S3_REGION", "us-east-1"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile loads the environment and then overlays the non-empty values of
// the YAML file at path.
func LoadFile(path string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var overlay Config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	cfg.merge(&overlay)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout must be positive, got %d", c.TimeoutSeconds)
	}
	if c.HistoryTTLHours <= 0 {
		return fmt.Errorf("history ttl must be positive, got %d", c.HistoryTTLHours)
	}
	return nil
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c *Config) HistoryTTL() time.Duration {
	return time.Duration(c.HistoryTTLHours) * time.Hour
}

// ClientOptions returns the SDK options described by the configuration.
func (c *Config) ClientOptions() []djelia.Option {
	return []djelia.Option{
		djelia.WithBaseURL(c.BaseURL),
		djelia.WithTimeout(c.Timeout()),
	}
}

func (c *Config) merge(o *Config) {
	setString(&c.APIKey, o.APIKey)
	setString(&c.BaseURL, o.BaseURL)
	setString(&c.Port, o.Port)
	setString(&c.LogLevel, o.LogLevel)
	setString(&c.RedisAddr, o.RedisAddr)
	setString(&c.RedisPassword, o.RedisPassword)
	setString(&c.S3Bucket, o.S3Bucket)
	setString(&c.S3Region, o.S3Region)
	if o.TimeoutSeconds != 0 {
		c.TimeoutSeconds = o.TimeoutSeconds
	}
	if o.RedisDB != 0 {
		c.RedisDB = o.RedisDB
	}
	if o.HistoryTTLHours != 0 {
		c.HistoryTTLHours = o.HistoryTTLHours
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
