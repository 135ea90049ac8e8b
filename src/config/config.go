package config

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"perfmon-dashboard/src/helpers"
	"perfmon-dashboard/src/models"

	"gopkg.in/yaml.v3"
)

const (
	DefaultName     = "perfmon-dashboard"
	DefaultHost     = "127.0.0.1"
	DefaultPort     = 5000
	DefaultCSVPath  = "Performance Counter.csv"
	DefaultPerPage  = 50
	DefaultEncoding = "utf-8"
	DefaultDBType   = "none"
	DefaultRetries  = 3
	DefaultRedisKey = "perfmon"
)

var supportedEncodings = map[string]bool{
	"utf-8":        true,
	"utf-16":       true,
	"windows-1252": true,
}

var supportedDBTypes = map[string]bool{
	"none":     true,
	"sqlite":   true,
	"postgres": true,
	"redis":    true,
}

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new Config instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, helpers.NewConfigurationError(fmt.Sprintf("failed to read config file '%s'", configPath), err)
	}

	return Parse(data)
}

// -----------------------------------------------------------------------------

// Parse builds a Config from raw YAML, applying defaults before validation.
func Parse(data []byte) (*Config, error) {
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, helpers.NewConfigurationError("failed to parse config from YAML", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.ApplyDefaults()

	if err := config.Validate(); err != nil {
		return nil, helpers.NewConfigurationError("config validation failed", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// Default returns a validated configuration with every default applied.
func Default() *Config {
	config := &Config{MConfig: &models.MConfig{}}
	config.ApplyDefaults()
	return config
}

// -----------------------------------------------------------------------------

// ApplyDefaults fills in zero values
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	if c.Data.CSVPath == "" {
		c.Data.CSVPath = DefaultCSVPath
	}
	if c.Data.Encoding == "" {
		c.Data.Encoding = DefaultEncoding
	}
	c.Data.Encoding = strings.ToLower(c.Data.Encoding)
	if c.Data.Delimiter == "" {
		c.Data.Delimiter = ","
	}
	if c.Data.PerPage == 0 {
		c.Data.PerPage = DefaultPerPage
	}
	if c.Storage.DBType == "" {
		c.Storage.DBType = DefaultDBType
	}
	c.Storage.DBType = strings.ToLower(c.Storage.DBType)
	if c.Storage.MaxRetries == 0 {
		c.Storage.MaxRetries = DefaultRetries
	}
	if c.Storage.RedisKeyPrefix == "" {
		c.Storage.RedisKeyPrefix = DefaultRedisKey
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Server
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1 and 65535)", c.Port)
	}
	if c.GrpcPort < 0 || c.GrpcPort > 65535 {
		return fmt.Errorf("invalid grpc port number: %d", c.GrpcPort)
	}
	if c.GrpcPort != 0 && c.GrpcPort == c.Port {
		return fmt.Errorf("grpc port %d clashes with the http port", c.GrpcPort)
	}

	// Data
	if strings.TrimSpace(c.Data.CSVPath) == "" {
		return fmt.Errorf("csv path cannot be empty")
	}
	if !supportedEncodings[c.Data.Encoding] {
		return fmt.Errorf("unsupported encoding %q", c.Data.Encoding)
	}
	if utf8.RuneCountInString(c.Data.Delimiter) != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", c.Data.Delimiter)
	}
	if r, _ := utf8.DecodeRuneInString(c.Data.Delimiter); r == '"' || r == '\r' || r == '\n' {
		return fmt.Errorf("invalid delimiter %q", c.Data.Delimiter)
	}
	if c.Data.PerPage < 1 {
		return fmt.Errorf("per_page must be greater than 0")
	}
	if c.Data.MaxFileMB < 0 {
		return fmt.Errorf("max_file_mb cannot be negative")
	}

	// Categories
	seen := make(map[models.Category]bool)
	for i, rule := range c.Categories {
		category, ok := models.ParseCategory(rule.Name)
		if !ok {
			return fmt.Errorf("category rule %d: unknown category %q", i, rule.Name)
		}
		if category == models.CategoryOther {
			return fmt.Errorf("category rule %d: %s is the fallback and takes no keywords", i, category)
		}
		if seen[category] {
			return fmt.Errorf("category rule %d: %s listed twice", i, category)
		}
		seen[category] = true
		if len(rule.Keywords) == 0 {
			return fmt.Errorf("category '%s' must have at least one keyword", rule.Name)
		}
		for _, kw := range rule.Keywords {
			if strings.TrimSpace(kw) == "" {
				return fmt.Errorf("category '%s' has an empty keyword", rule.Name)
			}
		}
	}

	// Storage
	if !supportedDBTypes[c.Storage.DBType] {
		return fmt.Errorf("unsupported database type %q", c.Storage.DBType)
	}
	if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
		return fmt.Errorf("database path cannot be empty for sqlite")
	}
	if c.Storage.DBType == "postgres" && c.Storage.DBConnectionString == "" {
		return fmt.Errorf("connection string cannot be empty for postgres")
	}
	if c.Storage.DBType == "redis" && c.Storage.RedisAddr == "" {
		return fmt.Errorf("redis address cannot be empty for redis")
	}
	if c.Storage.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
