package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/rewired-gh/bikestats/internal/models"
	"github.com/rewired-gh/bikestats/internal/storage"
)

// Config represents the complete application configuration
type Config struct {
	Datasets map[string]DatasetConfig `mapstructure:"datasets"`
	Pager    PagerConfig              `mapstructure:"pager"`
	Output   OutputConfig             `mapstructure:"output"`
	Telegram TelegramConfig           `mapstructure:"telegram"`
	Logging  LoggingConfig            `mapstructure:"logging"`
}

// DatasetConfig locates the source of one city's trip records
type DatasetConfig struct {
	Path   string `mapstructure:"path"`
	Format string `mapstructure:"format"`
	Table  string `mapstructure:"table"`
}

// PagerConfig holds raw data paging configuration
type PagerConfig struct {
	PageSize int `mapstructure:"page_size"`
}

// OutputConfig holds report rendering configuration
type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// TelegramConfig holds Telegram report delivery configuration
type TelegramConfig struct {
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	Enabled        bool          `mapstructure:"enabled"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
// An empty path loads defaults and environment overrides only.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Enable environment variable override, e.g. BIKESTATS_LOGGING_LEVEL
	v.SetEnvPrefix("BIKESTATS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", " ", "_"))
	v.AutomaticEnv()

	// Read config file
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Dataset defaults mirror the file names of the published city exports
	v.SetDefault("datasets", map[string]interface{}{
		string(models.Chicago):     map[string]interface{}{"path": "./data/chicago.csv"},
		string(models.NewYorkCity): map[string]interface{}{"path": "./data/new_york_city.csv"},
		string(models.Washington):  map[string]interface{}{"path": "./data/washington.csv"},
	})

	// Pager defaults
	v.SetDefault("pager.page_size", 5)

	// Output defaults
	v.SetDefault("output.format", "text")

	// Telegram defaults
	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", "1s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	// Validate Dataset config
	for name, ds := range c.Datasets {
		if _, err := models.ParseDatasetID(name); err != nil {
			return fmt.Errorf("datasets: %w", err)
		}
		if ds.Path == "" {
			return fmt.Errorf("datasets.%s.path is required", name)
		}
		src := storage.Source{Path: ds.Path, Format: ds.Format, Table: ds.Table}
		if _, err := src.ResolveFormat(); err != nil {
			return fmt.Errorf("datasets.%s: %w", name, err)
		}
	}
	for _, id := range models.Datasets {
		if _, ok := c.Datasets[string(id)]; !ok {
			return fmt.Errorf("datasets.%s is required", id)
		}
	}

	// Validate Pager config
	if c.Pager.PageSize < 1 {
		return fmt.Errorf("pager.page_size must be at least 1")
	}

	// Validate Output config
	validOutputs := map[string]bool{"text": true, "json": true}
	if !validOutputs[c.Output.Format] {
		return fmt.Errorf("output.format must be one of: text, json")
	}

	// Validate Telegram config
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
		if c.Telegram.MaxRetries < 1 {
			return fmt.Errorf("telegram.max_retries must be at least 1")
		}
	}

	// Validate Logging config
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}

// Sources returns the dataset-to-source table the loader is built from.
func (c *Config) Sources() map[models.DatasetID]storage.Source {
	sources := make(map[models.DatasetID]storage.Source, len(c.Datasets))
	for name, ds := range c.Datasets {
		id, err := models.ParseDatasetID(name)
		if err != nil {
			continue
		}
		sources[id] = storage.Source{Path: ds.Path, Format: ds.Format, Table: ds.Table}
	}
	return sources
}
