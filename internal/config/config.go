package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// DefaultOutputName is the file written next to the input when no output path is given.
const DefaultOutputName = "livestock_PREPARED_long.csv"

// Config represents the complete application configuration
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
}

// PipelineConfig contains the preparation pipeline options
type PipelineConfig struct {
	InputPath          string  `yaml:"input_path" envconfig:"INPUT_PATH"`
	OutputPath         string  `yaml:"output_path" envconfig:"OUTPUT_PATH"`
	GWP                string  `yaml:"gwp" envconfig:"GWP" default:"AR6_NOCCF" validate:"oneof=AR4 AR5 AR6_NOCCF AR6_CCF"`
	SplitCattle        bool    `yaml:"split_cattle" envconfig:"SPLIT_CATTLE" default:"true"`
	DairySharePct      float64 `yaml:"dairy_share_pct" envconfig:"DAIRY_SHARE_PCT" default:"35" validate:"gte=0,lte=100"`
	OnlyLivestockTotal bool    `yaml:"only_livestock_total" envconfig:"ONLY_LIVESTOCK_TOTAL" default:"true"`
}

// ServerConfig contains HTTP server configuration for the dashboard API
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/emiscli.log"`
}

// Load loads configuration from environment variables and config file.
// Environment variables (prefix EMIS) take precedence over the YAML file.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("EMIS", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := getConfigFilePath()
	if _, err := os.Stat(configFile); err == nil {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence)
func mergeConfigs(fileConfig, envConfig Config) Config {
	if envConfig.Pipeline.InputPath == "" {
		envConfig.Pipeline.InputPath = fileConfig.Pipeline.InputPath
	}
	if envConfig.Pipeline.OutputPath == "" {
		envConfig.Pipeline.OutputPath = fileConfig.Pipeline.OutputPath
	}
	if envConfig.Server.Port == 0 {
		envConfig.Server.Port = fileConfig.Server.Port
	}
	if envConfig.Logging.FilePath == "" {
		envConfig.Logging.FilePath = fileConfig.Logging.FilePath
	}

	return envConfig
}

// Validate checks field constraints declared on the config structs
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		var errs validator.ValidationErrors
		if ok := asValidationErrors(err, &errs); ok && len(errs) > 0 {
			fe := errs[0]
			return fmt.Errorf("field %s failed rule %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return err
	}
	return nil
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	if errs, ok := err.(validator.ValidationErrors); ok {
		*target = errs
		return true
	}
	return false
}

// DairyFraction returns the configured dairy share as a fraction clamped to [0, 1].
func (p PipelineConfig) DairyFraction() float64 {
	frac := p.DairySharePct / 100.0
	if frac < 0 {
		return 0
	}
	if frac > 1 {
		return 1
	}
	return frac
}

// ResolveOutputPath returns the configured output path, or the default
// sibling of the input when none was set.
func (p PipelineConfig) ResolveOutputPath() string {
	if p.OutputPath != "" {
		return p.OutputPath
	}
	return filepath.Join(filepath.Dir(p.InputPath), DefaultOutputName)
}

// getConfigFilePath returns the config file location, overridable via EMIS_CONFIG_FILE
func getConfigFilePath() string {
	if path := strings.TrimSpace(os.Getenv("EMIS_CONFIG_FILE")); path != "" {
		return path
	}
	return "emiscli.yaml"
}
