package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/hookpatch/pkg/patch"
)

// Sentinel validation errors.
var (
	ErrEmptyBaseDir    = errors.New("base directory must not be empty")
	ErrNoFiles         = errors.New("file list must not be empty")
	ErrEmptyFileName   = errors.New("file name must not be empty")
	ErrInvalidLogLevel = errors.New("invalid log level")
	ErrEmptyPattern    = errors.New("call pattern must not be empty")
)

const (
	envPrefix      = "HOOKPATCH"
	configFileName = "hookpatch"
)

// Config holds everything one hookpatch run needs.
type Config struct {
	BaseDir       string          `mapstructure:"base_dir"`
	FileNames     []string        `mapstructure:"file_names"`
	Marker        string          `mapstructure:"marker"`
	ImportAnchor  string          `mapstructure:"import_anchor"`
	ImportLine    string          `mapstructure:"import_line"`
	CallLine      string          `mapstructure:"call_line"`
	CallPattern   string          `mapstructure:"call_pattern"`
	SkipUnchanged bool            `mapstructure:"skip_unchanged"`
	Logging       LoggingConfig   `mapstructure:"logging"`
	Telemetry     TelemetryConfig `mapstructure:"telemetry"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// TelemetryConfig holds OTLP and Pushgateway settings.
type TelemetryConfig struct {
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	OTLPInsecure   bool   `mapstructure:"otlp_insecure"`
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
}

// LoadConfig loads configuration from file and environment variables.
// An empty configPath searches for hookpatch.yaml in . and ./config; a
// missing search result is not an error. An explicit path must exist.
// The result is not validated; callers apply their overrides and then
// call Validate.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configFileName)
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
	}

	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("base_dir", DefaultBaseDir)
	viperCfg.SetDefault("file_names", DefaultFileNames())
	viperCfg.SetDefault("marker", DefaultMarker)
	viperCfg.SetDefault("import_anchor", DefaultImportAnchor)
	viperCfg.SetDefault("import_line", DefaultImportLine)
	viperCfg.SetDefault("call_line", DefaultCallLine)
	viperCfg.SetDefault("call_pattern", DefaultCallPattern)
	viperCfg.SetDefault("skip_unchanged", DefaultSkipUnchanged)

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.json", DefaultLogJSON)

	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_headers", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
	viperCfg.SetDefault("telemetry.pushgateway_url", "")
	viperCfg.SetDefault("telemetry.job", DefaultJobName)
}

// Validate checks the run target and the patch fragments.
func (c *Config) Validate() error {
	if c.BaseDir == "" {
		return ErrEmptyBaseDir
	}

	if len(c.FileNames) == 0 {
		return ErrNoFiles
	}

	for i, name := range c.FileNames {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: index %d", ErrEmptyFileName, i)
		}
	}

	_, levelErr := c.LogLevel()
	if levelErr != nil {
		return levelErr
	}

	_, fragErr := c.Fragments()

	return fragErr
}

// Fragments builds the patch fragments, compiling the call pattern.
func (c *Config) Fragments() (patch.Fragments, error) {
	if c.CallPattern == "" {
		return patch.Fragments{}, ErrEmptyPattern
	}

	re, err := patch.CompilePattern(c.CallPattern)
	if err != nil {
		return patch.Fragments{}, err
	}

	frags := patch.Fragments{
		Marker:       c.Marker,
		ImportAnchor: c.ImportAnchor,
		ImportLine:   c.ImportLine,
		CallLine:     c.CallLine,
		CallPattern:  re,
	}

	validateErr := frags.Validate()
	if validateErr != nil {
		return patch.Fragments{}, fmt.Errorf("fragments: %w", validateErr)
	}

	return frags, nil
}

// LogLevel parses Logging.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(c.Logging.Level))
	if err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	return level, nil
}
