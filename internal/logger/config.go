package logger

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds logging configuration
type Config struct {
	Level          string `yaml:"level"`
	ConsoleEnabled *bool  `yaml:"console_enabled"`
	ConsoleFormat  string `yaml:"console_format"`
	FileEnabled    bool   `yaml:"file_enabled"`
	FilePath       string `yaml:"file_path"`
	FileFormat     string `yaml:"file_format"`
	FileMaxSizeMB  int    `yaml:"file_max_size_mb"`
	FileMaxBackups int    `yaml:"file_max_backups"`
	FileMaxAgeDays int    `yaml:"file_max_age_days"`
}

// LoggingConfig wraps the Config for YAML parsing
type LoggingConfig struct {
	Logging Config `yaml:"logging"`
}

// DefaultConfig logs text at INFO to stdout only.
func DefaultConfig() Config {
	console := true
	return Config{
		Level:          "INFO",
		ConsoleEnabled: &console,
		ConsoleFormat:  "text",
		FilePath:       "logs/loot.log",
		FileFormat:     "json",
		FileMaxSizeMB:  10,
		FileMaxBackups: 5,
		FileMaxAgeDays: 30,
	}
}

// LoadConfig loads logging configuration from a YAML file and applies
// environment variable overrides. An empty path or a missing file keeps the
// defaults; a file that cannot be parsed is an error.
func LoadConfig(configPath string) (Config, error) {
	config := DefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			var lc LoggingConfig
			if err := yaml.Unmarshal(data, &lc); err != nil {
				return Config{}, fmt.Errorf("parse logging config %s: %w", configPath, err)
			}
			config = merge(config, lc.Logging)
		case !os.IsNotExist(err):
			return Config{}, fmt.Errorf("read logging config %s: %w", configPath, err)
		}
	}

	// Apply environment variable overrides
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		config.Level = logLevel
	}
	if consoleFormat := os.Getenv("LOG_CONSOLE_FORMAT"); consoleFormat != "" {
		config.ConsoleFormat = consoleFormat
	}
	if fileEnabled := os.Getenv("LOG_FILE_ENABLED"); fileEnabled != "" {
		if enabled, err := strconv.ParseBool(fileEnabled); err == nil {
			config.FileEnabled = enabled
		}
	}
	if filePath := os.Getenv("LOG_FILE_PATH"); filePath != "" {
		config.FilePath = filePath
	}

	return config, nil
}

func merge(base, over Config) Config {
	if over.Level != "" {
		base.Level = over.Level
	}
	if over.ConsoleEnabled != nil {
		base.ConsoleEnabled = over.ConsoleEnabled
	}
	if over.ConsoleFormat != "" {
		base.ConsoleFormat = over.ConsoleFormat
	}
	base.FileEnabled = over.FileEnabled
	if over.FilePath != "" {
		base.FilePath = over.FilePath
	}
	if over.FileFormat != "" {
		base.FileFormat = over.FileFormat
	}
	if over.FileMaxSizeMB > 0 {
		base.FileMaxSizeMB = over.FileMaxSizeMB
	}
	if over.FileMaxBackups > 0 {
		base.FileMaxBackups = over.FileMaxBackups
	}
	if over.FileMaxAgeDays > 0 {
		base.FileMaxAgeDays = over.FileMaxAgeDays
	}
	return base
}
