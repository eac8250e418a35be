// Package config loads picoscreen settings from the environment, an optional
// .env file and an optional YAML or TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration values.
type Config struct {
	// AWS
	AWSRegion  string `yaml:"aws_region" toml:"aws_region"`
	S3Endpoint string `yaml:"s3_endpoint" toml:"s3_endpoint"`

	// Extraction jobs
	OutputBucket      string `yaml:"output_bucket" toml:"output_bucket"`
	OutputPrefix      string `yaml:"output_prefix" toml:"output_prefix"`
	DataAccessRoleARN string `yaml:"data_access_role_arn" toml:"data_access_role_arn"`
	KMSKey            string `yaml:"kms_key" toml:"kms_key"`

	// Job output layout
	OutputSuffix string `yaml:"output_suffix" toml:"output_suffix"`
	ManifestName string `yaml:"manifest_name" toml:"manifest_name"`

	// Scoring
	ScoreConcurrency int `yaml:"score_concurrency" toml:"score_concurrency"`

	// Logging
	LogFile  string     `yaml:"log_file" toml:"log_file"`
	LogLevel slog.Level `yaml:"-" toml:"-"`
	Level    string     `yaml:"log_level" toml:"log_level"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		AWSRegion:        "us-east-1",
		OutputPrefix:     "output",
		OutputSuffix:     ".out",
		ManifestName:     "Manifest",
		ScoreConcurrency: 4,
		LogFile:          "/tmp/picoscreen.log",
		Level:            "INFO",
		LogLevel:         slog.LevelInfo,
	}
}

// Load reads configuration from environment variables over the defaults.
func Load() Config {
	cfg := Defaults()
	cfg.applyEnv()
	return cfg
}

// LoadFile reads a YAML or TOML file (chosen by extension) over the
// defaults, then applies environment variables on top. An empty path
// behaves like Load.
func LoadFile(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		unmarshal := yaml.Unmarshal
		if strings.EqualFold(filepath.Ext(path), ".toml") {
			unmarshal = toml.Unmarshal
		}
		if err := unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// LoadDotEnv exports the variables of a .env file that are not already set.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)
	c.S3Endpoint = getEnv("PICOSCREEN_S3_ENDPOINT", c.S3Endpoint)

	c.OutputBucket = getEnv("PICOSCREEN_OUTPUT_BUCKET", c.OutputBucket)
	c.OutputPrefix = getEnv("PICOSCREEN_OUTPUT_PREFIX", c.OutputPrefix)
	c.DataAccessRoleARN = getEnv("PICOSCREEN_DATA_ACCESS_ROLE_ARN", c.DataAccessRoleARN)
	c.KMSKey = getEnv("PICOSCREEN_KMS_KEY", c.KMSKey)

	c.OutputSuffix = getEnv("PICOSCREEN_OUTPUT_SUFFIX", c.OutputSuffix)
	c.ManifestName = getEnv("PICOSCREEN_MANIFEST_NAME", c.ManifestName)

	c.ScoreConcurrency = getEnvInt("PICOSCREEN_SCORE_CONCURRENCY", c.ScoreConcurrency)

	c.LogFile = getEnv("PICOSCREEN_LOG_FILE", c.LogFile)
	c.Level = getEnv("PICOSCREEN_LOG_LEVEL", c.Level)
	c.LogLevel = parseLogLevel(c.Level)
}

// ValidateSubmit reports the settings Stage A needs but does not have.
func (c Config) ValidateSubmit() error {
	var errs []error
	if c.OutputBucket == "" {
		errs = append(errs, errors.New("PICOSCREEN_OUTPUT_BUCKET is required"))
	}
	if c.DataAccessRoleARN == "" {
		errs = append(errs, errors.New("PICOSCREEN_DATA_ACCESS_ROLE_ARN is required"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		slog.Warn("ignoring invalid integer setting", "key", key, "value", val)
		return defaultVal
	}
	return n
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
