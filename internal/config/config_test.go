package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"AWS_REGION", "PICOSCREEN_OUTPUT_BUCKET", "PICOSCREEN_SCORE_CONCURRENCY", "PICOSCREEN_LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "us-east-1", cfg.AWSRegion)
	assert.Equal(t, ".out", cfg.OutputSuffix)
	assert.Equal(t, "Manifest", cfg.ManifestName)
	assert.Equal(t, 4, cfg.ScoreConcurrency)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("PICOSCREEN_OUTPUT_BUCKET", "screening-output")
	t.Setenv("PICOSCREEN_SCORE_CONCURRENCY", "16")
	t.Setenv("PICOSCREEN_LOG_LEVEL", "debug")

	cfg := Load()
	assert.Equal(t, "eu-west-1", cfg.AWSRegion)
	assert.Equal(t, "screening-output", cfg.OutputBucket)
	assert.Equal(t, 16, cfg.ScoreConcurrency)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoadInvalidConcurrencyKeepsDefault(t *testing.T) {
	t.Setenv("PICOSCREEN_SCORE_CONCURRENCY", "-3")
	assert.Equal(t, 4, Load().ScoreConcurrency)

	t.Setenv("PICOSCREEN_SCORE_CONCURRENCY", "many")
	assert.Equal(t, 4, Load().ScoreConcurrency)
}

func TestLoadFile(t *testing.T) {
	t.Setenv("PICOSCREEN_OUTPUT_PREFIX", "")
	t.Setenv("PICOSCREEN_OUTPUT_BUCKET", "from-env")
	t.Setenv("PICOSCREEN_LOG_LEVEL", "")

	path := filepath.Join(t.TempDir(), "picoscreen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
output_bucket: from-file
output_prefix: screenings
data_access_role_arn: arn:aws:iam::123456789012:role/cm
score_concurrency: 8
log_level: warn
`), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.OutputBucket, "env wins over file")
	assert.Equal(t, "screenings", cfg.OutputPrefix)
	assert.Equal(t, 8, cfg.ScoreConcurrency)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	assert.NoError(t, cfg.ValidateSubmit())
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output_bucket: [unclosed"), 0o644))
	_, err = LoadFile(path)
	assert.Error(t, err)
}

func TestValidateSubmit(t *testing.T) {
	err := Defaults().ValidateSubmit()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PICOSCREEN_OUTPUT_BUCKET")
	assert.Contains(t, err.Error(), "PICOSCREEN_DATA_ACCESS_ROLE_ARN")
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"Error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLogLevel(in), in)
	}
}

func TestSetupLoggerWithWriters(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Warn("manifest not completed", "job_type", "icd10CM")

	assert.Contains(t, stderr.String(), "manifest not completed")
	assert.NotContains(t, stderr.String(), "hidden")

	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(file.String())), &record))
	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "icd10CM", record["job_type"])
}

func TestSetupLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "picoscreen.log")
	logger, cleanup := SetupLogger(path, slog.LevelInfo)
	logger.Info("stage finished", "stage", "poll")
	require.NoError(t, cleanup())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"stage":"poll"`)

	_, cleanup = SetupLogger("", slog.LevelInfo)
	assert.NoError(t, cleanup())
}

func TestLoadFileTOML(t *testing.T) {
	t.Setenv("PICOSCREEN_OUTPUT_BUCKET", "")
	t.Setenv("PICOSCREEN_SCORE_CONCURRENCY", "")

	path := filepath.Join(t.TempDir(), "picoscreen.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
output_bucket = "from-toml"
manifest_name = "manifest.json"
score_concurrency = 12
`), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "from-toml", cfg.OutputBucket)
	assert.Equal(t, "manifest.json", cfg.ManifestName)
	assert.Equal(t, 12, cfg.ScoreConcurrency)
	assert.Equal(t, ".out", cfg.OutputSuffix)
}

func TestLoadDotEnv(t *testing.T) {
	t.Setenv("PICOSCREEN_OUTPUT_PREFIX", "from-env")
	t.Cleanup(func() { os.Unsetenv("PICOSCREEN_TEST_DOTENV") })

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PICOSCREEN_TEST_DOTENV=loaded\nPICOSCREEN_OUTPUT_PREFIX=from-file\n"), 0o644))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("PICOSCREEN_TEST_DOTENV"))
	assert.Equal(t, "from-env", os.Getenv("PICOSCREEN_OUTPUT_PREFIX"), "existing variables win")

	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
	assert.NoError(t, LoadDotEnv(""))
}
