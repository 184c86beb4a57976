package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
database:
  url: postgres://localhost:5432/triage?sslmode=disable
provider:
  url: http://localhost:9000
  poll_interval_seconds: 15
  request_timeout_seconds: 30
scoring:
  medium_min: 10.0
  high_min: 20.0
  low_risk_notice: "Your symptoms appear mild. Monitor and rest."
server:
  port: ":8080"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, int64(15), cfg.Provider.PollInterval)
	assert.Equal(t, 10.0, cfg.Scoring.MediumMin)
	assert.Equal(t, 20.0, cfg.Scoring.HighMin)
	assert.Equal(t, ":8080", cfg.Server.Port)
}

func TestLoadConfigRejectsInvertedThresholds(t *testing.T) {
	path := writeConfig(t, `
scoring:
  medium_min: 20.0
  high_min: 10.0
  low_risk_notice: "notice"
`)

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "high_min")
}

func TestLoadConfigRequiresLowRiskNotice(t *testing.T) {
	path := writeConfig(t, `
scoring:
  medium_min: 10.0
  high_min: 20.0
`)

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "low_risk_notice")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}
