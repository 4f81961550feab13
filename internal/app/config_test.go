package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcaMx/company-extractor-web/internal/client"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ":5000", cfg.Addr)
	assert.Equal(t, client.DefaultBaseURL, cfg.APIURL)
	assert.Equal(t, "gpt-4", cfg.LLMModel)
	assert.Equal(t, 4000, cfg.MaxChars)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.True(t, cfg.RespectRobots)
	assert.Equal(t, "heuristic", cfg.ExtractMode)
	require.NoError(t, ValidateConfig(cfg, true))
}

func TestLoadConfigFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "companyextract.yaml")
	content := `
addr: ":8080"
api:
  url: http://api.example:5000
llm:
  base: http://localhost:8081/v1
  model: local-model
fetch:
  timeout: 3s
  attempts: 3
discover:
  keywords: [about, careers]
robots:
  respect: false
extract:
  mode: readability
summarize:
  maxChars: 1000
  concurrency: 2
store:
  path: /tmp/archive.db
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	fc, err := LoadConfigFile(path)
	require.NoError(t, err)

	cfg := DefaultConfig()
	ApplyFileConfig(&cfg, fc)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "http://api.example:5000", cfg.APIURL)
	assert.Equal(t, "http://localhost:8081/v1", cfg.LLMBaseURL)
	assert.Equal(t, "local-model", cfg.LLMModel)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 3, cfg.FetchAttempts)
	assert.Equal(t, []string{"about", "careers"}, cfg.Keywords)
	assert.False(t, cfg.RespectRobots)
	assert.Equal(t, "readability", cfg.ExtractMode)
	assert.Equal(t, 1000, cfg.MaxChars)
	assert.Equal(t, 2, cfg.Concurrency)
	assert.Equal(t, "/tmp/archive.db", cfg.StorePath)
	// untouched values keep their defaults
	assert.Equal(t, DefaultMaxConcurrent, cfg.MaxConcurrent)
}

func TestLoadConfigFile_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "companyextract.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"llm":{"model":"m"},"robots":{"respect":true}}`), 0o600))
	fc, err := LoadConfigFile(path)
	require.NoError(t, err)
	cfg := Config{}
	ApplyFileConfig(&cfg, fc)
	assert.Equal(t, "m", cfg.LLMModel)
	assert.True(t, cfg.RespectRobots)
}

func TestLoadConfigFile_Errors(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [unclosed"), 0o600))
	_, err = LoadConfigFile(path)
	assert.Error(t, err)
}

func TestAPIURLPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  url: http://from-file:5000\n"), 0o600))
	fc, err := LoadConfigFile(path)
	require.NoError(t, err)

	t.Setenv(EnvAPIURL, "")
	cfg := DefaultConfig()
	ApplyFileConfig(&cfg, fc)
	ApplyEnvOverrides(&cfg)
	assert.Equal(t, "http://from-file:5000", cfg.APIURL)

	t.Setenv(EnvAPIURL, "http://from-env:5000")
	cfg = DefaultConfig()
	ApplyFileConfig(&cfg, fc)
	ApplyEnvOverrides(&cfg)
	assert.Equal(t, "http://from-env:5000", cfg.APIURL)
}

func TestValidateConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLMModel = ""
	assert.Error(t, ValidateConfig(cfg, true))
	assert.NoError(t, ValidateConfig(cfg, false))

	cfg = DefaultConfig()
	cfg.Concurrency = -1
	assert.Error(t, ValidateConfig(cfg, false))

	cfg = DefaultConfig()
	cfg.ExtractMode = "magic"
	assert.Error(t, ValidateConfig(cfg, false))
}
