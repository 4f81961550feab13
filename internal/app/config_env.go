package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variable names read by ApplyEnvOverrides.
const (
	EnvLLMBaseURL   = "LLM_BASE_URL"
	EnvLLMModel     = "LLM_MODEL"
	EnvLLMAPIKey    = "LLM_API_KEY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvAPIURL       = "COMPANYEXTRACT_API_URL"
	EnvAddr         = "COMPANYEXTRACT_ADDR"
	EnvCacheDir     = "CACHE_DIR"
	EnvCacheMaxAge  = "CACHE_MAX_AGE"
	EnvStorePath    = "STORE_PATH"
	EnvExtractMode  = "EXTRACT_MODE"
	EnvConcurrency  = "SUMMARY_CONCURRENCY"
	EnvVerbose      = "VERBOSE"
	EnvLLMCacheOnly = "LLM_CACHE_ONLY"
)

// ApplyEnvOverrides overrides cfg fields whose environment variables are
// set. Env sits above the config file and below flags.
func ApplyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}
	setString := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setString(&cfg.LLMBaseURL, EnvLLMBaseURL)
	setString(&cfg.LLMModel, EnvLLMModel)
	// OPENAI_API_KEY is the conventional name; LLM_API_KEY wins when both are set.
	setString(&cfg.LLMAPIKey, EnvOpenAIAPIKey)
	setString(&cfg.LLMAPIKey, EnvLLMAPIKey)
	setString(&cfg.APIURL, EnvAPIURL)
	setString(&cfg.Addr, EnvAddr)
	setString(&cfg.CacheDir, EnvCacheDir)
	setString(&cfg.StorePath, EnvStorePath)
	setString(&cfg.ExtractMode, EnvExtractMode)

	if v := strings.TrimSpace(os.Getenv(EnvConcurrency)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Concurrency = n
		}
	}
	if s := os.Getenv(EnvCacheMaxAge); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			cfg.CacheMaxAge = d
		}
	}

	setBool := func(dst *bool, key string) {
		switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
		case "1", "true", "yes", "on":
			*dst = true
		case "0", "false", "no", "off":
			*dst = false
		}
	}
	setBool(&cfg.Verbose, EnvVerbose)
	setBool(&cfg.LLMCacheOnly, EnvLLMCacheOnly)
}
