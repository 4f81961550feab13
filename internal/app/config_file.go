package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the on-disk configuration schema. Every field is optional;
// zero values leave the current setting alone.
type FileConfig struct {
	Addr string `yaml:"addr" json:"addr"`

	API struct {
		URL string `yaml:"url" json:"url"`
	} `yaml:"api" json:"api"`

	LLM struct {
		BaseURL      string        `yaml:"base" json:"base"`
		Model        string        `yaml:"model" json:"model"`
		APIKey       string        `yaml:"key" json:"key"`
		SystemPrompt string        `yaml:"systemPrompt" json:"systemPrompt"`
		Timeout      time.Duration `yaml:"timeout" json:"timeout"`
	} `yaml:"llm" json:"llm"`

	Fetch struct {
		UserAgent     string        `yaml:"userAgent" json:"userAgent"`
		Timeout       time.Duration `yaml:"timeout" json:"timeout"`
		Attempts      int           `yaml:"attempts" json:"attempts"`
		MaxConcurrent int           `yaml:"maxConcurrent" json:"maxConcurrent"`
	} `yaml:"fetch" json:"fetch"`

	Discover struct {
		Keywords []string `yaml:"keywords" json:"keywords"`
	} `yaml:"discover" json:"discover"`

	Robots struct {
		Respect *bool `yaml:"respect" json:"respect"`
	} `yaml:"robots" json:"robots"`

	Extract struct {
		Mode string `yaml:"mode" json:"mode"`
	} `yaml:"extract" json:"extract"`

	Summarize struct {
		MaxChars    int `yaml:"maxChars" json:"maxChars"`
		Concurrency int `yaml:"concurrency" json:"concurrency"`
	} `yaml:"summarize" json:"summarize"`

	Cache struct {
		Dir         string        `yaml:"dir" json:"dir"`
		MaxAge      time.Duration `yaml:"maxAge" json:"maxAge"`
		Clear       bool          `yaml:"clear" json:"clear"`
		StrictPerms bool          `yaml:"strictPerms" json:"strictPerms"`
		LLMOnly     bool          `yaml:"llmOnly" json:"llmOnly"`
	} `yaml:"cache" json:"cache"`

	Store struct {
		Path string `yaml:"path" json:"path"`
	} `yaml:"store" json:"store"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig, chosen by extension.
// Unknown extensions try YAML first.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays every value the file sets onto cfg. Call it on
// defaults, before env and flags.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	setString := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	setInt := func(dst *int, v int) {
		if v > 0 {
			*dst = v
		}
	}
	setDuration := func(dst *time.Duration, v time.Duration) {
		if v > 0 {
			*dst = v
		}
	}

	setString(&cfg.Addr, fc.Addr)
	setString(&cfg.APIURL, fc.API.URL)

	setString(&cfg.LLMBaseURL, fc.LLM.BaseURL)
	setString(&cfg.LLMModel, fc.LLM.Model)
	setString(&cfg.LLMAPIKey, fc.LLM.APIKey)
	setString(&cfg.SystemPrompt, fc.LLM.SystemPrompt)
	setDuration(&cfg.LLMTimeout, fc.LLM.Timeout)

	setString(&cfg.UserAgent, fc.Fetch.UserAgent)
	setDuration(&cfg.FetchTimeout, fc.Fetch.Timeout)
	setInt(&cfg.FetchAttempts, fc.Fetch.Attempts)
	setInt(&cfg.MaxConcurrent, fc.Fetch.MaxConcurrent)

	if len(fc.Discover.Keywords) > 0 {
		cfg.Keywords = append([]string(nil), fc.Discover.Keywords...)
	}
	if fc.Robots.Respect != nil {
		cfg.RespectRobots = *fc.Robots.Respect
	}
	setString(&cfg.ExtractMode, fc.Extract.Mode)

	setInt(&cfg.MaxChars, fc.Summarize.MaxChars)
	setInt(&cfg.Concurrency, fc.Summarize.Concurrency)

	setString(&cfg.CacheDir, fc.Cache.Dir)
	setDuration(&cfg.CacheMaxAge, fc.Cache.MaxAge)
	cfg.CacheClear = cfg.CacheClear || fc.Cache.Clear
	cfg.CacheStrictPerms = cfg.CacheStrictPerms || fc.Cache.StrictPerms
	cfg.LLMCacheOnly = cfg.LLMCacheOnly || fc.Cache.LLMOnly

	setString(&cfg.StorePath, fc.Store.Path)
	cfg.Verbose = cfg.Verbose || fc.Verbose
}

// ValidateConfig checks settings needed before extracting. needLLM is false
// for commands that only talk to a running API.
func ValidateConfig(cfg Config, needLLM bool) error {
	if needLLM && strings.TrimSpace(cfg.LLMModel) == "" {
		return errors.New("config: llm.model is required (or set LLM_MODEL)")
	}
	if cfg.MaxChars < 0 || cfg.Concurrency < 0 || cfg.FetchAttempts < 0 || cfg.MaxConcurrent < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	if cfg.FetchTimeout < 0 || cfg.LLMTimeout < 0 || cfg.CacheMaxAge < 0 {
		return errors.New("config: negative durations are not allowed")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.ExtractMode)) {
	case "", "heuristic", "readability":
	default:
		return fmt.Errorf("config: extract.mode %q must be heuristic or readability", cfg.ExtractMode)
	}
	return nil
}
