package app

import (
	"time"

	"github.com/jcaMx/company-extractor-web/internal/client"
	"github.com/jcaMx/company-extractor-web/internal/fetch"
	"github.com/jcaMx/company-extractor-web/internal/summarize"
)

// Config holds runtime configuration for the extractor service and CLI.
type Config struct {
	// Server
	Addr   string
	APIURL string

	// LLM
	LLMBaseURL   string
	LLMModel     string
	LLMAPIKey    string
	SystemPrompt string
	LLMTimeout   time.Duration

	// Fetching
	UserAgent     string
	FetchTimeout  time.Duration
	FetchAttempts int
	MaxConcurrent int

	// Discovery and extraction
	Keywords      []string
	RespectRobots bool
	ExtractMode   string

	// Summaries
	MaxChars    int
	Concurrency int

	// Cache
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheClear       bool
	CacheStrictPerms bool
	LLMCacheOnly     bool

	// Archive
	StorePath string

	Verbose bool
}

// Defaults used when neither flags, env nor config file say otherwise.
const (
	DefaultAddr          = ":5000"
	DefaultModel         = "gpt-4"
	DefaultFetchTimeout  = 10 * time.Second
	DefaultLLMTimeout    = 60 * time.Second
	DefaultFetchAttempts = 2
	DefaultMaxConcurrent = 8
	DefaultConcurrency   = 4
	DefaultCacheDir      = ".companyextract-cache"
)

// DefaultConfig returns a Config with every default filled in.
func DefaultConfig() Config {
	return Config{
		Addr:          DefaultAddr,
		APIURL:        client.DefaultBaseURL,
		LLMModel:      DefaultModel,
		LLMTimeout:    DefaultLLMTimeout,
		UserAgent:     fetch.DefaultUserAgent,
		FetchTimeout:  DefaultFetchTimeout,
		FetchAttempts: DefaultFetchAttempts,
		MaxConcurrent: DefaultMaxConcurrent,
		RespectRobots: true,
		ExtractMode:   "heuristic",
		MaxChars:      summarize.DefaultMaxChars,
		Concurrency:   DefaultConcurrency,
		CacheDir:      DefaultCacheDir,
	}
}
