package app

import (
	"net"
	"net/http"
	"time"
)

// pooledTransport keeps many idle connections per host; a company crawl
// hits the same site for every section page.
func pooledTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConnsPerHost:   64,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// pageHTTPClient serves page and robots.txt fetches. Each attempt is bounded
// by the fetch timeout; retries get a fresh budget.
func pageHTTPClient(cfg Config) *http.Client {
	return &http.Client{Transport: pooledTransport(), Timeout: orDefault(cfg.FetchTimeout, DefaultFetchTimeout)}
}

// llmHTTPClient serves chat completions, which run far longer than page
// fetches.
func llmHTTPClient(cfg Config) *http.Client {
	return &http.Client{Transport: pooledTransport(), Timeout: orDefault(cfg.LLMTimeout, DefaultLLMTimeout)}
}

func orDefault(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}
