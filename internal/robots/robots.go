// Package robots answers whether a page may be fetched according to its
// host's robots.txt. Rules are fetched once per host and kept in memory.
package robots

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/temoto/robotstxt"
)

// DefaultExpiry is how long parsed rules are trusted.
const DefaultExpiry = 30 * time.Minute

// Manager fetches, parses and caches robots.txt per scheme+host.
type Manager struct {
	HTTPClient  *http.Client
	UserAgent   string
	EntryExpiry time.Duration

	mu  sync.Mutex
	mem map[string]memEntry
	now func() time.Time
}

type memEntry struct {
	data   *robotstxt.RobotsData
	expiry time.Time
}

func (m *Manager) clock() time.Time {
	if m.now == nil {
		return time.Now()
	}
	return m.now()
}

// Allowed reports whether rawURL may be fetched by the manager's user agent.
// Network failures and server errors fail open.
func (m *Manager) Allowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	data, err := m.rulesFor(ctx, u)
	if err != nil {
		log.Debug().Err(err).Str("host", u.Host).Msg("robots.txt unavailable; allowing")
		return true
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return data.TestAgent(path, m.UserAgent)
}

func (m *Manager) rulesFor(ctx context.Context, u *url.URL) (*robotstxt.RobotsData, error) {
	key := strings.ToLower(u.Scheme + "://" + u.Host)

	m.mu.Lock()
	if ent, ok := m.mem[key]; ok && m.clock().Before(ent.expiry) {
		m.mu.Unlock()
		return ent.data, nil
	}
	m.mu.Unlock()

	data, err := m.fetch(ctx, key+"/robots.txt")
	if err != nil {
		return nil, err
	}

	exp := m.EntryExpiry
	if exp <= 0 {
		exp = DefaultExpiry
	}
	m.mu.Lock()
	if m.mem == nil {
		m.mem = make(map[string]memEntry)
	}
	m.mem[key] = memEntry{data: data, expiry: m.clock().Add(exp)}
	m.mu.Unlock()
	return data, nil
}

func (m *Manager) fetch(ctx context.Context, robotsURL string) (*robotstxt.RobotsData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	if m.UserAgent != "" {
		req.Header.Set("User-Agent", m.UserAgent)
	}
	client := m.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// robotstxt treats 5xx as disallow-all; report it as unavailable so the
	// caller allows the page.
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("robots.txt server error: %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return nil, fmt.Errorf("read robots: %w", err)
	}
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, fmt.Errorf("parse robots: %w", err)
	}
	return data, nil
}
