package robots

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func robotsServer(t *testing.T, status int, body string, calls *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		atomic.AddInt32(calls, 1)
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAllowed_RespectsDisallowForAgent(t *testing.T) {
	var calls int32
	srv := robotsServer(t, 200, "User-agent: companyextract\nDisallow: /careers\n\nUser-agent: *\nDisallow: /\n", &calls)
	m := &Manager{UserAgent: "companyextract"}
	ctx := context.Background()

	assert.False(t, m.Allowed(ctx, srv.URL+"/careers/open-roles"))
	assert.True(t, m.Allowed(ctx, srv.URL+"/about"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "robots.txt is fetched once per host")
}

func TestAllowed_4xxAllowsAll(t *testing.T) {
	var calls int32
	srv := robotsServer(t, 404, "", &calls)
	m := &Manager{UserAgent: "companyextract"}
	assert.True(t, m.Allowed(context.Background(), srv.URL+"/anything"), "missing robots.txt allows all")
}

func TestAllowed_5xxFailsOpen(t *testing.T) {
	var calls int32
	srv := robotsServer(t, 503, "", &calls)
	m := &Manager{UserAgent: "companyextract"}
	assert.True(t, m.Allowed(context.Background(), srv.URL+"/about"), "server errors fail open")
}

func TestAllowed_ExpiryRefetches(t *testing.T) {
	var calls int32
	srv := robotsServer(t, 200, "User-agent: *\nAllow: /\n", &calls)
	now := time.Now()
	m := &Manager{UserAgent: "companyextract", EntryExpiry: time.Minute, now: func() time.Time { return now }}
	ctx := context.Background()
	m.Allowed(ctx, srv.URL+"/a")
	now = now.Add(2 * time.Minute)
	m.Allowed(ctx, srv.URL+"/b")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "refetch after expiry")
}

func TestAllowed_BadURL(t *testing.T) {
	m := &Manager{}
	assert.False(t, m.Allowed(context.Background(), "not a url"))
}
