package mw

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/MrSnakeDoc/toolshelf/internal/logger"
)

var noContent = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func fromIP(method, path, ip string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = ip + ":51234"
	return req
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestRateLimit(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	h := RateLimit(RateLimitConfig{Burst: 2, RefillPerIPPerMin: 60, Now: clock.Now})(noContent)

	for i := 0; i < 2; i++ {
		rec := serve(h, fromIP(http.MethodPost, "/api/tools", "10.0.0.1"))
		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := serve(h, fromIP(http.MethodPost, "/api/tools", "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	// buckets are per client IP
	rec = serve(h, fromIP(http.MethodPost, "/api/tools", "10.0.0.2"))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// one token per second at 60/min
	clock.Advance(time.Second)
	rec = serve(h, fromIP(http.MethodPost, "/api/tools", "10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRateLimitTrustProxy(t *testing.T) {
	h := RateLimit(RateLimitConfig{Burst: 1, RefillPerIPPerMin: 1, TrustProxy: true})(noContent)

	first := fromIP(http.MethodPost, "/", "127.0.0.1")
	first.Header.Set("X-Forwarded-For", "203.0.113.7, 127.0.0.1")
	require.Equal(t, http.StatusNoContent, serve(h, first).Code)

	// same proxy, different client
	second := fromIP(http.MethodPost, "/", "127.0.0.1")
	second.Header.Set("X-Forwarded-For", "203.0.113.8")
	assert.Equal(t, http.StatusNoContent, serve(h, second).Code)
}

func TestAllowOnlyCIDRS(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		ip      string
		want    int
	}{
		{name: "empty list passes through", allowed: nil, ip: "198.51.100.1", want: http.StatusNoContent},
		{name: "exact ip", allowed: []string{"127.0.0.1"}, ip: "127.0.0.1", want: http.StatusNoContent},
		{name: "inside cidr", allowed: []string{"10.0.0.0/8"}, ip: "10.20.30.40", want: http.StatusNoContent},
		{name: "outside cidr", allowed: []string{"10.0.0.0/8"}, ip: "192.168.1.1", want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := AllowOnlyCIDRS(tt.allowed, false, logger.Nop())(noContent)
			rec := serve(h, fromIP(http.MethodPost, "/reload", tt.ip))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestEnforceHost(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		host    string
		want    int
	}{
		{name: "empty list passes through", host: "anything", want: http.StatusNoContent},
		{name: "exact", allowed: []string{"tools.example.com"}, host: "tools.example.com", want: http.StatusNoContent},
		{name: "port ignored", allowed: []string{"tools.example.com"}, host: "tools.example.com:8080", want: http.StatusNoContent},
		{name: "port required by pattern", allowed: []string{"localhost:8080"}, host: "localhost:9090", want: http.StatusForbidden},
		{name: "wildcard", allowed: []string{"*.example.com"}, host: "admin.example.com", want: http.StatusNoContent},
		{name: "case insensitive", allowed: []string{"Tools.Example.com"}, host: "tools.example.COM", want: http.StatusNoContent},
		{name: "rejected", allowed: []string{"tools.example.com"}, host: "evil.test", want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := EnforceHost(tt.allowed, logger.Nop())(noContent)
			req := httptest.NewRequest(http.MethodPost, "/reload", nil)
			req.Host = tt.host
			assert.Equal(t, tt.want, serve(h, req).Code)
		})
	}
}

func TestLog(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.FromZap(zap.New(core))

	failing := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	h := middleware.RequestID(Log(log)(failing))
	serve(h, httptest.NewRequest(http.MethodGet, "/api/tools", nil))

	h = Log(log)(noContent)
	serve(h, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	entries := logs.FilterMessage("http_request").All()
	require.Len(t, entries, 2)

	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(http.StatusInternalServerError), fields["status"])
	assert.Equal(t, "/api/tools", fields["path"])
	assert.NotEmpty(t, fields["request_id"])

	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
}

func TestLogRouteFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.FromZap(zap.New(core))

	r := chi.NewRouter()
	r.Use(Log(log))
	r.Delete("/api/tools/{id}", noContent)
	serve(r, httptest.NewRequest(http.MethodDelete, "/api/tools/doc-7", nil))

	entries := logs.FilterMessage("http_request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/api/tools/{id}", fields["route"])
	assert.Equal(t, "doc-7", fields["tool_id"])
	assert.Equal(t, int64(http.StatusNoContent), fields["status"])
}

func TestRateLimitBody(t *testing.T) {
	h := RateLimit(RateLimitConfig{Burst: 1, RefillPerIPPerMin: 1})(noContent)
	serve(h, fromIP(http.MethodPost, "/", "10.0.0.9"))

	rec := serve(h, fromIP(http.MethodPost, "/", "10.0.0.9"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, rec.Body.String())
}
