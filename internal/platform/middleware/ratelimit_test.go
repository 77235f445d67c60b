package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/clinica/dashboard/internal/platform/auth"
)

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func rateLimitedRequest(e *echo.Echo, h echo.HandlerFunc, user string) (*httptest.ResponseRecorder, error) {
	req := httptest.NewRequest(http.MethodGet, "/api/citas", nil)
	if user != "" {
		req = req.WithContext(context.WithValue(req.Context(), auth.UserIDKey, user))
	}
	rec := httptest.NewRecorder()
	return rec, h(e.NewContext(req, rec))
}

func TestRateLimit_WithinBurst(t *testing.T) {
	e := echo.New()
	h := RateLimit(RateLimitConfig{RequestsPerSecond: 10, BurstSize: 5})(okHandler)

	for i := 0; i < 5; i++ {
		rec, err := rateLimitedRequest(e, h, "")
		if err != nil {
			t.Fatalf("request %d: expected no error, got %v", i+1, err)
		}
		if got := rec.Header().Get("X-RateLimit-Limit"); got != "10" {
			t.Errorf("request %d: expected X-RateLimit-Limit 10, got %q", i+1, got)
		}
	}
}

func TestRateLimit_ExceedsBurst(t *testing.T) {
	e := echo.New()
	h := RateLimit(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1})(okHandler)

	if _, err := rateLimitedRequest(e, h, ""); err != nil {
		t.Fatalf("first request: %v", err)
	}
	rec, err := rateLimitedRequest(e, h, "")
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %v", err)
	}
	retry, convErr := strconv.Atoi(rec.Header().Get("Retry-After"))
	if convErr != nil || retry < 1 {
		t.Errorf("expected Retry-After >= 1, got %q", rec.Header().Get("Retry-After"))
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("expected X-RateLimit-Remaining 0, got %q", rec.Header().Get("X-RateLimit-Remaining"))
	}
}

func TestRateLimit_PerUserBuckets(t *testing.T) {
	e := echo.New()
	h := RateLimit(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1})(okHandler)

	if _, err := rateLimitedRequest(e, h, "u-1"); err != nil {
		t.Fatalf("u-1 first request: %v", err)
	}
	if _, err := rateLimitedRequest(e, h, "u-1"); err == nil {
		t.Fatal("u-1 second request: expected rate limit error")
	}
	if _, err := rateLimitedRequest(e, h, "u-2"); err != nil {
		t.Fatalf("u-2 first request: %v", err)
	}
	if _, err := rateLimitedRequest(e, h, ""); err != nil {
		t.Fatalf("anonymous request shares no bucket with users: %v", err)
	}
}

func TestRetryAfter_ZeroRate(t *testing.T) {
	s := newLimiterStore(RateLimitConfig{RequestsPerSecond: 0, BurstSize: 1})
	l := s.get("k")
	l.Allow()
	if got := retryAfter(l); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
	if s.get("k") != l {
		t.Error("expected the same limiter for the same key")
	}
}
