package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestLimiter(perSecond float64, burst int) *RateLimiter {
	return NewRateLimiter(RateLimiterConfig{
		RequestsPerSecond: perSecond,
		Burst:             burst,
		CleanupInterval:   time.Minute,
	})
}

func TestRateLimiter_BurstThenDeny(t *testing.T) {
	rl := newTestLimiter(2, 2)
	defer rl.Stop()

	ip := "203.0.113.10"
	for i := 0; i < 2; i++ {
		if !rl.Allow(ip) {
			t.Fatalf("request %d within burst should be allowed", i)
		}
	}
	if rl.Allow(ip) {
		t.Error("request beyond burst should be denied")
	}

	time.Sleep(600 * time.Millisecond)
	if !rl.Allow(ip) {
		t.Error("request after refill should be allowed")
	}
}

func TestRateLimiter_ClientsAreIndependent(t *testing.T) {
	rl := newTestLimiter(1, 1)
	defer rl.Stop()

	if !rl.Allow("203.0.113.10") {
		t.Error("first client should be allowed")
	}
	if !rl.Allow("203.0.113.11") {
		t.Error("second client has its own bucket")
	}
	if rl.Allow("203.0.113.10") {
		t.Error("first client should now be limited")
	}
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl := newTestLimiter(1, 1)
	defer rl.Stop()

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil)
	req.RemoteAddr = "203.0.113.10:40000"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request: status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: status = %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "1" {
		t.Errorf("Retry-After = %q, want %q", got, "1")
	}

	var body struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding 429 body: %v", err)
	}
	if body.Code != "RATE_LIMITED" {
		t.Errorf("error code = %q, want RATE_LIMITED", body.Code)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "remote addr only",
			remoteAddr: "203.0.113.10:40000",
			want:       "203.0.113.10",
		},
		{
			name:       "forwarded chain takes first hop",
			remoteAddr: "10.0.0.1:40000",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.1, 198.51.100.1"},
			want:       "203.0.113.1",
		},
		{
			name:       "real ip fallback",
			remoteAddr: "10.0.0.1:40000",
			headers:    map[string]string{"X-Real-IP": "203.0.113.50"},
			want:       "203.0.113.50",
		},
		{
			name:       "forwarded wins over real ip",
			remoteAddr: "10.0.0.1:40000",
			headers: map[string]string{
				"X-Forwarded-For": "203.0.113.1",
				"X-Real-IP":       "203.0.113.50",
			},
			want: "203.0.113.1",
		},
		{
			name:       "ipv6 remote addr",
			remoteAddr: "[2001:db8::1]:40000",
			want:       "[2001:db8::1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRateLimiter_StopEndsCleanup(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		RequestsPerSecond: 100,
		Burst:             100,
		CleanupInterval:   10 * time.Millisecond,
	})
	rl.Allow("203.0.113.10")
	rl.Stop()

	// The loop must exit without panicking on further ticks.
	time.Sleep(30 * time.Millisecond)
}
