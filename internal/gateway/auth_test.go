package gateway

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/flemzord/toolclaw/internal/security"
	"github.com/flemzord/toolclaw/internal/security/securitytest"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func TestAuthMiddleware_ValidBearerToken(t *testing.T) {
	t.Parallel()

	cfg := AuthConfig{BearerToken: "secret-token"}
	handler := authMiddleware(cfg, nil, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestAuthMiddleware_InvalidBearerToken(t *testing.T) {
	t.Parallel()

	cfg := AuthConfig{BearerToken: "secret-token"}
	handler := authMiddleware(cfg, nil, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer wrong-token")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddleware_ValidBasicAuth(t *testing.T) {
	t.Parallel()

	cfg := AuthConfig{BasicUser: "admin", BasicPass: "pass123"}
	handler := authMiddleware(cfg, nil, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.SetBasicAuth("admin", "pass123")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestAuthMiddleware_InvalidBasicAuth(t *testing.T) {
	t.Parallel()

	cfg := AuthConfig{BasicUser: "admin", BasicPass: "pass123"}
	handler := authMiddleware(cfg, nil, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.SetBasicAuth("admin", "wrongpass")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddleware_NoAuthHeader(t *testing.T) {
	t.Parallel()

	cfg := AuthConfig{BearerToken: "token"}
	handler := authMiddleware(cfg, nil, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddleware_BearerPreferredOverBasic(t *testing.T) {
	t.Parallel()

	cfg := AuthConfig{
		BearerToken: "my-token",
		BasicUser:   "admin",
		BasicPass:   "pass",
	}
	handler := authMiddleware(cfg, nil, nil)(okHandler())

	// Bearer should work
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer my-token")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("bearer: status = %d, want %d", rr.Code, http.StatusOK)
	}

	// Basic should also work
	req2 := httptest.NewRequest(http.MethodGet, "/test", nil)
	req2.SetBasicAuth("admin", "pass")
	rr2 := httptest.NewRecorder()
	handler.ServeHTTP(rr2, req2)
	if rr2.Code != http.StatusOK {
		t.Errorf("basic: status = %d, want %d", rr2.Code, http.StatusOK)
	}
}

func TestAuthConfig_IsConfigured(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  AuthConfig
		want bool
	}{
		{"empty", AuthConfig{}, false},
		{"bearer only", AuthConfig{BearerToken: "tok"}, true},
		{"basic complete", AuthConfig{BasicUser: "u", BasicPass: "p"}, true},
		{"basic partial user", AuthConfig{BasicUser: "u"}, false},
		{"basic partial pass", AuthConfig{BasicPass: "p"}, false},
		{"both", AuthConfig{BearerToken: "t", BasicUser: "u", BasicPass: "p"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.cfg.IsConfigured(); got != tt.want {
				t.Errorf("IsConfigured() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAuthMiddleware_RateLimited(t *testing.T) {
	t.Parallel()

	limiter := security.NewRateLimiter(security.RateLimitConfig{APIRequestsPerMin: 1})
	rec, audit := securitytest.NewRecorder()
	handler := authMiddleware(AuthConfig{BearerToken: "tok"}, audit, limiter)(okHandler())

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer tok")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != want {
			t.Errorf("request %d: status = %d, want %d", i, rr.Code, want)
		}
	}

	if got := rec.Count(security.EventRateLimit); got != 1 {
		t.Errorf("rate_limit events = %d, want 1", got)
	}
}

func TestAuthMiddleware_AuditEvents(t *testing.T) {
	t.Parallel()

	rec, audit := securitytest.NewRecorder()
	handler := authMiddleware(AuthConfig{BearerToken: "tok"}, audit, nil)(okHandler())

	for _, token := range []string{"tok", "nope", ""} {
		req := httptest.NewRequest(http.MethodGet, "/api/tools", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	if got := rec.Count(security.EventAuthSuccess); got != 1 {
		t.Errorf("auth_success = %d, want 1", got)
	}
	if got := rec.Count(security.EventAuthFailure); got != 2 {
		t.Errorf("auth_failure = %d, want 2", got)
	}
	for _, ev := range rec.Events() {
		if ev.Metadata["path"] != "/api/tools" {
			t.Errorf("event path = %q", ev.Metadata["path"])
		}
		if strings.Contains(ev.Detail, "nope") {
			t.Errorf("credential leaked into audit detail: %q", ev.Detail)
		}
	}
}
