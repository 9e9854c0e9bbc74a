package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"placement/internal/common"
	"placement/internal/domain/auth"
	"placement/internal/domain/user"
	"placement/internal/observability"
	"placement/internal/security"
)

type stubDenylist struct {
	revoked map[string]bool
}

func (s *stubDenylist) Revoke(_ context.Context, id string, _ time.Duration) error {
	s.revoked[id] = true
	return nil
}

func (s *stubDenylist) IsRevoked(_ context.Context, id string) (bool, error) {
	return s.revoked[id], nil
}

func TestAuthenticateBuildsSession(t *testing.T) {
	jwt := security.NewJWTProvider("secret")
	userID := common.NewUUID()
	token, claims, err := jwt.Generate(userID, "admin", time.Minute)
	if err != nil {
		t.Fatalf("expected token, got %v", err)
	}
	var got auth.Session
	handler := NewAuthMiddleware(jwt, &stubDenylist{revoked: map[string]bool{}}).Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = SessionFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got.UserID != userID || got.Role != user.RoleAdmin || got.TokenID != claims.Jti {
		t.Fatalf("unexpected session %+v", got)
	}
}

func TestAuthenticateRejects(t *testing.T) {
	jwt := security.NewJWTProvider("secret")
	denylist := &stubDenylist{revoked: map[string]bool{}}
	revokedToken, claims, _ := jwt.Generate(common.NewUUID(), "student", time.Minute)
	denylist.revoked[claims.Jti] = true
	unknownRole, _, _ := jwt.Generate(common.NewUUID(), "company", time.Minute)
	foreign, _, _ := security.NewJWTProvider("other").Generate(common.NewUUID(), "student", time.Minute)

	handler := NewAuthMiddleware(jwt, denylist).Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	}))
	for name, header := range map[string]string{
		"missing":      "",
		"scheme":       "Basic abc",
		"foreign":      "Bearer " + foreign,
		"revoked":      "Bearer " + revokedToken,
		"unknown role": "Bearer " + unknownRole,
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, rec.Code)
		}
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(user.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", rec.Code)
	}

	ctx := auth.WithSession(context.Background(), auth.Session{UserID: common.NewUUID(), Role: user.RoleStudent})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(ctx))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for student, got %d", rec.Code)
	}

	ctx = auth.WithSession(context.Background(), auth.Session{UserID: common.NewUUID(), Role: user.RoleAdmin})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(ctx))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for admin, got %d", rec.Code)
	}
}

func TestRequestIDPropagates(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = observability.RequestIDFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if seen != "abc-123" || rec.Header().Get("X-Request-ID") != "abc-123" {
		t.Fatalf("expected request id to propagate, got %q", seen)
	}
}

func TestRecoverWritesEnvelope(t *testing.T) {
	handler := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError || !strings.Contains(rec.Body.String(), `"code":"internal"`) {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "boom") {
		t.Fatal("panic value must not leak")
	}
}

func TestTimeoutSetsDeadline(t *testing.T) {
	var ok bool
	handler := Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = r.Context().Deadline()
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !ok {
		t.Fatal("expected deadline on request context")
	}
}

func TestRateLimiterWindow(t *testing.T) {
	limiter := NewRateLimiter()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	for i := 0; i < 3; i++ {
		if !limiter.Allow("k", 3, time.Minute) {
			t.Fatalf("expected request %d to pass", i)
		}
	}
	if limiter.Allow("k", 3, time.Minute) {
		t.Fatal("expected fourth request to be limited")
	}
	now = now.Add(61 * time.Second)
	if !limiter.Allow("k", 3, time.Minute) {
		t.Fatal("expected new window to pass")
	}
}

func TestClientIPUsesFirstForwardedAddress(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if ip := ClientIP(req); ip != "203.0.113.7" {
		t.Fatalf("unexpected ip %q", ip)
	}
}
