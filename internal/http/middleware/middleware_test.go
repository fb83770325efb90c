package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rogerio-castellano/inventory-dashboard/internal/auth"
	"github.com/rogerio-castellano/inventory-dashboard/internal/models"
	"github.com/rogerio-castellano/inventory-dashboard/internal/repo"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestAuthenticate(t *testing.T) {
	m := auth.NewManager(repo.NewInMemoryUserRepository(), auth.NewMemorySessionStore(), auth.NewIssuer("k", time.Minute))
	if _, err := m.Register("bob", "secret1", models.RoleUser); err != nil {
		t.Fatalf("register: %v", err)
	}
	SetSessionManager(m)
	_, token, err := m.Login(context.Background(), "bob", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	var seen auth.Session
	h := Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = SessionFrom(r.Context())
	}))

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		target string
		want   int
	}{
		{"no token", func(r *http.Request) {}, "/", http.StatusUnauthorized},
		{"garbage", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, "/", http.StatusUnauthorized},
		{"header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, "/", http.StatusOK},
		{"query", func(r *http.Request) {}, "/?token=" + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
	if seen.Username != "bob" {
		t.Errorf("expected session for bob, got %+v", seen)
	}
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(models.RoleAdmin)(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req.WithContext(WithSession(req.Context(), auth.Session{Role: models.RoleUser})))
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, req.WithContext(WithSession(req.Context(), auth.Session{Role: models.RoleAdmin})))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRateLimit(t *testing.T) {
	t.Cleanup(CleanupAllVisitors)
	CleanupAllVisitors()
	SetRateLimit(1, 2)
	t.Cleanup(func() { SetRateLimit(5, 10) })

	h := RateLimit(okHandler)
	codes := []int{}
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected codes %v", codes)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("other clients keep their own budget, got %d", w.Code)
	}
}

func TestCleanupIdleVisitors(t *testing.T) {
	t.Cleanup(CleanupAllVisitors)
	GetVisitor("10.0.0.9")
	cleanupIdleVisitors(time.Now().Add(10*time.Minute), 5*time.Minute)

	mu.Lock()
	_, exists := visitors["10.0.0.9"]
	mu.Unlock()
	if exists {
		t.Fatal("idle visitor should be removed")
	}
}

func TestRequestIDAndLogging(t *testing.T) {
	var id string
	h := RequestID(Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id = RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "abc")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if id != "abc" || w.Header().Get("X-Request-Id") != "abc" {
		t.Fatalf("request id not propagated: ctx=%q header=%q", id, w.Header().Get("X-Request-Id"))
	}
	if w.Code != http.StatusTeapot {
		t.Fatalf("expected 418, got %d", w.Code)
	}
}
