package handlers_test_suite

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	handler "github.com/rogerio-castellano/inventory-dashboard/internal/http/handlers"
	"github.com/rogerio-castellano/inventory-dashboard/internal/http/router"
	"github.com/rogerio-castellano/inventory-dashboard/internal/models"
)

func TestAuthFlow(t *testing.T) {
	r := router.NewRouter()

	t.Run("Login with valid credentials", func(t *testing.T) {
		w := doRequest(r, http.MethodPost, "/login", handler.CredentialsRequest{Username: "admin", Password: adminPassword}, "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 OK, got %d", w.Code)
		}
		var resp handler.LoginResult
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode token response: %v", err)
		}
		if resp.Token == "" {
			t.Error("expected token in response")
		}
		if !resp.ExpiresAt.After(time.Now()) {
			t.Errorf("expected a future expiry, got %v", resp.ExpiresAt)
		}
	})

	t.Run("Login with wrong password", func(t *testing.T) {
		w := doRequest(r, http.MethodPost, "/login", handler.CredentialsRequest{Username: "admin", Password: "nope"}, "")
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("Protected route without token is rejected", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/products", nil, "")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401 Unauthorized, got %d", w.Code)
		}
	})

	t.Run("Garbage token is rejected", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/products", nil, "not.a.jwt")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401 Unauthorized, got %d", w.Code)
		}
	})

	t.Run("Me reports the session", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/me", nil, userToken)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var me handler.SessionResponse
		json.NewDecoder(w.Body).Decode(&me)
		if me.Username != "clerk" || me.Role != models.RoleUser || me.ID == "" {
			t.Errorf("unexpected session %+v", me)
		}
	})
}

func TestLogout_InvalidatesSession(t *testing.T) {
	r := router.NewRouter()
	sessionToken, err := generateToken(r, "admin", adminPassword)
	if err != nil {
		t.Fatal(err)
	}

	if w := doRequest(r, http.MethodGet, "/me", nil, sessionToken); w.Code != http.StatusOK {
		t.Fatalf("expected 200 before logout, got %d", w.Code)
	}
	if w := doRequest(r, http.MethodPost, "/logout", nil, sessionToken); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 on logout, got %d", w.Code)
	}
	if w := doRequest(r, http.MethodGet, "/me", nil, sessionToken); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", w.Code)
	}
	if w := doRequest(r, http.MethodGet, "/me", nil, token); w.Code != http.StatusOK {
		t.Fatalf("other sessions must survive, got %d", w.Code)
	}
}

func TestRegisterHandler(t *testing.T) {
	r := router.NewRouter()
	username := "user-" + uuid.NewString()[:8]

	tests := []struct {
		name       string
		payload    handler.CredentialsRequest
		expectCode int
	}{
		{"Valid registration", handler.CredentialsRequest{Username: username, Password: "long-enough"}, http.StatusCreated},
		{"Duplicated username", handler.CredentialsRequest{Username: username, Password: "long-enough"}, http.StatusConflict},
		{"Missing password", handler.CredentialsRequest{Username: "someone"}, http.StatusBadRequest},
		{"Too short", handler.CredentialsRequest{Username: "ab", Password: "123"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, http.MethodPost, "/register", tt.payload, "")
			if w.Code != tt.expectCode {
				t.Fatalf("expected %d, got %d: %s", tt.expectCode, w.Code, w.Body.String())
			}
			if tt.expectCode != http.StatusCreated {
				return
			}
			var resp handler.RegisterResult
			json.NewDecoder(w.Body).Decode(&resp)
			if w := doRequest(r, http.MethodGet, "/me", nil, resp.Token); w.Code != http.StatusOK {
				t.Errorf("registration token must open a session, got %d", w.Code)
			}
		})
	}
}

func TestHealthHandler(t *testing.T) {
	w := doRequest(router.NewRouter(), http.MethodGet, "/healthz", nil, "")
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("unexpected health response %d %q", w.Code, w.Body.String())
	}
}
