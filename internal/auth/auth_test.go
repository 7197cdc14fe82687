package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testManager() *Manager {
	return NewManager("0123456789abcdef0123456789abcdef", "sindico@condoflow.local", "hunter2hunter2", time.Hour)
}

func TestLoginAndVerify(t *testing.T) {
	m := testManager()

	token, err := m.Login("sindico@condoflow.local", "hunter2hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" {
		t.Fatal("expected a token")
	}

	subject, err := m.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if subject != "sindico@condoflow.local" {
		t.Errorf("unexpected subject: %q", subject)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	m := testManager()

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "sindico@condoflow.local", "wrong"},
		{"wrong email", "other@condoflow.local", "hunter2hunter2"},
		{"both wrong", "other@condoflow.local", "wrong"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Login(tt.email, tt.password); !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestVerifyRejectsForeignToken(t *testing.T) {
	m := testManager()
	other := NewManager("ffffffffffffffffffffffffffffffff", "sindico@condoflow.local", "hunter2hunter2", time.Hour)

	token, err := other.Login("sindico@condoflow.local", "hunter2hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := m.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := NewManager("0123456789abcdef0123456789abcdef", "a@b.c", "hunter2hunter2", -time.Minute)
	token, err := m.Login("a@b.c", "hunter2hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := m.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestDisabledManager(t *testing.T) {
	m := NewManager("", "", "", time.Hour)
	if m.Enabled() {
		t.Fatal("manager without password must be disabled")
	}
	if _, err := m.Login("a", "b"); !errors.Is(err, ErrDisabled) {
		t.Errorf("expected ErrDisabled, got %v", err)
	}
}

func TestMiddleware(t *testing.T) {
	m := testManager()
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("bearer token", func(t *testing.T) {
		token, _ := m.Login("sindico@condoflow.local", "hunter2hunter2")
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Errorf("expected 204, got %d", rec.Code)
		}
	})

	t.Run("session cookie", func(t *testing.T) {
		token, _ := m.Login("sindico@condoflow.local", "hunter2hunter2")
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Errorf("expected 204, got %d", rec.Code)
		}
	})

	t.Run("disabled auth passes through", func(t *testing.T) {
		open := NewManager("", "", "", time.Hour).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		rec := httptest.NewRecorder()
		open.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusNoContent {
			t.Errorf("expected 204, got %d", rec.Code)
		}
	})
}
