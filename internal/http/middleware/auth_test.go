package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Zaidmakandar1/Divine-Elegant/internal/http/middleware"
)

type verifierMock struct {
	userID  string
	isAdmin bool
	err     error
}

func (v verifierMock) Verify(token string) (string, bool, error) {
	return v.userID, v.isAdmin, v.err
}

func TestRequireAuth(t *testing.T) {
	newHandler := func(v middleware.TokenVerifier, seen *string) http.Handler {
		return middleware.RequireAuth(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*seen = middleware.GetUserID(r.Context())
			w.WriteHeader(http.StatusNoContent)
		}))
	}

	t.Run("missing header", func(t *testing.T) {
		var seen string
		r := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
		w := httptest.NewRecorder()

		newHandler(verifierMock{}, &seen).ServeHTTP(w, r)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
		if seen != "" {
			t.Fatal("handler must not run without a token")
		}
	})

	t.Run("malformed header", func(t *testing.T) {
		var seen string
		r := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
		r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		w := httptest.NewRecorder()

		newHandler(verifierMock{}, &seen).ServeHTTP(w, r)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("rejected token", func(t *testing.T) {
		var seen string
		r := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
		r.Header.Set("Authorization", "Bearer expired")
		w := httptest.NewRecorder()

		newHandler(verifierMock{err: errors.New("expired")}, &seen).ServeHTTP(w, r)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("valid token threads identity into the context", func(t *testing.T) {
		var seen string
		r := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
		r.Header.Set("Authorization", "Bearer good")
		w := httptest.NewRecorder()

		newHandler(verifierMock{userID: "user-1"}, &seen).ServeHTTP(w, r)

		if w.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", w.Code)
		}
		if seen != "user-1" {
			t.Fatalf("expected user-1 in context, got %q", seen)
		}
	})
}

func TestRequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("non-admin identity", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
		r = r.WithContext(middleware.WithIdentity(r.Context(), "user-1", false))
		w := httptest.NewRecorder()

		middleware.RequireAdmin(next).ServeHTTP(w, r)

		if w.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", w.Code)
		}
	})

	t.Run("admin identity", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
		r = r.WithContext(middleware.WithIdentity(r.Context(), "admin-1", true))
		w := httptest.NewRecorder()

		middleware.RequireAdmin(next).ServeHTTP(w, r)

		if w.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", w.Code)
		}
	})
}
