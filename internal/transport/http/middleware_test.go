package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	internalauth "github.com/bharatTiffin/elitemeet-backend/internal/auth"
	"github.com/golang-jwt/jwt/v5"
)

func mintToken(t *testing.T, secret, subject, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   subject,
		"email": subject + "@example.com",
		"name":  "Test User",
		"role":  role,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	const secret = "test-secret"
	verifier := internalauth.NewJWTVerifier(secret)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := internalauth.IdentityFromContext(r.Context())
		if !ok {
			t.Errorf("expected identity in context")
		}
		w.Header().Set("X-User", identity.UserID)
		w.WriteHeader(http.StatusOK)
	})
	handler := Authenticate(verifier)(next)

	t.Run("valid bearer token passes through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
		req.Header.Set("Authorization", "Bearer "+mintToken(t, secret, "user-1", "user"))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if rec.Header().Get("X-User") != "user-1" {
			t.Fatalf("expected subject user-1, got %q", rec.Header().Get("X-User"))
		}
	})

	t.Run("missing header rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("token signed with another secret rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
		req.Header.Set("Authorization", "Bearer "+mintToken(t, "other-secret", "user-1", "user"))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("non-bearer scheme rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireAdmin(next)

	t.Run("admin role passes", func(t *testing.T) {
		req := authedRequest(http.MethodGet, "/api/admin/slots", "", internalauth.Identity{UserID: "admin-1", Role: internalauth.RoleAdmin})
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("user role forbidden", func(t *testing.T) {
		req := authedRequest(http.MethodGet, "/api/admin/slots", "", internalauth.Identity{UserID: "user-1", Role: "user"})
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("no identity unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/slots", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}
