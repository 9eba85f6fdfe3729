package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedPortalToken(t *testing.T, secret, clientID, email string) string {
	t.Helper()
	claims := &PortalClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   clientID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestPortalAuthMissingHeaderPassesThrough(t *testing.T) {
	mw := PortalAuth("secret")
	req := httptest.NewRequest(http.MethodPost, "/portal/requests", nil)
	rec := httptest.NewRecorder()

	called := false
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := PortalClaimsFromContext(r.Context()); ok {
			t.Fatalf("expected no claims for anonymous request")
		}
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, req)

	if !called {
		t.Fatalf("expected handler to be called")
	}
}

func TestPortalAuthInvalidToken(t *testing.T) {
	mw := PortalAuth("secret")
	req := httptest.NewRequest(http.MethodPost, "/portal/requests", nil)
	req.Header.Set("Authorization", "Bearer "+signedPortalToken(t, "wrong", "c-1", "a@b.c"))
	rec := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestPortalAuthTokenWithoutSubject(t *testing.T) {
	mw := PortalAuth("secret")
	req := httptest.NewRequest(http.MethodPost, "/portal/requests", nil)
	req.Header.Set("Authorization", "Bearer "+signedPortalToken(t, "secret", "", "a@b.c"))
	rec := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestPortalAuthValidToken(t *testing.T) {
	mw := PortalAuth("secret")
	req := httptest.NewRequest(http.MethodPost, "/portal/requests", nil)
	req.Header.Set("Authorization", "Bearer "+signedPortalToken(t, "secret", "c-1", "jo@example.com"))
	rec := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := PortalClaimsFromContext(r.Context())
		if !ok {
			t.Fatalf("expected portal claims in context")
		}
		if claims.ClientID() != "c-1" || claims.Email != "jo@example.com" {
			t.Fatalf("unexpected claims: %+v", claims)
		}
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}
