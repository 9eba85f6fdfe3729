package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const portalClaimsKey contextKey = "portalClaims"

// PortalClaims are the claims carried by a logged-in client's portal token.
type PortalClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// ClientID is the PIMS client the token was issued for.
func (c *PortalClaims) ClientID() string {
	return c.Subject
}

// PortalAuth validates an optional HMAC-signed portal JWT. A missing
// Authorization header passes through unauthenticated, because the wizard
// serves logged-out visitors too; a present but invalid token is rejected.
func PortalAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}
			if secret == "" {
				http.Error(w, "portal auth disabled", http.StatusUnauthorized)
				return
			}
			tokenString := strings.TrimPrefix(auth, "Bearer ")
			claims := &PortalClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid || claims.Subject == "" {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), portalClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PortalClaimsFromContext returns portal JWT claims if present.
func PortalClaimsFromContext(ctx context.Context) (*PortalClaims, bool) {
	claims, ok := ctx.Value(portalClaimsKey).(*PortalClaims)
	return claims, ok
}
