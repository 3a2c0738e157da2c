package mw

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"mundox-portal-bff/internal/auth"
)

const (
	ctxClaims = "claims"
	ctxToken  = "token"
)

// TokenFromRequest reads the token from the named cookie, falling back to a
// Bearer Authorization header.
func TokenFromRequest(c *gin.Context, cookieName string) string {
	if v, err := c.Cookie(cookieName); err == nil && v != "" {
		return v
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

// RequireAuth rejects requests without a valid token and stores the claims
// and raw token in the context.
func RequireAuth(verifier *auth.Verifier, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c, cookieName)
		claims, err := verifier.Verify(token)
		if err != nil {
			AbortJSON(c, http.StatusUnauthorized, MsgUnauthorized)
			return
		}
		c.Set(ctxClaims, claims)
		c.Set(ctxToken, token)
		c.Next()
	}
}

// RequireRole must run after RequireAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			AbortJSON(c, http.StatusUnauthorized, MsgUnauthorized)
			return
		}
		if !slices.Contains(roles, claims.Role) {
			AbortJSON(c, http.StatusForbidden, MsgForbidden)
			return
		}
		c.Next()
	}
}

// GetClaims returns the verified claims, or nil on public routes.
func GetClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(ctxClaims); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetToken returns the raw token forwarded to the backend.
func GetToken(c *gin.Context) string {
	return c.GetString(ctxToken)
}
