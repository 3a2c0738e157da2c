package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mundox-portal-bff/internal/auth"
	"mundox-portal-bff/internal/mw"
)

type loginResponse struct {
	Token       string          `json:"token"`
	AccessToken string          `json:"access_token"`
	User        json.RawMessage `json:"user"`
	Data        *struct {
		Token string          `json:"token"`
		User  json.RawMessage `json:"user"`
	} `json:"data"`
}

func (r loginResponse) token() (string, json.RawMessage) {
	switch {
	case r.Token != "":
		return r.Token, r.User
	case r.AccessToken != "":
		return r.AccessToken, r.User
	case r.Data != nil:
		return r.Data.Token, r.Data.User
	}
	return "", nil
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role"`
}

func userFromClaims(claims *auth.Claims) userResponse {
	return userResponse{ID: claims.UserID(), Email: claims.Email, Name: claims.Name, Role: claims.Role}
}

// Login forwards credentials to the backend and turns the returned token
// into the HttpOnly session cookie. The raw token never reaches the browser
// body.
func (h *Handler) Login(c *gin.Context) {
	body, err := readBody(c)
	if err != nil || len(body) == 0 {
		mw.AbortJSON(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	resp, ok := h.call(c, http.MethodPost, "auth/login", body)
	if !ok {
		return
	}
	if !resp.OK() {
		relay(c, resp)
		return
	}

	var payload loginResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		h.internalError(c, err)
		return
	}
	token, user := payload.token()
	claims, err := h.verifier.Verify(token)
	if err != nil {
		h.internalError(c, errors.Join(errors.New("backend issued a token the portal cannot verify"), err))
		return
	}

	h.setSessionCookie(c, token, claims)
	h.log.Info("User logged in", zap.String("user_id", claims.UserID()), zap.String("role", claims.Role))

	if len(user) == 0 || string(user) == "null" {
		c.JSON(http.StatusOK, gin.H{"user": userFromClaims(claims)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *Handler) setSessionCookie(c *gin.Context, token string, claims *auth.Claims) {
	maxAge := 0
	if claims.ExpiresAt != nil {
		maxAge = int(time.Until(claims.ExpiresAt.Time).Seconds())
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.Auth.CookieName, token, maxAge, "/", h.cfg.Auth.CookieDomain, h.cfg.Auth.CookieSecure, true)
}

// Logout clears the session cookie.
func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.Auth.CookieName, "", -1, "/", h.cfg.Auth.CookieDomain, h.cfg.Auth.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"message": "Sesión cerrada"})
}

// Me returns the verified claims of the current session.
func (h *Handler) Me(c *gin.Context) {
	claims := mw.GetClaims(c)
	out := gin.H{"user": userFromClaims(claims)}
	if claims.ExpiresAt != nil {
		out["expiresAt"] = claims.ExpiresAt.Time.UTC()
	}
	c.JSON(http.StatusOK, out)
}
