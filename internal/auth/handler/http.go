// Package handler exposes the auth flows over HTTP with the refresh secret
// carried in an httpOnly cookie.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"hrms-platform/backend/internal/auth/service"
)

// RefreshCookieName is the cookie carrying the opaque refresh secret.
const RefreshCookieName = "refreshToken"

// AuthService is the subset of the auth service used by the HTTP handlers.
type AuthService interface {
	Login(ctx context.Context, creds service.Credentials, meta service.ClientMeta) (*service.LoginResult, error)
	Extend(ctx context.Context, refreshSecret string, meta service.ClientMeta) (*service.LoginResult, error)
	Logout(ctx context.Context, refreshSecret string, meta service.ClientMeta) error
}

// CookieConfig controls the refresh cookie attributes.
type CookieConfig struct {
	Path     string // scoped to the auth API root so the secret is not sent elsewhere
	Secure   bool
	SameSite http.SameSite
}

// ParseSameSite maps a config string to http.SameSite. Unknown values fall
// back to Lax.
func ParseSameSite(s string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return http.SameSiteNoneMode
	case "strict":
		return http.SameSiteStrictMode
	default:
		return http.SameSiteLaxMode
	}
}

// AuthHandler serves the login, extend-session, and logout endpoints.
type AuthHandler struct {
	auth   AuthService
	cookie CookieConfig
}

// NewAuthHandler wires the auth endpoints.
func NewAuthHandler(auth AuthService, cookie CookieConfig) *AuthHandler {
	if cookie.Path == "" {
		cookie.Path = "/api/v1/auth"
	}
	return &AuthHandler{auth: auth, cookie: cookie}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type subjectPayload struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
}

type tokenPayload struct {
	Token     string          `json:"token"`
	TokenType string          `json:"tokenType"`
	ExpiresIn int64           `json:"expiresIn"` // seconds until the access token expires
	Subject   *subjectPayload `json:"subject,omitempty"`
}

func newTokenPayload(res *service.LoginResult, withSubject bool) tokenPayload {
	p := tokenPayload{
		Token:     res.AccessToken,
		TokenType: "Bearer",
		ExpiresIn: int64(time.Until(res.AccessExpiresAt).Seconds()),
	}
	if withSubject {
		p.Subject = &subjectPayload{
			ID:    res.SubjectID,
			Type:  string(res.PrincipalType),
			Role:  res.Role,
			Email: res.Email,
		}
	}
	return p
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "malformed request body")
		return
	}
	res, err := h.auth.Login(r.Context(), service.Credentials{LoginID: req.Username, Password: req.Password}, clientMeta(r))
	if err != nil {
		h.writeAuthError(w, err)
		return
	}
	h.setRefreshCookie(w, res.RefreshToken, res.RefreshExpiresAt)
	writeSuccess(w, http.StatusOK, "Login successful", newTokenPayload(res, true))
}

// Extend handles POST /api/v1/auth/extend-session.
func (h *AuthHandler) Extend(w http.ResponseWriter, r *http.Request) {
	res, err := h.auth.Extend(r.Context(), h.refreshSecret(r), clientMeta(r))
	if err != nil {
		h.writeAuthError(w, err)
		return
	}
	h.setRefreshCookie(w, res.RefreshToken, res.RefreshExpiresAt)
	writeSuccess(w, http.StatusOK, "Session extended", newTokenPayload(res, false))
}

// Logout handles POST /api/v1/auth/logout. Always clears the cookie and
// responds 200, whatever state the token was in.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), h.refreshSecret(r), clientMeta(r)); err != nil {
		log.Printf("handler: logout: %v", err)
	}
	h.clearRefreshCookie(w)
	writeSuccess(w, http.StatusOK, "Logout successful", map[string]bool{"cleared": true})
}

func (h *AuthHandler) writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrMissingCredentials):
		writeError(w, http.StatusBadRequest, CodeMissingCredentials, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, CodeInvalidCredentials, err.Error())
	case errors.Is(err, service.ErrRefreshMissing):
		writeError(w, http.StatusUnauthorized, CodeRefreshMissing, err.Error())
	case errors.Is(err, service.ErrRefreshInvalid):
		writeError(w, http.StatusUnauthorized, CodeRefreshInvalid, err.Error())
	default:
		log.Printf("handler: auth: %v", err)
		writeError(w, http.StatusInternalServerError, CodeInternal, "internal error")
	}
}

func (h *AuthHandler) refreshSecret(r *http.Request) string {
	c, err := r.Cookie(RefreshCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, secret string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    secret,
		Path:     h.cookie.Path,
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: h.cookie.SameSite,
	})
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     h.cookie.Path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: h.cookie.SameSite,
	})
}

// clientMeta extracts the caller's IP and user agent. Behind a proxy the
// first X-Forwarded-For entry is the client.
func clientMeta(r *http.Request) service.ClientMeta {
	ip := ""
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ip = strings.TrimSpace(strings.Split(xff, ",")[0])
	} else if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		ip = host
	} else {
		ip = r.RemoteAddr
	}
	return service.ClientMeta{IPAddress: ip, UserAgent: r.UserAgent()}
}
