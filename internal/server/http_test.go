package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	authhandler "hrms-platform/backend/internal/auth/handler"
	"hrms-platform/backend/internal/auth/service"
	healthhandler "hrms-platform/backend/internal/health/handler"
	"hrms-platform/backend/internal/security"
)

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, creds service.Credentials, meta service.ClientMeta) (*service.LoginResult, error) {
	return nil, service.ErrInvalidCredentials
}

func (stubAuthService) Extend(ctx context.Context, secret string, meta service.ClientMeta) (*service.LoginResult, error) {
	return nil, service.ErrRefreshInvalid
}

func (stubAuthService) Logout(ctx context.Context, secret string, meta service.ClientMeta) error {
	return nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("token provider: %v", err)
	}
	return NewRouter(Deps{
		Auth:     authhandler.NewAuthHandler(stubAuthService{}, authhandler.CookieConfig{}),
		Presence: authhandler.NewPresenceHandler(nil),
		Tokens:   tokens,
		Health:   healthhandler.NewHandler(nil),
	})
}

func TestRouterRoutes(t *testing.T) {
	router := newTestRouter(t)

	cases := []struct {
		method, path string
		body         string
		wantStatus   int
	}{
		{http.MethodGet, "/healthz", "", http.StatusOK},
		{http.MethodPost, "/api/v1/auth/login", `{"username":"x","password":"y"}`, http.StatusUnauthorized},
		{http.MethodPost, "/api/v1/auth/extend-session", "", http.StatusUnauthorized},
		{http.MethodPost, "/api/v1/auth/logout", "", http.StatusOK},
		{http.MethodPut, "/api/v1/auth/presence", `{"status":"online"}`, http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/auth/login", "", http.StatusMethodNotAllowed},
		{http.MethodGet, "/nope", "", http.StatusNotFound},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != tc.wantStatus {
			t.Errorf("%s %s: status = %d, want %d", tc.method, tc.path, rec.Code, tc.wantStatus)
		}
	}
}
