// Package server assembles the HTTP router for the auth API.
package server

import (
	"log"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	authhandler "hrms-platform/backend/internal/auth/handler"
	healthhandler "hrms-platform/backend/internal/health/handler"
)

// Deps holds the handlers mounted by the router.
type Deps struct {
	Auth     *authhandler.AuthHandler
	Presence *authhandler.PresenceHandler
	// Tokens verifies Bearer access tokens on authenticated routes.
	Tokens authhandler.TokenVerifier
	Health *healthhandler.Handler
}

// NewRouter builds the HTTP handler with all routes mounted and the
// otelhttp instrumentation wrapped around it.
//
// Route map:
//   - POST /api/v1/auth/login          → login, sets refresh cookie
//   - POST /api/v1/auth/extend-session → refresh-token rotation
//   - POST /api/v1/auth/logout         → revoke session, clear cookie
//   - PUT  /api/v1/auth/presence       → explicit presence update (employees)
//   - GET  /healthz                    → readiness
func NewRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", deps.Auth.Login)
	mux.HandleFunc("POST /api/v1/auth/extend-session", deps.Auth.Extend)
	mux.HandleFunc("POST /api/v1/auth/logout", deps.Auth.Logout)
	mux.Handle("PUT /api/v1/auth/presence", authhandler.RequireAccessToken(deps.Tokens, http.HandlerFunc(deps.Presence.Update)))
	mux.HandleFunc("GET /healthz", deps.Health.Healthz)
	return otelhttp.NewHandler(withRequestLog(mux), "hrms-auth")
}

// statusRecorder captures the response status for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		log.Printf("http: %s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	})
}
