package server

import (
	"context"
	"net/http"

	"rolefit/internal/errors"
)

type principalKey struct{}

// handleFromContext returns the authenticated account handle, or "" when
// the caller used an API key or auth is open.
func handleFromContext(ctx context.Context) string {
	handle, _ := ctx.Value(principalKey{}).(string)
	return handle
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.Observability.HTTPMiddleware()(s.setupRoutes())
}

// setupRoutes configures all HTTP routes and middleware
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	limited := s.rateLimitMiddleware()
	protected := func(h http.HandlerFunc) http.HandlerFunc {
		return limited(s.authMiddleware(s.requestSizeLimitMiddleware(h)))
	}
	public := func(h http.HandlerFunc) http.HandlerFunc {
		return limited(s.requestSizeLimitMiddleware(h))
	}

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /stats", s.statsHandler)

	mux.HandleFunc("POST /analyze", protected(s.analyzeHandler))
	mux.HandleFunc("POST /analyze/upload", protected(s.uploadHandler))
	mux.HandleFunc("GET /history", protected(s.historyHandler))

	mux.HandleFunc("GET /branches", public(s.branchesHandler))
	mux.HandleFunc("GET /branches/{branch}/roles", public(s.rolesHandler))
	mux.HandleFunc("GET /branches/{branch}/roles/{role}/skills", public(s.skillsHandler))
	mux.HandleFunc("POST /signup", public(s.signupHandler))

	if handler := s.Observability.MetricsHandler(); handler != nil {
		mux.Handle("GET "+s.Observability.MetricsEndpoint(), handler)
	}

	return mux
}

// authMiddleware accepts a configured X-API-Key or HTTP Basic credentials
// checked by the identity provider. Basic callers are attached to the
// request context so their analyses land in history.
func (s *Server) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authRequired() {
			next(w, r)
			return
		}

		if apiKey := r.Header.Get("X-API-Key"); apiKey != "" {
			if !s.APIKeys[apiKey] {
				s.Logger.Info("Authentication failed: invalid API key",
					"endpoint", r.URL.Path,
					"client_ip", getClientIP(r),
					"api_key_prefix", maskAPIKey(apiKey))
				writeError(w, errors.NewAuthError(errors.ErrCodeUnauthorized, "invalid API key", nil))
				return
			}
			s.Logger.Debug("API authentication successful",
				"endpoint", r.URL.Path,
				"api_key_prefix", maskAPIKey(apiKey))
			next(w, r)
			return
		}

		handle, secret, ok := r.BasicAuth()
		if !ok || s.Services.Identity == nil {
			s.Logger.Info("Authentication failed: missing credentials",
				"endpoint", r.URL.Path,
				"client_ip", getClientIP(r))
			w.Header().Set("WWW-Authenticate", `Basic realm="rolefit"`)
			writeError(w, errors.NewAuthError(errors.ErrCodeUnauthorized,
				"X-API-Key header or Basic credentials required", nil))
			return
		}

		principal, err := s.Services.Identity.VerifyCredentials(r.Context(), handle, secret)
		if err != nil {
			s.Logger.Info("Authentication failed: invalid credentials",
				"endpoint", r.URL.Path,
				"client_ip", getClientIP(r))
			w.Header().Set("WWW-Authenticate", `Basic realm="rolefit"`)
			writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), principalKey{}, principal.Handle)
		next(w, r.WithContext(ctx))
	}
}

// requestSizeLimitMiddleware limits the size of incoming requests
func (s *Server) requestSizeLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.MaxRequestSize > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, s.MaxRequestSize)
		}
		next(w, r)
	}
}

// maskAPIKey masks an API key for logging (shows only first 8 characters)
func maskAPIKey(apiKey string) string {
	if len(apiKey) <= 8 {
		return "****"
	}
	return apiKey[:8] + "****"
}
