package server

import (
	"io"
	"os"
	"time"

	"rolefit/internal/common"
	"rolefit/internal/config"
	"rolefit/internal/errors"
	"rolefit/internal/observability"
)

// AnalyzeRequest is the body of POST /analyze.
type AnalyzeRequest struct {
	Branch     string `json:"branch"`
	Role       string `json:"role"`
	ResumeText string `json:"resumeText"`
}

// SignupRequest is the body of POST /signup.
type SignupRequest struct {
	Handle string `json:"handle"`
	Secret string `json:"secret"`
}

// ErrorResponse is written for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Server serves the analysis engine over HTTP.
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	TLSConfig config.TLSConfig

	// API Authentication
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	Services      *common.Services
	Observability *observability.ObservabilityManager

	Logger *errors.Logger

	// banner receives the startup summary
	banner io.Writer
}

// NewServer creates a Server from the application configuration. A nil om
// disables tracing and metrics.
func NewServer(appCfg *config.Config, svc *common.Services, om *observability.ObservabilityManager, version string, logger *errors.Logger) *Server {
	if logger == nil {
		logger = errors.Nop()
	}
	if om == nil {
		// a disabled manager never fails to build
		om, _ = observability.NewObservabilityManager(observability.ObservabilityConfig{})
	}

	apiKeyMap := make(map[string]bool, len(appCfg.Server.APIKeys))
	for _, key := range appCfg.Server.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	rateLimit := appCfg.Server.RateLimit
	var rateLimiter *RateLimiter
	if rateLimit.Enabled {
		rateLimiter = NewRateLimiter(rateLimit.RequestsPerMin, rateLimit.BurstCapacity, logger)
	}

	return &Server{
		Host:           appCfg.Server.Host,
		Port:           appCfg.Server.Port,
		Version:        version,
		AppConfig:      appCfg,
		TLSConfig:      appCfg.Server.TLS,
		APIKeys:        apiKeyMap,
		ReadTimeout:    appCfg.Server.ReadTimeout,
		WriteTimeout:   appCfg.Server.WriteTimeout,
		IdleTimeout:    appCfg.Server.IdleTimeout,
		MaxRequestSize: appCfg.Server.MaxRequestSize,
		RateLimit:      &rateLimit,
		RateLimiter:    rateLimiter,
		Services:       svc,
		Observability:  om,
		Logger:         logger,
		banner:         os.Stdout,
	}
}

// SetBanner redirects the startup summary, which goes to stdout by default.
func (s *Server) SetBanner(w io.Writer) {
	s.banner = w
}

// authRequired reports whether protected routes need credentials.
func (s *Server) authRequired() bool {
	return len(s.APIKeys) > 0 || s.Services.Identity != nil
}
