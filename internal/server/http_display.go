package server

import "fmt"

// displayServerInfo prints the listening address and the protections in
// effect.
func (s *Server) displayServerInfo(addr string) {
	w := s.banner

	scheme := "http"
	if s.TLSConfig.Mode == "server" || s.TLSConfig.Mode == "mutual" {
		scheme = "https"
	}
	fmt.Fprintf(w, "Starting rolefit %s on %s://%s\n", s.Version, scheme, addr)

	switch s.TLSConfig.Mode {
	case "server":
		fmt.Fprintln(w, "TLS mode: Server-only (no client certificates required)")
	case "mutual":
		fmt.Fprintf(w, "TLS mode: Mutual (client auth policy: %s)\n", s.TLSConfig.ClientAuthPolicy)
	default:
		fmt.Fprintln(w, "TLS mode: Disabled (HTTP only)")
	}

	s.displayEndpoints()
	s.displayAuthInfo()
	s.displayRateLimitInfo()
}

func (s *Server) displayEndpoints() {
	w := s.banner
	fmt.Fprintln(w, "Available endpoints:")
	fmt.Fprintln(w, "  POST /analyze                               - Score resume text")
	fmt.Fprintln(w, "  POST /analyze/upload                        - Score an uploaded .txt/.md/.pdf")
	fmt.Fprintln(w, "  GET  /branches                              - List branches")
	fmt.Fprintln(w, "  GET  /branches/{branch}/roles               - List roles")
	fmt.Fprintln(w, "  GET  /branches/{branch}/roles/{role}/skills - Required skills")
	fmt.Fprintln(w, "  GET  /history                               - Past analyses (Basic auth)")
	fmt.Fprintln(w, "  POST /signup                                - Create an account")
	fmt.Fprintln(w, "  GET  /health                                - Health check")
	fmt.Fprintln(w, "  GET  /stats                                 - Server statistics")
	if s.Observability.MetricsHandler() != nil {
		fmt.Fprintf(w, "  GET  %-39s - Prometheus metrics\n", s.Observability.MetricsEndpoint())
	}
}

func (s *Server) displayAuthInfo() {
	w := s.banner
	if !s.authRequired() {
		fmt.Fprintln(w, "Authentication: DISABLED (no API keys, accounts disabled)")
		fmt.Fprintln(w, "WARNING: analysis endpoints are publicly accessible!")
		return
	}
	if len(s.APIKeys) > 0 {
		fmt.Fprintf(w, "API key authentication: ENABLED (%d keys configured)\n", len(s.APIKeys))
	}
	if s.Services.Identity != nil {
		fmt.Fprintf(w, "Account authentication: ENABLED (signup allowed: %t)\n", s.AppConfig.Identity.AllowSignup)
	}
}

func (s *Server) displayRateLimitInfo() {
	w := s.banner
	if s.RateLimiter == nil {
		fmt.Fprintln(w, "Rate limiting: DISABLED")
		return
	}
	fmt.Fprintf(w, "Rate limiting: ENABLED (%d requests/min, burst: %d)\n",
		s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
	if s.RateLimit.ByAPIKey {
		fmt.Fprintln(w, "  - Per API key / account rate limiting enabled")
	}
	if s.RateLimit.ByIP {
		fmt.Fprintln(w, "  - Per IP address rate limiting enabled")
	}
}
