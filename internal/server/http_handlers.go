package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"rolefit/internal/analysis"
	"rolefit/internal/errors"
	"rolefit/internal/history"
)

const tracerName = "rolefit.api"

// analyzeHandler scores a JSON résumé against a role.
func (s *Server) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := parseJSONRequest(r, &req); err != nil {
		writeError(w, err)
		return
	}
	s.runAnalysis(w, r, "api.analyze", req.Branch, req.Role, req.ResumeText)
}

// uploadHandler scores an uploaded document. The form carries file,
// branch and role.
func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.multipartMemory()); err != nil {
		writeError(w, bodyError(err, "invalid multipart form"))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, errors.NewValidationError(errors.ErrCodeInvalidRequest, "file field is required", err))
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			s.Logger.Warn("Failed to close upload", "filename", header.Filename, "error", err)
		}
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, errors.NewIOError(errors.ErrCodeFileNotReadable, "failed to read upload", err))
		return
	}

	text, err := s.Services.Reader.ReadBytes(header.Filename, data)
	if err != nil {
		writeError(w, err)
		return
	}

	s.runAnalysis(w, r, "api.analyze_upload", r.FormValue("branch"), r.FormValue("role"), text)
}

func (s *Server) runAnalysis(w http.ResponseWriter, r *http.Request, spanName, branch, role, text string) {
	ctx, span := s.Observability.Tracer(tracerName).Start(r.Context(), spanName)
	defer span.End()

	metrics := s.Observability.Metrics()

	if strings.TrimSpace(branch) == "" || strings.TrimSpace(role) == "" {
		err := errors.NewValidationError(errors.ErrCodeInvalidRequest, "branch and role are required", nil)
		span.RecordError(err)
		writeError(w, err)
		return
	}

	span.SetAttributes(
		attribute.String("analysis.branch", branch),
		attribute.String("analysis.role", role),
		attribute.Int("request.text_length", len(text)),
	)

	rec, err := s.Services.Engine.Analyze(ctx, branch, role, text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "analysis failed")
		metrics.RecordAnalysisError(ctx, err)
		s.Logger.Debug("Analysis rejected", "branch", branch, "role", role, "error", err)
		writeError(w, err)
		return
	}

	metrics.RecordAnalysis(ctx, rec, len(text))
	span.SetAttributes(
		attribute.Int("analysis.score", rec.Match.Score),
		attribute.String("analysis.level", rec.Level.String()),
	)

	if handle := handleFromContext(ctx); handle != "" && s.Services.History != nil {
		err := s.Services.History.Save(ctx, handle, rec)
		metrics.RecordHistoryOperation(ctx, "save", err)
		if err != nil {
			// the analysis itself succeeded; losing the history entry is not fatal
			span.RecordError(err)
			s.Logger.LogError(err, "Failed to save analysis to history", "owner", handle, "record_id", rec.ID)
		} else {
			rec = rec.WithOwner(handle)
		}
	}

	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) branchesHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"branches": s.Services.Taxonomy.Current().ListBranches(),
	})
}

func (s *Server) rolesHandler(w http.ResponseWriter, r *http.Request) {
	branch := r.PathValue("branch")
	roles, err := s.Services.Taxonomy.Current().ListRoles(branch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"branch": branch, "roles": roles})
}

func (s *Server) skillsHandler(w http.ResponseWriter, r *http.Request) {
	profile, err := s.Services.Taxonomy.Current().Profile(r.PathValue("branch"), r.PathValue("role"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// historyHandler lists the caller's past analyses, newest first. Only
// Basic-authenticated callers have a history.
func (s *Server) historyHandler(w http.ResponseWriter, r *http.Request) {
	if s.Services.History == nil {
		writeErrorStatus(w, http.StatusNotFound, "HISTORY_DISABLED", "history is disabled")
		return
	}

	handle := handleFromContext(r.Context())
	if handle == "" {
		w.Header().Set("WWW-Authenticate", `Basic realm="rolefit"`)
		writeError(w, errors.NewAuthError(errors.ErrCodeUnauthorized, "history requires Basic credentials", nil))
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, errors.NewValidationError(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("invalid limit: %q", raw), err))
			return
		}
		limit = n
	}

	records, err := s.Services.History.List(r.Context(), handle, limit)
	s.Observability.Metrics().RecordHistoryOperation(r.Context(), "list", err)
	if err != nil {
		writeError(w, err)
		return
	}
	if records == nil {
		records = []analysis.Record{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"owner": handle, "records": records})
}

func (s *Server) signupHandler(w http.ResponseWriter, r *http.Request) {
	if s.Services.Identity == nil || !s.AppConfig.Identity.AllowSignup {
		writeErrorStatus(w, http.StatusForbidden, "SIGNUP_DISABLED", "signups are disabled")
		return
	}

	var req SignupRequest
	if err := parseJSONRequest(r, &req); err != nil {
		writeError(w, err)
		return
	}

	principal, err := s.Services.Identity.CreateAccount(r.Context(), req.Handle, req.Secret)
	if err != nil {
		writeError(w, err)
		return
	}

	s.Logger.Info("Account created", "handle", principal.Handle)
	writeJSON(w, http.StatusCreated, principal)
}

// healthHandler reports the taxonomy and the history backend. A failing
// backend marks the service degraded.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	timeout := s.AppConfig.Observability.HealthCheck.Timeout
	ctx := r.Context()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	response := map[string]any{
		"status":  "healthy",
		"service": "rolefit",
		"version": s.Version,
		"taxonomy": map[string]any{
			"branches": len(s.Services.Taxonomy.Current().ListBranches()),
			"watching": s.Services.Watching(),
			"strategy": s.Services.Engine.Strategy(),
		},
	}

	status := http.StatusOK
	historyStatus := map[string]any{"enabled": s.Services.History != nil}
	if s.Services.History != nil {
		historyStatus["backend"] = s.Services.History.Name()
		if err := s.Services.Ping(ctx); err != nil {
			historyStatus["healthy"] = false
			historyStatus["error"] = err.Error()
			response["status"] = "degraded"
			status = http.StatusServiceUnavailable
		} else {
			historyStatus["healthy"] = true
		}
	}
	response["history"] = historyStatus

	writeJSON(w, status, response)
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, _ *http.Request) {
	response := map[string]any{
		"service": "rolefit",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"api_keys_configured":    len(s.APIKeys),
			"identity_enabled":       s.Services.Identity != nil,
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{"enabled": false}
	}

	if breaker, ok := s.Services.History.(*history.BreakerSink); ok {
		response["circuit_breaker"] = breaker.Stats()
	}

	writeJSON(w, http.StatusOK, response)
}

func (s *Server) multipartMemory() int64 {
	if s.MaxRequestSize > 0 {
		return s.MaxRequestSize
	}
	return 32 << 20
}

// parseJSONRequest decodes a JSON body into v.
func parseJSONRequest(r *http.Request, v any) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "content-type must be application/json", err)
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return bodyError(err, "failed to read request body")
	}

	if err := json.Unmarshal(body, v); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "failed to parse JSON", err)
	}
	return nil
}

func bodyError(err error, message string) error {
	var maxBytesErr *http.MaxBytesError
	if stderrors.As(err, &maxBytesErr) {
		return errors.NewValidationError(errors.ErrCodeFileTooLarge,
			fmt.Sprintf("request body too large (limit is %d bytes)", maxBytesErr.Limit), err)
	}
	return errors.NewValidationError(errors.ErrCodeInvalidRequest, message, err)
}

// statusFor maps an error onto an HTTP status and a stable code.
func statusFor(err error) (int, string) {
	appErr, ok := errors.As(err)
	if !ok {
		return http.StatusInternalServerError, "INTERNAL"
	}

	switch appErr.Code {
	case errors.ErrCodeEmptyResumeText:
		return http.StatusUnprocessableEntity, appErr.Code
	case errors.ErrCodeInvalidTaxonomyEntry:
		return http.StatusInternalServerError, appErr.Code
	case errors.ErrCodeAccountExists:
		return http.StatusConflict, appErr.Code
	case errors.ErrCodeFileTooLarge:
		return http.StatusRequestEntityTooLarge, appErr.Code
	case errors.ErrCodeUnsupportedFormat:
		return http.StatusUnsupportedMediaType, appErr.Code
	}

	switch appErr.Type {
	case errors.ErrorTypeNotFound:
		return http.StatusNotFound, appErr.Code
	case errors.ErrorTypeValidation:
		return http.StatusBadRequest, appErr.Code
	case errors.ErrorTypeAuth:
		return http.StatusUnauthorized, appErr.Code
	case errors.ErrorTypeStorage:
		return http.StatusServiceUnavailable, appErr.Code
	case errors.ErrorTypeIO:
		return http.StatusBadRequest, appErr.Code
	default:
		return http.StatusInternalServerError, appErr.Code
	}
}

// writeError writes err as {"error", "code"} with its mapped status.
// Internal errors do not leak their cause.
func writeError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	message := "internal server error"
	if appErr, ok := errors.As(err); ok && (status < http.StatusInternalServerError || status == http.StatusServiceUnavailable) {
		message = appErr.Message
	}
	writeErrorStatus(w, status, code, message)
}

func writeErrorStatus(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// the status line is already out; an encode failure can only be dropped
	_ = json.NewEncoder(w).Encode(v)
}
