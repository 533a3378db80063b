package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"melify/internal/ratelimit"
	"melify/internal/util"
	"melify/pkg/workflow"
	"melify/services/analysis/internal/app"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App           *app.App
	InternalToken string
	// Limiter is optional; nil disables per-user rate limiting.
	Limiter        *ratelimit.FixedWindowLimiter
	TrustedProxies *util.TrustedProxies
}

// Server exposes HTTP endpoints for the analysis service.
type Server struct {
	app           *app.App
	internalToken string
	limiter       *ratelimit.FixedWindowLimiter
	trusted       *util.TrustedProxies
	mux           *http.ServeMux
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	s := &Server{
		app:           cfg.App,
		internalToken: strings.TrimSpace(cfg.InternalToken),
		limiter:       cfg.Limiter,
		trusted:       cfg.TrustedProxies,
		mux:           http.NewServeMux(),
	}
	s.routes()
	return s
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	var h http.Handler = s.mux
	h = util.WithSecurityHeaders(h)
	h = util.WithRequestLog("analysis", s.trusted, h)
	return util.WithRequestID(h)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.Handle("/analysis/runs", s.withInternal(s.handleRuns))
	s.mux.Handle("/analysis/jobs", s.withInternal(s.handleJobs))
	s.mux.Handle("/analysis/jobs/", s.withInternal(s.handleJobByID))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.app.Ping(ctx); err != nil {
		util.LoggerFromContext(r.Context()).Warn("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) withInternal(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(r.Header.Get("X-Internal-Token"))
		if token == "" || token != s.internalToken {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	req, ok := decodeAnalysisRequest(w, r)
	if !ok || !s.allowRate(w, r, req.UserID) {
		return
	}
	res, err := s.app.Analyze(r.Context(), req.JournalID, req.UserID)
	if err != nil {
		s.writeAnalyzeError(w, r, res, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	req, ok := decodeAnalysisRequest(w, r)
	if !ok || !s.allowRate(w, r, req.UserID) {
		return
	}
	job, err := s.app.Enqueue(r.Context(), req.JournalID, req.UserID)
	if err != nil {
		util.LoggerFromContext(r.Context()).Error("enqueue analysis job failed", "journal_id", req.JournalID, "error", err)
		writeError(w, http.StatusInternalServerError, "enqueue failed")
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleJobByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/analysis/jobs/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	job, ok, err := s.app.GetJob(r.Context(), id)
	if err != nil {
		util.LoggerFromContext(r.Context()).Error("read analysis job failed", "job_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "job lookup failed")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) allowRate(w http.ResponseWriter, r *http.Request, userID string) bool {
	if s.limiter == nil {
		return true
	}
	allowed, retryAfter := s.limiter.Allow(r.Context(), "user:"+userID)
	if allowed {
		return true
	}
	secs := int(retryAfter.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	writeError(w, http.StatusTooManyRequests, "too many analysis requests")
	return false
}

func (s *Server) writeAnalyzeError(w http.ResponseWriter, r *http.Request, res *workflow.Result, err error) {
	var perr *workflow.PersistenceError
	switch {
	case errors.Is(err, workflow.ErrNotFound):
		writeError(w, http.StatusNotFound, "journal not found")
	case errors.Is(err, app.ErrAlreadyAnalyzed):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, app.ErrAnalysisInProgress):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &perr):
		util.LoggerFromContext(r.Context()).Error("analysis not fully persisted", "failed_steps", perr.Steps(), "error", err)
		writeJSON(w, http.StatusInternalServerError, partialResponse{
			Error:       "analysis not fully persisted",
			FailedSteps: perr.Steps(),
			Result:      res,
		})
	default:
		util.LoggerFromContext(r.Context()).Error("analysis failed", "error", err)
		writeError(w, http.StatusInternalServerError, "analysis failed")
	}
}

func decodeAnalysisRequest(w http.ResponseWriter, r *http.Request) (analysisRequest, bool) {
	var req analysisRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return req, false
	}
	req.JournalID = strings.TrimSpace(req.JournalID)
	req.UserID = strings.TrimSpace(req.UserID)
	if req.JournalID == "" || req.UserID == "" {
		writeError(w, http.StatusBadRequest, "journalId and userId required")
		return req, false
	}
	return req, true
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

type analysisRequest struct {
	JournalID string `json:"journalId"`
	UserID    string `json:"userId"`
}

type partialResponse struct {
	Error       string           `json:"error"`
	FailedSteps []string         `json:"failedSteps"`
	Result      *workflow.Result `json:"result,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
