package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"storyforge/internal/util"
	"storyforge/pkg/ai"
	"storyforge/pkg/domain"
)

const maxBodyBytes = 1 << 20

//go:generate mockgen -source=server.go -destination=mocks/mock_story_service.go -package=mocks StoryService

// StoryService generates a story for a validated request.
type StoryService interface {
	GenerateStory(ctx context.Context, req domain.StoryRequest) (string, error)
}

// Config wires required dependencies for the HTTP server.
type Config struct {
	App StoryService
	// RelayUpstreamStatus answers upstream rejections with the provider's
	// status code instead of 200. The body shape is the same either way.
	RelayUpstreamStatus bool
	CORSAllowedOrigins  []string
	TrustedProxies      *util.TrustedProxies
	// Registry receives the service metrics; nil creates a private one.
	Registry *prometheus.Registry
}

// Server exposes HTTP endpoints for the story service.
type Server struct {
	stories             StoryService
	relayUpstreamStatus bool
	corsAllowedOrigins  []string
	trustedProxies      *util.TrustedProxies
	metrics             *metrics
	mux                 *http.ServeMux
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	if cfg.App == nil {
		return nil, errors.New("server: story service required")
	}
	s := &Server{
		stories:             cfg.App,
		relayUpstreamStatus: cfg.RelayUpstreamStatus,
		corsAllowedOrigins:  cfg.CORSAllowedOrigins,
		trustedProxies:      cfg.TrustedProxies,
		metrics:             newMetrics(cfg.Registry),
		mux:                 http.NewServeMux(),
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(
		util.WithRequestLog("story", s.trustedProxies,
			util.WithSecurityHeaders(util.WithCORS(s.corsAllowedOrigins, s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.Handle("/metrics", s.metrics.handler)
	s.mux.HandleFunc("/generate-story", s.handleGenerateStory)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w, "GET, HEAD")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGenerateStory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	req, verr := decodeStoryRequest(io.LimitReader(r.Body, maxBodyBytes))
	if verr != nil {
		s.metrics.observe(outcomeInvalidRequest)
		writeJSON(w, http.StatusUnprocessableEntity, domain.ErrorResponse{Error: verr.msg, Field: verr.field})
		return
	}

	start := time.Now()
	story, err := s.stories.GenerateStory(r.Context(), req)
	s.metrics.generationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.writeGenerationError(w, r, err)
		return
	}
	s.metrics.observe(outcomeSuccess)
	writeJSON(w, http.StatusOK, domain.StoryResponse{Story: story})
}

func (s *Server) writeGenerationError(w http.ResponseWriter, r *http.Request, err error) {
	logger := util.LoggerFromContext(r.Context())
	var apiErr *ai.APIError
	switch {
	case errors.As(err, &apiErr):
		s.metrics.observe(outcomeUpstreamError)
		status := http.StatusOK
		if s.relayUpstreamStatus && apiErr.Status >= 200 && apiErr.Status <= 599 {
			status = apiErr.Status
		}
		logger.Warn("upstream rejected story request", "upstream_status", apiErr.Status)
		writeError(w, status, apiErr.Body)
	case errors.Is(err, ai.ErrUpstreamUnavailable):
		s.metrics.observe(outcomeUpstreamUnavailable)
		logger.Error("upstream unavailable", "err", err)
		writeJSON(w, http.StatusBadGateway, domain.ErrorResponse{
			Error:     "upstream request failed",
			RequestID: util.RequestIDFromRequest(r),
		})
	default:
		s.metrics.observe(outcomeInternalError)
		logger.Error("story generation error", "err", err)
		writeJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:     "internal error",
			RequestID: util.RequestIDFromRequest(r),
		})
	}
}

type validationError struct {
	field string
	msg   string
}

// decodeStoryRequest checks types only: prompt must be a string (empty is
// allowed), max_tokens an integer of any sign, defaulting when absent or null.
// Keys match exactly; "Prompt" is not "prompt".
func decodeStoryRequest(body io.Reader) (domain.StoryRequest, *validationError) {
	dec := json.NewDecoder(body)
	var fields map[string]json.RawMessage
	if err := dec.Decode(&fields); err != nil {
		return domain.StoryRequest{}, &validationError{msg: "invalid JSON body"}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return domain.StoryRequest{}, &validationError{msg: "invalid JSON body"}
	}

	var prompt *string
	if verr := decodeField(fields, "prompt", &prompt); verr != nil {
		return domain.StoryRequest{}, verr
	}
	if prompt == nil {
		return domain.StoryRequest{}, &validationError{field: "prompt", msg: "prompt is required"}
	}
	var maxTokens *int
	if verr := decodeField(fields, "max_tokens", &maxTokens); verr != nil {
		return domain.StoryRequest{}, verr
	}

	req := domain.StoryRequest{Prompt: *prompt, MaxTokens: domain.DefaultMaxTokens}
	if maxTokens != nil {
		req.MaxTokens = *maxTokens
	}
	return req, nil
}

// decodeField unmarshals fields[name] into dst. Absent keys leave dst untouched.
func decodeField(fields map[string]json.RawMessage, name string, dst any) *validationError {
	raw, ok := fields[name]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &validationError{
			field: name,
			msg:   fmt.Sprintf("%s must be %s", name, expectedType(name)),
		}
	}
	return nil
}

func expectedType(field string) string {
	if field == "max_tokens" {
		return "an integer"
	}
	return "a string"
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, domain.ErrorResponse{Error: msg})
}
