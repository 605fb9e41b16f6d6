package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/internship-allocator/internal/config"
	"github.com/kirillkom/internship-allocator/internal/core/domain"
	"github.com/kirillkom/internship-allocator/internal/core/ports"
	"github.com/kirillkom/internship-allocator/internal/observability/metrics"
)

const (
	serviceName  = "allocator-api"
	maxBodyBytes = 1 << 20
)

type Router struct {
	cfg       config.Config
	matcher   ports.Matcher
	reader    ports.AllocationReader
	requester ports.MatchRequester
	ready     func() bool
	metrics   *metrics.HTTPServerMetrics
}

// NewRouter wires the HTTP surface. requester may be nil when no queue is
// configured; /v1/match/async then answers 503.
func NewRouter(
	cfg config.Config,
	matcher ports.Matcher,
	reader ports.AllocationReader,
	requester ports.MatchRequester,
) *Router {
	return &Router{
		cfg:       cfg,
		matcher:   matcher,
		reader:    reader,
		requester: requester,
		ready:     func() bool { return true },
	}
}

// WithReadiness sets the probe behind /readyz.
func (rt *Router) WithReadiness(ready func() bool) *Router {
	if ready != nil {
		rt.ready = ready
	}
	return rt
}

func (rt *Router) WithMetrics(m *metrics.HTTPServerMetrics) *Router {
	rt.metrics = m
	return rt
}

func (rt *Router) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/v1/match", rt.match)
	api.HandleFunc("/v1/match/async", rt.matchAsync)
	api.HandleFunc("/v1/allocations/", rt.getAllocations)

	var v1 http.Handler = api
	if validator, err := newRequestValidator(); err != nil {
		slog.Error("openapi_validator_disabled", "error", err)
	} else {
		v1 = validator.middleware(v1)
	}
	v1 = bodyLimitMiddleware(v1, maxBodyBytes)
	v1 = backpressureMiddleware(v1, rt.cfg.APIMaxInFlight, 50*time.Millisecond, rt.onRejected)
	v1 = rateLimitMiddleware(v1, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst, rt.onRejected)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/readyz", rt.readyz)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}
	mux.Handle("/v1/", v1)

	var handler http.Handler = mux
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) readyz(w http.ResponseWriter, _ *http.Request) {
	if !rt.ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type matchResponse struct {
	ApplicantID string              `json:"applicant_id"`
	Replayed    bool                `json:"replayed"`
	Count       int                 `json:"count"`
	Allocations []domain.Allocation `json:"allocations"`
}

func (rt *Router) match(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	profile, ok := decodeProfile(w, r)
	if !ok {
		return
	}

	start := time.Now()
	result, err := rt.matcher.Match(r.Context(), profile)
	if err != nil {
		rt.recordMatch(metrics.OutcomeError, 0, start)
		rt.writeError(w, r, "match", err)
		return
	}

	allocations := result.Allocations
	if allocations == nil {
		allocations = []domain.Allocation{}
	}
	rt.recordMatch(metrics.MatchOutcome(result.Replayed, len(allocations)), len(allocations), start)
	slog.Info("match_completed",
		"request_id", requestIDFromContext(r.Context()),
		"applicant_id", result.ApplicantID,
		"replayed", result.Replayed,
		"count", len(allocations),
	)

	writeJSON(w, http.StatusOK, matchResponse{
		ApplicantID: result.ApplicantID,
		Replayed:    result.Replayed,
		Count:       len(allocations),
		Allocations: allocations,
	})
}

func (rt *Router) matchAsync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if rt.requester == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "async matching is not configured"})
		return
	}

	profile, ok := decodeProfile(w, r)
	if !ok {
		return
	}
	if err := rt.requester.RequestMatch(r.Context(), profile); err != nil {
		rt.writeError(w, r, "match async", err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"applicant_id": strings.TrimSpace(profile.ApplicantID),
		"status":       "queued",
	})
}

func (rt *Router) getAllocations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	applicantID := strings.TrimPrefix(r.URL.Path, "/v1/allocations/")
	if strings.TrimSpace(applicantID) == "" || strings.Contains(applicantID, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "applicant id is required"})
		return
	}

	records, err := rt.reader.Allocations(r.Context(), applicantID)
	if err != nil {
		rt.writeError(w, r, "get allocations", err)
		return
	}
	writeJSON(w, http.StatusOK, matchResponse{
		ApplicantID: strings.TrimSpace(applicantID),
		Replayed:    true,
		Count:       len(records),
		Allocations: records,
	})
}

func decodeProfile(w http.ResponseWriter, r *http.Request) (domain.ApplicantProfile, bool) {
	var profile domain.ApplicantProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		if tooLarge(err) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request body too large"})
			return domain.ApplicantProfile{}, false
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return domain.ApplicantProfile{}, false
	}
	return profile, true
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request_failed",
			"request_id", requestIDFromContext(r.Context()),
			"operation", op,
			"status", status,
			"error", err,
		)
	}
	writeJSON(w, status, map[string]string{"error": publicErrorMessage(status, err)})
}

func (rt *Router) recordMatch(outcome string, count int, start time.Time) {
	if rt.metrics == nil {
		return
	}
	rt.metrics.RecordMatch(serviceName, "http", outcome, count, time.Since(start))
}

func (rt *Router) onRejected(reason string) {
	if rt.metrics != nil {
		rt.metrics.RecordRejected(serviceName, reason)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
