package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, handler http.Handler) string {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read metrics body: %v", err)
	}
	return string(body)
}

func TestHTTPMiddlewareNormalizesApplicantPath(t *testing.T) {
	m := NewHTTPServerMetrics("allocator-api")
	handler := m.Middleware("allocator-api", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/allocations/A-123", nil))

	body := scrape(t, m.Handler())
	if !strings.Contains(body, `path="/v1/allocations/{applicant_id}"`) {
		t.Fatalf("expected normalized path label, got:\n%s", body)
	}
	if strings.Contains(body, "A-123") {
		t.Fatalf("applicant id leaked into labels")
	}
	if !strings.Contains(body, `status="404"`) {
		t.Fatalf("expected status label 404")
	}
}

func TestRecordMatchOutcomes(t *testing.T) {
	m := NewHTTPServerMetrics("allocator-api")
	m.RecordMatch("allocator-api", "http", OutcomeFresh, 3, 5*time.Millisecond)
	m.RecordMatch("allocator-api", "http", OutcomeReplayed, 3, time.Millisecond)
	m.SetCorpusSize(42)

	body := scrape(t, m.Handler())
	for _, want := range []string{
		`allocator_match_requests_total{endpoint="http",outcome="fresh",service="allocator-api"} 1`,
		`allocator_match_requests_total{endpoint="http",outcome="replayed",service="allocator-api"} 1`,
		`allocator_engine_opportunities{service="allocator-api"} 42`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing %q in:\n%s", want, body)
		}
	}
}

func TestWorkerMetricsFinishMatch(t *testing.T) {
	m := NewWorkerMetrics("allocator-worker")
	m.StartMatch()
	m.FinishMatch("allocator-worker", OutcomeError, 0, time.Millisecond)

	body := scrape(t, m.Handler())
	if !strings.Contains(body, `allocator_worker_match_process_total{outcome="error",service="allocator-worker"} 1`) {
		t.Fatalf("expected error outcome counter, got:\n%s", body)
	}
	if !strings.Contains(body, `allocator_worker_match_process_in_flight{service="allocator-worker"} 0`) {
		t.Fatalf("expected in-flight gauge back to zero")
	}
}

func TestWorkerMetricsRecordRetry(t *testing.T) {
	m := NewWorkerMetrics("allocator-worker")
	m.RecordRetry("worker.match")
	m.RecordRetry("worker.match")

	body := scrape(t, m.Handler())
	if !strings.Contains(body, `allocator_worker_retries_total{operation="worker.match",service="allocator-worker"} 2`) {
		t.Fatalf("expected retry counter, got:\n%s", body)
	}
}
