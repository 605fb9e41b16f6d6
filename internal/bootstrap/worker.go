package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"github.com/kirillkom/internship-allocator/internal/core/domain"
	"github.com/kirillkom/internship-allocator/internal/infrastructure/resilience"
	"github.com/kirillkom/internship-allocator/internal/observability/metrics"
)

const workerService = "allocator-worker"

// MatchHandler returns the queue callback used by the worker. Each request
// runs through the resilience executor so storage outages are retried.
func (a *App) MatchHandler(m *metrics.WorkerMetrics, timeout time.Duration) func(context.Context, domain.ApplicantProfile) error {
	return func(ctx context.Context, profile domain.ApplicantProfile) error {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		if m != nil {
			m.StartMatch()
		}
		start := time.Now()

		var result *domain.MatchResult
		err := a.Executor.Execute(ctx, "worker.match", func(ctx context.Context) error {
			var err error
			result, err = a.MatchUC.Match(ctx, profile)
			return err
		}, resilience.ClassifyDomainError)

		outcome, count := metrics.OutcomeError, 0
		if err == nil {
			count = len(result.Allocations)
			outcome = metrics.MatchOutcome(result.Replayed, count)
		}
		if m != nil {
			m.FinishMatch(workerService, outcome, count, time.Since(start))
		}
		if err != nil {
			return err
		}

		slog.Info("queued_match_completed",
			"applicant_id", result.ApplicantID,
			"replayed", result.Replayed,
			"count", count,
			"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
		)
		return nil
	}
}
