package resilience

import (
	"context"
	"errors"

	"github.com/kirillkom/internship-allocator/internal/core/domain"
)

// ClassifyDomainError retries storage outages and temporary failures.
// Caller mistakes are neither retried nor counted against the breaker.
func ClassifyDomainError(err error) ErrorClassification {
	switch {
	case err == nil:
		return ErrorClassification{}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrorClassification{Retryable: false, RecordFailure: false}
	case domain.IsKind(err, domain.ErrInvalidRequest), domain.IsKind(err, domain.ErrAllocationNotFound):
		return ErrorClassification{Retryable: false, RecordFailure: false}
	case domain.IsKind(err, domain.ErrEngineNotInitialized):
		return ErrorClassification{Retryable: true, RecordFailure: false}
	case domain.IsKind(err, domain.ErrStorageUnavailable), domain.IsKind(err, domain.ErrTemporary):
		return ErrorClassification{Retryable: true, RecordFailure: true}
	case IsCircuitOpen(err):
		return ErrorClassification{Retryable: false, RecordFailure: false}
	default:
		return ErrorClassification{Retryable: false, RecordFailure: true}
	}
}
