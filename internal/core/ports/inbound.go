package ports

import (
	"context"

	"github.com/kirillkom/internship-allocator/internal/core/domain"
)

// Matcher is the inbound contract of the allocation engine.
type Matcher interface {
	Match(ctx context.Context, profile domain.ApplicantProfile) (*domain.MatchResult, error)
}

// AllocationReader is the read model for stored allocations.
type AllocationReader interface {
	Allocations(ctx context.Context, applicantID string) ([]domain.Allocation, error)
}

// MatchRequester queues a match to be processed asynchronously.
type MatchRequester interface {
	RequestMatch(ctx context.Context, profile domain.ApplicantProfile) error
}
