package ports

import (
	"context"

	"github.com/kirillkom/internship-allocator/internal/core/domain"
)

// AllocationStore persists allocation sets keyed by applicant identity.
// Stored records are never updated or deleted.
type AllocationStore interface {
	// GetExisting returns the stored set for applicantID in rank order, or
	// an empty slice when none exists.
	GetExisting(ctx context.Context, applicantID string) ([]domain.Allocation, error)
	// InsertIfAbsent atomically stores records unless a set already exists
	// for applicantID. It returns the set that is stored after the call and
	// whether this call inserted it.
	InsertIfAbsent(ctx context.Context, applicantID string, records []domain.Allocation) ([]domain.Allocation, bool, error)
}

// MatchQueue publishes/consumes asynchronous match requests.
type MatchQueue interface {
	PublishMatchRequested(ctx context.Context, profile domain.ApplicantProfile) error
	SubscribeMatchRequested(ctx context.Context, handler func(context.Context, domain.ApplicantProfile) error) error
}

// OpportunitySource loads the opportunity corpus.
type OpportunitySource interface {
	LoadOpportunities(ctx context.Context) ([]domain.Opportunity, error)
}
