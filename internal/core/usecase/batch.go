package usecase

import (
	"context"
	"fmt"

	"github.com/kirillkom/internship-allocator/internal/core/domain"
	"github.com/kirillkom/internship-allocator/internal/core/engine"
)

// BatchAllocation is the best opportunity picked for one applicant in an
// offline run.
type BatchAllocation struct {
	ApplicantID string
	Best        engine.BestMatch
}

// AllocateBatch picks the highest-similarity opportunity for every applicant
// regardless of the threshold. Nothing is persisted.
func AllocateBatch(ctx context.Context, e *engine.Engine, applicants []domain.ApplicantProfile) ([]BatchAllocation, error) {
	out := make([]BatchAllocation, 0, len(applicants))
	for _, applicant := range applicants {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		best, err := e.Best(applicant)
		if err != nil {
			return nil, fmt.Errorf("allocate %s: %w", applicant.ApplicantID, err)
		}
		out = append(out, BatchAllocation{ApplicantID: applicant.ApplicantID, Best: best})
	}
	return out, nil
}
