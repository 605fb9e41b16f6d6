package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/kirillkom/internship-allocator/internal/core/domain"
	"github.com/kirillkom/internship-allocator/internal/core/engine"
	"github.com/kirillkom/internship-allocator/internal/core/ports"
)

type MatchUseCase struct {
	store  ports.AllocationStore
	engine atomic.Pointer[engine.Engine]
	flight singleflight.Group

	now   func() time.Time
	newID func() string
}

func NewMatchUseCase(store ports.AllocationStore) *MatchUseCase {
	return &MatchUseCase{
		store: store,
		now:   storedNow,
		newID: uuid.NewString,
	}
}

// storedNow matches what a TIMESTAMPTZ column round-trips: UTC at
// microsecond precision.
func storedNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Install makes the engine available to Match. Until it is called every
// match fails with domain.ErrEngineNotInitialized.
func (uc *MatchUseCase) Install(e *engine.Engine) {
	uc.engine.Store(e)
}

func (uc *MatchUseCase) Ready() bool {
	return uc.engine.Load() != nil
}

// Match returns the stored allocation set for the applicant when one exists,
// otherwise computes, persists and returns a new one. Concurrent calls for
// the same applicant share a single computation.
func (uc *MatchUseCase) Match(ctx context.Context, profile domain.ApplicantProfile) (*domain.MatchResult, error) {
	applicantID := strings.TrimSpace(profile.ApplicantID)
	if applicantID == "" {
		return nil, domain.WrapError(domain.ErrInvalidRequest, "match", errors.New("applicant_id is required"))
	}
	profile.ApplicantID = applicantID

	e := uc.engine.Load()
	if e == nil {
		return nil, domain.WrapError(domain.ErrEngineNotInitialized, "match", errors.New("opportunity corpus not loaded"))
	}

	v, err, _ := uc.flight.Do(applicantID, func() (any, error) {
		return uc.match(ctx, e, profile)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.MatchResult), nil
}

func (uc *MatchUseCase) match(ctx context.Context, e *engine.Engine, profile domain.ApplicantProfile) (*domain.MatchResult, error) {
	existing, err := uc.store.GetExisting(ctx, profile.ApplicantID)
	if err != nil {
		return nil, fmt.Errorf("load existing allocations: %w", err)
	}
	if len(existing) > 0 {
		return &domain.MatchResult{ApplicantID: profile.ApplicantID, Replayed: true, Allocations: existing}, nil
	}

	computed, err := e.Match(profile)
	if err != nil {
		return nil, fmt.Errorf("score applicant: %w", err)
	}
	if len(computed) == 0 {
		return &domain.MatchResult{ApplicantID: profile.ApplicantID, Allocations: []domain.Allocation{}}, nil
	}

	now := uc.now()
	for i := range computed {
		computed[i].ID = uc.newID()
		computed[i].CreatedAt = now
	}

	stored, inserted, err := uc.store.InsertIfAbsent(ctx, profile.ApplicantID, computed)
	if err != nil {
		return nil, fmt.Errorf("persist allocations: %w", err)
	}
	return &domain.MatchResult{ApplicantID: profile.ApplicantID, Replayed: !inserted, Allocations: stored}, nil
}

func (uc *MatchUseCase) Allocations(ctx context.Context, applicantID string) ([]domain.Allocation, error) {
	applicantID = strings.TrimSpace(applicantID)
	if applicantID == "" {
		return nil, domain.WrapError(domain.ErrInvalidRequest, "get allocations", errors.New("applicant_id is required"))
	}
	records, err := uc.store.GetExisting(ctx, applicantID)
	if err != nil {
		return nil, fmt.Errorf("load allocations: %w", err)
	}
	if len(records) == 0 {
		return nil, domain.WrapError(domain.ErrAllocationNotFound, "get allocations", fmt.Errorf("applicant_id=%s", applicantID))
	}
	return records, nil
}
