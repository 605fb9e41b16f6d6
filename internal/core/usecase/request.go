package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kirillkom/internship-allocator/internal/core/domain"
	"github.com/kirillkom/internship-allocator/internal/core/ports"
)

type RequestMatchUseCase struct {
	queue ports.MatchQueue
}

func NewRequestMatchUseCase(queue ports.MatchQueue) *RequestMatchUseCase {
	return &RequestMatchUseCase{queue: queue}
}

// RequestMatch validates the profile and queues it for the worker.
func (uc *RequestMatchUseCase) RequestMatch(ctx context.Context, profile domain.ApplicantProfile) error {
	profile.ApplicantID = strings.TrimSpace(profile.ApplicantID)
	if profile.ApplicantID == "" {
		return domain.WrapError(domain.ErrInvalidRequest, "request match", errors.New("applicant_id is required"))
	}
	if err := uc.queue.PublishMatchRequested(ctx, profile); err != nil {
		return fmt.Errorf("publish match request: %w", err)
	}
	return nil
}
