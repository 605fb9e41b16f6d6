package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/kirillkom/internship-allocator/internal/core/domain"
)

type matchQueueFake struct {
	published []domain.ApplicantProfile
	err       error
}

func (f *matchQueueFake) PublishMatchRequested(_ context.Context, profile domain.ApplicantProfile) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, profile)
	return nil
}

func (f *matchQueueFake) SubscribeMatchRequested(context.Context, func(context.Context, domain.ApplicantProfile) error) error {
	return errors.New("not implemented")
}

func TestRequestMatchPublishesTrimmedProfile(t *testing.T) {
	queue := &matchQueueFake{}
	uc := NewRequestMatchUseCase(queue)

	profile := testApplicant()
	profile.ApplicantID = " A1 "
	if err := uc.RequestMatch(context.Background(), profile); err != nil {
		t.Fatalf("RequestMatch() error = %v", err)
	}
	if len(queue.published) != 1 || queue.published[0].ApplicantID != "A1" {
		t.Fatalf("unexpected published profiles %+v", queue.published)
	}
}

func TestRequestMatchRejectsBlankApplicantID(t *testing.T) {
	queue := &matchQueueFake{}
	uc := NewRequestMatchUseCase(queue)

	err := uc.RequestMatch(context.Background(), domain.ApplicantProfile{})
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if len(queue.published) != 0 {
		t.Fatalf("nothing should be published")
	}
}

func TestRequestMatchWrapsQueueError(t *testing.T) {
	queue := &matchQueueFake{err: errors.New("nats down")}
	uc := NewRequestMatchUseCase(queue)

	if err := uc.RequestMatch(context.Background(), testApplicant()); err == nil {
		t.Fatalf("expected error")
	}
}
