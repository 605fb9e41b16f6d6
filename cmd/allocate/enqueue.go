package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/kirillkom/internship-allocator/internal/config"
	"github.com/kirillkom/internship-allocator/internal/core/domain"
	"github.com/kirillkom/internship-allocator/internal/core/ports"
	"github.com/kirillkom/internship-allocator/internal/core/usecase"
	"github.com/kirillkom/internship-allocator/internal/infrastructure/dataset"
	"github.com/kirillkom/internship-allocator/internal/infrastructure/queue/nats"
	"github.com/kirillkom/internship-allocator/internal/infrastructure/resilience"
)

const flushTimeout = 10 * time.Second

var enqueueCmd = &cobra.Command{
	Use:   "enqueue",
	Short: "Publish every applicant in a table as an asynchronous match request",
	RunE: func(cmd *cobra.Command, _ []string) error {
		applicantsPath, _ := cmd.Flags().GetString("applicants")
		if applicantsPath == "" {
			return errors.New("applicants table is required")
		}
		applicants, err := dataset.LoadApplicants(applicantsPath)
		if err != nil {
			return fmt.Errorf("load applicants: %w", err)
		}

		cfg := config.Load()
		retry := false
		queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.MatchSubject, nats.Options{
			ClientName:           "internship-allocator-cli",
			RetryOnFailedConnect: &retry,
			ResilienceExecutor:   resilience.NewExecutor(cfg.Resilience),
		})
		if err != nil {
			return err
		}
		defer queue.Close()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		published, err := enqueueAll(ctx, usecase.NewRequestMatchUseCase(queue), applicants)
		if flushErr := queue.Flush(flushTimeout); flushErr != nil {
			slog.Error("enqueue_unconfirmed", "published", published, "error", flushErr)
			return errors.Join(err, fmt.Errorf("confirm delivery: %w", flushErr))
		}
		slog.Info("enqueue_completed", "published", published, "total", len(applicants), "subject", cfg.MatchSubject)
		return err
	},
}

func init() {
	rootCmd.AddCommand(enqueueCmd)

	enqueueCmd.Flags().StringP("applicants", "a", "", "applicant table (.csv or .xlsx)")
	_ = enqueueCmd.MarkFlagRequired("applicants")
}

// enqueueAll stops at the first failure and reports how many were sent.
func enqueueAll(ctx context.Context, requester ports.MatchRequester, applicants []domain.ApplicantProfile) (int, error) {
	for i, applicant := range applicants {
		if err := requester.RequestMatch(ctx, applicant); err != nil {
			return i, fmt.Errorf("enqueue %s: %w", applicant.ApplicantID, err)
		}
	}
	return len(applicants), nil
}
