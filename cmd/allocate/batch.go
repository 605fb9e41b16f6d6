package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kirillkom/internship-allocator/internal/bootstrap"
	"github.com/kirillkom/internship-allocator/internal/config"
	"github.com/kirillkom/internship-allocator/internal/core/usecase"
	"github.com/kirillkom/internship-allocator/internal/infrastructure/dataset"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Pick the best opportunity for every applicant in a table and write a report",
	RunE: func(cmd *cobra.Command, _ []string) error {
		applicants, _ := cmd.Flags().GetString("applicants")
		out, _ := cmd.Flags().GetString("out")
		return runBatch(cmd.Context(), corpusPath, policyFile, applicants, out)
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringP("applicants", "a", "", "applicant table (.csv or .xlsx)")
	batchCmd.Flags().StringP("out", "o", "allocations.csv", "report path (.csv or .xlsx)")
	_ = batchCmd.MarkFlagRequired("applicants")
}

func runBatch(ctx context.Context, corpus, policyPath, applicantsPath, outPath string) error {
	if applicantsPath == "" {
		return errors.New("applicants table is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	policy, err := config.LoadPolicy(policyPath)
	if err != nil {
		return err
	}
	e, err := bootstrap.BuildEngine(ctx, dataset.NewOpportunityFile(corpus), policy)
	if err != nil {
		return err
	}
	applicants, err := dataset.LoadApplicants(applicantsPath)
	if err != nil {
		return fmt.Errorf("load applicants: %w", err)
	}

	allocations, err := usecase.AllocateBatch(ctx, e, applicants)
	if err != nil {
		return err
	}

	rows := make([]dataset.ReportRow, 0, len(allocations))
	for _, a := range allocations {
		rows = append(rows, dataset.ReportRow{
			ApplicantID:   a.ApplicantID,
			OpportunityID: a.Best.Opportunity.ID,
			Role:          a.Best.Opportunity.Role,
			Organization:  a.Best.Opportunity.Organization,
			BaseScore:     a.Best.RawSimilarity,
			Bonus:         a.Best.Bonus.Total(),
			FinalScore:    a.Best.FinalScore,
			Aspirational:  a.Best.Geo.Aspirational,
			Rural:         a.Best.Geo.Rural,
		})
	}
	if err := dataset.WriteReport(outPath, rows); err != nil {
		return err
	}

	slog.Info("batch_completed",
		"applicants", len(applicants),
		"opportunities", e.OpportunityCount(),
		"report", outPath,
	)
	return nil
}
