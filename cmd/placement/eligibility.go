package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/placement-cell/internal/eligibility"
	"github.com/jonathan/placement-cell/internal/observability"
	"github.com/jonathan/placement-cell/internal/types"
	"github.com/spf13/cobra"
)

var (
	eligibilityStudent string
	eligibilityCompany string
)

var eligibilityCmd = &cobra.Command{
	Use:   "eligibility",
	Short: "Check whether a student meets a company's requirements",
	RunE:  runEligibility,
}

func init() {
	eligibilityCmd.Flags().StringVar(&eligibilityStudent, "student", "", "Student ID (required)")
	eligibilityCmd.Flags().StringVar(&eligibilityCompany, "company", "", "Company ID (required)")
	_ = eligibilityCmd.MarkFlagRequired("student")
	_ = eligibilityCmd.MarkFlagRequired("company")
	rootCmd.AddCommand(eligibilityCmd)
}

func runEligibility(cmd *cobra.Command, _ []string) error {
	studentID, err := uuid.Parse(eligibilityStudent)
	if err != nil {
		return fmt.Errorf("invalid --student: %w", err)
	}
	companyID, err := uuid.Parse(eligibilityCompany)
	if err != nil {
		return fmt.Errorf("invalid --company: %w", err)
	}

	ctx := cmd.Context()
	database, err := connect(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	result, err := eligibility.NewService(database, nil).Check(ctx, studentID, companyID)
	if err != nil {
		return err
	}

	student, err := database.FindStudentByID(ctx, studentID)
	if err != nil {
		return fmt.Errorf("failed to load student: %w", err)
	}
	company, err := database.GetCompany(ctx, companyID)
	if err != nil {
		return fmt.Errorf("failed to load company: %w", err)
	}
	if company == nil {
		return &types.ErrNotFound{Entity: "company", ID: companyID.String()}
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintEligibility(student, company, result)
	return nil
}
