package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"alfredoptarigan/cv-screening/internal/models"
	"alfredoptarigan/cv-screening/internal/services"
)

var statusCmd = &cobra.Command{
	Use:   "status <applicant-id>",
	Short: "Print document and screening progress for an applicant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}

		e, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = e.log.Sync() }()

		status, err := services.NewStatusService(e.store).ApplicantStatus(context.Background(), ids[0])
		if err != nil {
			return err
		}

		return printStatus(cmd, status)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func printStatus(cmd *cobra.Command, status *models.ApplicantStatus) error {
	if jsonLogs {
		pretty, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(pretty))
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "applicant:  %d\n", status.ApplicantID)
	fmt.Fprintf(out, "document:   %s\n", describe(status.Document))
	fmt.Fprintf(out, "screening:  %s\n", describe(status.Screening))
	fmt.Fprintf(out, "overall:    %d%%\n", status.OverallProgress)
	return nil
}

func describe(view *models.StatusView) string {
	if view == nil {
		return "none"
	}
	return fmt.Sprintf("%s (%d%%)", view.Status, view.ProgressPercent)
}
