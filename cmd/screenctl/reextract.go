package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/cv-screening/internal/models"
)

var (
	reextractStatus string
	reextractLimit  int

	reextractCmd = &cobra.Command{
		Use:   "reextract [document-id...]",
		Short: "Re-run text extraction for documents",
		Long: "Re-run text extraction for the given documents, or for every document in --status.\n" +
			"Tasks are published to RabbitMQ when QUEUE_DRIVER=rabbitmq, otherwise they run inline.",
		RunE: runReextract,
	}
)

func init() {
	rootCmd.AddCommand(reextractCmd)

	reextractCmd.Flags().StringVarP(&reextractStatus, "status", "s", string(models.DocumentStatusError), "document status to select when no ids are given")
	reextractCmd.Flags().IntVarP(&reextractLimit, "limit", "l", 100, "maximum number of documents selected by status")
}

func runReextract(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	status := models.DocumentStatus(reextractStatus)
	if len(ids) == 0 && !status.Valid() {
		return fmt.Errorf("unknown document status %q", reextractStatus)
	}

	e, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = e.log.Sync() }()

	ctx := context.Background()

	extraction, release, err := newExtraction(ctx, e)
	if err != nil {
		return err
	}
	defer release()

	if len(ids) == 0 {
		docs, err := e.store.Session(ctx).Documents().FindByStatus(status, reextractLimit)
		if err != nil {
			return err
		}
		for _, doc := range docs {
			ids = append(ids, doc.ID)
		}
	}

	failed := 0
	for _, id := range ids {
		if _, err := extraction.Reextract(ctx, id); err != nil {
			e.log.Warn("re-extraction failed", zap.Uint("document_id", id), zap.Error(err))
			failed++
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "re-extracted %d of %d documents\n", len(ids)-failed, len(ids))
	if failed > 0 {
		return fmt.Errorf("%d documents failed", failed)
	}
	return nil
}

func parseIDs(args []string) ([]uint, error) {
	ids := make([]uint, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseUint(arg, 10, 64)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("invalid id %q", arg)
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}
