package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/cv-screening/internal/apperrors"
	"alfredoptarigan/cv-screening/internal/models"
	"alfredoptarigan/cv-screening/internal/testutil"
)

func TestOverallProgress(t *testing.T) {
	doc := func(s models.DocumentStatus) *models.Document { return &models.Document{Status: s} }
	res := func(s models.ScreeningStatus) *models.ScreeningResult { return &models.ScreeningResult{Status: s} }

	tests := []struct {
		name   string
		doc    *models.Document
		result *models.ScreeningResult
		want   int
	}{
		{name: "nothing uploaded", want: 0},
		{name: "screening without document", result: res(models.ScreeningStatusProcessing), want: 0},
		{name: "uploaded", doc: doc(models.DocumentStatusUploaded), want: 25},
		{name: "processing", doc: doc(models.DocumentStatusProcessing), want: 50},
		{name: "processed, no screening", doc: doc(models.DocumentStatusProcessed), want: 100},
		{name: "processed, screening running", doc: doc(models.DocumentStatusProcessed), result: res(models.ScreeningStatusProcessing), want: 75},
		{name: "processed, screening completed", doc: doc(models.DocumentStatusProcessed), result: res(models.ScreeningStatusCompleted), want: 100},
		{name: "processed, screening failed", doc: doc(models.DocumentStatusProcessed), result: res(models.ScreeningStatusFailed), want: 50},
		{name: "error ignores screening", doc: doc(models.DocumentStatusError), result: res(models.ScreeningStatusCompleted), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OverallProgress(tt.doc, tt.result))
		})
	}
}

func TestApplicantStatus(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.AddApplicant(models.Applicant{ID: 1, JobID: 1})
	store.AddApplicant(models.Applicant{ID: 2, JobID: 1})
	svc := NewStatusService(store)
	ctx := context.Background()

	store.PutDocument(models.Document{ApplicantID: 1, Status: models.DocumentStatusError, UploadedAt: time.Now().Add(-time.Hour)})
	text := "cv"
	store.PutDocument(models.Document{ApplicantID: 1, Status: models.DocumentStatusProcessed, ExtractedText: &text, UploadedAt: time.Now()})
	store.PutScreening(models.ScreeningResult{ApplicantID: 1, JobID: 1, Status: models.ScreeningStatusProcessing, CreatedAt: time.Now()})

	status, err := svc.ApplicantStatus(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint(1), status.ApplicantID)
	assert.Equal(t, &models.StatusView{Status: "processed", ProgressPercent: 100}, status.Document)
	assert.Equal(t, &models.StatusView{Status: "processing", ProgressPercent: 50}, status.Screening)
	assert.Equal(t, 75, status.OverallProgress)

	empty, err := svc.ApplicantStatus(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, empty.Document)
	assert.Nil(t, empty.Screening)
	assert.Zero(t, empty.OverallProgress)

	_, err = svc.ApplicantStatus(ctx, 404)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDocumentAndScreeningStatus(t *testing.T) {
	store := testutil.NewMemoryStore()
	svc := NewStatusService(store)
	ctx := context.Background()

	_, err := svc.DocumentStatus(ctx, 1)
	assert.True(t, apperrors.IsNotFound(err))
	_, err = svc.ScreeningStatus(ctx, 1)
	assert.True(t, apperrors.IsNotFound(err))

	doc := store.PutDocument(models.Document{ApplicantID: 1, Status: models.DocumentStatusUploaded, UploadedAt: time.Now()})
	result := store.PutScreening(models.ScreeningResult{ApplicantID: 1, Status: models.ScreeningStatusFailed, CreatedAt: time.Now()})

	view, err := svc.DocumentStatus(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, &models.StatusView{Status: "uploaded", ProgressPercent: 25}, view)

	view, err = svc.ScreeningStatus(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, &models.StatusView{Status: "failed", ProgressPercent: 0}, view)

	gotDoc, err := svc.Document(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, gotDoc.ID)

	gotResult, err := svc.Screening(ctx, result.ID)
	require.NoError(t, err)
	assert.Equal(t, result.ID, gotResult.ID)

	_, err = svc.Screening(ctx, 999)
	assert.True(t, apperrors.IsNotFound(err))
}
