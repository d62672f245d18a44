package testutil

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/cv-screening/internal/models"
	"alfredoptarigan/cv-screening/internal/repositories"
)

func TestMemoryStoreTransactionRollback(t *testing.T) {
	store := NewMemoryStore()
	store.AddApplicant(models.Applicant{ID: 1, JobID: 1})
	result := store.PutScreening(models.ScreeningResult{ApplicantID: 1, JobID: 1, Status: models.ScreeningStatusProcessing})

	boom := errors.New("boom")
	err := store.Transaction(func(tx repositories.Store) error {
		require.NoError(t, tx.Screenings().Complete(result.ID, models.Analysis{OverallScore: 70}, time.Now()))
		require.NoError(t, tx.Registry().UpdateApplicantStatus(1, models.ApplicantStatusScreened))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, _ := store.Screening(result.ID)
	assert.Equal(t, models.ScreeningStatusProcessing, got.Status)
	applicant, _ := store.Applicant(1)
	assert.Equal(t, "applied", applicant.Status)
}

func TestMemoryStoreLatestUsableOrdering(t *testing.T) {
	store := NewMemoryStore()
	text := "cv"
	at := time.Now()

	store.PutDocument(models.Document{ApplicantID: 1, Status: models.DocumentStatusProcessed, ExtractedText: &text, UploadedAt: at})
	second := store.PutDocument(models.Document{ApplicantID: 1, Status: models.DocumentStatusProcessed, ExtractedText: &text, UploadedAt: at})
	store.PutDocument(models.Document{ApplicantID: 1, Status: models.DocumentStatusUploaded, UploadedAt: at.Add(time.Minute)})

	doc, err := store.Documents().FindLatestUsable(1)
	require.NoError(t, err)
	assert.Equal(t, second.ID, doc.ID)
}

func TestMemoryStoreDocumentTransitions(t *testing.T) {
	text := "cv"
	tests := []struct {
		name    string
		status  models.DocumentStatus
		force   bool
		wantErr error
	}{
		{name: "uploaded starts", status: models.DocumentStatusUploaded},
		{name: "stuck processing restarts", status: models.DocumentStatusProcessing},
		{name: "processed is kept", status: models.DocumentStatusProcessed, wantErr: repositories.ErrInvalidTransition},
		{name: "error is kept", status: models.DocumentStatusError, wantErr: repositories.ErrInvalidTransition},
		{name: "forced restart of processed", status: models.DocumentStatusProcessed, force: true},
		{name: "forced restart of error", status: models.DocumentStatusError, force: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore()
			doc := store.PutDocument(models.Document{ApplicantID: 1, Status: tt.status, ExtractedText: &text})

			err := store.Documents().MarkProcessing(doc.ID, tt.force)
			got, _ := store.Document(doc.ID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.status, got.Status)
				assert.Equal(t, "cv", got.Text())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, models.DocumentStatusProcessing, got.Status)
			assert.Nil(t, got.ExtractedText)
		})
	}

	t.Run("finish requires processing", func(t *testing.T) {
		store := NewMemoryStore()
		doc := store.PutDocument(models.Document{ApplicantID: 1, Status: models.DocumentStatusUploaded})

		assert.ErrorIs(t, store.Documents().MarkProcessed(doc.ID, "cv"), repositories.ErrInvalidTransition)
		assert.ErrorIs(t, store.Documents().MarkProcessing(404, false), repositories.ErrNotFound)
	})
}
