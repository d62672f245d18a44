package repositories

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"alfredoptarigan/cv-screening/internal/models"
)

// setupTestStore connects to TEST_DATABASE_DSN and resets the schema.
// Tests are skipped when no database is configured.
func setupTestStore(t *testing.T) Store {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	tables := []interface{}{&models.Document{}, &models.ScreeningResult{}, &models.Job{}, &models.Applicant{}}
	require.NoError(t, db.Migrator().DropTable(tables...))
	require.NoError(t, db.AutoMigrate(tables...))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return NewStore(db).Session(context.Background())
}

func seedRegistry(t *testing.T, store Store) (*models.Job, []models.Applicant) {
	t.Helper()

	job := &models.Job{Title: "Backend Engineer", Description: "Go services", OwnerID: "owner-1"}
	require.NoError(t, store.(*gormStore).db.Create(job).Error)

	applicants := []models.Applicant{
		{JobID: job.ID, FullName: "Ada", Status: "applied"},
		{JobID: job.ID, FullName: "Linus", Status: "applied"},
	}
	require.NoError(t, store.(*gormStore).db.Create(&applicants).Error)

	return job, applicants
}

func TestDocumentRepository_Lifecycle(t *testing.T) {
	store := setupTestStore(t)
	docs := store.Documents()

	doc := &models.Document{
		ApplicantID:      7,
		OriginalFilename: "cv.pdf",
		ContentType:      "application/pdf",
		SizeBytes:        1024,
		Extension:        "pdf",
		StorageKey:       "cv_1.pdf",
		Status:           models.DocumentStatusUploaded,
		UploadedAt:       time.Now(),
	}
	require.NoError(t, docs.Create(doc))
	require.NotZero(t, doc.ID)

	t.Run("finish requires processing", func(t *testing.T) {
		err := docs.MarkProcessed(doc.ID, "text")
		assert.True(t, errors.Is(err, ErrInvalidTransition))
	})

	t.Run("processing then processed", func(t *testing.T) {
		require.NoError(t, docs.MarkProcessing(doc.ID, false))
		require.NoError(t, docs.MarkProcessed(doc.ID, "Go, SQL"))

		got, err := docs.FindByID(doc.ID)
		require.NoError(t, err)
		assert.Equal(t, models.DocumentStatusProcessed, got.Status)
		assert.Equal(t, "Go, SQL", got.Text())

		usable, err := docs.FindLatestUsable(7)
		require.NoError(t, err)
		assert.Equal(t, doc.ID, usable.ID)
	})

	t.Run("ordinary attempt leaves processed document alone", func(t *testing.T) {
		err := docs.MarkProcessing(doc.ID, false)
		assert.True(t, errors.Is(err, ErrInvalidTransition))

		got, err := docs.FindByID(doc.ID)
		require.NoError(t, err)
		assert.Equal(t, models.DocumentStatusProcessed, got.Status)
		assert.Equal(t, "Go, SQL", got.Text())
	})

	t.Run("forced reprocessing clears text", func(t *testing.T) {
		require.NoError(t, docs.MarkProcessing(doc.ID, true))

		got, err := docs.FindByID(doc.ID)
		require.NoError(t, err)
		assert.Nil(t, got.ExtractedText)

		_, err = docs.FindLatestUsable(7)
		assert.True(t, errors.Is(err, ErrNotFound))

		require.NoError(t, docs.MarkError(doc.ID))
		assert.True(t, errors.Is(docs.MarkError(doc.ID), ErrInvalidTransition))
	})

	t.Run("missing document", func(t *testing.T) {
		_, err := docs.FindByID(9999)
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.True(t, errors.Is(docs.MarkProcessing(9999, false), ErrNotFound))
		assert.True(t, errors.Is(docs.MarkProcessing(9999, true), ErrNotFound))
	})
}

func TestScreeningRepository_TerminalWritesAreConditional(t *testing.T) {
	store := setupTestStore(t)
	job, applicants := seedRegistry(t, store)
	screenings := store.Screenings()

	rows := []*models.ScreeningResult{
		{ApplicantID: applicants[0].ID, JobID: job.ID, Status: models.ScreeningStatusProcessing},
		{ApplicantID: applicants[1].ID, JobID: job.ID, Status: models.ScreeningStatusProcessing},
	}
	require.NoError(t, screenings.CreateBatch(rows))

	analysis := models.Analysis{
		OverallScore: 81,
		Summary:      "Strong backend profile",
		Strengths:    []string{"Go", "PostgreSQL", "Go"},
		Weaknesses:   []string{"No Kubernetes"},
	}
	completedAt := time.Now()
	require.NoError(t, screenings.Complete(rows[0].ID, analysis, completedAt))

	got, err := screenings.FindByID(rows[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.ScreeningStatusCompleted, got.Status)
	assert.Equal(t, []string{"Go", "PostgreSQL", "Go"}, []string(got.Strengths))
	assert.Equal(t, []string{"No Kubernetes"}, []string(got.Weaknesses))
	require.NotNil(t, got.CompletedAt)
	assert.Nil(t, got.ErrorMessage)

	err = screenings.Fail(rows[0].ID, "late failure")
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	require.NoError(t, screenings.Fail(rows[1].ID, "no usable document"))
	failed, err := screenings.FindByID(rows[1].ID)
	require.NoError(t, err)
	require.NotNil(t, failed.ErrorMessage)
	assert.Equal(t, "no usable document", *failed.ErrorMessage)
	assert.Nil(t, failed.CompletedAt)

	latest, err := screenings.FindLatestByApplicant(applicants[0].ID)
	require.NoError(t, err)
	assert.Equal(t, rows[0].ID, latest.ID)
}

func TestStore_TransactionRollsBack(t *testing.T) {
	store := setupTestStore(t)
	job, applicants := seedRegistry(t, store)

	boom := errors.New("boom")
	err := store.Transaction(func(tx Store) error {
		if err := tx.Registry().UpdateApplicantStatus(applicants[0].ID, models.ApplicantStatusScreened); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	applicant, err := store.Registry().FindApplicant(applicants[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "applied", applicant.Status)

	found, err := store.Registry().FindApplicantsForJob(job.ID, []uint{applicants[0].ID, 424242})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, applicants[0].ID, found[0].ID)
}
