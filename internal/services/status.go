package services

import (
	"context"
	"errors"

	"alfredoptarigan/cv-screening/internal/apperrors"
	"alfredoptarigan/cv-screening/internal/models"
	"alfredoptarigan/cv-screening/internal/repositories"
)

// StatusService exposes the polling views over documents and screenings.
type StatusService struct {
	store repositories.Store
}

func NewStatusService(store repositories.Store) *StatusService {
	return &StatusService{store: store}
}

func (s *StatusService) Document(ctx context.Context, id uint) (*models.Document, error) {
	doc, err := s.store.Session(ctx).Documents().FindByID(id)
	if err != nil {
		return nil, notFoundOrInternal(err, "document not found", "failed to load document")
	}
	return doc, nil
}

func (s *StatusService) Screening(ctx context.Context, id uint) (*models.ScreeningResult, error) {
	result, err := s.store.Session(ctx).Screenings().FindByID(id)
	if err != nil {
		return nil, notFoundOrInternal(err, "screening result not found", "failed to load screening result")
	}
	return result, nil
}

// DocumentStatus reports the applicant's most recently uploaded document.
func (s *StatusService) DocumentStatus(ctx context.Context, applicantID uint) (*models.StatusView, error) {
	doc, err := s.store.Session(ctx).Documents().FindLatestByApplicant(applicantID)
	if err != nil {
		return nil, notFoundOrInternal(err, "no document uploaded for applicant", "failed to load document")
	}
	return documentView(doc), nil
}

// ScreeningStatus reports the applicant's most recent screening.
func (s *StatusService) ScreeningStatus(ctx context.Context, applicantID uint) (*models.StatusView, error) {
	result, err := s.store.Session(ctx).Screenings().FindLatestByApplicant(applicantID)
	if err != nil {
		return nil, notFoundOrInternal(err, "no screening requested for applicant", "failed to load screening result")
	}
	return screeningView(result), nil
}

// ApplicantStatus combines both views. Either may be absent.
func (s *StatusService) ApplicantStatus(ctx context.Context, applicantID uint) (*models.ApplicantStatus, error) {
	store := s.store.Session(ctx)

	if _, err := store.Registry().FindApplicant(applicantID); err != nil {
		return nil, notFoundOrInternal(err, "applicant not found", "failed to load applicant")
	}

	doc, err := store.Documents().FindLatestByApplicant(applicantID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to load document")
	}
	result, err := store.Screenings().FindLatestByApplicant(applicantID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to load screening result")
	}

	status := &models.ApplicantStatus{
		ApplicantID:     applicantID,
		OverallProgress: OverallProgress(doc, result),
	}
	if doc != nil {
		status.Document = documentView(doc)
	}
	if result != nil {
		status.Screening = screeningView(result)
	}
	return status, nil
}

// OverallProgress is the integer mean of document and screening progress
// once the document is processed and a screening exists; otherwise the
// document progress alone (0 without a document).
func OverallProgress(doc *models.Document, result *models.ScreeningResult) int {
	if doc == nil {
		return 0
	}
	if doc.Status == models.DocumentStatusProcessed && result != nil {
		return (doc.Status.Progress() + result.Status.Progress()) / 2
	}
	return doc.Status.Progress()
}

func documentView(doc *models.Document) *models.StatusView {
	return &models.StatusView{Status: string(doc.Status), ProgressPercent: doc.Status.Progress()}
}

func screeningView(result *models.ScreeningResult) *models.StatusView {
	return &models.StatusView{Status: string(result.Status), ProgressPercent: result.Status.Progress()}
}

func notFoundOrInternal(err error, notFound, internal string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.NotFound(notFound)
	}
	return apperrors.Wrap(err, apperrors.ErrCodeInternal, internal)
}
