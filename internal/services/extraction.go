package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"alfredoptarigan/cv-screening/internal/apperrors"
	"alfredoptarigan/cv-screening/internal/logger"
	"alfredoptarigan/cv-screening/internal/models"
	"alfredoptarigan/cv-screening/internal/repositories"
	"alfredoptarigan/cv-screening/internal/tasks"
)

// ExtractionService drives a document through
// uploaded -> processing -> processed | error.
type ExtractionService struct {
	store      repositories.Store
	storage    StorageService
	extractors *ExtractorRegistry
	dispatcher tasks.Dispatcher
	log        *zap.Logger
}

func NewExtractionService(
	store repositories.Store,
	storage StorageService,
	extractors *ExtractorRegistry,
	dispatcher tasks.Dispatcher,
	log *zap.Logger,
) *ExtractionService {
	return &ExtractionService{
		store:      store,
		storage:    storage,
		extractors: extractors,
		dispatcher: dispatcher,
		log:        logger.WithFields(log, zap.String("component", "extraction")),
	}
}

// Extract runs one ordinary extraction attempt. A document that already
// reached processed or error is left untouched, so duplicate tasks are no-ops.
func (s *ExtractionService) Extract(ctx context.Context, documentID uint) error {
	return s.extract(ctx, documentID, false)
}

// ForceExtract restarts extraction from any status. It backs explicit
// re-extraction requests.
func (s *ExtractionService) ForceExtract(ctx context.Context, documentID uint) error {
	return s.extract(ctx, documentID, true)
}

// extract runs one attempt. Once the document is marked processing, every
// outcome (including a panic) ends in a terminal status.
func (s *ExtractionService) extract(ctx context.Context, documentID uint, force bool) (err error) {
	log := s.log.With(zap.Uint(logger.FieldDocumentID, documentID), zap.Bool("force", force))

	docs := s.store.Session(ctx).Documents()

	doc, err := docs.FindByID(documentID)
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}

	if !force && !doc.Status.CanTransitionTo(models.DocumentStatusProcessing) {
		log.Info("document already finished, skipping", zap.String("status", string(doc.Status)))
		return nil
	}

	if err := docs.MarkProcessing(documentID, force); err != nil {
		if errors.Is(err, repositories.ErrInvalidTransition) {
			log.Info("document finished concurrently, skipping")
			return nil
		}
		return fmt.Errorf("failed to mark document processing: %w", err)
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = s.fail(docs, documentID, fmt.Errorf("extraction panicked: %v", rec), log)
		}
	}()

	data, err := s.storage.Load(ctx, doc.StorageKey)
	if err != nil {
		return s.fail(docs, documentID, err, log)
	}

	text, err := s.extractors.Extract(doc.Extension, data)
	switch {
	case errors.Is(err, ErrNoExtractor):
		log.Warn("no extractor for file type, storing empty text", zap.String("extension", doc.Extension))
		text = ""
	case err != nil:
		return s.fail(docs, documentID, err, log)
	}

	if err := docs.MarkProcessed(documentID, text); err != nil {
		return s.fail(docs, documentID, err, log)
	}

	log.Info("document processed", zap.Int("text_length", len(text)))
	return nil
}

func (s *ExtractionService) fail(docs repositories.DocumentRepository, documentID uint, cause error, log *zap.Logger) error {
	log.Error("document extraction failed", zap.Error(cause))

	if err := docs.MarkError(documentID); err != nil && !errors.Is(err, repositories.ErrInvalidTransition) {
		log.Error("failed to mark document error", zap.Error(err))
	}

	return fmt.Errorf("failed to extract document %d: %w", documentID, cause)
}

// Reextract schedules a fresh extraction attempt from any current state.
func (s *ExtractionService) Reextract(ctx context.Context, documentID uint) (*models.Document, error) {
	doc, err := s.store.Session(ctx).Documents().FindByID(documentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFoundf("document %d not found", documentID)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to load document")
	}

	if err := s.dispatcher.Dispatch(ctx, tasks.ReextractDocument(doc.ID)); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to schedule extraction")
	}

	s.log.Info("re-extraction scheduled", zap.Uint(logger.FieldDocumentID, doc.ID), zap.String("status", string(doc.Status)))
	return doc, nil
}
