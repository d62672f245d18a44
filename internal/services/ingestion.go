package services

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/cv-screening/internal/apperrors"
	"alfredoptarigan/cv-screening/internal/logger"
	"alfredoptarigan/cv-screening/internal/models"
	"alfredoptarigan/cv-screening/internal/repositories"
	"alfredoptarigan/cv-screening/internal/tasks"
)

// allowedTypes maps each accepted extension to its expected MIME type.
var allowedTypes = map[string]string{
	"pdf":  "application/pdf",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"txt":  "text/plain",
}

type IngestionService struct {
	store       repositories.Store
	storage     StorageService
	dispatcher  tasks.Dispatcher
	maxFileSize int64
	log         *zap.Logger
}

func NewIngestionService(
	store repositories.Store,
	storage StorageService,
	dispatcher tasks.Dispatcher,
	maxFileSize int64,
	log *zap.Logger,
) *IngestionService {
	return &IngestionService{
		store:       store,
		storage:     storage,
		dispatcher:  dispatcher,
		maxFileSize: maxFileSize,
		log:         logger.WithFields(log, zap.String("component", "ingestion")),
	}
}

// ValidateUpload checks size, extension and declared content type and returns
// the normalized extension.
func ValidateUpload(filename, contentType string, size, maxFileSize int64) (string, error) {
	if size <= 0 {
		return "", apperrors.ValidationField("file", "file is empty")
	}
	if size > maxFileSize {
		return "", apperrors.ValidationField("file", fmt.Sprintf("file too large, max size: %d bytes", maxFileSize))
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	expected, ok := allowedTypes[ext]
	if !ok {
		return "", apperrors.ValidationField("file", fmt.Sprintf("unsupported file extension %q, allowed: pdf, doc, docx, txt", ext))
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.EqualFold(mediaType, expected) {
		return "", apperrors.ValidationField("content_type",
			fmt.Sprintf("content type %q does not match .%s (expected %s)", contentType, ext, expected))
	}

	return ext, nil
}

// Upload validates and stores a CV, records it as uploaded and schedules
// text extraction.
func (s *IngestionService) Upload(ctx context.Context, applicantID uint, filename, contentType string, data []byte) (*models.Document, error) {
	ext, err := ValidateUpload(filename, contentType, int64(len(data)), s.maxFileSize)
	if err != nil {
		return nil, err
	}

	store := s.store.Session(ctx)

	if _, err := store.Registry().FindApplicant(applicantID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFoundf("applicant %d not found", applicantID)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to load applicant")
	}

	key, err := s.storage.Save(ctx, ext, data)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to store file")
	}

	mediaType, _, _ := mime.ParseMediaType(contentType)
	doc := &models.Document{
		ApplicantID:      applicantID,
		OriginalFilename: filepath.Base(filename),
		ContentType:      strings.ToLower(mediaType),
		SizeBytes:        int64(len(data)),
		Extension:        ext,
		StorageKey:       key,
		Status:           models.DocumentStatusUploaded,
		UploadedAt:       time.Now(),
	}

	if err := store.Documents().Create(doc); err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.log.Warn("failed to remove orphaned upload", zap.String("storage_key", key), zap.Error(delErr))
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to save document record")
	}

	log := s.log.With(zap.Uint(logger.FieldDocumentID, doc.ID), zap.Uint("applicant_id", applicantID))
	log.Info("document uploaded", zap.String("extension", ext), zap.Int64("size_bytes", doc.SizeBytes))

	// the stale-task poller picks the document up if dispatch fails
	if err := s.dispatcher.Dispatch(ctx, tasks.ExtractDocument(doc.ID)); err != nil {
		log.Warn("failed to dispatch extraction", zap.Error(err))
	}

	return doc, nil
}
