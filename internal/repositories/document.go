package repositories

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"alfredoptarigan/cv-screening/internal/models"
)

type DocumentRepository interface {
	Create(document *models.Document) error
	FindByID(id uint) (*models.Document, error)
	FindLatestByApplicant(applicantID uint) (*models.Document, error)
	// FindLatestUsable returns the newest processed document with non-empty text.
	FindLatestUsable(applicantID uint) (*models.Document, error)
	FindByStatus(status models.DocumentStatus, limit int) ([]models.Document, error)
	FindStale(updatedBefore time.Time, limit int) ([]models.Document, error)
	// MarkProcessing starts an extraction attempt. Without force it only
	// succeeds from a non-terminal status and returns ErrInvalidTransition
	// otherwise; force restarts from any status.
	MarkProcessing(id uint, force bool) error
	MarkProcessed(id uint, text string) error
	MarkError(id uint) error
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

// Create implements DocumentRepository.
func (d *documentRepository) Create(document *models.Document) error {
	if err := d.db.Create(document).Error; err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	return nil
}

// FindByID implements DocumentRepository.
func (d *documentRepository) FindByID(id uint) (*models.Document, error) {
	var doc models.Document
	if err := d.db.Where("id = ?", id).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("document %d: %w", id, ErrNotFound)
		}

		return nil, fmt.Errorf("failed to find document: %w", err)
	}

	return &doc, nil
}

// FindLatestByApplicant implements DocumentRepository.
func (d *documentRepository) FindLatestByApplicant(applicantID uint) (*models.Document, error) {
	var doc models.Document
	err := d.db.
		Where("applicant_id = ?", applicantID).
		Order("uploaded_at DESC").
		Order("id DESC").
		First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("document for applicant %d: %w", applicantID, ErrNotFound)
		}

		return nil, fmt.Errorf("failed to find latest document: %w", err)
	}

	return &doc, nil
}

// FindLatestUsable implements DocumentRepository.
func (d *documentRepository) FindLatestUsable(applicantID uint) (*models.Document, error) {
	var doc models.Document
	err := d.db.
		Where("applicant_id = ? AND status = ?", applicantID, models.DocumentStatusProcessed).
		Where("extracted_text IS NOT NULL AND extracted_text <> ''").
		Order("uploaded_at DESC").
		Order("id DESC").
		First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("usable document for applicant %d: %w", applicantID, ErrNotFound)
		}

		return nil, fmt.Errorf("failed to find usable document: %w", err)
	}

	return &doc, nil
}

// FindByStatus implements DocumentRepository.
func (d *documentRepository) FindByStatus(status models.DocumentStatus, limit int) ([]models.Document, error) {
	var docs []models.Document
	err := d.db.
		Where("status = ?", status).
		Order("id ASC").
		Limit(limit).
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find documents by status: %w", err)
	}

	return docs, nil
}

// FindStale implements DocumentRepository.
func (d *documentRepository) FindStale(updatedBefore time.Time, limit int) ([]models.Document, error) {
	var docs []models.Document
	err := d.db.
		Where("status IN ?", []models.DocumentStatus{models.DocumentStatusUploaded, models.DocumentStatusProcessing}).
		Where("updated_at < ?", updatedBefore).
		Order("updated_at ASC").
		Limit(limit).
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find stale documents: %w", err)
	}

	return docs, nil
}

// MarkProcessing implements DocumentRepository. It clears previously
// extracted text.
func (d *documentRepository) MarkProcessing(id uint, force bool) error {
	query := d.db.Model(&models.Document{}).Where("id = ?", id)
	if !force {
		query = query.Where("status IN ?", models.TransitionSources(models.DocumentStatusProcessing))
	}

	result := query.Updates(map[string]interface{}{
		"status":         models.DocumentStatusProcessing,
		"extracted_text": nil,
		"updated_at":     time.Now(),
	})

	if result.Error != nil {
		return fmt.Errorf("failed to mark document processing: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		return nil
	}

	if force {
		return fmt.Errorf("document %d: %w", id, ErrNotFound)
	}

	if _, err := d.FindByID(id); err != nil {
		return err
	}

	return fmt.Errorf("document %d is already finished: %w", id, ErrInvalidTransition)
}

// MarkProcessed implements DocumentRepository.
func (d *documentRepository) MarkProcessed(id uint, text string) error {
	return d.finish(id, models.DocumentStatusProcessed, map[string]interface{}{
		"status":         models.DocumentStatusProcessed,
		"extracted_text": text,
		"updated_at":     time.Now(),
	})
}

// MarkError implements DocumentRepository.
func (d *documentRepository) MarkError(id uint) error {
	return d.finish(id, models.DocumentStatusError, map[string]interface{}{
		"status":         models.DocumentStatusError,
		"extracted_text": nil,
		"updated_at":     time.Now(),
	})
}

func (d *documentRepository) finish(id uint, next models.DocumentStatus, updates map[string]interface{}) error {
	result := d.db.Model(&models.Document{}).
		Where("id = ? AND status IN ?", id, models.TransitionSources(next)).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update document: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("document %d is not processing: %w", id, ErrInvalidTransition)
	}

	return nil
}
