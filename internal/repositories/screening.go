package repositories

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"alfredoptarigan/cv-screening/internal/models"
)

type ScreeningRepository interface {
	CreateBatch(results []*models.ScreeningResult) error
	FindByID(id uint) (*models.ScreeningResult, error)
	FindLatestByApplicant(applicantID uint) (*models.ScreeningResult, error)
	FindStale(updatedBefore time.Time, limit int) ([]models.ScreeningResult, error)
	Complete(id uint, analysis models.Analysis, completedAt time.Time) error
	Fail(id uint, message string) error
}

type screeningRepository struct {
	db *gorm.DB
}

func NewScreeningRepository(db *gorm.DB) ScreeningRepository {
	return &screeningRepository{db: db}
}

func (r *screeningRepository) CreateBatch(results []*models.ScreeningResult) error {
	if len(results) == 0 {
		return nil
	}

	if err := r.db.Create(results).Error; err != nil {
		return fmt.Errorf("failed to create screening results: %w", err)
	}
	return nil
}

func (r *screeningRepository) FindByID(id uint) (*models.ScreeningResult, error) {
	var result models.ScreeningResult
	if err := r.db.Where("id = ?", id).First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("screening result %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find screening result: %w", err)
	}
	return &result, nil
}

func (r *screeningRepository) FindLatestByApplicant(applicantID uint) (*models.ScreeningResult, error) {
	var result models.ScreeningResult
	err := r.db.
		Where("applicant_id = ?", applicantID).
		Order("created_at DESC").
		Order("id DESC").
		First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("screening result for applicant %d: %w", applicantID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find latest screening result: %w", err)
	}
	return &result, nil
}

func (r *screeningRepository) FindStale(updatedBefore time.Time, limit int) ([]models.ScreeningResult, error) {
	var results []models.ScreeningResult
	err := r.db.
		Where("status = ?", models.ScreeningStatusProcessing).
		Where("updated_at < ?", updatedBefore).
		Order("updated_at ASC").
		Limit(limit).
		Find(&results).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find stale screening results: %w", err)
	}

	return results, nil
}

func (r *screeningRepository) Complete(id uint, analysis models.Analysis, completedAt time.Time) error {
	return r.finish(id, map[string]interface{}{
		"status":            models.ScreeningStatusCompleted,
		"overall_score":     analysis.OverallScore,
		"summary":           analysis.Summary,
		"strengths":         datatypes.JSONSlice[string](nonNil(analysis.Strengths)),
		"weaknesses":        datatypes.JSONSlice[string](nonNil(analysis.Weaknesses)),
		"detailed_analysis": analysis.DetailedAnalysis,
		"completed_at":      completedAt,
		"error_message":     nil,
		"updated_at":        time.Now(),
	})
}

func (r *screeningRepository) Fail(id uint, message string) error {
	return r.finish(id, map[string]interface{}{
		"status":        models.ScreeningStatusFailed,
		"error_message": message,
		"completed_at":  nil,
		"updated_at":    time.Now(),
	})
}

// finish applies a terminal write only while the row is still processing.
func (r *screeningRepository) finish(id uint, updates map[string]interface{}) error {
	result := r.db.Model(&models.ScreeningResult{}).
		Where("id = ? AND status = ?", id, models.ScreeningStatusProcessing).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update screening result: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("screening result %d is not processing: %w", id, ErrInvalidTransition)
	}

	return nil
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
