package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"alfredoptarigan/cv-screening/internal/models"
)

// RegistryRepository reads jobs and applicants owned by the recruiting service.
type RegistryRepository interface {
	FindJob(id uint) (*models.Job, error)
	FindApplicant(id uint) (*models.Applicant, error)
	// FindApplicantsForJob returns the subset of ids that belong to jobID.
	FindApplicantsForJob(jobID uint, ids []uint) ([]models.Applicant, error)
	UpdateApplicantStatus(id uint, status string) error
}

type registryRepository struct {
	db *gorm.DB
}

func NewRegistryRepository(db *gorm.DB) RegistryRepository {
	return &registryRepository{db: db}
}

func (r *registryRepository) FindJob(id uint) (*models.Job, error) {
	var job models.Job
	if err := r.db.Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("job %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find job: %w", err)
	}
	return &job, nil
}

func (r *registryRepository) FindApplicant(id uint) (*models.Applicant, error) {
	var applicant models.Applicant
	if err := r.db.Where("id = ?", id).First(&applicant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("applicant %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find applicant: %w", err)
	}
	return &applicant, nil
}

func (r *registryRepository) FindApplicantsForJob(jobID uint, ids []uint) ([]models.Applicant, error) {
	var applicants []models.Applicant
	if len(ids) == 0 {
		return applicants, nil
	}

	err := r.db.
		Where("job_id = ? AND id IN ?", jobID, ids).
		Order("id ASC").
		Find(&applicants).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find applicants: %w", err)
	}
	return applicants, nil
}

func (r *registryRepository) UpdateApplicantStatus(id uint, status string) error {
	result := r.db.Model(&models.Applicant{}).
		Where("id = ?", id).
		Update("status", status)

	if result.Error != nil {
		return fmt.Errorf("failed to update applicant status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("applicant %d: %w", id, ErrNotFound)
	}

	return nil
}
