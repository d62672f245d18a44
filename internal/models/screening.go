package models

import (
	"time"

	"gorm.io/datatypes"
)

type ScreeningStatus string

const (
	ScreeningStatusProcessing ScreeningStatus = "processing"
	ScreeningStatusCompleted  ScreeningStatus = "completed"
	ScreeningStatusFailed     ScreeningStatus = "failed"
)

func (s ScreeningStatus) Progress() int {
	switch s {
	case ScreeningStatusProcessing:
		return 50
	case ScreeningStatusCompleted:
		return 100
	case ScreeningStatusFailed:
		return 0
	default:
		return 0
	}
}

func (s ScreeningStatus) IsTerminal() bool {
	switch s {
	case ScreeningStatusCompleted, ScreeningStatusFailed:
		return true
	case ScreeningStatusProcessing:
		return false
	default:
		return false
	}
}

type ScreeningResult struct {
	ID               uint                        `gorm:"primaryKey" json:"id"`
	ApplicantID      uint                        `gorm:"not null;index" json:"applicant_id"`
	JobID            uint                        `gorm:"not null;index" json:"job_id"`
	OverallScore     int                         `gorm:"not null;default:0" json:"overall_score"`
	Summary          string                      `gorm:"type:text" json:"summary"`
	Strengths        datatypes.JSONSlice[string] `json:"strengths"`
	Weaknesses       datatypes.JSONSlice[string] `json:"weaknesses"`
	DetailedAnalysis string                      `gorm:"type:text" json:"detailed_analysis"`
	Status           ScreeningStatus             `gorm:"type:varchar(20);not null;default:'processing';index" json:"status"`
	ErrorMessage     *string                     `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt        time.Time                   `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	CompletedAt      *time.Time                  `json:"completed_at,omitempty"`
	UpdatedAt        time.Time                   `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (ScreeningResult) TableName() string {
	return "screening_results"
}

// Analysis is the structured outcome of one AI evaluation.
type Analysis struct {
	OverallScore     int
	Summary          string
	Strengths        []string
	Weaknesses       []string
	DetailedAnalysis string
}
