package models

import (
	"time"
)

type DocumentStatus string

const (
	DocumentStatusUploaded   DocumentStatus = "uploaded"
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusProcessed  DocumentStatus = "processed"
	DocumentStatusError      DocumentStatus = "error"
)

// Progress is the polling percentage reported for a document in this status.
func (s DocumentStatus) Progress() int {
	switch s {
	case DocumentStatusUploaded:
		return 25
	case DocumentStatusProcessing:
		return 50
	case DocumentStatusProcessed:
		return 100
	case DocumentStatusError:
		return 0
	default:
		return 0
	}
}

func (s DocumentStatus) IsTerminal() bool {
	switch s {
	case DocumentStatusProcessed, DocumentStatusError:
		return true
	case DocumentStatusUploaded, DocumentStatusProcessing:
		return false
	default:
		return false
	}
}

var documentStatuses = []DocumentStatus{
	DocumentStatusUploaded,
	DocumentStatusProcessing,
	DocumentStatusProcessed,
	DocumentStatusError,
}

// CanTransitionTo reports whether an ordinary extraction attempt may move the
// document from s to next. Terminal documents re-enter processing only through
// an explicit re-extraction, which does not consult this table.
func (s DocumentStatus) CanTransitionTo(next DocumentStatus) bool {
	switch next {
	case DocumentStatusProcessing:
		return s == DocumentStatusUploaded || s == DocumentStatusProcessing
	case DocumentStatusProcessed, DocumentStatusError:
		return s == DocumentStatusProcessing
	case DocumentStatusUploaded:
		return false
	default:
		return false
	}
}

// TransitionSources lists every status from which next is reachable.
func TransitionSources(next DocumentStatus) []DocumentStatus {
	var sources []DocumentStatus
	for _, s := range documentStatuses {
		if s.CanTransitionTo(next) {
			sources = append(sources, s)
		}
	}
	return sources
}

func (s DocumentStatus) Valid() bool {
	switch s {
	case DocumentStatusUploaded, DocumentStatusProcessing, DocumentStatusProcessed, DocumentStatusError:
		return true
	default:
		return false
	}
}

type Document struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	ApplicantID      uint           `gorm:"not null;index" json:"applicant_id"`
	OriginalFilename string         `gorm:"type:text;not null" json:"original_filename"`
	ContentType      string         `gorm:"type:text;not null" json:"content_type"`
	SizeBytes        int64          `gorm:"not null" json:"size_bytes"`
	Extension        string         `gorm:"type:varchar(10);not null" json:"extension"`
	StorageKey       string         `gorm:"type:text;not null" json:"-"`
	ExtractedText    *string        `gorm:"type:text" json:"-"`
	Status           DocumentStatus `gorm:"type:varchar(20);not null;default:'uploaded';index" json:"status"`
	UploadedAt       time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"uploaded_at"`
	UpdatedAt        time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Document) TableName() string {
	return "documents"
}

// Text returns the extracted text, or "" while none is stored.
func (d *Document) Text() string {
	if d.ExtractedText == nil {
		return ""
	}
	return *d.ExtractedText
}
