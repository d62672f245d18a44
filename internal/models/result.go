package models

type ScreeningRequest struct {
	ApplicantIDs []uint `json:"applicant_ids"`
}

type ScreeningResponse struct {
	Message string            `json:"message"`
	Results []ScreeningResult `json:"results"`
}

// StatusView is the polling shape shared by documents and screenings.
type StatusView struct {
	Status          string `json:"status"`
	ProgressPercent int    `json:"progress_percent"`
}

type ApplicantStatus struct {
	ApplicantID     uint        `json:"applicant_id"`
	Document        *StatusView `json:"document"`
	Screening       *StatusView `json:"screening"`
	OverallProgress int         `json:"overall_progress"`
}

type ReextractResponse struct {
	ID     uint   `json:"id"`
	Status string `json:"status"`
}
