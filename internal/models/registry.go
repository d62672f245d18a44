package models

// Job and Applicant rows are owned by the recruiting CRUD service. The
// screening pipeline reads them and only ever writes Applicant.Status.

type Job struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Title           string `gorm:"type:text;not null" json:"title"`
	Description     string `gorm:"type:text" json:"description"`
	Skills          string `gorm:"type:text" json:"skills"`
	ExperienceLevel string `gorm:"type:varchar(50)" json:"experience_level"`
	OwnerID         string `gorm:"type:varchar(100);not null;index" json:"owner_id"`
}

func (Job) TableName() string {
	return "jobs"
}

const ApplicantStatusScreened = "screened"

type Applicant struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	JobID    uint   `gorm:"not null;index" json:"job_id"`
	FullName string `gorm:"type:text" json:"full_name"`
	Email    string `gorm:"type:text" json:"email"`
	Status   string `gorm:"type:varchar(30);not null;default:'applied'" json:"status"`
}

func (Applicant) TableName() string {
	return "applicants"
}

const (
	RoleAdmin     = "admin"
	RoleHRManager = "hr_manager"
)

// Caller is the authenticated user forwarded by the upstream gateway.
type Caller struct {
	UserID string
	Role   string
}

func (c Caller) IsElevated() bool {
	switch c.Role {
	case RoleAdmin, RoleHRManager:
		return true
	default:
		return false
	}
}

func (c Caller) CanManage(job *Job) bool {
	return c.IsElevated() || (c.UserID != "" && c.UserID == job.OwnerID)
}
