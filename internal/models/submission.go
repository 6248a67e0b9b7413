package models

import "time"

// Submission processing states. Text extraction happens upstream of this
// service; a submission reaches "success" once its summary text is available.
const (
	SubmissionStatusPending = "pending"
	SubmissionStatusSuccess = "success"
	SubmissionStatusFailed  = "failed"
)

// Submission is one uploaded file belonging to a team, with the extracted
// summary text produced by the ingestion side of the platform.
type Submission struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TeamID      uint      `gorm:"not null;index" json:"team_id"`
	FileName    string    `gorm:"size:512;not null" json:"file_name"`
	FileType    string    `gorm:"size:32" json:"file_type"`
	Status      string    `gorm:"size:32;not null;default:pending" json:"status"`
	SummaryText string    `gorm:"type:text" json:"summary_text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsUsable reports whether the submission can feed artifact generation.
func (s Submission) IsUsable() bool {
	return s.Status == SubmissionStatusSuccess && s.SummaryText != ""
}
