package models

import "time"

// Team represents a participating hackathon team.
type Team struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	HackathonID uint      `gorm:"not null;index" json:"hackathon_id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	ProjectName string    `gorm:"size:255" json:"project_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Submissions []Submission `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"submissions,omitempty"`
}
