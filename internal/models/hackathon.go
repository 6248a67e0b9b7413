package models

import "time"

// Hackathon is the top-level event that owns teams, criteria, and artifacts.
type Hackathon struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Teams    []Team      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"teams,omitempty"`
	Criteria []Criterion `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"criteria,omitempty"`
}
