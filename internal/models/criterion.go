package models

import "time"

// Criterion is a judging dimension owned by a hackathon. Name and weight are
// copied by value into an evaluation's score map, so editing or deleting a
// criterion never rewrites historical evaluations.
type Criterion struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	HackathonID uint      `gorm:"not null;uniqueIndex:idx_criteria_hackathon_name" json:"hackathon_id"`
	Name        string    `gorm:"size:255;not null;uniqueIndex:idx_criteria_hackathon_name" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Weight      float64   `gorm:"not null" json:"weight"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DefaultCriteria returns the criteria provisioned for hackathons that never
// defined their own judging dimensions. Equal weights keep the total a plain
// average until organizers tune them.
func DefaultCriteria(hackathonID uint) []Criterion {
	return []Criterion{
		{HackathonID: hackathonID, Name: "Innovation", Description: "Originality and creativity of the idea", Weight: 25},
		{HackathonID: hackathonID, Name: "Technical Execution", Description: "Quality and completeness of the implementation", Weight: 25},
		{HackathonID: hackathonID, Name: "Design & UX", Description: "Usability and polish of the user experience", Weight: 25},
		{HackathonID: hackathonID, Name: "Presentation", Description: "Clarity of the submission materials", Weight: 25},
	}
}
