package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/hackjudge-api/internal/models"
)

// SubmissionRepository reads team submissions. Writes happen in the ingestion
// side of the platform; the generation core only consumes processed rows.
type SubmissionRepository interface {
	ListSuccessful(ctx context.Context, teamID uint) ([]models.Submission, error)
	Create(ctx context.Context, submission *models.Submission) error
}

// NewSubmissionRepository constructs a submission repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

type submissionRepository struct {
	db *gorm.DB
}

func (r *submissionRepository) ListSuccessful(ctx context.Context, teamID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Where("status = ?", models.SubmissionStatusSuccess).
		Order("created_at ASC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}
