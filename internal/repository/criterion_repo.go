package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/hackjudge-api/internal/models"
)

// CriterionRepository manages a hackathon's judging criteria.
type CriterionRepository interface {
	ListByHackathon(ctx context.Context, hackathonID uint) ([]models.Criterion, error)
	ListByIDs(ctx context.Context, hackathonID uint, ids []uint) ([]models.Criterion, error)
	ProvisionDefaults(ctx context.Context, hackathonID uint) ([]models.Criterion, error)
}

// NewCriterionRepository constructs a criterion repository.
func NewCriterionRepository(db *gorm.DB) CriterionRepository {
	return &criterionRepository{db: db}
}

type criterionRepository struct {
	db *gorm.DB
}

func (r *criterionRepository) ListByHackathon(ctx context.Context, hackathonID uint) ([]models.Criterion, error) {
	var criteria []models.Criterion
	err := r.db.WithContext(ctx).
		Where("hackathon_id = ?", hackathonID).
		Order("id ASC").
		Find(&criteria).Error
	if err != nil {
		return nil, err
	}
	return criteria, nil
}

func (r *criterionRepository) ListByIDs(ctx context.Context, hackathonID uint, ids []uint) ([]models.Criterion, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var criteria []models.Criterion
	err := r.db.WithContext(ctx).
		Where("hackathon_id = ?", hackathonID).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&criteria).Error
	if err != nil {
		return nil, err
	}
	return criteria, nil
}

// ProvisionDefaults inserts the default criteria set for a hackathon that has
// none, then returns the stored rows.
func (r *criterionRepository) ProvisionDefaults(ctx context.Context, hackathonID uint) ([]models.Criterion, error) {
	defaults := models.DefaultCriteria(hackathonID)
	if err := r.db.WithContext(ctx).Create(&defaults).Error; err != nil {
		return nil, err
	}
	return defaults, nil
}
