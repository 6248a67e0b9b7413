package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/hackjudge-api/internal/models"
)

// TeamRepository reads hackathon teams.
type TeamRepository interface {
	GetByID(ctx context.Context, id uint) (models.Team, error)
	ListByHackathon(ctx context.Context, hackathonID uint) ([]models.Team, error)
}

// NewTeamRepository constructs a team repository.
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &teamRepository{db: db}
}

type teamRepository struct {
	db *gorm.DB
}

func (r *teamRepository) GetByID(ctx context.Context, id uint) (models.Team, error) {
	var team models.Team
	if err := r.db.WithContext(ctx).First(&team, id).Error; err != nil {
		return models.Team{}, err
	}
	return team, nil
}

func (r *teamRepository) ListByHackathon(ctx context.Context, hackathonID uint) ([]models.Team, error) {
	var teams []models.Team
	err := r.db.WithContext(ctx).
		Where("hackathon_id = ?", hackathonID).
		Order("name ASC").
		Find(&teams).Error
	if err != nil {
		return nil, err
	}
	return teams, nil
}
