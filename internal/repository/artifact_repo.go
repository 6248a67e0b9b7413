package repository

import (
	"context"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/hackjudge-api/internal/models"
)

// ArtifactPatch carries the fields written together with a status transition.
// Nil fields are left untouched.
type ArtifactPatch struct {
	Content    *string
	Scores     models.ScoreMap
	TotalScore *float64
	ClearTotal bool
	Comments   *string
	Meta       datatypes.JSONMap
}

// ArtifactRepository persists generated artifacts. TransitionStatus is the
// single mutation primitive: a conditional update that only fires when the
// row is still in the expected state, which is what keeps two concurrent
// generation requests for the same key from clobbering each other.
type ArtifactRepository interface {
	GetOrCreate(ctx context.Context, key models.ArtifactKey) (models.Artifact, error)
	Get(ctx context.Context, key models.ArtifactKey) (models.Artifact, error)
	GetByID(ctx context.Context, id uint) (models.Artifact, error)
	TransitionStatus(ctx context.Context, id uint, expected, next string, patch ArtifactPatch) (bool, error)
	ListByTeam(ctx context.Context, teamID uint) ([]models.Artifact, error)
	ListSuccessfulEvaluations(ctx context.Context, hackathonID uint) ([]models.Artifact, error)
	CountSuccessful(ctx context.Context, hackathonID uint, kind models.ArtifactKind) (int64, error)
}

// NewArtifactRepository constructs an artifact repository.
func NewArtifactRepository(db *gorm.DB) ArtifactRepository {
	return &artifactRepository{db: db}
}

type artifactRepository struct {
	db *gorm.DB
}

func (r *artifactRepository) keyQuery(ctx context.Context, key models.ArtifactKey) *gorm.DB {
	query := r.db.WithContext(ctx).
		Where("hackathon_id = ?", key.HackathonID).
		Where("kind = ?", key.Kind)

	if key.TeamID != nil {
		return query.Where("team_id = ?", *key.TeamID)
	}
	return query.Where("team_id IS NULL")
}

func (r *artifactRepository) GetOrCreate(ctx context.Context, key models.ArtifactKey) (models.Artifact, error) {
	var artifact models.Artifact
	err := r.keyQuery(ctx, key).First(&artifact).Error
	if err == nil {
		return artifact, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Artifact{}, err
	}

	artifact = models.Artifact{
		HackathonID: key.HackathonID,
		Kind:        key.Kind,
		TeamID:      key.TeamID,
		Status:      models.ArtifactStatusPending,
	}

	// DoNothing absorbs the race where another request created the row
	// between our read and insert; re-read to get whichever row won.
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&artifact).Error
	if err != nil {
		return models.Artifact{}, err
	}

	if artifact.ID == 0 {
		if err := r.keyQuery(ctx, key).First(&artifact).Error; err != nil {
			return models.Artifact{}, err
		}
	}

	return artifact, nil
}

func (r *artifactRepository) Get(ctx context.Context, key models.ArtifactKey) (models.Artifact, error) {
	var artifact models.Artifact
	if err := r.keyQuery(ctx, key).First(&artifact).Error; err != nil {
		return models.Artifact{}, err
	}
	return artifact, nil
}

func (r *artifactRepository) GetByID(ctx context.Context, id uint) (models.Artifact, error) {
	var artifact models.Artifact
	if err := r.db.WithContext(ctx).First(&artifact, id).Error; err != nil {
		return models.Artifact{}, err
	}
	return artifact, nil
}

func (r *artifactRepository) TransitionStatus(ctx context.Context, id uint, expected, next string, patch ArtifactPatch) (bool, error) {
	values := map[string]interface{}{"status": next}

	if patch.Content != nil {
		values["content"] = *patch.Content
	}
	if patch.Scores != nil {
		values["scores"] = patch.Scores
	}
	if patch.TotalScore != nil {
		values["total_score"] = *patch.TotalScore
	} else if patch.ClearTotal {
		values["total_score"] = nil
	}
	if patch.Comments != nil {
		values["comments"] = *patch.Comments
	}
	if patch.Meta != nil {
		values["meta"] = patch.Meta
	}

	result := r.db.WithContext(ctx).
		Model(&models.Artifact{}).
		Where("id = ?", id).
		Where("status = ?", expected).
		Updates(values)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *artifactRepository) ListByTeam(ctx context.Context, teamID uint) ([]models.Artifact, error) {
	var artifacts []models.Artifact
	err := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("kind ASC").
		Find(&artifacts).Error
	if err != nil {
		return nil, err
	}
	return artifacts, nil
}

func (r *artifactRepository) ListSuccessfulEvaluations(ctx context.Context, hackathonID uint) ([]models.Artifact, error) {
	var artifacts []models.Artifact
	err := r.db.WithContext(ctx).
		Where("hackathon_id = ?", hackathonID).
		Where("kind = ?", models.ArtifactKindTeamEvaluation).
		Where("status = ?", models.ArtifactStatusSuccess).
		Find(&artifacts).Error
	if err != nil {
		return nil, err
	}
	return artifacts, nil
}

func (r *artifactRepository) CountSuccessful(ctx context.Context, hackathonID uint, kind models.ArtifactKind) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Artifact{}).
		Where("hackathon_id = ?", hackathonID).
		Where("kind = ?", kind).
		Where("status = ?", models.ArtifactStatusSuccess).
		Count(&count).Error
	return count, err
}
