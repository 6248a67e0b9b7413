package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/hackjudge-api/internal/models"
)

func setupArtifactTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_pragma=foreign_keys(1)&mode=memory&test="+t.Name()), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.Hackathon{}, &models.Team{}, &models.Submission{}, &models.Criterion{}, &models.Artifact{}))
	return db
}

func teamKey(hackathonID, teamID uint, kind models.ArtifactKind) models.ArtifactKey {
	return models.ArtifactKey{HackathonID: hackathonID, Kind: kind, TeamID: &teamID}
}

func TestArtifactRepositoryGetOrCreateIsIdempotent(t *testing.T) {
	db := setupArtifactTestDB(t)
	repo := NewArtifactRepository(db)
	ctx := context.Background()

	key := teamKey(1, 7, models.ArtifactKindTeamSummary)

	first, err := repo.GetOrCreate(ctx, key)
	require.NoError(t, err)
	require.NotZero(t, first.ID)
	require.Equal(t, models.ArtifactStatusPending, first.Status)

	second, err := repo.GetOrCreate(ctx, key)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.Artifact{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestArtifactRepositoryHackathonScopedKeyHasNoTeam(t *testing.T) {
	db := setupArtifactTestDB(t)
	repo := NewArtifactRepository(db)
	ctx := context.Background()

	key := models.ArtifactKey{HackathonID: 1, Kind: models.ArtifactKindHackathonInsight}

	created, err := repo.GetOrCreate(ctx, key)
	require.NoError(t, err)
	require.Nil(t, created.TeamID)

	found, err := repo.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, created.ID, found.ID)
}

func TestArtifactRepositoryTransitionStatusIsConditional(t *testing.T) {
	db := setupArtifactTestDB(t)
	repo := NewArtifactRepository(db)
	ctx := context.Background()

	artifact, err := repo.GetOrCreate(ctx, teamKey(1, 7, models.ArtifactKindTeamSummary))
	require.NoError(t, err)

	ok, err := repo.TransitionStatus(ctx, artifact.ID, models.ArtifactStatusPending, models.ArtifactStatusProcessing, ArtifactPatch{})
	require.NoError(t, err)
	require.True(t, ok)

	// A second caller still expecting "pending" loses the race.
	ok, err = repo.TransitionStatus(ctx, artifact.ID, models.ArtifactStatusPending, models.ArtifactStatusProcessing, ArtifactPatch{})
	require.NoError(t, err)
	require.False(t, ok, "transition from a stale expected status must not fire")

	content := "# Summary"
	ok, err = repo.TransitionStatus(ctx, artifact.ID, models.ArtifactStatusProcessing, models.ArtifactStatusSuccess, ArtifactPatch{Content: &content})
	require.NoError(t, err)
	require.True(t, ok)

	stored, err := repo.GetByID(ctx, artifact.ID)
	require.NoError(t, err)
	require.Equal(t, models.ArtifactStatusSuccess, stored.Status)
	require.Equal(t, "# Summary", stored.Content)
}

func TestArtifactRepositoryTransitionWritesScoresPayload(t *testing.T) {
	db := setupArtifactTestDB(t)
	repo := NewArtifactRepository(db)
	ctx := context.Background()

	artifact, err := repo.GetOrCreate(ctx, teamKey(2, 9, models.ArtifactKindTeamEvaluation))
	require.NoError(t, err)

	_, err = repo.TransitionStatus(ctx, artifact.ID, models.ArtifactStatusPending, models.ArtifactStatusProcessing, ArtifactPatch{})
	require.NoError(t, err)

	total := 4.57
	comments := "Strong entry"
	scores := models.ScoreMap{
		"Innovation": {Score: 4.0, Weight: 3, Feedback: "Fresh idea"},
		"Technical":  {Score: 5.0, Weight: 4, Feedback: "Clean build"},
	}

	ok, err := repo.TransitionStatus(ctx, artifact.ID, models.ArtifactStatusProcessing, models.ArtifactStatusSuccess, ArtifactPatch{
		Scores:     scores,
		TotalScore: &total,
		Comments:   &comments,
	})
	require.NoError(t, err)
	require.True(t, ok)

	stored, err := repo.GetByID(ctx, artifact.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.TotalScore)
	require.Equal(t, 4.57, *stored.TotalScore)
	require.Equal(t, 4.0, stored.Scores["Innovation"].Score)
	require.Equal(t, "Clean build", stored.Scores["Technical"].Feedback)
}

func TestArtifactRepositoryListSuccessfulEvaluations(t *testing.T) {
	db := setupArtifactTestDB(t)
	repo := NewArtifactRepository(db)
	ctx := context.Background()

	seed := func(teamID uint, status string, total *float64) {
		artifact := models.Artifact{
			HackathonID: 1,
			Kind:        models.ArtifactKindTeamEvaluation,
			TeamID:      &teamID,
			Status:      status,
			TotalScore:  total,
		}
		require.NoError(t, db.Create(&artifact).Error)
	}

	high := 4.8
	low := 3.2
	seed(1, models.ArtifactStatusSuccess, &high)
	seed(2, models.ArtifactStatusSuccess, &low)
	seed(3, models.ArtifactStatusFailed, nil)
	seed(4, models.ArtifactStatusProcessing, nil)

	evaluations, err := repo.ListSuccessfulEvaluations(ctx, 1)
	require.NoError(t, err)
	require.Len(t, evaluations, 2)

	count, err := repo.CountSuccessful(ctx, 1, models.ArtifactKindTeamEvaluation)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)
}
