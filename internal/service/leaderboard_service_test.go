package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hackjudge-api/internal/models"
)

func newLeaderboardFixture(t *testing.T) (*stubArtifactRepo, *stubTeamRepo, *redis.Client) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return newStubArtifactRepo(), &stubTeamRepo{teams: map[uint]models.Team{}}, client
}

func seedEvaluation(artifacts *stubArtifactRepo, teamID uint, total float64) {
	artifacts.seed(models.Artifact{
		HackathonID: 1,
		Kind:        models.ArtifactKindTeamEvaluation,
		TeamID:      &teamID,
		Status:      models.ArtifactStatusSuccess,
		TotalScore:  &total,
		Scores: models.ScoreMap{
			"Innovation": {Score: total, Weight: 25, Feedback: "solid"},
		},
	})
}

func TestLeaderboardRanksSuccessfulEvaluations(t *testing.T) {
	artifacts, teams, client := newLeaderboardFixture(t)
	teams.teams[1] = models.Team{ID: 1, HackathonID: 1, Name: "Alpha"}
	teams.teams[2] = models.Team{ID: 2, HackathonID: 1, Name: "Beta"}
	teams.teams[3] = models.Team{ID: 3, HackathonID: 1, Name: "Gamma"}

	seedEvaluation(artifacts, 1, 5.0)
	seedEvaluation(artifacts, 2, 5.0)
	seedEvaluation(artifacts, 3, 4.0)

	svc := NewLeaderboardService(artifacts, teams, client, time.Minute, zerolog.Nop())

	entries, err := svc.Leaderboard(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, 1, entries[0].Rank)
	require.Equal(t, 1, entries[1].Rank)
	require.Equal(t, 3, entries[2].Rank)
	require.Equal(t, "Gamma", entries[2].TeamName)
}

func TestLeaderboardSkipsEvaluationsWithoutTotal(t *testing.T) {
	artifacts, teams, client := newLeaderboardFixture(t)
	teams.teams[1] = models.Team{ID: 1, HackathonID: 1, Name: "Alpha"}
	teams.teams[2] = models.Team{ID: 2, HackathonID: 1, Name: "Beta"}

	seedEvaluation(artifacts, 1, 4.2)
	teamID := uint(2)
	artifacts.seed(models.Artifact{
		HackathonID: 1,
		Kind:        models.ArtifactKindTeamEvaluation,
		TeamID:      &teamID,
		Status:      models.ArtifactStatusSuccess,
	})

	svc := NewLeaderboardService(artifacts, teams, client, time.Minute, zerolog.Nop())

	entries, err := svc.Leaderboard(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "Alpha", entries[0].TeamName)
}

func TestLeaderboardServesFromCache(t *testing.T) {
	artifacts, teams, client := newLeaderboardFixture(t)
	teams.teams[1] = models.Team{ID: 1, HackathonID: 1, Name: "Alpha"}
	seedEvaluation(artifacts, 1, 4.2)

	svc := NewLeaderboardService(artifacts, teams, client, time.Minute, zerolog.Nop())

	first, err := svc.Leaderboard(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// New evaluations are invisible until the cache is invalidated.
	seedEvaluation(artifacts, 2, 4.9)
	teams.teams[2] = models.Team{ID: 2, HackathonID: 1, Name: "Beta"}

	cached, err := svc.Leaderboard(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, cached, 1)

	require.NoError(t, svc.Invalidate(context.Background(), 1))

	fresh, err := svc.Leaderboard(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, fresh, 2)
	require.Equal(t, "Beta", fresh[0].TeamName)
}

func TestLeaderboardWorksWithoutRedis(t *testing.T) {
	artifacts := newStubArtifactRepo()
	teams := &stubTeamRepo{teams: map[uint]models.Team{1: {ID: 1, HackathonID: 1, Name: "Alpha"}}}
	seedEvaluation(artifacts, 1, 4.2)

	svc := NewLeaderboardService(artifacts, teams, nil, time.Minute, zerolog.Nop())

	entries, err := svc.Leaderboard(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NoError(t, svc.Invalidate(context.Background(), 1))
}
