package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hackjudge-api/internal/repository"
	"github.com/noah-isme/hackjudge-api/internal/scoring"
)

// LeaderboardService derives the tie-aware ranking from successful
// evaluations, with a short-lived redis cache in front of the computation.
type LeaderboardService interface {
	Leaderboard(ctx context.Context, hackathonID uint) ([]scoring.LeaderboardEntry, error)
	Invalidate(ctx context.Context, hackathonID uint) error
}

type leaderboardService struct {
	artifacts repository.ArtifactRepository
	teams     repository.TeamRepository
	redis     *redis.Client
	cacheTTL  time.Duration
	logger    zerolog.Logger
}

// NewLeaderboardService constructs the leaderboard service. A nil redis
// client disables caching.
func NewLeaderboardService(artifacts repository.ArtifactRepository, teams repository.TeamRepository, redisClient *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) LeaderboardService {
	return &leaderboardService{
		artifacts: artifacts,
		teams:     teams,
		redis:     redisClient,
		cacheTTL:  cacheTTL,
		logger:    logger.With().Str("component", "leaderboard_service").Logger(),
	}
}

func leaderboardCacheKey(hackathonID uint) string {
	return fmt.Sprintf("hackjudge:leaderboard:%d", hackathonID)
}

func (s *leaderboardService) Leaderboard(ctx context.Context, hackathonID uint) ([]scoring.LeaderboardEntry, error) {
	if cached, ok := s.fromCache(ctx, hackathonID); ok {
		return cached, nil
	}

	evaluations, err := s.artifacts.ListSuccessfulEvaluations(ctx, hackathonID)
	if err != nil {
		return nil, err
	}

	teams, err := s.teams.ListByHackathon(ctx, hackathonID)
	if err != nil {
		return nil, err
	}
	teamNames := make(map[uint]string, len(teams))
	for _, team := range teams {
		teamNames[team.ID] = team.Name
	}

	entries := make([]scoring.LeaderboardEntry, 0, len(evaluations))
	for _, evaluation := range evaluations {
		if evaluation.TeamID == nil || evaluation.TotalScore == nil {
			continue
		}
		entries = append(entries, scoring.LeaderboardEntry{
			TeamID:     *evaluation.TeamID,
			TeamName:   teamNames[*evaluation.TeamID],
			TotalScore: *evaluation.TotalScore,
			Scores:     evaluation.Scores,
		})
	}

	ranked := scoring.Rank(entries)
	s.toCache(ctx, hackathonID, ranked)
	return ranked, nil
}

// Invalidate drops the cached ranking; called whenever an evaluation reaches
// a terminal success.
func (s *leaderboardService) Invalidate(ctx context.Context, hackathonID uint) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Del(ctx, leaderboardCacheKey(hackathonID)).Err()
}

func (s *leaderboardService) fromCache(ctx context.Context, hackathonID uint) ([]scoring.LeaderboardEntry, bool) {
	if s.redis == nil {
		return nil, false
	}

	raw, err := s.redis.Get(ctx, leaderboardCacheKey(hackathonID)).Bytes()
	if err != nil {
		return nil, false
	}

	var entries []scoring.LeaderboardEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		s.logger.Warn().Err(err).Uint("hackathon_id", hackathonID).Msg("dropping unreadable leaderboard cache entry")
		_ = s.redis.Del(ctx, leaderboardCacheKey(hackathonID)).Err()
		return nil, false
	}

	return entries, true
}

func (s *leaderboardService) toCache(ctx context.Context, hackathonID uint, entries []scoring.LeaderboardEntry) {
	if s.redis == nil || s.cacheTTL <= 0 {
		return
	}

	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}

	if err := s.redis.Set(ctx, leaderboardCacheKey(hackathonID), raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("hackathon_id", hackathonID).Msg("failed to cache leaderboard")
	}
}
