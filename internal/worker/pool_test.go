package worker

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hackjudge-api/internal/models"
	"github.com/noah-isme/hackjudge-api/internal/scoring"
	"github.com/noah-isme/hackjudge-api/internal/service"
)

type stubGenerator struct {
	mu     sync.Mutex
	result models.Artifact
	keys   []models.ArtifactKey
	done   chan struct{}
}

func (s *stubGenerator) Generate(ctx context.Context, key models.ArtifactKey, opts service.GenerateOptions) (models.Artifact, error) {
	s.mu.Lock()
	s.keys = append(s.keys, key)
	s.mu.Unlock()
	if s.done != nil {
		s.done <- struct{}{}
	}
	return s.result, nil
}

func (s *stubGenerator) Get(ctx context.Context, key models.ArtifactKey) (models.Artifact, error) {
	return s.result, nil
}

func (s *stubGenerator) ListTeamArtifacts(ctx context.Context, teamID uint) ([]models.Artifact, error) {
	return nil, nil
}

type stubLeaderboards struct {
	mu          sync.Mutex
	invalidated []uint
}

func (s *stubLeaderboards) Leaderboard(ctx context.Context, hackathonID uint) ([]scoring.LeaderboardEntry, error) {
	return nil, nil
}

func (s *stubLeaderboards) Invalidate(ctx context.Context, hackathonID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidated = append(s.invalidated, hackathonID)
	return nil
}

type stubPublisher struct {
	mu       sync.Mutex
	messages [][]byte
}

func (s *stubPublisher) Publish(subject string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, data)
	return nil
}

func waitFor(t *testing.T, done chan struct{}, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for jobs to complete")
		}
	}
	// Give the worker a beat to run post-generation hooks.
	time.Sleep(50 * time.Millisecond)
}

func TestPoolProcessesQueuedJobs(t *testing.T) {
	teamID := uint(7)
	generator := &stubGenerator{
		done: make(chan struct{}, 8),
		result: models.Artifact{
			HackathonID: 1,
			Kind:        models.ArtifactKindTeamSummary,
			TeamID:      &teamID,
			Status:      models.ArtifactStatusSuccess,
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := NewPool(generator, nil, nil, 2, 8, zerolog.Nop())
	pool.Start(ctx)

	for i := 0; i < 3; i++ {
		require.True(t, pool.Enqueue(Job{Key: models.ArtifactKey{HackathonID: 1, Kind: models.ArtifactKindTeamSummary, TeamID: &teamID}}))
	}
	waitFor(t, generator.done, 3)

	generator.mu.Lock()
	defer generator.mu.Unlock()
	require.Len(t, generator.keys, 3)
}

func TestPoolRejectsWhenQueueFull(t *testing.T) {
	generator := &stubGenerator{result: models.Artifact{Status: models.ArtifactStatusSuccess}}
	pool := NewPool(generator, nil, nil, 1, 1, zerolog.Nop())
	// Not started: the queue holds one job and then refuses.

	require.True(t, pool.Enqueue(Job{}))
	require.False(t, pool.Enqueue(Job{}))
}

func TestPoolInvalidatesLeaderboardOnEvaluationSuccess(t *testing.T) {
	teamID := uint(7)
	generator := &stubGenerator{
		done: make(chan struct{}, 1),
		result: models.Artifact{
			HackathonID: 3,
			Kind:        models.ArtifactKindTeamEvaluation,
			TeamID:      &teamID,
			Status:      models.ArtifactStatusSuccess,
		},
	}
	leaderboards := &stubLeaderboards{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := NewPool(generator, leaderboards, nil, 1, 4, zerolog.Nop())
	pool.Start(ctx)

	require.True(t, pool.Enqueue(Job{Key: models.ArtifactKey{HackathonID: 3, Kind: models.ArtifactKindTeamEvaluation, TeamID: &teamID}}))
	waitFor(t, generator.done, 1)

	leaderboards.mu.Lock()
	defer leaderboards.mu.Unlock()
	require.Equal(t, []uint{3}, leaderboards.invalidated)
}

func TestPoolPublishesCompletionEvent(t *testing.T) {
	teamID := uint(7)
	generator := &stubGenerator{
		done: make(chan struct{}, 1),
		result: models.Artifact{
			HackathonID: 1,
			Kind:        models.ArtifactKindTeamBlog,
			TeamID:      &teamID,
			Status:      models.ArtifactStatusFailed,
		},
	}
	publisher := &stubPublisher{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := NewPool(generator, nil, publisher, 1, 4, zerolog.Nop())
	pool.Start(ctx)

	require.True(t, pool.Enqueue(Job{
		Key:           models.ArtifactKey{HackathonID: 1, Kind: models.ArtifactKindTeamBlog, TeamID: &teamID},
		CorrelationID: "corr-1",
	}))
	waitFor(t, generator.done, 1)

	publisher.mu.Lock()
	defer publisher.mu.Unlock()
	require.Len(t, publisher.messages, 1)

	var event CompletionEvent
	require.NoError(t, json.Unmarshal(publisher.messages[0], &event))
	require.Equal(t, models.ArtifactKindTeamBlog, event.Kind)
	require.Equal(t, models.ArtifactStatusFailed, event.Status)
	require.Equal(t, "corr-1", event.CorrelationID)
}

func TestPoolStopsWhenContextCancelled(t *testing.T) {
	generator := &stubGenerator{result: models.Artifact{Status: models.ArtifactStatusSuccess}}
	pool := NewPool(generator, nil, nil, 2, 4, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)
	cancel()

	finished := make(chan struct{})
	go func() {
		pool.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not stop after context cancellation")
	}
}
