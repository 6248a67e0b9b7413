// Package worker runs artifact generation off the request path. Provider
// calls take tens of seconds, so handlers only enqueue jobs and acknowledge;
// the pool drives each job to its terminal state in the background.
package worker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hackjudge-api/internal/models"
	"github.com/noah-isme/hackjudge-api/internal/service"
)

// CompletionSubject is the NATS subject artifact completion events go out on.
const CompletionSubject = "hackjudge.artifacts.completed"

// Job is one queued generation request.
type Job struct {
	Key           models.ArtifactKey
	Opts          service.GenerateOptions
	CorrelationID string
}

// CompletionEvent is the payload published when a job reaches a terminal
// state. Consumers poll the artifact record for the full content.
type CompletionEvent struct {
	Kind          models.ArtifactKind `json:"kind"`
	HackathonID   uint                `json:"hackathon_id"`
	TeamID        *uint               `json:"team_id,omitempty"`
	Status        string              `json:"status"`
	Synthetic     bool                `json:"synthetic"`
	CorrelationID string              `json:"correlation_id,omitempty"`
	CompletedAt   time.Time           `json:"completed_at"`
}

// Publisher abstracts the NATS connection for tests.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Pool is a fixed-size worker pool over a buffered job queue. Jobs for
// different keys run concurrently with no ordering guarantee; same-key
// exclusion is enforced by the store's conditional transition, not here.
type Pool struct {
	generator    service.GenerationService
	leaderboards service.LeaderboardService
	publisher    Publisher
	logger       zerolog.Logger
	jobs         chan Job
	wg           sync.WaitGroup
	workers      int
}

// NewPool builds a pool with the given worker count and queue capacity.
// The publisher and leaderboard service may be nil.
func NewPool(generator service.GenerationService, leaderboards service.LeaderboardService, publisher Publisher, workers, queueSize int, logger zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = 4
	}
	if queueSize <= 0 {
		queueSize = 64
	}

	return &Pool{
		generator:    generator,
		leaderboards: leaderboards,
		publisher:    publisher,
		logger:       logger.With().Str("component", "generation_pool").Logger(),
		jobs:         make(chan Job, queueSize),
		workers:      workers,
	}
}

// Start launches the workers. They drain the queue until ctx is cancelled.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run(ctx)
	}
}

// Enqueue adds a job without blocking. It reports false when the queue is
// full; callers translate that into a backpressure response.
func (p *Pool) Enqueue(job Job) bool {
	select {
	case p.jobs <- job:
		return true
	default:
		p.logger.Warn().Str("artifact", job.Key.String()).Msg("generation queue full, job rejected")
		return false
	}
}

// Wait blocks until all workers have exited after their context was
// cancelled. In-flight jobs finish; queued jobs are abandoned.
func (p *Pool) Wait() {
	p.wg.Wait()
}

func (p *Pool) run(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job := <-p.jobs:
			p.process(ctx, job)
		}
	}
}

func (p *Pool) process(ctx context.Context, job Job) {
	logger := p.logger.With().
		Str("artifact", job.Key.String()).
		Str("correlation_id", job.CorrelationID).
		Logger()

	artifact, err := p.generator.Generate(ctx, job.Key, job.Opts)
	if err != nil {
		logger.Error().Err(err).Msg("generation job failed before reaching a terminal state")
		return
	}

	logger.Info().Str("status", artifact.Status).Msg("generation job finished")

	if artifact.Kind == models.ArtifactKindTeamEvaluation && artifact.Status == models.ArtifactStatusSuccess && p.leaderboards != nil {
		if err := p.leaderboards.Invalidate(ctx, artifact.HackathonID); err != nil {
			logger.Warn().Err(err).Msg("failed to invalidate leaderboard cache")
		}
	}

	p.publish(artifact, job.CorrelationID)
}

func (p *Pool) publish(artifact models.Artifact, correlationID string) {
	if p.publisher == nil || !artifact.IsTerminal() {
		return
	}

	event := CompletionEvent{
		Kind:          artifact.Kind,
		HackathonID:   artifact.HackathonID,
		TeamID:        artifact.TeamID,
		Status:        artifact.Status,
		Synthetic:     artifact.IsSynthetic(),
		CorrelationID: correlationID,
		CompletedAt:   time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return
	}

	if err := p.publisher.Publish(CompletionSubject, payload); err != nil {
		p.logger.Warn().Err(err).Msg("failed to publish completion event")
	}
}

// NATSPublisher adapts a live NATS connection to the Publisher interface.
func NATSPublisher(conn *nats.Conn) Publisher {
	if conn == nil {
		return nil
	}
	return conn
}
