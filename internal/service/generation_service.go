package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/hackjudge-api/internal/models"
	"github.com/noah-isme/hackjudge-api/internal/repository"
	"github.com/noah-isme/hackjudge-api/internal/scoring"
	"github.com/noah-isme/hackjudge-api/pkg/ai"
)

// ErrUnknownArtifactKind indicates an unsupported artifact kind was requested.
var ErrUnknownArtifactKind = errors.New("unknown artifact kind")

// ErrTeamRequired indicates a team-scoped kind was requested without a team.
var ErrTeamRequired = errors.New("artifact kind requires a team")

// ErrTeamNotAllowed indicates a hackathon-scoped kind was requested with a team.
var ErrTeamNotAllowed = errors.New("artifact kind is hackathon-wide and takes no team")

// PrerequisiteError reports an unmet upstream dependency. The pipeline
// records it as a terminal failed state without ever contacting a provider.
type PrerequisiteError struct {
	Message string
}

func (e *PrerequisiteError) Error() string {
	return e.Message
}

// GenerateOptions tunes a single generation request.
type GenerateOptions struct {
	// Force restarts generation even when the artifact already succeeded.
	Force bool
	// CriterionIDs narrows an evaluation to explicitly chosen criteria.
	CriterionIDs []uint
}

// AIClient is the slice of the provider client the pipeline needs.
type AIClient interface {
	Generate(ctx context.Context, req ai.GenerationRequest) (raw string, provider string, err error)
}

// GenerationService drives the artifact state machine for all four kinds.
// Generate always lands the record in a terminal state; it returns an error
// only when the store itself is unreachable.
type GenerationService interface {
	Generate(ctx context.Context, key models.ArtifactKey, opts GenerateOptions) (models.Artifact, error)
	Get(ctx context.Context, key models.ArtifactKey) (models.Artifact, error)
	ListTeamArtifacts(ctx context.Context, teamID uint) ([]models.Artifact, error)
}

// GenerationConfig carries the pipeline knobs.
type GenerationConfig struct {
	// ProviderTimeout bounds a single provider call. Zero disables the bound.
	ProviderTimeout time.Duration
}

type generationService struct {
	artifacts   repository.ArtifactRepository
	submissions repository.SubmissionRepository
	criteria    repository.CriterionRepository
	teams       repository.TeamRepository
	client      AIClient
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	config      GenerationConfig
}

// NewGenerationService constructs the generation pipeline.
func NewGenerationService(
	artifacts repository.ArtifactRepository,
	submissions repository.SubmissionRepository,
	criteria repository.CriterionRepository,
	teams repository.TeamRepository,
	client AIClient,
	logger zerolog.Logger,
	cfg GenerationConfig,
) GenerationService {
	return &generationService{
		artifacts:   artifacts,
		submissions: submissions,
		criteria:    criteria,
		teams:       teams,
		client:      client,
		sanitizer:   bluemonday.UGCPolicy(),
		logger:      logger.With().Str("component", "generation_service").Logger(),
		config:      cfg,
	}
}

func (s *generationService) Generate(ctx context.Context, key models.ArtifactKey, opts GenerateOptions) (models.Artifact, error) {
	if err := validateKey(key); err != nil {
		return models.Artifact{}, err
	}

	logger := s.logger.With().Str("artifact", key.String()).Logger()

	artifact, err := s.artifacts.GetOrCreate(ctx, key)
	if err != nil {
		return models.Artifact{}, err
	}

	// Idempotency guard: a succeeded artifact is never regenerated unless
	// the caller forces it. No provider call, no overwrite.
	if artifact.Status == models.ArtifactStatusSuccess && !opts.Force {
		logger.Debug().Msg("artifact already generated, skipping")
		return artifact, nil
	}

	input, err := s.prepare(ctx, key, opts)
	if err != nil {
		var prereq *PrerequisiteError
		if errors.As(err, &prereq) {
			logger.Warn().Str("reason", prereq.Message).Msg("prerequisite unmet")
			return s.finalize(ctx, artifact, artifact.Status, models.ArtifactStatusFailed, failurePatch(prereq.Message))
		}
		return models.Artifact{}, err
	}

	// Claim the key before any external call. Losing this conditional
	// update means another request is already driving the state machine.
	claimed, err := s.artifacts.TransitionStatus(ctx, artifact.ID, artifact.Status, models.ArtifactStatusProcessing, repository.ArtifactPatch{})
	if err != nil {
		return models.Artifact{}, err
	}
	if !claimed {
		logger.Info().Msg("artifact already being generated by another request")
		return s.artifacts.GetByID(ctx, artifact.ID)
	}

	callCtx := ctx
	if s.config.ProviderTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.config.ProviderTimeout)
		defer cancel()
	}

	raw, provider, callErr := s.client.Generate(callCtx, input.request(key))

	if input.shape == ai.ShapeEvaluation {
		return s.completeEvaluation(ctx, artifact, input, raw, provider, callErr)
	}
	return s.completeDocument(ctx, artifact, key.Kind, raw, provider, callErr)
}

func (s *generationService) Get(ctx context.Context, key models.ArtifactKey) (models.Artifact, error) {
	if err := validateKey(key); err != nil {
		return models.Artifact{}, err
	}
	return s.artifacts.Get(ctx, key)
}

func (s *generationService) ListTeamArtifacts(ctx context.Context, teamID uint) ([]models.Artifact, error) {
	return s.artifacts.ListByTeam(ctx, teamID)
}

func validateKey(key models.ArtifactKey) error {
	if !key.Kind.Valid() {
		return ErrUnknownArtifactKind
	}
	if key.Kind.TeamScoped() && key.TeamID == nil {
		return ErrTeamRequired
	}
	if !key.Kind.TeamScoped() && key.TeamID != nil {
		return ErrTeamNotAllowed
	}
	return nil
}

// completeDocument lands a plain-text artifact (summary, blog, insight) in
// its terminal state.
func (s *generationService) completeDocument(ctx context.Context, artifact models.Artifact, kind models.ArtifactKind, raw, provider string, callErr error) (models.Artifact, error) {
	if callErr != nil {
		message := fmt.Sprintf("generation failed: %v", callErr)
		return s.finalize(ctx, artifact, models.ArtifactStatusProcessing, models.ArtifactStatusFailed, failurePatch(message))
	}

	content := raw
	if kind == models.ArtifactKindTeamBlog || kind == models.ArtifactKindHackathonInsight {
		// Published documents must not smuggle active HTML through markdown.
		content = s.sanitizer.Sanitize(raw)
	}

	patch := repository.ArtifactPatch{
		Content: &content,
		Meta: datatypes.JSONMap{
			"provider":  provider,
			"synthetic": provider == "offline",
		},
	}
	return s.finalize(ctx, artifact, models.ArtifactStatusProcessing, models.ArtifactStatusSuccess, patch)
}

// completeEvaluation lands an evaluation artifact. Provider failures and
// unparseable responses both degrade to a synthetic evaluation rather than a
// failure: the product choice is to always show a score, clearly tagged as
// synthetic in the record metadata.
func (s *generationService) completeEvaluation(ctx context.Context, artifact models.Artifact, input promptInput, raw, provider string, callErr error) (models.Artifact, error) {
	var payload ai.EvaluationPayload
	extractErr := callErr
	if extractErr == nil {
		payload, extractErr = ai.ExtractEvaluation(raw)
	}

	if extractErr != nil {
		s.logger.Warn().Err(extractErr).Str("artifact", artifact.Key().String()).Msg("falling back to synthetic evaluation")
		return s.finalizeSyntheticEvaluation(ctx, artifact, input, provider, extractErr)
	}

	scores := make(models.ScoreMap, len(input.criteria))
	for _, criterion := range input.criteria {
		entry, ok := payload.Scores[criterion.Name]
		if !ok {
			// The model skipped a requested criterion; fill it in
			// deterministically instead of dropping the dimension.
			scores[criterion.Name] = models.ScoreEntry{
				Score:    ai.SyntheticScore(input.subject + "/" + criterion.Name),
				Weight:   criterion.Weight,
				Feedback: ai.SyntheticFeedback(criterion.Name, input.subject),
			}
			continue
		}

		scores[criterion.Name] = models.ScoreEntry{
			Score:    clampScore(entry.Score),
			Weight:   criterion.Weight,
			Feedback: entry.Feedback,
		}
	}

	// The model's own total_score is informational only; the stored total
	// is always recomputed here.
	total := scoring.WeightedAverage(scores)
	if total == nil {
		s.logger.Error().Str("artifact", artifact.Key().String()).Msg("evaluation has zero total weight")
	}

	comments := payload.Comments
	patch := repository.ArtifactPatch{
		Scores:     scores,
		TotalScore: total,
		ClearTotal: total == nil,
		Comments:   &comments,
		Meta: datatypes.JSONMap{
			"provider":    provider,
			"synthetic":   provider == "offline",
			"model_total": payload.TotalScore,
		},
	}
	return s.finalize(ctx, artifact, models.ArtifactStatusProcessing, models.ArtifactStatusSuccess, patch)
}

func (s *generationService) finalizeSyntheticEvaluation(ctx context.Context, artifact models.Artifact, input promptInput, provider string, cause error) (models.Artifact, error) {
	scores := make(models.ScoreMap, len(input.criteria))
	for _, criterion := range input.criteria {
		scores[criterion.Name] = models.ScoreEntry{
			Score:    ai.SyntheticScore(input.subject + "/" + criterion.Name),
			Weight:   criterion.Weight,
			Feedback: ai.SyntheticFeedback(criterion.Name, input.subject),
		}
	}

	total := scoring.WeightedAverage(scores)
	comments := fmt.Sprintf("Synthetic evaluation: the AI response could not be used (%v). Scores are deterministic placeholders pending a judge's review.", cause)

	patch := repository.ArtifactPatch{
		Scores:     scores,
		TotalScore: total,
		ClearTotal: total == nil,
		Comments:   &comments,
		Meta: datatypes.JSONMap{
			"provider":  provider,
			"synthetic": true,
			"cause":     cause.Error(),
		},
	}
	return s.finalize(ctx, artifact, models.ArtifactStatusProcessing, models.ArtifactStatusSuccess, patch)
}

// finalize applies the terminal transition and re-reads the record. A lost
// conditional update here means another request took over the key mid-flight;
// the stored row wins either way.
func (s *generationService) finalize(ctx context.Context, artifact models.Artifact, expected, next string, patch repository.ArtifactPatch) (models.Artifact, error) {
	ok, err := s.artifacts.TransitionStatus(ctx, artifact.ID, expected, next, patch)
	if err != nil {
		return models.Artifact{}, err
	}
	if !ok {
		s.logger.Warn().
			Str("artifact", artifact.Key().String()).
			Str("expected", expected).
			Str("next", next).
			Msg("terminal transition lost the conditional update")
	}

	return s.artifacts.GetByID(ctx, artifact.ID)
}

func failurePatch(message string) repository.ArtifactPatch {
	return repository.ArtifactPatch{
		Content:  &message,
		Comments: &message,
	}
}

func clampScore(score float64) float64 {
	if score < 1.0 {
		return 1.0
	}
	if score > 5.0 {
		return 5.0
	}
	return score
}
