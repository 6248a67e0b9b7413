package dto

import (
	"time"

	"github.com/noah-isme/hackjudge-api/internal/models"
)

// GenerationRequest asks for one artifact to be generated in the background.
type GenerationRequest struct {
	Kind         string `json:"kind" validate:"required,oneof=team_summary team_evaluation team_blog hackathon_insight"`
	HackathonID  uint   `json:"hackathon_id" validate:"required,gt=0"`
	TeamID       *uint  `json:"team_id" validate:"omitempty,gt=0"`
	CriterionIDs []uint `json:"criterion_ids" validate:"omitempty,dive,gt=0"`
	Force        bool   `json:"force"`
}

// Key converts the request into the artifact identity tuple.
func (r GenerationRequest) Key() models.ArtifactKey {
	return models.ArtifactKey{
		HackathonID: r.HackathonID,
		Kind:        models.ArtifactKind(r.Kind),
		TeamID:      r.TeamID,
	}
}

// GenerationAck is the immediate response to a generation request; the
// terminal status is observed later via the artifact endpoints.
type GenerationAck struct {
	Kind        string `json:"kind"`
	HackathonID uint   `json:"hackathon_id"`
	TeamID      *uint  `json:"team_id,omitempty"`
	Queued      bool   `json:"queued"`
}

// ScoreEntryResponse is one criterion's judged score.
type ScoreEntryResponse struct {
	Score    float64 `json:"score"`
	Weight   float64 `json:"weight"`
	Feedback string  `json:"feedback"`
}

// ArtifactResponse exposes a generated artifact to API consumers.
type ArtifactResponse struct {
	ID          uint                          `json:"id"`
	Kind        string                        `json:"kind"`
	HackathonID uint                          `json:"hackathon_id"`
	TeamID      *uint                         `json:"team_id,omitempty"`
	Status      string                        `json:"status"`
	Content     string                        `json:"content,omitempty"`
	Scores      map[string]ScoreEntryResponse `json:"scores,omitempty"`
	TotalScore  *float64                      `json:"total_score,omitempty"`
	Comments    string                        `json:"comments,omitempty"`
	Synthetic   bool                          `json:"synthetic"`
	CreatedAt   time.Time                     `json:"created_at"`
	UpdatedAt   time.Time                     `json:"updated_at"`
}

// NewArtifactResponse builds a response DTO from the model.
func NewArtifactResponse(artifact models.Artifact) ArtifactResponse {
	response := ArtifactResponse{
		ID:          artifact.ID,
		Kind:        string(artifact.Kind),
		HackathonID: artifact.HackathonID,
		TeamID:      artifact.TeamID,
		Status:      artifact.Status,
		Content:     artifact.Content,
		TotalScore:  artifact.TotalScore,
		Comments:    artifact.Comments,
		Synthetic:   artifact.IsSynthetic(),
		CreatedAt:   artifact.CreatedAt,
		UpdatedAt:   artifact.UpdatedAt,
	}

	if len(artifact.Scores) > 0 {
		response.Scores = make(map[string]ScoreEntryResponse, len(artifact.Scores))
		for name, entry := range artifact.Scores {
			response.Scores[name] = ScoreEntryResponse{
				Score:    entry.Score,
				Weight:   entry.Weight,
				Feedback: entry.Feedback,
			}
		}
	}

	return response
}

// NewArtifactResponses maps a slice of artifacts.
func NewArtifactResponses(artifacts []models.Artifact) []ArtifactResponse {
	responses := make([]ArtifactResponse, 0, len(artifacts))
	for _, artifact := range artifacts {
		responses = append(responses, NewArtifactResponse(artifact))
	}
	return responses
}
