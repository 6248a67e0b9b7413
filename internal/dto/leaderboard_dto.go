package dto

import "github.com/noah-isme/hackjudge-api/internal/scoring"

// LeaderboardEntryResponse is one ranked leaderboard row.
type LeaderboardEntryResponse struct {
	Rank       int                           `json:"rank"`
	TeamID     uint                          `json:"team_id"`
	TeamName   string                        `json:"team_name"`
	TotalScore float64                       `json:"total_score"`
	Scores     map[string]ScoreEntryResponse `json:"scores,omitempty"`
}

// NewLeaderboardResponse maps ranked entries into the API shape.
func NewLeaderboardResponse(entries []scoring.LeaderboardEntry) []LeaderboardEntryResponse {
	responses := make([]LeaderboardEntryResponse, 0, len(entries))
	for _, entry := range entries {
		response := LeaderboardEntryResponse{
			Rank:       entry.Rank,
			TeamID:     entry.TeamID,
			TeamName:   entry.TeamName,
			TotalScore: entry.TotalScore,
		}
		if len(entry.Scores) > 0 {
			response.Scores = make(map[string]ScoreEntryResponse, len(entry.Scores))
			for name, score := range entry.Scores {
				response.Scores[name] = ScoreEntryResponse{
					Score:    score.Score,
					Weight:   score.Weight,
					Feedback: score.Feedback,
				}
			}
		}
		responses = append(responses, response)
	}
	return responses
}
