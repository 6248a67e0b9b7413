package scoring

import (
	"sort"

	"github.com/noah-isme/hackjudge-api/internal/models"
)

// LeaderboardEntry is one ranked row. It is derived on demand from successful
// evaluations and never persisted.
type LeaderboardEntry struct {
	Rank       int             `json:"rank"`
	TeamID     uint            `json:"team_id"`
	TeamName   string          `json:"team_name"`
	TotalScore float64         `json:"total_score"`
	Scores     models.ScoreMap `json:"scores"`
}

// Rank orders entries by total score descending and assigns dense competition
// ranks: entries tied at the stored 2-decimal precision share a rank, and the
// next distinct score takes its 1-based sorted position. Scores
// [5.0, 5.0, 4.0] therefore rank [1, 1, 3].
func Rank(entries []LeaderboardEntry) []LeaderboardEntry {
	ranked := make([]LeaderboardEntry, len(entries))
	copy(ranked, entries)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalScore > ranked[j].TotalScore
	})

	for i := range ranked {
		if i > 0 && Round2(ranked[i].TotalScore) == Round2(ranked[i-1].TotalScore) {
			ranked[i].Rank = ranked[i-1].Rank
			continue
		}
		ranked[i].Rank = i + 1
	}

	return ranked
}
