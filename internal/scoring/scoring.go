// Package scoring holds the pure score arithmetic shared by the evaluation
// pipeline and the leaderboard: weighted totals and dense competition ranking.
package scoring

import (
	"math"

	"github.com/noah-isme/hackjudge-api/internal/models"
)

// WeightedAverage computes the authoritative total for an evaluation:
// round(sum(score*weight) / sum(weight), 2). It returns nil for an empty map
// or a non-positive total weight, so a degenerate criteria set reads as "no
// score" instead of dividing by zero. Callers must use this over any
// total reported by the model itself.
func WeightedAverage(scores models.ScoreMap) *float64 {
	if len(scores) == 0 {
		return nil
	}

	var weightedSum, totalWeight float64
	for _, entry := range scores {
		weightedSum += entry.Score * entry.Weight
		totalWeight += entry.Weight
	}

	if totalWeight <= 0 {
		return nil
	}

	total := Round2(weightedSum / totalWeight)
	return &total
}

// Round2 rounds to two decimal places, the precision scores are stored and
// compared at.
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}
