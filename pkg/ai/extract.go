package ai

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ScoreField mirrors one criterion entry inside a model-produced evaluation.
type ScoreField struct {
	Score    float64 `json:"score"`
	Weight   float64 `json:"weight"`
	Feedback string  `json:"feedback"`
}

// EvaluationPayload is the JSON contract exchanged with the AI layer for
// evaluations: exactly the keys scores, total_score, and comments. The
// total_score field is informational; pipelines recompute the authoritative
// total locally.
type EvaluationPayload struct {
	Scores     map[string]ScoreField `json:"scores"`
	TotalScore float64               `json:"total_score"`
	Comments   string                `json:"comments"`
}

const evaluationSchema = `{
	"type": "object",
	"required": ["scores", "total_score"],
	"properties": {
		"scores": {
			"type": "object",
			"minProperties": 1,
			"additionalProperties": {
				"type": "object",
				"required": ["score"],
				"properties": {
					"score": {"type": "number"},
					"weight": {"type": "number"},
					"feedback": {"type": "string"}
				}
			}
		},
		"total_score": {"type": "number"},
		"comments": {"type": "string"}
	}
}`

var (
	evaluationJSONSchema = jsonschema.MustCompileString("evaluation.json", evaluationSchema)
	fencedBlockPattern   = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
)

// ExtractEvaluation parses raw model output into an evaluation payload. Models
// frequently wrap the JSON object in prose or markdown fences, so strategies
// are tried in order until one yields a schema-valid object:
//
//  1. the whole text parsed as JSON
//  2. the interior of a fenced code block
//  3. the first brace-balanced substring containing both "scores" and
//     "total_score"
//
// When every strategy fails an ExtractionError is returned and the caller
// decides whether to fail the artifact or synthesize a fallback.
func ExtractEvaluation(raw string) (EvaluationPayload, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return EvaluationPayload{}, &ExtractionError{Reason: "empty response"}
	}

	for _, candidate := range extractionCandidates(trimmed) {
		payload, ok := parseEvaluationCandidate(candidate)
		if ok {
			return payload, nil
		}
	}

	return EvaluationPayload{}, &ExtractionError{Reason: "no parseable evaluation object found in response"}
}

func extractionCandidates(trimmed string) []string {
	candidates := []string{trimmed}

	for _, match := range fencedBlockPattern.FindAllStringSubmatch(trimmed, -1) {
		if block := strings.TrimSpace(match[1]); block != "" {
			candidates = append(candidates, block)
		}
	}

	if object := balancedObjectWithKeys(trimmed, `"scores"`, `"total_score"`); object != "" {
		candidates = append(candidates, object)
	}

	return candidates
}

func parseEvaluationCandidate(candidate string) (EvaluationPayload, bool) {
	var generic interface{}
	if err := json.Unmarshal([]byte(candidate), &generic); err != nil {
		return EvaluationPayload{}, false
	}

	if err := evaluationJSONSchema.Validate(generic); err != nil {
		return EvaluationPayload{}, false
	}

	var payload EvaluationPayload
	if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
		return EvaluationPayload{}, false
	}

	if len(payload.Scores) == 0 {
		return EvaluationPayload{}, false
	}

	return payload, true
}

// balancedObjectWithKeys scans for the first top-level {...} substring whose
// braces balance (ignoring braces inside JSON strings) and which contains all
// required key literals.
func balancedObjectWithKeys(text string, keys ...string) string {
	for start := 0; start < len(text); start++ {
		if text[start] != '{' {
			continue
		}

		depth := 0
		inString := false
		escaped := false

		for i := start; i < len(text); i++ {
			c := text[i]

			if inString {
				switch {
				case escaped:
					escaped = false
				case c == '\\':
					escaped = true
				case c == '"':
					inString = false
				}
				continue
			}

			switch c {
			case '"':
				inString = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					candidate := text[start : i+1]
					if containsAll(candidate, keys) {
						return candidate
					}
					// Skip past this object and look for the next one.
					start = i
					i = len(text)
				}
			}
		}
	}

	return ""
}

func containsAll(text string, keys []string) bool {
	for _, key := range keys {
		if !strings.Contains(text, key) {
			return false
		}
	}
	return true
}
