package ai

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const validEvaluationJSON = `{
	"scores": {
		"Innovation": {"score": 4.0, "weight": 3, "feedback": "Fresh idea"},
		"Technical": {"score": 5.0, "weight": 4, "feedback": "Clean build"}
	},
	"total_score": 4.57,
	"comments": "Strong entry"
}`

func TestExtractEvaluationParsesBareJSON(t *testing.T) {
	payload, err := ExtractEvaluation(validEvaluationJSON)
	require.NoError(t, err)
	require.Len(t, payload.Scores, 2)
	require.Equal(t, 4.57, payload.TotalScore)
	require.Equal(t, "Strong entry", payload.Comments)
	require.Equal(t, 4.0, payload.Scores["Innovation"].Score)
	require.Equal(t, 3.0, payload.Scores["Innovation"].Weight)
}

func TestExtractEvaluationRecoversFromFencedBlock(t *testing.T) {
	raw := "Here is my evaluation of the team:\n\n```json\n" + validEvaluationJSON + "\n```\n\nLet me know if you need more detail."

	payload, err := ExtractEvaluation(raw)
	require.NoError(t, err)
	require.Equal(t, 4.57, payload.TotalScore)
	require.Equal(t, "Clean build", payload.Scores["Technical"].Feedback)
}

func TestExtractEvaluationRecoversFromUntaggedFence(t *testing.T) {
	raw := "Result:\n```\n" + validEvaluationJSON + "\n```"

	payload, err := ExtractEvaluation(raw)
	require.NoError(t, err)
	require.Len(t, payload.Scores, 2)
}

func TestExtractEvaluationRecoversEmbeddedObject(t *testing.T) {
	raw := "After careful review {not json} the verdict is " + validEvaluationJSON + " which concludes my assessment."

	payload, err := ExtractEvaluation(raw)
	require.NoError(t, err)
	require.Equal(t, 4.57, payload.TotalScore)
}

func TestExtractEvaluationHandlesBracesInsideStrings(t *testing.T) {
	raw := `The feedback mentions {"scores": {"Design": {"score": 4.2, "weight": 25, "feedback": "Nice use of {curly} layout"}}, "total_score": 4.2, "comments": "ok"} end`

	payload, err := ExtractEvaluation(raw)
	require.NoError(t, err)
	require.Equal(t, "Nice use of {curly} layout", payload.Scores["Design"].Feedback)
}

func TestExtractEvaluationRejectsEmptyResponse(t *testing.T) {
	_, err := ExtractEvaluation("   ")
	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
}

func TestExtractEvaluationRejectsProseOnly(t *testing.T) {
	_, err := ExtractEvaluation("The team did a great job, I'd give them a 4.5 overall.")
	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
}

func TestExtractEvaluationRejectsMissingTotalScore(t *testing.T) {
	_, err := ExtractEvaluation(`{"scores": {"Innovation": {"score": 4.0}}}`)
	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
}

func TestExtractEvaluationRejectsEmptyScores(t *testing.T) {
	_, err := ExtractEvaluation(`{"scores": {}, "total_score": 4.0}`)
	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
}

func TestExtractEvaluationRejectsNonNumericTotal(t *testing.T) {
	_, err := ExtractEvaluation(`{"scores": {"Innovation": {"score": 4.0}}, "total_score": "high"}`)
	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
}
