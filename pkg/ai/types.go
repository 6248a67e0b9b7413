package ai

import (
	"context"

	"github.com/rs/zerolog"
)

// Shape selects how the caller expects the raw model output to be
// interpreted downstream.
type Shape string

// Supported response shapes.
const (
	ShapePlainText  Shape = "plain_text"
	ShapeEvaluation Shape = "structured_evaluation"
)

// CriterionSpec carries the judging dimensions into a generation request.
// Remote providers receive them through the rendered prompt; the offline
// generator uses them directly to produce a well-formed evaluation object.
type CriterionSpec struct {
	Name        string
	Description string
	Weight      float64
}

// GenerationRequest is one prompt sent to whichever provider is selected.
type GenerationRequest struct {
	Kind         string
	SystemPrompt string
	UserContent  string
	Shape        Shape
	Criteria     []CriterionSpec
	Subject      string
	MaxTokens    int
}

// Provider is a single AI backend capable of turning a request into raw text.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}

// Config holds the credentials and knobs for all selectable providers.
// Selection happens per call so credential changes take effect without a
// restart.
type Config struct {
	OpenAIAPIKey   string
	OpenAIModel    string
	GatewayAPIKey  string
	GatewayBaseURL string
	GatewayModel   string
	MaxTokens      int
	Temperature    float32
	Logger         zerolog.Logger
}
