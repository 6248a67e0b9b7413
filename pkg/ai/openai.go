package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	generationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hackjudge",
		Subsystem: "ai",
		Name:      "generation_duration_seconds",
		Help:      "Duration of AI generation requests",
	}, []string{"provider", "kind"})

	generationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hackjudge",
		Subsystem: "ai",
		Name:      "generation_failures_total",
		Help:      "Number of failed AI generation requests",
	}, []string{"provider", "kind"})
)

const (
	defaultModel     = "gpt-4o-mini"
	defaultMaxTokens = 2048
)

// chatProvider talks to an OpenAI-compatible chat completion endpoint. It
// backs both the primary OpenAI provider and the secondary gateway provider,
// which differ only in credentials, base URL, and name.
type chatProvider struct {
	name      string
	client    *openai.Client
	model     string
	maxTokens int
	temp      float32
	tracer    trace.Tracer
	logger    zerolog.Logger
}

// NewOpenAIProvider builds the primary provider against api.openai.com.
func NewOpenAIProvider(cfg Config) (Provider, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.OpenAIAPIKey)
	return newChatProvider("openai", clientConfig, cfg.OpenAIModel, cfg), nil
}

// NewGatewayProvider builds the secondary provider against an
// OpenAI-compatible gateway endpoint.
func NewGatewayProvider(cfg Config) (Provider, error) {
	if cfg.GatewayAPIKey == "" || cfg.GatewayBaseURL == "" {
		return nil, fmt.Errorf("gateway api key and base url are required")
	}

	clientConfig := openai.DefaultConfig(cfg.GatewayAPIKey)
	clientConfig.BaseURL = strings.TrimRight(cfg.GatewayBaseURL, "/")
	return newChatProvider("gateway", clientConfig, cfg.GatewayModel, cfg), nil
}

func newChatProvider(name string, clientConfig openai.ClientConfig, model string, cfg Config) *chatProvider {
	if model == "" {
		model = defaultModel
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &chatProvider{
		name:      name,
		client:    openai.NewClientWithConfig(clientConfig),
		model:     model,
		maxTokens: maxTokens,
		temp:      cfg.Temperature,
		tracer:    otel.Tracer("github.com/noah-isme/hackjudge-api/pkg/ai"),
		logger:    logger.With().Str("component", "ai_provider").Str("provider", name).Logger(),
	}
}

func (p *chatProvider) Name() string {
	return p.name
}

// Generate sends the chat completion request and returns the raw response
// text. Any transport failure is normalized to ExternalServiceError.
func (p *chatProvider) Generate(parent context.Context, req GenerationRequest) (string, error) {
	ctx, span := p.tracer.Start(parent, "ai.generate", trace.WithAttributes(
		attribute.String("provider", p.name),
		attribute.String("model", p.model),
		attribute.String("kind", req.Kind),
	))
	defer span.End()

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.maxTokens
	}

	request := openai.ChatCompletionRequest{
		Model:       p.model,
		MaxTokens:   maxTokens,
		Temperature: p.temp,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: req.SystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.UserContent,
			},
		},
	}

	if req.Shape == ShapeEvaluation {
		request.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, request)
	generationDuration.WithLabelValues(p.name, req.Kind).Observe(time.Since(start).Seconds())

	if err != nil {
		return "", p.fail(span, req.Kind, err)
	}

	if len(resp.Choices) == 0 {
		return "", p.fail(span, req.Kind, fmt.Errorf("no choices returned"))
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", p.fail(span, req.Kind, fmt.Errorf("empty completion"))
	}

	return content, nil
}

func (p *chatProvider) fail(span trace.Span, kind string, err error) error {
	generationFailures.WithLabelValues(p.name, kind).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	p.logger.Error().Err(err).Str("kind", kind).Msg("generation request failed")
	return NewExternalServiceError(p.name, err)
}
