package ai

import (
	"context"

	"github.com/rs/zerolog"
)

// Client fronts the selectable providers. Selection is re-evaluated on every
// call so a credential added or revoked at runtime is picked up without a
// restart; nothing about the chosen provider is cached.
type Client struct {
	cfg    Config
	logger zerolog.Logger
}

// NewClient builds a client over the given provider configuration.
func NewClient(cfg Config) *Client {
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &Client{
		cfg:    cfg,
		logger: logger.With().Str("component", "ai_client").Logger(),
	}
}

// SelectProvider picks the backend for a single call: primary OpenAI
// credential first, then the gateway credential, then the offline generator.
func SelectProvider(cfg Config) Provider {
	if provider, err := NewOpenAIProvider(cfg); err == nil {
		return provider
	}
	if provider, err := NewGatewayProvider(cfg); err == nil {
		return provider
	}
	return NewOfflineProvider()
}

// Generate selects a provider and executes the request against it. It returns
// the raw text together with the name of the provider that produced it.
func (c *Client) Generate(ctx context.Context, req GenerationRequest) (string, string, error) {
	provider := SelectProvider(c.cfg)

	raw, err := provider.Generate(ctx, req)
	if err != nil {
		return "", provider.Name(), err
	}

	c.logger.Debug().
		Str("provider", provider.Name()).
		Str("kind", req.Kind).
		Int("response_bytes", len(raw)).
		Msg("generation completed")

	return raw, provider.Name(), nil
}
