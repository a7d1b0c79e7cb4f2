package llm

import (
	"context"
	"fmt"

	"github.com/taskvault/taskvault/core"
)

// Default embedding model and dimension when nothing is configured.
const (
	DefaultEmbeddingModel      = "text-embedding-3-small"
	DefaultEmbeddingDimensions = 1536
)

// ProviderConfig selects a backing embedding client. OpenAI is preferred
// when a key is present, Ollama otherwise; with neither, the provider is
// permanently unavailable and the store degrades to text search.
type ProviderConfig struct {
	OpenAIKey  string
	OllamaURL  string
	Model      string
	Dimensions int
}

// Provider turns text into a fixed-length vector, or reports unavailability.
// The model and dimension are fixed at construction for the lifetime of the
// process. No retries happen at this layer; retry policy belongs to callers.
type Provider struct {
	client     EmbeddingClient
	model      string
	dimensions int
}

func NewProvider(cfg ProviderConfig) *Provider {
	p := &Provider{
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
	if p.model == "" {
		p.model = DefaultEmbeddingModel
	}
	if p.dimensions <= 0 {
		p.dimensions = DefaultEmbeddingDimensions
	}

	switch {
	case cfg.OpenAIKey != "":
		p.client = NewOpenAIClient(cfg.OpenAIKey)
	case cfg.OllamaURL != "":
		p.client = NewOllamaEmbedClient(cfg.OllamaURL)
	}

	return p
}

// NewProviderWithClient wraps an explicit client, mainly for tests.
func NewProviderWithClient(client EmbeddingClient, model string, dimensions int) *Provider {
	return &Provider{client: client, model: model, dimensions: dimensions}
}

// Available reports whether a backing client is configured. False is an
// expected state, not a failure.
func (p *Provider) Available() bool {
	return p != nil && p.client != nil
}

// Dimension returns the configured embedding dimension.
func (p *Provider) Dimension() int {
	if p == nil {
		return 0
	}
	return p.dimensions
}

// Model returns the configured embedding model name.
func (p *Provider) Model() string {
	if p == nil {
		return ""
	}
	return p.model
}

// Embed generates an embedding for text. It returns
// core.ErrEmbeddingUnavailable when no client is configured; any other
// error is a transient call failure and does not disable the provider.
func (p *Provider) Embed(ctx context.Context, text string) ([]float64, error) {
	if !p.Available() {
		return nil, core.ErrEmbeddingUnavailable
	}

	resp, err := p.client.Embed(ctx, p.model, text)
	if err != nil {
		return nil, fmt.Errorf("embed with %s: %w", p.model, err)
	}
	return resp.Embedding, nil
}
