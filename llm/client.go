// Package llm provides embedding clients and the provider abstraction that
// selects one from configuration.
package llm

import "context"

// EmbeddingClient generates vector embeddings from text.
type EmbeddingClient interface {
	// Embed generates an embedding for a single input.
	Embed(ctx context.Context, model, input string) (*EmbeddingResponse, error)

	// EmbedBatch generates embeddings for multiple inputs.
	EmbedBatch(ctx context.Context, model string, inputs []string) ([]EmbeddingResponse, error)
}

// ClientConfig holds connection settings for an embedding client.
type ClientConfig struct {
	APIKey  string
	BaseURL string
	Timeout int // seconds
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout: 60,
	}
}
