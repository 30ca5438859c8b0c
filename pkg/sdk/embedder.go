package resumatch

import "context"

// Embedder converts text to a pooled embedding vector.
// If it also implements HealthChecker, Client.Health probes it.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Generator produces text for a prompt.
// If it also implements HealthChecker, Client.Health probes it.
type Generator interface {
	Generate(ctx context.Context, prompt string, cfg GenerationConfig) (string, error)
}

// GenerationConfig is the decoding configuration passed to every Generate call.
type GenerationConfig struct {
	MaxOutputTokens int
	Seed            int
}

// HealthChecker is implemented by providers that can report their availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
