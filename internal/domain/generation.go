package domain

import "context"

// GenerationConfig is the fixed decoding configuration of a summarization call.
// Decoding is deterministic: the same prompt and config yield the same output
// on providers that honor a seed.
type GenerationConfig struct {
	MaxOutputTokens int
	Seed            int
}

// Generator produces text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, cfg GenerationConfig) (string, error)
}
