package summary

import (
	"context"

	"github.com/kailas-cloud/resumatch/internal/domain"
)

// Generator produces text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, cfg domain.GenerationConfig) (string, error)
}
