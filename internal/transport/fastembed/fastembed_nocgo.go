//go:build !cgo

package fastembed

import (
	"context"

	"github.com/kailas-cloud/resumatch/internal/domain"
)

// Embedder is a placeholder for builds without cgo.
type Embedder struct{}

// NewEmbedder always fails without cgo.
func NewEmbedder(cfg *Config) (*Embedder, error) {
	cfg.warnPooling()
	return nil, ErrFastEmbedUnavailable
}

// Embed always fails without cgo.
func (e *Embedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, ErrFastEmbedUnavailable
}

// HealthCheck always fails without cgo.
func (e *Embedder) HealthCheck(_ context.Context) error {
	return ErrFastEmbedUnavailable
}

// Close is a no-op without cgo.
func (e *Embedder) Close() error {
	return nil
}
