//go:build cgo

package fastembed

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	fastembed "github.com/anush008/fastembed-go"
	"go.uber.org/zap"

	"github.com/kailas-cloud/resumatch/internal/domain"
	"github.com/kailas-cloud/resumatch/internal/metrics"
)

// models maps accepted model names to fastembed constants.
var models = map[string]fastembed.EmbeddingModel{
	"BAAI/bge-small-en-v1.5":                 fastembed.BGESmallENV15,
	"BAAI/bge-small-en":                      fastembed.BGESmallEN,
	"BAAI/bge-base-en-v1.5":                  fastembed.BGEBaseENV15,
	"BAAI/bge-base-en":                       fastembed.BGEBaseEN,
	"sentence-transformers/all-MiniLM-L6-v2": fastembed.AllMiniLML6V2,
}

// Embedder wraps a loaded ONNX model. The model handle is not safe for
// concurrent use, so calls are serialized.
type Embedder struct {
	model     *fastembed.FlagEmbedding
	modelName string
	logger    *zap.Logger
	mu        sync.Mutex
}

// NewEmbedder loads (downloading on first use) the configured model.
func NewEmbedder(cfg *Config) (*Embedder, error) {
	model, ok := models[cfg.Model]
	if !ok {
		return nil, fmt.Errorf("fastembed: unsupported model %q", cfg.Model)
	}
	cfg.warnPooling()

	showProgress := false
	flag, err := fastembed.NewFlagEmbedding(&fastembed.InitOptions{
		Model:                model,
		CacheDir:             cfg.cacheDir(),
		MaxLength:            cfg.maxLength(),
		ShowDownloadProgress: &showProgress,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing fastembed: %w", err)
	}

	return &Embedder{model: flag, modelName: cfg.Model, logger: cfg.Logger}, nil
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if strings.TrimSpace(text) == "" {
		return domain.EmbeddingResult{}, fmt.Errorf("fastembed embed: %w", domain.ErrEmptyInput)
	}
	if err := ctx.Err(); err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, err)
	}

	start := time.Now()

	e.mu.Lock()
	vectors, err := e.model.PassageEmbed([]string{text}, 1)
	e.mu.Unlock()

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.modelName, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(provider, e.modelName, "inference").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("fastembed inference: %w: %w", domain.ErrEmbeddingProviderError, err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.modelName, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(provider, e.modelName, "empty_response").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("fastembed returned no vector: %w", domain.ErrEmbeddingProviderError)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.modelName, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(provider, e.modelName).Observe(time.Since(start).Seconds())

	return domain.EmbeddingResult{Embedding: vectors[0]}, nil
}

// HealthCheck reports whether the model is loaded.
func (e *Embedder) HealthCheck(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.model == nil {
		return fmt.Errorf("fastembed: model released")
	}
	return nil
}

// Close releases the ONNX session.
func (e *Embedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.model == nil {
		return nil
	}
	err := e.model.Destroy()
	e.model = nil
	return err
}
