package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/resumatch/internal/config"
	"github.com/kailas-cloud/resumatch/internal/domain"
	chiTransport "github.com/kailas-cloud/resumatch/internal/transport/chi"
	"github.com/kailas-cloud/resumatch/internal/transport/downstream"
	"github.com/kailas-cloud/resumatch/internal/transport/fastembed"
	"github.com/kailas-cloud/resumatch/internal/transport/gemini"
	openaiTransport "github.com/kailas-cloud/resumatch/internal/transport/openai"
	"github.com/kailas-cloud/resumatch/internal/transport/tei"
	embeddinguc "github.com/kailas-cloud/resumatch/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/resumatch/internal/usecase/health"
	summaryuc "github.com/kailas-cloud/resumatch/internal/usecase/summary"
)

// buildEmbedder assembles the decorator chain: provider -> Instrumented.
// The returned close func releases provider resources (ONNX sessions).
func buildEmbedder(cfg config.EmbeddingConfig, logger *zap.Logger) (*embeddinguc.InstrumentedEmbedder, func() error, error) {
	pooling, err := domain.ParsePooling(cfg.Pooling)
	if err != nil {
		return nil, nil, fmt.Errorf("embedding pooling: %w", err)
	}

	noop := func() error { return nil }

	var base domain.Embedder
	closer := noop

	switch cfg.Provider {
	case "tei":
		base = tei.NewEmbedder(&tei.Config{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			Pooling: pooling,
			Logger:  logger,
		})
	case "fastembed":
		fe, err := fastembed.NewEmbedder(&fastembed.Config{
			Model:     cfg.Model,
			CacheDir:  cfg.CacheDir,
			MaxLength: cfg.MaxLength,
			Pooling:   pooling,
			Logger:    logger,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("fastembed: %w", err)
		}
		base, closer = fe, fe.Close
	case "openai":
		logger.Info("openai embeddings are pooled server-side, pooling setting not applied",
			zap.String("pooling", string(pooling)))
		base = openaiTransport.NewEmbedder(&openaiTransport.Config{
			APIKey:   cfg.APIKey,
			BaseURL:  cfg.BaseURL,
			Model:    cfg.Model,
			Provider: cfg.Provider,
			Logger:   logger,
		})
	default:
		return nil, nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}

	logger.Info("Embedder created",
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.Model),
		zap.String("pooling", string(pooling)),
	)
	return embeddinguc.NewInstrumentedEmbedder(base, cfg.Provider, cfg.Model, pooling, logger), closer, nil
}

// buildGenerator selects the summarization model provider.
func buildGenerator(ctx context.Context, cfg config.SummarizerConfig, logger *zap.Logger) (domain.Generator, error) {
	switch cfg.Provider {
	case "openai":
		return openaiTransport.NewGenerator(&openaiTransport.Config{
			APIKey:   cfg.APIKey,
			BaseURL:  cfg.BaseURL,
			Model:    cfg.Model,
			Provider: cfg.Provider,
			Logger:   logger,
		}), nil
	case "gemini":
		gen, err := gemini.NewGenerator(ctx, &gemini.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Logger:  logger,
		})
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		return gen, nil
	default:
		return nil, fmt.Errorf("unknown summarizer provider %q", cfg.Provider)
	}
}

// generatorModel reports the model a generator resolved to, falling back to the
// configured name for providers that do not expose it.
func generatorModel(gen domain.Generator, configured string) string {
	if m, ok := gen.(interface{ Model() string }); ok {
		return m.Model()
	}
	return configured
}

// buildSummary wires the summary service with its decoding settings.
func buildSummary(gen domain.Generator, cfg config.SummarizerConfig) *summaryuc.Service {
	return summaryuc.New(gen).
		WithTaskPrefix(cfg.TaskPrefix).
		WithMaxInputChars(cfg.MaxInputChars).
		WithGenerationConfig(domain.GenerationConfig{
			MaxOutputTokens: cfg.MaxOutputTokens,
			Seed:            cfg.Seed,
		})
}

// buildRelay creates the downstream relay for the proxy service.
func buildRelay(cfg config.ProxyConfig, logger *zap.Logger) (*downstream.Relay, error) {
	relay, err := downstream.NewRelay(&downstream.Config{
		TargetURL: cfg.TargetURL,
		Timeout:   time.Duration(cfg.TimeoutSec) * time.Second,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("proxy relay: %w", err)
	}
	return relay, nil
}

// newHealth creates the health service with the configured per-check timeout.
func newHealth(cfg config.HTTPConfig) *healthuc.Service {
	return healthuc.New().WithTimeout(time.Duration(cfg.HealthCheckSec) * time.Second)
}

// newServer applies the shared HTTP settings.
func newServer(cfg config.Config, health *healthuc.Service, logger *zap.Logger) *chiTransport.Server {
	return chiTransport.NewServer(health, logger).
		WithStrictStatus(cfg.HTTP.StrictStatus).
		WithMaxUploadBytes(cfg.HTTP.MaxUploadMB<<20).
		WithCORSOrigin(cfg.CORS.AllowedOrigin).
		WithAPIKeys(cfg.Auth.APIKeys)
}
