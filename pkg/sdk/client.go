package resumatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/resumatch/internal/domain"
	"github.com/kailas-cloud/resumatch/internal/domain/document"
	domrank "github.com/kailas-cloud/resumatch/internal/domain/ranking"
	"github.com/kailas-cloud/resumatch/internal/extractor"
	embeddinguc "github.com/kailas-cloud/resumatch/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/resumatch/internal/usecase/health"
	rankinguc "github.com/kailas-cloud/resumatch/internal/usecase/ranking"
	summaryuc "github.com/kailas-cloud/resumatch/internal/usecase/summary"
)

// providerLabel names caller-supplied providers in logs and health reports.
const providerLabel = "sdk"

// Внутренние интерфейсы для подмены в тестах.
type rankUseCase interface {
	Rank(ctx context.Context, jobDescription string, docs []document.Document) (domrank.Ranking, error)
}

type summaryUseCase interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Client is the resumatch SDK entry point. It is safe for concurrent use
// when the supplied providers are.
type Client struct {
	rankSvc   rankUseCase
	sumSvc    summaryUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client. At least one of WithEmbedder or WithGenerator is required.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		taskPrefix:      summaryuc.DefaultTaskPrefix,
		maxInputChars:   summaryuc.DefaultMaxInputChars,
		maxOutputTokens: summaryuc.DefaultMaxOutputTokens,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.embedder == nil && cfg.generator == nil {
		return nil, errors.New("resumatch: provider required (use WithEmbedder or WithGenerator)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}
	return wireClient(cfg, obs), nil
}

func wireClient(cfg *clientConfig, obs *observer) *Client {
	health := healthuc.New()
	c := &Client{healthSvc: health, obs: obs}

	if cfg.embedder != nil {
		emb := embeddinguc.NewInstrumentedEmbedder(
			&embedderAdapter{inner: cfg.embedder}, providerLabel, "", "", nil,
		)
		c.rankSvc = rankinguc.New(extractor.New(zap.NewNop()), emb)
		health.WithCheck("embedding", emb)
	}

	if cfg.generator != nil {
		c.sumSvc = summaryuc.New(&generatorAdapter{inner: cfg.generator}).
			WithTaskPrefix(cfg.taskPrefix).
			WithMaxInputChars(cfg.maxInputChars).
			WithGenerationConfig(domain.GenerationConfig{
				MaxOutputTokens: cfg.maxOutputTokens,
				Seed:            cfg.seed,
			})
		if hc, ok := cfg.generator.(HealthChecker); ok {
			health.WithCheck("generator", hc)
		}
	}

	return c
}

// Rank scores every file against jobDescription, best match first.
// Unreadable files are reported in RankResult.Skipped; only a blank job
// description or a failure to embed it returns an error.
func (c *Client) Rank(ctx context.Context, jobDescription string, files []File) (res RankResult, err error) {
	start := time.Now()
	defer func() {
		c.obs.observe("rank", start, err, "files", len(files), "skipped", len(res.Skipped))
	}()

	if c.rankSvc == nil {
		return RankResult{}, fmt.Errorf("rank: %w", ErrNotConfigured)
	}

	docs := make([]document.Document, 0, len(files))
	for _, f := range files {
		docs = append(docs, document.New(f.Name, f.ContentType, f.Data))
	}

	ctx, usage := domain.NewContextWithUsage(ctx)
	ranking, err := c.rankSvc.Rank(ctx, jobDescription, docs)
	if err != nil {
		return RankResult{}, fmt.Errorf("rank: %w", err)
	}

	return toRankResult(ranking, usage), nil
}

// Summarize condenses text with the configured Generator.
func (c *Client) Summarize(ctx context.Context, text string) (summary string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("summarize", start, err, "input_chars", len(text)) }()

	if c.sumSvc == nil {
		return "", fmt.Errorf("summarize: %w", ErrNotConfigured)
	}
	return c.sumSvc.Summarize(ctx, text)
}

func toRankResult(r domrank.Ranking, usage *domain.EmbeddingUsage) RankResult {
	res := RankResult{
		Scores:          make([]Score, 0, len(r.Records)),
		EmbeddingCalls:  usage.Calls,
		EmbeddingTokens: usage.TotalTokens,
	}
	for i := range r.Records {
		rec := &r.Records[i]
		res.Scores = append(res.Scores, Score{Filename: rec.Filename(), Similarity: rec.Score()})
	}
	for _, s := range r.Skipped {
		res.Skipped = append(res.Skipped, Skip{Filename: s.Filename, Stage: string(s.Stage), Err: s.Err})
	}
	return res
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

func (a *embedderAdapter) HealthCheck(ctx context.Context) error {
	if hc, ok := a.inner.(HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

// generatorAdapter wraps public Generator to satisfy the summary use case.
type generatorAdapter struct {
	inner Generator
}

func (a *generatorAdapter) Generate(ctx context.Context, prompt string, cfg domain.GenerationConfig) (string, error) {
	out, err := a.inner.Generate(ctx, prompt, GenerationConfig{
		MaxOutputTokens: cfg.MaxOutputTokens,
		Seed:            cfg.Seed,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}
	if out == "" {
		return "", fmt.Errorf("empty output: %w", domain.ErrGenerationFailed)
	}
	return out, nil
}
