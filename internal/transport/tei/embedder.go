// Package tei embeds text through a HuggingFace Text Embeddings Inference server.
package tei

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/resumatch/internal/domain"
	"github.com/kailas-cloud/resumatch/internal/metrics"
)

const provider = "tei"

// Config holds the TEI provider settings.
type Config struct {
	BaseURL string
	APIKey  string // optional, sent as a bearer token
	Model   string // informational; TEI serves exactly one model
	Pooling domain.Pooling
	Client  *http.Client
	Logger  *zap.Logger
}

// Embedder requests per-token hidden states from /embed_all and pools them locally,
// so one TEI deployment can back both the mean-pooled and the CLS variant.
type Embedder struct {
	baseURL string
	apiKey  string
	model   string
	pooling domain.Pooling
	client  *http.Client
	logger  *zap.Logger
}

// NewEmbedder creates a TEI embedding provider.
func NewEmbedder(cfg *Config) *Embedder {
	client := cfg.Client
	if client == nil {
		client = &http.Client{}
	}
	pooling := cfg.Pooling
	if pooling == "" {
		pooling = domain.PoolingMean
	}
	return &Embedder{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		pooling: pooling,
		client:  client,
		logger:  cfg.Logger,
	}
}

// embedAllRequest is the request body for the TEI /embed_all endpoint.
type embedAllRequest struct {
	Inputs   string `json:"inputs"`
	Truncate bool   `json:"truncate"`
}

// teiError is the TEI error body.
type teiError struct {
	Error     string `json:"error"`
	ErrorType string `json:"error_type"`
}

// Embed implements domain.Embedder. The server truncates input to the model's maximum
// sequence length; no gradient or batching concerns exist on this side.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if strings.TrimSpace(text) == "" {
		return domain.EmbeddingResult{}, fmt.Errorf("tei embed: %w", domain.ErrEmptyInput)
	}

	start := time.Now()

	states, err := e.embedAll(ctx, text)
	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(provider, e.model, "api_error").Inc()
		return domain.EmbeddingResult{}, err
	}

	if len(states) == 0 || len(states[0]) == 0 {
		metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(provider, e.model, "empty_response").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("empty embed_all response: %w", domain.ErrEmbeddingProviderError)
	}

	tokens := states[0]
	vec, err := e.pooling.Pool(tokens)
	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(provider, e.model, "pooling").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, err)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(provider, e.model).Observe(time.Since(start).Seconds())
	metrics.EmbeddingTokensTotal.WithLabelValues(provider, e.model, "total").Add(float64(len(tokens)))

	return domain.EmbeddingResult{
		Embedding:    vec,
		PromptTokens: len(tokens),
		TotalTokens:  len(tokens),
	}, nil
}

// embedAll returns hidden states shaped [inputs][tokens][hidden].
func (e *Embedder) embedAll(ctx context.Context, text string) ([][][]float32, error) {
	body, err := json.Marshal(embedAllRequest{Inputs: text, Truncate: true})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embed_all", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed_all request failed: %w: %w", domain.ErrEmbeddingProviderError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, parseAPIError(resp)
	}

	var states [][][]float32
	if err := json.NewDecoder(resp.Body).Decode(&states); err != nil {
		return nil, fmt.Errorf("decoding embed_all response: %w: %w", domain.ErrEmbeddingProviderError, err)
	}
	return states, nil
}

// HealthCheck probes the TEI /health endpoint.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/health", http.NoBody)
	if err != nil {
		return fmt.Errorf("creating health request: %w", err)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("tei health: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tei health: status %d", resp.StatusCode)
	}
	return nil
}

// parseAPIError extracts the TEI error message. Always wraps domain.ErrEmbeddingProviderError.
func parseAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var parsed teiError
	if json.Unmarshal(raw, &parsed) == nil && parsed.Error != "" {
		return fmt.Errorf("tei error %d (%s): %s: %w",
			resp.StatusCode, parsed.ErrorType, parsed.Error, domain.ErrEmbeddingProviderError)
	}
	return fmt.Errorf("tei error %d: %s: %w",
		resp.StatusCode, strings.TrimSpace(string(raw)), domain.ErrEmbeddingProviderError)
}
