// Package gemini adapts the Google GenAI client to domain.Generator.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/kailas-cloud/resumatch/internal/domain"
	"github.com/kailas-cloud/resumatch/internal/metrics"
)

const (
	provider     = "gemini"
	defaultModel = "gemini-2.5-flash"
)

// contentGenerator is the subset of genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content,
		config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator wraps the Google GenAI client for single-prompt generation.
type Generator struct {
	models    contentGenerator
	modelName string
	logger    *zap.Logger
}

// Config holds the Gemini provider settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// NewGenerator creates a Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, cfg *Config) (*Generator, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGenerator(client.Models, cfg.Model, cfg.Logger), nil
}

func newGenerator(models contentGenerator, model string, logger *zap.Logger) *Generator {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{models: models, modelName: model, logger: logger}
}

// Generate implements domain.Generator with greedy decoding.
func (g *Generator) Generate(ctx context.Context, prompt string, cfg domain.GenerationConfig) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
		Seed:        genai.Ptr(int32(cfg.Seed)),
	}
	if cfg.MaxOutputTokens > 0 {
		config.MaxOutputTokens = int32(cfg.MaxOutputTokens)
	}

	resp, err := g.models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		metrics.SummaryRequestsTotal.WithLabelValues(provider, g.modelName, "error").Inc()
		return "", fmt.Errorf("generate content: %w: %w", domain.ErrGenerationFailed, err)
	}

	output := collectText(resp)
	if output == "" {
		metrics.SummaryRequestsTotal.WithLabelValues(provider, g.modelName, "error").Inc()
		return "", fmt.Errorf("gemini returned empty response: %w", domain.ErrGenerationFailed)
	}

	metrics.SummaryRequestsTotal.WithLabelValues(provider, g.modelName, "success").Inc()
	return output, nil
}

// HealthCheck reports whether the client is configured. The Gemini API has no free probe.
func (g *Generator) HealthCheck(_ context.Context) error {
	if g == nil || g.models == nil {
		return errors.New("gemini generator is not initialized")
	}
	return nil
}

// Model returns the configured model name.
func (g *Generator) Model() string {
	return g.modelName
}

func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}
	return strings.TrimSpace(builder.String())
}
