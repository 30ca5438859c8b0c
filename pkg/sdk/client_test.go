package resumatch

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// --- Mocks ---

type mockEmbedder struct {
	fn        func(ctx context.Context, text string) (EmbeddingResult, error)
	healthErr error
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

func (m *mockEmbedder) HealthCheck(_ context.Context) error { return m.healthErr }

type mockGenerator struct {
	fn func(ctx context.Context, prompt string, cfg GenerationConfig) (string, error)
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string, cfg GenerationConfig) (string, error) {
	return m.fn(ctx, prompt, cfg)
}

// keywordEmbedder maps texts to fixed vectors by keyword.
func keywordEmbedder() *mockEmbedder {
	return &mockEmbedder{fn: func(_ context.Context, text string) (EmbeddingResult, error) {
		switch {
		case strings.Contains(text, "fail"):
			return EmbeddingResult{}, errors.New("provider down")
		case strings.Contains(text, "golang"):
			return EmbeddingResult{Embedding: []float32{1, 0}, TotalTokens: 3}, nil
		default:
			return EmbeddingResult{Embedding: []float32{0, 1}, TotalTokens: 2}, nil
		}
	}}
}

// --- Tests ---

func TestNew_NoProvider(t *testing.T) {
	if _, err := New(); err == nil {
		t.Fatal("expected error when no provider configured")
	}
}

func TestRank(t *testing.T) {
	c, err := New(WithEmbedder(keywordEmbedder()))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	res, err := c.Rank(context.Background(), "golang engineer", []File{
		{Name: "cook.txt", Data: []byte("pastry chef")},
		{Name: "gopher.txt", Data: []byte("golang and kubernetes")},
		{Name: "photo.png", Data: []byte{0x89, 0x50}},
		{Name: "broken.txt", Data: []byte("fail")},
	})
	if err != nil {
		t.Fatalf("rank: %v", err)
	}

	if len(res.Scores) != 2 {
		t.Fatalf("expected 2 scores, got %d", len(res.Scores))
	}
	if res.Scores[0].Filename != "gopher.txt" || res.Scores[0].Similarity != 1 {
		t.Errorf("unexpected top score %+v", res.Scores[0])
	}
	if res.Scores[1].Filename != "cook.txt" || res.Scores[1].Similarity != 0 {
		t.Errorf("unexpected second score %+v", res.Scores[1])
	}

	stages := map[string]string{}
	for _, s := range res.Skipped {
		stages[s.Filename] = s.Stage
	}
	if stages["photo.png"] != "extraction" {
		t.Errorf("photo.png stage = %q, want extraction", stages["photo.png"])
	}
	if stages["broken.txt"] != "embedding" {
		t.Errorf("broken.txt stage = %q, want embedding", stages["broken.txt"])
	}

	// job description + cook + gopher; the failed call is not counted
	if res.EmbeddingCalls != 3 {
		t.Errorf("embedding calls = %d, want 3", res.EmbeddingCalls)
	}
	if res.EmbeddingTokens != 8 {
		t.Errorf("embedding tokens = %d, want 8", res.EmbeddingTokens)
	}
}

func TestRank_BlankJobDescription(t *testing.T) {
	c, _ := New(WithEmbedder(keywordEmbedder()))
	_, err := c.Rank(context.Background(), "  ", []File{{Name: "a.txt", Data: []byte("x")}})
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
}

func TestRank_JobDescriptionEmbedFails(t *testing.T) {
	c, _ := New(WithEmbedder(keywordEmbedder()))
	_, err := c.Rank(context.Background(), "fail", []File{{Name: "a.txt", Data: []byte("x")}})
	if !errors.Is(err, ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
}

func TestRank_NotConfigured(t *testing.T) {
	c, _ := New(WithGenerator(&mockGenerator{}))
	_, err := c.Rank(context.Background(), "jd", nil)
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestSummarize(t *testing.T) {
	var gotPrompt string
	var gotCfg GenerationConfig
	gen := &mockGenerator{fn: func(_ context.Context, prompt string, cfg GenerationConfig) (string, error) {
		gotPrompt, gotCfg = prompt, cfg
		return "strong candidate", nil
	}}

	c, err := New(WithGenerator(gen), WithTaskPrefix("tl;dr: "), WithMaxOutputTokens(40), WithSeed(7))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	out, err := c.Summarize(context.Background(), "long interview transcript")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if out != "strong candidate" {
		t.Errorf("unexpected summary %q", out)
	}
	if gotPrompt != "tl;dr: long interview transcript" {
		t.Errorf("unexpected prompt %q", gotPrompt)
	}
	if gotCfg.MaxOutputTokens != 40 || gotCfg.Seed != 7 {
		t.Errorf("unexpected generation config %+v", gotCfg)
	}
}

func TestSummarize_Defaults(t *testing.T) {
	var gotPrompt string
	var gotCfg GenerationConfig
	gen := &mockGenerator{fn: func(_ context.Context, prompt string, cfg GenerationConfig) (string, error) {
		gotPrompt, gotCfg = prompt, cfg
		return "ok", nil
	}}
	c, _ := New(WithGenerator(gen))

	if _, err := c.Summarize(context.Background(), strings.Repeat("a", 5000)); err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if !strings.HasPrefix(gotPrompt, "summarize: ") {
		t.Errorf("expected default task prefix, got %q", gotPrompt[:20])
	}
	if len(gotPrompt) != 2048 {
		t.Errorf("prompt length = %d, want 2048", len(gotPrompt))
	}
	if gotCfg.MaxOutputTokens != 100 {
		t.Errorf("max output tokens = %d, want 100", gotCfg.MaxOutputTokens)
	}
}

func TestSummarize_Errors(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		out     string
		genErr  error
		wantErr error
	}{
		{name: "blank input", text: " \n", wantErr: ErrEmptyInput},
		{name: "provider failure", text: "x", genErr: errors.New("quota"), wantErr: ErrGenerationFailed},
		{name: "empty output", text: "x", out: "", wantErr: ErrGenerationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &mockGenerator{fn: func(context.Context, string, GenerationConfig) (string, error) {
				return tt.out, tt.genErr
			}}
			c, _ := New(WithGenerator(gen))
			if _, err := c.Summarize(context.Background(), tt.text); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSummarize_NotConfigured(t *testing.T) {
	c, _ := New(WithEmbedder(keywordEmbedder()))
	if _, err := c.Summarize(context.Background(), "x"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestHealth(t *testing.T) {
	emb := keywordEmbedder()
	c, _ := New(WithEmbedder(emb), WithGenerator(&mockGenerator{}))

	h := c.Health(context.Background())
	if h.Status != "ok" || h.Checks["embedding"] != "ok" {
		t.Fatalf("unexpected health %+v", h)
	}
	// mockGenerator has no HealthCheck, so it is not probed.
	if _, ok := h.Checks["generator"]; ok {
		t.Error("generator without HealthCheck should not be probed")
	}

	emb.healthErr = errors.New("down")
	h = c.Health(context.Background())
	if h.Status != "error" || h.Checks["embedding"] != "error" {
		t.Fatalf("unexpected health %+v", h)
	}
}

func TestPrometheusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(WithEmbedder(keywordEmbedder()), WithPrometheus(reg), WithLogger(slog.New(slog.DiscardHandler)))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	_, _ = c.Rank(context.Background(), "golang", []File{{Name: "a.txt", Data: []byte("golang")}})
	_, _ = c.Rank(context.Background(), "", nil)

	if got := testutil.ToFloat64(c.obs.metrics.operations.WithLabelValues("rank", "ok")); got != 1 {
		t.Errorf("rank ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.obs.metrics.operations.WithLabelValues("rank", "error")); got != 1 {
		t.Errorf("rank error = %v, want 1", got)
	}

	// A second client on the same registry reuses the collectors.
	if _, err := New(WithEmbedder(keywordEmbedder()), WithPrometheus(reg)); err != nil {
		t.Fatalf("second client: %v", err)
	}
}
