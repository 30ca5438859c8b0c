package tei

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/resumatch/internal/domain"
	"github.com/kailas-cloud/resumatch/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.Register()
	os.Exit(m.Run())
}

// tokenStates is a fake [inputs][tokens][hidden] response: [CLS], two word pieces, [SEP].
var tokenStates = [][][]float32{{
	{1, 0, 0},
	{0, 2, 0},
	{0, 4, 0},
	{3, 2, 4},
}}

func newServer(t *testing.T, gotReq *embedAllRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embed_all" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if gotReq != nil {
			if err := json.NewDecoder(r.Body).Decode(gotReq); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(tokenStates)
	}))
}

func TestEmbedder_MeanPooling(t *testing.T) {
	var got embedAllRequest
	server := newServer(t, &got)
	defer server.Close()

	emb := NewEmbedder(&Config{BaseURL: server.URL, Model: "ats-bert", Pooling: domain.PoolingMean, Logger: zap.NewNop()})

	result, err := emb.Embed(context.Background(), "Go developer with Kubernetes experience")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	if !got.Truncate {
		t.Error("expected truncate=true in request")
	}
	if got.Inputs != "Go developer with Kubernetes experience" {
		t.Errorf("unexpected inputs %q", got.Inputs)
	}

	want := []float32{1, 2, 1}
	for i := range want {
		if math.Abs(float64(result.Embedding[i]-want[i])) > 1e-6 {
			t.Errorf("vec[%d] = %f, want %f", i, result.Embedding[i], want[i])
		}
	}
	if result.TotalTokens != 4 {
		t.Errorf("TotalTokens = %d, want 4", result.TotalTokens)
	}
}

func TestEmbedder_CLSPooling(t *testing.T) {
	server := newServer(t, nil)
	defer server.Close()

	emb := NewEmbedder(&Config{BaseURL: server.URL + "/", Model: "bert-base-uncased", Pooling: domain.PoolingCLS, Logger: zap.NewNop()})

	result, err := emb.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	want := []float32{1, 0, 0}
	for i := range want {
		if result.Embedding[i] != want[i] {
			t.Errorf("vec[%d] = %f, want %f", i, result.Embedding[i], want[i])
		}
	}
}

func TestEmbedder_EmptyInput(t *testing.T) {
	emb := NewEmbedder(&Config{BaseURL: "http://unused", Logger: zap.NewNop()})

	_, err := emb.Embed(context.Background(), "   ")
	if !errors.Is(err, domain.ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
}

func TestEmbedder_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		json.NewEncoder(w).Encode(teiError{Error: "batch size too large", ErrorType: "Validation"})
	}))
	defer server.Close()

	emb := NewEmbedder(&Config{BaseURL: server.URL, Logger: zap.NewNop()})

	_, err := emb.Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
}

func TestEmbedder_EmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	emb := NewEmbedder(&Config{BaseURL: server.URL, Logger: zap.NewNop()})

	_, err := emb.Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
}

func TestEmbedder_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	emb := NewEmbedder(&Config{BaseURL: url, Logger: zap.NewNop()})

	_, err := emb.Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
}

func TestEmbedder_HealthCheck(t *testing.T) {
	healthy := true
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer server.Close()

	emb := NewEmbedder(&Config{BaseURL: server.URL, Logger: zap.NewNop()})

	if err := emb.HealthCheck(context.Background()); err != nil {
		t.Errorf("expected healthy, got %v", err)
	}

	healthy = false
	if err := emb.HealthCheck(context.Background()); err == nil {
		t.Error("expected error for 503")
	}
}
