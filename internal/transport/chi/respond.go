package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/kailas-cloud/resumatch/internal/domain"
)

// scoreItem is one entry of a ranking response.
type scoreItem struct {
	Filename         string  `json:"filename"`
	CosineSimilarity float64 `json:"cosine_similarity"`
}

// rankResponse is the ranking endpoints' body; results is never null.
type rankResponse struct {
	Error   string      `json:"error,omitempty"`
	Results []scoreItem `json:"results"`
}

// proxyErrorResponse is returned when forwarding fails.
type proxyErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Results []scoreItem `json:"results"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// statusEntry maps a sentinel error to an HTTP status.
type statusEntry struct {
	sentinel error
	status   int
}

// statusTable is consulted in order; the first match wins.
var statusTable = []statusEntry{
	{domain.ErrMissingField, http.StatusBadRequest},
	{domain.ErrInvalidRequest, http.StatusBadRequest},
	{domain.ErrEmptyInput, http.StatusBadRequest},
	{domain.ErrEmbeddingProviderError, http.StatusBadGateway},
	{domain.ErrGenerationFailed, http.StatusBadGateway},
	{domain.ErrDownstreamUnavailable, http.StatusBadGateway},
}

// statusFor returns the HTTP status for err, defaulting to 500.
func statusFor(err error) int {
	for _, e := range statusTable {
		if errors.Is(err, e.sentinel) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	for _, e := range statusTable {
		if errors.Is(err, e.sentinel) {
			return e.sentinel.Error()
		}
	}
	return "internal error"
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage != nil && usage.Calls > 0 {
		w.Header().Set("X-Embedding-Calls", strconv.Itoa(usage.Calls))
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
