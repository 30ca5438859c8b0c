package resumatch

import (
	"errors"

	"github.com/kailas-cloud/resumatch/internal/domain"
)

// ErrNotConfigured is returned by Rank without an Embedder and by Summarize without a Generator.
var ErrNotConfigured = errors.New("resumatch: provider not configured")

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrEmptyInput             = domain.ErrEmptyInput
	ErrMissingField           = domain.ErrMissingField
	ErrUnsupportedDocument    = domain.ErrUnsupportedDocument
	ErrExtractionFailed       = domain.ErrExtractionFailed
	ErrNoText                 = domain.ErrNoText
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrDimensionMismatch      = domain.ErrDimensionMismatch
	ErrGenerationFailed       = domain.ErrGenerationFailed
)
