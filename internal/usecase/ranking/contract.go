package ranking

import (
	"context"

	"github.com/kailas-cloud/resumatch/internal/domain"
	"github.com/kailas-cloud/resumatch/internal/domain/document"
)

// TextExtractor reads the text of an uploaded document.
type TextExtractor interface {
	Extract(ctx context.Context, doc *document.Document) (string, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
