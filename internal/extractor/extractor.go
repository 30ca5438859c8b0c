// Package extractor turns uploaded resume documents into plain text.
package extractor

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"

	"github.com/kailas-cloud/resumatch/internal/domain"
	"github.com/kailas-cloud/resumatch/internal/domain/document"
)

// Extractor dispatches on the document extension and delegates parsing to langchaingo loaders.
type Extractor struct {
	logger *zap.Logger
}

// New creates an extractor.
func New(logger *zap.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract returns the document text.
// Errors wrap domain.ErrUnsupportedDocument, domain.ErrExtractionFailed or domain.ErrNoText;
// callers skip the document on any of them.
func (e *Extractor) Extract(ctx context.Context, doc *document.Document) (string, error) {
	var (
		text string
		err  error
	)

	switch doc.Kind() {
	case document.KindPDF:
		text, err = extractPDF(ctx, doc.Payload())
	case document.KindText:
		text, err = extractText(ctx, doc.Payload())
	default:
		return "", fmt.Errorf("%s: %w", doc.Filename(), domain.ErrUnsupportedDocument)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", doc.Filename(), domain.ErrExtractionFailed, err)
	}

	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%s: %w", doc.Filename(), domain.ErrNoText)
	}

	e.logger.Debug("Extracted document text",
		zap.String("filename", doc.Filename()),
		zap.String("kind", string(doc.Kind())),
		zap.Int("bytes", doc.Size()),
		zap.Int("chars", utf8.RuneCountInString(text)),
	)
	return text, nil
}

// extractPDF concatenates per-page text, each page followed by a newline.
func extractPDF(ctx context.Context, payload []byte) (text string, err error) {
	// ledongthuc/pdf panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	loader := documentloaders.NewPDF(bytes.NewReader(payload), int64(len(payload)))
	pages, err := loader.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("load pdf: %w", err)
	}
	return joinPages(pages), nil
}

func extractText(ctx context.Context, payload []byte) (string, error) {
	if !utf8.Valid(payload) {
		return "", fmt.Errorf("payload is not valid UTF-8")
	}

	loader := documentloaders.NewText(bytes.NewReader(payload))
	docs, err := loader.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("load text: %w", err)
	}

	var b strings.Builder
	for _, d := range docs {
		b.WriteString(d.PageContent)
	}
	return b.String(), nil
}

func joinPages(pages []schema.Document) string {
	var b strings.Builder
	for _, p := range pages {
		b.WriteString(p.PageContent)
		b.WriteString("\n")
	}
	return b.String()
}
