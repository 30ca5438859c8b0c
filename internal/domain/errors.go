package domain

import "errors"

var (
	// ErrEmptyInput signals empty or whitespace-only text.
	ErrEmptyInput = errors.New("empty input")
	// ErrMissingField signals a required request field that was not supplied.
	ErrMissingField = errors.New("missing required field")
	// ErrInvalidRequest signals a request body that could not be parsed.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUnsupportedDocument signals a document type the extractor cannot read.
	ErrUnsupportedDocument = errors.New("unsupported document type")
	// ErrExtractionFailed signals an unparseable document.
	ErrExtractionFailed = errors.New("text extraction failed")
	// ErrNoText signals a document that parsed but yielded no usable text.
	ErrNoText = errors.New("no text extracted")

	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrDimensionMismatch signals vectors of different lengths.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrGenerationFailed signals a text generation provider failure.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrDownstreamUnavailable signals a proxy forwarding failure.
	ErrDownstreamUnavailable = errors.New("downstream unavailable")
)
