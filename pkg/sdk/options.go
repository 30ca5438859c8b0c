package resumatch

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	embedder  Embedder
	generator Generator

	taskPrefix      string
	maxInputChars   int
	maxOutputTokens int
	seed            int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithEmbedder sets the embedding provider used by Rank.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithGenerator sets the text generation provider used by Summarize.
func WithGenerator(g Generator) Option {
	return optionFunc(func(c *clientConfig) {
		c.generator = g
	})
}

// WithTaskPrefix sets the instruction prepended to summarized text.
// Default: "summarize: ".
func WithTaskPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.taskPrefix = prefix
	})
}

// WithMaxInputChars caps the summarization prompt in runes. Zero disables the cap.
// Default: 2048.
func WithMaxInputChars(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxInputChars = n
	})
}

// WithMaxOutputTokens bounds the summary length. Default: 100.
func WithMaxOutputTokens(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxOutputTokens = n
	})
}

// WithSeed fixes the sampling seed passed to the Generator.
func WithSeed(seed int) Option {
	return optionFunc(func(c *clientConfig) {
		c.seed = seed
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
