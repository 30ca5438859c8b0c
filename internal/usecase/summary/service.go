// Package summary condenses interview text with a text-to-text model.
package summary

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/resumatch/internal/domain"
	"github.com/kailas-cloud/resumatch/internal/logger"
)

// Default decoding settings.
const (
	DefaultTaskPrefix      = "summarize: "
	DefaultMaxInputChars   = 2048
	DefaultMaxOutputTokens = 100
)

// Service prefixes text with a task instruction and runs the generator with a fixed config.
type Service struct {
	gen           Generator
	taskPrefix    string
	maxInputChars int
	config        domain.GenerationConfig
}

// New creates a summary service with default settings.
func New(gen Generator) *Service {
	return &Service{
		gen:           gen,
		taskPrefix:    DefaultTaskPrefix,
		maxInputChars: DefaultMaxInputChars,
		config:        domain.GenerationConfig{MaxOutputTokens: DefaultMaxOutputTokens},
	}
}

// WithTaskPrefix overrides the instruction prepended to every input.
func (s *Service) WithTaskPrefix(prefix string) *Service {
	s.taskPrefix = prefix
	return s
}

// WithMaxInputChars caps the prompt length in runes. Zero disables the cap.
func (s *Service) WithMaxInputChars(n int) *Service {
	s.maxInputChars = n
	return s
}

// WithGenerationConfig overrides the decoding configuration.
func (s *Service) WithGenerationConfig(cfg domain.GenerationConfig) *Service {
	s.config = cfg
	return s
}

// Summarize returns the model's summary of text.
func (s *Service) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("text: %w", domain.ErrEmptyInput)
	}

	prompt := truncateRunes(s.taskPrefix+text, s.maxInputChars)

	start := time.Now()
	out, err := s.gen.Generate(ctx, prompt, s.config)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}

	logger.FromContext(ctx).Info("Text summarized",
		zap.Int("input_chars", utf8.RuneCountInString(text)),
		zap.Int("prompt_chars", utf8.RuneCountInString(prompt)),
		zap.Int("output_chars", utf8.RuneCountInString(out)),
		zap.Duration("duration", time.Since(start)),
	)

	return out, nil
}

// truncateRunes cuts s to at most n runes. n <= 0 means no limit.
func truncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
