package domain

import "context"

type embeddingUsageKey struct{}

// EmbeddingUsage collects token usage for a single HTTP request.
// The handler puts a mutable pointer into the context, the ranking pipeline adds
// to it after every embedding call and the handler reports it in response headers.
type EmbeddingUsage struct {
	Calls       int
	TotalTokens int
}

// NewContextWithUsage returns a context with an embedded usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *EmbeddingUsage) {
	u := &EmbeddingUsage{}
	return context.WithValue(ctx, embeddingUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *EmbeddingUsage {
	u, _ := ctx.Value(embeddingUsageKey{}).(*EmbeddingUsage)
	return u
}

// Add records one embedding call. Safe on a nil receiver.
func (u *EmbeddingUsage) Add(tokens int) {
	if u != nil {
		u.Calls++
		u.TotalTokens += tokens
	}
}
