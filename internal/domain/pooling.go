package domain

import (
	"errors"
	"fmt"
)

// Pooling selects how token hidden states collapse into one document vector.
type Pooling string

const (
	// PoolingMean averages every token hidden state across the sequence dimension.
	PoolingMean Pooling = "mean"
	// PoolingCLS takes the hidden state of the first (classification) token.
	PoolingCLS Pooling = "cls"
)

// ParsePooling validates a configured pooling name. Empty defaults to mean.
func ParsePooling(s string) (Pooling, error) {
	switch Pooling(s) {
	case "", PoolingMean:
		return PoolingMean, nil
	case PoolingCLS:
		return PoolingCLS, nil
	default:
		return "", fmt.Errorf("unknown pooling %q (want %q or %q)", s, PoolingMean, PoolingCLS)
	}
}

// Pool reduces per-token hidden states ([tokens][hidden]) to a single vector.
func (p Pooling) Pool(hidden [][]float32) ([]float32, error) {
	if len(hidden) == 0 {
		return nil, errors.New("pool: no token states")
	}
	dim := len(hidden[0])
	if dim == 0 {
		return nil, errors.New("pool: empty hidden state")
	}

	switch p {
	case PoolingCLS:
		out := make([]float32, dim)
		copy(out, hidden[0])
		return out, nil
	case PoolingMean:
		sum := make([]float64, dim)
		for i, tok := range hidden {
			if len(tok) != dim {
				return nil, fmt.Errorf("pool: token %d has %d dims, want %d: %w", i, len(tok), dim, ErrDimensionMismatch)
			}
			for j, v := range tok {
				sum[j] += float64(v)
			}
		}
		out := make([]float32, dim)
		n := float64(len(hidden))
		for j := range sum {
			out[j] = float32(sum[j] / n)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("pool: unknown pooling %q", p)
	}
}
