package ranking

import (
	"fmt"
	"math"
	"sort"

	"github.com/kailas-cloud/resumatch/internal/domain"
	domrank "github.com/kailas-cloud/resumatch/internal/domain/ranking"
	"github.com/kailas-cloud/resumatch/internal/domain/score"
)

// Cosine returns the cosine similarity of two equal-length vectors.
// A zero-magnitude vector has similarity 0 with everything.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", domain.ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Clamp float error at the boundaries.
	return math.Max(-1, math.Min(1, sim)), nil
}

// Rank scores every candidate against the reference and orders the records by
// descending similarity. Ties keep input order. Candidates that cannot be compared
// are returned as scoring-stage skips.
func Rank(reference []float32, candidates []domrank.Candidate) ([]score.Record, []domrank.Skip) {
	records := make([]score.Record, 0, len(candidates))
	var skipped []domrank.Skip

	for _, c := range candidates {
		sim, err := Cosine(reference, c.Vector)
		if err != nil {
			skipped = append(skipped, domrank.Skip{Filename: c.Filename, Stage: domrank.StageScoring, Err: err})
			continue
		}
		records = append(records, score.New(c.Filename, sim))
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Score() > records[j].Score()
	})

	return records, skipped
}
