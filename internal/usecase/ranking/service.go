// Package ranking scores resumes against a job description.
package ranking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/resumatch/internal/domain"
	"github.com/kailas-cloud/resumatch/internal/domain/document"
	domrank "github.com/kailas-cloud/resumatch/internal/domain/ranking"
	"github.com/kailas-cloud/resumatch/internal/logger"
	"github.com/kailas-cloud/resumatch/internal/metrics"
)

// outcomeRanked is the metrics outcome for documents that made it into the results.
const outcomeRanked = "ranked"

// Service runs the extract, embed and score pipeline for one request.
type Service struct {
	extractor TextExtractor
	embed     Embedder
}

// New creates a ranking service.
func New(extractor TextExtractor, embed Embedder) *Service {
	return &Service{extractor: extractor, embed: embed}
}

// Rank embeds the job description and every resume, and returns the resumes ordered by
// similarity. Per-document failures are collected as skips; only a missing job
// description or a failure to embed it fails the whole request.
func (s *Service) Rank(
	ctx context.Context, jobDescription string, docs []document.Document,
) (domrank.Ranking, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return domrank.Ranking{}, fmt.Errorf("job_description: %w", domain.ErrMissingField)
	}

	start := time.Now()
	defer func() { metrics.RankingDuration.Observe(time.Since(start).Seconds()) }()

	if len(docs) == 0 {
		return domrank.Ranking{}, nil
	}

	ref, err := s.embed.Embed(ctx, jobDescription)
	if err != nil {
		return domrank.Ranking{}, fmt.Errorf("embed job description: %w", err)
	}

	log := logger.FromContext(ctx)
	candidates := make([]domrank.Candidate, 0, len(docs))
	var skipped []domrank.Skip

	for i := range docs {
		doc := &docs[i]

		text, err := s.extractor.Extract(ctx, doc)
		if err != nil {
			skipped = append(skipped, domrank.Skip{Filename: doc.Filename(), Stage: domrank.StageExtraction, Err: err})
			continue
		}

		emb, err := s.embed.Embed(ctx, text)
		if err != nil {
			// A cancelled or expired request fails every remaining call; stop here.
			if ctxErr := ctx.Err(); ctxErr != nil {
				return domrank.Ranking{}, fmt.Errorf("embed %s: %w", doc.Filename(), ctxErr)
			}
			skipped = append(skipped, domrank.Skip{Filename: doc.Filename(), Stage: domrank.StageEmbedding, Err: err})
			continue
		}

		candidates = append(candidates, domrank.Candidate{Filename: doc.Filename(), Vector: emb.Embedding})
	}

	records, scoreSkips := Rank(ref.Embedding, candidates)
	skipped = append(skipped, scoreSkips...)

	for _, sk := range skipped {
		log.Warn("Resume skipped",
			zap.String("filename", sk.Filename),
			zap.String("stage", string(sk.Stage)),
			zap.Error(sk.Err),
		)
		metrics.RankingDocumentsTotal.WithLabelValues(string(sk.Stage)).Inc()
	}
	metrics.RankingDocumentsTotal.WithLabelValues(outcomeRanked).Add(float64(len(records)))

	log.Info("Resumes ranked",
		zap.Int("documents", len(docs)),
		zap.Int("ranked", len(records)),
		zap.Int("skipped", len(skipped)),
		zap.Duration("duration", time.Since(start)),
	)

	return domrank.Ranking{Records: records, Skipped: skipped}, nil
}
