package chi

import (
	"context"

	"github.com/kailas-cloud/resumatch/internal/domain/document"
	domrank "github.com/kailas-cloud/resumatch/internal/domain/ranking"
	"github.com/kailas-cloud/resumatch/internal/transport/downstream"
	healthuc "github.com/kailas-cloud/resumatch/internal/usecase/health"
)

// Ranker orders resumes by similarity to a job description.
type Ranker interface {
	Rank(ctx context.Context, jobDescription string, docs []document.Document) (domrank.Ranking, error)
}

// Summarizer condenses free text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Forwarder relays a ranking submission to another service.
type Forwarder interface {
	Forward(ctx context.Context, sub downstream.Submission) (downstream.Response, error)
}

// HealthReporter aggregates dependency checks.
type HealthReporter interface {
	Check(ctx context.Context) healthuc.Report
}
