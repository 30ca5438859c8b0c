package ranking

import "github.com/kailas-cloud/resumatch/internal/domain/score"

// Stage names the pipeline step at which a document was dropped.
type Stage string

const (
	// StageExtraction means no usable text could be read from the document.
	StageExtraction Stage = "extraction"
	// StageEmbedding means the model failed to embed the extracted text.
	StageEmbedding Stage = "embedding"
	// StageScoring means the embedding could not be compared with the reference.
	StageScoring Stage = "scoring"
)

// Skip records a document dropped from the results and why.
type Skip struct {
	Filename string
	Stage    Stage
	Err      error
}

// Ranking is the outcome of one ranking run.
type Ranking struct {
	Records []score.Record
	Skipped []Skip
}

// Candidate is a named vector to compare against the reference.
type Candidate struct {
	Filename string
	Vector   []float32
}
