package resumatch

// File is an uploaded resume. The extension of Name selects the reader (.pdf or .txt).
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Score is one ranked resume.
type Score struct {
	Filename   string
	Similarity float64 // cosine similarity in [-1, 1], rounded to 4 decimals
}

// Skip describes a resume left out of the ranking.
type Skip struct {
	Filename string
	Stage    string // "extraction", "embedding" or "scoring"
	Err      error
}

// RankResult is the outcome of Client.Rank.
type RankResult struct {
	Scores          []Score // best match first
	Skipped         []Skip
	EmbeddingCalls  int
	EmbeddingTokens int
}
