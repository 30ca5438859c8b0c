package score

import "math"

// Precision is the number of decimal places scores are rounded to.
const Precision = 4

// Record pairs a document filename with its similarity to the job description.
type Record struct {
	filename string
	score    float64
}

// New creates a record, rounding score to Precision decimal places.
func New(filename string, score float64) Record {
	return Record{filename: filename, score: Round(score)}
}

// Filename returns the document identifier.
func (r *Record) Filename() string { return r.filename }

// Score returns the rounded cosine similarity.
func (r *Record) Score() float64 { return r.score }

// Round rounds half away from zero to Precision decimal places.
func Round(v float64) float64 {
	p := math.Pow10(Precision)
	return math.Round(v*p) / p
}
