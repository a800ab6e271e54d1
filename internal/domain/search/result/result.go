// Package result defines the ranked search hit.
package result

import "github.com/Dayende-ib/guichet/internal/domain/procedure"

// Result is a single ranked hit: a procedure plus its relevance score.
// Ordering is descending by score; ties keep index-search order.
type Result struct {
	proc  procedure.Procedure
	score float64
}

// New creates a ranked result.
func New(proc procedure.Procedure, score float64) Result {
	return Result{proc: proc, score: score}
}

// Procedure returns the matched record.
func (r Result) Procedure() procedure.Procedure { return r.proc }

// Score returns the relevance score.
func (r Result) Score() float64 { return r.score }

// WithScore returns a copy carrying a new score (used by the re-rank pass).
func (r Result) WithScore(score float64) Result {
	r.score = score
	return r
}
