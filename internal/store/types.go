package store

import (
	"fmt"
	"sort"
)

// Candidate is a single scored document from one retrieval engine.
// Scores are engine-native cosine similarities; callers normalize
// before combining across engines.
type Candidate struct {
	DocID int
	Score float64
}

// sortCandidates orders candidates by score descending, breaking ties
// with the lower document ID.
func sortCandidates(candidates []Candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].DocID < candidates[j].DocID
	})
}

// ErrDimensionMismatch reports a vector whose size does not match the
// index configuration.
type ErrDimensionMismatch struct {
	Expected int
	Got      int
}

func (e ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Got)
}
