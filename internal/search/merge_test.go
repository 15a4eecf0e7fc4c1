package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/docsearch/internal/corpus"
	"github.com/Aman-CERP/docsearch/internal/store"
)

func mergeSnapshot(titles ...string) *corpus.Snapshot {
	docs := make([]corpus.Document, len(titles))
	for i, title := range titles {
		docs[i] = corpus.Document{ID: i, Title: title}
	}
	return corpus.NewSnapshot(docs)
}

func TestNormalizeScores(t *testing.T) {
	scores := normalizeScores([]store.Candidate{
		{DocID: 0, Score: 0.2},
		{DocID: 1, Score: 0.6},
		{DocID: 2, Score: 1.0},
	})
	assert.InDelta(t, 0.0, scores[0], 1e-12)
	assert.InDelta(t, 0.5, scores[1], 1e-12)
	assert.InDelta(t, 1.0, scores[2], 1e-12)
}

func TestNormalizeScores_DegenerateRange(t *testing.T) {
	single := normalizeScores([]store.Candidate{{DocID: 3, Score: 0.42}})
	assert.Equal(t, 1.0, single[3])

	equal := normalizeScores([]store.Candidate{
		{DocID: 0, Score: 0.5},
		{DocID: 1, Score: 0.5},
	})
	assert.Equal(t, 1.0, equal[0])
	assert.Equal(t, 1.0, equal[1])
}

func TestNormalizeScores_Empty(t *testing.T) {
	assert.Nil(t, normalizeScores(nil))
}

func TestMergeCandidates_WeightedCombination(t *testing.T) {
	snap := mergeSnapshot("alpha", "beta", "gamma")
	policy := WeightPolicy{Semantic: 0.7, Keyword: 0.3, Strategy: StrategySemanticFocused}

	semantic := []store.Candidate{
		{DocID: 0, Score: 0.9},
		{DocID: 1, Score: 0.1},
	}
	keyword := []store.Candidate{
		{DocID: 1, Score: 0.8},
		{DocID: 2, Score: 0.2},
	}

	results := mergeCandidates(semantic, keyword, policy, snap, 10)
	require.Len(t, results, 3)

	byID := make(map[int]Result)
	for _, r := range results {
		byID[r.Doc.ID] = r
	}

	// Doc 0: semantic 1.0 after min-max, no keyword score.
	assert.InDelta(t, 0.7, byID[0].Score, 1e-12)
	// Doc 1: semantic 0.0, keyword 1.0.
	assert.InDelta(t, 0.3, byID[1].Score, 1e-12)
	// Doc 2: keyword 0.0, no semantic score.
	assert.InDelta(t, 0.0, byID[2].Score, 1e-12)

	// Descending order.
	assert.Equal(t, 0, results[0].Doc.ID)
	assert.Equal(t, 1, results[1].Doc.ID)
	assert.Equal(t, 2, results[2].Doc.ID)
}

func TestMergeCandidates_MissingEngineScoreIsZero(t *testing.T) {
	snap := mergeSnapshot("alpha", "beta")
	policy := WeightPolicy{Semantic: 0.5, Keyword: 0.5}

	results := mergeCandidates([]store.Candidate{{DocID: 0, Score: 0.4}}, nil, policy, snap, 10)
	require.Len(t, results, 1)
	assert.Equal(t, 0.0, results[0].KeywordScore)
	assert.InDelta(t, 0.5, results[0].Score, 1e-12)
}

func TestMergeCandidates_DedupKeepsHigherScore(t *testing.T) {
	docs := []corpus.Document{
		{ID: 0, Title: "Consumer Price Index"},
		{ID: 1, Title: "consumer  price index"},
		{ID: 2, Title: "Something Else"},
	}
	snap := corpus.NewSnapshot(docs)
	policy := WeightPolicy{Semantic: 1.0, Keyword: 0.0}

	semantic := []store.Candidate{
		{DocID: 0, Score: 0.9},
		{DocID: 1, Score: 0.6},
		{DocID: 2, Score: 0.0},
	}

	results := mergeCandidates(semantic, nil, policy, snap, 10)
	require.Len(t, results, 2)
	assert.Equal(t, 0, results[0].Doc.ID)
	assert.Equal(t, "Consumer Price Index", results[0].Doc.Title)
}

func TestMergeCandidates_TieBreakLowerID(t *testing.T) {
	snap := mergeSnapshot("alpha", "beta", "gamma")
	policy := WeightPolicy{Semantic: 1.0, Keyword: 0.0}

	// Equal raw scores normalize to 1.0 each.
	semantic := []store.Candidate{
		{DocID: 2, Score: 0.5},
		{DocID: 0, Score: 0.5},
	}

	results := mergeCandidates(semantic, nil, policy, snap, 10)
	require.Len(t, results, 2)
	assert.Equal(t, 0, results[0].Doc.ID)
	assert.Equal(t, 2, results[1].Doc.ID)
}

func TestMergeCandidates_TruncatesToK(t *testing.T) {
	snap := mergeSnapshot("a one", "b two", "c three", "d four")
	policy := WeightPolicy{Semantic: 1.0, Keyword: 0.0}

	semantic := []store.Candidate{
		{DocID: 0, Score: 0.9},
		{DocID: 1, Score: 0.7},
		{DocID: 2, Score: 0.5},
		{DocID: 3, Score: 0.3},
	}

	results := mergeCandidates(semantic, nil, policy, snap, 2)
	require.Len(t, results, 2)
	assert.Equal(t, 0, results[0].Doc.ID)
	assert.Equal(t, 1, results[1].Doc.ID)
}
