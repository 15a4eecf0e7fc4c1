package store

import (
	"context"
	"encoding/gob"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/Aman-CERP/docsearch/internal/corpus"
	apperrors "github.com/Aman-CERP/docsearch/internal/errors"
)

// Keyword index defaults. Terms must appear in at least MinDocFreq
// documents and at most MaxDocFreqRatio of the corpus; the vocabulary
// keeps the most frequent MaxVocabulary terms.
const (
	DefaultMinDocFreq      = 2
	DefaultMaxDocFreqRatio = 0.95
	DefaultMaxVocabulary   = 10000
)

// KeywordConfig controls vocabulary selection for the TF-IDF index.
type KeywordConfig struct {
	MinDocFreq      int
	MaxDocFreqRatio float64
	MaxVocabulary   int
}

// DefaultKeywordConfig returns the standard vocabulary cutoffs.
func DefaultKeywordConfig() KeywordConfig {
	return KeywordConfig{
		MinDocFreq:      DefaultMinDocFreq,
		MaxDocFreqRatio: DefaultMaxDocFreqRatio,
		MaxVocabulary:   DefaultMaxVocabulary,
	}
}

// posting is one document's weight for a term.
type posting struct {
	DocID  int32
	Weight float64
}

// keywordData is the gob-persisted form of the index.
type keywordData struct {
	Fingerprint string
	DocCount    int
	Vocabulary  map[string]int
	IDF         []float64
	Postings    [][]posting
}

// KeywordIndex is an inverted TF-IDF index over document texts.
// Term weights are tf*idf with smoothed idf, and each document row is
// L2-normalized so accumulated postings products equal cosine similarity.
type KeywordIndex struct {
	mu   sync.RWMutex
	data keywordData
}

// BuildKeywordIndex constructs the index from a corpus snapshot.
// Vocabulary selection is deterministic: candidate terms that pass the
// document-frequency cutoffs are ranked by total corpus count with
// lexicographic tie-break, capped, then assigned column ids in
// lexicographic order.
func BuildKeywordIndex(snap *corpus.Snapshot, cfg KeywordConfig) *KeywordIndex {
	if cfg.MinDocFreq <= 0 {
		cfg.MinDocFreq = DefaultMinDocFreq
	}
	if cfg.MaxDocFreqRatio <= 0 {
		cfg.MaxDocFreqRatio = DefaultMaxDocFreqRatio
	}
	if cfg.MaxVocabulary <= 0 {
		cfg.MaxVocabulary = DefaultMaxVocabulary
	}

	docCount := snap.Len()
	termCounts := make([]map[string]int, docCount)
	docFreq := make(map[string]int)
	totalFreq := make(map[string]int)

	for i := 0; i < docCount; i++ {
		counts := make(map[string]int)
		for _, term := range Terms(snap.Text(i)) {
			counts[term]++
			totalFreq[term]++
		}
		for term := range counts {
			docFreq[term]++
		}
		termCounts[i] = counts
	}

	// Document-frequency cutoffs.
	selected := make([]string, 0, len(docFreq))
	for term, df := range docFreq {
		if df < cfg.MinDocFreq {
			continue
		}
		if docCount > 0 && float64(df)/float64(docCount) > cfg.MaxDocFreqRatio {
			continue
		}
		selected = append(selected, term)
	}

	// Cap to the most frequent terms.
	if len(selected) > cfg.MaxVocabulary {
		sort.Slice(selected, func(i, j int) bool {
			if totalFreq[selected[i]] != totalFreq[selected[j]] {
				return totalFreq[selected[i]] > totalFreq[selected[j]]
			}
			return selected[i] < selected[j]
		})
		selected = selected[:cfg.MaxVocabulary]
	}
	sort.Strings(selected)

	vocab := make(map[string]int, len(selected))
	idf := make([]float64, len(selected))
	for col, term := range selected {
		vocab[term] = col
		idf[col] = math.Log(float64(1+docCount)/float64(1+docFreq[term])) + 1
	}

	// Per-document tf*idf rows, L2-normalized, folded into postings.
	postings := make([][]posting, len(selected))
	for doc := 0; doc < docCount; doc++ {
		type cell struct {
			col    int
			weight float64
		}
		row := make([]cell, 0, len(termCounts[doc]))
		var sumSquares float64
		for term, tf := range termCounts[doc] {
			col, ok := vocab[term]
			if !ok {
				continue
			}
			w := float64(tf) * idf[col]
			row = append(row, cell{col, w})
			sumSquares += w * w
		}
		if sumSquares == 0 {
			continue
		}
		norm := math.Sqrt(sumSquares)
		for _, c := range row {
			postings[c.col] = append(postings[c.col], posting{
				DocID:  int32(doc),
				Weight: c.weight / norm,
			})
		}
	}
	for col := range postings {
		sort.Slice(postings[col], func(i, j int) bool {
			return postings[col][i].DocID < postings[col][j].DocID
		})
	}

	slog.Info("keyword_index_built",
		slog.Int("documents", docCount),
		slog.Int("vocabulary", len(selected)))

	return &KeywordIndex{data: keywordData{
		Fingerprint: snap.Fingerprint(),
		DocCount:    docCount,
		Vocabulary:  vocab,
		IDF:         idf,
		Postings:    postings,
	}}
}

// Query scores the query against the corpus and returns up to k
// candidates in descending score order with lower-id tie-break.
// Documents sharing no vocabulary term with the query are never
// returned, whatever k is. Cancellation is checked between posting
// lists so a caller timeout bounds scoring over large corpora.
func (idx *KeywordIndex) Query(ctx context.Context, query string, k int) ([]Candidate, error) {
	if k <= 0 {
		return nil, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	queryCounts := make(map[int]int)
	for _, term := range Terms(query) {
		if col, ok := idx.data.Vocabulary[term]; ok {
			queryCounts[col]++
		}
	}
	if len(queryCounts) == 0 {
		return nil, nil
	}

	var sumSquares float64
	queryWeights := make(map[int]float64, len(queryCounts))
	for col, tf := range queryCounts {
		w := float64(tf) * idx.data.IDF[col]
		queryWeights[col] = w
		sumSquares += w * w
	}
	norm := math.Sqrt(sumSquares)

	scores := make(map[int32]float64)
	for col, qw := range queryWeights {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, p := range idx.data.Postings[col] {
			scores[p.DocID] += (qw / norm) * p.Weight
		}
	}

	candidates := make([]Candidate, 0, len(scores))
	for doc, score := range scores {
		if score <= 0 {
			continue
		}
		candidates = append(candidates, Candidate{DocID: int(doc), Score: score})
	}
	sortCandidates(candidates)
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates, nil
}

// VocabularySize returns the number of indexed terms.
func (idx *KeywordIndex) VocabularySize() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.data.Vocabulary)
}

// DocCount returns the number of indexed documents.
func (idx *KeywordIndex) DocCount() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.data.DocCount
}

// Fingerprint returns the corpus fingerprint captured at build time.
func (idx *KeywordIndex) Fingerprint() string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.data.Fingerprint
}

// Save persists the index atomically (temp file + rename).
func (idx *KeywordIndex) Save(path string) error {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmpPath := path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}

	if err := gob.NewEncoder(file).Encode(idx.data); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("encode keyword index: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close index file: %w", err)
	}
	return os.Rename(tmpPath, path)
}

// LoadKeywordIndex reads a persisted index from disk.
func LoadKeywordIndex(path string) (*KeywordIndex, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	var data keywordData
	if err := gob.NewDecoder(file).Decode(&data); err != nil {
		return nil, apperrors.CacheCorrupt("decode keyword index", err)
	}
	if data.Vocabulary == nil || len(data.IDF) != len(data.Postings) {
		return nil, apperrors.CacheCorrupt("keyword index structure invalid", nil)
	}
	return &KeywordIndex{data: data}, nil
}
