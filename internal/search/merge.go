package search

import (
	"sort"

	"github.com/Aman-CERP/docsearch/internal/corpus"
	"github.com/Aman-CERP/docsearch/internal/store"
)

// normalizeScores min-max scales candidate scores into [0, 1].
// A degenerate range (single candidate, or all scores equal) maps
// every score to 1.0 so the engine still contributes fully.
func normalizeScores(candidates []store.Candidate) map[int]float64 {
	if len(candidates) == 0 {
		return nil
	}

	lo, hi := candidates[0].Score, candidates[0].Score
	for _, c := range candidates[1:] {
		if c.Score < lo {
			lo = c.Score
		}
		if c.Score > hi {
			hi = c.Score
		}
	}

	normalized := make(map[int]float64, len(candidates))
	if hi == lo {
		for _, c := range candidates {
			normalized[c.DocID] = 1.0
		}
		return normalized
	}
	for _, c := range candidates {
		normalized[c.DocID] = (c.Score - lo) / (hi - lo)
	}
	return normalized
}

// mergeCandidates combines per-engine candidate lists into the final
// ranked results. Scores are min-max normalized per engine, weighted
// by the policy (a document missing from one engine contributes zero
// there), deduplicated by normalized title keeping the higher score,
// then sorted descending with lower-id tie-break and truncated to k.
func mergeCandidates(semantic, keyword []store.Candidate, policy WeightPolicy, snap *corpus.Snapshot, k int) []Result {
	semNorm := normalizeScores(semantic)
	keyNorm := normalizeScores(keyword)

	seen := make(map[int]struct{}, len(semNorm)+len(keyNorm))
	merged := make([]Result, 0, len(semNorm)+len(keyNorm))
	for _, norm := range []map[int]float64{semNorm, keyNorm} {
		for docID := range norm {
			if _, dup := seen[docID]; dup {
				continue
			}
			seen[docID] = struct{}{}

			doc, ok := snap.Doc(docID)
			if !ok {
				continue
			}
			s := semNorm[docID]
			w := keyNorm[docID]
			merged = append(merged, Result{
				Doc:           doc,
				Score:         policy.Semantic*s + policy.Keyword*w,
				SemanticScore: s,
				KeywordScore:  w,
			})
		}
	}

	merged = dedupeByTitle(merged)

	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Score != merged[j].Score {
			return merged[i].Score > merged[j].Score
		}
		return merged[i].Doc.ID < merged[j].Doc.ID
	})

	if len(merged) > k {
		merged = merged[:k]
	}
	return merged
}

// dedupeByTitle collapses results whose titles match after case and
// whitespace normalization, keeping the higher-scoring occurrence.
func dedupeByTitle(results []Result) []Result {
	best := make(map[string]int, len(results))
	kept := results[:0]
	for _, r := range results {
		key := corpus.NormalizeTitle(r.Doc.Title)
		idx, exists := best[key]
		if !exists {
			best[key] = len(kept)
			kept = append(kept, r)
			continue
		}
		if r.Score > kept[idx].Score ||
			(r.Score == kept[idx].Score && r.Doc.ID < kept[idx].Doc.ID) {
			kept[idx] = r
		}
	}
	return kept
}
