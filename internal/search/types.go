// Package search implements hybrid retrieval: a semantic engine over
// dense embeddings and a keyword engine over TF-IDF vectors, combined
// with query-adaptive weights.
package search

import (
	"time"

	"github.com/Aman-CERP/docsearch/internal/corpus"
)

// Strategy names reported in responses.
const (
	StrategyKeywordFocused  = "keyword-focused"
	StrategySemanticFocused = "semantic-focused"
)

// WeightPolicy is the per-query blend of engine scores.
type WeightPolicy struct {
	Semantic float64
	Keyword  float64
	Strategy string
}

// Result is a single merged search hit.
type Result struct {
	Doc   corpus.Document `json:"doc"`
	Score float64         `json:"score"`

	// Normalized per-engine contributions, zero when the engine did
	// not return the document.
	SemanticScore float64 `json:"semantic_score"`
	KeywordScore  float64 `json:"keyword_score"`
}

// Response is the outcome of one search request.
type Response struct {
	Query    string        `json:"query"`
	Strategy string        `json:"strategy"`
	Degraded bool          `json:"degraded"`
	Results  []Result      `json:"results"`
	Took     time.Duration `json:"took"`
}

// Capability describes which engines are currently operational.
type Capability int

const (
	CapabilityNone Capability = iota
	CapabilityKeywordOnly
	CapabilitySemanticOnly
	CapabilityBoth
)

// String returns the capability name.
func (c Capability) String() string {
	switch c {
	case CapabilityBoth:
		return "both"
	case CapabilitySemanticOnly:
		return "semantic-only"
	case CapabilityKeywordOnly:
		return "keyword-only"
	default:
		return "none"
	}
}
