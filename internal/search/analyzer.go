package search

import (
	"strings"
	"unicode/utf8"

	apperrors "github.com/Aman-CERP/docsearch/internal/errors"
)

// DefaultShortQueryThreshold is the trimmed character length at or
// below which a query is treated as keyword-seeking. Short queries are
// usually identifiers or jargon that lexical matching handles better;
// longer queries read like natural language and favor embeddings.
const DefaultShortQueryThreshold = 6

// AnalyzerConfig tunes query classification.
type AnalyzerConfig struct {
	ShortQueryThreshold int
	ShortQueryWeights   WeightPolicy
	LongQueryWeights    WeightPolicy
}

// DefaultAnalyzerConfig returns the standard classification policy.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		ShortQueryThreshold: DefaultShortQueryThreshold,
		ShortQueryWeights: WeightPolicy{
			Semantic: 0.3,
			Keyword:  0.7,
			Strategy: StrategyKeywordFocused,
		},
		LongQueryWeights: WeightPolicy{
			Semantic: 0.7,
			Keyword:  0.3,
			Strategy: StrategySemanticFocused,
		},
	}
}

// AnalyzeQuery classifies the query and returns the weight policy to
// apply. The length test uses the whitespace-trimmed query; an empty
// trimmed query is rejected.
func AnalyzeQuery(query string, cfg AnalyzerConfig) (WeightPolicy, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return WeightPolicy{}, apperrors.InvalidQuery("query must not be empty")
	}

	threshold := cfg.ShortQueryThreshold
	if threshold <= 0 {
		threshold = DefaultShortQueryThreshold
	}

	if utf8.RuneCountInString(trimmed) <= threshold {
		return cfg.ShortQueryWeights, nil
	}
	return cfg.LongQueryWeights, nil
}
