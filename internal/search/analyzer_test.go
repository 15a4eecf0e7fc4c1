package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Aman-CERP/docsearch/internal/errors"
)

func TestAnalyzeQuery_ShortVsLong(t *testing.T) {
	cfg := DefaultAnalyzerConfig()

	tests := []struct {
		name     string
		query    string
		strategy string
		semantic float64
		keyword  float64
	}{
		{"short acronym", "COMI", StrategyKeywordFocused, 0.3, 0.7},
		{"exactly at threshold", "abcdef", StrategyKeywordFocused, 0.3, 0.7},
		{"one past threshold", "abcdefg", StrategySemanticFocused, 0.7, 0.3},
		{"multibyte at threshold", "بيانات", StrategyKeywordFocused, 0.3, 0.7},
		{"multibyte past threshold", "بيانات مالية", StrategySemanticFocused, 0.7, 0.3},
		{"natural language", "financial analysis of corporate earnings", StrategySemanticFocused, 0.7, 0.3},
		{"padding ignored", "  COMI  ", StrategyKeywordFocused, 0.3, 0.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy, err := AnalyzeQuery(tt.query, cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.strategy, policy.Strategy)
			assert.Equal(t, tt.semantic, policy.Semantic)
			assert.Equal(t, tt.keyword, policy.Keyword)
		})
	}
}

func TestAnalyzeQuery_Empty(t *testing.T) {
	cfg := DefaultAnalyzerConfig()

	for _, query := range []string{"", "   ", "\t\n"} {
		_, err := AnalyzeQuery(query, cfg)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeInvalidQuery, apperrors.GetCode(err))
	}
}

func TestAnalyzeQuery_CustomThreshold(t *testing.T) {
	cfg := DefaultAnalyzerConfig()
	cfg.ShortQueryThreshold = 10

	short, err := AnalyzeQuery("abcdefghij", cfg)
	require.NoError(t, err)
	assert.Equal(t, StrategyKeywordFocused, short.Strategy)

	long, err := AnalyzeQuery("abcdefghijk", cfg)
	require.NoError(t, err)
	assert.Equal(t, StrategySemanticFocused, long.Strategy)
}
