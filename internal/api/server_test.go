package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/docsearch/internal/corpus"
	"github.com/Aman-CERP/docsearch/internal/embed"
	apperrors "github.com/Aman-CERP/docsearch/internal/errors"
	"github.com/Aman-CERP/docsearch/internal/search"
	"github.com/Aman-CERP/docsearch/internal/store"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	docs := []corpus.Document{
		{ID: 0, Title: "Consumer Price Index"},
		{ID: 1, Title: "Unemployment Rate by County"},
		{ID: 2, Title: "Retail Gasoline Prices"},
	}
	snap := corpus.NewSnapshot(docs)

	vidx, err := store.BuildVectorIndex(context.Background(), snap, embed.NewStaticEmbedder(), store.DefaultVectorConfig())
	require.NoError(t, err)

	kcfg := store.KeywordConfig{MinDocFreq: 1, MaxDocFreqRatio: 1.0, MaxVocabulary: 10000}
	engine := search.NewEngine(search.DefaultEngineConfig())
	engine.Swap(&search.Indexes{
		Snapshot: snap,
		Vector:   vidx,
		Keyword:  store.BuildKeywordIndex(snap, kcfg),
		Embedder: embed.NewStaticEmbedder(),
	})

	return NewServer("127.0.0.1:0", engine)
}

func TestHealthz(t *testing.T) {
	server := testServer(t)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var health healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "both", health.Capability)
	assert.Equal(t, 3, health.Documents)
}

func TestHealthz_NoIndex(t *testing.T) {
	server := NewServer("127.0.0.1:0", search.NewEngine(search.DefaultEngineConfig()))

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSearchGet(t *testing.T) {
	server := testServer(t)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search?q=gasoline+prices&k=2", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp search.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, 2, resp.Results[0].Doc.ID)
	assert.LessOrEqual(t, len(resp.Results), 2)
}

func TestSearchPost(t *testing.T) {
	server := testServer(t)

	body := strings.NewReader(`{"query": "unemployment rate statistics", "k": 3}`)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/search", body))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp search.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, 1, resp.Results[0].Doc.ID)
}

func TestSearch_EmptyQuery(t *testing.T) {
	server := testServer(t)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search?q=", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, apperrors.ErrCodeInvalidQuery, errResp.Code)
}

func TestSearch_InvalidK(t *testing.T) {
	server := testServer(t)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search?q=prices&k=zero", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearch_MalformedBody(t *testing.T) {
	server := testServer(t)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/search", strings.NewReader("{not json")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearch_NoIndex(t *testing.T) {
	server := NewServer("127.0.0.1:0", search.NewEngine(search.DefaultEngineConfig()))

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search?q=anything", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var errResp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, apperrors.ErrCodeIndexUnbuilt, errResp.Code)
}
