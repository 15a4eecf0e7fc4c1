package store

import (
	"bufio"
	"context"
	"encoding/gob"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/coder/hnsw"

	"github.com/Aman-CERP/docsearch/internal/corpus"
	"github.com/Aman-CERP/docsearch/internal/embed"
	apperrors "github.com/Aman-CERP/docsearch/internal/errors"
)

// HNSW defaults, tuned for corpora in the tens of thousands of
// documents. EfSearch is scaled up per query when k is large.
const (
	DefaultHNSWM        = 16
	DefaultHNSWEfSearch = 64
)

// VectorConfig controls HNSW graph construction.
type VectorConfig struct {
	M        int
	EfSearch int
}

// DefaultVectorConfig returns the standard graph parameters.
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{M: DefaultHNSWM, EfSearch: DefaultHNSWEfSearch}
}

// vectorMeta is the gob-persisted sidecar for the HNSW graph.
type vectorMeta struct {
	Fingerprint string
	DocCount    int
	Dimensions  int
	ModelName   string
}

// VectorIndex is a dense similarity index over document embeddings.
// Vectors are stored L2-normalized with cosine distance, so the
// reported score 1-distance is the exact inner product of unit
// vectors: a document queried with its own embedding scores 1.0.
type VectorIndex struct {
	mu    sync.RWMutex
	graph *hnsw.Graph[int]
	meta  vectorMeta
	cfg   VectorConfig
}

func newGraph(cfg VectorConfig) *hnsw.Graph[int] {
	graph := hnsw.NewGraph[int]()
	graph.Distance = hnsw.CosineDistance
	graph.M = cfg.M
	graph.EfSearch = cfg.EfSearch
	graph.Ml = 0.25
	return graph
}

// BuildVectorIndex embeds every snapshot text and inserts it into a
// fresh graph keyed by document ID.
func BuildVectorIndex(ctx context.Context, snap *corpus.Snapshot, embedder embed.Embedder, cfg VectorConfig) (*VectorIndex, error) {
	if cfg.M <= 0 {
		cfg.M = DefaultHNSWM
	}
	if cfg.EfSearch <= 0 {
		cfg.EfSearch = DefaultHNSWEfSearch
	}

	vectors, err := embedder.EmbedBatch(ctx, snap.Texts())
	if err != nil {
		return nil, fmt.Errorf("embed corpus: %w", err)
	}
	if len(vectors) != snap.Len() {
		return nil, fmt.Errorf("embedder returned %d vectors for %d documents", len(vectors), snap.Len())
	}

	dims := embedder.Dimensions()
	graph := newGraph(cfg)
	for i, vec := range vectors {
		if len(vec) != dims {
			return nil, ErrDimensionMismatch{Expected: dims, Got: len(vec)}
		}
		normalized := make([]float32, len(vec))
		copy(normalized, vec)
		normalizeInPlace(normalized)
		graph.Add(hnsw.MakeNode(i, normalized))
	}

	slog.Info("vector_index_built",
		slog.Int("documents", snap.Len()),
		slog.Int("dimensions", dims),
		slog.String("model", embedder.ModelName()))

	return &VectorIndex{
		graph: graph,
		cfg:   cfg,
		meta: vectorMeta{
			Fingerprint: snap.Fingerprint(),
			DocCount:    snap.Len(),
			Dimensions:  dims,
			ModelName:   embedder.ModelName(),
		},
	}, nil
}

// Query returns up to k nearest documents by cosine similarity,
// descending, with lower-id tie-break.
func (idx *VectorIndex) Query(queryVec []float32, k int) ([]Candidate, error) {
	if k <= 0 {
		return nil, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.meta.DocCount == 0 {
		return nil, nil
	}
	if len(queryVec) != idx.meta.Dimensions {
		return nil, ErrDimensionMismatch{Expected: idx.meta.Dimensions, Got: len(queryVec)}
	}

	normalized := make([]float32, len(queryVec))
	copy(normalized, queryVec)
	normalizeInPlace(normalized)

	nodes := idx.graph.Search(normalized, min(k, idx.meta.DocCount))

	candidates := make([]Candidate, 0, len(nodes))
	for _, node := range nodes {
		distance := float64(hnsw.CosineDistance(normalized, node.Value))
		candidates = append(candidates, Candidate{
			DocID: node.Key,
			Score: 1 - distance,
		})
	}
	sortCandidates(candidates)
	return candidates, nil
}

// DocCount returns the number of indexed documents.
func (idx *VectorIndex) DocCount() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.meta.DocCount
}

// Dimensions returns the embedding dimension of the index.
func (idx *VectorIndex) Dimensions() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.meta.Dimensions
}

// ModelName returns the embedding model the index was built with.
func (idx *VectorIndex) ModelName() string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.meta.ModelName
}

// Fingerprint returns the corpus fingerprint captured at build time.
func (idx *VectorIndex) Fingerprint() string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.meta.Fingerprint
}

// Save persists the graph and its metadata sidecar atomically.
func (idx *VectorIndex) Save(path string) error {
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
	if err := idx.graph.Export(file); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("export graph: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close index file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename index file: %w", err)
	}

	metaTmp := path + ".meta.tmp"
	metaFile, err := os.Create(metaTmp)
	if err != nil {
		return fmt.Errorf("create metadata file: %w", err)
	}
	if err := gob.NewEncoder(metaFile).Encode(idx.meta); err != nil {
		_ = metaFile.Close()
		_ = os.Remove(metaTmp)
		return fmt.Errorf("encode metadata: %w", err)
	}
	if err := metaFile.Close(); err != nil {
		_ = os.Remove(metaTmp)
		return fmt.Errorf("close metadata file: %w", err)
	}
	return os.Rename(metaTmp, path+".meta")
}

// LoadVectorIndex reads a persisted graph and metadata from disk.
func LoadVectorIndex(path string, cfg VectorConfig) (*VectorIndex, error) {
	if cfg.M <= 0 {
		cfg.M = DefaultHNSWM
	}
	if cfg.EfSearch <= 0 {
		cfg.EfSearch = DefaultHNSWEfSearch
	}

	metaFile, err := os.Open(path + ".meta")
	if err != nil {
		return nil, err
	}
	var meta vectorMeta
	decodeErr := gob.NewDecoder(metaFile).Decode(&meta)
	_ = metaFile.Close()
	if decodeErr != nil {
		return nil, apperrors.CacheCorrupt("decode vector metadata", decodeErr)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	graph := newGraph(cfg)
	// coder/hnsw Import requires an io.ByteReader.
	if err := graph.Import(bufio.NewReader(file)); err != nil {
		return nil, apperrors.CacheCorrupt("import graph", err)
	}
	if graph.Len() != meta.DocCount {
		return nil, apperrors.CacheCorrupt(
			fmt.Sprintf("graph holds %d nodes, metadata says %d", graph.Len(), meta.DocCount), nil)
	}

	return &VectorIndex{graph: graph, meta: meta, cfg: cfg}, nil
}

// normalizeInPlace scales a vector to unit L2 norm.
func normalizeInPlace(vec []float32) {
	var sumSquares float64
	for _, v := range vec {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares == 0 {
		return
	}
	norm := float32(math.Sqrt(sumSquares))
	for i := range vec {
		vec[i] /= norm
	}
}
