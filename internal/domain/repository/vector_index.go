package repository

import "context"

// VectorIndex is the similarity-search store. All operations are scoped to a
// namespace; one namespace per session keeps uploads isolated.
type VectorIndex interface {
	Upsert(ctx context.Context, namespace string, items []UpsertItem) (int, error)
	// Query returns up to topK nearest neighbours by cosine similarity,
	// descending score, metadata included.
	Query(ctx context.Context, namespace string, vector []float32, topK int, filter map[string]any) ([]QueryMatch, error)
	Delete(ctx context.Context, namespace string, ids []string) error
	DeleteAll(ctx context.Context, namespace string) error
	Stats(ctx context.Context) (*IndexStats, error)
}

type UpsertItem struct {
	ID       string
	Values   []float32
	Metadata map[string]any
}

type QueryMatch struct {
	ID       string
	Score    float64
	Metadata map[string]any
}

type IndexStats struct {
	TotalVectors int64
	Namespaces   int
	Dimension    int
}
