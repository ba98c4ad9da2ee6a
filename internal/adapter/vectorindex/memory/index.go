package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"rag-qa/internal/domain/repository"
)

type record struct {
	id       string
	values   []float32
	metadata map[string]any
}

// Index is a brute-force cosine-similarity store used for tests and local
// development without an external vector database.
type Index struct {
	mu        sync.RWMutex
	dimension int
	records   map[string][]record // keyed by namespace
}

func NewIndex(dimension int) *Index {
	return &Index{
		dimension: dimension,
		records:   make(map[string][]record),
	}
}

func (x *Index) Upsert(_ context.Context, namespace string, items []repository.UpsertItem) (int, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	for _, item := range items {
		replaced := false
		for i, rec := range x.records[namespace] {
			if rec.id == item.ID {
				x.records[namespace][i] = record{id: item.ID, values: item.Values, metadata: item.Metadata}
				replaced = true
				break
			}
		}
		if !replaced {
			x.records[namespace] = append(x.records[namespace], record{
				id:       item.ID,
				values:   item.Values,
				metadata: item.Metadata,
			})
		}
	}
	return len(items), nil
}

func (x *Index) Query(_ context.Context, namespace string, vector []float32, topK int, filter map[string]any) ([]repository.QueryMatch, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	var matches []repository.QueryMatch
	for _, rec := range x.records[namespace] {
		if !matchesFilter(rec.metadata, filter) {
			continue
		}
		matches = append(matches, repository.QueryMatch{
			ID:       rec.id,
			Score:    cosine(vector, rec.values),
			Metadata: rec.metadata,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (x *Index) Delete(_ context.Context, namespace string, ids []string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	kept := x.records[namespace][:0]
	for _, rec := range x.records[namespace] {
		if !drop[rec.id] {
			kept = append(kept, rec)
		}
	}
	x.records[namespace] = kept
	return nil
}

func (x *Index) DeleteAll(_ context.Context, namespace string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.records, namespace)
	return nil
}

func (x *Index) Stats(_ context.Context) (*repository.IndexStats, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	total := int64(0)
	for _, recs := range x.records {
		total += int64(len(recs))
	}
	return &repository.IndexStats{
		TotalVectors: total,
		Namespaces:   len(x.records),
		Dimension:    x.dimension,
	}, nil
}

// matchesFilter supports the Pinecone-style equality filters the service uses.
func matchesFilter(metadata, filter map[string]any) bool {
	for key, cond := range filter {
		switch v := cond.(type) {
		case map[string]any:
			if eq, ok := v["$eq"]; ok && metadata[key] != eq {
				return false
			}
		default:
			if metadata[key] != cond {
				return false
			}
		}
	}
	return true
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
