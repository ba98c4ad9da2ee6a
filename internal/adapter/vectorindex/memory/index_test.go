package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag-qa/internal/domain/repository"
)

func seedIndex(t *testing.T) *Index {
	t.Helper()
	index := NewIndex(2)
	_, err := index.Upsert(context.Background(), "ns", []repository.UpsertItem{
		{ID: "a", Values: []float32{1, 0}, Metadata: map[string]any{"document_id": "doc_a"}},
		{ID: "b", Values: []float32{0, 1}, Metadata: map[string]any{"document_id": "doc_b"}},
		{ID: "c", Values: []float32{1, 1}, Metadata: map[string]any{"document_id": "doc_a"}},
	})
	require.NoError(t, err)
	return index
}

func TestQuery_OrdersByScoreDescending(t *testing.T) {
	index := seedIndex(t)

	matches, err := index.Query(context.Background(), "ns", []float32{1, 0}, 10, nil)

	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, "a", matches[0].ID)
	assert.Equal(t, "c", matches[1].ID)
	assert.Equal(t, "b", matches[2].ID)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-9)
	assert.InDelta(t, 0.7071, matches[1].Score, 1e-4)
	assert.InDelta(t, 0.0, matches[2].Score, 1e-9)
}

func TestQuery_TopKLimit(t *testing.T) {
	index := seedIndex(t)

	matches, err := index.Query(context.Background(), "ns", []float32{1, 0}, 2, nil)

	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "a", matches[0].ID)
}

func TestQuery_EqualityFilter(t *testing.T) {
	index := seedIndex(t)
	filter := map[string]any{"document_id": map[string]any{"$eq": "doc_a"}}

	matches, err := index.Query(context.Background(), "ns", []float32{1, 0}, 10, filter)

	require.NoError(t, err)
	require.Len(t, matches, 2)
	for _, m := range matches {
		assert.Equal(t, "doc_a", m.Metadata["document_id"])
	}
}

func TestQuery_UnknownNamespace(t *testing.T) {
	index := seedIndex(t)

	matches, err := index.Query(context.Background(), "other", []float32{1, 0}, 10, nil)

	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestUpsert_ReplacesExistingID(t *testing.T) {
	index := seedIndex(t)

	_, err := index.Upsert(context.Background(), "ns", []repository.UpsertItem{
		{ID: "a", Values: []float32{0, 1}, Metadata: map[string]any{"document_id": "doc_z"}},
	})
	require.NoError(t, err)

	matches, err := index.Query(context.Background(), "ns", []float32{0, 1}, 1, nil)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "doc_z", matches[0].Metadata["document_id"])

	stats, err := index.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalVectors)
}

func TestDelete_RemovesOnlyGivenIDs(t *testing.T) {
	index := seedIndex(t)

	require.NoError(t, index.Delete(context.Background(), "ns", []string{"a", "c"}))

	matches, err := index.Query(context.Background(), "ns", []float32{1, 0}, 10, nil)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "b", matches[0].ID)
}

func TestDeleteAll_ClearsNamespace(t *testing.T) {
	index := seedIndex(t)
	_, err := index.Upsert(context.Background(), "other", []repository.UpsertItem{
		{ID: "x", Values: []float32{1, 0}, Metadata: map[string]any{}},
	})
	require.NoError(t, err)

	require.NoError(t, index.DeleteAll(context.Background(), "ns"))

	matches, err := index.Query(context.Background(), "ns", []float32{1, 0}, 10, nil)
	require.NoError(t, err)
	assert.Empty(t, matches)

	matches, err = index.Query(context.Background(), "other", []float32{1, 0}, 10, nil)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}
