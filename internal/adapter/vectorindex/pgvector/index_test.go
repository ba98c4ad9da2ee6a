package pgvector

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// maxPlaceholder returns the highest $N referenced in the query.
func maxPlaceholder(query string) int {
	n := 0
	for strings.Contains(query, fmt.Sprintf("$%d", n+1)) {
		n++
	}
	return n
}

func TestBuildQuery_SimilaritySearch(t *testing.T) {
	query, args := buildQuery([]float32{1, 0, 0, 0}, "s1", 7, nil)

	require.Len(t, args, 2)
	assert.Equal(t, "s1", args[1])
	assert.Contains(t, query, "1 - (embedding <=> $1)")
	assert.Contains(t, query, "ORDER BY embedding <=> $1")
	assert.Contains(t, query, "LIMIT 7")
	assert.Equal(t, len(args), maxPlaceholder(query))
}

func TestBuildQuery_SimilaritySearchWithDocumentFilter(t *testing.T) {
	filter := map[string]any{"document_id": map[string]any{"$eq": "doc_a"}}

	query, args := buildQuery([]float32{1, 0, 0, 0}, "s1", 7, filter)

	require.Len(t, args, 3)
	assert.Equal(t, "doc_a", args[2])
	assert.Contains(t, query, "document_id = $3")
	assert.Equal(t, len(args), maxPlaceholder(query))
}

func TestBuildQuery_ZeroVectorScanBindsOnlyReferencedArgs(t *testing.T) {
	query, args := buildQuery(make([]float32, 4), "s1", 10000, nil)

	// the zero vector must not be bound: the server cannot type a parameter
	// that no placeholder references
	require.Len(t, args, 1)
	assert.Equal(t, "s1", args[0])
	assert.Contains(t, query, "0 AS score")
	assert.Contains(t, query, "ORDER BY document_id, chunk_index")
	assert.NotContains(t, query, "<=>")
	assert.Equal(t, len(args), maxPlaceholder(query))
}

func TestBuildQuery_ZeroVectorScanWithDocumentFilter(t *testing.T) {
	filter := map[string]any{"document_id": map[string]any{"$eq": "doc_a"}}

	query, args := buildQuery(make([]float32, 4), "s1", 10000, filter)

	require.Len(t, args, 2)
	assert.Equal(t, "s1", args[0])
	assert.Equal(t, "doc_a", args[1])
	assert.Contains(t, query, "document_id = $2")
	assert.Equal(t, len(args), maxPlaceholder(query))
}

func TestFilterDocumentID(t *testing.T) {
	tests := []struct {
		name   string
		filter map[string]any
		want   string
		ok     bool
	}{
		{"nil filter", nil, "", false},
		{"eq condition", map[string]any{"document_id": map[string]any{"$eq": "doc_a"}}, "doc_a", true},
		{"bare string", map[string]any{"document_id": "doc_b"}, "doc_b", true},
		{"unrelated key", map[string]any{"filename": "a.txt"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := filterDocumentID(tt.filter)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
