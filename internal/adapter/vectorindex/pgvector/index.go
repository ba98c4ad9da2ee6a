package pgvector

import (
	"context"
	"encoding/json"
	"fmt"

	"rag-qa/internal/domain/repository"
	"rag-qa/pkg/logger"

	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"
)

// Index implements the VectorIndex interface on Postgres with the pgvector
// extension. Namespacing is a plain column; cosine similarity uses the <=>
// operator.
//
// Expected schema:
//
//	CREATE TABLE chunk_vectors (
//	    id          TEXT PRIMARY KEY,
//	    namespace   TEXT NOT NULL,
//	    document_id TEXT NOT NULL,
//	    chunk_index INT  NOT NULL,
//	    embedding   VECTOR NOT NULL,
//	    metadata    JSONB NOT NULL,
//	    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type Index struct {
	log       *logger.Logger
	db        *sqlx.DB
	dimension int
}

func NewIndex(log *logger.Logger, db *sqlx.DB, dimension int) *Index {
	return &Index{
		log:       log.With("service", "PgvectorIndex"),
		db:        db,
		dimension: dimension,
	}
}

func (x *Index) Upsert(ctx context.Context, namespace string, items []repository.UpsertItem) (int, error) {
	tx, err := x.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO chunk_vectors (id, namespace, document_id, chunk_index, embedding, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET embedding = EXCLUDED.embedding, metadata = EXCLUDED.metadata
	`

	for _, item := range items {
		metadata, err := json.Marshal(item.Metadata)
		if err != nil {
			return 0, err
		}
		docID, _ := item.Metadata["document_id"].(string)
		chunkIndex := 0
		if idx, ok := item.Metadata["chunk_index"].(int); ok {
			chunkIndex = idx
		}

		if _, err := tx.ExecContext(ctx, query,
			item.ID,
			namespace,
			docID,
			chunkIndex,
			pgvector.NewVector(item.Values),
			metadata,
		); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(items), nil
}

func (x *Index) Query(ctx context.Context, namespace string, vector []float32, topK int, filter map[string]any) ([]repository.QueryMatch, error) {
	query, args := buildQuery(vector, namespace, topK, filter)

	rows, err := x.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []repository.QueryMatch
	for rows.Next() {
		var (
			id       string
			score    float64
			metadata []byte
		)
		if err := rows.Scan(&id, &score, &metadata); err != nil {
			return nil, err
		}
		meta := map[string]any{}
		if err := json.Unmarshal(metadata, &meta); err != nil {
			return nil, err
		}
		matches = append(matches, repository.QueryMatch{ID: id, Score: score, Metadata: meta})
	}
	return matches, rows.Err()
}

func (x *Index) Delete(ctx context.Context, namespace string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM chunk_vectors WHERE namespace = ? AND id IN (?)`, namespace, ids)
	if err != nil {
		return err
	}
	_, err = x.db.ExecContext(ctx, x.db.Rebind(query), args...)
	return err
}

func (x *Index) DeleteAll(ctx context.Context, namespace string) error {
	query := `DELETE FROM chunk_vectors WHERE namespace = $1`
	_, err := x.db.ExecContext(ctx, query, namespace)
	return err
}

func (x *Index) Stats(ctx context.Context) (*repository.IndexStats, error) {
	var stats struct {
		TotalVectors int64 `db:"total_vectors"`
		Namespaces   int   `db:"namespaces"`
	}
	query := `SELECT COUNT(*) AS total_vectors, COUNT(DISTINCT namespace) AS namespaces FROM chunk_vectors`
	if err := x.db.GetContext(ctx, &stats, query); err != nil {
		return nil, err
	}
	return &repository.IndexStats{
		TotalVectors: stats.TotalVectors,
		Namespaces:   stats.Namespaces,
		Dimension:    x.dimension,
	}, nil
}

// buildQuery assembles the similarity SQL so every bound argument is
// referenced by a placeholder; the server cannot type an unreferenced
// parameter at prepare time.
func buildQuery(vector []float32, namespace string, topK int, filter map[string]any) (string, []any) {
	docID, hasDocFilter := filterDocumentID(filter)

	// A zero query vector has no defined cosine distance; fall back to index
	// order so metadata-only scans (document listing) still work. The vector
	// is not bound at all in this case.
	if isZero(vector) {
		where := `namespace = $1`
		args := []any{namespace}
		if hasDocFilter {
			where += ` AND document_id = $2`
			args = append(args, docID)
		}
		query := fmt.Sprintf(`
		SELECT id, 0 AS score, metadata
		FROM chunk_vectors
		WHERE %s
		ORDER BY document_id, chunk_index
		LIMIT %d
	`, where, topK)
		return query, args
	}

	where := `namespace = $2`
	args := []any{pgvector.NewVector(vector), namespace}
	if hasDocFilter {
		where += ` AND document_id = $3`
		args = append(args, docID)
	}
	query := fmt.Sprintf(`
		SELECT id, 1 - (embedding <=> $1) AS score, metadata
		FROM chunk_vectors
		WHERE %s
		ORDER BY embedding <=> $1
		LIMIT %d
	`, where, topK)
	return query, args
}

func filterDocumentID(filter map[string]any) (string, bool) {
	if filter == nil {
		return "", false
	}
	cond, ok := filter["document_id"]
	if !ok {
		return "", false
	}
	// Pinecone-style {"document_id": {"$eq": "..."}} or a bare string.
	switch v := cond.(type) {
	case string:
		return v, true
	case map[string]any:
		if eq, ok := v["$eq"].(string); ok {
			return eq, true
		}
	}
	return "", false
}

func isZero(vector []float32) bool {
	for _, v := range vector {
		if v != 0 {
			return false
		}
	}
	return true
}
