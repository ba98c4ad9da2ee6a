package pinecone

import (
	"context"
	"fmt"
	"strings"

	"rag-qa/internal/domain/repository"
	"rag-qa/pkg/logger"
)

const upsertBatchSize = 100

type Index struct {
	log       *logger.Logger
	client    *Client
	indexName string
	indexHost string
}

type IndexConfig struct {
	IndexName string
	IndexHost string
}

// NewIndex wires the Pinecone data plane behind the VectorIndex interface.
// If the host is not configured it is resolved once via describe_index.
func NewIndex(log *logger.Logger, client *Client, cfg IndexConfig) (*Index, error) {
	if client == nil {
		return nil, fmt.Errorf("pinecone client required")
	}
	if strings.TrimSpace(cfg.IndexName) == "" {
		return nil, fmt.Errorf("missing Pinecone index name")
	}

	host := strings.TrimSpace(cfg.IndexHost)
	if host == "" {
		desc, err := client.DescribeIndex(context.Background(), cfg.IndexName)
		if err != nil {
			return nil, fmt.Errorf("pinecone describe_index failed: %w", err)
		}
		host = desc.Host
		log.Warn("pinecone index host not set; resolved via describe_index",
			"index_name", cfg.IndexName,
			"index_host", host,
		)
	}

	return &Index{
		log:       log.With("service", "PineconeIndex"),
		client:    client,
		indexName: cfg.IndexName,
		indexHost: host,
	}, nil
}

func (x *Index) Upsert(ctx context.Context, namespace string, items []repository.UpsertItem) (int, error) {
	vectors := make([]Vector, len(items))
	for i, item := range items {
		vectors[i] = Vector{
			ID:       item.ID,
			Values:   item.Values,
			Metadata: item.Metadata,
		}
	}

	upserted := 0
	for start := 0; start < len(vectors); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(vectors) {
			end = len(vectors)
		}
		count, err := x.client.UpsertVectors(ctx, x.indexHost, namespace, vectors[start:end])
		if err != nil {
			return upserted, fmt.Errorf("pinecone upsert failed: %w", err)
		}
		upserted += count
	}
	return upserted, nil
}

func (x *Index) Query(ctx context.Context, namespace string, vector []float32, topK int, filter map[string]any) ([]repository.QueryMatch, error) {
	matches, err := x.client.Query(ctx, x.indexHost, namespace, vector, topK, filter)
	if err != nil {
		return nil, fmt.Errorf("pinecone query failed: %w", err)
	}

	out := make([]repository.QueryMatch, 0, len(matches))
	for _, m := range matches {
		if strings.TrimSpace(m.ID) == "" {
			continue
		}
		out = append(out, repository.QueryMatch{
			ID:       m.ID,
			Score:    m.Score,
			Metadata: m.Metadata,
		})
	}
	return out, nil
}

func (x *Index) Delete(ctx context.Context, namespace string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := x.client.DeleteVectors(ctx, x.indexHost, namespace, ids); err != nil {
		return fmt.Errorf("pinecone delete failed: %w", err)
	}
	return nil
}

func (x *Index) DeleteAll(ctx context.Context, namespace string) error {
	if err := x.client.DeleteAllVectors(ctx, x.indexHost, namespace); err != nil {
		return fmt.Errorf("pinecone delete all failed: %w", err)
	}
	return nil
}

func (x *Index) Stats(ctx context.Context) (*repository.IndexStats, error) {
	stats, err := x.client.DescribeIndexStats(ctx, x.indexHost)
	if err != nil {
		return nil, fmt.Errorf("pinecone stats failed: %w", err)
	}
	return &repository.IndexStats{
		TotalVectors: stats.TotalVectorCount,
		Namespaces:   len(stats.Namespaces),
		Dimension:    stats.Dimension,
	}, nil
}
