package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is a minimal Pinecone REST client covering the control-plane call
// needed to resolve the index host plus the data-plane operations the index
// adapter uses.
type Client struct {
	apiKey     string
	apiVersion string
	baseURL    string
	http       *http.Client
}

type ClientConfig struct {
	APIKey     string
	APIVersion string
	BaseURL    string
	Timeout    time.Duration
}

func NewClient(cfg ClientConfig) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing Pinecone API key")
	}
	if strings.TrimSpace(cfg.APIVersion) == "" {
		cfg.APIVersion = "2025-01"
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.pinecone.io"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		apiKey:     cfg.APIKey,
		apiVersion: cfg.APIVersion,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		http:       &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type IndexDescription struct {
	Name      string `json:"name"`
	Host      string `json:"host"`
	Dimension int    `json:"dimension"`
	Metric    string `json:"metric"`
}

func (c *Client) DescribeIndex(ctx context.Context, indexName string) (*IndexDescription, error) {
	indexName = strings.TrimSpace(indexName)
	if indexName == "" {
		return nil, fmt.Errorf("indexName required")
	}

	u := c.baseURL + "/indexes/" + indexName
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("pinecone describe_index http %d: %s", resp.StatusCode, string(raw))
	}

	var out IndexDescription
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("pinecone describe_index decode: %w", err)
	}
	if strings.TrimSpace(out.Host) == "" {
		return nil, fmt.Errorf("pinecone describe_index returned empty host")
	}
	return &out, nil
}

type Vector struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type upsertRequest struct {
	Vectors   []Vector `json:"vectors"`
	Namespace string   `json:"namespace,omitempty"`
}

type upsertResponse struct {
	UpsertedCount int `json:"upsertedCount"`
}

func (c *Client) UpsertVectors(ctx context.Context, host, namespace string, vectors []Vector) (int, error) {
	if len(vectors) == 0 {
		return 0, nil
	}
	out, err := doJSON[upsertResponse](c, ctx, "https://"+host+"/vectors/upsert", upsertRequest{
		Vectors:   vectors,
		Namespace: namespace,
	})
	if err != nil {
		return 0, err
	}
	return out.UpsertedCount, nil
}

type queryRequest struct {
	Namespace       string         `json:"namespace,omitempty"`
	Vector          []float32      `json:"vector"`
	TopK            int            `json:"topK"`
	Filter          map[string]any `json:"filter,omitempty"`
	IncludeMetadata bool           `json:"includeMetadata,omitempty"`
}

type QueryMatch struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type queryResponse struct {
	Matches []QueryMatch `json:"matches"`
}

func (c *Client) Query(ctx context.Context, host, namespace string, vector []float32, topK int, filter map[string]any) ([]QueryMatch, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("query vector required")
	}
	if topK <= 0 {
		topK = 10
	}
	out, err := doJSON[queryResponse](c, ctx, "https://"+host+"/query", queryRequest{
		Namespace:       namespace,
		Vector:          vector,
		TopK:            topK,
		Filter:          filter,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, err
	}
	return out.Matches, nil
}

type deleteRequest struct {
	IDs       []string `json:"ids,omitempty"`
	DeleteAll bool     `json:"deleteAll,omitempty"`
	Namespace string   `json:"namespace,omitempty"`
}

func (c *Client) DeleteVectors(ctx context.Context, host, namespace string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := doJSON[struct{}](c, ctx, "https://"+host+"/vectors/delete", deleteRequest{
		IDs:       ids,
		Namespace: namespace,
	})
	return err
}

func (c *Client) DeleteAllVectors(ctx context.Context, host, namespace string) error {
	_, err := doJSON[struct{}](c, ctx, "https://"+host+"/vectors/delete", deleteRequest{
		DeleteAll: true,
		Namespace: namespace,
	})
	return err
}

type NamespaceSummary struct {
	VectorCount int64 `json:"vectorCount"`
}

type IndexStats struct {
	Namespaces       map[string]NamespaceSummary `json:"namespaces"`
	Dimension        int                         `json:"dimension"`
	TotalVectorCount int64                       `json:"totalVectorCount"`
}

func (c *Client) DescribeIndexStats(ctx context.Context, host string) (*IndexStats, error) {
	return doJSON[IndexStats](c, ctx, "https://"+host+"/describe_index_stats", struct{}{})
}

func doJSON[T any](c *Client, ctx context.Context, url string, body any) (*T, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("pinecone http %d: %s", resp.StatusCode, string(raw))
	}

	var out T
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("pinecone decode error: %w", err)
		}
	}
	return &out, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("X-Pinecone-Api-Version", c.apiVersion)
}
