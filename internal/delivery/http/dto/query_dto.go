package dto

type QueryRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id"`
}

type ChunkSource struct {
	ChunkText       string         `json:"chunk_text"`
	DocumentID      string         `json:"document_id"`
	SimilarityScore float64        `json:"similarity_score"`
	Metadata        map[string]any `json:"metadata"`
}

type QueryMetadata struct {
	RetrievalTimeMs  float64 `json:"retrieval_time_ms"`
	GenerationTimeMs float64 `json:"generation_time_ms"`
	TotalTimeMs      float64 `json:"total_time_ms"`
	ChunksRetrieved  int     `json:"chunks_retrieved"`
}

type QueryResponse struct {
	Answer   string        `json:"answer"`
	Sources  []ChunkSource `json:"sources"`
	Metadata QueryMetadata `json:"metadata"`
}

type HealthResponse struct {
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp"`
	Services  map[string]any `json:"services"`
}
