package entity

type ChunkMetadata struct {
	Filename        string `json:"filename"`
	ChunkIndex      int    `json:"chunk_index"`
	TotalChunks     int    `json:"total_chunks"`
	UploadTimestamp string `json:"upload_timestamp"`
	FileType        string `json:"file_type"`
}

// DocumentChunk is one contiguous slice of a document's extracted text.
// ChunkID is derived from the document id and the zero-based chunk index.
type DocumentChunk struct {
	ChunkID    string
	DocumentID string
	Text       string
	ChunkIndex int
	Metadata   ChunkMetadata
}

// RetrievalMatch is a chunk returned by similarity search, with its cosine
// score. Produced per query and never persisted.
type RetrievalMatch struct {
	ChunkID    string
	Score      float64
	Text       string
	DocumentID string
	Filename   string
	ChunkIndex int
}
