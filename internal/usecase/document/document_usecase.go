package document

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"rag-qa/internal/domain/apperr"
	"rag-qa/internal/domain/entity"
	"rag-qa/internal/domain/repository"
	"rag-qa/pkg/logger"

	"github.com/google/uuid"
)

// metadataTextLimit bounds the chunk text stored as index metadata (Pinecone
// metadata size limit).
const metadataTextLimit = 1000

// listTopK is the fetch size for metadata-only scans (listing and deleting
// documents go through similarity queries with a zero vector).
const listTopK = 10000

type EmbeddingService interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

type UploadResult struct {
	DocumentID      string
	Filename        string
	ChunksProcessed int
}

type DeleteResult struct {
	DocumentID    string
	ChunksDeleted int
}

type DocumentUsecase struct {
	log           *logger.Logger
	index         repository.VectorIndex
	embedder      EmbeddingService
	extractor     *TextExtractor
	chunker       *Chunker
	maxFileSizeMB int
	dimension     int
}

func NewDocumentUsecase(
	log *logger.Logger,
	index repository.VectorIndex,
	embedder EmbeddingService,
	chunkSize, chunkOverlap int,
	maxFileSizeMB int,
	dimension int,
) *DocumentUsecase {
	return &DocumentUsecase{
		log:           log.With("service", "DocumentUsecase"),
		index:         index,
		embedder:      embedder,
		extractor:     NewTextExtractor(),
		chunker:       NewChunker(chunkSize, chunkOverlap),
		maxFileSizeMB: maxFileSizeMB,
		dimension:     dimension,
	}
}

// UploadDocument extracts, chunks, embeds and indexes a PDF or TXT file into
// the session's namespace.
func (uc *DocumentUsecase) UploadDocument(
	ctx context.Context,
	sessionID string,
	filename string,
	fileData []byte,
) (*UploadResult, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, apperr.Validation("no filename provided")
	}

	fileType, err := fileTypeOf(filename)
	if err != nil {
		return nil, err
	}

	sizeMB := float64(len(fileData)) / (1024 * 1024)
	if sizeMB > float64(uc.maxFileSizeMB) {
		return nil, apperr.Validation(fmt.Sprintf("file size (%.2fMB) exceeds %dMB limit", sizeMB, uc.maxFileSizeMB))
	}

	var text string
	switch fileType {
	case entity.FileTypePDF:
		text, err = uc.extractor.ExtractFromPDF(fileData)
	case entity.FileTypeTXT:
		text, err = uc.extractor.ExtractFromTXT(fileData)
	}
	if err != nil {
		return nil, apperr.Validation(fmt.Sprintf("failed to extract text: %v", err))
	}
	if text == "" {
		return nil, apperr.Validation("no content could be extracted from the document")
	}
	uc.log.Info("extracted text", "filename", filename, "chars", len(text))

	textChunks := uc.chunker.ChunkText(text)
	if len(textChunks) == 0 {
		return nil, apperr.Validation("no chunks generated")
	}

	documentID := "doc_" + hex.EncodeToString(uuidBytes())[:12]
	uploadedAt := time.Now().UTC().Format(time.RFC3339)

	chunks := make([]entity.DocumentChunk, len(textChunks))
	for i, chunkText := range textChunks {
		chunks[i] = entity.DocumentChunk{
			ChunkID:    fmt.Sprintf("%s_chunk_%d", documentID, i),
			DocumentID: documentID,
			Text:       chunkText,
			ChunkIndex: i,
			Metadata: entity.ChunkMetadata{
				Filename:        filename,
				ChunkIndex:      i,
				TotalChunks:     len(textChunks),
				UploadTimestamp: uploadedAt,
				FileType:        string(fileType),
			},
		}
	}

	embeddings, err := uc.embedder.GenerateBatchEmbeddings(ctx, textChunks)
	if err != nil {
		return nil, apperr.Provider("failed to generate embeddings", err)
	}
	if len(embeddings) != len(chunks) {
		return nil, apperr.Provider("embedding count mismatch", nil)
	}

	items := make([]repository.UpsertItem, len(chunks))
	for i, chunk := range chunks {
		items[i] = repository.UpsertItem{
			ID:     chunk.ChunkID,
			Values: embeddings[i],
			Metadata: map[string]any{
				"text":             truncate(chunk.Text, metadataTextLimit),
				"document_id":      chunk.DocumentID,
				"filename":         chunk.Metadata.Filename,
				"chunk_index":      chunk.ChunkIndex,
				"total_chunks":     chunk.Metadata.TotalChunks,
				"file_type":        chunk.Metadata.FileType,
				"upload_timestamp": chunk.Metadata.UploadTimestamp,
			},
		}
	}

	upserted, err := uc.index.Upsert(ctx, sessionID, items)
	if err != nil {
		return nil, apperr.Provider("failed to index chunks", err)
	}
	uc.log.Info("document indexed",
		"document_id", documentID,
		"chunks", len(chunks),
		"upserted", upserted,
	)

	return &UploadResult{
		DocumentID:      documentID,
		Filename:        filename,
		ChunksProcessed: len(chunks),
	}, nil
}

// ListDocuments reconstructs the unique documents in a session from chunk
// metadata. The index has no document listing of its own, so this scans with
// a zero query vector.
func (uc *DocumentUsecase) ListDocuments(ctx context.Context, sessionID string) ([]entity.DocumentInfo, error) {
	matches, err := uc.index.Query(ctx, sessionID, make([]float32, uc.dimension), listTopK, nil)
	if err != nil {
		return nil, apperr.Provider("failed to list documents", err)
	}

	seen := make(map[string]bool)
	var docs []entity.DocumentInfo
	for _, match := range matches {
		docID, _ := match.Metadata["document_id"].(string)
		if docID == "" || seen[docID] {
			continue
		}
		seen[docID] = true
		docs = append(docs, entity.DocumentInfo{
			DocumentID:      docID,
			Filename:        metaString(match.Metadata, "filename"),
			FileType:        metaString(match.Metadata, "file_type"),
			UploadTimestamp: metaString(match.Metadata, "upload_timestamp"),
			TotalChunks:     metaInt(match.Metadata, "total_chunks"),
		})
	}
	return docs, nil
}

// DeleteDocument removes every chunk of one document from the session's
// namespace.
func (uc *DocumentUsecase) DeleteDocument(ctx context.Context, sessionID, documentID string) (*DeleteResult, error) {
	filter := map[string]any{"document_id": map[string]any{"$eq": documentID}}
	matches, err := uc.index.Query(ctx, sessionID, make([]float32, uc.dimension), listTopK, filter)
	if err != nil {
		return nil, apperr.Provider("failed to find document chunks", err)
	}
	if len(matches) == 0 {
		return nil, apperr.NotFound(fmt.Sprintf("document %s not found", documentID))
	}

	ids := make([]string, len(matches))
	for i, match := range matches {
		ids[i] = match.ID
	}

	if err := uc.index.Delete(ctx, sessionID, ids); err != nil {
		return nil, apperr.Provider("failed to delete document chunks", err)
	}
	uc.log.Info("document deleted", "document_id", documentID, "chunks_deleted", len(ids))

	return &DeleteResult{DocumentID: documentID, ChunksDeleted: len(ids)}, nil
}

// DeleteAllDocuments clears the session's namespace.
func (uc *DocumentUsecase) DeleteAllDocuments(ctx context.Context, sessionID string) error {
	if err := uc.index.DeleteAll(ctx, sessionID); err != nil {
		return apperr.Provider("failed to delete documents", err)
	}
	return nil
}

// Stats reports index-wide statistics for health checks.
func (uc *DocumentUsecase) Stats(ctx context.Context) (*repository.IndexStats, error) {
	stats, err := uc.index.Stats(ctx)
	if err != nil {
		return nil, apperr.Provider("failed to fetch index stats", err)
	}
	return stats, nil
}

func fileTypeOf(filename string) (entity.FileType, error) {
	switch {
	case strings.HasSuffix(strings.ToLower(filename), ".pdf"):
		return entity.FileTypePDF, nil
	case strings.HasSuffix(strings.ToLower(filename), ".txt"):
		return entity.FileTypeTXT, nil
	default:
		return "", apperr.Validation(fmt.Sprintf("unsupported file type: only PDF and TXT are supported, received %s", filename))
	}
}

func uuidBytes() []byte {
	id := uuid.New()
	return id[:]
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}

func metaString(metadata map[string]any, key string) string {
	v, _ := metadata[key].(string)
	return v
}

func metaInt(metadata map[string]any, key string) int {
	switch v := metadata[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}
