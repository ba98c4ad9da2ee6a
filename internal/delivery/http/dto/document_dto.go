package dto

import "rag-qa/internal/domain/entity"

type UploadDocumentResponse struct {
	Status           string  `json:"status"`
	DocumentID       string  `json:"document_id"`
	Filename         string  `json:"filename"`
	ChunksProcessed  int     `json:"chunks_processed"`
	ProcessingTimeMs float64 `json:"processing_time_ms"`
}

type ListDocumentsResponse struct {
	TotalDocuments int                   `json:"total_documents"`
	Documents      []entity.DocumentInfo `json:"documents"`
}

type DeleteDocumentResponse struct {
	Status        string `json:"status"`
	DocumentID    string `json:"document_id"`
	ChunksDeleted int    `json:"chunks_deleted"`
	Message       string `json:"message"`
}

type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
