package entity

type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeTXT FileType = "txt"
)

// DocumentInfo is the document-level view reconstructed from chunk metadata.
// Documents are immutable once uploaded and destroyed only by explicit deletion.
type DocumentInfo struct {
	DocumentID      string `json:"document_id"`
	Filename        string `json:"filename"`
	FileType        string `json:"file_type"`
	UploadTimestamp string `json:"upload_timestamp"`
	TotalChunks     int    `json:"total_chunks"`
}
