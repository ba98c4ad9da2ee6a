package handler

import (
	"fmt"
	"io"
	"math"
	"time"

	"rag-qa/internal/delivery/http/dto"
	"rag-qa/internal/usecase/document"

	"github.com/gofiber/fiber/v2"
)

type DocumentHandler struct {
	docUsecase *document.DocumentUsecase
}

func NewDocumentHandler(docUsecase *document.DocumentUsecase) *DocumentHandler {
	return &DocumentHandler{docUsecase: docUsecase}
}

// Upload accepts a PDF or TXT file as multipart form data and indexes it into
// the caller's session namespace.
func (h *DocumentHandler) Upload(c *fiber.Ctx) error {
	sessionID, _ := c.Locals("sessionID").(string)
	start := time.Now()

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "failed to get file"})
	}

	fileData, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "failed to open file"})
	}
	defer fileData.Close()

	buf, err := io.ReadAll(fileData)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "failed to read file"})
	}

	result, err := h.docUsecase.UploadDocument(c.Context(), sessionID, file.Filename, buf)
	if err != nil {
		return c.Status(errorStatus(err)).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	processingMs := float64(time.Since(start).Microseconds()) / 1000

	return c.Status(fiber.StatusOK).JSON(dto.UploadDocumentResponse{
		Status:           "success",
		DocumentID:       result.DocumentID,
		Filename:         result.Filename,
		ChunksProcessed:  result.ChunksProcessed,
		ProcessingTimeMs: math.Round(processingMs*100) / 100,
	})
}

// List returns the unique documents uploaded to the session.
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	sessionID, _ := c.Locals("sessionID").(string)

	docs, err := h.docUsecase.ListDocuments(c.Context(), sessionID)
	if err != nil {
		return c.Status(errorStatus(err)).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(dto.ListDocumentsResponse{
		TotalDocuments: len(docs),
		Documents:      docs,
	})
}

// Delete removes one document and all its chunks.
func (h *DocumentHandler) Delete(c *fiber.Ctx) error {
	sessionID, _ := c.Locals("sessionID").(string)
	documentID := c.Params("id")

	result, err := h.docUsecase.DeleteDocument(c.Context(), sessionID, documentID)
	if err != nil {
		return c.Status(errorStatus(err)).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(dto.DeleteDocumentResponse{
		Status:        "success",
		DocumentID:    result.DocumentID,
		ChunksDeleted: result.ChunksDeleted,
		Message:       fmt.Sprintf("Successfully deleted document and %d chunks", result.ChunksDeleted),
	})
}

// DeleteAll clears every document in the session.
func (h *DocumentHandler) DeleteAll(c *fiber.Ctx) error {
	sessionID, _ := c.Locals("sessionID").(string)

	if err := h.docUsecase.DeleteAllDocuments(c.Context(), sessionID); err != nil {
		return c.Status(errorStatus(err)).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(dto.MessageResponse{
		Status:  "success",
		Message: "All documents deleted successfully",
	})
}
