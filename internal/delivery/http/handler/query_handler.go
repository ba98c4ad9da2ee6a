package handler

import (
	"strings"

	"rag-qa/internal/delivery/http/dto"
	"rag-qa/internal/domain/apperr"
	"rag-qa/internal/usecase/query"

	"github.com/gofiber/fiber/v2"
)

// maxQuestionLength bounds the accepted question size.
const maxQuestionLength = 1000

type QueryHandler struct {
	queryUsecase *query.QueryUsecase
}

func NewQueryHandler(queryUsecase *query.QueryUsecase) *QueryHandler {
	return &QueryHandler{queryUsecase: queryUsecase}
}

// Query answers a question against the session's uploaded documents.
func (h *QueryHandler) Query(c *fiber.Ctx) error {
	var req dto.QueryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	if strings.TrimSpace(req.Question) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "question is required"})
	}
	if len(req.Question) > maxQuestionLength {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "question exceeds maximum length"})
	}
	if strings.TrimSpace(req.SessionID) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "session_id is required"})
	}

	result, err := h.queryUsecase.Answer(c.Context(), req.Question, req.SessionID)
	if err != nil {
		return c.Status(errorStatus(err)).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	sources := make([]dto.ChunkSource, len(result.Sources))
	for i, src := range result.Sources {
		sources[i] = dto.ChunkSource{
			ChunkText:       src.ChunkText,
			DocumentID:      src.DocumentID,
			SimilarityScore: src.SimilarityScore,
			Metadata: map[string]any{
				"filename":    src.Filename,
				"chunk_index": src.ChunkIndex,
			},
		}
	}

	return c.Status(fiber.StatusOK).JSON(dto.QueryResponse{
		Answer:  result.Answer,
		Sources: sources,
		Metadata: dto.QueryMetadata{
			RetrievalTimeMs:  result.Metadata.RetrievalTimeMs,
			GenerationTimeMs: result.Metadata.GenerationTimeMs,
			TotalTimeMs:      result.Metadata.TotalTimeMs,
			ChunksRetrieved:  result.Metadata.ChunksRetrieved,
		},
	})
}

// ClearHistory drops the session's conversation history.
func (h *QueryHandler) ClearHistory(c *fiber.Ctx) error {
	sessionID, _ := c.Locals("sessionID").(string)

	h.queryUsecase.ClearHistory(sessionID)

	return c.Status(fiber.StatusOK).JSON(dto.MessageResponse{
		Status:  "success",
		Message: "Conversation history cleared",
	})
}

func errorStatus(err error) int {
	switch {
	case apperr.IsValidation(err):
		return fiber.StatusBadRequest
	case apperr.IsNotFound(err):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}
