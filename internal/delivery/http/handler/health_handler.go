package handler

import (
	"time"

	"rag-qa/internal/delivery/http/dto"
	"rag-qa/internal/usecase/document"

	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	docUsecase *document.DocumentUsecase
	llmModel   string
}

func NewHealthHandler(docUsecase *document.DocumentUsecase, llmModel string) *HealthHandler {
	return &HealthHandler{docUsecase: docUsecase, llmModel: llmModel}
}

// Health reports whether the vector index is reachable.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	timestamp := time.Now().UTC().Format(time.RFC3339)

	stats, err := h.docUsecase.Stats(c.Context())
	if err != nil {
		return c.Status(fiber.StatusOK).JSON(dto.HealthResponse{
			Status:    "unhealthy",
			Timestamp: timestamp,
			Services:  map[string]any{"error": err.Error()},
		})
	}

	return c.Status(fiber.StatusOK).JSON(dto.HealthResponse{
		Status:    "healthy",
		Timestamp: timestamp,
		Services: map[string]any{
			"vector_store":  "connected",
			"total_vectors": stats.TotalVectors,
			"dimension":     stats.Dimension,
			"llm_model":     h.llmModel,
		},
	})
}
