package repository

import "rag-qa/internal/domain/entity"

// ConversationRepository holds per-session conversation history. History is
// process-local and bounded; the oldest turns are evicted once a session
// grows past the configured maximum.
type ConversationRepository interface {
	AddMessage(sessionID string, role entity.Role, content string)
	GetHistory(sessionID string) []entity.ConversationTurn
	ClearHistory(sessionID string)
}
