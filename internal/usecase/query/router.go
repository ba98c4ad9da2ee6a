package query

import (
	"context"
	"fmt"
	"strings"

	"rag-qa/internal/domain/entity"
	"rag-qa/pkg/logger"
)

type ChatService interface {
	Complete(ctx context.Context, messages []entity.ChatMessage, temperature float32, maxTokens int) (string, error)
}

// routerHistoryWindow is how many trailing turns (3 exchanges) the router
// sees when classifying a question.
const routerHistoryWindow = 6

// routerMaxTokens keeps the routing decision to a single-word answer.
const routerMaxTokens = 10

type IntentRouter struct {
	log  *logger.Logger
	chat ChatService
}

func NewIntentRouter(log *logger.Logger, chat ChatService) *IntentRouter {
	return &IntentRouter{
		log:  log.With("service", "IntentRouter"),
		chat: chat,
	}
}

// Classify decides whether the question needs document retrieval. The match
// on the model output is a substring check, so "Answer: RAG" still routes to
// retrieval. Any provider failure defaults to RAG: retrieval failing open is
// safer than silently skipping context, at the cost of masking outages behind
// always-retrieving behaviour.
func (r *IntentRouter) Classify(ctx context.Context, question string, history []entity.ConversationTurn) entity.Intent {
	messages := []entity.ChatMessage{
		{Role: "system", Content: "You are a precise query router."},
		{Role: "user", Content: buildRouterPrompt(question, history)},
	}

	out, err := r.chat.Complete(ctx, messages, 0, routerMaxTokens)
	if err != nil {
		r.log.Warn("intent classification failed, defaulting to RAG", "error", err)
		return entity.IntentRAG
	}

	if strings.Contains(strings.ToUpper(out), "RAG") {
		return entity.IntentRAG
	}
	return entity.IntentGeneral
}

func buildRouterPrompt(question string, history []entity.ConversationTurn) string {
	historyText := ""
	if len(history) > 0 {
		recent := history
		if len(recent) > routerHistoryWindow {
			recent = recent[len(recent)-routerHistoryWindow:]
		}
		lines := make([]string, len(recent))
		for i, turn := range recent {
			lines[i] = fmt.Sprintf("%s: %s", strings.ToUpper(string(turn.Role)), turn.Content)
		}
		historyText = "\nRECENT CHAT HISTORY:\n" + strings.Join(lines, "\n")
	}

	return fmt.Sprintf(`You are a query router. Analyze the user's query and decide if it needs document retrieval.

USER QUERY: %s
%s

INSTRUCTIONS:
1. **RAG (Retrieval)**: Select this if the user asks about ANY document, specific facts, content of files, or if the question is "What is in the file?", "Read the PDF", etc.
2. **GENERAL**: Select this for greetings, questions about you (the AI), or follow-up questions that were already answered in the RECENT CHAT HISTORY.
3. If unsure, prioritize 'RAG'.

Output ONLY the word 'RAG' or 'GENERAL'.`, question, historyText)
}
