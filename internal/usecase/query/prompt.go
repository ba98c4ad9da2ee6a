package query

import (
	"fmt"
	"strings"

	"rag-qa/internal/domain/entity"
)

// ContextChunk is one retrieved snippet fed into the prompt.
type ContextChunk struct {
	Text     string
	Filename string
}

// BuildPrompt assembles the current-turn prompt. With no context chunks it
// instructs the model to answer from general knowledge; with context it
// labels each snippet with its source document and tells the model to
// prioritise and attribute the document context.
func BuildPrompt(question string, contextChunks []ContextChunk) string {
	if len(contextChunks) == 0 {
		return fmt.Sprintf(`You are a helpful AI assistant. Use your general knowledge to answer the user truthfully.

USER QUESTION: %s
ANSWER:`, question)
	}

	blocks := make([]string, len(contextChunks))
	for i, chunk := range contextChunks {
		blocks[i] = fmt.Sprintf("--- [Document: %s] ---\n%s", chunk.Filename, chunk.Text)
	}
	contextText := strings.Join(blocks, "\n\n")

	return fmt.Sprintf(`You are a helpful AI assistant with access to the following document snippets.

DOCUMENT CONTEXT:
%s

USER QUESTION:
%s

INSTRUCTIONS:
1. Use the provided DOCUMENT CONTEXT to answer the question as accurately as possible.
2. If the context contains relevant information, mention it clearly (e.g., "The document states...").
3. If the context is empty or completely irrelevant to the specific user question (e.g., user says "Hello"), then answer using your general knowledge, but ALWAYS prioritize the document context if it's related to the topic of the question.
4. Do NOT say "I don't have access to documents" if snippets are provided above.

ANSWER:`, contextText, question)
}

// BuildMessages produces the provider-facing sequence: system instruction,
// prior history oldest first (user/assistant turns only), then the assembled
// current-turn prompt.
func BuildMessages(prompt string, history []entity.ConversationTurn) []entity.ChatMessage {
	messages := make([]entity.ChatMessage, 0, len(history)+2)
	messages = append(messages, entity.ChatMessage{
		Role:    "system",
		Content: "You are a helpful AI assistant.",
	})

	for _, turn := range history {
		if turn.Role != entity.RoleUser && turn.Role != entity.RoleAssistant {
			continue
		}
		messages = append(messages, entity.ChatMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
		})
	}

	messages = append(messages, entity.ChatMessage{Role: "user", Content: prompt})
	return messages
}
