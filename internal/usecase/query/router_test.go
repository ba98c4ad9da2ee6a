package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag-qa/internal/domain/entity"
	"rag-qa/pkg/logger"
)

type fakeChat struct {
	response     string
	err          error
	lastMessages []entity.ChatMessage
	lastMaxToken int
}

func (f *fakeChat) Complete(_ context.Context, messages []entity.ChatMessage, _ float32, maxTokens int) (string, error) {
	f.lastMessages = messages
	f.lastMaxToken = maxTokens
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func TestClassify_RAGSubstringMatches(t *testing.T) {
	cases := []struct {
		name     string
		response string
		want     entity.Intent
	}{
		{"bare word", "RAG", entity.IntentRAG},
		{"lowercase", "rag", entity.IntentRAG},
		{"embedded", "Answer: RAG intent", entity.IntentRAG},
		{"general", "GENERAL", entity.IntentGeneral},
		{"unrelated output", "I am not sure", entity.IntentGeneral},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			chat := &fakeChat{response: tc.response}
			router := NewIntentRouter(logger.NewNop(), chat)

			got := router.Classify(context.Background(), "what is in the file?", nil)

			assert.Equal(t, tc.want, got)
		})
	}
}

func TestClassify_ProviderFailureDefaultsToRAG(t *testing.T) {
	chat := &fakeChat{err: errors.New("provider unreachable")}
	router := NewIntentRouter(logger.NewNop(), chat)

	got := router.Classify(context.Background(), "hello", nil)

	assert.Equal(t, entity.IntentRAG, got)
}

func TestClassify_PromptIncludesRecentHistoryOnly(t *testing.T) {
	chat := &fakeChat{response: "GENERAL"}
	router := NewIntentRouter(logger.NewNop(), chat)

	history := make([]entity.ConversationTurn, 0, 8)
	for i := 0; i < 8; i++ {
		role := entity.RoleUser
		if i%2 == 1 {
			role = entity.RoleAssistant
		}
		history = append(history, entity.ConversationTurn{
			Role:      role,
			Content:   content(i),
			Timestamp: time.Now(),
		})
	}

	router.Classify(context.Background(), "and what about that?", history)

	require.Len(t, chat.lastMessages, 2)
	prompt := chat.lastMessages[1].Content
	assert.Contains(t, prompt, "and what about that?")
	assert.Contains(t, prompt, "RECENT CHAT HISTORY")
	// only the last 6 turns make it into the prompt
	assert.NotContains(t, prompt, content(0))
	assert.NotContains(t, prompt, content(1))
	assert.Contains(t, prompt, content(2))
	assert.Contains(t, prompt, content(7))
}

func TestClassify_UsesBoundedCompletion(t *testing.T) {
	chat := &fakeChat{response: "RAG"}
	router := NewIntentRouter(logger.NewNop(), chat)

	router.Classify(context.Background(), "question", nil)

	assert.Equal(t, routerMaxTokens, chat.lastMaxToken)
}

func content(i int) string {
	return "turn number " + string(rune('A'+i))
}
