package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag-qa/internal/domain/entity"
)

func TestBuildPrompt_NoContextUsesGeneralKnowledge(t *testing.T) {
	prompt := BuildPrompt("What is Go?", nil)

	assert.Contains(t, prompt, "general knowledge")
	assert.Contains(t, prompt, "What is Go?")
	assert.NotContains(t, prompt, "DOCUMENT CONTEXT")
}

func TestBuildPrompt_WithContextLabelsSources(t *testing.T) {
	chunks := []ContextChunk{
		{Text: "Go is a statically typed language.", Filename: "go.pdf"},
		{Text: "Goroutines are lightweight threads.", Filename: "concurrency.txt"},
	}

	prompt := BuildPrompt("Tell me about Go", chunks)

	assert.Contains(t, prompt, "[Document: go.pdf]")
	assert.Contains(t, prompt, "[Document: concurrency.txt]")
	assert.Contains(t, prompt, "Go is a statically typed language.")
	assert.Contains(t, prompt, "Do NOT say \"I don't have access to documents\"")
	// chunks appear in the order given
	assert.Less(t, strings.Index(prompt, "go.pdf"), strings.Index(prompt, "concurrency.txt"))
}

func TestBuildMessages_OrderAndRoleFiltering(t *testing.T) {
	history := []entity.ConversationTurn{
		{Role: entity.RoleUser, Content: "first question"},
		{Role: entity.RoleAssistant, Content: "first answer"},
		{Role: entity.Role("system"), Content: "should be dropped"},
	}

	messages := BuildMessages("current prompt", history)

	require.Len(t, messages, 4)
	assert.Equal(t, "system", messages[0].Role)
	assert.Equal(t, "user", messages[1].Role)
	assert.Equal(t, "first question", messages[1].Content)
	assert.Equal(t, "assistant", messages[2].Role)
	assert.Equal(t, "user", messages[3].Role)
	assert.Equal(t, "current prompt", messages[3].Content)
}

func TestBuildMessages_EmptyHistory(t *testing.T) {
	messages := BuildMessages("prompt", nil)

	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].Role)
	assert.Equal(t, "prompt", messages[1].Content)
}
