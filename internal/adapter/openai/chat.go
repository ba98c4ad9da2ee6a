package openai

import (
	"context"
	"fmt"

	"rag-qa/internal/domain/entity"

	openai "github.com/sashabaranov/go-openai"
)

type ChatClient struct {
	client *openai.Client
	model  string
}

// NewChatClient creates a chat completion client. baseURL may point at any
// OpenAI-compatible endpoint (Groq in the default configuration).
func NewChatClient(apiKey, baseURL, model string) *ChatClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &ChatClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Complete sends the message sequence and returns the model's raw text output.
func (c *ChatClient) Complete(
	ctx context.Context,
	messages []entity.ChatMessage,
	temperature float32,
	maxTokens int,
) (string, error) {
	chatMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		chatMessages[i] = openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    chatMessages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from completion provider")
	}

	return resp.Choices[0].Message.Content, nil
}
