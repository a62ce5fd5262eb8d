package llm

import (
	"context"

	"github.com/sashabaranov/go-openai"
)

// CompletionClient is the slice of the OpenAI-compatible client the
// engine needs. *openai.Client satisfies it; tests use fakes.
type CompletionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

func NewClient(APIKey, URL string) *openai.Client {
	config := openai.DefaultConfig(APIKey)
	if URL != "" {
		config.BaseURL = URL
	}
	return openai.NewClientWithConfig(config)
}

func UserMessage(content string) openai.ChatCompletionMessage {
	return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: content}
}

func AssistantMessage(content string) openai.ChatCompletionMessage {
	return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}
}
