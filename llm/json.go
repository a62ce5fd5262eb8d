package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// GenerateJSON asks the model for a JSON object and unmarshals it into i.
// Used for structured side-channel calls (sentiment classification).
func GenerateJSON(ctx context.Context, client CompletionClient, model, text string, i interface{}) error {
	req := openai.ChatCompletionRequest{
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
		Model:          model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    "user",
				Content: text,
			},
		},
	}

	resp, err := client.CreateChatCompletion(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to generate answer: %v", err)
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("no response from completion provider")
	}

	return json.Unmarshal([]byte(resp.Choices[0].Message.Content), i)
}
