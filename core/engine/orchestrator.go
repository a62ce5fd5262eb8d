// Package engine drives one conversation turn end to end: control-state
// gate, sentiment screen, knowledge retrieval, prompt synthesis, the
// completion call, and tool-call resolution.
package engine

import (
	"context"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sokoni-labs/sokoni/core/types"
	"github.com/sokoni-labs/sokoni/llm"
)

const (
	// historyCap bounds how many prior turns are replayed to the model.
	historyCap = 15

	defaultModel     = "gpt-4o-mini"
	visionModel      = "gpt-4o"
	defaultMaxTokens = 500
	defaultTemp      = 0.7
)

// Request is one completion call. The system prompt always leads the
// message list; History carries prior role-tagged turns.
type Request struct {
	SystemPrompt string
	History      []openai.ChatCompletionMessage
	UserMessage  string
	ImageRefs    []string
	Tools        types.ToolDefinitions
	Model        string
	Temperature  float32
	MaxTokens    int
}

// Response carries what the provider returned. Messages is the request
// list as sent, and Raw the assistant message, so a caller can append
// tool results and continue the exchange.
type Response struct {
	Text       string
	ToolCalls  []types.ToolCallRequest
	TokensUsed int
	Latency    time.Duration
	Messages   []openai.ChatCompletionMessage
	Raw        openai.ChatCompletionMessage
}

type Orchestrator struct {
	client llm.CompletionClient
}

func NewOrchestrator(client llm.CompletionClient) *Orchestrator {
	return &Orchestrator{client: client}
}

// Complete runs one completion over the synthesized context. Provider
// failures come back as *types.CompletionError; there are no retries
// here, that policy belongs to the caller.
func (o *Orchestrator) Complete(ctx context.Context, req Request) (*Response, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: req.SystemPrompt,
	})

	history := req.History
	if len(history) > historyCap {
		history = history[len(history)-historyCap:]
	}
	messages = append(messages, history...)
	messages = append(messages, userTurn(req))

	return o.create(ctx, req, messages, req.Tools)
}

// Continue runs a follow-up completion over an already-built message
// list, used after tool results are appended. No tools are offered, so
// the model has to answer in text.
func (o *Orchestrator) Continue(ctx context.Context, req Request, messages []openai.ChatCompletionMessage) (*Response, error) {
	return o.create(ctx, req, messages, nil)
}

func (o *Orchestrator) create(ctx context.Context, req Request, messages []openai.ChatCompletionMessage, tools types.ToolDefinitions) (*Response, error) {
	model := req.Model
	if model == "" {
		model = defaultModel
		if len(req.ImageRefs) > 0 {
			model = visionModel
		}
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	temperature := req.Temperature
	if temperature <= 0 {
		temperature = defaultTemp
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
	if len(tools) > 0 {
		chatReq.Tools = tools.ToTools()
	}

	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, &types.CompletionError{Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &types.CompletionError{Err: errNoChoices}
	}

	message := resp.Choices[0].Message
	out := &Response{
		Text:       message.Content,
		TokensUsed: resp.Usage.TotalTokens,
		Latency:    time.Since(start),
		Messages:   messages,
		Raw:        message,
	}
	for _, tc := range message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, types.ToolCallRequest{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return out, nil
}

func userTurn(req Request) openai.ChatCompletionMessage {
	if len(req.ImageRefs) == 0 {
		return openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: req.UserMessage,
		}
	}

	text := req.UserMessage
	if text == "" {
		text = "What do you think of this image?"
	}
	parts := []openai.ChatMessagePart{
		{Type: openai.ChatMessagePartTypeText, Text: text},
	}
	for _, ref := range req.ImageRefs {
		parts = append(parts, openai.ChatMessagePart{
			Type:     openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{URL: ref},
		})
	}
	return openai.ChatCompletionMessage{
		Role:         openai.ChatMessageRoleUser,
		MultiContent: parts,
	}
}
