package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/mudler/xlog"
	"github.com/sashabaranov/go-openai"
	"github.com/sokoni-labs/sokoni/core/conversations"
	"github.com/sokoni-labs/sokoni/core/prompt"
	"github.com/sokoni-labs/sokoni/core/sentiment"
	"github.com/sokoni-labs/sokoni/core/tools"
	"github.com/sokoni-labs/sokoni/core/types"
)

var errNoChoices = errors.New("provider returned no choices")

// fallbackReply is the only text a provider failure is allowed to
// produce. The customer must never see a stack trace or silence.
const fallbackReply = "Sorry, I am having a technical issue right now. Please try again in a moment."

const escalationReason = "angry customer detected"

// Retriever searches the agent's knowledge base. Implementations may
// return (nil, nil) when nothing relevant is indexed.
type Retriever interface {
	Search(ctx context.Context, query string, topK int) ([]string, error)
}

// ControlStore persists control-state changes decided by the engine.
type ControlStore interface {
	SetControlState(ctx context.Context, conversationID string, state types.ControlState, reason string) error
}

// Turn is one inbound customer message plus everything the engine
// needs to answer it. The engine holds no per-conversation state, the
// caller supplies the full bundle each time.
type Turn struct {
	Agent        types.Agent
	Conversation types.Conversation
	Products     []types.Product
	History      types.CustomerHistory
	Messages     []openai.ChatCompletionMessage
	UserMessage  string
	ImageRefs    []string
}

// ImageAttachment is a product photo the reply should carry alongside
// its text, surfaced by a send_image tool call.
type ImageAttachment struct {
	URL     string
	Caption string
}

// Reply is the outcome of one turn.
type Reply struct {
	Text        string
	Images      []ImageAttachment
	Escalated   bool
	ToolResults []types.ToolCallResult
	TokensUsed  int
}

type Engine struct {
	orchestrator *Orchestrator
	synthesizer  *prompt.Synthesizer
	executor     *tools.Executor
	classifier   *sentiment.Classifier
	retriever    Retriever
	control      ControlStore
	currency     string
}

// New wires a turn engine. retriever may be nil when the agent has no
// knowledge base; the other collaborators are required.
func New(orchestrator *Orchestrator, synthesizer *prompt.Synthesizer, executor *tools.Executor, classifier *sentiment.Classifier, retriever Retriever, control ControlStore, currency string) *Engine {
	return &Engine{
		orchestrator: orchestrator,
		synthesizer:  synthesizer,
		executor:     executor,
		classifier:   classifier,
		retriever:    retriever,
		control:      control,
		currency:     currency,
	}
}

// HandleTurn runs one inbound message through the full pipeline. A
// gated conversation returns *types.StateGateError before any provider
// call. Provider failures are absorbed into the fixed fallback reply;
// tool validation failures never fail the turn.
func (e *Engine) HandleTurn(ctx context.Context, turn Turn) (*Reply, error) {
	if err := conversations.Gate(turn.Conversation); err != nil {
		xlog.Debug("Turn gated", "conversation", turn.Conversation.ID, "state", turn.Conversation.ControlState)
		return nil, err
	}

	if reply := e.screenSentiment(ctx, turn); reply != nil {
		return reply, nil
	}

	input := prompt.Input{
		Agent:    turn.Agent,
		Products: turn.Products,
		History:  turn.History,
		Currency: e.currency,
	}
	input.Knowledge = e.retrieve(ctx, turn)

	systemPrompt, err := e.synthesizer.Synthesize(input)
	if err != nil {
		return nil, fmt.Errorf("synthesizing instruction context: %w", err)
	}

	req := Request{
		SystemPrompt: systemPrompt,
		History:      turn.Messages,
		UserMessage:  turn.UserMessage,
		ImageRefs:    turn.ImageRefs,
		Tools:        tools.Definitions(),
		Model:        turn.Agent.Model,
		Temperature:  turn.Agent.Temperature,
		MaxTokens:    turn.Agent.MaxTokens,
	}

	resp, err := e.orchestrator.Complete(ctx, req)
	if err != nil {
		return e.absorb(err, turn)
	}

	reply := &Reply{Text: resp.Text, TokensUsed: resp.TokensUsed}
	if len(resp.ToolCalls) == 0 {
		return reply, nil
	}

	messages := append(resp.Messages, resp.Raw)
	for _, call := range resp.ToolCalls {
		result := e.executor.Execute(ctx, tools.Invocation{
			Agent:        turn.Agent,
			Products:     turn.Products,
			Conversation: turn.Conversation,
			Call:         call,
		})
		reply.ToolResults = append(reply.ToolResults, result)
		if img := imageFrom(call, result); img != nil {
			reply.Images = append(reply.Images, *img)
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:       openai.ChatMessageRoleTool,
			ToolCallID: call.ID,
			Content:    result.ToModelJSON(),
		})
	}

	final, err := e.orchestrator.Continue(ctx, req, messages)
	if err != nil {
		return e.absorb(err, turn)
	}
	reply.Text = final.Text
	reply.TokensUsed += final.TokensUsed
	return reply, nil
}

// screenSentiment escalates before any selling happens when the
// customer is visibly angry. Returns nil when the turn should proceed.
func (e *Engine) screenSentiment(ctx context.Context, turn Turn) *Reply {
	result := e.classifier.Classify(ctx, turn.UserMessage)
	if !e.classifier.ShouldEscalate(result) {
		return nil
	}

	xlog.Info("Escalating conversation", "conversation", turn.Conversation.ID, "sentiment", result.Sentiment, "confidence", result.Confidence)
	if err := e.control.SetControlState(ctx, turn.Conversation.ID, types.StateEscalated, escalationReason); err != nil {
		xlog.Error("Failed to persist escalation", "conversation", turn.Conversation.ID, "error", err)
	}

	text := "I understand your frustration and I sincerely apologize. I am transferring your case to a human advisor who will get back to you very soon."
	if turn.Agent.EscalationPhone != "" {
		text += fmt.Sprintf(" You can also reach us directly at %s.", turn.Agent.EscalationPhone)
	}
	return &Reply{Text: text, Escalated: true}
}

func (e *Engine) retrieve(ctx context.Context, turn Turn) []types.KnowledgeSnippet {
	if e.retriever == nil {
		return nil
	}
	results, err := e.retriever.Search(ctx, turn.UserMessage, 3)
	if err != nil {
		xlog.Warn("Knowledge retrieval failed, continuing without it", "conversation", turn.Conversation.ID, "error", err)
		return nil
	}
	snippets := make([]types.KnowledgeSnippet, 0, len(results))
	for _, r := range results {
		snippets = append(snippets, types.KnowledgeSnippet{Content: r})
	}
	return snippets
}

// absorb turns a provider failure into the fixed fallback reply.
// Anything else propagates.
func (e *Engine) absorb(err error, turn Turn) (*Reply, error) {
	var completionErr *types.CompletionError
	if !errors.As(err, &completionErr) {
		return nil, err
	}
	xlog.Error("Completion failed, sending fallback", "conversation", turn.Conversation.ID, "error", completionErr.Err)
	return &Reply{Text: fallbackReply}, nil
}

func imageFrom(call types.ToolCallRequest, result types.ToolCallResult) *ImageAttachment {
	if call.Name != tools.ToolSendImage || result.Status != types.ToolSuccess {
		return nil
	}
	url, _ := result.Payload["image_url"].(string)
	if url == "" {
		return nil
	}
	caption, _ := result.Payload["caption"].(string)
	return &ImageAttachment{URL: url, Caption: caption}
}
