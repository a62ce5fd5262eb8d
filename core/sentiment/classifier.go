// Package sentiment classifies inbound customer messages so the engine
// can hand visibly angry customers to a human before answering.
package sentiment

import (
	"context"

	"github.com/mudler/xlog"
	"github.com/sokoni-labs/sokoni/llm"
)

type Sentiment string

const (
	Positive Sentiment = "positive"
	Neutral  Sentiment = "neutral"
	Negative Sentiment = "negative"
	Angry    Sentiment = "angry"
)

const defaultAngerThreshold = 0.7

type Result struct {
	Sentiment  Sentiment `json:"sentiment"`
	Urgent     bool      `json:"is_urgent"`
	Confidence float64   `json:"confidence"`
}

const classifyInstruction = `Analyze the sentiment of the customer message below.
Return JSON: {"sentiment": "positive"|"neutral"|"negative"|"angry", "is_urgent": boolean, "confidence": number between 0 and 1}

Message:
`

type Classifier struct {
	client         llm.CompletionClient
	model          string
	angerThreshold float64
}

func NewClassifier(client llm.CompletionClient, model string, angerThreshold float64) *Classifier {
	if angerThreshold <= 0 {
		angerThreshold = defaultAngerThreshold
	}
	return &Classifier{client: client, model: model, angerThreshold: angerThreshold}
}

// Classify never fails the turn: a provider error degrades to a neutral,
// non-urgent result so the conversation keeps flowing.
func (c *Classifier) Classify(ctx context.Context, text string) Result {
	var res Result
	if err := llm.GenerateJSON(ctx, c.client, c.model, classifyInstruction+text, &res); err != nil {
		xlog.Warn("Sentiment classification failed, assuming neutral", "error", err)
		return Result{Sentiment: Neutral}
	}
	switch res.Sentiment {
	case Positive, Neutral, Negative, Angry:
	default:
		xlog.Warn("Sentiment classifier returned unknown label", "label", res.Sentiment)
		res.Sentiment = Neutral
	}
	return res
}

// ShouldEscalate reports whether the result warrants handing the
// conversation to a human. Anger below the confidence threshold is
// logged so tenants can tune it, but does not escalate.
func (c *Classifier) ShouldEscalate(r Result) bool {
	switch r.Sentiment {
	case Angry:
		if r.Confidence >= c.angerThreshold {
			return true
		}
		xlog.Warn("Anger detected below confidence threshold", "confidence", r.Confidence, "threshold", c.angerThreshold)
		return false
	case Negative:
		return r.Urgent
	}
	return false
}
