package sentiment_test

import (
	"context"
	"errors"

	"github.com/sokoni-labs/sokoni/core/sentiment"

	"github.com/sashabaranov/go-openai"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeClient struct {
	content string
	err     error
}

func (f *fakeClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.content}},
		},
	}, nil
}

var _ = Describe("Classifier", func() {
	It("parses the provider's JSON verdict", func() {
		c := sentiment.NewClassifier(&fakeClient{content: `{"sentiment":"angry","is_urgent":true,"confidence":0.95}`}, "gpt-4o-mini", 0)
		res := c.Classify(context.Background(), "C'est inadmissible, je veux un remboursement!")
		Expect(res.Sentiment).To(Equal(sentiment.Angry))
		Expect(res.Urgent).To(BeTrue())
		Expect(res.Confidence).To(BeNumerically("~", 0.95))
	})

	It("degrades to neutral when the provider fails", func() {
		c := sentiment.NewClassifier(&fakeClient{err: errors.New("rate limited")}, "gpt-4o-mini", 0)
		res := c.Classify(context.Background(), "bonjour")
		Expect(res.Sentiment).To(Equal(sentiment.Neutral))
		Expect(res.Urgent).To(BeFalse())
	})

	It("degrades unknown labels to neutral", func() {
		c := sentiment.NewClassifier(&fakeClient{content: `{"sentiment":"furious","is_urgent":false}`}, "gpt-4o-mini", 0)
		Expect(c.Classify(context.Background(), "hm").Sentiment).To(Equal(sentiment.Neutral))
	})

	Describe("ShouldEscalate", func() {
		c := sentiment.NewClassifier(nil, "gpt-4o-mini", 0.7)

		It("escalates confident anger", func() {
			Expect(c.ShouldEscalate(sentiment.Result{Sentiment: sentiment.Angry, Confidence: 0.9})).To(BeTrue())
		})

		It("holds back on low-confidence anger", func() {
			Expect(c.ShouldEscalate(sentiment.Result{Sentiment: sentiment.Angry, Confidence: 0.4})).To(BeFalse())
		})

		It("escalates urgent negative messages", func() {
			Expect(c.ShouldEscalate(sentiment.Result{Sentiment: sentiment.Negative, Urgent: true})).To(BeTrue())
		})

		It("does not escalate calm negativity", func() {
			Expect(c.ShouldEscalate(sentiment.Result{Sentiment: sentiment.Negative})).To(BeFalse())
		})

		It("never escalates neutral or positive messages", func() {
			Expect(c.ShouldEscalate(sentiment.Result{Sentiment: sentiment.Neutral, Urgent: true})).To(BeFalse())
			Expect(c.ShouldEscalate(sentiment.Result{Sentiment: sentiment.Positive, Confidence: 1})).To(BeFalse())
		})
	})
})
