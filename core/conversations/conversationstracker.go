package conversations

import (
	"sync"
	"time"

	"github.com/mudler/xlog"
	"github.com/sashabaranov/go-openai"
)

type TrackerKey interface{ ~int | ~int64 | ~string }

// ConversationTracker keeps per-customer message history between
// inbound deliveries, keyed by whatever identifies the counterparty
// (phone number, chat id). Histories expire after a quiet period so a
// customer coming back next week starts a fresh conversation.
type ConversationTracker[K TrackerKey] struct {
	convMutex       sync.Mutex
	histories       map[K][]openai.ChatCompletionMessage
	lastMessageTime map[K]time.Time
	expiry          time.Duration
}

func NewConversationTracker[K TrackerKey](expiry time.Duration) *ConversationTracker[K] {
	return &ConversationTracker[K]{
		expiry:          expiry,
		histories:       map[K][]openai.ChatCompletionMessage{},
		lastMessageTime: map[K]time.Time{},
	}
}

// GetConversation returns the live history for key, or an empty one if
// the customer has been quiet longer than the expiry. Stale histories
// for other keys are dropped on the way.
func (c *ConversationTracker[K]) GetConversation(key K) []openai.ChatCompletionMessage {
	c.convMutex.Lock()
	defer c.convMutex.Unlock()

	now := time.Now()
	current := []openai.ChatCompletionMessage{}
	last, known := c.lastMessageTime[key]
	if known && last.Add(c.expiry).After(now) {
		current = append(current, c.histories[key]...)
	} else if known {
		xlog.Debug("Conversation history expired", "key", key)
	}

	for k, lastMessage := range c.lastMessageTime {
		if lastMessage.Add(c.expiry).Before(now) {
			delete(c.histories, k)
			delete(c.lastMessageTime, k)
		}
	}

	return current
}

func (c *ConversationTracker[K]) AddMessage(key K, message openai.ChatCompletionMessage) {
	c.convMutex.Lock()
	defer c.convMutex.Unlock()

	c.histories[key] = append(c.histories[key], message)
	c.lastMessageTime[key] = time.Now()
}

func (c *ConversationTracker[K]) SetConversation(key K, messages []openai.ChatCompletionMessage) {
	c.convMutex.Lock()
	defer c.convMutex.Unlock()

	c.histories[key] = messages
	c.lastMessageTime[key] = time.Now()
}

// Clear drops the history for key, used when a conversation is handed
// to a human so the next bot turn starts clean.
func (c *ConversationTracker[K]) Clear(key K) {
	c.convMutex.Lock()
	defer c.convMutex.Unlock()

	delete(c.histories, key)
	delete(c.lastMessageTime, key)
}
