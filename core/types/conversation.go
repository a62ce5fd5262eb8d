package types

import "time"

// ControlState gates whether the engine may respond in a conversation.
type ControlState string

const (
	// StateActive lets the engine respond normally.
	StateActive ControlState = "active"
	// StateHumanPaused means an operator took over; the engine stays silent.
	StateHumanPaused ControlState = "human_paused"
	// StateEscalated means the engine flagged the conversation for a human.
	// Only an explicit operator resolve action leaves this state.
	StateEscalated ControlState = "escalated"
)

// Conversation is the per-counterparty thread the engine operates in.
// Created on first inbound message, never deleted by the engine.
type Conversation struct {
	ID               string       `json:"id"`
	AgentID          string       `json:"agent_id"`
	CounterpartyID   string       `json:"counterparty_id"`
	ControlState     ControlState `json:"control_state"`
	EscalationReason string       `json:"escalation_reason,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// StoredMessage is one persisted conversation line, replayed to the
// model on later turns.
type StoredMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Active reports whether the engine is allowed to handle a turn.
func (c Conversation) Active() bool {
	return c.ControlState == StateActive
}
