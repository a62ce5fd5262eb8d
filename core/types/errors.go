package types

import "fmt"

// Reason is the machine-readable cause carried by a ValidationError so
// the calling layer can phrase a customer-facing re-ask without guessing.
type Reason string

const (
	ReasonMissingField      Reason = "missing_field"
	ReasonUnknownProduct    Reason = "unknown_product"
	ReasonInsufficientStock Reason = "insufficient_stock"
	ReasonUnparsableDate    Reason = "unparsable_date"
	ReasonNotFound          Reason = "not_found"
)

// ValidationError reports bad or incomplete tool-call arguments. It is
// recoverable: the engine turns it into a polite clarification, never a
// hard failure of the whole turn.
type ValidationError struct {
	Reason  Reason
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s (%s): %s", e.Reason, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

// NotFoundError reports an unknown product or order. The engine answers
// "not in catalog", it never fabricates.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

// CompletionError wraps a provider failure (timeout, rate limit,
// malformed response). The only error class allowed to produce the
// generic fallback reply.
type CompletionError struct {
	Err error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("completion provider: %v", e.Err)
}

func (e *CompletionError) Unwrap() error {
	return e.Err
}

// StateGateError signals that a message arrived while the conversation
// is not active. Not an error to the customer: no reply is generated.
type StateGateError struct {
	State ControlState
}

func (e *StateGateError) Error() string {
	return fmt.Sprintf("conversation is %s, engine gated", e.State)
}
