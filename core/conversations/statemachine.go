// Package conversations owns conversation-level control state: whether
// the engine is allowed to answer at all, and the per-conversation
// message history used between turns.
package conversations

import (
	"fmt"

	"github.com/sokoni-labs/sokoni/core/types"
)

// Event is a control-state trigger. Operator events come from the
// tenant's dashboard; Escalate is the only engine-originated one.
type Event string

const (
	// EventOperatorPause hands the conversation to a human.
	EventOperatorPause Event = "operator_pause"
	// EventOperatorResume gives an explicitly paused conversation back.
	EventOperatorResume Event = "operator_resume"
	// EventEscalate fires when a turn hits an escalation trigger.
	EventEscalate Event = "escalate"
	// EventOperatorResolve is the only way out of escalated. Never
	// automatic, even if the customer later sounds calm.
	EventOperatorResolve Event = "operator_resolve"
)

// TransitionError reports an event that is not legal in the current state.
type TransitionError struct {
	From  types.ControlState
	Event Event
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("conversation in state %q cannot apply %q", e.From, e.Event)
}

var transitions = map[types.ControlState]map[Event]types.ControlState{
	types.StateActive: {
		EventOperatorPause: types.StateHumanPaused,
		EventEscalate:      types.StateEscalated,
	},
	types.StateHumanPaused: {
		EventOperatorResume: types.StateActive,
	},
	types.StateEscalated: {
		EventOperatorResolve: types.StateActive,
	},
}

// Apply returns the state reached by firing ev from state. Anything not
// in the transition table is an error and leaves the caller's state
// untouched.
func Apply(state types.ControlState, ev Event) (types.ControlState, error) {
	if next, ok := transitions[state][ev]; ok {
		return next, nil
	}
	return state, &TransitionError{From: state, Event: ev}
}

// EventFor returns the event that moves from into to, when a single
// legal event does. Persistence layers use it to validate state writes
// requested by target state rather than by event.
func EventFor(from, to types.ControlState) (Event, bool) {
	for ev, next := range transitions[from] {
		if next == to {
			return ev, true
		}
	}
	return "", false
}

// Gate returns a StateGateError when the conversation must not be
// answered. Callers short-circuit before any prompt synthesis or
// provider call.
func Gate(c types.Conversation) error {
	if c.Active() {
		return nil
	}
	return &types.StateGateError{State: c.ControlState}
}
