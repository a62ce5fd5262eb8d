package conversations_test

import (
	"github.com/sokoni-labs/sokoni/core/conversations"
	"github.com/sokoni-labs/sokoni/core/types"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Apply", func() {
	It("pauses an active conversation on operator action", func() {
		next, err := conversations.Apply(types.StateActive, conversations.EventOperatorPause)
		Expect(err).ToNot(HaveOccurred())
		Expect(next).To(Equal(types.StateHumanPaused))
	})

	It("escalates an active conversation", func() {
		next, err := conversations.Apply(types.StateActive, conversations.EventEscalate)
		Expect(err).ToNot(HaveOccurred())
		Expect(next).To(Equal(types.StateEscalated))
	})

	It("resumes a paused conversation", func() {
		next, err := conversations.Apply(types.StateHumanPaused, conversations.EventOperatorResume)
		Expect(err).ToNot(HaveOccurred())
		Expect(next).To(Equal(types.StateActive))
	})

	It("resolves an escalated conversation back to active", func() {
		next, err := conversations.Apply(types.StateEscalated, conversations.EventOperatorResolve)
		Expect(err).ToNot(HaveOccurred())
		Expect(next).To(Equal(types.StateActive))
	})

	It("refuses to escalate a paused conversation", func() {
		next, err := conversations.Apply(types.StateHumanPaused, conversations.EventEscalate)
		Expect(err).To(HaveOccurred())
		Expect(next).To(Equal(types.StateHumanPaused))

		var terr *conversations.TransitionError
		Expect(err).To(BeAssignableToTypeOf(terr))
	})

	It("refuses to resume out of escalated", func() {
		_, err := conversations.Apply(types.StateEscalated, conversations.EventOperatorResume)
		Expect(err).To(HaveOccurred())
	})

	It("refuses a resolve on an active conversation", func() {
		_, err := conversations.Apply(types.StateActive, conversations.EventOperatorResolve)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Gate", func() {
	It("lets active conversations through", func() {
		Expect(conversations.Gate(types.Conversation{ControlState: types.StateActive})).To(Succeed())
	})

	It("blocks paused and escalated conversations with a StateGateError", func() {
		for _, state := range []types.ControlState{types.StateHumanPaused, types.StateEscalated} {
			err := conversations.Gate(types.Conversation{ControlState: state})
			var gateErr *types.StateGateError
			Expect(err).To(BeAssignableToTypeOf(gateErr))
		}
	})
})
