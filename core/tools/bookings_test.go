package tools_test

import (
	"context"
	"time"

	"github.com/sokoni-labs/sokoni/core/tools"
	"github.com/sokoni-labs/sokoni/core/types"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("create_booking", func() {
	var (
		store    *fakeStore
		executor *tools.Executor
		inv      tools.Invocation
	)

	agent := types.Agent{ID: "agent-1"}
	room := types.Product{
		ID: "s1", Name: "Chambre", Kind: types.ProductService, Price: 40000, StockQuantity: -1,
		Variants: []types.VariantGroup{
			{Name: "Catégorie", Mode: types.PricingFixed, Options: []types.VariantOption{
				{Value: "Standard"},
				{Value: "Suite", Price: 80000},
			}},
			{Name: "Options", Mode: types.PricingAdditive, Options: []types.VariantOption{
				{Value: "Petit déjeuner", Price: 5000},
			}},
		},
	}
	tshirt := types.Product{ID: "p1", Name: "T-Shirt", Kind: types.ProductPhysical, Price: 25000, StockQuantity: 5}

	tomorrow := time.Now().Add(24 * time.Hour).Format("2006-01-02")

	baseArgs := func() map[string]interface{} {
		return map[string]interface{}{
			"service_name":   "Chambre",
			"customer_phone": "0701020304",
			"preferred_date": tomorrow,
		}
	}

	BeforeEach(func() {
		store = newFakeStore()
		executor = tools.NewExecutor(store, tools.Config{})
		inv = tools.Invocation{Agent: agent, Products: []types.Product{room, tshirt}, Conversation: types.Conversation{ID: "conv-1"}}
	})

	It("books a service with the default 09:00 time", func() {
		inv.Call = callFor("create_booking", baseArgs())
		res := executor.Execute(context.Background(), inv)

		Expect(res.Status).To(Equal(types.ToolSuccess))
		Expect(store.bookings).To(HaveLen(1))
		b := store.bookings[0]
		Expect(b.Date.Hour()).To(Equal(9))
		Expect(b.Price).To(Equal(int64(40000)))
		Expect(b.Status).To(Equal(types.BookingConfirmed))
	})

	It("prices the chosen fixed variant and additive supplements", func() {
		args := baseArgs()
		args["selected_variant"] = "suite"
		args["selected_supplements"] = map[string]bool{"petit dejeuner": true}
		args["preferred_time"] = "14:30"
		inv.Call = callFor("create_booking", args)
		res := executor.Execute(context.Background(), inv)

		Expect(res.Status).To(Equal(types.ToolSuccess))
		b := store.bookings[0]
		Expect(b.Price).To(Equal(int64(85000)))
		Expect(b.ServiceName).To(Equal("Chambre Suite"))
		Expect(b.Date.Hour()).To(Equal(14))
		Expect(b.Notes).To(ContainSubstring("Petit déjeuner"))
	})

	It("rejects unparsable dates", func() {
		args := baseArgs()
		args["preferred_date"] = "next full moon"
		inv.Call = callFor("create_booking", args)
		res := executor.Execute(context.Background(), inv)

		Expect(res.Status).To(Equal(types.ToolValidationError))
		Expect(res.Reason).To(Equal(types.ReasonUnparsableDate))
		Expect(store.bookings).To(BeEmpty())
	})

	It("rejects past dates", func() {
		args := baseArgs()
		args["preferred_date"] = "2020-01-01"
		inv.Call = callFor("create_booking", args)
		res := executor.Execute(context.Background(), inv)

		Expect(res.Status).To(Equal(types.ToolValidationError))
		Expect(res.Reason).To(Equal(types.ReasonUnparsableDate))
	})

	It("accepts day/month/year dates", func() {
		args := baseArgs()
		args["preferred_date"] = time.Now().Add(48 * time.Hour).Format("02/01/2006")
		inv.Call = callFor("create_booking", args)
		res := executor.Execute(context.Background(), inv)
		Expect(res.Status).To(Equal(types.ToolSuccess))
	})

	It("only books service products", func() {
		args := baseArgs()
		args["service_name"] = "T-Shirt"
		inv.Call = callFor("create_booking", args)
		res := executor.Execute(context.Background(), inv)

		Expect(res.Status).To(Equal(types.ToolValidationError))
		Expect(res.Reason).To(Equal(types.ReasonUnknownProduct))
		Expect(res.Message).To(ContainSubstring("Chambre"))
	})

	It("requires service, phone and date", func() {
		for _, missing := range []string{"service_name", "customer_phone", "preferred_date"} {
			args := baseArgs()
			delete(args, missing)
			inv.Call = callFor("create_booking", args)
			res := executor.Execute(context.Background(), inv)
			Expect(res.Status).To(Equal(types.ToolValidationError), "missing %s", missing)
			Expect(res.Reason).To(Equal(types.ReasonMissingField))
		}
	})
})
