package tools_test

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sokoni-labs/sokoni/core/tools"
	"github.com/sokoni-labs/sokoni/core/types"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func callFor(name string, args map[string]interface{}) types.ToolCallRequest {
	b, err := json.Marshal(args)
	Expect(err).ToNot(HaveOccurred())
	return types.ToolCallRequest{ID: "call-1", Name: name, Arguments: string(b)}
}

var _ = Describe("create_order", func() {
	var (
		store    *fakeStore
		executor *tools.Executor
		inv      tools.Invocation
	)

	agent := types.Agent{ID: "agent-1", EscalationPhone: "+2250102030405"}
	conversation := types.Conversation{ID: "conv-1", AgentID: "agent-1", CounterpartyID: "+2250701020304", ControlState: types.StateActive}

	tshirt := types.Product{
		ID: "p1", Name: "T-Shirt", Kind: types.ProductPhysical, Price: 25000, StockQuantity: 10,
		Variants: []types.VariantGroup{
			{Name: "Taille", Mode: types.PricingFixed, Options: []types.VariantOption{
				{Value: "M"},
				{Value: "L", Price: 30000},
			}},
		},
	}
	ebook := types.Product{ID: "p2", Name: "Guide PDF", Kind: types.ProductDigital, Price: 5000, StockQuantity: -1}

	baseArgs := func() map[string]interface{} {
		return map[string]interface{}{
			"items": []map[string]interface{}{
				{"product_name": "T-Shirt", "quantity": 2, "selected_variants": map[string]string{"Taille": "L"}},
			},
			"customer_name":    "Awa Koné",
			"customer_phone":   "07 01 02 03 04",
			"delivery_address": "Cocody, Abidjan",
			"payment_method":   "cod",
		}
	}

	BeforeEach(func() {
		store = newFakeStore()
		executor = tools.NewExecutor(store, tools.Config{PaymentBaseURL: "https://shop.example.com"})
		inv = tools.Invocation{Agent: agent, Products: []types.Product{tshirt, ebook}, Conversation: conversation}
	})

	It("creates an order with the resolved variant label and recomputed total", func() {
		inv.Call = callFor("create_order", baseArgs())
		res := executor.Execute(context.Background(), inv)

		Expect(res.Status).To(Equal(types.ToolSuccess))
		Expect(store.orders).To(HaveLen(1))
		order := store.orders[0]
		Expect(order.Items).To(HaveLen(1))
		Expect(order.Items[0].Name).To(Equal("T-Shirt L"))
		Expect(order.Items[0].UnitPrice).To(Equal(int64(30000)))
		Expect(order.Total).To(Equal(int64(60000)))
		Expect(order.CustomerPhone).To(Equal("+225701020304"))
		Expect(order.Status).To(Equal(types.OrderPendingDelivery))
		Expect(res.Message).To(ContainSubstring("+2250102030405"))
	})

	It("decrements stock for tracked products", func() {
		inv.Call = callFor("create_order", baseArgs())
		executor.Execute(context.Background(), inv)
		Expect(store.decrements["p1"]).To(Equal(int64(2)))
	})

	It("asks for the missing variant instead of failing", func() {
		args := baseArgs()
		args["items"] = []map[string]interface{}{{"product_name": "T-Shirt", "quantity": 1}}
		inv.Call = callFor("create_order", args)
		res := executor.Execute(context.Background(), inv)

		Expect(res.Status).To(Equal(types.ToolValidationError))
		Expect(res.Reason).To(Equal(types.ReasonMissingField))
		Expect(res.Message).To(ContainSubstring("Taille"))
		Expect(store.orders).To(BeEmpty())
	})

	It("rejects unknown products with the available list", func() {
		args := baseArgs()
		args["items"] = []map[string]interface{}{{"product_name": "Montre", "quantity": 1}}
		inv.Call = callFor("create_order", args)
		res := executor.Execute(context.Background(), inv)

		Expect(res.Status).To(Equal(types.ToolValidationError))
		Expect(res.Reason).To(Equal(types.ReasonUnknownProduct))
		Expect(res.Message).To(ContainSubstring("T-Shirt"))
	})

	It("rejects quantities above stock", func() {
		args := baseArgs()
		args["items"] = []map[string]interface{}{
			{"product_name": "T-Shirt", "quantity": 50, "selected_variants": map[string]string{"Taille": "M"}},
		}
		inv.Call = callFor("create_order", args)
		res := executor.Execute(context.Background(), inv)

		Expect(res.Status).To(Equal(types.ToolValidationError))
		Expect(res.Reason).To(Equal(types.ReasonInsufficientStock))
		Expect(res.Payload["available_stock"]).To(Equal(int64(10)))
		Expect(store.orders).To(BeEmpty())
	})

	It("counts stock across lines of the same product", func() {
		args := baseArgs()
		args["items"] = []map[string]interface{}{
			{"product_name": "T-Shirt", "quantity": 6, "selected_variants": map[string]string{"Taille": "M"}},
			{"product_name": "T-Shirt", "quantity": 6, "selected_variants": map[string]string{"Taille": "L"}},
		}
		inv.Call = callFor("create_order", args)
		res := executor.Execute(context.Background(), inv)

		Expect(res.Status).To(Equal(types.ToolValidationError))
		Expect(res.Reason).To(Equal(types.ReasonInsufficientStock))
		Expect(store.orders).To(BeEmpty())
		Expect(store.decrements).To(BeEmpty())
	})

	It("decrements one aggregate quantity per product", func() {
		args := baseArgs()
		args["items"] = []map[string]interface{}{
			{"product_name": "T-Shirt", "quantity": 4, "selected_variants": map[string]string{"Taille": "M"}},
			{"product_name": "T-Shirt", "quantity": 4, "selected_variants": map[string]string{"Taille": "L"}},
		}
		inv.Call = callFor("create_order", args)
		res := executor.Execute(context.Background(), inv)

		Expect(res.Status).To(Equal(types.ToolSuccess))
		Expect(store.orders[0].Items).To(HaveLen(2))
		Expect(store.decrements["p1"]).To(Equal(int64(8)))
	})

	It("requires an email for digital products and drops the address", func() {
		args := map[string]interface{}{
			"items":          []map[string]interface{}{{"product_name": "Guide PDF", "quantity": 1}},
			"customer_name":  "Awa Koné",
			"customer_phone": "0701020304",
		}
		inv.Call = callFor("create_order", args)
		res := executor.Execute(context.Background(), inv)
		Expect(res.Status).To(Equal(types.ToolValidationError))
		Expect(res.Reason).To(Equal(types.ReasonMissingField))

		args["email"] = "awa@example.com"
		args["delivery_address"] = "should be ignored"
		inv.Call = callFor("create_order", args)
		res = executor.Execute(context.Background(), inv)
		Expect(res.Status).To(Equal(types.ToolSuccess))
		Expect(store.orders[0].DeliveryAddress).To(BeEmpty())
		Expect(store.orders[0].Notes).To(ContainSubstring("awa@example.com"))
	})

	It("requires name and phone", func() {
		args := baseArgs()
		args["customer_phone"] = ""
		inv.Call = callFor("create_order", args)
		res := executor.Execute(context.Background(), inv)
		Expect(res.Status).To(Equal(types.ToolValidationError))
		Expect(res.Reason).To(Equal(types.ReasonMissingField))
	})

	It("honors an explicit unit_price override", func() {
		args := baseArgs()
		args["items"] = []map[string]interface{}{
			{"product_name": "T-Shirt", "quantity": 1, "selected_variants": map[string]string{"Taille": "M"}, "unit_price": 20000},
		}
		inv.Call = callFor("create_order", args)
		res := executor.Execute(context.Background(), inv)

		Expect(res.Status).To(Equal(types.ToolSuccess))
		Expect(store.orders[0].Total).To(Equal(int64(20000)))
	})

	It("generates a payment link for online orders", func() {
		args := baseArgs()
		args["payment_method"] = "online"
		inv.Call = callFor("create_order", args)
		res := executor.Execute(context.Background(), inv)

		Expect(res.Status).To(Equal(types.ToolSuccess))
		Expect(res.Payload["payment_link"]).To(HavePrefix("https://shop.example.com/pay/"))
		Expect(store.orders[0].Status).To(Equal(types.OrderPending))
	})

	It("lists the tenant's mobile money numbers for direct transfers", func() {
		a := agent
		a.PaymentMode = types.PaymentMobileMoneyDirect
		a.MobileMoneyOrange = "0707070707"
		inv.Agent = a
		args := baseArgs()
		delete(args, "payment_method")
		inv.Call = callFor("create_order", args)
		res := executor.Execute(context.Background(), inv)

		Expect(res.Status).To(Equal(types.ToolSuccess))
		Expect(res.Payload["payment_method"]).To(Equal("mobile_money_direct"))
		Expect(res.Payload["payment_methods"]).To(HaveLen(1))
		Expect(res.Message).To(ContainSubstring("screenshot"))
	})

	It("turns a store failure into a failed result, never a panic", func() {
		store.failWrites = true
		inv.Call = callFor("create_order", baseArgs())
		res := executor.Execute(context.Background(), inv)
		Expect(res.Status).To(Equal(types.ToolFailed))
	})
})

var _ = Describe("check_payment_status", func() {
	var (
		store    *fakeStore
		executor *tools.Executor
		inv      tools.Invocation
	)

	agent := types.Agent{ID: "agent-1"}
	conversation := types.Conversation{ID: "conv-1", AgentID: "agent-1", CounterpartyID: "+2250701020304"}

	BeforeEach(func() {
		store = newFakeStore()
		store.orders = []types.Order{{
			ID: "9f1c2d3e-aaaa-bbbb-cccc-000000000000", AgentID: "agent-1",
			CustomerPhone: "+2250701020304", Status: types.OrderPaid, Total: 60000,
			PaymentMethod: types.PaymentOnline, CreatedAt: time.Now(),
		}}
		executor = tools.NewExecutor(store, tools.Config{})
		inv = tools.Invocation{Agent: agent, Conversation: conversation}
	})

	It("resolves the most recent order when order_id is omitted", func() {
		inv.Call = callFor("check_payment_status", map[string]interface{}{})
		res := executor.Execute(context.Background(), inv)

		Expect(res.Status).To(Equal(types.ToolSuccess))
		Expect(res.Payload["status"]).To(Equal("paid"))
		Expect(res.Message).To(ContainSubstring("Order #9f1c2d3e"))
	})

	It("looks up a specific order by short id", func() {
		inv.Call = callFor("check_payment_status", map[string]interface{}{"order_id": "9f1c2d3e"})
		res := executor.Execute(context.Background(), inv)
		Expect(res.Status).To(Equal(types.ToolSuccess))
	})

	It("reports not_found when the customer has no orders", func() {
		store.orders = nil
		inv.Call = callFor("check_payment_status", map[string]interface{}{})
		res := executor.Execute(context.Background(), inv)

		Expect(res.Status).To(Equal(types.ToolValidationError))
		Expect(res.Reason).To(Equal(types.ReasonNotFound))
	})
})

var _ = Describe("find_order", func() {
	var (
		store    *fakeStore
		executor *tools.Executor
		inv      tools.Invocation
	)

	agent := types.Agent{ID: "agent-1", EscalationPhone: "+2250102030405"}

	BeforeEach(func() {
		store = newFakeStore()
		for i := 0; i < 5; i++ {
			store.orders = append(store.orders, types.Order{
				ID: string(rune('a'+i)) + "1234567890", AgentID: "agent-1",
				CustomerPhone: "+225701020304", Status: types.OrderDelivered, Total: 10000,
				Items:     []types.OrderItem{{Name: "T-Shirt M", Quantity: 1, UnitPrice: 10000}},
				CreatedAt: time.Now().Add(-time.Duration(i) * time.Hour),
			})
		}
		executor = tools.NewExecutor(store, tools.Config{})
		inv = tools.Invocation{Agent: agent}
	})

	It("lists at most the three most recent orders", func() {
		inv.Call = callFor("find_order", map[string]interface{}{"phone_number": "07 01 02 03 04"})
		res := executor.Execute(context.Background(), inv)

		Expect(res.Status).To(Equal(types.ToolSuccess))
		Expect(res.Message).To(ContainSubstring("last 3 orders"))
		Expect(res.Message).To(ContainSubstring("+2250102030405"))
	})

	It("requires a phone number", func() {
		inv.Call = callFor("find_order", map[string]interface{}{})
		res := executor.Execute(context.Background(), inv)
		Expect(res.Status).To(Equal(types.ToolValidationError))
		Expect(res.Reason).To(Equal(types.ReasonMissingField))
	})

	It("answers gracefully when nothing matches", func() {
		inv.Call = callFor("find_order", map[string]interface{}{"phone_number": "+22599999999"})
		res := executor.Execute(context.Background(), inv)
		Expect(res.Status).To(Equal(types.ToolSuccess))
		Expect(res.Message).To(ContainSubstring("No orders found"))
	})
})
