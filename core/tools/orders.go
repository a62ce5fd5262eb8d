package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mudler/xlog"
	"github.com/sokoni-labs/sokoni/core/pricing"
	"github.com/sokoni-labs/sokoni/core/types"
	"github.com/sokoni-labs/sokoni/pkg/xstrings"
)

type orderItemArgs struct {
	ProductName      string            `json:"product_name"`
	Quantity         int64             `json:"quantity"`
	SelectedVariants map[string]string `json:"selected_variants"`
	// UnitPrice is honored only when explicitly supplied; the catalog
	// price is the default truth.
	UnitPrice *int64 `json:"unit_price"`
}

type orderArgs struct {
	Items           []orderItemArgs `json:"items"`
	CustomerName    string          `json:"customer_name"`
	CustomerPhone   string          `json:"customer_phone"`
	DeliveryAddress string          `json:"delivery_address"`
	Email           string          `json:"email"`
	PaymentMethod   string          `json:"payment_method"`
	Notes           string          `json:"notes"`
}

func (e *Executor) createOrder(ctx context.Context, inv Invocation, args types.ToolArgs) types.ToolCallResult {
	var oa orderArgs
	if err := args.Unmarshal(&oa); err != nil {
		return failedResult("create_order arguments did not match the expected shape")
	}

	if len(oa.Items) == 0 {
		return validationResult(types.ReasonMissingField, "items", "the order has no items")
	}
	if strings.TrimSpace(oa.CustomerName) == "" {
		return validationResult(types.ReasonMissingField, "customer_name", "ask for the customer's full name")
	}
	if strings.TrimSpace(oa.CustomerPhone) == "" {
		return validationResult(types.ReasonMissingField, "customer_phone", "ask for the customer's phone number")
	}

	var total int64
	orderItems := make([]types.OrderItem, 0, len(oa.Items))
	allDigital := true
	anyDigital := false
	// Stock is checked against the running total per product so two
	// lines of the same item cannot jointly oversell.
	requested := map[string]int64{}

	for _, item := range oa.Items {
		quantity := item.Quantity
		if quantity <= 0 {
			quantity = 1
		}

		product := findProduct(inv.Products, item.ProductName)
		if product == nil {
			return validationResult(types.ReasonUnknownProduct, "items",
				fmt.Sprintf("product %q is not in the catalogue. Available: %s", item.ProductName, productNames(inv.Products)))
		}

		needed := quantity
		if !product.Unlimited() {
			needed += requested[product.ID]
		}
		if available, ok := checkStock(*product, needed); !ok {
			msg := fmt.Sprintf("insufficient stock for %q: %d available, %d requested", product.Name, available, needed)
			if available == 0 {
				msg = fmt.Sprintf("%q is out of stock, suggest an alternative", product.Name)
			}
			res := validationResult(types.ReasonInsufficientStock, "items", msg)
			res.Payload["available_stock"] = available
			return res
		}

		resolution, err := pricing.Resolve(*product, item.SelectedVariants, item.ProductName)
		if err != nil {
			xlog.Error("Catalog pricing is misconfigured", "product", product.Name, "error", err)
			return failedResult(fmt.Sprintf("the catalogue entry for %q is misconfigured, a human needs to fix it", product.Name))
		}
		if !resolution.Finalizable() {
			return validationResult(types.ReasonMissingField, "selected_variants",
				fmt.Sprintf("ask the customer to choose: %s for %q", strings.Join(resolution.MissingNames(), ", "), product.Name))
		}

		unitPrice := resolution.UnitPrice
		if item.UnitPrice != nil && *item.UnitPrice > 0 {
			unitPrice = *item.UnitPrice
		}

		if product.Kind == types.ProductDigital {
			anyDigital = true
		} else {
			allDigital = false
		}
		if !product.Unlimited() {
			requested[product.ID] += quantity
		}

		total += unitPrice * quantity
		orderItems = append(orderItems, types.OrderItem{
			Name:      resolution.Label,
			Quantity:  quantity,
			UnitPrice: unitPrice,
		})
	}

	if anyDigital && strings.TrimSpace(oa.Email) == "" {
		return validationResult(types.ReasonMissingField, "email",
			"this digital product is delivered by email, ask for the customer's email address first")
	}
	deliveryAddress := oa.DeliveryAddress
	if allDigital {
		deliveryAddress = ""
	}

	method := types.PaymentMethod(oa.PaymentMethod)
	switch method {
	case types.PaymentOnline, types.PaymentCashOnDelivery, types.PaymentMobileMoneyDirect:
	case "":
		method = types.PaymentOnline
		if inv.Agent.PaymentMode == types.PaymentMobileMoneyDirect {
			method = types.PaymentMobileMoneyDirect
		}
	default:
		return validationResult(types.ReasonMissingField, "payment_method",
			fmt.Sprintf("unknown payment method %q", oa.PaymentMethod))
	}

	status := types.OrderPending
	if method == types.PaymentCashOnDelivery {
		status = types.OrderPendingDelivery
	}

	notes := oa.Notes
	if oa.Email != "" {
		notes = strings.TrimSpace(notes + "\nEmail: " + oa.Email)
	}

	order := &types.Order{
		ID:              uuid.NewString(),
		AgentID:         inv.Agent.ID,
		ConversationID:  inv.Conversation.ID,
		CustomerName:    oa.CustomerName,
		CustomerPhone:   NormalizePhone(oa.CustomerPhone, e.cfg.DefaultCountryCode),
		CustomerEmail:   oa.Email,
		DeliveryAddress: deliveryAddress,
		PaymentMethod:   method,
		Status:          status,
		Total:           total,
		Items:           orderItems,
		Notes:           notes,
		CreatedAt:       time.Now(),
	}

	if err := e.store.CreateOrder(ctx, order); err != nil {
		xlog.Error("Order creation failed", "agent", inv.Agent.ID, "error", err)
		return failedResult("the order could not be saved, ask the customer to retry in a moment")
	}

	for productID, quantity := range requested {
		if err := e.store.DecrementStock(ctx, productID, quantity); err != nil {
			xlog.Error("Stock decrement failed", "product", productID, "error", err)
		}
	}

	result := types.ToolCallResult{
		Status:   types.ToolSuccess,
		RecordID: order.ID,
		Payload: map[string]interface{}{
			"order_id":       order.ID,
			"total":          total,
			"payment_method": string(method),
			"items_summary":  e.itemsSummary(orderItems, inv.Products),
		},
	}

	amount := xstrings.FormatThousands(total) + " " + e.cfg.CurrencyLabel
	switch method {
	case types.PaymentCashOnDelivery:
		result.Message = fmt.Sprintf("Order confirmed, delivery is being prepared. %s to pay in cash on delivery.", amount)
	case types.PaymentMobileMoneyDirect:
		methods := []map[string]string{}
		if inv.Agent.MobileMoneyOrange != "" {
			methods = append(methods, map[string]string{"type": "Orange Money", "number": inv.Agent.MobileMoneyOrange})
		}
		if inv.Agent.MobileMoneyMTN != "" {
			methods = append(methods, map[string]string{"type": "MTN Money", "number": inv.Agent.MobileMoneyMTN})
		}
		if inv.Agent.MobileMoneyWave != "" {
			methods = append(methods, map[string]string{"type": "Wave", "number": inv.Agent.MobileMoneyWave})
		}
		result.Payload["payment_methods"] = methods
		result.Message = fmt.Sprintf("Order registered, awaiting payment. Ask the customer to transfer %s and send a screenshot.", amount)
	default:
		if e.cfg.PaymentBaseURL != "" {
			result.Payload["payment_link"] = e.cfg.PaymentBaseURL + "/pay/" + order.ID
		}
		result.Message = fmt.Sprintf("Order created, payment link generated for %s.", amount)
	}
	if inv.Agent.EscalationPhone != "" {
		result.Message += fmt.Sprintf(" For any issue the customer can reach support at %s.", inv.Agent.EscalationPhone)
	}
	return result
}

// itemsSummary groups order lines by base product for the recap the
// model shows the customer ("- L 2 X 15 000 = 30 000 FCFA").
func (e *Executor) itemsSummary(items []types.OrderItem, products []types.Product) string {
	type group struct {
		name     string
		lines    []string
		subTotal int64
	}
	groups := []*group{}
	byName := map[string]*group{}

	for _, item := range items {
		baseName := item.Name
		variantDetail := "Standard"
		for _, p := range products {
			if strings.HasPrefix(item.Name, p.Name) && len(p.Name) > 0 {
				baseName = p.Name
				if detail := strings.TrimSpace(strings.TrimPrefix(item.Name, p.Name)); detail != "" {
					variantDetail = detail
				}
				break
			}
		}

		g, ok := byName[baseName]
		if !ok {
			g = &group{name: baseName}
			byName[baseName] = g
			groups = append(groups, g)
		}
		lineTotal := item.Quantity * item.UnitPrice
		g.subTotal += lineTotal
		g.lines = append(g.lines, fmt.Sprintf("- %s %d X %s = %s %s",
			variantDetail, item.Quantity,
			xstrings.FormatThousands(item.UnitPrice), xstrings.FormatThousands(lineTotal), e.cfg.CurrencyLabel))
	}

	parts := make([]string, 0, len(groups))
	for _, g := range groups {
		parts = append(parts, fmt.Sprintf("*%s*:\n%s\nSubtotal = %s %s",
			g.name, strings.Join(g.lines, "\n"), xstrings.FormatThousands(g.subTotal), e.cfg.CurrencyLabel))
	}
	return strings.Join(parts, "\n\n")
}

type statusArgs struct {
	OrderID string `json:"order_id"`
}

func (e *Executor) checkPaymentStatus(ctx context.Context, inv Invocation, args types.ToolArgs) types.ToolCallResult {
	var sa statusArgs
	if err := args.Unmarshal(&sa); err != nil {
		return failedResult("check_payment_status arguments did not match the expected shape")
	}

	var order *types.Order
	var err error
	if sa.OrderID != "" {
		order, err = e.store.OrderByID(ctx, inv.Agent.ID, sa.OrderID)
	} else {
		order, err = e.store.LatestOrderByCustomer(ctx, inv.Agent.ID, inv.Conversation.CounterpartyID)
	}
	if err != nil {
		var nf *types.NotFoundError
		if errors.As(err, &nf) {
			return validationResult(types.ReasonNotFound, "order_id", "no order found for this customer")
		}
		xlog.Error("Order lookup failed", "agent", inv.Agent.ID, "error", err)
		return failedResult("the order could not be looked up right now")
	}

	amount := xstrings.FormatThousands(order.Total) + " " + e.cfg.CurrencyLabel
	statusText := map[types.OrderStatus]string{
		types.OrderPending:         "awaiting payment. Total: " + amount + ".",
		types.OrderPaid:            "payment confirmed, being processed.",
		types.OrderPendingDelivery: "out for delivery.",
		types.OrderDelivered:       "delivered.",
		types.OrderCancelled:       "cancelled.",
	}
	text, ok := statusText[order.Status]
	if !ok {
		text = string(order.Status)
	}

	return types.ToolCallResult{
		Status:   types.ToolSuccess,
		RecordID: order.ID,
		Message:  fmt.Sprintf("Order #%s: %s", shortID(order.ID), text),
		Payload: map[string]interface{}{
			"order_id":       order.ID,
			"status":         string(order.Status),
			"payment_method": string(order.PaymentMethod),
			"total":          order.Total,
		},
	}
}

type findArgs struct {
	PhoneNumber string `json:"phone_number"`
}

func (e *Executor) findOrder(ctx context.Context, inv Invocation, args types.ToolArgs) types.ToolCallResult {
	var fa findArgs
	if err := args.Unmarshal(&fa); err != nil {
		return failedResult("find_order arguments did not match the expected shape")
	}
	if strings.TrimSpace(fa.PhoneNumber) == "" {
		return validationResult(types.ReasonMissingField, "phone_number", "ask for the customer's phone number")
	}

	phone := NormalizePhone(fa.PhoneNumber, e.cfg.DefaultCountryCode)
	orders, err := e.store.RecentOrdersByCustomer(ctx, inv.Agent.ID, phone, 3)
	if err != nil {
		xlog.Error("Order search failed", "agent", inv.Agent.ID, "error", err)
		return failedResult("orders could not be searched right now")
	}
	if len(orders) == 0 {
		return types.ToolCallResult{Status: types.ToolSuccess, Message: "No orders found for this number."}
	}

	lines := make([]string, 0, len(orders))
	for _, o := range orders {
		items := make([]string, 0, len(o.Items))
		for _, it := range o.Items {
			items = append(items, fmt.Sprintf("%dx %s", it.Quantity, it.Name))
		}
		lines = append(lines, fmt.Sprintf("- Order #%s of %s (%s %s): %s\n  Items: %s",
			shortID(o.ID), o.CreatedAt.Format("02/01/2006"),
			xstrings.FormatThousands(o.Total), e.cfg.CurrencyLabel, o.Status, strings.Join(items, ", ")))
	}

	message := "Most recent orders:\n" + strings.Join(lines, "\n\n") +
		"\n\nThese are the last 3 orders."
	if inv.Agent.EscalationPhone != "" {
		message += " For older history the customer can contact support at " + inv.Agent.EscalationPhone + "."
	} else {
		message += " For older history the customer can contact support."
	}
	return types.ToolCallResult{Status: types.ToolSuccess, Message: message}
}
