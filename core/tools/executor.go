// Package tools resolves model-requested actions into validated
// transactional records. Every failure is a structured result the model
// can phrase a clarification from; tools never return a Go error to the
// turn loop.
package tools

import (
	"context"

	"github.com/mudler/xlog"
	"github.com/sokoni-labs/sokoni/core/types"
)

// Store is the persistence slice the executor needs. Lookups return a
// *types.NotFoundError when nothing matches; any other error is an
// infrastructure failure.
type Store interface {
	CreateOrder(ctx context.Context, o *types.Order) error
	CreateBooking(ctx context.Context, b *types.Booking) error
	OrderByID(ctx context.Context, agentID, orderID string) (*types.Order, error)
	LatestOrderByCustomer(ctx context.Context, agentID, phone string) (*types.Order, error)
	RecentOrdersByCustomer(ctx context.Context, agentID, phone string, limit int) ([]types.Order, error)
	DecrementStock(ctx context.Context, productID string, qty int64) error
}

type Config struct {
	// PaymentBaseURL prefixes generated payment links ("<base>/pay/<id>").
	PaymentBaseURL string
	// CurrencyLabel is appended to amounts in model-facing messages.
	CurrencyLabel string
	// DefaultCountryCode completes national phone numbers.
	DefaultCountryCode string
}

type Executor struct {
	store Store
	cfg   Config
}

func NewExecutor(store Store, cfg Config) *Executor {
	if cfg.CurrencyLabel == "" {
		cfg.CurrencyLabel = "FCFA"
	}
	if cfg.DefaultCountryCode == "" {
		cfg.DefaultCountryCode = "225"
	}
	return &Executor{store: store, cfg: cfg}
}

// Invocation bundles the per-turn context a tool call runs against. The
// executor itself is stateless across turns.
type Invocation struct {
	Agent        types.Agent
	Products     []types.Product
	Conversation types.Conversation
	Call         types.ToolCallRequest
}

func (e *Executor) Execute(ctx context.Context, inv Invocation) types.ToolCallResult {
	xlog.Debug("Executing tool", "name", inv.Call.Name, "agent", inv.Agent.ID)

	args := types.ToolArgs{}
	if err := args.Read(inv.Call.Arguments); err != nil {
		xlog.Error("Tool arguments are not valid JSON", "name", inv.Call.Name, "error", err)
		return failedResult("tool arguments were not valid JSON")
	}

	switch inv.Call.Name {
	case ToolCreateOrder:
		return e.createOrder(ctx, inv, args)
	case ToolCreateBooking:
		return e.createBooking(ctx, inv, args)
	case ToolCheckPaymentStatus:
		return e.checkPaymentStatus(ctx, inv, args)
	case ToolFindOrder:
		return e.findOrder(ctx, inv, args)
	case ToolSendImage:
		return e.sendImage(inv, args)
	}
	return failedResult("unknown tool " + inv.Call.Name)
}

func validationResult(reason types.Reason, field, message string) types.ToolCallResult {
	res := types.ToolCallResult{
		Status:  types.ToolValidationError,
		Reason:  reason,
		Message: message,
	}
	if field != "" {
		res.Payload = map[string]interface{}{"field": field}
	}
	return res
}

func failedResult(message string) types.ToolCallResult {
	return types.ToolCallResult{Status: types.ToolFailed, Message: message}
}
