package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mudler/xlog"
	"github.com/sokoni-labs/sokoni/core/pricing"
	"github.com/sokoni-labs/sokoni/core/types"
	"github.com/sokoni-labs/sokoni/pkg/xstrings"
)

type bookingArgs struct {
	ServiceName         string          `json:"service_name"`
	SelectedVariant     string          `json:"selected_variant"`
	SelectedSupplements map[string]bool `json:"selected_supplements"`
	CustomerPhone       string          `json:"customer_phone"`
	CustomerName        string          `json:"customer_name"`
	PreferredDate       string          `json:"preferred_date"`
	PreferredTime       string          `json:"preferred_time"`
	Location            string          `json:"location"`
	Notes               string          `json:"notes"`
}

func (e *Executor) createBooking(ctx context.Context, inv Invocation, args types.ToolArgs) types.ToolCallResult {
	var ba bookingArgs
	if err := args.Unmarshal(&ba); err != nil {
		return failedResult("create_booking arguments did not match the expected shape")
	}

	if strings.TrimSpace(ba.ServiceName) == "" {
		return validationResult(types.ReasonMissingField, "service_name", "ask which service the customer wants to book")
	}
	if strings.TrimSpace(ba.CustomerPhone) == "" {
		return validationResult(types.ReasonMissingField, "customer_phone", "ask for the customer's phone number")
	}
	if strings.TrimSpace(ba.PreferredDate) == "" {
		return validationResult(types.ReasonMissingField, "preferred_date", "ask for the desired date")
	}

	services := []types.Product{}
	for _, p := range inv.Products {
		if p.Kind == types.ProductService {
			services = append(services, p)
		}
	}
	service := findProduct(services, ba.ServiceName)
	if service == nil {
		available := productNames(services)
		if available == "" {
			available = "none"
		}
		return validationResult(types.ReasonUnknownProduct, "service_name",
			fmt.Sprintf("service %q is not in the catalogue. Available: %s", ba.ServiceName, available))
	}

	at, err := parsePreferredDate(ba.PreferredDate, ba.PreferredTime, time.Now())
	if err != nil {
		return validationResult(types.ReasonUnparsableDate, "preferred_date",
			fmt.Sprintf("%v, ask the customer for a date like 2026-09-15", err))
	}

	price := service.Price
	variantDetail := ""
	if ba.SelectedVariant != "" {
		for _, g := range service.Variants {
			if g.Mode != types.PricingFixed || !g.HasOptions() {
				continue
			}
			if opt := pricing.MatchOption(g, ba.SelectedVariant); opt != nil {
				if opt.Price > 0 {
					price = opt.Price
				}
				variantDetail = opt.Value
			}
			break
		}
	}

	supplements := []string{}
	for _, g := range service.Variants {
		if g.Mode != types.PricingAdditive || !g.HasOptions() {
			continue
		}
		for chosen, wanted := range ba.SelectedSupplements {
			if !wanted {
				continue
			}
			if opt := pricing.MatchOption(g, chosen); opt != nil {
				price += opt.Price
				supplements = append(supplements, opt.Value)
			}
		}
	}

	notes := ba.Notes
	if len(supplements) > 0 {
		notes = strings.TrimSpace(notes + "\nAdd-ons: " + strings.Join(supplements, ", "))
	}

	serviceName := service.Name
	if variantDetail != "" {
		serviceName = service.Name + " " + variantDetail
	}

	booking := &types.Booking{
		ID:             uuid.NewString(),
		AgentID:        inv.Agent.ID,
		ConversationID: inv.Conversation.ID,
		ServiceName:    serviceName,
		CustomerName:   ba.CustomerName,
		CustomerPhone:  NormalizePhone(ba.CustomerPhone, e.cfg.DefaultCountryCode),
		Date:           at,
		Location:       ba.Location,
		Notes:          notes,
		Price:          price,
		Status:         types.BookingConfirmed,
		CreatedAt:      time.Now(),
	}

	if err := e.store.CreateBooking(ctx, booking); err != nil {
		xlog.Error("Booking creation failed", "agent", inv.Agent.ID, "error", err)
		return failedResult("the booking could not be saved, ask the customer to retry in a moment")
	}

	message := fmt.Sprintf("Booking confirmed: %s on %s at %s, %s %s.",
		serviceName, at.Format("02/01/2006"), at.Format("15:04"),
		xstrings.FormatThousands(price), e.cfg.CurrencyLabel)
	if inv.Agent.EscalationPhone != "" {
		message += fmt.Sprintf(" For any issue the customer can reach support at %s.", inv.Agent.EscalationPhone)
	}

	return types.ToolCallResult{
		Status:   types.ToolSuccess,
		RecordID: booking.ID,
		Message:  message,
		Payload: map[string]interface{}{
			"booking_id":   booking.ID,
			"service_name": serviceName,
			"date":         at.Format("2006-01-02"),
			"time":         at.Format("15:04"),
			"price":        price,
		},
	}
}
