// Package followup runs the scheduled order sweeps: payment reminders,
// expiry cancellations and post-delivery feedback requests. It only
// queues outbound texts; delivering them is someone else's job.
package followup

import (
	"context"
	"fmt"
	"time"

	"github.com/mudler/xlog"
	"github.com/robfig/cron/v3"

	"github.com/sokoni-labs/sokoni/core/types"
	"github.com/sokoni-labs/sokoni/pkg/xstrings"
)

// Store is the order slice the sweeps need.
type Store interface {
	UnremindedPendingOnline(ctx context.Context, before time.Time) ([]types.Order, error)
	MarkReminded(ctx context.Context, orderID string) error
	ExpiredPendingOnline(ctx context.Context, before time.Time) ([]types.Order, error)
	CancelOrder(ctx context.Context, orderID, reason string) error
	DeliveredAwaitingFeedback(ctx context.Context, from, to time.Time) ([]types.Order, error)
	MarkFeedbackAsked(ctx context.Context, orderID string) error
}

// Outbox queues one outbound text for later delivery.
type Outbox interface {
	Queue(ctx context.Context, agentID, recipientPhone, message string) error
}

type Config struct {
	// ReminderAfter is how long an online order may sit unpaid before
	// the one-time payment reminder goes out.
	ReminderAfter time.Duration
	// CancelAfter is how long an online order may sit unpaid before it
	// is cancelled.
	CancelAfter time.Duration
	// FeedbackAfter is how long after delivery the review request goes
	// out; FeedbackWindow bounds how far back the sweep looks so old
	// deliveries are never nagged.
	FeedbackAfter  time.Duration
	FeedbackWindow time.Duration
	// PaymentBaseURL prefixes regenerated payment links ("<base>/pay/<id>").
	PaymentBaseURL string
	CurrencyLabel  string
	// Schedule is a cron spec for the sweep cadence.
	Schedule string
}

const cancelledReason = "payment timeout"

type Sweeper struct {
	store  Store
	outbox Outbox
	cfg    Config
	cron   *cron.Cron
}

func New(store Store, outbox Outbox, cfg Config) *Sweeper {
	if cfg.ReminderAfter <= 0 {
		cfg.ReminderAfter = 15 * time.Minute
	}
	if cfg.CancelAfter <= 0 {
		cfg.CancelAfter = time.Hour
	}
	if cfg.FeedbackAfter <= 0 {
		cfg.FeedbackAfter = 72 * time.Hour
	}
	if cfg.FeedbackWindow <= 0 {
		cfg.FeedbackWindow = 24 * time.Hour
	}
	if cfg.CurrencyLabel == "" {
		cfg.CurrencyLabel = "FCFA"
	}
	if cfg.Schedule == "" {
		cfg.Schedule = "@every 5m"
	}
	return &Sweeper{store: store, outbox: outbox, cfg: cfg}
}

// Start schedules the sweep loop. The first sweep runs on the first
// tick, not immediately.
func (s *Sweeper) Start() error {
	if s.cron != nil {
		xlog.Warn("Followup sweeper already started")
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(s.cfg.Schedule, func() {
		s.Sweep(context.Background())
	}); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.cfg.Schedule, err)
	}
	c.Start()
	s.cron = c
	xlog.Info("Followup sweeper started", "schedule", s.cfg.Schedule)
	return nil
}

func (s *Sweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.cron = nil
	xlog.Info("Followup sweeper stopped")
}

// Sweep runs the three passes once. Each pass degrades independently:
// one failing order never blocks the rest.
func (s *Sweeper) Sweep(ctx context.Context) {
	now := time.Now()
	s.remindPending(ctx, now)
	s.cancelExpired(ctx, now)
	s.requestFeedback(ctx, now)
}

func (s *Sweeper) remindPending(ctx context.Context, now time.Time) {
	orders, err := s.store.UnremindedPendingOnline(ctx, now.Add(-s.cfg.ReminderAfter))
	if err != nil {
		xlog.Error("Payment reminder sweep failed", "error", err)
		return
	}
	for _, o := range orders {
		link := s.paymentLink(o.ID)
		if link == "" {
			continue
		}
		xlog.Info("Sending payment reminder", "order", o.ID)
		msg := fmt.Sprintf(
			"Payment reminder: your order #%s is waiting for payment.\nAmount: %s %s\nPay here: %s\nNeed help? Just reply to this message.",
			shortID(o.ID), xstrings.FormatThousands(o.Total), s.cfg.CurrencyLabel, link)
		if err := s.outbox.Queue(ctx, o.AgentID, o.CustomerPhone, msg); err != nil {
			xlog.Error("Failed to queue payment reminder", "order", o.ID, "error", err)
			continue
		}
		if err := s.store.MarkReminded(ctx, o.ID); err != nil {
			xlog.Error("Failed to mark order reminded", "order", o.ID, "error", err)
		}
	}
}

func (s *Sweeper) cancelExpired(ctx context.Context, now time.Time) {
	orders, err := s.store.ExpiredPendingOnline(ctx, now.Add(-s.cfg.CancelAfter))
	if err != nil {
		xlog.Error("Order expiry sweep failed", "error", err)
		return
	}
	for _, o := range orders {
		xlog.Info("Cancelling expired order", "order", o.ID)
		if err := s.store.CancelOrder(ctx, o.ID, cancelledReason); err != nil {
			xlog.Error("Failed to cancel expired order", "order", o.ID, "error", err)
			continue
		}
		msg := fmt.Sprintf(
			"Your order #%s was cancelled because the payment was not received in time. You can order again whenever you like!",
			shortID(o.ID))
		if err := s.outbox.Queue(ctx, o.AgentID, o.CustomerPhone, msg); err != nil {
			xlog.Error("Failed to queue cancellation notice", "order", o.ID, "error", err)
		}
	}
}

func (s *Sweeper) requestFeedback(ctx context.Context, now time.Time) {
	to := now.Add(-s.cfg.FeedbackAfter)
	from := to.Add(-s.cfg.FeedbackWindow)
	orders, err := s.store.DeliveredAwaitingFeedback(ctx, from, to)
	if err != nil {
		xlog.Error("Feedback sweep failed", "error", err)
		return
	}
	for _, o := range orders {
		msg := fmt.Sprintf(
			"How was your order #%s? Reply with:\n1. Very satisfied\n2. Satisfied\n3. Disappointed\nThank you!",
			shortID(o.ID))
		if err := s.outbox.Queue(ctx, o.AgentID, o.CustomerPhone, msg); err != nil {
			xlog.Error("Failed to queue feedback request", "order", o.ID, "error", err)
			continue
		}
		if err := s.store.MarkFeedbackAsked(ctx, o.ID); err != nil {
			xlog.Error("Failed to mark feedback requested", "order", o.ID, "error", err)
		}
	}
}

func (s *Sweeper) paymentLink(orderID string) string {
	if s.cfg.PaymentBaseURL == "" {
		return ""
	}
	return s.cfg.PaymentBaseURL + "/pay/" + orderID
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
