package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mudler/xlog"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/sokoni-labs/sokoni/core/conversations"
	"github.com/sokoni-labs/sokoni/core/types"
)

type Store struct {
	db *gorm.DB
}

// Open connects to MySQL and migrates the schema. Column names keep
// their Go casing, so raw conditions below use field names verbatim.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
			NoLowerCase:   true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to MySQL: %w", err)
	}
	if err := db.AutoMigrate(&Agent{}, &Product{}, &Conversation{}, &Message{}, &Order{}, &OrderItem{}, &Booking{}, &OutboundMessage{}); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing connection, used by tests with sqlmock or
// an in-memory driver.
func NewWithDB(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) AgentByID(ctx context.Context, agentID string) (*types.Agent, error) {
	var row Agent
	err := s.db.WithContext(ctx).First(&row, "ID = ?", agentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &types.NotFoundError{Kind: "agent", Name: agentID}
	}
	if err != nil {
		return nil, err
	}
	agent, err := row.toAgent()
	if err != nil {
		return nil, fmt.Errorf("decoding agent config: %w", err)
	}
	return &agent, nil
}

func (s *Store) ProductsByAgent(ctx context.Context, agentID string) ([]types.Product, error) {
	var rows []Product
	if err := s.db.WithContext(ctx).Where("AgentID = ?", agentID).Order("Name asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	products := make([]types.Product, 0, len(rows))
	for _, r := range rows {
		p, err := r.toProduct()
		if err != nil {
			xlog.Error("Skipping product with undecodable data", "product", r.ID, "error", err)
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

func (s *Store) CreateOrder(ctx context.Context, o *types.Order) error {
	row := orderRow(o)
	return s.db.WithContext(ctx).Create(&row).Error
}

func (s *Store) CreateBooking(ctx context.Context, b *types.Booking) error {
	row := bookingRow(b)
	return s.db.WithContext(ctx).Create(&row).Error
}

// OrderByID resolves full or shortened order ids; customers only ever
// see the first 8 characters.
func (s *Store) OrderByID(ctx context.Context, agentID, orderID string) (*types.Order, error) {
	var row Order
	err := s.db.WithContext(ctx).Preload("Items").
		Where("AgentID = ? AND ID LIKE ?", agentID, orderID+"%").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &types.NotFoundError{Kind: "order", Name: orderID}
	}
	if err != nil {
		return nil, err
	}
	o := row.toOrder()
	return &o, nil
}

func (s *Store) LatestOrderByCustomer(ctx context.Context, agentID, phone string) (*types.Order, error) {
	var row Order
	err := s.db.WithContext(ctx).Preload("Items").
		Where("AgentID = ? AND CustomerPhone = ?", agentID, phone).
		Order("CreatedAt desc").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &types.NotFoundError{Kind: "order", Name: phone}
	}
	if err != nil {
		return nil, err
	}
	o := row.toOrder()
	return &o, nil
}

func (s *Store) RecentOrdersByCustomer(ctx context.Context, agentID, phone string, limit int) ([]types.Order, error) {
	var rows []Order
	err := s.db.WithContext(ctx).Preload("Items").
		Where("AgentID = ? AND CustomerPhone = ?", agentID, phone).
		Order("CreatedAt desc").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	orders := make([]types.Order, 0, len(rows))
	for _, r := range rows {
		orders = append(orders, r.toOrder())
	}
	return orders, nil
}

// DecrementStock is conditional on remaining stock so two concurrent
// orders can never oversell. Unlimited products are never passed here.
func (s *Store) DecrementStock(ctx context.Context, productID string, qty int64) error {
	res := s.db.WithContext(ctx).Model(&Product{}).
		Where("ID = ? AND StockQuantity >= ?", productID, qty).
		UpdateColumn("StockQuantity", gorm.Expr("StockQuantity - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %s has less than %d in stock", productID, qty)
	}
	return nil
}

func (s *Store) GetOrCreateConversation(ctx context.Context, agentID, counterpartyID string) (*types.Conversation, error) {
	var row Conversation
	err := s.db.WithContext(ctx).
		Where("AgentID = ? AND CounterpartyID = ?", agentID, counterpartyID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row = Conversation{
			ID:             uuid.NewString(),
			AgentID:        agentID,
			CounterpartyID: counterpartyID,
			ControlState:   string(types.StateActive),
		}
		err = s.db.WithContext(ctx).Create(&row).Error
	}
	if err != nil {
		return nil, err
	}
	c := row.toConversation()
	return &c, nil
}

// SetControlState persists a control-state change. Illegal moves are
// refused here so no caller can corrupt the state machine through the
// database.
func (s *Store) SetControlState(ctx context.Context, conversationID string, state types.ControlState, reason string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row Conversation
		if err := tx.First(&row, "ID = ?", conversationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &types.NotFoundError{Kind: "conversation", Name: conversationID}
			}
			return err
		}
		from := types.ControlState(row.ControlState)
		if from == state {
			return nil
		}
		if _, ok := conversations.EventFor(from, state); !ok {
			return fmt.Errorf("illegal control-state change %s -> %s", from, state)
		}
		updates := map[string]interface{}{"ControlState": string(state)}
		if state == types.StateEscalated {
			updates["EscalationReason"] = reason
		} else if state == types.StateActive {
			updates["EscalationReason"] = ""
		}
		return tx.Model(&row).Updates(updates).Error
	})
}

func (s *Store) SaveMessage(ctx context.Context, conversationID, role, content string) error {
	msg := Message{ConversationID: conversationID, Role: role, Content: content}
	return s.db.WithContext(ctx).Create(&msg).Error
}

// History returns the conversation's last messages in chronological
// order, ready to replay to the model.
func (s *Store) History(ctx context.Context, conversationID string, limit int) ([]types.StoredMessage, error) {
	var rows []Message
	err := s.db.WithContext(ctx).
		Where("ConversationID = ?", conversationID).
		Order("CreatedAt desc").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]types.StoredMessage, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		out = append(out, types.StoredMessage{
			Role:      rows[i].Role,
			Content:   rows[i].Content,
			CreatedAt: rows[i].CreatedAt,
		})
	}
	return out, nil
}

// UnremindedPendingOnline returns online orders still unpaid past the
// cutoff whose customer was never nudged.
func (s *Store) UnremindedPendingOnline(ctx context.Context, before time.Time) ([]types.Order, error) {
	var rows []Order
	err := s.db.WithContext(ctx).
		Where("Status = ? AND PaymentMethod = ? AND CreatedAt < ? AND ReminderSentAt IS NULL",
			string(types.OrderPending), string(types.PaymentOnline), before).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	orders := make([]types.Order, 0, len(rows))
	for _, r := range rows {
		orders = append(orders, r.toOrder())
	}
	return orders, nil
}

func (s *Store) MarkReminded(ctx context.Context, orderID string) error {
	now := time.Now()
	return s.db.WithContext(ctx).Model(&Order{}).
		Where("ID = ?", orderID).
		UpdateColumn("ReminderSentAt", &now).Error
}

// ExpiredPendingOnline returns online orders still unpaid past the
// cancellation cutoff.
func (s *Store) ExpiredPendingOnline(ctx context.Context, before time.Time) ([]types.Order, error) {
	var rows []Order
	err := s.db.WithContext(ctx).
		Where("Status = ? AND PaymentMethod = ? AND CreatedAt < ?",
			string(types.OrderPending), string(types.PaymentOnline), before).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	orders := make([]types.Order, 0, len(rows))
	for _, r := range rows {
		orders = append(orders, r.toOrder())
	}
	return orders, nil
}

func (s *Store) CancelOrder(ctx context.Context, orderID, reason string) error {
	return s.db.WithContext(ctx).Model(&Order{}).
		Where("ID = ?", orderID).
		Updates(map[string]interface{}{
			"Status":          string(types.OrderCancelled),
			"CancelledReason": reason,
		}).Error
}

// DeliveredAwaitingFeedback returns orders delivered inside the window
// whose customer was never asked for a review.
func (s *Store) DeliveredAwaitingFeedback(ctx context.Context, from, to time.Time) ([]types.Order, error) {
	var rows []Order
	err := s.db.WithContext(ctx).
		Where("Status = ? AND FeedbackAskedAt IS NULL AND DeliveredAt < ? AND DeliveredAt > ?",
			string(types.OrderDelivered), to, from).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	orders := make([]types.Order, 0, len(rows))
	for _, r := range rows {
		orders = append(orders, r.toOrder())
	}
	return orders, nil
}

// Queue inserts one pending outbound text. Delivery is the transport
// side's job.
func (s *Store) Queue(ctx context.Context, agentID, recipientPhone, message string) error {
	row := OutboundMessage{
		AgentID:        agentID,
		RecipientPhone: recipientPhone,
		Content:        message,
		Status:         "pending",
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

func (s *Store) MarkFeedbackAsked(ctx context.Context, orderID string) error {
	now := time.Now()
	return s.db.WithContext(ctx).Model(&Order{}).
		Where("ID = ?", orderID).
		UpdateColumn("FeedbackAskedAt", &now).Error
}
