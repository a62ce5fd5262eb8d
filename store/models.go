// Package store persists agents, catalogs, conversations and the
// transactional records the tool layer creates. Columns keep their Go
// field names; callers exchange core/types values, never gorm rows.
package store

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sokoni-labs/sokoni/core/types"
)

type Agent struct {
	ID        string         `gorm:"type:char(36);primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Config    datatypes.JSON `gorm:"type:json;not null" json:"config"`
	Archive   bool           `gorm:"type:boolean;default:false;not null" json:"archive"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

type Product struct {
	ID            string         `gorm:"type:char(36);primaryKey" json:"id"`
	AgentID       string         `gorm:"type:char(36);index;not null" json:"agentId"`
	Name          string         `gorm:"type:varchar(255);not null" json:"name"`
	Kind          string         `gorm:"type:varchar(32);not null" json:"kind"`
	Price         int64          `gorm:"not null" json:"price"`
	StockQuantity int64          `gorm:"default:-1;not null" json:"stockQuantity"`
	// Data carries the rest of the catalog entry (variants, lead fields,
	// related products) as one JSON document.
	Data      datatypes.JSON `gorm:"type:json;not null" json:"data"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`

	Agent Agent `gorm:"foreignKey:AgentID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

type Conversation struct {
	ID               string    `gorm:"type:char(36);primaryKey" json:"id"`
	AgentID          string    `gorm:"type:char(36);index;not null" json:"agentId"`
	CounterpartyID   string    `gorm:"type:varchar(32);index;not null" json:"counterpartyId"`
	ControlState     string    `gorm:"type:varchar(32);default:active;not null" json:"controlState"`
	EscalationReason string    `gorm:"type:text" json:"escalationReason"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`

	Agent Agent `gorm:"foreignKey:AgentID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

type Message struct {
	ID             string    `gorm:"type:char(36);primaryKey" json:"id"`
	ConversationID string    `gorm:"type:char(36);index;not null" json:"conversationId"`
	Role           string    `gorm:"type:varchar(32);not null" json:"role"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	CreatedAt      time.Time `json:"createdAt"`

	Conversation Conversation `gorm:"foreignKey:ConversationID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return
}

type Order struct {
	ID              string     `gorm:"type:char(36);primaryKey" json:"id"`
	AgentID         string     `gorm:"type:char(36);index;not null" json:"agentId"`
	ConversationID  string     `gorm:"type:char(36);index" json:"conversationId"`
	CustomerName    string     `gorm:"type:varchar(255);not null" json:"customerName"`
	CustomerPhone   string     `gorm:"type:varchar(32);index;not null" json:"customerPhone"`
	CustomerEmail   string     `gorm:"type:varchar(255)" json:"customerEmail"`
	DeliveryAddress string     `gorm:"type:text" json:"deliveryAddress"`
	PaymentMethod   string     `gorm:"type:varchar(32);not null" json:"paymentMethod"`
	Status          string     `gorm:"type:varchar(32);index;not null" json:"status"`
	Total           int64      `gorm:"not null" json:"total"`
	Notes           string     `gorm:"type:text" json:"notes"`
	CancelledReason string     `gorm:"type:varchar(255)" json:"cancelledReason"`
	ReminderSentAt  *time.Time `gorm:"type:datetime" json:"reminderSentAt"`
	DeliveredAt     *time.Time `gorm:"type:datetime" json:"deliveredAt"`
	FeedbackAskedAt *time.Time `gorm:"type:datetime" json:"feedbackAskedAt"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`

	Items []OrderItem `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE" json:"items"`
}

type OrderItem struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   string `gorm:"type:char(36);index;not null" json:"orderId"`
	Name      string `gorm:"type:varchar(255);not null" json:"name"`
	Quantity  int64  `gorm:"not null" json:"quantity"`
	UnitPrice int64  `gorm:"not null" json:"unitPrice"`
}

type Booking struct {
	ID             string    `gorm:"type:char(36);primaryKey" json:"id"`
	AgentID        string    `gorm:"type:char(36);index;not null" json:"agentId"`
	ConversationID string    `gorm:"type:char(36);index" json:"conversationId"`
	ServiceName    string    `gorm:"type:varchar(255);not null" json:"serviceName"`
	CustomerName   string    `gorm:"type:varchar(255)" json:"customerName"`
	CustomerPhone  string    `gorm:"type:varchar(32);index;not null" json:"customerPhone"`
	Date           time.Time `gorm:"type:datetime;not null" json:"date"`
	Location       string    `gorm:"type:varchar(255)" json:"location"`
	Notes          string    `gorm:"type:text" json:"notes"`
	Price          int64     `gorm:"not null" json:"price"`
	Status         string    `gorm:"type:varchar(32);not null" json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// OutboundMessage is a queued text awaiting delivery by the transport
// side. The engine and sweeps only ever insert here.
type OutboundMessage struct {
	ID             string    `gorm:"type:char(36);primaryKey" json:"id"`
	AgentID        string    `gorm:"type:char(36);index;not null" json:"agentId"`
	RecipientPhone string    `gorm:"type:varchar(32);not null" json:"recipientPhone"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	Status         string    `gorm:"type:varchar(32);default:pending;not null" json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (m *OutboundMessage) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return
}

func orderRow(o *types.Order) Order {
	row := Order{
		ID:              o.ID,
		AgentID:         o.AgentID,
		ConversationID:  o.ConversationID,
		CustomerName:    o.CustomerName,
		CustomerPhone:   o.CustomerPhone,
		CustomerEmail:   o.CustomerEmail,
		DeliveryAddress: o.DeliveryAddress,
		PaymentMethod:   string(o.PaymentMethod),
		Status:          string(o.Status),
		Total:           o.Total,
		Notes:           o.Notes,
		CreatedAt:       o.CreatedAt,
	}
	for _, it := range o.Items {
		row.Items = append(row.Items, OrderItem{
			OrderID:   o.ID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return row
}

func (r Order) toOrder() types.Order {
	o := types.Order{
		ID:              r.ID,
		AgentID:         r.AgentID,
		ConversationID:  r.ConversationID,
		CustomerName:    r.CustomerName,
		CustomerPhone:   r.CustomerPhone,
		CustomerEmail:   r.CustomerEmail,
		DeliveryAddress: r.DeliveryAddress,
		PaymentMethod:   types.PaymentMethod(r.PaymentMethod),
		Status:          types.OrderStatus(r.Status),
		Total:           r.Total,
		Notes:           r.Notes,
		CreatedAt:       r.CreatedAt,
	}
	for _, it := range r.Items {
		o.Items = append(o.Items, types.OrderItem{
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return o
}

func bookingRow(b *types.Booking) Booking {
	return Booking{
		ID:             b.ID,
		AgentID:        b.AgentID,
		ConversationID: b.ConversationID,
		ServiceName:    b.ServiceName,
		CustomerName:   b.CustomerName,
		CustomerPhone:  b.CustomerPhone,
		Date:           b.Date,
		Location:       b.Location,
		Notes:          b.Notes,
		Price:          b.Price,
		Status:         string(b.Status),
		CreatedAt:      b.CreatedAt,
	}
}

func (r Conversation) toConversation() types.Conversation {
	return types.Conversation{
		ID:               r.ID,
		AgentID:          r.AgentID,
		CounterpartyID:   r.CounterpartyID,
		ControlState:     types.ControlState(r.ControlState),
		EscalationReason: r.EscalationReason,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func (r Product) toProduct() (types.Product, error) {
	p := types.Product{}
	if len(r.Data) > 0 {
		if err := json.Unmarshal(r.Data, &p); err != nil {
			return p, err
		}
	}
	p.ID = r.ID
	p.Name = r.Name
	p.Kind = types.ProductKind(r.Kind)
	p.Price = r.Price
	p.StockQuantity = r.StockQuantity
	return p, nil
}

func (r Agent) toAgent() (types.Agent, error) {
	a := types.Agent{}
	if len(r.Config) > 0 {
		if err := json.Unmarshal(r.Config, &a); err != nil {
			return a, err
		}
	}
	a.ID = r.ID
	a.Name = r.Name
	return a, nil
}
