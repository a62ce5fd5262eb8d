package types

import "time"

type OrderStatus string

const (
	OrderPending         OrderStatus = "pending"
	OrderPaid            OrderStatus = "paid"
	OrderPendingDelivery OrderStatus = "pending_delivery"
	OrderDelivered       OrderStatus = "delivered"
	OrderCancelled       OrderStatus = "cancelled"
)

type PaymentMethod string

const (
	PaymentOnline            PaymentMethod = "online"
	PaymentCashOnDelivery    PaymentMethod = "cod"
	PaymentMobileMoneyDirect PaymentMethod = "mobile_money_direct"
)

// OrderItem is one line of an order. Name is the resolved pricing label
// (product name plus chosen variant values) so price and description
// can never drift apart.
type OrderItem struct {
	Name      string `json:"name"`
	Quantity  int64  `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// Order is a transactional record created exclusively through the
// tool-call resolver. Only Status is mutated afterwards, by the
// fulfillment side.
type Order struct {
	ID              string        `json:"id"`
	AgentID         string        `json:"agent_id"`
	ConversationID  string        `json:"conversation_id,omitempty"`
	CustomerName    string        `json:"customer_name"`
	CustomerPhone   string        `json:"customer_phone"`
	CustomerEmail   string        `json:"customer_email,omitempty"`
	DeliveryAddress string        `json:"delivery_address,omitempty"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	Status          OrderStatus   `json:"status"`
	Total           int64         `json:"total"`
	Items           []OrderItem   `json:"items"`
	Notes           string        `json:"notes,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// Booking is the service-product counterpart of an Order.
type Booking struct {
	ID             string        `json:"id"`
	AgentID        string        `json:"agent_id"`
	ConversationID string        `json:"conversation_id,omitempty"`
	ServiceName    string        `json:"service_name"`
	CustomerName   string        `json:"customer_name,omitempty"`
	CustomerPhone  string        `json:"customer_phone"`
	Date           time.Time     `json:"date"`
	Location       string        `json:"location,omitempty"`
	Notes          string        `json:"notes,omitempty"`
	Price          int64         `json:"price"`
	Status         BookingStatus `json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
}
