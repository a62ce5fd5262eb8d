package types

type ProductKind string

const (
	ProductPhysical ProductKind = "physical"
	ProductDigital  ProductKind = "digital"
	ProductService  ProductKind = "service"
)

type PricingMode string

const (
	// PricingFixed means the selected option price replaces the base price.
	PricingFixed PricingMode = "fixed"
	// PricingAdditive means the selected option price is added on top.
	PricingAdditive PricingMode = "additive"
)

// VariantOption is one selectable value of a VariantGroup, optionally
// carrying its own price and image.
type VariantOption struct {
	Value    string `json:"value"`
	Price    int64  `json:"price,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// VariantGroup is a named axis of product customization (e.g. "Size").
// A product carrying groups with options is not priceable until the
// customer has picked one option per non-additive group.
type VariantGroup struct {
	Name    string          `json:"name"`
	Mode    PricingMode     `json:"mode"`
	Options []VariantOption `json:"options"`
}

// HasOptions reports whether the group actually constrains anything.
// Groups without options are tolerated in catalogs and skipped.
func (g VariantGroup) HasOptions() bool {
	return len(g.Options) > 0
}

// LeadField is an extra question a product requires before a sale or
// booking can be finalized (e.g. "Preferred date").
type LeadField struct {
	Label    string `json:"label"`
	Required bool   `json:"required"`
}

// Product is a read-only catalog entry owned by the tenant.
type Product struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Kind        ProductKind    `json:"kind"`
	Price       int64          `json:"price"`
	Description string         `json:"description,omitempty"`
	Pitch       string         `json:"pitch,omitempty"`
	Features    []string       `json:"features,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	ImageURL    string         `json:"image_url,omitempty"`
	// StockQuantity of -1 means unlimited.
	StockQuantity int64          `json:"stock_quantity"`
	Variants      []VariantGroup `json:"variants,omitempty"`
	LeadFields    []LeadField    `json:"lead_fields,omitempty"`
	RelatedIDs    []string       `json:"related_ids,omitempty"`
	SellerNote    string         `json:"seller_note,omitempty"`
}

// Unlimited reports whether the product has no stock tracking.
func (p Product) Unlimited() bool {
	return p.StockQuantity < 0
}

// HasRealVariants reports whether at least one variant group has options.
func (p Product) HasRealVariants() bool {
	for _, g := range p.Variants {
		if g.HasOptions() {
			return true
		}
	}
	return false
}

// DaySchedule is the opening window for one weekday. Closed days keep
// Open/Close empty.
type DaySchedule struct {
	Open   string `json:"open,omitempty"`
	Close  string `json:"close,omitempty"`
	Closed bool   `json:"closed,omitempty"`
}

// Agent is the tenant-owned configuration for one selling assistant.
// It is immutable for the duration of a conversation turn.
type Agent struct {
	ID              string                 `json:"id"`
	Name            string                 `json:"name"`
	Language        string                 `json:"language,omitempty"`
	UseEmojis       bool                   `json:"use_emojis"`
	ContactPhone    string                 `json:"contact_phone,omitempty"`
	EscalationPhone string                 `json:"escalation_phone,omitempty"`
	CustomRules     string                 `json:"custom_rules,omitempty"`
	DeliveryInfo    string                 `json:"delivery_info,omitempty"`
	BusinessAddress string                 `json:"business_address,omitempty"`
	Latitude        float64                `json:"latitude,omitempty"`
	Longitude       float64                `json:"longitude,omitempty"`
	BusinessHours   map[string]DaySchedule `json:"business_hours,omitempty"`
	// PaymentMode selects the default checkout flow for online payments:
	// automated link, or direct mobile money transfer with manual
	// screenshot validation.
	PaymentMode       PaymentMethod `json:"payment_mode,omitempty"`
	MobileMoneyOrange string        `json:"mobile_money_orange,omitempty"`
	MobileMoneyMTN    string        `json:"mobile_money_mtn,omitempty"`
	MobileMoneyWave   string        `json:"mobile_money_wave,omitempty"`
	// BulkOrderThreshold above which a single line item triggers an
	// escalation. Zero means the default of 50.
	BulkOrderThreshold int     `json:"bulk_order_threshold,omitempty"`
	Model              string  `json:"model,omitempty"`
	Temperature        float32 `json:"temperature,omitempty"`
	MaxTokens          int     `json:"max_tokens,omitempty"`
}

// KnowledgeSnippet is a retrieved free-text passage, included verbatim
// in the instruction context.
type KnowledgeSnippet struct {
	Content string `json:"content"`
}

// CustomerHistory carries the counterparty's recent orders, newest
// first. It is only ever a reuse suggestion, never auto-applied.
type CustomerHistory struct {
	Orders []Order `json:"orders,omitempty"`
}

// LastOrder returns the most recent order, or nil for a new customer.
func (h CustomerHistory) LastOrder() *Order {
	if len(h.Orders) == 0 {
		return nil
	}
	return &h.Orders[0]
}
