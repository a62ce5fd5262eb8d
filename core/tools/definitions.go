package tools

import (
	"github.com/sashabaranov/go-openai/jsonschema"
	"github.com/sokoni-labs/sokoni/core/types"
)

const (
	ToolCreateOrder        = "create_order"
	ToolCreateBooking      = "create_booking"
	ToolCheckPaymentStatus = "check_payment_status"
	ToolFindOrder          = "find_order"
	ToolSendImage          = "send_image"
)

// Definitions returns the schemas advertised to the completion provider.
func Definitions() types.ToolDefinitions {
	variantMap := jsonschema.Definition{
		Type:        jsonschema.Object,
		Description: `Selected variants, e.g. {"Taille": "Petite", "Couleur": "Bleu"}. Short names are matched tolerantly.`,
		AdditionalProperties: &jsonschema.Definition{
			Type: jsonschema.String,
		},
	}

	return types.ToolDefinitions{
		{
			Name: ToolCreateOrder,
			Description: `Create an order for the customer. If a product has variants (size, colour...),
collect ALL of them first and pass them in selected_variants.`,
			Properties: map[string]jsonschema.Definition{
				"items": {
					Type: jsonschema.Array,
					Items: &jsonschema.Definition{
						Type: jsonschema.Object,
						Properties: map[string]jsonschema.Definition{
							"product_name":      {Type: jsonschema.String, Description: "Product name, without the variants"},
							"quantity":          {Type: jsonschema.Integer, Description: "Quantity"},
							"selected_variants": variantMap,
							"unit_price":        {Type: jsonschema.Integer, Description: "Only when the seller explicitly quoted a custom price"},
						},
						Required: []string{"product_name", "quantity"},
					},
				},
				"customer_name":    {Type: jsonschema.String, Description: "Customer full name"},
				"customer_phone":   {Type: jsonschema.String, Description: "Customer phone number"},
				"delivery_address": {Type: jsonschema.String, Description: "Full delivery address (city + district)"},
				"email":            {Type: jsonschema.String, Description: "Email, required for digital products"},
				"payment_method":   {Type: jsonschema.String, Enum: []string{"online", "cod", "mobile_money_direct"}, Description: "Payment method"},
				"notes":            {Type: jsonschema.String, Description: "Special instructions"},
			},
			Required: []string{"items", "customer_name", "customer_phone"},
		},
		{
			Name:        ToolCreateBooking,
			Description: "Book a service (hotel, restaurant, salon, consulting...) from the catalogue.",
			Properties: map[string]jsonschema.Definition{
				"service_name":     {Type: jsonschema.String, Description: "Service name in the catalogue"},
				"selected_variant": {Type: jsonschema.String, Description: `Chosen variant (e.g. "Suite", "VIP"), required when the service has variants`},
				"selected_supplements": {
					Type:        jsonschema.Object,
					Description: `Chosen add-ons, e.g. {"Petit déjeuner": true}`,
					AdditionalProperties: &jsonschema.Definition{
						Type: jsonschema.Boolean,
					},
				},
				"customer_phone": {Type: jsonschema.String, Description: "Customer phone number"},
				"customer_name":  {Type: jsonschema.String, Description: "Customer name"},
				"preferred_date": {Type: jsonschema.String, Description: "Date (YYYY-MM-DD)"},
				"preferred_time": {Type: jsonschema.String, Description: "Time (HH:MM)"},
				"location":       {Type: jsonschema.String, Description: "Where the service takes place, when relevant"},
				"notes":          {Type: jsonschema.String, Description: "Special requests (allergies, preferences...)"},
			},
			Required: []string{"service_name", "customer_phone", "preferred_date"},
		},
		{
			Name:        ToolCheckPaymentStatus,
			Description: "Check the status of an order. Without order_id, looks up the customer's most recent order.",
			Properties: map[string]jsonschema.Definition{
				"order_id": {Type: jsonschema.String, Description: "Order id, full or first 8 characters"},
			},
		},
		{
			Name:        ToolFindOrder,
			Description: "Find the customer's recent orders by phone number.",
			Properties: map[string]jsonschema.Definition{
				"phone_number": {Type: jsonschema.String, Description: "Customer phone number"},
			},
			Required: []string{"phone_number"},
		},
		{
			Name:        ToolSendImage,
			Description: "Send the catalogue photo of a product to the customer.",
			Properties: map[string]jsonschema.Definition{
				"product_name":      {Type: jsonschema.String, Description: "Product name"},
				"selected_variants": variantMap,
			},
			Required: []string{"product_name"},
		},
	}
}
