package validation

import (
	"github.com/shopspring/decimal"

	"github.com/shoplift/checkout-service/internal/shop"
)

// ItemPayload is a single cart line as submitted by the storefront.
type ItemPayload struct {
	SKU      string                 `json:"sku" validate:"required"`            // stock keeping unit
	Price    decimal.Decimal        `json:"price"`                              // declared price per unit
	Quantity int                    `json:"quantity" validate:"required,min=1"` // must be >= 1
	Shipping *shop.ItemShippingInfo `json:"shipping,omitempty"`                 // optional line-level rules
}

// PaymentIntentRequest is the payload for POST /paymentintent.
type PaymentIntentRequest struct {
	Items        []ItemPayload   `json:"items" validate:"required,min=1,dive"` // at least one item
	Country      string          `json:"country" validate:"required,len=2"`    // ISO 3166-1 alpha-2
	Total        decimal.Decimal `json:"total"`                                // declared cart subtotal
	ShippingCost decimal.Decimal `json:"shippingCost"`                         // declared shipping cost
}

// Order converts the request into the domain order handed to the validator.
func (r PaymentIntentRequest) Order() shop.Order {
	return shop.Order{
		Items:        toCartLines(r.Items),
		Country:      r.Country,
		Total:        r.Total,
		ShippingCost: r.ShippingCost,
	}
}

// QuoteRequest is the payload for POST /shippingquote.
type QuoteRequest struct {
	Items   []ItemPayload `json:"items" validate:"required,min=1,dive"`
	Country string        `json:"country" validate:"required,len=2"`
}

// Cart converts the request items into domain cart lines.
func (r QuoteRequest) Cart() []shop.CartLine {
	return toCartLines(r.Items)
}

func toCartLines(items []ItemPayload) []shop.CartLine {
	lines := make([]shop.CartLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, shop.CartLine{
			SKU:      it.SKU,
			Price:    it.Price,
			Quantity: it.Quantity,
			Shipping: it.Shipping,
		})
	}
	return lines
}
