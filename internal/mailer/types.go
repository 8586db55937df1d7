package mailer

import "github.com/shopspring/decimal"

func init() {
	// Template placeholders and queued jobs carry bare JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// JobItem is one purchased line carried through the confirmation queue.
type JobItem struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// ConfirmationJob is the payload sent from the webhook handler through SQS
// to the worker. EventID is the Stripe event id and doubles as the dedupe
// key.
type ConfirmationJob struct {
	EventID         string          `json:"event_id"`
	OrderNum        string          `json:"order_num"`
	Items           []JobItem       `json:"items"`
	Total           decimal.Decimal `json:"total"`
	ShippingCost    decimal.Decimal `json:"shipping_cost"`
	CurrencyCode    string          `json:"currency_code"`
	ShippingAddress string          `json:"shipping_address"`
	ReceiptEmail    string          `json:"receipt_email,omitempty"`
}

// TemplateData is the SES template payload. Field names match the
// placeholders in the shop's confirmation template.
type TemplateData struct {
	OrderNum             string          `json:"ordernum"`
	ItemsDescription     string          `json:"itemsdescription"`
	Currency             string          `json:"currency"`
	Total                decimal.Decimal `json:"total"`
	ShippingHandlingCost decimal.Decimal `json:"shippinghandlingcost"`
	Taxes                decimal.Decimal `json:"taxes"`
	GrandTotal           decimal.Decimal `json:"grandtotal"`
	ShippingAddress      string          `json:"shippingaddress"`
	ShopName             string          `json:"shopname"`
	ShopURL              string          `json:"shopurl"`
	ShopLegalAddress     string          `json:"shoplegaladdress"`
}
