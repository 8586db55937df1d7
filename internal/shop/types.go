package shop

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

func init() {
	// The storefront wire contract carries money as bare JSON numbers, not
	// quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// CatalogItem is one authoritative inventory record. The upstream database
// stores the SKU under "name".
type CatalogItem struct {
	SKU              string            `json:"name"`
	Price            decimal.Decimal   `json:"price"`
	CurrentInventory int               `json:"currentInventory"`
	Shipping         *ItemShippingInfo `json:"shipping,omitempty"`
}

// Catalog is the full inventory snapshot loaded for a single request.
type Catalog []CatalogItem

// Find returns the catalog item for sku, if any.
func (c Catalog) Find(sku string) (*CatalogItem, bool) {
	for i := range c {
		if c[i].SKU == sku {
			return &c[i], true
		}
	}
	return nil, false
}

// ShippingInfo returns the shipping info attached to the catalog item for
// sku, or nil when the item is unknown or carries none.
func (c Catalog) ShippingInfo(sku string) *ItemShippingInfo {
	item, ok := c.Find(sku)
	if !ok {
		return nil
	}
	return item.Shipping
}

// CartLine is one client-declared line of the order under validation.
type CartLine struct {
	SKU      string            `json:"sku"`
	Price    decimal.Decimal   `json:"price"`
	Quantity int               `json:"quantity"`
	Shipping *ItemShippingInfo `json:"shipping,omitempty"`
}

// Order is the client-submitted checkout payload.
type Order struct {
	Items        []CartLine      `json:"items"`
	Country      string          `json:"country"`
	Total        decimal.Decimal `json:"total"`
	ShippingCost decimal.Decimal `json:"shippingCost"`
}

// ItemShippingInfo carries shipping configuration. The same shape appears at
// three levels: attached to a cart line, attached to a catalog item, and as
// the root of the shop-wide rule set.
type ItemShippingInfo struct {
	Category     string        `json:"category,omitempty"`
	Cost         *CostRules    `json:"cost,omitempty"`
	Restrictions *Restrictions `json:"restrictions,omitempty"`
}

// CostRules is one node of the layered shipping-cost table. Category
// sub-rules nest recursively; country and continent entries are scalar
// amounts. A nil Default means no amount is defined at this node, while an
// explicit zero is a valid free-shipping amount.
type CostRules struct {
	ByCategory  map[string]*CostRules      `json:"byCategory,omitempty"`
	ByCountry   map[string]decimal.Decimal `json:"byCountry,omitempty"`
	ByContinent map[string]decimal.Decimal `json:"byContinent,omitempty"`
	Default     *decimal.Decimal           `json:"default,omitempty"`
}

// Restrictions is one node of the layered shipping-restriction table.
type Restrictions struct {
	ByCategory  map[string]*Restrictions `json:"byCategory,omitempty"`
	ByCountry   map[string]Rule          `json:"byCountry,omitempty"`
	ByContinent map[string]Rule          `json:"byContinent,omitempty"`
	Default     string                   `json:"default,omitempty"`
}

// Rule is a single restriction entry. Three states matter and two of them
// live in the enclosing map: an absent key falls through to the next tier,
// a present entry with a non-empty Reason rejects shipping, and any other
// present value (null, empty string, object) is an explicit allow that stops
// the fallback chain at its node.
type Rule struct {
	Reason string
}

// Rejects reports whether the entry carries a rejection reason.
func (r Rule) Rejects() bool { return r.Reason != "" }

// UnmarshalJSON accepts the upstream database's mixed encoding: a string is
// a rejection reason, everything else collapses to an explicit allow.
func (r *Rule) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.Reason = s
		return nil
	}
	r.Reason = ""
	return nil
}

// MarshalJSON writes the reason string, or null for an explicit allow.
func (r Rule) MarshalJSON() ([]byte, error) {
	if r.Reason == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.Reason)
}

// Currency identifies the shop currency by its ISO 4217 code.
type Currency struct {
	Code string `json:"code"`
}

// Settings holds shop-wide configuration loaded alongside the catalog.
type Settings struct {
	IsZeroDecimal bool      `json:"isZeroDecimal"`
	Currency      *Currency `json:"currency,omitempty"`
}

// CurrencyCode returns the configured currency code, defaulting to EUR.
func (s *Settings) CurrencyCode() string {
	if s != nil && s.Currency != nil && s.Currency.Code != "" {
		return s.Currency.Code
	}
	return "EUR"
}

// ZeroDecimal reports whether amounts are already in the currency's
// smallest unit and must not be scaled before payment-intent creation.
func (s *Settings) ZeroDecimal() bool {
	return s != nil && s.IsZeroDecimal
}

// Database is the fully materialized shop state for one request.
type Database struct {
	Catalog       Catalog
	ShippingRules *ItemShippingInfo
	Settings      *Settings
}
