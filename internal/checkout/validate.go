// Package checkout recomputes an order's totals from authoritative catalog
// and shipping data and rejects any order whose client-declared numbers
// disagree. It is a pure function of its inputs: no I/O, no mutation, safe
// to run concurrently for independent orders.
package checkout

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/shoplift/checkout-service/internal/countries"
	"github.com/shoplift/checkout-service/internal/shipping"
	"github.com/shoplift/checkout-service/internal/shop"
)

// Validator checks client-submitted orders against the shop database.
type Validator struct {
	resolver *shipping.Resolver
}

// NewValidator returns a Validator backed by the given country table.
func NewValidator(table *countries.Table) *Validator {
	return &Validator{resolver: shipping.NewResolver(table)}
}

// Validate recomputes the order subtotal and shipping cost and compares them
// to the declared values. All monetary comparisons are exact. It returns a
// *ValidationError for client-caused rejections; any other error indicates
// corrupt upstream data and should be treated as fatal.
func (v *Validator) Validate(catalog shop.Catalog, rules *shop.ItemShippingInfo, order shop.Order) error {
	subtotal := decimal.Zero
	for _, line := range order.Items {
		item, ok := catalog.Find(line.SKU)
		if !ok || !item.Price.Equal(line.Price) || item.CurrentInventory < line.Quantity {
			return &ValidationError{Kind: KindPriceOrStockMismatch, SKU: line.SKU}
		}
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	if !order.Total.Equal(subtotal) {
		return &ValidationError{Kind: KindTotalMismatch}
	}

	if rules == nil {
		if !order.ShippingCost.IsZero() {
			return &ValidationError{Kind: KindShippingCostMismatch}
		}
		return nil
	}

	cost, err := v.resolver.Resolve(rules, order.Country, order.Items, catalog)
	if err != nil {
		var re *shipping.RestrictionError
		if errors.As(err, &re) {
			return &ValidationError{Kind: KindShippingRestricted, Reason: re.Reason}
		}
		return err
	}
	if !order.ShippingCost.Equal(cost) {
		return &ValidationError{Kind: KindShippingCostMismatch}
	}
	return nil
}
