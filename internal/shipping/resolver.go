// Package shipping resolves shipping costs and restrictions for a cart
// against the shop's layered rule table. Rules can live on the cart line
// itself, on the catalog item, or in the shop-wide rule set, keyed by
// category, country, continent, or a global default.
package shipping

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shoplift/checkout-service/internal/countries"
	"github.com/shoplift/checkout-service/internal/shop"
)

// RestrictionError reports that the destination cannot be shipped to. It is
// the expected rejection path; anything else returned by Resolve indicates a
// data-integrity problem upstream.
type RestrictionError struct {
	Reason string
}

func (e *RestrictionError) Error() string { return e.Reason }

// Resolver computes shipping costs from the rule table and the bundled
// country reference data. It holds no mutable state and is safe for
// concurrent use.
type Resolver struct {
	countries *countries.Table
}

// NewResolver returns a Resolver backed by the given country table.
func NewResolver(table *countries.Table) *Resolver {
	return &Resolver{countries: table}
}

// Resolve computes the total shipping cost for shipping cart to country.
// Each line contributes its resolved per-item cost times quantity; the first
// line that resolves to a restriction fails the whole cart with a
// *RestrictionError carrying the reason.
func (r *Resolver) Resolve(rules *shop.ItemShippingInfo, country string, cart []shop.CartLine, catalog shop.Catalog) (decimal.Decimal, error) {
	continent := r.countries.ContinentOf(country)

	total := decimal.Zero
	for _, line := range cart {
		cost, err := r.resolveLine(rules, line, country, continent, catalog)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(cost.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total, nil
}

// resolveLine returns the per-item cost for one cart line. Line-level rules
// win over the shop-wide rule set; the line is unshippable when neither
// level yields a cost.
func (r *Resolver) resolveLine(rules *shop.ItemShippingInfo, line shop.CartLine, country, continent string, catalog shop.Catalog) (decimal.Decimal, error) {
	info := line.Shipping
	if info == nil {
		info = catalog.ShippingInfo(line.SKU)
	}

	if info != nil {
		// Item-level rules carry no category axis.
		if v, reason := evalRestrictions(info.Restrictions, nil, country, continent, ""); v == verdictReject {
			return decimal.Zero, &RestrictionError{Reason: reason}
		}
		if cost, ok := resolveCost(info.Cost, country, continent, ""); ok {
			return cost, nil
		}
	}

	var category string
	if info != nil {
		category = info.Category
	}
	if category == "" {
		if ci := catalog.ShippingInfo(line.SKU); ci != nil {
			category = ci.Category
		}
	}

	if rules != nil {
		if v, reason := evalRestrictions(rules.Restrictions, rules.Restrictions, country, continent, category); v == verdictReject {
			return decimal.Zero, &RestrictionError{Reason: reason}
		}
		if cost, ok := resolveCost(rules.Cost, country, continent, category); ok {
			return cost, nil
		}
	}

	name, ok := r.countries.Name(country)
	if !ok {
		return decimal.Zero, fmt.Errorf("unknown destination country %q", country)
	}
	return decimal.Zero, &RestrictionError{Reason: fmt.Sprintf("We do not ship to %s", name)}
}

type verdict int

const (
	// verdictNone: no entry matched, keep falling through.
	verdictNone verdict = iota
	// verdictAllow: an explicit allow entry matched, stop evaluating here.
	verdictAllow
	// verdictReject: a rejection matched; the reason accompanies it.
	verdictReject
)

// evalRestrictions walks one restriction node. Precedence: country entry,
// then continent entry, then (once, non-nested) the rule set's category
// sub-node, then the node default. Category sub-rules always come from root,
// the top of the rule set; they are consulted with the category cleared so a
// sub-node's own byCategory is never re-entered.
func evalRestrictions(node, root *shop.Restrictions, country, continent, category string) (verdict, string) {
	if node == nil {
		return verdictNone, ""
	}
	if rule, ok := node.ByCountry[country]; ok {
		if rule.Rejects() {
			return verdictReject, rule.Reason
		}
		return verdictAllow, ""
	}
	if continent != "" {
		if rule, ok := node.ByContinent[continent]; ok {
			if rule.Rejects() {
				return verdictReject, rule.Reason
			}
			return verdictAllow, ""
		}
	}
	if category != "" && root != nil {
		if sub, ok := root.ByCategory[category]; ok && sub != nil {
			if v, reason := evalRestrictions(sub, root, country, continent, ""); v != verdictNone {
				return v, reason
			}
		}
	}
	if node.Default != "" {
		return verdictReject, node.Default
	}
	return verdictNone, ""
}

// resolveCost walks one cost node. A category sub-node is tried first and
// exactly once (category cleared on recursion); if it yields nothing the
// node's own country, continent and default tiers still apply. The boolean
// distinguishes a genuine zero cost from no cost at all.
func resolveCost(node *shop.CostRules, country, continent, category string) (decimal.Decimal, bool) {
	if node == nil {
		return decimal.Decimal{}, false
	}
	if category != "" {
		if sub, ok := node.ByCategory[category]; ok {
			if cost, found := resolveCost(sub, country, continent, ""); found {
				return cost, true
			}
		}
	}
	if cost, ok := node.ByCountry[country]; ok {
		return cost, true
	}
	if continent != "" {
		if cost, ok := node.ByContinent[continent]; ok {
			return cost, true
		}
	}
	if node.Default != nil {
		return *node.Default, true
	}
	return decimal.Decimal{}, false
}
