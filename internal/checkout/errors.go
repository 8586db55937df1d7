package checkout

// Kind classifies a validation failure. Every kind is a terminal client
// rejection; none is retryable.
type Kind string

const (
	KindPriceOrStockMismatch Kind = "PRICE_OR_STOCK_MISMATCH"
	KindTotalMismatch        Kind = "TOTAL_MISMATCH"
	KindShippingRestricted   Kind = "SHIPPING_RESTRICTED"
	KindShippingCostMismatch Kind = "SHIPPING_COST_MISMATCH"
)

// ValidationError is the single error type for order rejections. SKU is set
// for per-line failures, Reason for shipping restrictions.
type ValidationError struct {
	Kind   Kind
	SKU    string
	Reason string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case KindPriceOrStockMismatch:
		return "Incorrect price value or low inventory"
	case KindTotalMismatch:
		return "Incorrect total"
	case KindShippingRestricted:
		return e.Reason
	case KindShippingCostMismatch:
		return "Incorrect shipping cost"
	}
	return string(e.Kind)
}
