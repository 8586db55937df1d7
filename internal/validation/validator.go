package validation

import (
	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a configured validator with custom struct-level validation
// registered. Numeric tags don't apply to decimal fields, so sign checks for
// the monetary values live in the struct-level hook.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	v.RegisterStructValidation(paymentIntentStructValidation, PaymentIntentRequest{})

	return v
}

// paymentIntentStructValidation rejects negative monetary values up front;
// everything further (price, stock, totals) is the checkout validator's job.
func paymentIntentStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(PaymentIntentRequest)

	if req.Total.IsNegative() {
		sl.ReportError(req.Total, "total", "Total", "nonnegative", "")
	}
	if req.ShippingCost.IsNegative() {
		sl.ReportError(req.ShippingCost, "shippingCost", "ShippingCost", "nonnegative", "")
	}
	for _, it := range req.Items {
		if it.Price.IsNegative() {
			sl.ReportError(it.Price, "price", "Price", "nonnegative", "")
			return
		}
	}
}
