// Package payments wraps the Stripe API for payment-intent creation and
// webhook signature verification.
package payments

import (
	"context"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
)

// Client is a thin wrapper over the Stripe SDK so handlers depend on two
// methods instead of the whole API surface.
type Client struct {
	api           *client.API
	signingSecret string
}

// New returns a Client authenticated with secretKey. signingSecret is used
// for webhook verification only.
func New(secretKey, signingSecret string) *Client {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Client{api: api, signingSecret: signingSecret}
}

// CreateIntent creates a payment intent. amount is in the currency's
// smallest unit (already scaled by the caller according to shop settings).
func (c *Client) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	return c.api.PaymentIntents.New(params)
}

// VerifyEvent checks the webhook signature and decodes the event. The raw
// body must be passed untouched; re-serialized JSON breaks the signature.
func (c *Client) VerifyEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, c.signingSecret)
}
