// Package handlers wires the checkout HTTP surface: payment-intent
// creation, the Stripe webhook, and the shipping-quote preview.
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"

	awsx "github.com/shoplift/checkout-service/internal/aws"
	"github.com/shoplift/checkout-service/internal/config"
	"github.com/shoplift/checkout-service/internal/countries"
	"github.com/shoplift/checkout-service/internal/shop"
)

// DatabaseLoader fetches the full shop database for one request.
type DatabaseLoader interface {
	Load(ctx context.Context) (*shop.Database, error)
}

// IntentCreator creates a payment intent with the provider.
type IntentCreator interface {
	CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*stripe.PaymentIntent, error)
}

// EventVerifier checks a webhook signature and decodes the event.
type EventVerifier interface {
	VerifyEvent(payload []byte, sigHeader string) (stripe.Event, error)
}

// JobPublisher enqueues confirmation jobs for the worker.
type JobPublisher interface {
	SendConfirmationJob(ctx context.Context, messageBody string, attributes map[string]string) error
}

// HandlerConfig groups dependencies for the checkout handlers. Payments and
// Verifier are nil when Stripe is not configured; the payment-intent
// endpoint then validates orders but runs dry, and the webhook rejects
// everything.
type HandlerConfig struct {
	Loader    DatabaseLoader
	Countries *countries.Table
	Payments  IntentCreator
	Verifier  EventVerifier
	Publisher JobPublisher
	Metrics   *awsx.Metrics
	Config    config.Config
	Logger    *zap.Logger
}

// RegisterRoutes registers the checkout routes.
func RegisterRoutes(r *gin.Engine, cfg HandlerConfig) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	r.POST("/paymentintent", paymentIntentHandler(cfg))
	r.POST("/stripewebhook", webhookHandler(cfg))
	r.POST("/shippingquote", quoteHandler(cfg))
}

// genericFailure is the body for any failure the client did not cause.
func genericFailure() gin.H {
	return gin.H{"error": gin.H{"message": "Something went wrong"}}
}
