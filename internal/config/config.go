// Package config provides runtime configuration values for the service.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/shoplift/checkout-service/internal/shop"
)

// Config holds every environment-driven knob for the API and the worker.
type Config struct {
	CORSOrigins []string

	DatabaseBucket string
	Archives       shop.ArchiveNames

	StripeSecretKey     string
	StripeSigningSecret string

	QueueURL    string
	EventsTable string
	EventTTL    time.Duration

	FromEmail        string
	ShopEmail        string
	SESTemplateName  string
	SendConfirmation string

	ShopName         string
	ShopURL          string
	ShopLegalAddress string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Load collects configuration from environment with defaults.
func Load() Config {
	return Config{
		CORSOrigins:    splitOrigins(os.Getenv("CORS_ORIGINS")),
		DatabaseBucket: os.Getenv("SHOP_DATABASE_BUCKET_NAME"),
		Archives: shop.ArchiveNames{
			Inventory:     os.Getenv("INVENTORY_ARCHIVE_FILE_NAME"),
			ShippingRules: os.Getenv("SHIPPING_RULES_ARCHIVE_FILE_NAME"),
			Settings:      os.Getenv("SHOP_SETTINGS_ARCHIVE_FILE_NAME"),
		},
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeSigningSecret: os.Getenv("STRIPE_SIGNING_SECRET"),
		QueueURL:            os.Getenv("CONFIRMATIONS_QUEUE_URL"),
		EventsTable:         getenv("PROCESSED_EVENTS_TABLE", "processed-webhook-events"),
		EventTTL:            48 * time.Hour,
		FromEmail:           os.Getenv("FROM_EMAIL"),
		ShopEmail:           os.Getenv("SHOP_EMAIL"),
		SESTemplateName:     os.Getenv("SES_TEMPLATE_NAME"),
		SendConfirmation:    os.Getenv("SEND_ORDER_CONFIRMATION_EMAIL"),
		ShopName:            os.Getenv("SHOP_NAME"),
		ShopURL:             os.Getenv("SHOP_URL"),
		ShopLegalAddress:    os.Getenv("SHOP_LEGAL_ADDRESS"),
	}
}

func splitOrigins(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

// StripeConfigured reports whether both Stripe secrets are present; without
// them the payment-intent endpoint validates orders but runs dry.
func (c Config) StripeConfigured() bool {
	return c.StripeSecretKey != "" && c.StripeSigningSecret != ""
}

// SendToShop reports whether confirmations go to the shop's own inbox.
func (c Config) SendToShop() bool {
	return strings.Contains(c.SendConfirmation, "to the shop")
}

// SendToBuyer reports whether confirmations go to the buyer.
func (c Config) SendToBuyer() bool {
	return strings.Contains(c.SendConfirmation, "to the buyer")
}
