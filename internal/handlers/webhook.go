package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shoplift/checkout-service/internal/mailer"
	"github.com/shoplift/checkout-service/internal/shop"
)

const maxWebhookBody = 1 << 20 // 1 MiB, matches the storefront body limit

// webhookIntent is the slice of the payment_intent.succeeded payload we
// consume. Decoded locally so SDK type churn around the charges list cannot
// break the contract.
type webhookIntent struct {
	ID             string `json:"id"`
	AmountReceived int64  `json:"amount_received"`
	Charges        struct {
		Data []webhookCharge `json:"data"`
	} `json:"charges"`
}

type webhookCharge struct {
	Metadata     map[string]string `json:"metadata"`
	ReceiptEmail string            `json:"receipt_email"`
	Shipping     *webhookShipping  `json:"shipping"`
}

type webhookShipping struct {
	Name    string `json:"name"`
	Address struct {
		Line1      string `json:"line1"`
		Line2      string `json:"line2"`
		City       string `json:"city"`
		State      string `json:"state"`
		PostalCode string `json:"postal_code"`
		Country    string `json:"country"`
	} `json:"address"`
}

func webhookHandler(cfg HandlerConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		log := cfg.Logger

		if cfg.Verifier == nil {
			log.Warn("webhook received but payment provider not configured")
			c.JSON(http.StatusInternalServerError, genericFailure())
			return
		}

		payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
		if err != nil {
			log.Error("failed to read webhook body", zap.Error(err))
			c.JSON(http.StatusInternalServerError, genericFailure())
			return
		}

		event, err := cfg.Verifier.VerifyEvent(payload, c.GetHeader("Stripe-Signature"))
		if err != nil {
			log.Warn("webhook signature verification failed", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "invalid webhook signature"}})
			return
		}

		if event.Type != "payment_intent.succeeded" {
			log.Debug("ignoring webhook event", zap.String("type", string(event.Type)))
			c.Status(http.StatusOK)
			return
		}

		var intent webhookIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			log.Error("failed to decode payment intent event", zap.Error(err))
			c.JSON(http.StatusInternalServerError, genericFailure())
			return
		}
		if len(intent.Charges.Data) == 0 {
			log.Error("payment intent event carries no charge", zap.String("intent_id", intent.ID))
			c.JSON(http.StatusInternalServerError, genericFailure())
			return
		}
		charge := intent.Charges.Data[0]

		job, err := buildConfirmationJob(event.ID, intent.ID, charge)
		if err != nil {
			log.Error("failed to build confirmation job", zap.Error(err))
			c.JSON(http.StatusInternalServerError, genericFailure())
			return
		}

		body, err := json.Marshal(job)
		if err != nil {
			log.Error("failed to marshal confirmation job", zap.Error(err))
			c.JSON(http.StatusInternalServerError, genericFailure())
			return
		}

		// Stripe deliveries carry no X-Request-Id; mint one so the attribute
		// is never empty (SQS rejects empty attribute values).
		corrID := c.GetHeader("X-Request-Id")
		if corrID == "" {
			corrID = uuid.NewString()
		}
		attrs := map[string]string{
			"event_id":       event.ID,
			"order_id":       intent.ID,
			"correlation_id": corrID,
		}
		if err := cfg.Publisher.SendConfirmationJob(ctx, string(body), attrs); err != nil {
			// Fail the delivery so Stripe retries it.
			log.Error("failed to enqueue confirmation job", zap.Error(err))
			c.JSON(http.StatusInternalServerError, genericFailure())
			return
		}

		log.Info("confirmation job enqueued",
			zap.String("event_id", event.ID),
			zap.String("intent_id", intent.ID),
			zap.Int64("amount_received", intent.AmountReceived),
		)
		c.Status(http.StatusOK)
	}
}

// buildConfirmationJob replays the cart and payment metadata attached to the
// charge into the worker's queue payload.
func buildConfirmationJob(eventID, intentID string, charge webhookCharge) (mailer.ConfirmationJob, error) {
	var lines []shop.CartLine
	if err := json.Unmarshal([]byte(charge.Metadata["itemsJson"]), &lines); err != nil {
		return mailer.ConfirmationJob{}, fmt.Errorf("decode items metadata: %w", err)
	}
	var payment paymentMetadata
	if err := json.Unmarshal([]byte(charge.Metadata["paymentJson"]), &payment); err != nil {
		return mailer.ConfirmationJob{}, fmt.Errorf("decode payment metadata: %w", err)
	}

	items := make([]mailer.JobItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, mailer.JobItem{SKU: l.SKU, Quantity: l.Quantity})
	}

	return mailer.ConfirmationJob{
		EventID:         eventID,
		OrderNum:        intentID,
		Items:           items,
		Total:           payment.Total,
		ShippingCost:    payment.ShippingCost,
		CurrencyCode:    payment.CurrencyCode,
		ShippingAddress: formatShippingAddress(charge.Shipping),
		ReceiptEmail:    charge.ReceiptEmail,
	}, nil
}

func formatShippingAddress(s *webhookShipping) string {
	if s == nil {
		return ""
	}
	a := s.Address
	parts := []string{
		a.Line1,
		a.Line2,
		strings.TrimSpace(fmt.Sprintf("%s %s %s", a.City, a.State, a.PostalCode)),
		a.Country,
	}
	nonEmpty := parts[:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, "\n")
}
