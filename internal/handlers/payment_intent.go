package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shoplift/checkout-service/internal/checkout"
	"github.com/shoplift/checkout-service/internal/validation"
)

// paymentMetadata is replayed to the worker via the webhook; field names are
// part of the payment provider contract with the confirmation template.
type paymentMetadata struct {
	Total        decimal.Decimal `json:"total"`
	ShippingCost decimal.Decimal `json:"shippingCost"`
	CurrencyCode string          `json:"currencyCode"`
}

func paymentIntentHandler(cfg HandlerConfig) gin.HandlerFunc {
	v := validation.New()
	validator := checkout.NewValidator(cfg.Countries)

	return func(c *gin.Context) {
		ctx := c.Request.Context()

		reqID := c.GetHeader("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		log := cfg.Logger.With(zap.String("request_id", reqID))

		var req validation.PaymentIntentRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			// BindAndValidate already wrote a 400
			return
		}

		db, err := cfg.Loader.Load(ctx)
		if err != nil {
			log.Error("failed to load shop database", zap.Error(err))
			c.JSON(http.StatusInternalServerError, genericFailure())
			return
		}

		order := req.Order()
		if err := validator.Validate(db.Catalog, db.ShippingRules, order); err != nil {
			var ve *checkout.ValidationError
			if errors.As(err, &ve) {
				log.Info("order rejected",
					zap.String("kind", string(ve.Kind)),
					zap.String("sku", ve.SKU),
					zap.String("country", order.Country),
				)
				if merr := cfg.Metrics.CountCheckout(ctx, string(ve.Kind)); merr != nil {
					log.Warn("failed to publish checkout metric", zap.Error(merr))
				}
				c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": ve.Error()}})
				return
			}
			log.Error("order validation failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, genericFailure())
			return
		}
		if merr := cfg.Metrics.CountCheckout(ctx, "accepted"); merr != nil {
			log.Warn("failed to publish checkout metric", zap.Error(merr))
		}

		// Scale to the currency's smallest unit unless the shop settings say
		// amounts already are.
		amount := order.Total.Add(order.ShippingCost)
		if !db.Settings.ZeroDecimal() {
			amount = amount.Mul(decimal.NewFromInt(100))
		}
		amountUnits := amount.Round(0).IntPart()
		currency := db.Settings.CurrencyCode()

		if cfg.Payments == nil {
			log.Warn("payment provider not configured, running dry")
			c.JSON(http.StatusOK, gin.H{
				"error": gin.H{"message": "Payment provider is not configured. Please contact the shop owner."},
			})
			return
		}

		itemsJSON, err := json.Marshal(order.Items)
		if err != nil {
			log.Error("failed to marshal items metadata", zap.Error(err))
			c.JSON(http.StatusInternalServerError, genericFailure())
			return
		}
		paymentJSON, err := json.Marshal(paymentMetadata{
			Total:        order.Total,
			ShippingCost: order.ShippingCost,
			CurrencyCode: currency,
		})
		if err != nil {
			log.Error("failed to marshal payment metadata", zap.Error(err))
			c.JSON(http.StatusInternalServerError, genericFailure())
			return
		}

		intent, err := cfg.Payments.CreateIntent(ctx, amountUnits, currency, map[string]string{
			"itemsJson":   string(itemsJSON),
			"paymentJson": string(paymentJSON),
		})
		if err != nil {
			log.Error("failed to create payment intent", zap.Error(err))
			c.JSON(http.StatusInternalServerError, genericFailure())
			return
		}

		log.Info("payment intent created",
			zap.String("intent_id", intent.ID),
			zap.Int64("amount", amountUnits),
			zap.String("currency", currency),
		)
		c.JSON(http.StatusOK, gin.H{"stripeClientSecret": intent.ClientSecret})
	}
}
