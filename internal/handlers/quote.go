package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shoplift/checkout-service/internal/shipping"
	"github.com/shoplift/checkout-service/internal/validation"
)

// quoteHandler previews the shipping cost for a cart without running the
// full order check, so storefronts can show the cost before checkout.
func quoteHandler(cfg HandlerConfig) gin.HandlerFunc {
	v := validation.New()
	resolver := shipping.NewResolver(cfg.Countries)

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		log := cfg.Logger

		var req validation.QuoteRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		db, err := cfg.Loader.Load(ctx)
		if err != nil {
			log.Error("failed to load shop database", zap.Error(err))
			c.JSON(http.StatusInternalServerError, genericFailure())
			return
		}

		if db.ShippingRules == nil {
			c.JSON(http.StatusOK, gin.H{"shippingCost": 0})
			return
		}

		cost, err := resolver.Resolve(db.ShippingRules, req.Country, req.Cart(), db.Catalog)
		if err != nil {
			var re *shipping.RestrictionError
			if errors.As(err, &re) {
				c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": re.Reason}})
				return
			}
			log.Error("shipping resolution failed", zap.Error(err), zap.String("country", req.Country))
			c.JSON(http.StatusInternalServerError, genericFailure())
			return
		}

		c.JSON(http.StatusOK, gin.H{"shippingCost": cost})
	}
}
