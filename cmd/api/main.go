package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	awsx "github.com/shoplift/checkout-service/internal/aws"
	"github.com/shoplift/checkout-service/internal/config"
	"github.com/shoplift/checkout-service/internal/countries"
	"github.com/shoplift/checkout-service/internal/handlers"
	"github.com/shoplift/checkout-service/internal/payments"
	"github.com/shoplift/checkout-service/internal/shop"
)

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

func setupRouter(cfg handlers.HandlerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Logger != nil {
		r.Use(requestLogger(cfg.Logger))
	}

	if len(cfg.Config.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: cfg.Config.CORSOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{"Content-Type", "Stripe-Signature", "X-Request-Id"},
		}))
	}

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterRoutes(r, cfg)

	return r
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	clients, err := awsx.NewAWSClients(context.Background())
	if err != nil {
		logger.Fatal("failed to init aws clients", zap.Error(err))
	}

	conf := config.Load()

	table, err := countries.Load()
	if err != nil {
		logger.Fatal("failed to load country table", zap.Error(err))
	}

	cfg := handlers.HandlerConfig{
		Loader:    shop.NewLoader(clients.S3, conf.DatabaseBucket, conf.Archives, logger),
		Countries: table,
		Publisher: awsx.NewPublisher(clients.SQS, conf.QueueURL),
		Metrics:   awsx.NewMetrics(clients.CloudWatch, "CheckoutService"),
		Config:    conf,
		Logger:    logger,
	}
	if conf.StripeConfigured() {
		pc := payments.New(conf.StripeSecretKey, conf.StripeSigningSecret)
		cfg.Payments = pc
		cfg.Verifier = pc
	} else {
		logger.Warn("STRIPE_SECRET_KEY or STRIPE_SIGNING_SECRET not set, running dry")
	}

	r := setupRouter(cfg)

	// if environment variable RUN_LOCAL is set to "true", run local HTTP server for development.
	if os.Getenv("RUN_LOCAL") == "true" {
		addr := ":8080"
		logger.Info("running local server", zap.String("addr", addr))
		if err := r.Run(addr); err != nil {
			logger.Fatal("failed to run local server", zap.Error(err))
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
