package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	awsx "github.com/shoplift/checkout-service/internal/aws"
	"github.com/shoplift/checkout-service/internal/config"
	"github.com/shoplift/checkout-service/internal/idempotency"
	"github.com/shoplift/checkout-service/internal/mailer"
)

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

	p := NewProcessor(
		idempotency.NewStore(clients.DynamoDB, conf.EventsTable, conf.EventTTL),
		mailer.New(clients.SES, conf.FromEmail, conf.SESTemplateName),
		conf,
		logger,
	)

	lambda.Start(p.Handle)
}
