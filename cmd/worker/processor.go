package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shoplift/checkout-service/internal/config"
	"github.com/shoplift/checkout-service/internal/idempotency"
	"github.com/shoplift/checkout-service/internal/mailer"
)

// Processor consumes confirmation jobs from SQS and sends the templated
// order-confirmation email, deduplicating on the Stripe event id.
type Processor struct {
	events *idempotency.Store
	mail   *mailer.Mailer
	conf   config.Config
	logger *zap.Logger
}

// NewProcessor returns a Processor with its collaborators injected.
func NewProcessor(store *idempotency.Store, mail *mailer.Mailer, conf config.Config, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		events: store,
		mail:   mail,
		conf:   conf,
		logger: logger,
	}
}

// Handle receives an SQS batch event and processes each message.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) error {
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			// Return error: Lambda will retry. If failed too many times, the
			// message goes to the DLQ.
			p.logger.Error("worker error", zap.Error(err))
			return err
		}
	}
	return nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var job mailer.ConfirmationJob
	if err := json.Unmarshal([]byte(rec.Body), &job); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}

	log := p.logger.With(
		zap.String("event_id", job.EventID),
		zap.String("order_num", job.OrderNum),
	)

	claimed, err := p.events.CreateIfNotExists(ctx, job.EventID)
	if err != nil {
		return fmt.Errorf("claim event: %w", err)
	}
	if !claimed {
		existing, err := p.events.Get(ctx, job.EventID)
		if err != nil {
			return fmt.Errorf("inspect event record: %w", err)
		}
		if existing != nil && existing.Status != idempotency.StatusFailed {
			// Duplicate delivery or a competing worker; swallow it.
			log.Info("event already handled, skipping", zap.String("status", existing.Status))
			return nil
		}
		// Previous attempt failed; retry the send below.
	}

	data := mailer.TemplateData{
		OrderNum:             job.OrderNum,
		ItemsDescription:     mailer.ItemsDescription(job.Items),
		Currency:             job.CurrencyCode,
		Total:                job.Total,
		ShippingHandlingCost: job.ShippingCost,
		Taxes:                decimal.Zero,
		GrandTotal:           job.Total.Add(job.ShippingCost),
		ShippingAddress:      job.ShippingAddress,
		ShopName:             p.conf.ShopName,
		ShopURL:              p.conf.ShopURL,
		ShopLegalAddress:     p.conf.ShopLegalAddress,
	}

	if p.conf.SendToShop() && p.conf.ShopEmail != "" {
		if err := p.mail.SendOrderConfirmation(ctx, p.conf.ShopEmail, data); err != nil {
			_ = p.events.MarkFailed(ctx, job.EventID, fmt.Sprintf("shop email: %v", err))
			return fmt.Errorf("send shop confirmation: %w", err)
		}
	}
	if p.conf.SendToBuyer() && job.ReceiptEmail != "" {
		if err := p.mail.SendOrderConfirmation(ctx, job.ReceiptEmail, data); err != nil {
			_ = p.events.MarkFailed(ctx, job.EventID, fmt.Sprintf("buyer email: %v", err))
			return fmt.Errorf("send buyer confirmation: %w", err)
		}
	}

	if err := p.events.MarkDone(ctx, job.EventID); err != nil {
		return fmt.Errorf("mark event done: %w", err)
	}
	log.Info("confirmation processed")
	return nil
}
