// Package mailer sends templated order-confirmation email through SES.
package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"

	awsx "github.com/shoplift/checkout-service/internal/aws"
)

// Mailer sends order confirmations with a fixed sender and SES template.
type Mailer struct {
	client   awsx.SESAPI
	from     string
	template string
}

// New returns a Mailer bound to a sender address and template name.
func New(client awsx.SESAPI, from, template string) *Mailer {
	return &Mailer{client: client, from: from, template: template}
}

// SendOrderConfirmation renders the template with data and sends it to a
// single recipient.
func (m *Mailer) SendOrderConfirmation(ctx context.Context, to string, data TemplateData) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal template data: %w", err)
	}

	templateData := string(payload)
	_, err = m.client.SendTemplatedEmail(ctx, &ses.SendTemplatedEmailInput{
		Destination:  &sestypes.Destination{ToAddresses: []string{to}},
		Source:       &m.from,
		Template:     &m.template,
		TemplateData: &templateData,
	})
	if err != nil {
		return fmt.Errorf("send templated email: %w", err)
	}
	return nil
}

// ItemsDescription renders the job items as a short human-readable list,
// e.g. "2x TSHIRT-M, MUG-BLUE".
func ItemsDescription(items []JobItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		if it.Quantity > 1 {
			parts = append(parts, fmt.Sprintf("%dx %s", it.Quantity, it.SKU))
		} else {
			parts = append(parts, it.SKU)
		}
	}
	return strings.Join(parts, ", ")
}
