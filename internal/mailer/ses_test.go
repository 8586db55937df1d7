package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/shopspring/decimal"
)

type mockSES struct {
	input *ses.SendTemplatedEmailInput
	err   error
}

func (m *mockSES) SendTemplatedEmail(ctx context.Context, input *ses.SendTemplatedEmailInput, optFns ...func(*ses.Options)) (*ses.SendTemplatedEmailOutput, error) {
	m.input = input
	if m.err != nil {
		return nil, m.err
	}
	return &ses.SendTemplatedEmailOutput{}, nil
}

func TestSendOrderConfirmation(t *testing.T) {
	mock := &mockSES{}
	m := New(mock, "shop@example.com", "order-confirmation")

	data := TemplateData{
		OrderNum:             "pi_123",
		ItemsDescription:     "2x TSHIRT-M, MUG-BLUE",
		Currency:             "EUR",
		Total:                decimal.NewFromInt(20),
		ShippingHandlingCost: decimal.NewFromInt(10),
		Taxes:                decimal.Zero,
		GrandTotal:           decimal.NewFromInt(30),
		ShippingAddress:      "1 Main St\nSpringfield IL 62701\nUS",
		ShopName:             "Example Shop",
	}
	if err := m.SendOrderConfirmation(context.Background(), "buyer@example.com", data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if mock.input == nil {
		t.Fatal("expected SendTemplatedEmail to be called")
	}
	if *mock.input.Source != "shop@example.com" {
		t.Fatalf("unexpected source: %s", *mock.input.Source)
	}
	if *mock.input.Template != "order-confirmation" {
		t.Fatalf("unexpected template: %s", *mock.input.Template)
	}
	if got := mock.input.Destination.ToAddresses; len(got) != 1 || got[0] != "buyer@example.com" {
		t.Fatalf("unexpected destination: %v", got)
	}

	// The template consumes lowercase keys with bare numeric amounts.
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal([]byte(*mock.input.TemplateData), &decoded); err != nil {
		t.Fatalf("decode template data: %v", err)
	}
	for _, key := range []string{"ordernum", "itemsdescription", "currency", "total", "shippinghandlingcost", "taxes", "grandtotal", "shippingaddress"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("missing template key %q in %s", key, *mock.input.TemplateData)
		}
	}
	if string(decoded["grandtotal"]) != "30" {
		t.Fatalf("expected bare numeric grandtotal, got %s", decoded["grandtotal"])
	}
}

func TestSendOrderConfirmation_Error(t *testing.T) {
	mock := &mockSES{err: errors.New("address not verified")}
	m := New(mock, "shop@example.com", "order-confirmation")

	if err := m.SendOrderConfirmation(context.Background(), "buyer@example.com", TemplateData{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestItemsDescription(t *testing.T) {
	items := []JobItem{
		{SKU: "TSHIRT-M", Quantity: 2},
		{SKU: "MUG-BLUE", Quantity: 1},
	}
	if got := ItemsDescription(items); got != "2x TSHIRT-M, MUG-BLUE" {
		t.Fatalf("unexpected description: %q", got)
	}
	if got := ItemsDescription(nil); got != "" {
		t.Fatalf("expected empty description, got %q", got)
	}
}
