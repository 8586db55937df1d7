package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"

	"github.com/shoplift/checkout-service/internal/countries"
	"github.com/shoplift/checkout-service/internal/mailer"
	"github.com/shoplift/checkout-service/internal/shop"
)

// --- fakes ---

type fakeLoader struct {
	db  *shop.Database
	err error
}

func (f *fakeLoader) Load(ctx context.Context) (*shop.Database, error) { return f.db, f.err }

type fakePayments struct {
	gotAmount   int64
	gotCurrency string
	gotMetadata map[string]string
	err         error
}

func (f *fakePayments) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*stripe.PaymentIntent, error) {
	f.gotAmount = amount
	f.gotCurrency = currency
	f.gotMetadata = metadata
	if f.err != nil {
		return nil, f.err
	}
	return &stripe.PaymentIntent{ID: "pi_123", ClientSecret: "cs_test_secret"}, nil
}

type fakeVerifier struct {
	event stripe.Event
	err   error
}

func (f *fakeVerifier) VerifyEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	return f.event, f.err
}

type fakePublisher struct {
	bodies []string
	attrs  []map[string]string
	err    error
}

func (f *fakePublisher) SendConfirmationJob(ctx context.Context, messageBody string, attributes map[string]string) error {
	if f.err != nil {
		return f.err
	}
	f.bodies = append(f.bodies, messageBody)
	f.attrs = append(f.attrs, attributes)
	return nil
}

func dec(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}

func testDatabase() *shop.Database {
	return &shop.Database{
		Catalog: shop.Catalog{
			{SKU: "A", Price: dec("10"), CurrentInventory: 5},
		},
		ShippingRules: &shop.ItemShippingInfo{
			Cost: &shop.CostRules{
				ByCountry: map[string]decimal.Decimal{"US": dec("5")},
				Default:   decPtr("10"),
			},
			Restrictions: &shop.Restrictions{
				ByCountry: map[string]shop.Rule{"CU": {Reason: "Embargoed"}},
			},
		},
		Settings: &shop.Settings{Currency: &shop.Currency{Code: "USD"}},
	}
}

func newTestRouter(t *testing.T, cfg HandlerConfig) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if cfg.Countries == nil {
		table, err := countries.Load()
		if err != nil {
			t.Fatalf("load countries: %v", err)
		}
		cfg.Countries = table
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	r := gin.New()
	RegisterRoutes(r, cfg)
	return r
}

func doJSON(r *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// --- payment intent ---

func TestPaymentIntent_Success(t *testing.T) {
	payments := &fakePayments{}
	r := newTestRouter(t, HandlerConfig{
		Loader:   &fakeLoader{db: testDatabase()},
		Payments: payments,
	})

	body := `{"items":[{"sku":"A","price":10,"quantity":2}],"country":"US","total":20,"shippingCost":10}`
	w := doJSON(r, http.MethodPost, "/paymentintent", body, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "cs_test_secret") {
		t.Fatalf("expected client secret in response, got %s", w.Body.String())
	}
	// (20 + 10) scaled to cents
	if payments.gotAmount != 3000 {
		t.Fatalf("expected amount 3000, got %d", payments.gotAmount)
	}
	if payments.gotCurrency != "USD" {
		t.Fatalf("expected USD, got %s", payments.gotCurrency)
	}
	if payments.gotMetadata["itemsJson"] == "" || payments.gotMetadata["paymentJson"] == "" {
		t.Fatalf("expected items/payment metadata, got %v", payments.gotMetadata)
	}
}

func TestPaymentIntent_ZeroDecimalCurrencyIsNotScaled(t *testing.T) {
	db := testDatabase()
	db.Settings = &shop.Settings{IsZeroDecimal: true, Currency: &shop.Currency{Code: "JPY"}}
	payments := &fakePayments{}
	r := newTestRouter(t, HandlerConfig{
		Loader:   &fakeLoader{db: db},
		Payments: payments,
	})

	body := `{"items":[{"sku":"A","price":10,"quantity":2}],"country":"US","total":20,"shippingCost":10}`
	w := doJSON(r, http.MethodPost, "/paymentintent", body, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if payments.gotAmount != 30 {
		t.Fatalf("expected amount 30, got %d", payments.gotAmount)
	}
}

func TestPaymentIntent_DryRunWithoutProvider(t *testing.T) {
	r := newTestRouter(t, HandlerConfig{
		Loader: &fakeLoader{db: testDatabase()},
	})

	body := `{"items":[{"sku":"A","price":10,"quantity":2}],"country":"US","total":20,"shippingCost":10}`
	w := doJSON(r, http.MethodPost, "/paymentintent", body, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Payment provider is not configured") {
		t.Fatalf("expected dry-run message, got %s", w.Body.String())
	}
}

func TestPaymentIntent_TamperedTotalRejected(t *testing.T) {
	payments := &fakePayments{}
	r := newTestRouter(t, HandlerConfig{
		Loader:   &fakeLoader{db: testDatabase()},
		Payments: payments,
	})

	body := `{"items":[{"sku":"A","price":10,"quantity":2}],"country":"US","total":19,"shippingCost":10}`
	w := doJSON(r, http.MethodPost, "/paymentintent", body, nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Incorrect total") {
		t.Fatalf("expected rejection message, got %s", w.Body.String())
	}
	if payments.gotMetadata != nil {
		t.Fatal("payment intent must not be created for a rejected order")
	}
}

func TestPaymentIntent_RestrictedDestination(t *testing.T) {
	r := newTestRouter(t, HandlerConfig{
		Loader:   &fakeLoader{db: testDatabase()},
		Payments: &fakePayments{},
	})

	body := `{"items":[{"sku":"A","price":10,"quantity":1}],"country":"CU","total":10,"shippingCost":5}`
	w := doJSON(r, http.MethodPost, "/paymentintent", body, nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Embargoed") {
		t.Fatalf("expected restriction reason, got %s", w.Body.String())
	}
}

func TestPaymentIntent_LoaderFailureIsGeneric(t *testing.T) {
	r := newTestRouter(t, HandlerConfig{
		Loader:   &fakeLoader{err: errors.New("bucket unavailable")},
		Payments: &fakePayments{},
	})

	body := `{"items":[{"sku":"A","price":10,"quantity":2}],"country":"US","total":20,"shippingCost":10}`
	w := doJSON(r, http.MethodPost, "/paymentintent", body, nil)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Something went wrong") {
		t.Fatalf("expected generic failure, got %s", w.Body.String())
	}
	if strings.Contains(w.Body.String(), "bucket unavailable") {
		t.Fatal("internal error details must not leak to the client")
	}
}

func TestPaymentIntent_MalformedBody(t *testing.T) {
	r := newTestRouter(t, HandlerConfig{
		Loader: &fakeLoader{db: testDatabase()},
	})

	w := doJSON(r, http.MethodPost, "/paymentintent", `{"items": []}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

// --- webhook ---

func succeededEvent(t *testing.T, items, payment string) stripe.Event {
	t.Helper()
	intent := map[string]interface{}{
		"id":              "pi_123",
		"amount_received": 3000,
		"charges": map[string]interface{}{
			"data": []map[string]interface{}{
				{
					"metadata": map[string]string{
						"itemsJson":   items,
						"paymentJson": payment,
					},
					"receipt_email": "buyer@example.com",
					"shipping": map[string]interface{}{
						"address": map[string]string{
							"line1":       "1 Main St",
							"city":        "Springfield",
							"state":       "IL",
							"postal_code": "62701",
							"country":     "US",
						},
					},
				},
			},
		},
	}
	raw, err := json.Marshal(intent)
	if err != nil {
		t.Fatalf("marshal intent: %v", err)
	}
	return stripe.Event{
		ID:   "evt_1",
		Type: "payment_intent.succeeded",
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestWebhook_EnqueuesConfirmationJob(t *testing.T) {
	publisher := &fakePublisher{}
	event := succeededEvent(t,
		`[{"sku":"A","price":10,"quantity":2}]`,
		`{"total":20,"shippingCost":10,"currencyCode":"USD"}`,
	)
	r := newTestRouter(t, HandlerConfig{
		Loader:    &fakeLoader{db: testDatabase()},
		Verifier:  &fakeVerifier{event: event},
		Publisher: publisher,
	})

	w := doJSON(r, http.MethodPost, "/stripewebhook", `{}`, map[string]string{"Stripe-Signature": "sig"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(publisher.bodies) != 1 {
		t.Fatalf("expected 1 enqueued job, got %d", len(publisher.bodies))
	}

	var job mailer.ConfirmationJob
	if err := json.Unmarshal([]byte(publisher.bodies[0]), &job); err != nil {
		t.Fatalf("decode job: %v", err)
	}
	if job.EventID != "evt_1" || job.OrderNum != "pi_123" {
		t.Fatalf("unexpected job ids: %+v", job)
	}
	if len(job.Items) != 1 || job.Items[0].SKU != "A" || job.Items[0].Quantity != 2 {
		t.Fatalf("unexpected job items: %+v", job.Items)
	}
	if job.CurrencyCode != "USD" || job.Total.String() != "20" {
		t.Fatalf("unexpected job payment: %+v", job)
	}
	if !strings.Contains(job.ShippingAddress, "Springfield IL 62701") {
		t.Fatalf("unexpected address: %q", job.ShippingAddress)
	}
	if job.ReceiptEmail != "buyer@example.com" {
		t.Fatalf("unexpected receipt email: %q", job.ReceiptEmail)
	}

	// Stripe sends no X-Request-Id; the handler must still produce a
	// non-empty correlation id for the queue attributes.
	attrs := publisher.attrs[0]
	if attrs["event_id"] != "evt_1" || attrs["order_id"] != "pi_123" {
		t.Fatalf("unexpected attributes: %v", attrs)
	}
	if attrs["correlation_id"] == "" {
		t.Fatal("expected a generated correlation id")
	}
}

func TestWebhook_IgnoresOtherEventTypes(t *testing.T) {
	publisher := &fakePublisher{}
	r := newTestRouter(t, HandlerConfig{
		Loader:    &fakeLoader{db: testDatabase()},
		Verifier:  &fakeVerifier{event: stripe.Event{ID: "evt_2", Type: "charge.refunded", Data: &stripe.EventData{Raw: []byte(`{}`)}}},
		Publisher: publisher,
	})

	w := doJSON(r, http.MethodPost, "/stripewebhook", `{}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(publisher.bodies) != 0 {
		t.Fatalf("expected no jobs, got %d", len(publisher.bodies))
	}
}

func TestWebhook_BadSignature(t *testing.T) {
	r := newTestRouter(t, HandlerConfig{
		Loader:    &fakeLoader{db: testDatabase()},
		Verifier:  &fakeVerifier{err: errors.New("signature mismatch")},
		Publisher: &fakePublisher{},
	})

	w := doJSON(r, http.MethodPost, "/stripewebhook", `{}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

// --- shipping quote ---

func TestQuote_ReturnsResolvedCost(t *testing.T) {
	r := newTestRouter(t, HandlerConfig{
		Loader: &fakeLoader{db: testDatabase()},
	})

	body := `{"items":[{"sku":"A","price":10,"quantity":2}],"country":"FR"}`
	w := doJSON(r, http.MethodPost, "/shippingquote", body, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "20") {
		t.Fatalf("expected cost 20, got %s", w.Body.String())
	}
}

func TestQuote_RestrictedDestination(t *testing.T) {
	r := newTestRouter(t, HandlerConfig{
		Loader: &fakeLoader{db: testDatabase()},
	})

	body := `{"items":[{"sku":"A","price":10,"quantity":1}],"country":"CU"}`
	w := doJSON(r, http.MethodPost, "/shippingquote", body, nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Embargoed") {
		t.Fatalf("expected reason, got %s", w.Body.String())
	}
}

func TestQuote_NoRulesMeansFreeShipping(t *testing.T) {
	db := testDatabase()
	db.ShippingRules = nil
	r := newTestRouter(t, HandlerConfig{
		Loader: &fakeLoader{db: db},
	})

	body := `{"items":[{"sku":"A","price":10,"quantity":1}],"country":"FR"}`
	w := doJSON(r, http.MethodPost, "/shippingquote", body, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"shippingCost":0`) {
		t.Fatalf("expected zero cost, got %s", w.Body.String())
	}
}
