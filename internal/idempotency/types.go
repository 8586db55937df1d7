package idempotency

import "time"

// Status values for processed-event entries
const (
	StatusInProgress = "IN_PROGRESS"
	StatusDone       = "DONE"
	StatusFailed     = "FAILED"
)

// EventRecord is the shape persisted in the processed-webhook-events
// DynamoDB table. One record per Stripe event id; duplicate deliveries of
// the same event are swallowed by the conditional create.
type EventRecord struct {
	EventID   string    `dynamodbav:"event_id"` // PK
	Status    string    `dynamodbav:"status"`
	CreatedAt time.Time `dynamodbav:"created_at"`
	UpdatedAt time.Time `dynamodbav:"updated_at"`
	ExpiresAt int64     `dynamodbav:"expires_at"` // TTL epoch seconds
	Note      string    `dynamodbav:"note,omitempty"`
}
