package notifier

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Event is the lifecycle notification published to downstream order
// services when a charge changes state.
type Event struct {
	OrderID         string          `json:"order_id"`
	PaymentIntentID string          `json:"payment_intent_id,omitempty"`
	Status          string          `json:"status"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Reason          string          `json:"reason,omitempty"`
	OccurredAt      time.Time       `json:"occurred_at"`
}

// Notifier publishes lifecycle events. Delivery is best effort; a
// failed publish never fails the payment operation that produced it.
type Notifier interface {
	Publish(ctx context.Context, event Event)
}
