package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidSignature = errors.New("invalid_webhook_signature")
	ErrEventIgnored     = errors.New("event_ignored")
)

// FailureKind classifies a gateway call failure. Network failures are
// retryable and leave the outcome unknown; declines and invalid
// requests are definitive.
type FailureKind string

const (
	FailureNetwork        FailureKind = "network"
	FailureDeclined       FailureKind = "declined"
	FailureInvalidRequest FailureKind = "invalid_request"
)

type GatewayError struct {
	Kind    FailureKind
	Code    string
	Message string
}

func (e *GatewayError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gateway %s (%s): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("gateway %s: %s", e.Kind, e.Message)
}

// Retryable reports whether the call may be safely replayed with the
// same idempotency key.
func (e *GatewayError) Retryable() bool {
	return e.Kind == FailureNetwork
}

// IntentStatus is the provider-agnostic view of a payment intent state.
type IntentStatus string

const (
	IntentPending         IntentStatus = "pending"
	IntentRequiresCapture IntentStatus = "requires_capture"
	IntentSucceeded       IntentStatus = "succeeded"
	IntentCanceled        IntentStatus = "canceled"
	IntentFailed          IntentStatus = "failed"
)

type Intent struct {
	ID           string
	ClientSecret string
	Status       IntentStatus
	Amount       decimal.Decimal
	Currency     string
}

type Transfer struct {
	ID string
}

type Refund struct {
	ID string
}

type CreateIntentRequest struct {
	Amount         decimal.Decimal
	Currency       string
	OrderID        string
	IdempotencyKey string
	// ManualCapture requests an authorization hold instead of an
	// immediate charge.
	ManualCapture bool
}

type TransferRequest struct {
	Amount             decimal.Decimal
	Currency           string
	DestinationAccount string
	TransferGroup      string
	IdempotencyKey     string
}

type RefundRequest struct {
	PaymentIntentID string
	IdempotencyKey  string
}

// EventKind is the subset of provider webhook events the lifecycle
// reacts to.
type EventKind string

const (
	EventIntentCreated         EventKind = "payment_intent.created"
	EventIntentRequiresCapture EventKind = "payment_intent.amount_capturable_updated"
	EventIntentSucceeded       EventKind = "payment_intent.succeeded"
	EventIntentFailed          EventKind = "payment_intent.payment_failed"
	EventIntentCanceled        EventKind = "payment_intent.canceled"
)

type Event struct {
	ID              string
	Kind            EventKind
	PaymentIntentID string
	// ChargeID is the provider charge behind a succeeded intent, empty
	// until the provider reports one.
	ChargeID string
	Payload  []byte
}

// Gateway is the payment provider boundary. Every mutating call takes
// an idempotency key so a retry after a network failure cannot double
// charge, double transfer, or double refund.
type Gateway interface {
	CreateIntent(ctx context.Context, req CreateIntentRequest) (*Intent, error)
	RetrieveIntent(ctx context.Context, id string) (*Intent, error)
	Capture(ctx context.Context, id, idempotencyKey string) (*Intent, error)
	Cancel(ctx context.Context, id, idempotencyKey string) (*Intent, error)
	CreateTransfer(ctx context.Context, req TransferRequest) (*Transfer, error)
	CreateRefund(ctx context.Context, req RefundRequest) (*Refund, error)

	// ReverseTransfer pulls a settled payout back from the seller's
	// connected account.
	ReverseTransfer(ctx context.Context, transferID, idempotencyKey string) error

	// VerifyEvent checks the webhook signature and maps the payload to a
	// lifecycle event. Unhandled event types return ErrEventIgnored.
	VerifyEvent(payload []byte, signatureHeader string) (*Event, error)
}
