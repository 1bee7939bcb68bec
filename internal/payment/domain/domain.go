package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	gatewaydomain "github.com/soukly/payments/internal/gateway/domain"
	ledgerdomain "github.com/soukly/payments/internal/ledger/domain"
	"github.com/soukly/payments/pkg/db/pagination"
)

var (
	ErrInvalidRequest        = errors.New("invalid_request")
	ErrOrderExists           = errors.New("order_already_exists")
	ErrNotFound              = errors.New("payment_not_found")
	ErrInvalidState          = errors.New("invalid_payment_state")
	ErrAlreadyRefunded       = errors.New("payment_already_refunded")
	ErrRefundNotAllowed      = errors.New("refund_not_allowed")
	ErrInvalidSignature      = errors.New("invalid_webhook_signature")
	ErrEventAlreadyProcessed = errors.New("event_already_processed")
)

// ProcessingError marks a lifecycle operation that failed after the
// order was identified, so callers can echo the order back to the
// client alongside the failure.
type ProcessingError struct {
	OrderID string
	Err     error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("payment processing failed for order %s: %v", e.OrderID, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// CartItem is one seller's share of an order.
type CartItem struct {
	SellerID string          `json:"seller_id"`
	Amount   decimal.Decimal `json:"amount"`
}

type CreateIntentRequest struct {
	OrderID  string     `json:"order_id"`
	Currency string     `json:"currency"`
	Items    []CartItem `json:"items"`
}

type CreateIntentResponse struct {
	OrderID         string                    `json:"order_id"`
	PaymentIntentID string                    `json:"payment_intent_id"`
	ClientSecret    string                    `json:"client_secret,omitempty"`
	Status          ledgerdomain.ChargeStatus `json:"status"`
	Amount          decimal.Decimal           `json:"amount"`
	Currency        string                    `json:"currency"`
}

type RefundRequest struct {
	OrderID        string `json:"order_id"`
	IdempotencyKey string `json:"idempotency_key"`
}

type ListRequest struct {
	Filter ledgerdomain.ListChargeFilter
	Page   pagination.Pagination
}

type ListResponse struct {
	Data     []*ledgerdomain.ChargeTransaction `json:"data"`
	PageInfo *pagination.PageInfo              `json:"page_info"`
}

// Service drives the charge lifecycle: authorization, capture, cancel,
// settlement fan-out, and refund with transfer reversal.
type Service interface {
	CreateIntent(ctx context.Context, req CreateIntentRequest) (*CreateIntentResponse, error)
	Capture(ctx context.Context, orderID string) (*ledgerdomain.ChargeTransaction, error)
	Cancel(ctx context.Context, orderID string) (*ledgerdomain.ChargeTransaction, error)
	Refund(ctx context.Context, req RefundRequest) (*ledgerdomain.ChargeTransaction, error)
	GetByOrderID(ctx context.Context, orderID string) (*ledgerdomain.ChargeTransaction, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)

	// ApplyIntentEvent folds a verified gateway event into the charge
	// lifecycle. Settlement runs on succeeded events only.
	ApplyIntentEvent(ctx context.Context, event *gatewaydomain.Event) error
}

// WebhookService ingests raw provider webhooks: verify, dedup, apply,
// mark processed.
type WebhookService interface {
	HandleEvent(ctx context.Context, payload []byte, signatureHeader string) error
}

// WebhookEvent is the dedup record for received provider events. The
// unique (provider, provider_event_id) pair makes replayed deliveries
// no-ops.
type WebhookEvent struct {
	ID              snowflake.ID   `gorm:"primaryKey"`
	Provider        string         `gorm:"type:text;not null;uniqueIndex:ux_webhook_events_provider_event,priority:1"`
	ProviderEventID string         `gorm:"type:text;not null;uniqueIndex:ux_webhook_events_provider_event,priority:2"`
	EventType       string         `gorm:"type:text;not null"`
	PaymentIntentID string         `gorm:"type:text;index"`
	Payload         datatypes.JSON `gorm:"not null"`
	ReceivedAt      time.Time      `gorm:"not null"`
	ProcessedAt     *time.Time
}

func (WebhookEvent) TableName() string { return "webhook_events" }

type Repository interface {
	InsertEvent(ctx context.Context, db *gorm.DB, event *WebhookEvent) (bool, error)
	FindEvent(ctx context.Context, db *gorm.DB, provider, providerEventID string) (*WebhookEvent, error)
	MarkProcessed(ctx context.Context, db *gorm.DB, id snowflake.ID, processedAt time.Time) error
}
