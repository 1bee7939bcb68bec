package stripe

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/client"
	"github.com/stripe/stripe-go/v75/webhook"
	"go.uber.org/zap"

	"github.com/soukly/payments/internal/commission"
	"github.com/soukly/payments/internal/config"
	"github.com/soukly/payments/internal/gateway/domain"
)

type Gateway struct {
	api           *client.API
	webhookSecret string
	log           *zap.Logger
}

var _ domain.Gateway = (*Gateway)(nil)

func New(cfg config.Config, log *zap.Logger) *Gateway {
	api := &client.API{}
	api.Init(cfg.StripeSecretKey, nil)

	return &Gateway{
		api:           api,
		webhookSecret: cfg.StripeWebhookSecret,
		log:           log.Named("gateway.stripe"),
	}
}

func (g *Gateway) CreateIntent(ctx context.Context, req domain.CreateIntentRequest) (*domain.Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(commission.Cents(req.Amount)),
		Currency: stripe.String(req.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.IdempotencyKey = stripe.String(req.IdempotencyKey)
	if req.ManualCapture {
		params.CaptureMethod = stripe.String(string(stripe.PaymentIntentCaptureMethodManual))
	}
	params.AddMetadata("order_id", req.OrderID)

	intent, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, g.wrap("create_intent", err)
	}
	return mapIntent(intent), nil
}

func (g *Gateway) RetrieveIntent(ctx context.Context, id string) (*domain.Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	intent, err := g.api.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, g.wrap("retrieve_intent", err)
	}
	return mapIntent(intent), nil
}

func (g *Gateway) Capture(ctx context.Context, id, idempotencyKey string) (*domain.Intent, error) {
	params := &stripe.PaymentIntentCaptureParams{}
	params.Context = ctx
	params.IdempotencyKey = stripe.String(idempotencyKey)

	intent, err := g.api.PaymentIntents.Capture(id, params)
	if err != nil {
		return nil, g.wrap("capture", err)
	}
	return mapIntent(intent), nil
}

func (g *Gateway) Cancel(ctx context.Context, id, idempotencyKey string) (*domain.Intent, error) {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx
	params.IdempotencyKey = stripe.String(idempotencyKey)

	intent, err := g.api.PaymentIntents.Cancel(id, params)
	if err != nil {
		return nil, g.wrap("cancel", err)
	}
	return mapIntent(intent), nil
}

func (g *Gateway) CreateTransfer(ctx context.Context, req domain.TransferRequest) (*domain.Transfer, error) {
	params := &stripe.TransferParams{
		Amount:        stripe.Int64(commission.Cents(req.Amount)),
		Currency:      stripe.String(req.Currency),
		Destination:   stripe.String(req.DestinationAccount),
		TransferGroup: stripe.String(req.TransferGroup),
	}
	params.Context = ctx
	params.IdempotencyKey = stripe.String(req.IdempotencyKey)

	transfer, err := g.api.Transfers.New(params)
	if err != nil {
		return nil, g.wrap("create_transfer", err)
	}
	return &domain.Transfer{ID: transfer.ID}, nil
}

func (g *Gateway) CreateRefund(ctx context.Context, req domain.RefundRequest) (*domain.Refund, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(req.PaymentIntentID),
	}
	params.Context = ctx
	params.IdempotencyKey = stripe.String(req.IdempotencyKey)

	refund, err := g.api.Refunds.New(params)
	if err != nil {
		return nil, g.wrap("create_refund", err)
	}
	return &domain.Refund{ID: refund.ID}, nil
}

func (g *Gateway) ReverseTransfer(ctx context.Context, transferID, idempotencyKey string) error {
	params := &stripe.TransferReversalParams{
		ID: stripe.String(transferID),
	}
	params.Context = ctx
	params.IdempotencyKey = stripe.String(idempotencyKey)

	if _, err := g.api.TransferReversals.New(params); err != nil {
		return g.wrap("reverse_transfer", err)
	}
	return nil
}

func (g *Gateway) VerifyEvent(payload []byte, signatureHeader string) (*domain.Event, error) {
	event, err := webhook.ConstructEventWithOptions(
		payload,
		signatureHeader,
		g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		return nil, domain.ErrInvalidSignature
	}

	kind, ok := mapEventKind(string(event.Type))
	if !ok {
		return nil, domain.ErrEventIgnored
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil || intent.ID == "" {
		return nil, domain.ErrEventIgnored
	}

	chargeID := ""
	if intent.LatestCharge != nil {
		chargeID = intent.LatestCharge.ID
	}

	return &domain.Event{
		ID:              event.ID,
		Kind:            kind,
		PaymentIntentID: intent.ID,
		ChargeID:        chargeID,
		Payload:         payload,
	}, nil
}

func mapEventKind(eventType string) (domain.EventKind, bool) {
	switch domain.EventKind(eventType) {
	case domain.EventIntentCreated,
		domain.EventIntentRequiresCapture,
		domain.EventIntentSucceeded,
		domain.EventIntentFailed,
		domain.EventIntentCanceled:
		return domain.EventKind(eventType), true
	default:
		return "", false
	}
}

func mapIntent(intent *stripe.PaymentIntent) *domain.Intent {
	return &domain.Intent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       mapIntentStatus(intent.Status),
		Amount:       decimal.New(intent.Amount, -2),
		Currency:     string(intent.Currency),
	}
}

func mapIntentStatus(status stripe.PaymentIntentStatus) domain.IntentStatus {
	switch status {
	case stripe.PaymentIntentStatusSucceeded:
		return domain.IntentSucceeded
	case stripe.PaymentIntentStatusRequiresCapture:
		return domain.IntentRequiresCapture
	case stripe.PaymentIntentStatusCanceled:
		return domain.IntentCanceled
	case stripe.PaymentIntentStatusProcessing,
		stripe.PaymentIntentStatusRequiresPaymentMethod,
		stripe.PaymentIntentStatusRequiresConfirmation,
		stripe.PaymentIntentStatusRequiresAction:
		return domain.IntentPending
	default:
		return domain.IntentFailed
	}
}

func (g *Gateway) wrap(op string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		kind := domain.FailureInvalidRequest
		if stripeErr.Type == stripe.ErrorTypeCard {
			kind = domain.FailureDeclined
		}
		g.log.Warn("stripe call rejected",
			zap.String("op", op),
			zap.String("code", string(stripeErr.Code)),
			zap.String("type", string(stripeErr.Type)),
		)
		return &domain.GatewayError{
			Kind:    kind,
			Code:    string(stripeErr.Code),
			Message: stripeErr.Msg,
		}
	}

	g.log.Error("stripe call failed", zap.String("op", op), zap.Error(err))
	return &domain.GatewayError{Kind: domain.FailureNetwork, Message: err.Error()}
}
