package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/soukly/payments/internal/commission"
	"github.com/soukly/payments/internal/config"
	gatewaydomain "github.com/soukly/payments/internal/gateway/domain"
	ledgerdomain "github.com/soukly/payments/internal/ledger/domain"
	"github.com/soukly/payments/internal/notifier"
	obsmetrics "github.com/soukly/payments/internal/observability/metrics"
	paymentdomain "github.com/soukly/payments/internal/payment/domain"
	sellerdomain "github.com/soukly/payments/internal/seller/domain"
	"github.com/soukly/payments/pkg/db/pagination"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Cfg      config.Config
	Gateway  gatewaydomain.Gateway
	Ledger   ledgerdomain.Repository
	Sellers  sellerdomain.Repository
	Notifier notifier.Notifier
	Metrics  *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	rate     decimal.Decimal
	gateway  gatewaydomain.Gateway
	ledger   ledgerdomain.Repository
	sellers  sellerdomain.Repository
	notifier notifier.Notifier
	metrics  *obsmetrics.Metrics
}

func NewService(p Params) *Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("payment.service"),
		genID:    p.GenID,
		rate:     p.Cfg.CommissionRate,
		gateway:  p.Gateway,
		ledger:   p.Ledger,
		sellers:  p.Sellers,
		notifier: p.Notifier,
		metrics:  p.Metrics,
	}
}

func (s *Service) CreateIntent(ctx context.Context, req paymentdomain.CreateIntentRequest) (*paymentdomain.CreateIntentResponse, error) {
	if err := validateCreateIntent(&req); err != nil {
		s.metrics.RecordOperation("create_intent", "invalid")
		return nil, err
	}

	total := decimal.Zero
	for _, item := range req.Items {
		total = total.Add(item.Amount)
	}

	charge, err := s.ledger.FindByOrderID(ctx, s.db, req.OrderID)
	switch {
	case err == nil:
		if charge.PaymentIntentID != "" {
			s.metrics.RecordOperation("create_intent", "duplicate")
			return nil, paymentdomain.ErrOrderExists
		}
		// A prior attempt failed before the intent was recorded. The
		// stored idempotency key is replayed, so the gateway cannot
		// create a second intent.
	case errors.Is(err, ledgerdomain.ErrNotFound):
		charge, err = s.insertCharge(ctx, &req, total)
		if err != nil {
			if errors.Is(err, ledgerdomain.ErrOrderExists) {
				s.metrics.RecordOperation("create_intent", "duplicate")
				return nil, paymentdomain.ErrOrderExists
			}
			return nil, err
		}
	default:
		return nil, err
	}

	intent, err := s.gateway.CreateIntent(ctx, gatewaydomain.CreateIntentRequest{
		Amount:         total,
		Currency:       req.Currency,
		OrderID:        req.OrderID,
		IdempotencyKey: charge.IdempotencyKey,
		ManualCapture:  true,
	})
	if err != nil {
		return nil, s.failCharge(ctx, charge, "create_intent", err)
	}

	update := ledgerdomain.ChargeUpdate{
		Status:          chargeStatusFromIntent(intent.Status),
		PaymentIntentID: intent.ID,
	}
	if _, err := s.ledger.UpdateChargeGuarded(ctx, s.db, charge.ID, []ledgerdomain.ChargeStatus{ledgerdomain.StatusPending}, update); err != nil {
		return nil, err
	}

	s.metrics.RecordOperation("create_intent", "ok")
	s.log.Info("payment intent created",
		zap.String("order_id", req.OrderID),
		zap.String("payment_intent_id", intent.ID),
	)

	return &paymentdomain.CreateIntentResponse{
		OrderID:         req.OrderID,
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		Status:          update.Status,
		Amount:          total,
		Currency:        req.Currency,
	}, nil
}

func (s *Service) insertCharge(ctx context.Context, req *paymentdomain.CreateIntentRequest, total decimal.Decimal) (*ledgerdomain.ChargeTransaction, error) {
	now := time.Now().UTC()
	charge := &ledgerdomain.ChargeTransaction{
		ID:             s.genID.Generate(),
		OrderID:        req.OrderID,
		Amount:         total,
		Currency:       req.Currency,
		Status:         ledgerdomain.StatusPending,
		IdempotencyKey: uuid.NewString(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for _, item := range req.Items {
		charge.Items = append(charge.Items, ledgerdomain.OrderItem{
			ID:        s.genID.Generate(),
			SellerID:  item.SellerID,
			Amount:    item.Amount,
			CreatedAt: now,
		})
	}

	if err := s.ledger.InsertCharge(ctx, s.db, charge); err != nil {
		return nil, err
	}
	return charge, nil
}

func (s *Service) Capture(ctx context.Context, orderID string) (*ledgerdomain.ChargeTransaction, error) {
	charge, err := s.loadCharge(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch charge.Status {
	case ledgerdomain.StatusSucceeded:
		return charge, nil
	case ledgerdomain.StatusRequiresCapture:
	default:
		s.metrics.RecordOperation("capture", "invalid_state")
		return nil, paymentdomain.ErrInvalidState
	}

	// The provider is authoritative: re-fetch the intent so a stale
	// local row cannot drive a bad capture.
	intent, err := s.gateway.RetrieveIntent(ctx, charge.PaymentIntentID)
	if err != nil {
		s.metrics.RecordOperation("capture", "gateway_error")
		return nil, &paymentdomain.ProcessingError{OrderID: orderID, Err: err}
	}
	if intent.Status != gatewaydomain.IntentRequiresCapture {
		s.metrics.RecordOperation("capture", "invalid_state")
		return nil, &paymentdomain.ProcessingError{OrderID: orderID, Err: paymentdomain.ErrInvalidState}
	}

	captured, err := s.gateway.Capture(ctx, charge.PaymentIntentID, uuid.NewString())
	if err != nil {
		s.metrics.RecordOperation("capture", "gateway_error")
		return nil, &paymentdomain.ProcessingError{OrderID: orderID, Err: err}
	}

	// The charge follows whatever status the provider reports after the
	// capture, not an assumed success.
	newStatus := chargeStatusFromIntent(captured.Status)
	transitioned, err := s.transition(ctx, orderID,
		[]ledgerdomain.ChargeStatus{ledgerdomain.StatusRequiresCapture},
		ledgerdomain.ChargeUpdate{Status: newStatus},
	)
	if err != nil {
		return nil, err
	}
	if transitioned {
		s.publish(ctx, charge, string(newStatus), "")
	}

	s.metrics.RecordOperation("capture", "ok")
	return s.loadCharge(ctx, orderID)
}

func (s *Service) Cancel(ctx context.Context, orderID string) (*ledgerdomain.ChargeTransaction, error) {
	charge, err := s.loadCharge(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch charge.Status {
	case ledgerdomain.StatusCanceled:
		return charge, nil
	case ledgerdomain.StatusPending, ledgerdomain.StatusRequiresCapture:
	default:
		s.metrics.RecordOperation("cancel", "invalid_state")
		return nil, paymentdomain.ErrInvalidState
	}

	if charge.PaymentIntentID != "" {
		intent, err := s.gateway.RetrieveIntent(ctx, charge.PaymentIntentID)
		if err != nil {
			s.metrics.RecordOperation("cancel", "gateway_error")
			return nil, &paymentdomain.ProcessingError{OrderID: orderID, Err: err}
		}
		switch intent.Status {
		case gatewaydomain.IntentPending, gatewaydomain.IntentRequiresCapture:
		case gatewaydomain.IntentCanceled:
		default:
			s.metrics.RecordOperation("cancel", "invalid_state")
			return nil, &paymentdomain.ProcessingError{OrderID: orderID, Err: paymentdomain.ErrInvalidState}
		}

		if intent.Status != gatewaydomain.IntentCanceled {
			if _, err := s.gateway.Cancel(ctx, charge.PaymentIntentID, uuid.NewString()); err != nil {
				s.metrics.RecordOperation("cancel", "gateway_error")
				return nil, &paymentdomain.ProcessingError{OrderID: orderID, Err: err}
			}
		}
	}

	transitioned, err := s.transition(ctx, orderID,
		[]ledgerdomain.ChargeStatus{ledgerdomain.StatusPending, ledgerdomain.StatusRequiresCapture},
		ledgerdomain.ChargeUpdate{Status: ledgerdomain.StatusCanceled},
	)
	if err != nil {
		return nil, err
	}
	if transitioned {
		s.publish(ctx, charge, "canceled", "")
	}

	s.metrics.RecordOperation("cancel", "ok")
	return s.loadCharge(ctx, orderID)
}

func (s *Service) Refund(ctx context.Context, req paymentdomain.RefundRequest) (*ledgerdomain.ChargeTransaction, error) {
	if strings.TrimSpace(req.OrderID) == "" || strings.TrimSpace(req.IdempotencyKey) == "" {
		return nil, paymentdomain.ErrInvalidRequest
	}

	charge, err := s.loadCharge(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	if charge.Refunded || charge.Status == ledgerdomain.StatusRefunded {
		s.metrics.RecordOperation("refund", "already_refunded")
		return nil, paymentdomain.ErrAlreadyRefunded
	}
	if charge.Status != ledgerdomain.StatusSucceeded {
		s.metrics.RecordOperation("refund", "invalid_state")
		return nil, paymentdomain.ErrRefundNotAllowed
	}

	if _, err := s.gateway.CreateRefund(ctx, gatewaydomain.RefundRequest{
		PaymentIntentID: charge.PaymentIntentID,
		IdempotencyKey:  req.IdempotencyKey,
	}); err != nil {
		s.metrics.RecordOperation("refund", "gateway_error")
		return nil, &paymentdomain.ProcessingError{OrderID: req.OrderID, Err: err}
	}

	reversed, pending := s.reverseTransfers(ctx, charge)

	update := ledgerdomain.ChargeUpdate{
		Status:   ledgerdomain.StatusRefunded,
		Refunded: true,
	}
	if pending > 0 {
		update.ErrorMessage = fmt.Sprintf("transfer reversal pending for %d sellers", pending)
	}

	now := time.Now().UTC()
	var transitioned bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := s.ledger.FindByOrderIDForUpdate(ctx, tx, req.OrderID)
		if err != nil {
			return err
		}
		for _, id := range reversed {
			if _, err := s.ledger.UpdateTransferStatus(ctx, tx, id, ledgerdomain.TransferSucceeded, ledgerdomain.TransferReversed, now); err != nil {
				return err
			}
		}
		transitioned, err = s.ledger.UpdateChargeGuarded(ctx, tx, locked.ID,
			[]ledgerdomain.ChargeStatus{ledgerdomain.StatusSucceeded}, update)
		return err
	})
	if err != nil {
		return nil, err
	}
	if transitioned {
		s.publish(ctx, charge, "refunded", "")
	}

	s.metrics.RecordOperation("refund", "ok")
	return s.loadCharge(ctx, req.OrderID)
}

// reverseTransfers pulls settled payouts back from the connected
// accounts. Only succeeded transfers are reversed: a failed transfer
// moved no money, so its row keeps the failed status as the record of
// what actually happened. A reversal failure leaves the transfer row
// untouched so an operator can retry it; the buyer refund is never
// blocked on it.
func (s *Service) reverseTransfers(ctx context.Context, charge *ledgerdomain.ChargeTransaction) (reversed []snowflake.ID, pending int) {
	for i := range charge.Transfers {
		transfer := &charge.Transfers[i]
		if transfer.Status != ledgerdomain.TransferSucceeded {
			continue
		}

		if err := s.gateway.ReverseTransfer(ctx, transfer.TransferID, reversalKey(transfer.TransferID)); err != nil {
			pending++
			s.log.Warn("transfer reversal failed",
				zap.String("order_id", charge.OrderID),
				zap.String("seller_id", transfer.SellerID),
				zap.String("transfer_id", transfer.TransferID),
				zap.Error(err),
			)
			continue
		}
		reversed = append(reversed, transfer.ID)
	}
	return reversed, pending
}

func (s *Service) GetByOrderID(ctx context.Context, orderID string) (*ledgerdomain.ChargeTransaction, error) {
	return s.loadCharge(ctx, orderID)
}

func (s *Service) List(ctx context.Context, req paymentdomain.ListRequest) (*paymentdomain.ListResponse, error) {
	if req.Page.PageSize <= 0 {
		req.Page.PageSize = 10
	}

	charges, err := s.ledger.List(ctx, s.db, req.Filter, req.Page)
	if err != nil {
		return nil, err
	}

	pageInfo, charges := pagination.BuildCursorPageInfo(charges, req.Page.PageSize, func(c *ledgerdomain.ChargeTransaction) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: c.ID.String()})
		if err != nil {
			return ""
		}
		return token
	})

	return &paymentdomain.ListResponse{Data: charges, PageInfo: pageInfo}, nil
}

// ApplyIntentEvent folds a verified provider event into the lifecycle.
func (s *Service) ApplyIntentEvent(ctx context.Context, event *gatewaydomain.Event) error {
	charge, err := s.ledger.FindByPaymentIntentID(ctx, s.db, event.PaymentIntentID)
	if errors.Is(err, ledgerdomain.ErrNotFound) {
		s.log.Warn("event for unknown payment intent",
			zap.String("event_id", event.ID),
			zap.String("payment_intent_id", event.PaymentIntentID),
		)
		return paymentdomain.ErrNotFound
	}
	if err != nil {
		return err
	}

	switch event.Kind {
	case gatewaydomain.EventIntentCreated:
		// No ledger mutation, downstream services still hear about it.
		s.publish(ctx, charge, "created", "")
		return nil

	case gatewaydomain.EventIntentRequiresCapture:
		transitioned, err := s.transition(ctx, charge.OrderID,
			[]ledgerdomain.ChargeStatus{ledgerdomain.StatusPending},
			ledgerdomain.ChargeUpdate{Status: ledgerdomain.StatusRequiresCapture},
		)
		if err != nil {
			return err
		}
		if transitioned {
			s.publish(ctx, charge, "authorized", "")
		}
		return nil

	case gatewaydomain.EventIntentSucceeded:
		transitioned, err := s.transition(ctx, charge.OrderID,
			[]ledgerdomain.ChargeStatus{ledgerdomain.StatusPending, ledgerdomain.StatusRequiresCapture},
			ledgerdomain.ChargeUpdate{Status: ledgerdomain.StatusSucceeded, GatewayChargeID: event.ChargeID},
		)
		if err != nil {
			return err
		}
		if transitioned {
			s.publish(ctx, charge, "succeeded", "")
		}
		// Settlement is driven by the provider's succeeded event, never
		// by the synchronous capture path, so a replayed delivery can
		// finish a partially settled charge.
		return s.settle(ctx, charge.OrderID)

	case gatewaydomain.EventIntentFailed:
		transitioned, err := s.transition(ctx, charge.OrderID,
			[]ledgerdomain.ChargeStatus{ledgerdomain.StatusPending, ledgerdomain.StatusRequiresCapture},
			ledgerdomain.ChargeUpdate{Status: ledgerdomain.StatusFailed, ErrorMessage: "payment_failed"},
		)
		if err != nil {
			return err
		}
		if transitioned {
			s.publish(ctx, charge, "failed", "payment_failed")
		}
		return nil

	case gatewaydomain.EventIntentCanceled:
		transitioned, err := s.transition(ctx, charge.OrderID,
			[]ledgerdomain.ChargeStatus{ledgerdomain.StatusPending, ledgerdomain.StatusRequiresCapture},
			ledgerdomain.ChargeUpdate{Status: ledgerdomain.StatusCanceled},
		)
		if err != nil {
			return err
		}
		if transitioned {
			s.publish(ctx, charge, "canceled", "")
		}
		return nil
	}

	return nil
}

// settle fans the captured amount out to the sellers of the order,
// minus the platform commission. Each seller is settled independently:
// a definitive failure is recorded and skipped on replay, while a
// network failure leaves no row so the next delivery retries it.
func (s *Service) settle(ctx context.Context, orderID string) error {
	charge, err := s.loadCharge(ctx, orderID)
	if err != nil {
		return err
	}

	settled := make(map[string]bool, len(charge.Transfers))
	for _, transfer := range charge.Transfers {
		settled[transfer.SellerID] = true
	}

	// A cart may carry several lines for one seller; settlement pays the
	// summed proceeds in a single transfer.
	sellers := make([]string, 0, len(charge.Items))
	gross := make(map[string]decimal.Decimal, len(charge.Items))
	for _, item := range charge.Items {
		if _, ok := gross[item.SellerID]; !ok {
			sellers = append(sellers, item.SellerID)
		}
		gross[item.SellerID] = gross[item.SellerID].Add(item.Amount)
	}

	var retryable int
	var lastErr error
	now := time.Now().UTC()

	for _, sellerID := range sellers {
		if settled[sellerID] {
			continue
		}

		payout, _, err := commission.ComputePayout(gross[sellerID], s.rate)
		if err != nil {
			s.recordTransfer(ctx, charge, sellerID, "", "", payout, ledgerdomain.TransferFailed, err.Error(), now)
			continue
		}

		account, err := s.sellers.FindBySellerID(ctx, s.db, sellerID)
		if err != nil {
			s.recordTransfer(ctx, charge, sellerID, "", "", payout, ledgerdomain.TransferFailed, sellerdomain.ErrAccountNotFound.Error(), now)
			s.metrics.RecordTransfer("no_account")
			continue
		}

		transfer, err := s.gateway.CreateTransfer(ctx, gatewaydomain.TransferRequest{
			Amount:             payout,
			Currency:           charge.Currency,
			DestinationAccount: account.AccountID,
			TransferGroup:      charge.OrderID,
			IdempotencyKey:     transferKey(charge.ID, sellerID),
		})
		if err != nil {
			var gwErr *gatewaydomain.GatewayError
			if errors.As(err, &gwErr) && gwErr.Retryable() {
				retryable++
				lastErr = err
				s.metrics.RecordTransfer("retryable")
				s.log.Warn("transfer deferred",
					zap.String("order_id", charge.OrderID),
					zap.String("seller_id", sellerID),
					zap.Error(err),
				)
				continue
			}
			s.recordTransfer(ctx, charge, sellerID, "", account.AccountID, payout, ledgerdomain.TransferFailed, err.Error(), now)
			s.metrics.RecordTransfer("failed")
			continue
		}

		s.recordTransfer(ctx, charge, sellerID, transfer.ID, account.AccountID, payout, ledgerdomain.TransferSucceeded, "", now)
		s.metrics.RecordTransfer("ok")
	}

	if retryable > 0 {
		return fmt.Errorf("settlement incomplete for %d sellers: %w", retryable, lastErr)
	}
	return nil
}

func (s *Service) recordTransfer(ctx context.Context, charge *ledgerdomain.ChargeTransaction, sellerID, transferID, accountID string, payout decimal.Decimal, status ledgerdomain.TransferStatus, errMsg string, now time.Time) {
	row := &ledgerdomain.TransferTransaction{
		ID:                  s.genID.Generate(),
		ChargeTransactionID: charge.ID,
		SellerID:            sellerID,
		SellerAccountID:     accountID,
		Amount:              payout,
		Currency:            charge.Currency,
		Status:              status,
		TransferID:          transferID,
		IdempotencyKey:      transferKey(charge.ID, sellerID),
		ErrorMessage:        errMsg,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if _, err := s.ledger.InsertTransfer(ctx, s.db, row); err != nil {
		s.log.Error("record transfer",
			zap.String("order_id", charge.OrderID),
			zap.String("seller_id", sellerID),
			zap.Error(err),
		)
	}
}

// transition applies a guarded status update inside a transaction that
// holds the charge row lock, so concurrent webhook deliveries and API
// calls cannot interleave updates.
func (s *Service) transition(ctx context.Context, orderID string, allowedFrom []ledgerdomain.ChargeStatus, update ledgerdomain.ChargeUpdate) (bool, error) {
	var transitioned bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		charge, err := s.ledger.FindByOrderIDForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if charge.Status == update.Status {
			return nil
		}
		if !charge.Status.CanTransitionTo(update.Status) {
			s.log.Warn("transition rejected",
				zap.String("order_id", orderID),
				zap.String("from", string(charge.Status)),
				zap.String("to", string(update.Status)),
			)
			return nil
		}

		transitioned, err = s.ledger.UpdateChargeGuarded(ctx, tx, charge.ID, allowedFrom, update)
		return err
	})
	return transitioned, err
}

func (s *Service) failCharge(ctx context.Context, charge *ledgerdomain.ChargeTransaction, op string, gatewayErr error) error {
	var gwErr *gatewaydomain.GatewayError
	if errors.As(gatewayErr, &gwErr) && !gwErr.Retryable() {
		if _, err := s.transition(ctx, charge.OrderID,
			[]ledgerdomain.ChargeStatus{ledgerdomain.StatusPending},
			ledgerdomain.ChargeUpdate{Status: ledgerdomain.StatusFailed, ErrorMessage: gwErr.Message},
		); err != nil {
			s.log.Error("mark charge failed", zap.String("order_id", charge.OrderID), zap.Error(err))
		}
		s.publish(ctx, charge, "failed", gwErr.Message)
	}

	s.metrics.RecordOperation(op, "gateway_error")
	return &paymentdomain.ProcessingError{OrderID: charge.OrderID, Err: gatewayErr}
}

func (s *Service) loadCharge(ctx context.Context, orderID string) (*ledgerdomain.ChargeTransaction, error) {
	charge, err := s.ledger.FindByOrderID(ctx, s.db, orderID)
	if errors.Is(err, ledgerdomain.ErrNotFound) {
		return nil, paymentdomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return charge, nil
}

func (s *Service) publish(ctx context.Context, charge *ledgerdomain.ChargeTransaction, status, reason string) {
	s.notifier.Publish(ctx, notifier.Event{
		OrderID:         charge.OrderID,
		PaymentIntentID: charge.PaymentIntentID,
		Status:          status,
		Amount:          charge.Amount,
		Currency:        charge.Currency,
		Reason:          reason,
		OccurredAt:      time.Now().UTC(),
	})
}

func validateCreateIntent(req *paymentdomain.CreateIntentRequest) error {
	req.OrderID = strings.TrimSpace(req.OrderID)
	req.Currency = strings.ToLower(strings.TrimSpace(req.Currency))

	if req.OrderID == "" || len(req.Currency) != 3 {
		return paymentdomain.ErrInvalidRequest
	}
	if len(req.Items) == 0 {
		return paymentdomain.ErrInvalidRequest
	}

	for i := range req.Items {
		item := &req.Items[i]
		item.SellerID = strings.TrimSpace(item.SellerID)
		if item.SellerID == "" {
			return paymentdomain.ErrInvalidRequest
		}
		if item.Amount.LessThanOrEqual(decimal.Zero) {
			return paymentdomain.ErrInvalidRequest
		}
	}
	return nil
}

func chargeStatusFromIntent(status gatewaydomain.IntentStatus) ledgerdomain.ChargeStatus {
	switch status {
	case gatewaydomain.IntentRequiresCapture:
		return ledgerdomain.StatusRequiresCapture
	case gatewaydomain.IntentSucceeded:
		return ledgerdomain.StatusSucceeded
	case gatewaydomain.IntentCanceled:
		return ledgerdomain.StatusCanceled
	case gatewaydomain.IntentFailed:
		return ledgerdomain.StatusFailed
	default:
		return ledgerdomain.StatusPending
	}
}

func reversalKey(transferID string) string { return "reversal_" + transferID }

func transferKey(chargeID snowflake.ID, sellerID string) string {
	return fmt.Sprintf("transfer_%s_%s", chargeID.String(), sellerID)
}
