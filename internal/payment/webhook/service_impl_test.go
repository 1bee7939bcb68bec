package webhook_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/soukly/payments/internal/config"
	gatewaydomain "github.com/soukly/payments/internal/gateway/domain"
	ledgerdomain "github.com/soukly/payments/internal/ledger/domain"
	ledgerrepo "github.com/soukly/payments/internal/ledger/repository"
	"github.com/soukly/payments/internal/notifier"
	paymentdomain "github.com/soukly/payments/internal/payment/domain"
	paymentrepo "github.com/soukly/payments/internal/payment/repository"
	paymentservice "github.com/soukly/payments/internal/payment/service"
	paymentwebhook "github.com/soukly/payments/internal/payment/webhook"
	sellerdomain "github.com/soukly/payments/internal/seller/domain"
	sellerrepo "github.com/soukly/payments/internal/seller/repository"
)

type stubGateway struct {
	gatewaydomain.Gateway

	verifyEventFn    func(payload []byte, sig string) (*gatewaydomain.Event, error)
	createTransferFn func(ctx context.Context, req gatewaydomain.TransferRequest) (*gatewaydomain.Transfer, error)
}

func (g *stubGateway) VerifyEvent(payload []byte, sig string) (*gatewaydomain.Event, error) {
	return g.verifyEventFn(payload, sig)
}

func (g *stubGateway) CreateTransfer(ctx context.Context, req gatewaydomain.TransferRequest) (*gatewaydomain.Transfer, error) {
	if g.createTransferFn == nil {
		return nil, errors.New("unexpected CreateTransfer call")
	}
	return g.createTransferFn(ctx, req)
}

type noopNotifier struct{}

func (noopNotifier) Publish(context.Context, notifier.Event) {}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:webhookdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	schema := []string{
		`CREATE TABLE charge_transactions (
			id BIGINT PRIMARY KEY,
			order_id TEXT NOT NULL,
			payment_intent_id TEXT,
			gateway_charge_id TEXT,
			amount NUMERIC(20,4) NOT NULL,
			currency TEXT NOT NULL,
			status TEXT NOT NULL,
			idempotency_key TEXT NOT NULL,
			error_message TEXT,
			refunded BOOLEAN NOT NULL DEFAULT FALSE,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE UNIQUE INDEX ux_charge_transactions_order_id ON charge_transactions(order_id)`,
		`CREATE TABLE order_items (
			id BIGINT PRIMARY KEY,
			charge_transaction_id BIGINT NOT NULL,
			seller_id TEXT NOT NULL,
			amount NUMERIC(20,4) NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE transfer_transactions (
			id BIGINT PRIMARY KEY,
			charge_transaction_id BIGINT NOT NULL,
			seller_id TEXT NOT NULL,
			seller_account_id TEXT NOT NULL,
			amount NUMERIC(20,4) NOT NULL,
			currency TEXT NOT NULL,
			status TEXT NOT NULL,
			transfer_id TEXT,
			idempotency_key TEXT NOT NULL,
			error_message TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE UNIQUE INDEX ux_transfer_transactions_charge_seller ON transfer_transactions(charge_transaction_id, seller_id)`,
		`CREATE TABLE seller_accounts (
			id BIGINT PRIMARY KEY,
			seller_id TEXT NOT NULL,
			account_id TEXT NOT NULL,
			display_name TEXT,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE UNIQUE INDEX ux_seller_accounts_seller_id ON seller_accounts(seller_id)`,
		`CREATE TABLE webhook_events (
			id BIGINT PRIMARY KEY,
			provider TEXT NOT NULL,
			provider_event_id TEXT NOT NULL,
			event_type TEXT NOT NULL,
			payment_intent_id TEXT,
			payload TEXT NOT NULL,
			received_at DATETIME NOT NULL,
			processed_at DATETIME
		)`,
		`CREATE UNIQUE INDEX ux_webhook_events_provider_event ON webhook_events(provider, provider_event_id)`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}

	return db
}

func newWebhookService(t *testing.T, db *gorm.DB, gw gatewaydomain.Gateway) (*paymentwebhook.Service, *snowflake.Node) {
	t.Helper()

	node, err := snowflake.NewNode(11)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	paymentSvc := paymentservice.NewService(paymentservice.Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Cfg:      config.Config{CommissionRate: decimal.RequireFromString("0.05")},
		Gateway:  gw,
		Ledger:   ledgerrepo.Provide(),
		Sellers:  sellerrepo.Provide(),
		Notifier: noopNotifier{},
	})

	webhookSvc := paymentwebhook.NewService(paymentwebhook.Params{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Gateway:    gw,
		PaymentSvc: paymentSvc,
		Repo:       paymentrepo.Provide(),
	})
	return webhookSvc, node
}

func seedAuthorizedCharge(t *testing.T, db *gorm.DB, node *snowflake.Node) snowflake.ID {
	t.Helper()

	ctx := context.Background()
	now := time.Now().UTC()
	charge := &ledgerdomain.ChargeTransaction{
		ID:              node.Generate(),
		OrderID:         "order-web",
		PaymentIntentID: "pi_web",
		Amount:          decimal.RequireFromString("100.00"),
		Currency:        "usd",
		Status:          ledgerdomain.StatusRequiresCapture,
		IdempotencyKey:  "key-web",
		CreatedAt:       now,
		UpdatedAt:       now,
		Items: []ledgerdomain.OrderItem{
			{ID: node.Generate(), SellerID: "seller-a", Amount: decimal.RequireFromString("60.00"), CreatedAt: now},
			{ID: node.Generate(), SellerID: "seller-b", Amount: decimal.RequireFromString("40.00"), CreatedAt: now},
		},
	}
	if err := ledgerrepo.Provide().InsertCharge(ctx, db, charge); err != nil {
		t.Fatalf("seed charge: %v", err)
	}

	for _, seller := range []struct{ id, account string }{
		{"seller-a", "acct_a"},
		{"seller-b", "acct_b"},
	} {
		err := sellerrepo.Provide().Upsert(ctx, db, &sellerdomain.SellerAccount{
			ID:        node.Generate(),
			SellerID:  seller.id,
			AccountID: seller.account,
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			t.Fatalf("seed seller: %v", err)
		}
	}

	return charge.ID
}

func succeededEvent() *gatewaydomain.Event {
	return &gatewaydomain.Event{
		ID:              "evt_web_1",
		Kind:            gatewaydomain.EventIntentSucceeded,
		PaymentIntentID: "pi_web",
	}
}

func TestHandleEventAppliesAndMarksProcessed(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	gw := &stubGateway{
		verifyEventFn: func(payload []byte, sig string) (*gatewaydomain.Event, error) {
			if sig != "valid-signature" {
				return nil, gatewaydomain.ErrInvalidSignature
			}
			return succeededEvent(), nil
		},
		createTransferFn: func(_ context.Context, req gatewaydomain.TransferRequest) (*gatewaydomain.Transfer, error) {
			return &gatewaydomain.Transfer{ID: "tr_" + req.DestinationAccount}, nil
		},
	}
	svc, node := newWebhookService(t, db, gw)
	seedAuthorizedCharge(t, db, node)

	payload := []byte(`{"id":"evt_web_1","type":"payment_intent.succeeded"}`)
	if err := svc.HandleEvent(ctx, payload, "valid-signature"); err != nil {
		t.Fatalf("handle event: %v", err)
	}

	var status string
	if err := db.Raw(`SELECT status FROM charge_transactions WHERE order_id = ?`, "order-web").Scan(&status).Error; err != nil {
		t.Fatalf("read status: %v", err)
	}
	if status != string(ledgerdomain.StatusSucceeded) {
		t.Fatalf("status = %q, want succeeded", status)
	}

	var transferCount int64
	if err := db.Raw(`SELECT COUNT(*) FROM transfer_transactions`).Scan(&transferCount).Error; err != nil {
		t.Fatalf("count transfers: %v", err)
	}
	if transferCount != 2 {
		t.Fatalf("transfers = %d, want 2", transferCount)
	}

	var processed int64
	if err := db.Raw(`SELECT COUNT(*) FROM webhook_events WHERE processed_at IS NOT NULL`).Scan(&processed).Error; err != nil {
		t.Fatalf("count processed: %v", err)
	}
	if processed != 1 {
		t.Fatalf("processed events = %d, want 1", processed)
	}
}

func TestHandleEventDuplicateDeliveryIsNoOp(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	var transfers int
	gw := &stubGateway{
		verifyEventFn: func([]byte, string) (*gatewaydomain.Event, error) {
			return succeededEvent(), nil
		},
		createTransferFn: func(_ context.Context, req gatewaydomain.TransferRequest) (*gatewaydomain.Transfer, error) {
			transfers++
			return &gatewaydomain.Transfer{ID: "tr_" + req.DestinationAccount}, nil
		},
	}
	svc, node := newWebhookService(t, db, gw)
	seedAuthorizedCharge(t, db, node)

	payload := []byte(`{"id":"evt_web_1","type":"payment_intent.succeeded"}`)
	if err := svc.HandleEvent(ctx, payload, "sig"); err != nil {
		t.Fatalf("first delivery: %v", err)
	}

	err := svc.HandleEvent(ctx, payload, "sig")
	if !errors.Is(err, paymentdomain.ErrEventAlreadyProcessed) {
		t.Fatalf("second delivery err = %v, want ErrEventAlreadyProcessed", err)
	}
	if transfers != 2 {
		t.Fatalf("transfers = %d, want 2 (one per seller, once)", transfers)
	}
}

func TestHandleEventRejectsBadSignatureBeforeAnyWrite(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	gw := &stubGateway{
		verifyEventFn: func([]byte, string) (*gatewaydomain.Event, error) {
			return nil, gatewaydomain.ErrInvalidSignature
		},
	}
	svc, node := newWebhookService(t, db, gw)
	seedAuthorizedCharge(t, db, node)

	err := svc.HandleEvent(ctx, []byte(`{}`), "bad")
	if !errors.Is(err, paymentdomain.ErrInvalidSignature) {
		t.Fatalf("err = %v, want ErrInvalidSignature", err)
	}

	var events int64
	if err := db.Raw(`SELECT COUNT(*) FROM webhook_events`).Scan(&events).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	if events != 0 {
		t.Fatalf("webhook_events rows = %d, want 0", events)
	}

	var status string
	if err := db.Raw(`SELECT status FROM charge_transactions WHERE order_id = ?`, "order-web").Scan(&status).Error; err != nil {
		t.Fatalf("read status: %v", err)
	}
	if status != string(ledgerdomain.StatusRequiresCapture) {
		t.Fatalf("status = %q, want requires_capture untouched", status)
	}
}

func TestHandleEventIgnoresUnrelatedEventTypes(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	gw := &stubGateway{
		verifyEventFn: func([]byte, string) (*gatewaydomain.Event, error) {
			return nil, gatewaydomain.ErrEventIgnored
		},
	}
	svc, node := newWebhookService(t, db, gw)
	seedAuthorizedCharge(t, db, node)

	if err := svc.HandleEvent(ctx, []byte(`{"type":"charge.dispute.created"}`), "sig"); err != nil {
		t.Fatalf("ignored event err = %v, want nil", err)
	}
}

func TestHandleEventUnknownIntentIsNotMarkedProcessed(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	gw := &stubGateway{
		verifyEventFn: func([]byte, string) (*gatewaydomain.Event, error) {
			return &gatewaydomain.Event{
				ID:              "evt_orphan",
				Kind:            gatewaydomain.EventIntentSucceeded,
				PaymentIntentID: "pi_unknown",
			}, nil
		},
	}
	svc, _ := newWebhookService(t, db, gw)

	err := svc.HandleEvent(ctx, []byte(`{}`), "sig")
	if !errors.Is(err, paymentdomain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	var processed int64
	if err := db.Raw(`SELECT COUNT(*) FROM webhook_events WHERE processed_at IS NOT NULL`).Scan(&processed).Error; err != nil {
		t.Fatalf("count processed: %v", err)
	}
	if processed != 0 {
		t.Fatalf("processed = %d, want 0", processed)
	}
}

func TestHandleEventAuthorizationAndFailureTransitions(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	kind := gatewaydomain.EventIntentRequiresCapture
	eventID := "evt_auth"
	gw := &stubGateway{
		verifyEventFn: func([]byte, string) (*gatewaydomain.Event, error) {
			return &gatewaydomain.Event{
				ID:              eventID,
				Kind:            kind,
				PaymentIntentID: "pi_web",
			}, nil
		},
	}
	svc, node := newWebhookService(t, db, gw)
	seedAuthorizedCharge(t, db, node)

	// Reset to pending so the authorization event has work to do.
	if err := db.Exec(`UPDATE charge_transactions SET status = ?`, ledgerdomain.StatusPending).Error; err != nil {
		t.Fatalf("reset status: %v", err)
	}

	if err := svc.HandleEvent(ctx, []byte(`{}`), "sig"); err != nil {
		t.Fatalf("authorization event: %v", err)
	}
	var status string
	if err := db.Raw(`SELECT status FROM charge_transactions`).Scan(&status).Error; err != nil {
		t.Fatalf("read status: %v", err)
	}
	if status != string(ledgerdomain.StatusRequiresCapture) {
		t.Fatalf("status = %q, want requires_capture", status)
	}

	kind = gatewaydomain.EventIntentFailed
	eventID = "evt_fail"
	if err := svc.HandleEvent(ctx, []byte(`{}`), "sig"); err != nil {
		t.Fatalf("failure event: %v", err)
	}
	if err := db.Raw(`SELECT status FROM charge_transactions`).Scan(&status).Error; err != nil {
		t.Fatalf("read status: %v", err)
	}
	if status != string(ledgerdomain.StatusFailed) {
		t.Fatalf("status = %q, want failed", status)
	}
}
