package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	stripeapi "github.com/stripe/stripe-go/v75"
	"go.uber.org/zap"

	"github.com/soukly/payments/internal/config"
	"github.com/soukly/payments/internal/gateway/domain"
)

const testWebhookSecret = "whsec_test_secret"

func signPayload(t *testing.T, payload []byte, secret string) string {
	t.Helper()

	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func testGateway(t *testing.T) *Gateway {
	t.Helper()
	return New(config.Config{
		StripeSecretKey:     "sk_test_dummy",
		StripeWebhookSecret: testWebhookSecret,
	}, zap.NewNop())
}

func eventPayload(eventType string) []byte {
	return []byte(fmt.Sprintf(
		`{"id":"evt_1","type":%q,"data":{"object":{"id":"pi_123","object":"payment_intent"}}}`,
		eventType,
	))
}

func TestVerifyEventAcceptsSignedPayload(t *testing.T) {
	g := testGateway(t)
	payload := eventPayload("payment_intent.succeeded")

	event, err := g.VerifyEvent(payload, signPayload(t, payload, testWebhookSecret))
	assert.NoError(t, err)
	assert.Equal(t, "evt_1", event.ID)
	assert.Equal(t, domain.EventIntentSucceeded, event.Kind)
	assert.Equal(t, "pi_123", event.PaymentIntentID)
}

func TestVerifyEventRejectsWrongSecret(t *testing.T) {
	g := testGateway(t)
	payload := eventPayload("payment_intent.succeeded")

	_, err := g.VerifyEvent(payload, signPayload(t, payload, "whsec_other"))
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
}

func TestVerifyEventRejectsTamperedPayload(t *testing.T) {
	g := testGateway(t)
	payload := eventPayload("payment_intent.succeeded")
	sig := signPayload(t, payload, testWebhookSecret)

	tampered := eventPayload("payment_intent.canceled")
	_, err := g.VerifyEvent(tampered, sig)
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
}

func TestVerifyEventIgnoresUnhandledTypes(t *testing.T) {
	g := testGateway(t)
	payload := eventPayload("charge.dispute.created")

	_, err := g.VerifyEvent(payload, signPayload(t, payload, testWebhookSecret))
	assert.ErrorIs(t, err, domain.ErrEventIgnored)
}

func TestVerifyEventIgnoresNonIntentObjects(t *testing.T) {
	g := testGateway(t)
	payload := []byte(`{"id":"evt_2","type":"payment_intent.succeeded","data":{"object":{"object":"charge"}}}`)

	_, err := g.VerifyEvent(payload, signPayload(t, payload, testWebhookSecret))
	assert.ErrorIs(t, err, domain.ErrEventIgnored)
}

func TestMapIntentStatus(t *testing.T) {
	cases := map[stripeapi.PaymentIntentStatus]domain.IntentStatus{
		stripeapi.PaymentIntentStatusSucceeded:             domain.IntentSucceeded,
		stripeapi.PaymentIntentStatusRequiresCapture:       domain.IntentRequiresCapture,
		stripeapi.PaymentIntentStatusCanceled:              domain.IntentCanceled,
		stripeapi.PaymentIntentStatusProcessing:            domain.IntentPending,
		stripeapi.PaymentIntentStatusRequiresPaymentMethod: domain.IntentPending,
		stripeapi.PaymentIntentStatusRequiresConfirmation:  domain.IntentPending,
		stripeapi.PaymentIntentStatusRequiresAction:        domain.IntentPending,
	}
	for raw, want := range cases {
		assert.Equal(t, want, mapIntentStatus(raw), string(raw))
	}
}
