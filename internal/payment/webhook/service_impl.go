package webhook

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	gatewaydomain "github.com/soukly/payments/internal/gateway/domain"
	obsmetrics "github.com/soukly/payments/internal/observability/metrics"
	paymentdomain "github.com/soukly/payments/internal/payment/domain"
)

const provider = "stripe"

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Gateway    gatewaydomain.Gateway
	PaymentSvc paymentdomain.Service
	Repo       paymentdomain.Repository
	Metrics    *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	gateway    gatewaydomain.Gateway
	paymentSvc paymentdomain.Service
	repo       paymentdomain.Repository
	metrics    *obsmetrics.Metrics
}

func NewService(p Params) *Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("payment.webhook"),
		genID:      p.GenID,
		gateway:    p.Gateway,
		paymentSvc: p.PaymentSvc,
		repo:       p.Repo,
		metrics:    p.Metrics,
	}
}

// HandleEvent verifies, dedups, and applies one provider delivery.
// Returning an error makes the HTTP layer answer non-2xx so the
// provider redelivers; definitive outcomes always mark the event
// processed first.
func (s *Service) HandleEvent(ctx context.Context, payload []byte, signatureHeader string) error {
	event, err := s.gateway.VerifyEvent(payload, signatureHeader)
	if err != nil {
		if err == gatewaydomain.ErrEventIgnored {
			s.metrics.RecordWebhookEvent("ignored", "ok")
			return nil
		}
		s.metrics.RecordWebhookEvent("unknown", "bad_signature")
		return paymentdomain.ErrInvalidSignature
	}

	if !json.Valid(payload) {
		return paymentdomain.ErrInvalidSignature
	}

	now := time.Now().UTC()
	record := &paymentdomain.WebhookEvent{
		ID:              s.genID.Generate(),
		Provider:        provider,
		ProviderEventID: event.ID,
		EventType:       string(event.Kind),
		PaymentIntentID: event.PaymentIntentID,
		Payload:         datatypes.JSON(payload),
		ReceivedAt:      now,
	}

	inserted, err := s.repo.InsertEvent(ctx, s.db, record)
	if err != nil {
		return err
	}
	stored := record
	if !inserted {
		stored, err = s.repo.FindEvent(ctx, s.db, provider, event.ID)
		if err != nil {
			return err
		}
		if stored == nil {
			return paymentdomain.ErrEventAlreadyProcessed
		}
		if stored.ProcessedAt != nil {
			s.metrics.RecordWebhookEvent(string(event.Kind), "duplicate")
			return paymentdomain.ErrEventAlreadyProcessed
		}
		// Unprocessed duplicate: a previous delivery failed mid-flight,
		// fall through and apply it again.
	}

	if err := s.paymentSvc.ApplyIntentEvent(ctx, event); err != nil {
		s.metrics.RecordWebhookEvent(string(event.Kind), "error")
		s.log.Warn("event application failed, awaiting redelivery",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Kind)),
			zap.Error(err),
		)
		return err
	}

	if err := s.repo.MarkProcessed(ctx, s.db, stored.ID, now); err != nil {
		return err
	}

	s.metrics.RecordWebhookEvent(string(event.Kind), "ok")
	return nil
}
