package payment

import (
	"go.uber.org/fx"

	"github.com/soukly/payments/internal/payment/domain"
	"github.com/soukly/payments/internal/payment/repository"
	paymentservice "github.com/soukly/payments/internal/payment/service"
	"github.com/soukly/payments/internal/payment/webhook"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(
		fx.Annotate(paymentservice.NewService, fx.As(new(domain.Service))),
	),
	fx.Provide(
		fx.Annotate(webhook.NewService, fx.As(new(domain.WebhookService))),
	),
)
