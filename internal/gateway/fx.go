package gateway

import (
	"github.com/soukly/payments/internal/gateway/domain"
	"github.com/soukly/payments/internal/gateway/stripe"
	"go.uber.org/fx"
)

var Module = fx.Module("gateway",
	fx.Provide(
		fx.Annotate(stripe.New, fx.As(new(domain.Gateway))),
	),
)
