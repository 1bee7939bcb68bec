package seller

import (
	"github.com/soukly/payments/internal/seller/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("seller",
	fx.Provide(repository.Provide),
)
