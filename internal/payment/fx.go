package payment

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/stackbill/stackbill/internal/config"
	"github.com/stackbill/stackbill/internal/payment/domain"
	"github.com/stackbill/stackbill/internal/payment/repository"
	"github.com/stackbill/stackbill/internal/payment/service"
	"github.com/stackbill/stackbill/internal/payment/stripe"
)

var Module = fx.Module("payment.service",
	fx.Provide(func(cfg config.Config, log *zap.Logger) domain.Gateway {
		return stripe.NewGateway(cfg.Stripe.SecretKey, log)
	}),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
