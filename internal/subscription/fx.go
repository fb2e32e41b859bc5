package subscription

import (
	"go.uber.org/fx"

	"github.com/stackbill/stackbill/internal/subscription/repository"
	"github.com/stackbill/stackbill/internal/subscription/service"
)

var Module = fx.Module("subscription.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
