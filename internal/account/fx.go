package account

import (
	"go.uber.org/fx"

	"github.com/stackbill/stackbill/internal/account/repository"
	"github.com/stackbill/stackbill/internal/account/service"
)

var Module = fx.Module("account.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
