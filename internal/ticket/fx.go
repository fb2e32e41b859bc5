package ticket

import (
	"go.uber.org/fx"

	"github.com/stackbill/stackbill/internal/ticket/repository"
	"github.com/stackbill/stackbill/internal/ticket/service"
)

var Module = fx.Module("ticket.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
