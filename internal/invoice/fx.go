package invoice

import (
	"go.uber.org/fx"

	"github.com/stackbill/stackbill/internal/invoice/repository"
	"github.com/stackbill/stackbill/internal/invoice/service"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
