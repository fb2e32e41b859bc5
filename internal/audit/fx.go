package audit

import (
	"go.uber.org/fx"

	"github.com/stackbill/stackbill/internal/audit/repository"
	"github.com/stackbill/stackbill/internal/audit/service"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
