package plan

import (
	"go.uber.org/fx"

	"github.com/stackbill/stackbill/internal/plan/repository"
	"github.com/stackbill/stackbill/internal/plan/service"
)

var Module = fx.Module("plan.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
