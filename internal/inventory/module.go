// Package inventory tracks supplies: items, stock levels with an audited
// adjustment trail, and low-stock reporting.
package inventory

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"fieldops_backend/internal/inventory/handler"
	"fieldops_backend/internal/inventory/repository"
	"fieldops_backend/internal/inventory/service"
	apphttp "fieldops_backend/internal/http"
	"fieldops_backend/platform/validator"
)

type Module struct {
	handler *handler.Handler
}

func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	svc := service.New(repository.New(pool))
	return &Module{handler: handler.New(svc, val)}
}

func (m *Module) Name() string {
	return "inventory"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/inventory")
	group.GET("", m.handler.List)
	group.GET("/:id", m.handler.Get)
	group.POST("/:id/adjust", m.handler.Adjust)
	group.GET("/:id/adjustments", m.handler.ListAdjustments)

	admin := ctx.Admin.Group("/inventory")
	admin.POST("", m.handler.Create)
	admin.PUT("/:id", m.handler.Update)
	admin.DELETE("/:id", m.handler.Delete)
}
