package equipment

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "fieldops_backend/internal/http"
	"fieldops_backend/platform/validator"
)

type Module struct {
	handler *Handler
}

func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	svc := NewService(NewRepository(pool))
	return &Module{handler: NewHandler(svc, val)}
}

func (m *Module) Name() string {
	return "equipment"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/equipment")
	group.GET("", m.handler.List)
	group.GET("/:id", m.handler.Get)
	group.POST("/:id/assign", m.handler.Assign)
	group.POST("/:id/release", m.handler.Release)

	admin := ctx.Admin.Group("/equipment")
	admin.POST("", m.handler.Create)
	admin.POST("/:id/status", m.handler.SetStatus)
	admin.DELETE("/:id", m.handler.Delete)
}
