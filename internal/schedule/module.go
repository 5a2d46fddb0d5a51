package schedule

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "fieldops_backend/internal/http"
	"fieldops_backend/platform/validator"
)

type Module struct {
	handler *Handler
	service *Service
}

func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	svc := NewService(NewRepository(pool))
	return &Module{handler: NewHandler(svc, val), service: svc}
}

func (m *Module) Name() string {
	return "schedule"
}

// Service exposes the schedule service to other modules.
func (m *Module) Service() *Service {
	return m.service
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/schedule")

	group.GET("/technicians", m.handler.ListTechnicians)
	group.GET("/technicians/:id", m.handler.GetTechnician)

	group.POST("/visits", m.handler.CreateVisit)
	group.GET("/visits", m.handler.ListVisits)
	group.GET("/visits/:id", m.handler.GetVisit)
	group.PUT("/visits/:id", m.handler.UpdateVisit)
	group.DELETE("/visits/:id", m.handler.DeleteVisit)

	admin := ctx.Admin.Group("/schedule")
	admin.POST("/technicians", m.handler.CreateTechnician)
	admin.PUT("/technicians/:id", m.handler.UpdateTechnician)
}
