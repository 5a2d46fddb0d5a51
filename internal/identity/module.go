package identity

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "fieldops_backend/internal/http"
	"fieldops_backend/internal/events"
	"fieldops_backend/platform/logger"
	"fieldops_backend/platform/validator"
)

type Module struct {
	handler *Handler
	service *Service
}

func NewModule(pool *pgxpool.Pool, bus events.Bus, log *logger.Logger, val *validator.Validator) *Module {
	svc := NewService(NewRepository(pool), bus, log)
	return &Module{
		handler: NewHandler(svc, val),
		service: svc,
	}
}

func (m *Module) Name() string {
	return "identity"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Tenant provisioning is open: new customers sign up here.
	ctx.V1.POST("/organizations", m.handler.Provision)

	org := ctx.Protected.Group("/organization")
	org.GET("", m.handler.GetOrganization)

	admin := ctx.Admin.Group("/organization")
	admin.PUT("", m.handler.RenameOrganization)
	admin.POST("/locations", m.handler.CreateLocation)

	ctx.Protected.GET("/organization/locations", m.handler.ListLocations)
	ctx.Admin.DELETE("/organization/locations/:id", m.handler.DeleteLocation)
}
